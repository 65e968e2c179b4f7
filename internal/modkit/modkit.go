package modkit

import (
	phttp "prsentinel/internal/platform/net/http"
)

// Module is what api.Mount needs from a feature module
type Module interface {
	// MountRoutes mounts HTTP routes under the provided router seam
	MountRoutes(r phttp.Router)
	// Ports returns a module specific port set interface for cross wiring
	Ports() any

	// Name returns the module name
	Name() string
}
