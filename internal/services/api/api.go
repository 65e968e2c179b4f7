// Package api provides the HTTP API for the application
package api

import (
	"prsentinel/internal/platform/config"
	"prsentinel/internal/platform/logger"
	phttp "prsentinel/internal/platform/net/http"
	"prsentinel/internal/platform/store"

	"prsentinel/internal/modkit"
	"prsentinel/internal/modkit/httpkit"
	"prsentinel/internal/modkit/swaggerkit"

	metamod "prsentinel/internal/services/api/meta/module"
	"prsentinel/internal/services/api/scoring/domain"
	scoringmod "prsentinel/internal/services/api/scoring/module"
)

// Options are the API options
type Options struct {
	Config         config.Conf
	Store          *store.Store
	Logger         *logger.Logger
	EnableSwagger  bool
	EnableProfiler bool

	// Scorer is the model handle built once at startup
	Scorer domain.ServicePort
}

// Mount mounts the API service onto the given router
func Mount(r phttp.Router, opt Options) {
	deps := modkit.Deps{Cfg: opt.Config}
	if opt.Store != nil {
		deps.PG, deps.CH, deps.Redis = opt.Store.PG, opt.Store.CH, opt.Store.Redis
	}

	scoring := scoringmod.New(deps, opt.Scorer)

	// /predict /health /ready stay unversioned for existing callers and probes
	r.Group(func(root httpkit.Router) {
		root.Use(httpkit.ProbeStack()...)
		scoring.MountRoot(root)
	})

	mods := []modkit.Module{
		metamod.New(deps, opt.Scorer),
		scoring,
	}

	httpkit.MountAPIV1(r, httpkit.CommonStack(), func(api httpkit.Router) {
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)

		for _, m := range mods {
			m.MountRoutes(api)
		}
	})
}
