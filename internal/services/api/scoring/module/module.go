// Package module wires the scoring endpoints into the API using modkit
package module

import (
	"net/http"

	modkit "prsentinel/internal/modkit"
	"prsentinel/internal/modkit/httpkit"
	str "prsentinel/internal/platform/strings"
	"prsentinel/internal/services/api/scoring/domain"
	scoringhttp "prsentinel/internal/services/api/scoring/http"
)

// Ports exposes the served model to other modules
type Ports struct {
	Scorer domain.ServicePort
}

// Module implements the scoring module
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	subrouter func(httpkit.Router) httpkit.Router
	register  func(httpkit.Router)

	svc domain.ServicePort
}

// New constructs the scoring module around an already loaded handle
func New(_ modkit.Deps, svc domain.ServicePort, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{modkit.WithName("scoring"), modkit.WithPrefix("/scoring")}, opts...)...)

	m := &Module{
		name:      b.Name,
		prefix:    b.Prefix,
		mws:       b.Mw,
		subrouter: b.Subrouter,
		svc:       svc,
	}
	external := b.Register
	m.register = func(r httpkit.Router) {
		scoringhttp.Register(r, m.svc)
		if external != nil {
			external(r)
		}
	}
	return m
}

// MountRoutes mounts the versioned routes under the module prefix
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		if m.subrouter != nil {
			rr = m.subrouter(rr)
		}
		if m.register != nil {
			m.register(rr)
		}
	})
}

// MountRoot mounts /predict, /health and /ready on r as they are
func (m *Module) MountRoot(r httpkit.Router) { scoringhttp.RegisterRoot(r, m.svc) }

// Name returns the module name
func (m *Module) Name() string { return str.MustString(m.name, "scoring") }

// Prefix returns the module route prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Middlewares returns the module middlewares
func (m *Module) Middlewares() []func(http.Handler) http.Handler { return m.mws }

// Ports returns the module ports
func (m *Module) Ports() any { return Ports{Scorer: m.svc} }
