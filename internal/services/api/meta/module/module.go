// Package module wires meta endpoints into the API
package module

import (
	"context"
	"net/http"
	"time"

	modkit "prsentinel/internal/modkit"
	"prsentinel/internal/modkit/httpkit"
	"prsentinel/internal/platform/store"
	str "prsentinel/internal/platform/strings"

	metahttp "prsentinel/internal/services/api/meta/http"
	scoring "prsentinel/internal/services/api/scoring/domain"
)

// Module implements the modkit.Module interface
type Module struct {
	name   string
	prefix string
	mws    []func(http.Handler) http.Handler

	register func(httpkit.Router)
}

// New constructs the meta module. scorer may be nil when the API serves no model
func New(deps modkit.Deps, scorer scoring.ServicePort, opts ...modkit.Option) *Module {
	b := modkit.Build(append([]modkit.Option{
		modkit.WithName("meta"),
		modkit.WithPrefix("/meta"),
	}, opts...)...)

	d := metahttp.Deps{
		ServiceName: "prsentinel-api",
		StartedAt:   time.Now(),
		Checks:      Checks(deps),
	}
	if scorer != nil {
		d.ModelID = func() (string, bool) {
			info, err := scorer.Info()
			return info.ID, err == nil
		}
	}

	m := &Module{name: b.Name, prefix: b.Prefix, mws: b.Mw}
	external := b.Register
	m.register = func(r httpkit.Router) {
		metahttp.Register(r, d)
		external(r)
	}
	return m
}

// Checks builds one probe per configured backend in pg, ch, redis order
func Checks(deps modkit.Deps) []metahttp.Check {
	var out []metahttp.Check
	if p, ok := deps.PG.(store.Pinger); ok {
		out = append(out, metahttp.Check{Name: "pg", Ping: p.Ping})
	}
	if p, ok := deps.CH.(store.Pinger); ok {
		out = append(out, metahttp.Check{Name: "ch", Ping: p.Ping})
	}
	if deps.Redis != nil {
		rdb := deps.Redis
		out = append(out, metahttp.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}})
	}
	return out
}

// MountRoutes implements the modkit.Module interface
func (m *Module) MountRoutes(r httpkit.Router) {
	r.Route(m.prefix, func(rr httpkit.Router) {
		for _, mw := range m.mws {
			rr.Use(mw)
		}
		m.register(rr)
	})
}

// Name implements the modkit.Module interface
func (m *Module) Name() string { return str.MustString(m.name, "meta") }

// Prefix is the mount prefix
func (m *Module) Prefix() string { return str.MustPrefix(m.prefix) }

// Ports implements the modkit.Module interface
func (m *Module) Ports() any { return nil }
