package modkit

import (
	"net/http"

	"prsentinel/internal/modkit/httpkit"
)

// Built is the resolved option set a module copies into itself
type Built struct {
	Name      string
	Prefix    string
	Mw        []func(http.Handler) http.Handler
	Subrouter func(httpkit.Router) httpkit.Router
	Register  func(httpkit.Router)
}

// Option adjusts how a module mounts
type Option func(*Built)

// WithName overrides the module name used in logs and /service
func WithName(name string) Option { return func(b *Built) { b.Name = name } }

// WithPrefix overrides the mount path under /api/v1
func WithPrefix(prefix string) Option { return func(b *Built) { b.Prefix = prefix } }

// WithMiddlewares appends module scoped middleware. Repeated calls accumulate
func WithMiddlewares(mw ...func(http.Handler) http.Handler) Option {
	return func(b *Built) { b.Mw = append(b.Mw, mw...) }
}

// WithSubrouter wraps the module router before routes register
func WithSubrouter(fn func(httpkit.Router) httpkit.Router) Option {
	return func(b *Built) { b.Subrouter = fn }
}

// WithRegister adds endpoints next to the module's own
func WithRegister(fn func(httpkit.Router)) Option {
	return func(b *Built) { b.Register = fn }
}

// Build applies opts in order. Hooks default to identity and no-op so
// modules can call them unconditionally
func Build(opts ...Option) Built {
	var b Built
	for _, o := range opts {
		o(&b)
	}
	if b.Subrouter == nil {
		b.Subrouter = func(r httpkit.Router) httpkit.Router { return r }
	}
	if b.Register == nil {
		b.Register = func(httpkit.Router) {}
	}
	return b
}
