package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type chiRouter struct{ r chi.Router }

// AdaptChi wraps a chi mux as a Router
func AdaptChi(m *chi.Mux) Router { return chiRouter{r: m} }

func (c chiRouter) Get(p string, h Handler)  { c.Method(http.MethodGet, p, h) }
func (c chiRouter) Post(p string, h Handler) { c.Method(http.MethodPost, p, h) }

func (c chiRouter) Method(method, p string, h Handler) {
	c.r.Method(method, p, http.HandlerFunc(h))
}

func (c chiRouter) Handle(p string, h http.Handler)           { c.r.Handle(p, h) }
func (c chiRouter) Use(mw ...func(http.Handler) http.Handler) { c.r.Use(mw...) }

func (c chiRouter) Group(fn func(Router)) {
	c.r.Group(func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

func (c chiRouter) Route(pattern string, fn func(Router)) {
	c.r.Route(pattern, func(sub chi.Router) { fn(chiRouter{r: sub}) })
}

// Mux is the underlying handler, the sub router for groups and routes
func (c chiRouter) Mux() http.Handler { return c.r }
