// Package http provides meta endpoints
package http

import (
	stdctx "context"
	"net/http"
	"time"

	"prsentinel/internal/core/version"
	"prsentinel/internal/modkit/httpkit"
)

// readyTimeout bounds one readiness sweep across every backend
const readyTimeout = 2 * time.Second

// Check is one dependency probe. Backends that are not configured are left out
type Check struct {
	Name string
	Ping func(stdctx.Context) error
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check

	// ModelID reports the served model; ok is false while nothing is loaded
	ModelID func() (id string, ok bool)
}

type handlers struct {
	deps Deps
	now  func() time.Time
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	h := &handlers{deps: d, now: time.Now}

	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	httpkit.Get(r, "/service", h.service)
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"   example:"pg"`
	Status string `json:"status" example:"ok"` // ok fail
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432 connect: connection refused"`
	Millis int64  `json:"millis" example:"3"`
}

// ReadyResponse summarizes readiness of the backing stores
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"` // ok fail
	Checks []ReadyCheck `json:"checks"`
	Now    string       `json:"now"    example:"2026-10-16T08:05:00Z"`
}

// ServiceResponse describes service info
type ServiceResponse struct {
	Name    string `json:"name"    example:"prsentinel-api"`
	Started string `json:"started" example:"2026-10-16T08:00:00Z"`
	Uptime  int64  `json:"uptime"  example:"300"`
	ModelID string `json:"model_id,omitempty" example:"m-20261016-080000-1a2b3c"`
}

// swagger:route GET /meta/ready Meta metaReady
// @Summary Dependency checks for the configured backends
// @Description Unlike /ready this does not look at the model, only pg, clickhouse and redis
// @Tags Meta
// @Produce json
// @Success 200 type ReadyResponse ok
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) (any, error) {
	ctx, cancel := stdctx.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	out := ReadyResponse{Status: "ok", Checks: make([]ReadyCheck, 0, len(h.deps.Checks))}
	for _, c := range h.deps.Checks {
		start := h.now()
		rc := ReadyCheck{Name: c.Name, Status: "ok"}
		if err := c.Ping(ctx); err != nil {
			rc.Status, rc.Error = "fail", err.Error()
			out.Status = "fail"
		}
		rc.Millis = h.now().Sub(start).Milliseconds()
		out.Checks = append(out.Checks, rc)
	}
	out.Now = h.now().UTC().Format(time.RFC3339)
	return out, nil
}

// swagger:route GET /meta/version Meta metaVersion
// @Summary Build and version info
// @Tags Meta
// @Produce json
// @Success 200 type version.BuildInfo ok
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// swagger:route GET /meta/service Meta metaService
// @Summary Service info, uptime and the served model id
// @Tags Meta
// @Produce json
// @Success 200 type ServiceResponse ok
// @Router /meta/service [get]
func (h *handlers) service(_ *http.Request) (any, error) {
	out := ServiceResponse{
		Name:    h.deps.ServiceName,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(h.now().Sub(h.deps.StartedAt) / time.Second),
	}
	if h.deps.ModelID != nil {
		if id, ok := h.deps.ModelID(); ok {
			out.ModelID = id
		}
	}
	return out, nil
}
