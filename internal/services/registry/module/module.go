// Package module wires the model registry from config
package module

import (
	"context"

	"prsentinel/internal/modkit"
	"prsentinel/internal/platform/config"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/services/registry/domain"
	"prsentinel/internal/services/registry/repo"
	"prsentinel/internal/services/registry/service"
)

// Options holds the registry settings
type Options struct {
	DSN string `env:"SERVICE_REGISTRY_DSN" validate:"required"`
}

// FromConfig reads SERVICE_REGISTRY_DSN, falling back to the postgres url so a
// single database can hold both the records and the registry
func FromConfig(cfg config.Conf) Options {
	svc := cfg.Prefix("SERVICE_")
	return Options{DSN: svc.MayString("REGISTRY_DSN", svc.MayString("PGSQL_DBURL", ""))}
}

// Ports defines the registry module ports
type Ports struct {
	Registry domain.Port
}

// Module owns the registry connection
type Module struct {
	repo  *repo.Gorm
	svc   *service.Service
	ports Ports
}

// New opens the registry database. deps.Blob must be set
func New(ctx context.Context, deps modkit.Deps) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := config.Validate(opts); err != nil {
		return nil, err
	}
	if deps.Blob == nil {
		return nil, perr.FailedPreconditionf("registry: blob store not configured")
	}
	g, err := repo.Open(ctx, opts.DSN)
	if err != nil {
		return nil, err
	}
	svc := service.New(g, deps.Blob)
	return &Module{repo: g, svc: svc, ports: Ports{Registry: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "registry" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Registry is a typed shortcut for the port
func (m *Module) Registry() *service.Service { return m.svc }

// Close releases the database
func (m *Module) Close() error { return m.repo.Close() }
