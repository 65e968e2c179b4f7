// Package module wires the ingestion service
package module

import (
	"prsentinel/internal/adapters/ingest/github"
	"prsentinel/internal/modkit"
	"prsentinel/internal/platform/config"
	"prsentinel/internal/services/ingest/domain"
	"prsentinel/internal/services/ingest/repo"
	"prsentinel/internal/services/ingest/service"
)

// Ports defines the ingestion module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the ingestion module
type Module struct {
	deps  modkit.Deps
	ports Ports
}

// New constructs the ingestion module from deps.Cfg. It does not mount any routes
// src overrides the GitHub client when non nil (tests)
func New(deps modkit.Deps, src domain.Source) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := config.Validate(opts); err != nil {
		return nil, err
	}
	if src == nil {
		src = github.NewClient(github.Options{
			BaseURL:    opts.BaseURL,
			Timeout:    opts.HTTPTimeout,
			TokensCSV:  opts.Tokens,
			MaxRetries: opts.MaxRetries,
			RetryBase:  opts.RetryBase,
		})
	}

	svc := service.New(deps.PG, repo.NewPG(), src, service.Config{
		Query:        opts.Query,
		TopRepos:     opts.TopRepos,
		PerPage:      opts.PerPage,
		MaxPages:     opts.MaxPages,
		FetchDetails: opts.FetchDetails,
		DelayPerRepo: opts.DelayPerRepo,
		Timeouts:     opts.Timeouts,
	})

	return &Module{deps: deps, ports: Ports{Runner: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "ingest" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Runner is a typed shortcut for the run port
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }
