// Package module wires the feature encoder
package module

import (
	"context"

	"prsentinel/internal/adapters/snapshot"
	"prsentinel/internal/core/features"
	"prsentinel/internal/core/model"
	"prsentinel/internal/modkit"
	"prsentinel/internal/platform/config"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/services/encode/domain"
	"prsentinel/internal/services/encode/repo"
	"prsentinel/internal/services/encode/service"
)

// ModelLoader resolves a registered model reference. The registry service satisfies it
type ModelLoader interface {
	Load(ctx context.Context, ref string) (*model.Model, error)
}

// Ports defines the encoder module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the encoder module
type Module struct {
	opts  Options
	ports Ports
}

// New constructs the encoder. models may be nil unless CORE_ENCODE_VOCAB_FROM_MODEL is set
func New(deps modkit.Deps, models ModelLoader) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := config.Validate(opts); err != nil {
		return nil, err
	}
	if deps.PG == nil || deps.Blob == nil {
		return nil, perr.FailedPreconditionf("encode: postgres and blob store are required")
	}

	var src domain.VocabularySource
	switch {
	case opts.VocabFromModel != "":
		if models == nil {
			return nil, perr.FailedPreconditionf("encode: CORE_ENCODE_VOCAB_FROM_MODEL needs the model registry")
		}
		ref := opts.VocabFromModel
		src = func(ctx context.Context) (*features.Vocabulary, error) {
			m, err := models.Load(ctx, ref)
			if err != nil {
				return nil, err
			}
			return m.Vocab, nil
		}
	case opts.VocabFromRun != "":
		if err := snapshot.ValidateRunID(opts.VocabFromRun); err != nil {
			return nil, err
		}
		run, store := opts.VocabFromRun, deps.Blob
		src = func(ctx context.Context) (*features.Vocabulary, error) {
			v, ok, err := snapshot.ReadVocabulary(ctx, store, run)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, perr.NotFoundf("encode: run %s has no vocabulary", run)
			}
			return v, nil
		}
	}

	svc := service.New(deps.PG, repo.NewPG(), deps.Blob, src, service.Config{
		VocabSize:      opts.VocabSize,
		LabelThreshold: int64(opts.LabelThreshold),
		PartitionRows:  opts.PartitionRows,
		Filter:         domain.Filter{Repo: opts.Repo, Since: opts.Since, Limit: opts.Limit},
	})
	return &Module{opts: opts, ports: Ports{Runner: svc}}, nil
}

// Name returns the module name
func (m *Module) Name() string { return "encode" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Runner is a typed shortcut for the run port
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }

// RunID is the configured run id, empty when each run picks its own
func (m *Module) RunID() string { return m.opts.RunID }
