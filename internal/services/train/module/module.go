// Package module wires the training service
package module

import (
	"fmt"
	"os"

	"prsentinel/internal/core/autoencoder"
	"prsentinel/internal/modkit"
	"prsentinel/internal/platform/config"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/services/train/domain"
	"prsentinel/internal/services/train/guardrails"
	"prsentinel/internal/services/train/repo"
	"prsentinel/internal/services/train/service"
)

// Ports defines the training module ports
type Ports struct {
	Runner domain.RunnerPort
}

// Module implements the training module
type Module struct {
	opts  Options
	ports Ports
}

// New constructs the trainer. reg is usually the registry service
func New(deps modkit.Deps, reg domain.Registrar) (*Module, error) {
	opts := FromConfig(deps.Cfg)
	if err := config.Validate(opts); err != nil {
		return nil, err
	}
	if deps.Blob == nil || reg == nil {
		return nil, perr.FailedPreconditionf("train: blob store and model registry are required")
	}

	lease, err := makeLease(deps, opts)
	if err != nil {
		return nil, err
	}

	var tel domain.Telemetry
	if opts.Telemetry && deps.CH != nil {
		tel = repo.NewCH(deps.CH)
	}

	opt := autoencoder.DefaultTrainConfig()
	opt.Epochs = opts.Epochs
	opt.LearningRate = opts.LR
	svc := service.New(deps.Blob, reg, tel, lease, service.Config{
		Hidden:     opts.Hidden,
		Seed:       uint64(opts.Seed),
		ThresholdK: opts.ThresholdK,
		Optimizer:  opt,
		VocabSize:  opts.VocabSize,
	})
	return &Module{opts: opts, ports: Ports{Runner: svc}}, nil
}

func makeLease(deps modkit.Deps, opts Options) (domain.Lease, error) {
	switch opts.Lease {
	case guardrails.BackendPG:
		if deps.PG == nil {
			return nil, perr.FailedPreconditionf("train: CORE_TRAIN_LEASE=pg needs SERVICE_PGSQL_DBURL")
		}
		return guardrails.MakePGLease(deps.PG, holder()), nil
	case guardrails.BackendRedis:
		if deps.Redis == nil {
			return nil, perr.FailedPreconditionf("train: CORE_TRAIN_LEASE=redis needs SERVICE_REDIS_URL")
		}
		return guardrails.MakeRedisLease(deps.Redis, opts.LeaseTTL, holder()), nil
	default:
		return guardrails.NoLease(), nil
	}
}

func holder() string {
	h, _ := os.Hostname()
	return fmt.Sprintf("%s:%d", h, os.Getpid())
}

// Name returns the module name
func (m *Module) Name() string { return "train" }

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }

// Runner is a typed shortcut for the run port
func (m *Module) Runner() domain.RunnerPort { return m.ports.Runner }

// RunID is the preprocess run this process trains on
func (m *Module) RunID() string { return m.opts.RunID }
