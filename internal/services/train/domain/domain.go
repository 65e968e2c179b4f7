// Package domain holds the training ports, results and fatal outcomes
package domain

import (
	"context"
	"errors"

	"prsentinel/internal/core/autoencoder"
	"prsentinel/internal/core/model"
	regdomain "prsentinel/internal/services/registry/domain"
)

// Fatal outcomes. None of them registers a model
var (
	ErrNoRunID      = errors.New("train: preprocess run id is required")
	ErrNoPartitions = errors.New("train: no parquet found for run")
	ErrEmptyTable   = errors.New("train: preprocess run has no rows")

	// ErrIncompleteRun marks a run whose encode never wrote _SUCCESS
	ErrIncompleteRun = errors.New("train: preprocess run is incomplete")
)

// Result is what a completed run produced
type Result struct {
	RunID   string
	Rows    int
	Model   regdomain.ModelRecord
	Metrics autoencoder.Metrics
	Losses  []float64
}

// Registrar commits a trained model. The registry service satisfies it
type Registrar interface {
	Store(ctx context.Context, m *model.Model) (regdomain.ModelRecord, error)
}

// Telemetry receives training progress. Implementations must not fail the run
type Telemetry interface {
	Epochs(ctx context.Context, runID string, stats []autoencoder.EpochStat)
	Completed(ctx context.Context, res Result)
}

// Lease runs do while holding the per run lease, or returns guardrails.ErrLeaseHeld
type Lease func(ctx context.Context, runID string, do func(context.Context) error) error

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, runID string) (Result, error)
}
