// Package domain holds the feature encoder ports and types
package domain

import (
	"context"
	"errors"
	"time"

	"prsentinel/internal/adapters/snapshot"
	"prsentinel/internal/core/features"
)

// ErrNoRecords means the record store was empty; the run is a logged no-op
var ErrNoRecords = errors.New("encode: no pull request records found")

// Filter narrows the records an encode run reads. Zero values mean no filter
type Filter struct {
	Repo  string
	Since time.Time
	Limit int
}

// RecordReader reads records from the store with encoder defaults already applied
type RecordReader interface {
	ListRecords(ctx context.Context, f Filter) ([]features.Record, error)
}

// VocabularySource supplies a fixed vocabulary instead of fitting a new one
type VocabularySource func(ctx context.Context) (*features.Vocabulary, error)

// RunnerPort is the public port exposed by the module
type RunnerPort interface {
	Run(ctx context.Context, runID string) (snapshot.Manifest, error)
}
