// Package domain holds the model registry types and ports
package domain

import (
	"context"
	"strings"
	"time"

	"prsentinel/internal/core/model"
)

// Ref keywords accepted by Load and Get
const (
	RefLatest    = "latest"
	RefRunPrefix = "run:"
)

// ModelRecord is the registry row. It never changes once written
type ModelRecord struct {
	ID          string    `json:"id"`
	RunID       string    `json:"run_id"`
	ModelType   string    `json:"model_type"`
	InputDim    int       `json:"input_dim"`
	Hidden      int       `json:"hidden"`
	Epochs      int       `json:"epochs"`
	Threshold   float64   `json:"threshold"`
	F1          *float64  `json:"f1"`
	AUC         *float64  `json:"auc"`
	FinalLoss   *float64  `json:"final_loss"`
	ArtifactKey string    `json:"artifact_key"`
	CreatedAt   time.Time `json:"created_at"`
}

// Ref is a parsed model reference
type Ref struct {
	ID     string // exact id
	RunID  string // latest model of a run
	Latest bool   // newest model overall
}

// ParseRef understands a uuid, "latest" or "run:<run_id>". Empty means latest
func ParseRef(s string) Ref {
	s = strings.TrimSpace(s)
	switch {
	case s == "" || strings.EqualFold(s, RefLatest):
		return Ref{Latest: true}
	case strings.HasPrefix(s, RefRunPrefix):
		return Ref{RunID: strings.TrimPrefix(s, RefRunPrefix)}
	default:
		return Ref{ID: s}
	}
}

// Repo is the metadata store
type Repo interface {
	Create(ctx context.Context, rec ModelRecord) error
	Get(ctx context.Context, id string) (ModelRecord, error)
	// Latest returns the newest record, limited to runID when it is not empty
	Latest(ctx context.Context, runID string) (ModelRecord, error)
	List(ctx context.Context, limit int) ([]ModelRecord, error)
}

// Port is what the rest of the system uses
type Port interface {
	Store(ctx context.Context, m *model.Model) (ModelRecord, error)
	Load(ctx context.Context, ref string) (*model.Model, error)
	Get(ctx context.Context, ref string) (ModelRecord, error)
	List(ctx context.Context, limit int) ([]ModelRecord, error)
}
