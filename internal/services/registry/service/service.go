// Package service implements the model registry: an immutable artifact in the blob
// store plus a metadata row that acts as the commit point
package service

import (
	"context"
	"math"
	"time"

	"prsentinel/internal/core/autoencoder"
	"prsentinel/internal/core/model"
	"prsentinel/internal/platform/blob"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/services/registry/domain"

	"github.com/google/uuid"
)

// ArtifactKey is where a model's artifact lives
func ArtifactKey(id string) string { return "models/" + id + "/model.json" }

// Service implements domain.Port
type Service struct {
	Repo domain.Repo
	Blob blob.Store

	now   func() time.Time
	newID func() string
}

// New constructs the registry service
func New(repo domain.Repo, store blob.Store) *Service {
	if repo == nil || store == nil {
		panic("registry.Service requires a repo and a blob store")
	}
	return &Service{Repo: repo, Blob: store, now: time.Now, newID: uuid.NewString}
}

func ptr(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Store registers m under a fresh id. The artifact is written first; a model exists
// only once its row is committed, so a failed write leaves nothing visible
func (s *Service) Store(ctx context.Context, m *model.Model) (domain.ModelRecord, error) {
	id := s.newID()
	created := m.CreatedAt
	if created.IsZero() {
		created = s.now().UTC()
	}
	stored := *m
	stored.ID, stored.CreatedAt = id, created

	b, err := model.Marshal(&stored)
	if err != nil {
		return domain.ModelRecord{}, err
	}
	key := ArtifactKey(id)
	if err := blob.PutBytes(ctx, s.Blob, key, b); err != nil {
		return domain.ModelRecord{}, perr.Wrapf(err, perr.CodeOf(err), "registry: write artifact %s", key)
	}

	rec := domain.ModelRecord{
		ID:          id,
		RunID:       m.RunID,
		ModelType:   autoencoder.ModelType,
		InputDim:    m.InputDim(),
		Hidden:      m.Net.Hidden(),
		Epochs:      m.Epochs,
		Threshold:   m.Threshold(),
		F1:          ptr(m.Metrics.F1),
		AUC:         ptr(m.Metrics.AUC),
		FinalLoss:   ptr(m.Metrics.Loss),
		ArtifactKey: key,
		CreatedAt:   created,
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		// orphaned artifacts are harmless but we try not to leave them
		if derr := s.Blob.Delete(context.WithoutCancel(ctx), key); derr != nil {
			logger.C(ctx).Warn().Err(derr).Str("key", key).Msg("registry: cleanup of orphaned artifact failed")
		}
		return domain.ModelRecord{}, err
	}
	logger.C(ctx).Info().
		Str("model_id", id).
		Str("run_id", rec.RunID).
		Int("input_dim", rec.InputDim).
		Float64("threshold", rec.Threshold).
		Msg("model registered")
	return rec, nil
}

// Get resolves ref to its metadata row
func (s *Service) Get(ctx context.Context, ref string) (domain.ModelRecord, error) {
	r := domain.ParseRef(ref)
	switch {
	case r.ID != "":
		if _, err := uuid.Parse(r.ID); err != nil {
			return domain.ModelRecord{}, perr.WithField(perr.InvalidArgf("registry: %q is not a model id", r.ID), "id")
		}
		return s.Repo.Get(ctx, r.ID)
	case r.RunID != "":
		return s.Repo.Latest(ctx, r.RunID)
	default:
		return s.Repo.Latest(ctx, "")
	}
}

// Load resolves ref and reads its artifact
func (s *Service) Load(ctx context.Context, ref string) (*model.Model, error) {
	rec, err := s.Get(ctx, ref)
	if err != nil {
		return nil, err
	}
	m, err := s.LoadArtifact(ctx, rec.ArtifactKey)
	if err != nil {
		return nil, err
	}
	m.ID = rec.ID
	return m, nil
}

// LoadArtifact reads an artifact straight from the blob store without a registry row.
// The model id is taken from the key when it follows the registry layout
func (s *Service) LoadArtifact(ctx context.Context, key string) (*model.Model, error) {
	b, err := blob.ReadAll(ctx, s.Blob, key)
	if err != nil {
		return nil, perr.Wrapf(err, perr.CodeOf(err), "registry: read artifact %s", key)
	}
	return model.Unmarshal(idFromKey(key), b)
}

// List returns the newest records first
func (s *Service) List(ctx context.Context, limit int) ([]domain.ModelRecord, error) {
	return s.Repo.List(ctx, limit)
}

func idFromKey(key string) string {
	const pre, suf = "models/", "/model.json"
	if len(key) > len(pre)+len(suf) && key[:len(pre)] == pre && key[len(key)-len(suf):] == suf {
		return key[len(pre) : len(key)-len(suf)]
	}
	return key
}
