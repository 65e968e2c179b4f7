// Package service holds the immutable model handle the scoring endpoints share
package service

import (
	"context"
	"math"
	"os"
	"strings"

	"prsentinel/internal/core/autoencoder"
	"prsentinel/internal/core/features"
	"prsentinel/internal/core/model"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/services/api/scoring/domain"
)

// Loader resolves models. The registry service satisfies it
type Loader interface {
	Load(ctx context.Context, ref string) (*model.Model, error)
	LoadArtifact(ctx context.Context, key string) (*model.Model, error)
}

// Source picks the model to serve. URI wins over ID when both are set
type Source struct {
	ID  string // registry ref: uuid, latest or run:<id>
	URI string // blob key, file:// url or absolute path to an artifact
}

func (s Source) String() string {
	if s.URI != "" {
		return s.URI
	}
	return s.ID
}

// Handle is built once at startup and never mutated. A handle without a model answers
// every scoring call with a failed precondition
type Handle struct {
	m      *model.Model
	source string
	err    error
}

var _ domain.ServicePort = (*Handle)(nil)

// NewHandle wraps a loaded model
func NewHandle(m *model.Model, source string) *Handle {
	return &Handle{m: m, source: source}
}

// Unloaded is a handle that reports err as its load failure
func Unloaded(err error) *Handle {
	if err == nil {
		err = perr.FailedPreconditionf("no model loaded")
	}
	return &Handle{err: err}
}

// Load resolves src once. It never fails: a load error is logged and yields an unready handle
func Load(ctx context.Context, l Loader, src Source) *Handle {
	log := logger.C(ctx)
	m, err := load(ctx, l, src)
	if err != nil {
		log.Error().Err(err).Str("model", src.String()).Msg("could not load model")
		return Unloaded(err)
	}
	log.Info().
		Str("model", src.String()).
		Str("model_id", m.ID).
		Str("run_id", m.RunID).
		Int("input_dim", m.InputDim()).
		Float64("threshold", m.Threshold()).
		Msg("loaded model")
	return NewHandle(m, src.String())
}

func load(ctx context.Context, l Loader, src Source) (*model.Model, error) {
	switch {
	case src.URI != "":
		if p, ok := localPath(src.URI); ok {
			b, err := os.ReadFile(p)
			if err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeNotFound, "read model file %s", p)
			}
			return model.Unmarshal("", b)
		}
		if l == nil {
			return nil, perr.FailedPreconditionf("model uri %s needs a blob store", src.URI)
		}
		return l.LoadArtifact(ctx, src.URI)
	case l == nil:
		return nil, perr.FailedPreconditionf("model registry not configured")
	default:
		ref := src.ID
		if ref == "" {
			ref = "latest"
		}
		return l.Load(ctx, ref)
	}
}

func localPath(uri string) (string, bool) {
	if p, ok := strings.CutPrefix(uri, "file://"); ok {
		return p, true
	}
	return uri, strings.HasPrefix(uri, "/")
}

// Ready reports whether a model is being served
func (h *Handle) Ready() bool { return h.m != nil }

// LoadError is the startup failure, nil when ready
func (h *Handle) LoadError() error {
	if h.Ready() {
		return nil
	}
	return h.err
}

func (h *Handle) noModel() error {
	return perr.FailedPreconditionf("no model loaded")
}

// Info describes the served model
func (h *Handle) Info() (domain.ModelInfo, error) {
	if !h.Ready() {
		return domain.ModelInfo{}, h.noModel()
	}
	m := h.m
	return domain.ModelInfo{
		ID:        m.ID,
		RunID:     m.RunID,
		ModelType: autoencoder.ModelType,
		Source:    h.source,
		InputDim:  m.InputDim(),
		Hidden:    m.Net.Hidden(),
		VocabSize: m.Vocab.Size(),
		Epochs:    m.Epochs,
		Threshold: m.Threshold(),
		F1:        finite(m.Metrics.F1),
		AUC:       finite(m.Metrics.AUC),
		FinalLoss: finite(m.Metrics.Loss),
		CreatedAt: m.CreatedAt,
	}, nil
}

// Predict returns the raw reconstruction error of a prepared vector
func (h *Handle) Predict(x []float64) (domain.PredictOutput, error) {
	if !h.Ready() {
		return domain.PredictOutput{}, h.noModel()
	}
	e, err := h.m.Score(x)
	if err != nil {
		return domain.PredictOutput{}, err
	}
	return domain.PredictOutput{ReconstructionError: e}, nil
}

// ScorePR vectorises raw attributes with the model vocabulary and applies the threshold
func (h *Handle) ScorePR(in domain.PRInput) (domain.PROutput, error) {
	if !h.Ready() {
		return domain.PROutput{}, h.noModel()
	}
	rec := features.Record{
		Additions:         in.Additions,
		Deletions:         in.Deletions,
		ChangedFiles:      in.ChangedFiles,
		AssigneesCount:    in.AssigneesCount,
		CommitsCount:      in.CommitsCount,
		AuthorAssociation: in.AuthorAssociation,
		Labels:            in.Labels,
		Title:             in.Title,
		Body:              in.Body,
	}
	e, err := h.m.ScoreRecord(rec)
	if err != nil {
		return domain.PROutput{}, err
	}
	th := h.m.Threshold()
	return domain.PROutput{ReconstructionError: e, Threshold: th, Anomalous: e > th}, nil
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
