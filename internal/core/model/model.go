// Package model ties a trained autoencoder to the vocabulary it was trained with.
// A Model is the immutable handle the scoring service serves from
package model

import (
	"encoding/json"
	"math"
	"time"

	"prsentinel/internal/core/autoencoder"
	"prsentinel/internal/core/features"
	perr "prsentinel/internal/platform/errors"
)

// ArtifactVersion is bumped on incompatible artifact changes
const ArtifactVersion = 1

// Metrics are the training-time evaluation numbers. AUC is NaN when the weak labels had one class
type Metrics = autoencoder.Metrics

// Model is a trained network plus everything needed to score raw pull requests
type Model struct {
	ID        string
	RunID     string
	Epochs    int
	Net       *autoencoder.Network
	Vocab     *features.Vocabulary
	Metrics   Metrics
	CreatedAt time.Time
}

// InputDim is the width Score expects
func (m *Model) InputDim() int { return m.Net.Dim() }

// Threshold is the anomaly cutoff derived at training time
func (m *Model) Threshold() float64 { return m.Metrics.Threshold }

// Score returns the reconstruction error of a ready made feature vector
func (m *Model) Score(features []float64) (float64, error) {
	return m.Net.Score(features)
}

// ScoreRecord vectorizes r with the model's own vocabulary and scores it
func (m *Model) ScoreRecord(r features.Record) (float64, error) {
	return m.Net.Score(features.Vectorize(r.Clamp(), m.Vocab))
}

// artifact is the persisted json form
type artifact struct {
	Version    int                       `json:"version"`
	ModelType  string                    `json:"model_type"`
	InputDim   int                       `json:"input_dim"`
	Hidden     int                       `json:"hidden"`
	Epochs     int                       `json:"epochs"`
	Threshold  float64                   `json:"threshold"`
	Layers     []autoencoder.LayerParams `json:"layers"`
	Vocabulary *features.Vocabulary      `json:"vocabulary"`
	RunID      string                    `json:"run_id"`
	Metrics    wireMetrics               `json:"metrics"`
	CreatedAt  time.Time                 `json:"created_at"`
}

// wireMetrics carries NaN as null since json has no NaN
type wireMetrics struct {
	F1   *float64 `json:"f1"`
	AUC  *float64 `json:"auc"`
	Loss *float64 `json:"loss"`
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func orNaN(p *float64) float64 {
	if p == nil {
		return math.NaN()
	}
	return *p
}

// Marshal encodes m as a self contained artifact
func Marshal(m *Model) ([]byte, error) {
	if m == nil || m.Net == nil || m.Vocab == nil {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "model: incomplete model")
	}
	if m.Vocab.Dim() != m.Net.Dim() {
		return nil, perr.InvalidArgf("model: vocabulary width %d does not match network width %d", m.Vocab.Dim(), m.Net.Dim())
	}
	if math.IsNaN(m.Metrics.Threshold) || math.IsInf(m.Metrics.Threshold, 0) {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "model: threshold is not finite")
	}
	a := artifact{
		Version:    ArtifactVersion,
		ModelType:  autoencoder.ModelType,
		InputDim:   m.Net.Dim(),
		Hidden:     m.Net.Hidden(),
		Epochs:     m.Epochs,
		Threshold:  m.Metrics.Threshold,
		Layers:     m.Net.Params(),
		Vocabulary: m.Vocab,
		RunID:      m.RunID,
		Metrics: wireMetrics{
			F1:   finite(m.Metrics.F1),
			AUC:  finite(m.Metrics.AUC),
			Loss: finite(m.Metrics.Loss),
		},
		CreatedAt: m.CreatedAt.UTC(),
	}
	return json.Marshal(a)
}

// Unmarshal decodes and validates an artifact. id is attached to the returned model
func Unmarshal(id string, b []byte) (*Model, error) {
	var a artifact
	if err := json.Unmarshal(b, &a); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "model: decode artifact")
	}
	if a.Version != ArtifactVersion {
		return nil, perr.InvalidArgf("model: unsupported artifact version %d", a.Version)
	}
	if a.ModelType != autoencoder.ModelType {
		return nil, perr.InvalidArgf("model: unsupported model type %q", a.ModelType)
	}
	if a.Vocabulary == nil {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "model: artifact has no vocabulary")
	}
	if a.Vocabulary.Dim() != a.InputDim {
		return nil, perr.InvalidArgf("model: vocabulary width %d does not match input_dim %d", a.Vocabulary.Dim(), a.InputDim)
	}
	net, err := autoencoder.FromParams(a.InputDim, a.Hidden, a.Layers)
	if err != nil {
		return nil, err
	}
	return &Model{
		ID:     id,
		RunID:  a.RunID,
		Epochs: a.Epochs,
		Net:    net,
		Vocab:  a.Vocabulary,
		Metrics: Metrics{
			F1:        orNaN(a.Metrics.F1),
			AUC:       orNaN(a.Metrics.AUC),
			Loss:      orNaN(a.Metrics.Loss),
			Threshold: a.Threshold,
		},
		CreatedAt: a.CreatedAt,
	}, nil
}
