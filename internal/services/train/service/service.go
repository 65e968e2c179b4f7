// Package service runs one training job: snapshot in, registered model out
package service

import (
	"context"
	"errors"
	"math"
	"time"

	"prsentinel/internal/adapters/snapshot"
	"prsentinel/internal/core/autoencoder"
	"prsentinel/internal/core/features"
	"prsentinel/internal/core/model"
	"prsentinel/internal/platform/blob"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/services/train/domain"
	"prsentinel/internal/services/train/guardrails"

	"gonum.org/v1/gonum/mat"
)

// Config holds the training hyperparameters
type Config struct {
	Hidden     int
	Seed       uint64
	ThresholdK float64
	Optimizer  autoencoder.TrainConfig
	VocabSize  int // used only when a run carries no vocabulary
}

// DefaultConfig is h=64, seed 42, mean+2σ and Adam defaults
func DefaultConfig() Config {
	return Config{
		Hidden:     autoencoder.DefaultHidden,
		Seed:       42,
		ThresholdK: autoencoder.DefaultThresholdK,
		Optimizer:  autoencoder.DefaultTrainConfig(),
		VocabSize:  features.DefaultVocabSize,
	}
}

// Service implements domain.RunnerPort
type Service struct {
	Blob      blob.Store
	Registry  domain.Registrar
	Telemetry domain.Telemetry // optional
	Lease     domain.Lease
	Cfg       Config

	now func() time.Time
}

// New constructs the training service. A nil lease means no lease
func New(store blob.Store, reg domain.Registrar, tel domain.Telemetry, lease domain.Lease, cfg Config) *Service {
	if store == nil || reg == nil {
		panic("train.Service requires a blob store and a registrar")
	}
	if lease == nil {
		lease = guardrails.NoLease()
	}
	return &Service{Blob: store, Registry: reg, Telemetry: tel, Lease: lease, Cfg: cfg, now: time.Now}
}

// Run trains on preprocess-runs/<runID>/ and registers the result. Every error return means
// no model was registered
func (s *Service) Run(ctx context.Context, runID string) (domain.Result, error) {
	if runID == "" {
		return domain.Result{}, domain.ErrNoRunID
	}
	if err := snapshot.ValidateRunID(runID); err != nil {
		return domain.Result{}, err
	}
	ctx = logger.WithRun(ctx, runID)

	var res domain.Result
	err := s.Lease(ctx, runID, func(ctx context.Context) error {
		var err error
		res, err = s.train(ctx, runID)
		return err
	})
	if errors.Is(err, guardrails.ErrLeaseHeld) {
		logger.C(ctx).Info().Msg("run lease held elsewhere, skipping")
	}
	return res, err
}

func (s *Service) train(ctx context.Context, runID string) (domain.Result, error) {
	log := logger.C(ctx)
	res := domain.Result{RunID: runID}

	keys, err := snapshot.Partitions(ctx, s.Blob, runID)
	if err != nil {
		return res, err
	}
	if len(keys) == 0 {
		log.Error().Str("run_id", runID).Msg("no parquet found for run")
		return res, domain.ErrNoPartitions
	}
	done, err := blob.Exists(ctx, s.Blob, snapshot.Prefix(runID)+snapshot.SuccessFile)
	if err != nil {
		return res, perr.Wrapf(err, perr.CodeOf(err), "train: check %s marker", snapshot.SuccessFile)
	}
	if !done {
		log.Error().Int("partitions", len(keys)).Msg("run has no _SUCCESS marker, refusing partial snapshot")
		return res, domain.ErrIncompleteRun
	}
	rows, err := snapshot.ReadAll(ctx, s.Blob, keys)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		log.Error().Int("partitions", len(keys)).Msg("preprocess run is empty")
		return res, domain.ErrEmptyTable
	}
	res.Rows = len(rows)

	recs := make([]features.Record, len(rows))
	labels := make([]int, len(rows))
	for i, r := range rows {
		recs[i] = r.Record()
		labels[i] = int(r.Label)
	}

	vocab, ok, err := snapshot.ReadVocabulary(ctx, s.Blob, runID)
	if err != nil {
		return res, err
	}
	if !ok {
		vocab = features.Fit(features.Texts(recs), s.Cfg.VocabSize)
		log.Warn().Int("vocab_size", vocab.Size()).Msg("run has no vocabulary, refitted from rows")
	}

	dim := vocab.Dim()
	x := mat.NewDense(len(recs), dim, nil)
	for i, r := range recs {
		features.VectorizeInto(r, vocab, x.RawRowView(i))
	}

	log.Info().
		Str("preprocess_run_id", runID).
		Str("model_type", autoencoder.ModelType).
		Int("input_dim", dim).
		Int("hidden", s.Cfg.Hidden).
		Int("epochs", s.Cfg.Optimizer.Epochs).
		Float64("learning_rate", s.Cfg.Optimizer.LearningRate).
		Int("rows", len(recs)).
		Msg("training params")

	net, err := autoencoder.New(dim, s.Cfg.Hidden, s.Cfg.Seed)
	if err != nil {
		return res, err
	}
	var stats []autoencoder.EpochStat
	losses, err := net.Train(ctx, x, s.Cfg.Optimizer, func(st autoencoder.EpochStat) {
		stats = append(stats, st)
		log.Debug().Int("epoch", st.Epoch).Float64("loss", st.Loss).Msg("epoch")
	})
	if err != nil {
		return res, perr.Wrapf(err, perr.CodeOf(err), "train: fit run %s", runID)
	}
	res.Losses = losses

	errs := net.ReconstructionErrors(x)
	metrics := autoencoder.Evaluate(errs, labels, s.Cfg.ThresholdK)
	metrics.Loss = losses[len(losses)-1]
	res.Metrics = metrics
	if math.IsNaN(metrics.AUC) {
		log.Warn().Msg("auc undefined, weak labels have a single class")
	}
	log.Info().
		Float64("f1", metrics.F1).
		Float64("auc", metrics.AUC).
		Float64("threshold", metrics.Threshold).
		Float64("final_loss", metrics.Loss).
		Msg("training metrics")

	rec, err := s.Registry.Store(ctx, &model.Model{
		RunID:     runID,
		Epochs:    s.Cfg.Optimizer.Epochs,
		Net:       net,
		Vocab:     vocab,
		Metrics:   metrics,
		CreatedAt: s.now().UTC(),
	})
	if err != nil {
		return res, err
	}
	res.Model = rec

	if s.Telemetry != nil {
		s.Telemetry.Epochs(ctx, runID, stats)
		s.Telemetry.Completed(ctx, res)
	}
	return res, nil
}
