// Package service implements the feature encoder: records in, labelled parquet snapshot out
package service

import (
	"context"
	"time"

	"prsentinel/internal/adapters/snapshot"
	"prsentinel/internal/core/features"
	"prsentinel/internal/modkit/repokit"
	"prsentinel/internal/platform/blob"
	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/services/encode/domain"
)

// Config holds the encoder settings
type Config struct {
	VocabSize      int   // <=0 -> features.DefaultVocabSize
	LabelThreshold int64 // <=0 -> features.DefaultLabelThreshold
	PartitionRows  int   // <=0 -> snapshot.DefaultPartitionRows
	Filter         domain.Filter
}

// Service implements domain.RunnerPort
type Service struct {
	DB     repokit.Queryer
	Binder repokit.Binder[domain.RecordReader]
	Blob   blob.Store
	Vocab  domain.VocabularySource // nil fits a fresh vocabulary each run
	Cfg    Config

	now func() time.Time
}

// New constructs the encoder service
func New(db repokit.Queryer, binder repokit.Binder[domain.RecordReader], store blob.Store, vocab domain.VocabularySource, cfg Config) *Service {
	if db == nil || binder == nil || store == nil {
		panic("encode.Service requires a queryer, a binder and a blob store")
	}
	if cfg.VocabSize <= 0 {
		cfg.VocabSize = features.DefaultVocabSize
	}
	if cfg.LabelThreshold <= 0 {
		cfg.LabelThreshold = features.DefaultLabelThreshold
	}
	return &Service{DB: db, Binder: binder, Blob: store, Vocab: vocab, Cfg: cfg, now: time.Now}
}

// Run encodes every selected record into preprocess-runs/<runID>/. An empty runID gets
// the current UTC timestamp. An empty store returns domain.ErrNoRecords and writes nothing
func (s *Service) Run(ctx context.Context, runID string) (snapshot.Manifest, error) {
	if runID == "" {
		runID = snapshot.NewRunID(s.now())
	}
	if err := snapshot.ValidateRunID(runID); err != nil {
		return snapshot.Manifest{}, err
	}
	ctx = logger.WithRun(ctx, runID)
	log := logger.C(ctx)

	recs, err := s.Binder.Bind(s.DB).ListRecords(ctx, s.Cfg.Filter)
	if err != nil {
		return snapshot.Manifest{RunID: runID}, perr.Wrap(err, perr.ErrorCodeDB, "encode: read records")
	}
	if len(recs) == 0 {
		log.Warn().Msg("no pull request records found")
		return snapshot.Manifest{RunID: runID}, domain.ErrNoRecords
	}
	log.Info().Int("records", len(recs)).Msg("loaded pull request records")

	vocab, err := s.vocabulary(ctx, recs)
	if err != nil {
		return snapshot.Manifest{RunID: runID}, err
	}

	rows := make([]snapshot.Row, len(recs))
	positives := 0
	for i, r := range recs {
		label := features.WeakLabel(r, s.Cfg.LabelThreshold)
		positives += label
		rows[i] = snapshot.FromRecord(r, label)
	}

	m, err := snapshot.Write(ctx, s.Blob, runID, rows, vocab, s.Cfg.PartitionRows)
	if err != nil {
		return m, err
	}
	log.Info().
		Int("rows", m.Rows).
		Int("partitions", len(m.Partitions)).
		Int("vocab_size", m.VocabSize).
		Int("positives", positives).
		Msg("snapshot written")
	return m, nil
}

func (s *Service) vocabulary(ctx context.Context, recs []features.Record) (*features.Vocabulary, error) {
	if s.Vocab == nil {
		return features.Fit(features.Texts(recs), s.Cfg.VocabSize), nil
	}
	v, err := s.Vocab(ctx)
	if err != nil {
		return nil, perr.Wrapf(err, perr.CodeOf(err), "encode: load vocabulary")
	}
	logger.C(ctx).Info().Int("vocab_size", v.Size()).Msg("reusing vocabulary")
	return v, nil
}
