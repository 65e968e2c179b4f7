// Package repo writes training telemetry to clickhouse
package repo

import (
	"context"
	"math"
	"time"

	"prsentinel/internal/core/autoencoder"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/platform/store"
	"prsentinel/internal/services/train/domain"
)

// Schema creates the telemetry tables. Applied by prsentinel-ctl migrate when clickhouse is configured
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS train_epochs (
		run_id      String,
		epoch       UInt32,
		loss        Float64,
		recorded_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree ORDER BY (run_id, epoch)`,
	`CREATE TABLE IF NOT EXISTS train_runs (
		run_id     String,
		model_id   String,
		rows       UInt64,
		input_dim  UInt32,
		epochs     UInt32,
		threshold  Float64,
		f1         Float64,
		auc        Nullable(Float64),
		final_loss Float64,
		created_at DateTime64(3, 'UTC')
	) ENGINE = MergeTree ORDER BY (run_id, created_at)`,
}

// CH is a domain.Telemetry backed by clickhouse. Write failures are logged and dropped
type CH struct {
	db  store.Clickhouse
	now func() time.Time
}

var _ domain.Telemetry = (*CH)(nil)

// NewCH returns a clickhouse sink
func NewCH(db store.Clickhouse) *CH { return &CH{db: db, now: time.Now} }

// Ensure applies Schema
func (c *CH) Ensure(ctx context.Context) error {
	for _, ddl := range Schema {
		if err := c.db.Exec(ctx, ddl); err != nil {
			return err
		}
	}
	return nil
}

// Epochs appends one row per epoch
func (c *CH) Epochs(ctx context.Context, runID string, stats []autoencoder.EpochStat) {
	at := c.now().UTC()
	rows := make([][]any, 0, len(stats))
	for _, s := range stats {
		rows = append(rows, []any{runID, uint32(s.Epoch), s.Loss, at})
	}
	if err := c.db.Insert(ctx, "train_epochs", rows); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("telemetry: train_epochs insert failed")
	}
}

// Completed appends the run summary
func (c *CH) Completed(ctx context.Context, res domain.Result) {
	var auc *float64
	if !math.IsNaN(res.Metrics.AUC) {
		v := res.Metrics.AUC
		auc = &v
	}
	row := []any{
		res.RunID,
		res.Model.ID,
		uint64(res.Rows),
		uint32(res.Model.InputDim),
		uint32(res.Model.Epochs),
		res.Metrics.Threshold,
		res.Metrics.F1,
		auc,
		res.Metrics.Loss,
		c.now().UTC(),
	}
	if err := c.db.Insert(ctx, "train_runs", [][]any{row}); err != nil {
		logger.C(ctx).Warn().Err(err).Msg("telemetry: train_runs insert failed")
	}
}
