// Package repo stores registry metadata with gorm on postgres or sqlite
package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	perr "prsentinel/internal/platform/errors"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/services/registry/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// modelRow is the registered_models table
type modelRow struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)"`
	RunID       string    `gorm:"index;not null"`
	ModelType   string    `gorm:"not null"`
	InputDim    int       `gorm:"not null"`
	Hidden      int       `gorm:"not null"`
	Epochs      int       `gorm:"not null"`
	Threshold   float64   `gorm:"not null"`
	F1          *float64
	AUC         *float64
	FinalLoss   *float64
	ArtifactKey string    `gorm:"not null"`
	CreatedAt   time.Time `gorm:"index;not null"`
}

func (modelRow) TableName() string { return "registered_models" }

func toRow(r domain.ModelRecord) modelRow {
	return modelRow{
		ID: r.ID, RunID: r.RunID, ModelType: r.ModelType,
		InputDim: r.InputDim, Hidden: r.Hidden, Epochs: r.Epochs,
		Threshold: r.Threshold, F1: r.F1, AUC: r.AUC, FinalLoss: r.FinalLoss,
		ArtifactKey: r.ArtifactKey, CreatedAt: r.CreatedAt.UTC(),
	}
}

func (m modelRow) record() domain.ModelRecord {
	return domain.ModelRecord{
		ID: m.ID, RunID: m.RunID, ModelType: m.ModelType,
		InputDim: m.InputDim, Hidden: m.Hidden, Epochs: m.Epochs,
		Threshold: m.Threshold, F1: m.F1, AUC: m.AUC, FinalLoss: m.FinalLoss,
		ArtifactKey: m.ArtifactKey, CreatedAt: m.CreatedAt.UTC(),
	}
}

// Gorm implements domain.Repo
type Gorm struct {
	db *gorm.DB
}

// New wraps an open gorm handle
func New(db *gorm.DB) *Gorm { return &Gorm{db: db} }

// zerologWriter routes gorm's printf style logger into zerolog
type zerologWriter struct{ l *logger.Logger }

func (w zerologWriter) Printf(format string, args ...any) {
	w.l.Warn().Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// Dialector picks the driver from the dsn: postgres:// and postgresql:// go to postgres,
// sqlite://path, file:path and bare paths go to sqlite
func Dialector(dsn string) (gorm.Dialector, error) {
	dsn = strings.TrimSpace(dsn)
	switch {
	case dsn == "":
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "registry: empty dsn")
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return postgres.Open(dsn), nil
	case strings.HasPrefix(dsn, "sqlite://"):
		return sqlite.Open(strings.TrimPrefix(dsn, "sqlite://")), nil
	default:
		return sqlite.Open(dsn), nil
	}
}

// Open connects and migrates the registry table
func Open(ctx context.Context, dsn string) (*Gorm, error) {
	dial, err := Dialector(dsn)
	if err != nil {
		return nil, err
	}
	gl := gormlogger.New(zerologWriter{l: logger.Named("registry")}, gormlogger.Config{
		SlowThreshold:             time.Second,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
	db, err := gorm.Open(dial, &gorm.Config{Logger: gl, TranslateError: true})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "registry: open")
	}
	if err := db.WithContext(ctx).AutoMigrate(&modelRow{}); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "registry: migrate")
	}
	return New(db), nil
}

// Close releases the underlying pool
func (g *Gorm) Close() error {
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Create inserts a record; ids are never reused
func (g *Gorm) Create(ctx context.Context, rec domain.ModelRecord) error {
	row := toRow(rec)
	if err := g.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return perr.DuplicateKeyf("registry: model %s already exists", rec.ID)
		}
		return perr.Wrap(err, perr.ErrorCodeDB, "registry: create")
	}
	return nil
}

// Get fetches one record by id
func (g *Gorm) Get(ctx context.Context, id string) (domain.ModelRecord, error) {
	var row modelRow
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	return g.one(row, err, "model "+id)
}

// Latest returns the newest record, optionally within one run
func (g *Gorm) Latest(ctx context.Context, runID string) (domain.ModelRecord, error) {
	q := g.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	what := "any model"
	if runID != "" {
		q = q.Where("run_id = ?", runID)
		what = "model for run " + runID
	}
	var row modelRow
	err := q.First(&row).Error
	return g.one(row, err, what)
}

func (g *Gorm) one(row modelRow, err error, what string) (domain.ModelRecord, error) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ModelRecord{}, perr.NotFoundf("registry: %s not found", what)
	}
	if err != nil {
		return domain.ModelRecord{}, perr.Wrap(err, perr.ErrorCodeDB, "registry: query")
	}
	return row.record(), nil
}

// List returns newest first. limit <= 0 means 50
func (g *Gorm) List(ctx context.Context, limit int) ([]domain.ModelRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []modelRow
	if err := g.db.WithContext(ctx).Order("created_at DESC").Order("id DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeDB, "registry: list")
	}
	out := make([]domain.ModelRecord, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}
