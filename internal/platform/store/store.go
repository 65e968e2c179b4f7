// Package store opens the optional backends a process runs against and
// defines the narrow interfaces repos depend on
package store

import (
	"context"
	"errors"

	"prsentinel/internal/platform/logger"

	"github.com/redis/go-redis/v9"
)

// Row is a single result row
type Row interface {
	Scan(dest ...any) error
}

// Rows is a result set. pgx.Rows satisfies it
type Rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// CommandTag reports what a statement did
type CommandTag interface {
	String() string
	RowsAffected() int64
}

// RowQuerier is the sql surface repos run against
type RowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) Row
}

// TxRunner is a RowQuerier that can also run fn in one transaction
type TxRunner interface {
	RowQuerier
	Tx(ctx context.Context, fn func(q RowQuerier) error) error
}

// Clickhouse is the columnar sink for training telemetry
type Clickhouse interface {
	Insert(ctx context.Context, table string, rows [][]any) error
	Exec(ctx context.Context, sql string, args ...any) error
	Close() error
}

// Pinger is anything that can report readiness
type Pinger interface{ Ping(context.Context) error }

// Store holds whichever backends were enabled. Disabled ones stay nil
type Store struct {
	Log   logger.Logger
	PG    TxRunner
	CH    Clickhouse
	Redis *redis.Client
}

// Open connects every backend cfg enables. A failure closes what was
// already opened
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{Log: *logger.Named("store")}
	for _, o := range opts {
		o(s)
	}

	var err error
	if cfg.PG.Enabled {
		s.PG, err = openPG(ctx, cfg.PG, &s.Log)
	}
	if err == nil && cfg.CH.Enabled {
		s.CH, err = openCH(ctx, cfg.CH)
	}
	if err == nil && cfg.RDS.Enabled {
		s.Redis, err = openRedis(cfg.RDS)
	}
	if err != nil {
		_ = s.Close(ctx)
		return nil, err
	}
	return s, nil
}

// Close closes every open backend
func (s *Store) Close(context.Context) error {
	var errs []error
	if c, ok := s.PG.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if s.CH != nil {
		errs = append(errs, s.CH.Close())
	}
	if s.Redis != nil {
		errs = append(errs, s.Redis.Close())
	}
	return errors.Join(errs...)
}
