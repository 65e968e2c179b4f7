package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxQuerier is the surface pgxpool.Pool and pgx.Tx share
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// querier narrows pgx types to the store interfaces
type querier struct{ q pgxQuerier }

func (x querier) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	return x.q.Exec(ctx, sql, args...)
}

func (x querier) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	rs, err := x.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (x querier) QueryRow(ctx context.Context, sql string, args ...any) Row {
	return x.q.QueryRow(ctx, sql, args...)
}

// sqlStore is the postgres TxRunner. Statement logging happens in the pgx
// tracer so queries inside transactions are covered too
type sqlStore struct {
	querier
	pool *pgxpool.Pool
}

func newSQLStore(pool *pgxpool.Pool) *sqlStore {
	return &sqlStore{querier: querier{q: pool}, pool: pool}
}

// Tx commits when fn returns nil and rolls back otherwise
func (s *sqlStore) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(querier{q: tx})
	})
}

func (s *sqlStore) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

func (s *sqlStore) Close() error {
	s.pool.Close()
	return nil
}
