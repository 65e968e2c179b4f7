// Package migrate applies the embedded postgres schema with goose
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"prsentinel/internal/platform/logger"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the pgx database/sql driver
	"github.com/pressly/goose/v3"
	"github.com/pressly/goose/v3/database"
)

//go:embed sql/*.sql
var embedded embed.FS

// Status is one row of migration state
type Status struct {
	Version int64
	Path    string
	Applied bool
}

// openDB is a seam for tests
var openDB = func(dsn string) (*sql.DB, error) { return sql.Open("pgx", dsn) }

func provider(db *sql.DB) (*goose.Provider, error) {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		return nil, err
	}
	return goose.NewProvider(database.DialectPostgres, db, sub)
}

// Up applies every pending migration and returns how many ran
func Up(ctx context.Context, dsn string) (int, error) {
	db, err := openDB(dsn)
	if err != nil {
		return 0, fmt.Errorf("migrate: open: %w", err)
	}
	defer db.Close()

	p, err := provider(db)
	if err != nil {
		return 0, fmt.Errorf("migrate: provider: %w", err)
	}
	res, err := p.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("migrate: up: %w", err)
	}
	log := logger.Named("migrate")
	for _, r := range res {
		log.Info().
			Int64("version", r.Source.Version).
			Str("path", r.Source.Path).
			Dur("took", r.Duration).
			Msg("migration applied")
	}
	return len(res), nil
}

// List reports the state of every embedded migration
func List(ctx context.Context, dsn string) ([]Status, error) {
	db, err := openDB(dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate: open: %w", err)
	}
	defer db.Close()

	p, err := provider(db)
	if err != nil {
		return nil, fmt.Errorf("migrate: provider: %w", err)
	}
	st, err := p.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("migrate: status: %w", err)
	}
	out := make([]Status, 0, len(st))
	for _, s := range st {
		out = append(out, Status{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		})
	}
	return out, nil
}

// Files returns the embedded migration file names in order
func Files() ([]string, error) {
	ents, err := fs.ReadDir(embedded, "sql")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(ents))
	for _, e := range ents {
		out = append(out, e.Name())
	}
	return out, nil
}
