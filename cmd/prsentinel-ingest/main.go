// prsentinel-ingest pulls pull requests of the most starred repositories into postgres
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"prsentinel/internal/modkit/bootkit"
	"prsentinel/internal/platform/config"
	"prsentinel/internal/platform/logger"
	"prsentinel/internal/platform/store/migrate"

	ingestmod "prsentinel/internal/services/ingest/module"
)

func main() {
	fMigrate := flag.Bool("migrate", false, "apply pending schema migrations before ingesting")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *fMigrate); err != nil {
		logger.Get().Error().Err(err).Msg("ingest failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, applyMigrations bool) error {
	env, err := bootkit.Open(ctx, "ingest", bootkit.Need{PG: true})
	if err != nil {
		return err
	}
	defer env.Close(context.Background())

	if applyMigrations {
		n, err := migrate.Up(ctx, config.New().MustString("SERVICE_PGSQL_DBURL"))
		if err != nil {
			return err
		}
		env.Log.Info().Int("applied", n).Msg("migrations applied")
	}

	m, err := ingestmod.New(env.Deps(), nil)
	if err != nil {
		return err
	}
	sum, err := m.Runner().Run(ctx)
	if err != nil {
		return err
	}
	env.Log.Info().
		Int("repos", sum.Repos).
		Int("failed", sum.Failed).
		Int("upserted", sum.Upserted).
		Int("skipped", sum.Skipped).
		Msg("ingest finished")
	return nil
}
