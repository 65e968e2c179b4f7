// prsentinel-encode turns stored pull requests into a labelled parquet snapshot
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"prsentinel/internal/modkit/bootkit"
	"prsentinel/internal/platform/logger"

	encodedom "prsentinel/internal/services/encode/domain"
	encodemod "prsentinel/internal/services/encode/module"
	registrymod "prsentinel/internal/services/registry/module"
)

func main() {
	fRunID := flag.String("run-id", "", "snapshot run id (default CORE_ENCODE_RUN_ID or the current UTC time)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *fRunID); err != nil {
		logger.Get().Error().Err(err).Msg("encode failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, runID string) error {
	env, err := bootkit.Open(ctx, "encode", bootkit.Need{PG: true, Blob: true})
	if err != nil {
		return err
	}
	defer env.Close(context.Background())
	deps := env.Deps()

	// the registry is only needed to reuse a trained model's vocabulary
	var models encodemod.ModelLoader
	if encodemod.FromConfig(deps.Cfg).VocabFromModel != "" {
		reg, err := registrymod.New(ctx, deps)
		if err != nil {
			return err
		}
		defer reg.Close()
		models = reg.Registry()
	}

	m, err := encodemod.New(deps, models)
	if err != nil {
		return err
	}
	if runID == "" {
		runID = m.RunID()
	}
	manifest, err := m.Runner().Run(ctx, runID)
	if errors.Is(err, encodedom.ErrNoRecords) {
		return nil
	}
	if err != nil {
		return err
	}
	env.Log.Info().Str("run_id", manifest.RunID).Int("rows", manifest.Rows).Msg("encode finished")
	return nil
}
