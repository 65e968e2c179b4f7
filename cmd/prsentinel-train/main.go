// prsentinel-train fits the autoencoder on one snapshot run and registers it
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

	registrymod "prsentinel/internal/services/registry/module"
	"prsentinel/internal/services/train/guardrails"
	trainmod "prsentinel/internal/services/train/module"
)

func main() {
	fRunID := flag.String("run-id", "", "preprocess run to train on (overrides CORE_TRAIN_RUN_ID)")
	flag.Parse()

	if *fRunID != "" {
		_ = os.Setenv("CORE_TRAIN_RUN_ID", *fRunID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error().Err(err).Msg("training failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	env, err := bootkit.Open(ctx, "train", bootkit.Need{Blob: true})
	if err != nil {
		return err
	}
	defer env.Close(context.Background())
	deps := env.Deps()

	reg, err := registrymod.New(ctx, deps)
	if err != nil {
		return err
	}
	defer reg.Close()

	m, err := trainmod.New(deps, reg.Registry())
	if err != nil {
		return err
	}
	res, err := m.Runner().Run(ctx, m.RunID())
	if errors.Is(err, guardrails.ErrLeaseHeld) {
		return nil
	}
	if err != nil {
		return err
	}
	env.Log.Info().
		Str("model_id", res.Model.ID).
		Str("run_id", res.RunID).
		Int("rows", res.Rows).
		Msg("training finished")
	return nil
}
