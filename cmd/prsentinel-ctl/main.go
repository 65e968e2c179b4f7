// prsentinel-ctl is the operator tool for schema, models and snapshot runs
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"prsentinel/internal/core/version"

	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "prsentinel-ctl",
		Short:         "Operate the pull request anomaly pipeline",
		Version:       version.Info().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(), modelsCmd(), runsCmd())
	return root
}
