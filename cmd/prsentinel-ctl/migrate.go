package main

import (
	"fmt"
	"text/tabwriter"

	"prsentinel/internal/modkit/bootkit"
	"prsentinel/internal/platform/store/migrate"
	trainrepo "prsentinel/internal/services/train/repo"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations, and the telemetry tables when clickhouse is configured",
		Args:  cobra.NoArgs,
		RunE:  runMigrateUp,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE:  runMigrateStatus,
	})
	return cmd
}

func runMigrateUp(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := bootkit.Open(ctx, "ctl", bootkit.Need{PG: true})
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	n, err := migrate.Up(ctx, env.Root.MustString("SERVICE_PGSQL_DBURL"))
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "applied %d migration(s)\n", n)

	if env.Store.CH != nil {
		if err := trainrepo.NewCH(env.Store.CH).Ensure(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "clickhouse telemetry tables ready")
	}
	return nil
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	env, err := bootkit.Open(ctx, "ctl", bootkit.Need{PG: true})
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	rows, err := migrate.List(ctx, env.Root.MustString("SERVICE_PGSQL_DBURL"))
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tAPPLIED\tFILE")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%t\t%s\n", r.Version, r.Applied, r.Path)
	}
	return w.Flush()
}
