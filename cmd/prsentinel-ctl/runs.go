package main

import (
	"fmt"
	"text/tabwriter"

	"prsentinel/internal/adapters/snapshot"
	"prsentinel/internal/modkit/bootkit"

	"github.com/spf13/cobra"
)

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect preprocess snapshot runs",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List snapshot runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			env, err := bootkit.Open(ctx, "ctl", bootkit.Need{Blob: true})
			if err != nil {
				return err
			}
			defer env.Close(ctx)

			runs, err := snapshot.ListRuns(ctx, env.Blob)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "RUN\tPARTITIONS\tCOMPLETE")
			for _, r := range runs {
				fmt.Fprintf(w, "%s\t%d\t%t\n", r.RunID, r.Partitions, r.Complete)
			}
			return w.Flush()
		},
	})
	return cmd
}
