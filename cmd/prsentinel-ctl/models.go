package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"prsentinel/internal/modkit/bootkit"
	registrymod "prsentinel/internal/services/registry/module"

	"github.com/spf13/cobra"
)

func modelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect registered models",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List registered models, newest first",
		Args:  cobra.NoArgs,
		RunE:  runModelsList,
	}
	list.Flags().Int("limit", 20, "maximum number of models")

	show := &cobra.Command{
		Use:   "show <id|latest|run:RUN_ID>",
		Short: "Print a model's threshold and metrics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  runModelsShow,
	}

	cmd.AddCommand(list, show)
	return cmd
}

// withRegistry opens the registry for the duration of fn
func withRegistry(cmd *cobra.Command, fn func(*registrymod.Module) error) error {
	ctx := cmd.Context()
	env, err := bootkit.Open(ctx, "ctl", bootkit.Need{Blob: true})
	if err != nil {
		return err
	}
	defer env.Close(ctx)

	reg, err := registrymod.New(ctx, env.Deps())
	if err != nil {
		return err
	}
	defer reg.Close()
	return fn(reg)
}

func runModelsList(cmd *cobra.Command, _ []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	return withRegistry(cmd, func(reg *registrymod.Module) error {
		recs, err := reg.Registry().List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tRUN\tDIM\tTHRESHOLD\tF1\tAUC\tCREATED")
		for _, r := range recs {
			fmt.Fprintf(w, "%s\t%s\t%d\t%.6g\t%s\t%s\t%s\n",
				r.ID, r.RunID, r.InputDim, r.Threshold, opt(r.F1), opt(r.AUC), r.CreatedAt.UTC().Format(time.RFC3339))
		}
		return w.Flush()
	})
}

func runModelsShow(cmd *cobra.Command, args []string) error {
	return withRegistry(cmd, func(reg *registrymod.Module) error {
		rec, err := reg.Registry().Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	})
}

func opt(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}
