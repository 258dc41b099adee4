package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/skillpulse/internal/store"
)

var importCmd = &cobra.Command{
	Use:   "import <dataset.yaml>",
	Short: "Load candidates, market data and history into the store",
	Long:  "Reads a YAML (or JSON) dataset with candidates, market and history sections and writes it to the configured store.",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	d, err := store.LoadDataset(args[0])
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		stats, err := store.Import(ctx, a.store, d)
		if err != nil {
			return fmt.Errorf("import %s: %w", args[0], err)
		}
		a.demand.Invalidate()
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d candidates, %d market entries, %d history points\n",
			stats.Candidates, stats.Market, stats.History)
		return nil
	})
}
