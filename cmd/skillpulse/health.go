package main

import (
	"context"

	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health <candidate-id>",
	Short: "Print career health scores for a candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	id, err := parseCandidateID(args[0])
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		scores, err := a.service.ComputeHealthScores(ctx, id)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), scores, renderHealth)
	})
}
