package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amishk599/skillpulse/internal/advisor"
)

var recommendLimit int

var recommendCmd = &cobra.Command{
	Use:   "recommend <candidate-id>",
	Short: "Rank the catalog roles that best fit a candidate",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecommend,
}

func init() {
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", advisor.DefaultRecommendations, "number of roles (1-10)")
	rootCmd.AddCommand(recommendCmd)
}

func runRecommend(cmd *cobra.Command, args []string) error {
	id, err := parseCandidateID(args[0])
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		res, err := a.service.RecommendRoles(ctx, id, recommendLimit)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), res, renderRecommendations)
	})
}
