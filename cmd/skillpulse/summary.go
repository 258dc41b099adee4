package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/summary"
)

var (
	summaryRole       string
	summaryContext    string
	summaryRegenerate bool
)

var summaryCmd = &cobra.Command{
	Use:   "summary <candidate-id>",
	Short: "Generate a career summary for a candidate",
	Long:  "Generates a natural-language career summary. Uses the configured AI provider when enabled and falls back to a template otherwise.",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().StringVarP(&summaryRole, "role", "r", "", "target role to steer the summary")
	summaryCmd.Flags().StringVar(&summaryContext, "context", string(model.ContextCareerGrowth), "career_growth, job_search or upskilling")
	summaryCmd.Flags().BoolVar(&summaryRegenerate, "regenerate", false, "bypass the summary cache")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	id, err := parseCandidateID(args[0])
	if err != nil {
		return err
	}
	sctx, err := model.ParseSummaryContext(summaryContext)
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		res, err := a.service.GenerateSummary(ctx, summary.Request{
			CandidateID:     id,
			TargetRole:      summaryRole,
			Context:         sctx,
			ForceRegenerate: summaryRegenerate,
		})
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), res, renderSummary)
	})
}
