package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/amishk599/skillpulse/internal/advisor"
	"github.com/amishk599/skillpulse/internal/explore"
	"github.com/amishk599/skillpulse/internal/model"
	"github.com/amishk599/skillpulse/internal/summary"
)

var exploreCmd = &cobra.Command{
	Use:   "explore <candidate-id>",
	Short: "Browse a candidate's skills interactively (TUI)",
	Long:  "Shows the role picker, loads the candidate report, then launches the split-pane explorer.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplore,
}

func init() {
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	id, err := parseCandidateID(args[0])
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		roles, err := a.service.Roles(ctx)
		if err != nil {
			return err
		}
		role, ok, err := explore.RunRolePicker(roles)
		if err != nil {
			return fmt.Errorf("role picker: %w", err)
		}
		if !ok {
			return nil
		}

		rep, err := explore.RunLoader(fmt.Sprintf("Loading candidate %d", id), func(ctx context.Context) (advisor.Report, error) {
			return a.service.Report(ctx, id, role)
		})
		if err != nil {
			return err
		}

		summarize := func(ctx context.Context, sctx model.SummaryContext) (model.SummaryResult, error) {
			return a.service.GenerateSummary(ctx, summary.Request{
				CandidateID: id,
				TargetRole:  role,
				Context:     sctx,
			})
		}
		return explore.Run(rep, summarize)
	})
}
