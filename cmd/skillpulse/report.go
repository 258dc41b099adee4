package main

import (
	"context"

	"github.com/spf13/cobra"
)

var reportRole string

var reportCmd = &cobra.Command{
	Use:   "report <candidate-id>",
	Short: "Print a combined health, gap and trend report",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportRole, "role", "r", "", "include a gap analysis against this role")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	id, err := parseCandidateID(args[0])
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		rep, err := a.service.Report(ctx, id, reportRole)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), rep, renderReport)
	})
}
