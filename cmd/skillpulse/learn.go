package main

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var (
	learnCurrent int
	learnTarget  int
)

var learnCmd = &cobra.Command{
	Use:   "learn <skill>",
	Short: "Estimate the study time to reach a proficiency level in a skill",
	Long: "Estimates hours, weeks and months to raise a skill from --current to --target proficiency " +
		"at 10 study hours a week, and lists what to learn first.",
	Args: cobra.MinimumNArgs(1),
	RunE: runLearn,
}

var prereqsCmd = &cobra.Command{
	Use:   "prereqs <skill>",
	Short: "List the prerequisites and difficulty of a skill",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runPrereqs,
}

func init() {
	learnCmd.Flags().IntVar(&learnCurrent, "current", 0, "current proficiency (0-5)")
	learnCmd.Flags().IntVar(&learnTarget, "target", 3, "target proficiency (1-5)")
	rootCmd.AddCommand(learnCmd, prereqsCmd)
}

// Multi-word skills ("machine learning") may be given unquoted.
func skillName(args []string) string {
	return strings.Join(args, " ")
}

func runLearn(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		est, err := a.service.EstimateLearning(ctx, skillName(args), learnCurrent, learnTarget)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), est, renderLearning)
	})
}

func runPrereqs(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		pre, err := a.service.Prerequisites(ctx, skillName(args))
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), pre, renderPrerequisites)
	})
}
