package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/amishk599/skillpulse/internal/trend"
)

var (
	gapRole      string
	gapCandidate string
)

var gapCmd = &cobra.Command{
	Use:   "gap --role <role> [skill...]",
	Short: "Compare skills against a role's requirements",
	Long: "Compares a list of skills with the named role. Skills may be given as arguments (comma-separated or separate) " +
		"or taken from a stored candidate with --candidate.",
	RunE: runGap,
}

func init() {
	gapCmd.Flags().StringVarP(&gapRole, "role", "r", "", "target role, e.g. \"Backend Developer\"")
	gapCmd.Flags().StringVar(&gapCandidate, "candidate", "", "use the skills of this stored candidate")
	_ = gapCmd.MarkFlagRequired("role")
	rootCmd.AddCommand(gapCmd)
}

func runGap(cmd *cobra.Command, args []string) error {
	var skills []string
	for _, a := range args {
		skills = append(skills, trend.SplitSkills(a)...)
	}
	if len(skills) == 0 && gapCandidate == "" {
		return errors.New("give at least one skill or --candidate")
	}

	return withApp(func(ctx context.Context, a *app) error {
		if gapCandidate != "" {
			id, err := parseCandidateID(gapCandidate)
			if err != nil {
				return err
			}
			c, err := a.store.Candidate(ctx, id)
			if err != nil {
				return err
			}
			for _, s := range c.Skills {
				skills = append(skills, s.Name)
			}
		}
		res, err := a.service.ComputeGapAnalysis(ctx, skills, gapRole)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), res, renderGap)
	})
}
