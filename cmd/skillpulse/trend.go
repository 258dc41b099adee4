package main

import (
	"context"
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/amishk599/skillpulse/internal/trend"
)

var (
	trendMonths   int
	compareMonths int
	moversDir     string
	moversLimit   int
	moversPeriod  int
	catMonths     int
)

var trendCmd = &cobra.Command{
	Use:   "trend <skill> [skill...]",
	Short: "Show the monthly demand trend for one or more skills",
	Long: "With one skill, prints its series month by month. With several (or a comma-separated list), " +
		"prints one sparkline per skill; months must then be between 6 and 24.",
	Args: cobra.MinimumNArgs(1),
	RunE: runTrend,
}

var compareCmd = &cobra.Command{
	Use:   "compare <skill> [skill...]",
	Short: "Compare stored demand history across skills",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCompare,
}

var moversCmd = &cobra.Command{
	Use:   "movers",
	Short: "List the skills whose demand moved most recently",
	RunE:  runMovers,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Show stored demand change per market category",
	RunE:  runCategories,
}

func init() {
	trendCmd.Flags().IntVarP(&trendMonths, "months", "m", 12, "series length in months")
	compareCmd.Flags().IntVarP(&compareMonths, "months", "m", 12, "history window in months")
	moversCmd.Flags().StringVarP(&moversDir, "direction", "d", "up", "up, down or volatile")
	moversCmd.Flags().IntVarP(&moversLimit, "limit", "n", trend.DefaultMoverLimit, "number of skills to list (1-50)")
	moversCmd.Flags().IntVarP(&moversPeriod, "period", "p", trend.DefaultMoverPeriod, "analysis period in months (1-12)")
	categoriesCmd.Flags().IntVarP(&catMonths, "months", "m", 12, "history window in months (1-24)")
	rootCmd.AddCommand(trendCmd, compareCmd, moversCmd, categoriesCmd)
}

func skillArgs(args []string) ([]string, error) {
	skills := trend.SplitSkills(strings.Join(args, ","))
	if len(skills) == 0 {
		return nil, errors.New("give at least one skill")
	}
	return skills, nil
}

func runTrend(cmd *cobra.Command, args []string) error {
	skills, err := skillArgs(args)
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		if len(skills) == 1 {
			series, err := a.service.GetTrend(ctx, skills[0], trendMonths)
			if err != nil {
				return err
			}
			return output(cmd.OutOrStdout(), series, renderSeries)
		}
		mt, err := a.service.MarketTrends(ctx, skills, trendMonths)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), mt, renderMarketTrends)
	})
}

func runCompare(cmd *cobra.Command, args []string) error {
	skills, err := skillArgs(args)
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		res, err := a.service.CompareTrends(ctx, skills, compareMonths)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), res, renderCompare)
	})
}

func runMovers(cmd *cobra.Command, args []string) error {
	dir, err := trend.ParseMoverDirection(moversDir)
	if err != nil {
		return err
	}
	return withApp(func(ctx context.Context, a *app) error {
		res, err := a.service.Movers(ctx, dir, moversLimit, moversPeriod)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), res, renderMovers)
	})
}

func runCategories(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		res, err := a.service.CategoryTrends(ctx, catMonths)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), res, renderCategories)
	})
}
