package main

import (
	"context"

	"github.com/spf13/cobra"
)

var rolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List the roles available for gap analysis",
	RunE:  runRoles,
}

func init() {
	rootCmd.AddCommand(rolesCmd)
}

func runRoles(cmd *cobra.Command, args []string) error {
	return withApp(func(ctx context.Context, a *app) error {
		roles, err := a.service.Roles(ctx)
		if err != nil {
			return err
		}
		return output(cmd.OutOrStdout(), roles, renderRoles)
	})
}
