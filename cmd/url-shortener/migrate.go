package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/internal/app"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Migrate(c.cfg); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Database migrations applied (%s).\n", c.cfg.Storage.Driver)
			return nil
		},
	}
}
