package main

import (
	"os"

	"github.com/go-chi/httplog/v2"
	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/internal/app"
	"github.com/vadimbarashkov/shortlink/internal/config"
)

// cli carries the state loaded once for every subcommand.
type cli struct {
	configPath string
	cfg        *config.Config
	logger     *httplog.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "url-shortener",
		Short:         "Shorten URLs, redirect short ids and report click statistics.",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}

			c.cfg = cfg
			c.logger = app.NewLogger(cfg)

			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", os.Getenv("CONFIG_PATH"), "path to the YAML config file (env CONFIG_PATH)")

	root.AddCommand(
		newServeCmd(c),
		newCreateCmd(c),
		newStatsCmd(c),
		newMigrateCmd(c),
	)

	return root
}
