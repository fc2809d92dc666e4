package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/internal/app"
)

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats <id>",
		Short: "Show click statistics of a short URL.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := app.OpenStorage(cmd.Context(), c.cfg, c.logger.Logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			rec, err := app.NewURLUseCase(c.cfg, storage, c.logger.Logger).GetURLStats(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			lastAccessed := "never"
			if rec.LastAccessed != nil {
				lastAccessed = rec.LastAccessed.Format(time.RFC3339)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:            %s\n", rec.ShortID)
			fmt.Fprintf(out, "Short URL:     %s\n", rec.ShortURL(c.cfg.BaseURL))
			fmt.Fprintf(out, "Original:      %s\n", rec.OriginalURL)
			fmt.Fprintf(out, "Clicks:        %d\n", rec.ClickCount)
			fmt.Fprintf(out, "Created at:    %s\n", rec.CreatedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "Last accessed: %s\n", lastAccessed)

			return nil
		},
	}
}
