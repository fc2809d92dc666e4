package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/vadimbarashkov/shortlink/internal/app"
)

func newCreateCmd(c *cli) *cobra.Command {
	var (
		longURL  string
		customID string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a short URL.",
		Long: `Shortens the given URL against the configured store and prints the result.

Example:
  url-shortener create --url="https://go.dev/doc/effective_go" --custom-id=effective-go`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storage, err := app.OpenStorage(cmd.Context(), c.cfg, c.logger.Logger)
			if err != nil {
				return err
			}
			defer storage.Close()

			var id *string
			if cmd.Flags().Changed("custom-id") {
				id = &customID
			}

			rec, err := app.NewURLUseCase(c.cfg, storage, c.logger.Logger).ShortenURL(cmd.Context(), longURL, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID:        %s\n", rec.ShortID)
			fmt.Fprintf(out, "Short URL: %s\n", rec.ShortURL(c.cfg.BaseURL))
			fmt.Fprintf(out, "Original:  %s\n", rec.OriginalURL)

			return nil
		},
	}

	cmd.Flags().StringVar(&longURL, "url", "", "the URL to shorten")
	cmd.Flags().StringVar(&customID, "custom-id", "", "use this id instead of a generated one")
	_ = cmd.MarkFlagRequired("url")

	return cmd
}
