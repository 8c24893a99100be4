package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/labelsheet/internal/google"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize labelsheet to read Gmail and write Google Sheets",
		Long: `Run the Google OAuth consent flow for an account and cache the token.

The consent URL is printed to stderr. After approving access in the browser,
Google redirects to a temporary listener on 127.0.0.1 and the token is stored
under the user cache directory. Later runs reuse and refresh it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(false); err != nil {
				return err
			}
			logger, err := setupLogging(cfg, "auth")
			if err != nil {
				return err
			}

			provider, err := newAuthProvider(cfg, logger)
			if err != nil {
				return err
			}
			store := google.NewFileTokenStore("")
			provider.Store = store
			path := store.Path(cfg.Account)
			if store.Has(cfg.Account) {
				logger.Info("replacing cached token", "path", path)
			}

			if _, err := provider.Authorize(context.Background()); err != nil {
				return err
			}
			logger.Info("token cached", "path", path)
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Authorized account %q. Token stored in %s\n", cfg.Account, path)
			return err
		},
	}
}
