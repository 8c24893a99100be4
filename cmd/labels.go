package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/teemow/labelsheet/internal/gmail"
)

func newLabelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "labels",
		Short: "List the Gmail labels of the account",
		Long: `List label names and ids. Label names are matched exactly, including case,
so this is the place to check the spelling when an export reports that the
label was not found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if err := cfg.Validate(false); err != nil {
				return err
			}
			logger, err := setupLogging(cfg, "labels")
			if err != nil {
				return err
			}

			ctx := context.Background()
			provider, err := newAuthProvider(cfg, logger)
			if err != nil {
				return err
			}
			client, err := gmail.NewClient(ctx, provider)
			if err != nil {
				return fmt.Errorf("failed to create Gmail client for account %s: %w", cfg.Account, err)
			}

			labels, err := client.ListLabels(ctx)
			if err != nil {
				return err
			}
			return printLabels(cmd, labels)
		},
	}
}

func printLabels(cmd *cobra.Command, labels []gmail.Label) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID")
	for _, l := range labels {
		fmt.Fprintf(w, "%s\t%s\n", l.Name, l.ID)
	}
	return w.Flush()
}
