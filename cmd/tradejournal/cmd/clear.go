package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/dashboard"
)

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every trade and transaction and reset the settings",
	Long: `Remove all trades and transactions and restore the factory
settings. Snapshots are kept, so 'snapshot restore' can undo it.`,
	Args: cobra.NoArgs,
	RunE: runClear,
}

var clearYes bool

func init() {
	rootCmd.AddCommand(clearCmd)
	clearCmd.Flags().BoolVar(&clearYes, "yes", false, "confirm")
}

func runClear(cmd *cobra.Command, args []string) error {
	if !clearYes {
		return fmt.Errorf("refusing to clear the journal without --yes")
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		if _, err := d.Snapshot(ctx); err != nil {
			return fmt.Errorf("snapshot before clear: %w", err)
		}
		if err := d.ClearAll(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Journal cleared")
		return nil
	})
}
