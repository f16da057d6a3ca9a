package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/dashboard"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "List, take or restore automatic backups",
	Long: `Snapshots are full backups kept inside the journal database. The
watch command takes one every schedule.backup_every.

Examples:
  tradejournal snapshot list
  tradejournal snapshot restore 01JHKX3V6Q8M2T0Z5C1N7R4B9D`,
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List snapshots, newest first",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotList,
}

var snapshotTakeCmd = &cobra.Command{
	Use:   "take",
	Short: "Take a snapshot now",
	Args:  cobra.NoArgs,
	RunE:  runSnapshotTake,
}

var snapshotRestoreCmd = &cobra.Command{
	Use:   "restore <snapshot-id>",
	Short: "Replace the journal with a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotRestore,
}

func init() {
	rootCmd.AddCommand(snapshotCmd)
	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotTakeCmd)
	snapshotCmd.AddCommand(snapshotRestoreCmd)
}

func runSnapshotList(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		list, err := d.ListSnapshots(ctx)
		if err != nil {
			return err
		}
		for _, s := range list {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s  %d trades\n", s.ID, s.Created.Local().Format("2006-01-02 15:04:05"), s.Trades)
		}
		return nil
	})
}

func runSnapshotTake(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		info, err := d.Snapshot(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Snapshot %s (%d trades)\n", info.ID, info.Trades)
		return nil
	})
}

func runSnapshotRestore(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		if err := d.Restore(ctx, args[0]); err != nil {
			return fmt.Errorf("restore: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Restored snapshot %s\n", args[0])
		return nil
	})
}
