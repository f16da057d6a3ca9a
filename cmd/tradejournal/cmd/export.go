package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/dashboard"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a backup or a CSV of the trades",
	Long: `Export the journal.

Examples:
  tradejournal export backup -o backup.json
  tradejournal export csv > trades.csv`,
}

var exportBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Write the full JSON backup",
	Args:  cobra.NoArgs,
	RunE:  runExportBackup,
}

var exportCSVCmd = &cobra.Command{
	Use:   "csv",
	Short: "Write the trades as CSV",
	Args:  cobra.NoArgs,
	RunE:  runExportCSV,
}

var exportOutput string

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.AddCommand(exportBackupCmd)
	exportCmd.AddCommand(exportCSVCmd)

	exportCmd.PersistentFlags().StringVarP(&exportOutput, "output", "o", "", "output file (default stdout)")
}

// exportTo runs write against the output file, or stdout when none is set.
func exportTo(cmd *cobra.Command, write func(io.Writer) error) error {
	if exportOutput == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote %s\n", exportOutput)
	return nil
}

func runExportBackup(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		return exportTo(cmd, d.ExportBackup)
	})
}

func runExportCSV(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		return exportTo(cmd, d.ExportCSV)
	})
}
