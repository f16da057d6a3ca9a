package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/importer"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Merge trades from backups, spreadsheets or screenshot text",
	Long: `Merge external records into the journal. Trades already present
(same date, time and asset) are skipped; incomplete ones are rejected.

Subcommands:
  backup  - A JSON backup written by 'export backup'
  csv     - A spreadsheet with columns data,hora,ativo,tipo,valor,resultado,lucro_prejuizo
  ocr     - Text recognised from a broker screenshot

Examples:
  tradejournal import backup backup.json
  tradejournal import csv trades.csv
  tradejournal import ocr screenshot.txt --name Screenshot_16012025.png`,
}

var importBackupCmd = &cobra.Command{
	Use:   "backup <file>",
	Short: "Merge a backup file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportBackup,
}

var importCSVCmd = &cobra.Command{
	Use:   "csv <file>",
	Short: "Merge a CSV spreadsheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportCSV,
}

var importOCRCmd = &cobra.Command{
	Use:   "ocr <text-file>",
	Short: "Merge trades found in recognised screenshot text",
	Args:  cobra.ExactArgs(1),
	RunE:  runImportOCR,
}

var ocrImageName string

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importBackupCmd)
	importCmd.AddCommand(importCSVCmd)
	importCmd.AddCommand(importOCRCmd)

	importOCRCmd.Flags().StringVar(&ocrImageName, "name", "", "screenshot file name, read for a ddmmyyyy date (default the text file name)")
}

func printResult(cmd *cobra.Command, what string, r importer.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %d added, %d duplicates skipped, %d rejected\n", what, r.Added, r.Skipped, r.Rejected)
}

func runImportBackup(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open backup: %w", err)
	}
	defer f.Close()

	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		rep, err := d.ImportBackup(ctx, f)
		if err != nil {
			return fmt.Errorf("import backup: %w", err)
		}
		printResult(cmd, "Trades", rep.Trades)
		printResult(cmd, "Transactions", rep.Transactions)
		if len(rep.Ignored) > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "  Ignored invalid settings: %v\n", rep.Ignored)
		}
		return nil
	})
}

func runImportCSV(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		res, err := d.ImportCSV(ctx, f)
		if err != nil {
			return fmt.Errorf("import csv: %w", err)
		}
		printResult(cmd, "Trades", res)
		return nil
	})
}

func runImportOCR(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read text: %w", err)
	}
	name := ocrImageName
	if name == "" {
		name = filepath.Base(args[0])
	}

	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		res, err := d.ImportOCR(ctx, string(text), name)
		if err != nil {
			return fmt.Errorf("import ocr: %w", err)
		}
		printResult(cmd, "Trades", res)
		return nil
	})
}
