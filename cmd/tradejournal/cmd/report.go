package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/bankroll"
	"github.com/rustyeddy/tradejournal/dashboard"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Bankroll figures, statistics and goal reports",
	Long: `Reports computed from the trades, transactions and settings.

Subcommands:
  bankroll  - Headline bankroll figures and resolved targets
  stats     - Win rate, gains, losses, best and worst trade
  daily     - Goal progress for one day
  period    - Day-by-day goal results over a date range
  detailed  - Filtered trade list with totals

Examples:
  tradejournal report daily 2025-01-16
  tradejournal report period 2025-01-01 2025-01-31 --csv january.csv
  tradejournal report detailed --asset ADAUSDT --outcome loss`,
}

var reportBankrollCmd = &cobra.Command{
	Use:   "bankroll",
	Short: "Show bankroll figures",
	Args:  cobra.NoArgs,
	RunE:  runReportBankroll,
}

var reportStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show trade statistics",
	Args:  cobra.NoArgs,
	RunE:  runReportStats,
}

var reportDailyCmd = &cobra.Command{
	Use:   "daily [YYYY-MM-DD]",
	Short: "Show goal progress for a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runReportDaily,
}

var reportPeriodCmd = &cobra.Command{
	Use:   "period <start> <end>",
	Short: "Show goal results for each day of a range",
	Args:  cobra.ExactArgs(2),
	RunE:  runReportPeriod,
}

var reportDetailedCmd = &cobra.Command{
	Use:   "detailed",
	Short: "Show a filtered trade list",
	Args:  cobra.NoArgs,
	RunE:  runReportDetailed,
}

var periodCSV string

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportBankrollCmd)
	reportCmd.AddCommand(reportStatsCmd)
	reportCmd.AddCommand(reportDailyCmd)
	reportCmd.AddCommand(reportPeriodCmd)
	reportCmd.AddCommand(reportDetailedCmd)

	reportPeriodCmd.Flags().StringVar(&periodCSV, "csv", "", "also write the per-day rows to this CSV file")
	addFilterFlags(reportDetailedCmd)
}

func runReportBankroll(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		bankroll.PrintFigures(cmd.OutOrStdout(), d.Figures())
		return nil
	})
}

func runReportStats(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		bankroll.PrintStats(cmd.OutOrStdout(), d.Stats())
		return nil
	})
}

func runReportDaily(cmd *cobra.Command, args []string) error {
	date := ""
	if len(args) == 1 {
		date = args[0]
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		bankroll.PrintDaily(cmd.OutOrStdout(), d.Daily(date))
		return nil
	})
}

func runReportPeriod(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		r, err := d.Period(args[0], args[1])
		if err != nil {
			return err
		}
		bankroll.PrintPeriod(cmd.OutOrStdout(), r)

		if periodCSV == "" {
			return nil
		}
		f, err := os.Create(periodCSV)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		defer f.Close()
		if err := bankroll.WritePeriodCSV(f, r); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s\n", periodCSV)
		return nil
	})
}

func runReportDetailed(cmd *cobra.Command, args []string) error {
	f, err := filterFromFlags()
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		bankroll.PrintDetailed(cmd.OutOrStdout(), d.Detailed(f))
		return nil
	})
}
