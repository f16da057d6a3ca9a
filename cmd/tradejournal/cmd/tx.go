package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/journal"
)

var txCmd = &cobra.Command{
	Use:   "tx",
	Short: "Record deposits and withdrawals",
	Long: `Manage cash transactions against the bankroll.

Examples:
  tradejournal tx add --type deposit --amount 100
  tradejournal tx add --type withdrawal --amount 25 --desc "fees"
  tradejournal tx rm 1737028800000`,
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a deposit or withdrawal",
	Args:  cobra.NoArgs,
	RunE:  runTxAdd,
}

var txEditCmd = &cobra.Command{
	Use:   "edit <timestamp>",
	Short: "Replace a transaction; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxEdit,
}

var txRmCmd = &cobra.Command{
	Use:   "rm <timestamp>",
	Short: "Remove a transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runTxRm,
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Args:  cobra.NoArgs,
	RunE:  runTxList,
}

var (
	txType   string
	txAmount string
	txDesc   string
)

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txAddCmd)
	txCmd.AddCommand(txEditCmd)
	txCmd.AddCommand(txRmCmd)
	txCmd.AddCommand(txListCmd)

	for _, c := range []*cobra.Command{txAddCmd, txEditCmd} {
		c.Flags().StringVarP(&txType, "type", "t", "deposit", "deposit or withdrawal")
		c.Flags().StringVarP(&txAmount, "amount", "m", "", "positive amount")
		c.Flags().StringVar(&txDesc, "desc", "", "optional description")
	}
	txAddCmd.MarkFlagRequired("amount")
}

func parseTimestamp(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return v, nil
}

func runTxAdd(cmd *cobra.Command, args []string) error {
	typ, err := journal.ParseTxType(txType)
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		c, err := d.AddTransaction(ctx, journal.CashTransaction{
			Type:        typ,
			Amount:      journal.ParseAmount(txAmount),
			Description: txDesc,
		})
		if err != nil {
			return fmt.Errorf("add transaction: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added %s %d: %.2f\n", c.Type, c.Timestamp, c.Amount)
		return nil
	})
}

func runTxEdit(cmd *cobra.Command, args []string) error {
	ts, err := parseTimestamp(args[0])
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		var cur journal.CashTransaction
		found := false
		for _, c := range d.Transactions() {
			if c.Timestamp == ts {
				cur, found = c, true
				break
			}
		}
		if !found {
			return fmt.Errorf("transaction %d: %w", ts, journal.ErrNotFound)
		}

		flags := cmd.Flags()
		if flags.Changed("type") {
			typ, err := journal.ParseTxType(txType)
			if err != nil {
				return err
			}
			cur.Type = typ
		}
		if flags.Changed("amount") {
			cur.Amount = journal.ParseAmount(txAmount)
		}
		if flags.Changed("desc") {
			cur.Description = txDesc
		}

		c, err := d.EditTransaction(ctx, ts, cur)
		if err != nil {
			return fmt.Errorf("edit transaction: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated %s %d: %.2f\n", c.Type, c.Timestamp, c.Amount)
		return nil
	})
}

func runTxRm(cmd *cobra.Command, args []string) error {
	ts, err := parseTimestamp(args[0])
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		if err := d.RemoveTransaction(ctx, ts); err != nil {
			return fmt.Errorf("remove transaction: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed transaction %d\n", ts)
		return nil
	})
}

func runTxList(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		w := cmd.OutOrStdout()
		txs := d.Transactions()
		for _, c := range txs {
			fmt.Fprintf(w, "%d  %s  %-10s %10.2f  %s\n", c.Timestamp, c.Date, c.Type, c.Amount, c.Description)
		}
		fmt.Fprintf(w, "%d transactions, net %.2f\n", len(txs), d.Figures().TransactionsTotal)
		return nil
	})
}
