package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/tradejournal/bankroll"
	"github.com/rustyeddy/tradejournal/dashboard"
	"github.com/rustyeddy/tradejournal/journal"
)

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record and manage trades",
	Long: `Add, edit, duplicate, remove and display trades.

Profit/loss is derived from the outcome and the asset payout ratio for
every category except Copy, which takes --pl as entered.

Examples:
  tradejournal trade add --asset ADAUSDT --bet 10 --outcome win
  tradejournal trade add --asset BTCUSDT --category Copy --bet 10 --pl -3.5
  tradejournal trade edit 1737028800000 --outcome loss
  tradejournal trade show 1737028800000`,
}

var tradeAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a trade",
	Args:  cobra.NoArgs,
	RunE:  runTradeAdd,
}

var tradeEditCmd = &cobra.Command{
	Use:   "edit <trade-id>",
	Short: "Replace a trade; unset flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeEdit,
}

var tradeRmCmd = &cobra.Command{
	Use:   "rm <trade-id>",
	Short: "Remove a trade",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeRm,
}

var tradeDupCmd = &cobra.Command{
	Use:   "dup <trade-id>",
	Short: "Duplicate a trade under a new id",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeDup,
}

var tradeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List trades",
	Args:  cobra.NoArgs,
	RunE:  runTradeList,
}

var tradeShowCmd = &cobra.Command{
	Use:   "show <trade-id>",
	Short: "Print a trade as an Org-mode entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runTradeShow,
}

var (
	tradeDate     string
	tradeTime     string
	tradeAsset    string
	tradeCategory string
	tradeBet      string
	tradePL       string
	tradeOutcome  string

	listFrom     string
	listTo       string
	listAsset    string
	listCategory string
	listOutcome  string
)

func init() {
	rootCmd.AddCommand(tradeCmd)
	tradeCmd.AddCommand(tradeAddCmd)
	tradeCmd.AddCommand(tradeEditCmd)
	tradeCmd.AddCommand(tradeRmCmd)
	tradeCmd.AddCommand(tradeDupCmd)
	tradeCmd.AddCommand(tradeListCmd)
	tradeCmd.AddCommand(tradeShowCmd)

	for _, c := range []*cobra.Command{tradeAddCmd, tradeEditCmd} {
		c.Flags().StringVar(&tradeDate, "date", "", "trade date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&tradeTime, "time", "", "trade time HH:MM (default now)")
		c.Flags().StringVarP(&tradeAsset, "asset", "a", "", "asset, e.g. ADAUSDT")
		c.Flags().StringVarP(&tradeCategory, "category", "c", "Crypto", "Crypto, Forex, Stocks, Copy or Commodities")
		c.Flags().StringVarP(&tradeBet, "bet", "b", "", "amount staked")
		c.Flags().StringVar(&tradePL, "pl", "", "profit/loss, Copy trades only")
		c.Flags().StringVarP(&tradeOutcome, "outcome", "o", "", "win, loss or tie")
	}
	tradeAddCmd.MarkFlagRequired("asset")
	tradeAddCmd.MarkFlagRequired("bet")

	addFilterFlags(tradeListCmd)
}

func addFilterFlags(c *cobra.Command) {
	c.Flags().StringVar(&listFrom, "from", "", "first date YYYY-MM-DD")
	c.Flags().StringVar(&listTo, "to", "", "last date YYYY-MM-DD")
	c.Flags().StringVar(&listAsset, "asset", "", "only this asset")
	c.Flags().StringVar(&listCategory, "category", "", "only this category")
	c.Flags().StringVar(&listOutcome, "outcome", "", "only win, loss or tie")
}

func filterFromFlags() (bankroll.Filter, error) {
	f := bankroll.Filter{From: listFrom, To: listTo, Asset: listAsset}
	if listCategory != "" {
		c, err := journal.ParseCategory(listCategory)
		if err != nil {
			return f, err
		}
		f.Category = c
	}
	if listOutcome != "" {
		o, err := journal.ParseOutcome(listOutcome)
		if err != nil {
			return f, err
		}
		f.Outcome = o
	}
	return f, nil
}

func parseTradeID(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("trade id %q: %w", s, err)
	}
	return v, nil
}

func runTradeAdd(cmd *cobra.Command, args []string) error {
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		in := journal.TradeInput{
			Date:       tradeDate,
			Time:       tradeTime,
			Asset:      tradeAsset,
			Category:   tradeCategory,
			BetAmount:  tradeBet,
			ProfitLoss: tradePL,
			Outcome:    tradeOutcome,
		}
		if in.Date == "" {
			in.Date = d.Today()
		}
		if in.Time == "" {
			in.Time = d.Now().Format(journal.TimeLayout)
		}

		t, err := d.AddTrade(ctx, in)
		if err != nil {
			return fmt.Errorf("add trade: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Added trade %d: %s %s %s %.2f\n", t.ID, t.Date, t.Time, t.Asset, t.ProfitLoss)
		return nil
	})
}

func runTradeEdit(cmd *cobra.Command, args []string) error {
	tradeID, err := parseTradeID(args[0])
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		cur, err := d.Trade(tradeID)
		if err != nil {
			return err
		}

		in := journal.InputOf(cur)
		flags := cmd.Flags()
		set := func(name string, dst *string, v string) {
			if flags.Changed(name) {
				*dst = v
			}
		}
		set("date", &in.Date, tradeDate)
		set("time", &in.Time, tradeTime)
		set("asset", &in.Asset, tradeAsset)
		set("category", &in.Category, tradeCategory)
		set("bet", &in.BetAmount, tradeBet)
		set("pl", &in.ProfitLoss, tradePL)
		set("outcome", &in.Outcome, tradeOutcome)

		t, err := d.EditTrade(ctx, tradeID, in)
		if err != nil {
			return fmt.Errorf("edit trade: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated trade %d: %s %s %s %.2f\n", t.ID, t.Date, t.Time, t.Asset, t.ProfitLoss)
		return nil
	})
}

func runTradeRm(cmd *cobra.Command, args []string) error {
	tradeID, err := parseTradeID(args[0])
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		if err := d.RemoveTrade(ctx, tradeID); err != nil {
			return fmt.Errorf("remove trade: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Removed trade %d\n", tradeID)
		return nil
	})
}

func runTradeDup(cmd *cobra.Command, args []string) error {
	tradeID, err := parseTradeID(args[0])
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		t, err := d.DuplicateTrade(ctx, tradeID)
		if err != nil {
			return fmt.Errorf("duplicate trade: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Duplicated trade %d as %d\n", tradeID, t.ID)
		return nil
	})
}

func runTradeList(cmd *cobra.Command, args []string) error {
	f, err := filterFromFlags()
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		r := d.Detailed(f)
		w := cmd.OutOrStdout()
		for _, t := range r.Trades {
			fmt.Fprintf(w, "%d  %s %s  %-10s %-11s %10.2f %10.2f\n",
				t.ID, t.Date, t.Time, t.Asset, t.Category, t.BetAmount, t.ProfitLoss)
		}
		fmt.Fprintf(w, "%d trades, staked %.2f, P/L %.2f\n", r.Count, r.TotalBet, r.TotalProfitLoss)
		return nil
	})
}

func runTradeShow(cmd *cobra.Command, args []string) error {
	tradeID, err := parseTradeID(args[0])
	if err != nil {
		return err
	}
	return withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
		t, err := d.Trade(tradeID)
		if err != nil {
			return fmt.Errorf("get trade: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradeOrg(t))
		return nil
	})
}
