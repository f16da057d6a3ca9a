package bankroll

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

const rule = "--------------------------------------------------"

func header(w io.Writer, title string) {
	fmt.Fprintln(w, "==================================================")
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintln(w, "==================================================")
}

func PrintFigures(w io.Writer, f Figures) {
	header(w, "Bankroll")
	fmt.Fprintf(w, "Initial:       %.2f\n", f.InitialBankroll)
	fmt.Fprintf(w, "Running P/L:   %.2f\n", f.RunningTotal)
	fmt.Fprintf(w, "Transactions:  %.2f\n", f.TransactionsTotal)
	fmt.Fprintf(w, "Current:       %.2f\n", f.CurrentBankroll)
	fmt.Fprintf(w, "Change:        %.2f%%\n", f.PercentChange)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Targets")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Capital Base:  %.2f\n", f.Base)
	fmt.Fprintf(w, "Daily Goal:    %.2f\n", f.GoalAmount)
	fmt.Fprintf(w, "Stop Loss:     %.2f\n", f.StopLossAmount)
	fmt.Fprintf(w, "Stop Win:      %.2f\n", f.StopWinAmount)
	fmt.Fprintf(w, "Entry Stake:   %.2f\n", f.SuggestedStake)
	fmt.Fprintln(w)
}

func PrintStats(w io.Writer, s Stats) {
	header(w, "Statistics")
	fmt.Fprintf(w, "Trades:        %d\n", s.TradeCount)
	fmt.Fprintf(w, "Wins:          %d\n", s.Wins)
	fmt.Fprintf(w, "Losses:        %d\n", s.LossCount)
	fmt.Fprintf(w, "Ties:          %d\n", s.TieCount)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", s.WinRate)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Performance")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total Bet:     %.2f\n", s.TotalBet)
	fmt.Fprintf(w, "Gains:         %.2f\n", s.Gains)
	fmt.Fprintf(w, "Losses:        %.2f\n", s.Losses)
	fmt.Fprintf(w, "Final Balance: %.2f\n", s.FinalBalance)
	fmt.Fprintf(w, "Avg Return:    %.2f\n", s.AvgReturn)

	if s.BestTrade != nil {
		fmt.Fprintf(w, "Best Trade:    %s %s %s %.2f\n", s.BestTrade.Date, s.BestTrade.Time, s.BestTrade.Asset, s.BestTrade.ProfitLoss)
	}
	if s.WorstTrade != nil {
		fmt.Fprintf(w, "Worst Trade:   %s %s %s %.2f\n", s.WorstTrade.Date, s.WorstTrade.Time, s.WorstTrade.Asset, s.WorstTrade.ProfitLoss)
	}
	fmt.Fprintln(w)
}

func PrintDaily(w io.Writer, r DailyReport) {
	header(w, "Daily Report "+r.Date)
	fmt.Fprintf(w, "Trades:        %d\n", r.TradeCount)
	fmt.Fprintf(w, "Total Bet:     %.2f\n", r.TotalBet)
	fmt.Fprintf(w, "P/L:           %.2f\n", r.DailyProfitLoss)
	fmt.Fprintf(w, "Goal:          %.2f\n", r.GoalAmount)
	fmt.Fprintf(w, "Progress:      %.2f%%\n", r.GoalProgressPercent)
	if r.MetGoal {
		fmt.Fprintf(w, "Goal met, exceeded by %.2f\n", r.Exceeded)
	} else {
		fmt.Fprintf(w, "Shortfall:     %.2f\n", r.Shortfall)
	}

	if len(r.Assets) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "By Asset")
		fmt.Fprintln(w, rule)
		for _, a := range r.Assets {
			fmt.Fprintf(w, "%-14s %3d  %10.2f\n", a.Asset, a.TradeCount, a.ProfitLoss)
		}
	}
	fmt.Fprintln(w)
}

func PrintPeriod(w io.Writer, r PeriodReport) {
	header(w, fmt.Sprintf("Period Report %s to %s", r.Start, r.End))
	fmt.Fprintf(w, "Days:          %d (%d with trades)\n", r.TotalDays, r.DaysWithTrades)
	fmt.Fprintf(w, "Trades:        %d (%d/%d/%d W/L/T)\n", r.TradeCount, r.Wins, r.Losses, r.Ties)
	fmt.Fprintf(w, "Total Bet:     %.2f\n", r.TotalBet)
	fmt.Fprintf(w, "P/L:           %.2f\n", r.TotalProfitLoss)
	fmt.Fprintf(w, "Period Goal:   %.2f\n", r.PeriodGoal)
	fmt.Fprintf(w, "Days Met Goal: %d\n", r.DaysMetGoal)
	fmt.Fprintf(w, "Success Rate:  %.2f%%\n", r.SuccessRate)
	fmt.Fprintf(w, "Daily Average: %.2f\n", r.AverageDailyPL)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Days")
	fmt.Fprintln(w, rule)
	for _, d := range r.Days {
		mark := " "
		if d.MetGoal {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s %3d %10.2f %7.2f%%\n", mark, d.Date, d.TradeCount, d.ProfitLoss, d.Percentage)
	}
	fmt.Fprintln(w)
}

func PrintDetailed(w io.Writer, r DetailedReport) {
	header(w, "Detailed Report")
	for _, t := range r.Trades {
		fmt.Fprintf(w, "%d %s %-5s %-10s %-11s %9.2f %9.2f\n", t.ID, t.Date, t.Time, t.Asset, t.Category, t.BetAmount, t.ProfitLoss)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, "Summary")
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Trades:        %d (%d/%d/%d W/L/T)\n", r.Count, r.Wins, r.Losses, r.Ties)
	fmt.Fprintf(w, "Win Rate:      %.2f%%\n", r.WinRate)
	fmt.Fprintf(w, "Total Bet:     %.2f\n", r.TotalBet)
	fmt.Fprintf(w, "P/L:           %.2f\n", r.TotalProfitLoss)
	fmt.Fprintf(w, "Avg Profit:    %.2f\n", r.AvgProfit)
	fmt.Fprintf(w, "Avg Loss:      %.2f\n", r.AvgLoss)
	fmt.Fprintln(w)
}

// PeriodCSVHeader matches the spreadsheet layout users already keep.
var PeriodCSVHeader = []string{"Data", "Operacoes", "LucroPrejuizo", "Meta", "MetaAtingida", "PercentualMeta"}

// WritePeriodCSV writes one row per calendar day of the report.
func WritePeriodCSV(w io.Writer, r PeriodReport) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(PeriodCSVHeader); err != nil {
		return err
	}
	for _, d := range r.Days {
		met := "Nao"
		if d.MetGoal {
			met = "Sim"
		}
		err := cw.Write([]string{
			d.Date,
			strconv.Itoa(d.TradeCount),
			fixed(d.ProfitLoss),
			fixed(d.Goal),
			met,
			fixed(d.Percentage) + "%",
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func fixed(x float64) string {
	return decimal.NewFromFloat(x).StringFixed(2)
}
