// Package bankroll derives every figure the dashboard shows from the
// trade list, the cash transactions and the settings. Nothing here keeps
// state; all functions are recomputed on each read and never return a
// NaN or an infinity.
package bankroll

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/settings"
)

var ErrInvalidRange = errors.New("invalid date range")

// RunningTotal is the sum of profit/loss over every trade, rounded to cents.
func RunningTotal(trades []journal.Trade) float64 {
	sum := decimal.Zero
	for _, t := range trades {
		sum = sum.Add(dec(t.ProfitLoss))
	}
	return money(sum)
}

// TransactionsTotal is deposits minus withdrawals. Records with an unknown
// type or a non-positive amount are ignored.
func TransactionsTotal(txs []journal.CashTransaction) float64 {
	sum := decimal.Zero
	for _, c := range txs {
		if c.Validate() != nil {
			continue
		}
		sum = sum.Add(dec(c.Signed()))
	}
	return money(sum)
}

// CurrentBankroll is initial + running + transactions.
func CurrentBankroll(initial, running, txTotal float64) float64 {
	return money(dec(initial).Add(dec(running)).Add(dec(txTotal)))
}

// PercentBase picks the figure percent-typed targets are taken from.
func PercentBase(base settings.CapitalBase, initial, current float64) float64 {
	if base == settings.BaseInitial {
		return journal.Finite(initial)
	}
	return journal.Finite(current)
}

// Target resolves a goal or threshold to a currency amount. A percent
// target over a zero or non-finite base is 0, never the raw percentage.
func Target(amount float64, t settings.AmountType, base float64) float64 {
	amount = journal.Finite(amount)
	if t != settings.Percent {
		return amount
	}
	base = journal.Finite(base)
	if base == 0 {
		return 0
	}
	return money(dec(base).Mul(dec(amount)).Div(decimal.NewFromInt(100)))
}

// GoalAmount is the daily goal in currency for the given base.
func GoalAmount(s settings.Settings, base float64) float64 {
	return Target(s.DailyGoal, s.GoalType, base)
}

// Figures is the headline block of the dashboard.
type Figures struct {
	InitialBankroll   float64 `json:"initialBankroll"`
	RunningTotal      float64 `json:"runningTotal"`
	TransactionsTotal float64 `json:"transactionsTotal"`
	CurrentBankroll   float64 `json:"currentBankroll"`
	Base              float64 `json:"base"`
	PercentChange     float64 `json:"percentChange"`
	SuggestedStake    float64 `json:"suggestedStake"`
	GoalAmount        float64 `json:"goalAmount"`
	StopLossAmount    float64 `json:"stopLossAmount"`
	StopWinAmount     float64 `json:"stopWinAmount"`
}

// Compute derives the headline figures. RunningTotal is the profit/loss
// not yet folded into the initial bankroll by a rollover, so
// CurrentBankroll never counts a trade twice.
func Compute(s settings.Settings, trades []journal.Trade, txs []journal.CashTransaction) Figures {
	initial := journal.Finite(s.InitialBankroll)
	running := money(dec(RunningTotal(trades)).Sub(dec(s.RolledOverTotal)))
	txTotal := TransactionsTotal(txs)
	current := CurrentBankroll(initial, running, txTotal)
	base := PercentBase(s.CapitalBase, initial, current)

	f := Figures{
		InitialBankroll:   initial,
		RunningTotal:      running,
		TransactionsTotal: txTotal,
		CurrentBankroll:   current,
		Base:              base,
		GoalAmount:        GoalAmount(s, base),
		StopLossAmount:    Target(s.StopLoss, s.StopLossType, base),
		StopWinAmount:     Target(s.StopWin, s.StopWinType, base),
	}
	if initial > 0 {
		f.PercentChange = ratio(dec(current).Div(dec(initial)).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100)))
	}
	if base > 0 {
		f.SuggestedStake = money(dec(base).Mul(dec(s.EntryPercentage)).Div(decimal.NewFromInt(100)))
	}
	return f
}

func dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(journal.Finite(v))
}

// money rounds to cents.
func money(d decimal.Decimal) float64 {
	return journal.Finite(d.Round(2).InexactFloat64())
}

// ratio rounds percentages to two places.
func ratio(d decimal.Decimal) float64 {
	return journal.Finite(d.Round(2).InexactFloat64())
}

func pct(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return ratio(dec(part).Div(dec(whole)).Mul(decimal.NewFromInt(100)))
}
