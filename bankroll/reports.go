package bankroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/settings"
)

// Stats aggregates the whole trade list. BestTrade and WorstTrade are nil
// when there are no trades; on equal profit/loss the first trade wins.
type Stats struct {
	TotalBet     float64        `json:"totalBet"`
	Gains        float64        `json:"gains"`
	Losses       float64        `json:"losses"`
	FinalBalance float64        `json:"finalBalance"`
	TradeCount   int            `json:"tradeCount"`
	Wins         int            `json:"wins"`
	LossCount    int            `json:"lossCount"`
	TieCount     int            `json:"tieCount"`
	WinRate      float64        `json:"winRate"`
	AvgReturn    float64        `json:"avgReturn"`
	BestTrade    *journal.Trade `json:"bestTrade"`
	WorstTrade   *journal.Trade `json:"worstTrade"`
}

func Summarize(trades []journal.Trade) Stats {
	var st Stats
	gains, losses, bet := decimal.Zero, decimal.Zero, decimal.Zero

	for i := range trades {
		t := trades[i]
		pl := journal.Finite(t.ProfitLoss)
		bet = bet.Add(dec(t.BetAmount))

		switch journal.OutcomeOf(pl) {
		case journal.Positive:
			st.Wins++
			gains = gains.Add(dec(pl))
		case journal.Negative:
			st.LossCount++
			losses = losses.Add(dec(pl))
		default:
			st.TieCount++
		}

		if st.BestTrade == nil || pl > journal.Finite(st.BestTrade.ProfitLoss) {
			st.BestTrade = &t
		}
		if st.WorstTrade == nil || pl < journal.Finite(st.WorstTrade.ProfitLoss) {
			st.WorstTrade = &t
		}
	}

	st.TradeCount = len(trades)
	st.TotalBet = money(bet)
	st.Gains = money(gains)
	st.Losses = money(losses)
	st.FinalBalance = money(gains.Add(losses))
	if st.TradeCount > 0 {
		st.WinRate = pct(float64(st.Wins), float64(st.TradeCount))
		st.AvgReturn = money(gains.Add(losses).Div(decimal.NewFromInt(int64(st.TradeCount))))
	}
	return st
}

// AssetResult is one row of the per-asset breakdown.
type AssetResult struct {
	Asset      string  `json:"asset"`
	TradeCount int     `json:"tradeCount"`
	ProfitLoss float64 `json:"profitLoss"`
}

// DailyReport is the goal progress for one calendar day.
type DailyReport struct {
	Date                string        `json:"date"`
	TradeCount          int           `json:"tradeCount"`
	TotalBet            float64       `json:"totalBet"`
	DailyProfitLoss     float64       `json:"dailyProfitLoss"`
	GoalAmount          float64       `json:"goalAmount"`
	MetGoal             bool          `json:"metGoal"`
	GoalProgressPercent float64       `json:"goalProgressPercent"`
	Shortfall           float64       `json:"shortfall"`
	Exceeded            float64       `json:"exceeded"`
	Assets              []AssetResult `json:"assets"`
}

// Daily reports on the trades dated date. It never fails: anything that
// goes wrong while computing yields a zero report.
func Daily(trades []journal.Trade, date string, s settings.Settings, base float64) (r DailyReport) {
	defer func() {
		if recover() != nil {
			r = DailyReport{Date: date}
		}
	}()

	r.Date = date
	bet, pl := decimal.Zero, decimal.Zero
	byAsset := map[string]*AssetResult{}

	for _, t := range trades {
		if t.Date != date {
			continue
		}
		r.TradeCount++
		bet = bet.Add(dec(t.BetAmount))
		pl = pl.Add(dec(t.ProfitLoss))

		a, ok := byAsset[t.Asset]
		if !ok {
			a = &AssetResult{Asset: t.Asset}
			byAsset[t.Asset] = a
		}
		a.TradeCount++
		a.ProfitLoss = money(dec(a.ProfitLoss).Add(dec(t.ProfitLoss)))
	}

	r.TotalBet = money(bet)
	r.DailyProfitLoss = money(pl)
	r.GoalAmount = GoalAmount(s, base)
	r.MetGoal = r.GoalAmount > 0 && r.DailyProfitLoss >= r.GoalAmount
	r.GoalProgressPercent = pct(r.DailyProfitLoss, r.GoalAmount)
	r.Shortfall = money(decimal.Max(decimal.Zero, dec(r.GoalAmount).Sub(pl)))
	r.Exceeded = money(decimal.Max(decimal.Zero, pl.Sub(dec(r.GoalAmount))))

	r.Assets = make([]AssetResult, 0, len(byAsset))
	for _, a := range byAsset {
		r.Assets = append(r.Assets, *a)
	}
	sort.Slice(r.Assets, func(i, j int) bool { return r.Assets[i].Asset < r.Assets[j].Asset })
	return r
}

// DayResult is one calendar day inside a period report.
type DayResult struct {
	Date       string  `json:"date"`
	TradeCount int     `json:"tradeCount"`
	ProfitLoss float64 `json:"profitLoss"`
	Goal       float64 `json:"goal"`
	MetGoal    bool    `json:"metGoal"`
	Percentage float64 `json:"percentage"`
	Shortfall  float64 `json:"shortfall"`
	Exceeded   float64 `json:"exceeded"`
}

// PeriodReport aggregates an inclusive date range. The goal target scales
// with calendar days, whether or not a day had trades.
type PeriodReport struct {
	Start           string      `json:"start"`
	End             string      `json:"end"`
	TotalDays       int         `json:"totalDays"`
	TradeCount      int         `json:"tradeCount"`
	TotalBet        float64     `json:"totalBet"`
	TotalProfitLoss float64     `json:"totalProfitLoss"`
	Wins            int         `json:"wins"`
	Losses          int         `json:"losses"`
	Ties            int         `json:"ties"`
	DailyGoal       float64     `json:"dailyGoal"`
	PeriodGoal      float64     `json:"periodGoal"`
	MetGoal         bool        `json:"metGoal"`
	DaysWithTrades  int         `json:"daysWithTrades"`
	DaysMetGoal     int         `json:"daysMetGoal"`
	SuccessRate     float64     `json:"successRate"`
	AverageDailyPL  float64     `json:"averageDailyPL"`
	Days            []DayResult `json:"days"`
}

// MaxPeriodDays bounds the number of calendar days a period report lists.
const MaxPeriodDays = 3660

// Period reports on trades dated within [start, end]. It fails when
// either date does not parse, start is after end, or the range spans
// more than MaxPeriodDays days.
func Period(trades []journal.Trade, start, end string, s settings.Settings, base float64) (PeriodReport, error) {
	from, err := time.Parse(journal.DateLayout, start)
	if err != nil {
		return PeriodReport{}, fmt.Errorf("%w: start %q", ErrInvalidRange, start)
	}
	to, err := time.Parse(journal.DateLayout, end)
	if err != nil {
		return PeriodReport{}, fmt.Errorf("%w: end %q", ErrInvalidRange, end)
	}
	if from.After(to) {
		return PeriodReport{}, fmt.Errorf("%w: %s is after %s", ErrInvalidRange, start, end)
	}
	if to.Sub(from) >= MaxPeriodDays*24*time.Hour {
		return PeriodReport{}, fmt.Errorf("%w: more than %d days", ErrInvalidRange, MaxPeriodDays)
	}

	r := PeriodReport{Start: start, End: end}
	r.DailyGoal = GoalAmount(s, base)

	byDay := map[string][]journal.Trade{}
	bet, pl := decimal.Zero, decimal.Zero
	for _, t := range trades {
		if t.Date < start || t.Date > end {
			continue
		}
		byDay[t.Date] = append(byDay[t.Date], t)
		r.TradeCount++
		bet = bet.Add(dec(t.BetAmount))
		pl = pl.Add(dec(t.ProfitLoss))
		switch t.Outcome() {
		case journal.Positive:
			r.Wins++
		case journal.Negative:
			r.Losses++
		default:
			r.Ties++
		}
	}
	r.TotalBet = money(bet)
	r.TotalProfitLoss = money(pl)

	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		date := d.Format(journal.DateLayout)
		day := dayResult(date, byDay[date], r.DailyGoal)
		if day.TradeCount > 0 {
			r.DaysWithTrades++
		}
		if day.MetGoal {
			r.DaysMetGoal++
		}
		r.Days = append(r.Days, day)
	}

	r.TotalDays = len(r.Days)
	r.PeriodGoal = money(dec(r.DailyGoal).Mul(decimal.NewFromInt(int64(r.TotalDays))))
	r.MetGoal = r.PeriodGoal > 0 && r.TotalProfitLoss >= r.PeriodGoal
	r.SuccessRate = pct(float64(r.DaysMetGoal), float64(r.DaysWithTrades))
	if r.DaysWithTrades > 0 {
		r.AverageDailyPL = money(pl.Div(decimal.NewFromInt(int64(r.DaysWithTrades))))
	}
	return r, nil
}

func dayResult(date string, trades []journal.Trade, goal float64) DayResult {
	pl := decimal.Zero
	for _, t := range trades {
		pl = pl.Add(dec(t.ProfitLoss))
	}
	d := DayResult{
		Date:       date,
		TradeCount: len(trades),
		ProfitLoss: money(pl),
		Goal:       goal,
	}
	d.MetGoal = d.TradeCount > 0 && d.ProfitLoss >= goal
	if goal > 0 {
		d.Percentage = pct(d.ProfitLoss, goal)
	}
	if d.MetGoal {
		d.Exceeded = money(pl.Sub(dec(goal)))
	} else {
		d.Shortfall = money(dec(goal).Sub(pl))
	}
	return d
}

// Filter narrows a detailed report. Zero fields match everything; set
// fields combine with AND.
type Filter struct {
	From     string
	To       string
	Asset    string
	Category journal.Category
	Outcome  journal.Outcome
}

func (f Filter) match(t journal.Trade) bool {
	if f.From != "" && t.Date < f.From {
		return false
	}
	if f.To != "" && t.Date > f.To {
		return false
	}
	if f.Asset != "" && t.Asset != f.Asset {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Outcome != "" && t.Outcome() != f.Outcome {
		return false
	}
	return true
}

// DetailedReport is a filtered trade list, newest first, with totals over
// the filtered subset only.
type DetailedReport struct {
	Trades          []journal.Trade `json:"trades"`
	Count           int             `json:"count"`
	TotalBet        float64         `json:"totalBet"`
	TotalProfitLoss float64         `json:"totalProfitLoss"`
	Wins            int             `json:"wins"`
	Losses          int             `json:"losses"`
	Ties            int             `json:"ties"`
	WinRate         float64         `json:"winRate"`
	AvgProfit       float64         `json:"avgProfit"`
	AvgLoss         float64         `json:"avgLoss"`
}

func Detailed(trades []journal.Trade, f Filter) DetailedReport {
	var r DetailedReport
	for _, t := range trades {
		if f.match(t) {
			r.Trades = append(r.Trades, t)
		}
	}
	sort.SliceStable(r.Trades, func(i, j int) bool {
		a, b := r.Trades[i], r.Trades[j]
		if a.Date != b.Date {
			return a.Date > b.Date
		}
		return a.Time > b.Time
	})

	st := Summarize(r.Trades)
	r.Count = st.TradeCount
	r.TotalBet = st.TotalBet
	r.TotalProfitLoss = st.FinalBalance
	r.Wins, r.Losses, r.Ties = st.Wins, st.LossCount, st.TieCount
	r.WinRate = st.WinRate
	if st.Wins > 0 {
		r.AvgProfit = money(dec(st.Gains).Div(decimal.NewFromInt(int64(st.Wins))))
	}
	if st.LossCount > 0 {
		r.AvgLoss = money(dec(st.Losses).Div(decimal.NewFromInt(int64(st.LossCount))))
	}
	return r
}
