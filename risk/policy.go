package risk

import (
	"github.com/rustyeddy/tradejournal/bankroll"
	"github.com/rustyeddy/tradejournal/settings"
)

// Policy holds the thresholds resolved to currency amounts. A threshold
// of 0 or less is switched off: a stop loss of 0 does not fire at a
// running total of 0, and a goal of 0 is never met. A percentage over a
// zero capital base resolves to 0 and so is switched off too.
type Policy struct {
	StopLoss  float64 // e.g. 50: fires at running total -50
	StopWin   float64 // e.g. 100
	DailyGoal float64
}

// PolicyFor resolves the configured thresholds against the capital base.
func PolicyFor(s settings.Settings, base float64) Policy {
	return Policy{
		StopLoss:  bankroll.Target(s.StopLoss, s.StopLossType, base),
		StopWin:   bankroll.Target(s.StopWin, s.StopWinType, base),
		DailyGoal: bankroll.GoalAmount(s, base),
	}
}

// Snapshot is what the rules look at.
type Snapshot struct {
	Date            string  // the day DailyProfitLoss belongs to
	RunningTotal    float64 // profit/loss not yet rolled over
	DailyProfitLoss float64
}
