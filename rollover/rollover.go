// Package rollover folds each finished day's trade results into the
// initial bankroll once the calendar date moves on.
package rollover

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradejournal/bankroll"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/settings"
)

// State of the bankroll baseline relative to today.
type State int

const (
	Current State = iota
	Stale
)

func (s State) String() string {
	if s == Stale {
		return "stale"
	}
	return "current"
}

// Check reports whether the baseline predates today.
func Check(s settings.Settings, today string) State {
	if s.LastRolloverDate == today {
		return Current
	}
	return Stale
}

// Fold is the change a rollover applies to the settings.
type Fold struct {
	Today           string  `json:"today"`
	PrevInitial     float64 `json:"prevInitial"`
	Folded          float64 `json:"folded"`
	NewInitial      float64 `json:"newInitial"`
	RolledOverTotal float64 `json:"rolledOverTotal"`
}

// Plan computes the fold for today. ok is false when the baseline is
// already current, which makes repeated calls on the same day no-ops.
func Plan(s settings.Settings, trades []journal.Trade, today string) (f Fold, ok bool) {
	if Check(s, today) == Current {
		return Fold{}, false
	}

	total := bankroll.RunningTotal(trades)
	unfolded := decimal.NewFromFloat(total).Sub(decimal.NewFromFloat(journal.Finite(s.RolledOverTotal)))
	next := decimal.NewFromFloat(journal.Finite(s.InitialBankroll)).Add(unfolded)

	return Fold{
		Today:           today,
		PrevInitial:     journal.Finite(s.InitialBankroll),
		Folded:          unfolded.Round(2).InexactFloat64(),
		NewInitial:      next.Round(2).InexactFloat64(),
		RolledOverTotal: total,
	}, true
}

// Apply folds the plan into settings without touching the store.
func (f Fold) Apply(s settings.Settings) settings.Settings {
	s.InitialBankroll = f.NewInitial
	s.RolledOverTotal = f.RolledOverTotal
	s.LastRolloverDate = f.Today
	return s
}

// Today formats now in loc as a journal date. A nil loc means local time.
func Today(now time.Time, loc *time.Location) string {
	if loc != nil {
		now = now.In(loc)
	}
	return now.Format(journal.DateLayout)
}
