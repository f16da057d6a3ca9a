package rollover

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rustyeddy/tradejournal/bankroll"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/settings"
)

func dayOneTrades() []journal.Trade {
	return []journal.Trade{{ID: 1, Date: "2025-01-01", Time: "10:00", Asset: "ADAUSDT", Category: journal.Crypto, BetAmount: 50, ProfitLoss: 50}}
}

func TestPlanFoldsWithoutDoubleCounting(t *testing.T) {
	t.Parallel()

	s := settings.Default("2025-01-01")
	s.InitialBankroll = 100
	trades := dayOneTrades()

	assert.Equal(t, 150.0, bankroll.Compute(s, trades, nil).CurrentBankroll)

	f, ok := Plan(s, trades, "2025-01-02")
	assert.True(t, ok)
	assert.Equal(t, 100.0, f.PrevInitial)
	assert.Equal(t, 50.0, f.Folded)
	assert.Equal(t, 150.0, f.NewInitial)

	s = f.Apply(s)
	assert.Equal(t, 150.0, s.InitialBankroll)
	assert.Equal(t, "2025-01-02", s.LastRolloverDate)

	fig := bankroll.Compute(s, trades, nil)
	assert.Equal(t, 150.0, fig.CurrentBankroll)
	assert.Equal(t, 0.0, fig.RunningTotal)
}

func TestPlanIsIdempotentPerDay(t *testing.T) {
	t.Parallel()

	s := settings.Default("2025-01-01")
	s.InitialBankroll = 100

	f, ok := Plan(s, dayOneTrades(), "2025-01-02")
	assert.True(t, ok)
	s = f.Apply(s)

	_, ok = Plan(s, dayOneTrades(), "2025-01-02")
	assert.False(t, ok)
	assert.Equal(t, Current, Check(s, "2025-01-02"))
}

func TestPlanAcrossSeveralDays(t *testing.T) {
	t.Parallel()

	s := settings.Default("2025-01-01")
	s.InitialBankroll = 100
	trades := dayOneTrades()

	f, _ := Plan(s, trades, "2025-01-02")
	s = f.Apply(s)

	trades = append(trades, journal.Trade{ID: 2, Date: "2025-01-02", Time: "11:00", Asset: "ADAUSDT", Category: journal.Crypto, BetAmount: 30, ProfitLoss: -30})
	assert.Equal(t, 120.0, bankroll.Compute(s, trades, nil).CurrentBankroll)

	f, ok := Plan(s, trades, "2025-01-03")
	assert.True(t, ok)
	assert.Equal(t, -30.0, f.Folded)
	s = f.Apply(s)
	assert.Equal(t, 120.0, s.InitialBankroll)
	assert.Equal(t, 20.0, s.RolledOverTotal)
	assert.Equal(t, 120.0, bankroll.Compute(s, trades, nil).CurrentBankroll)
}

func TestCheck(t *testing.T) {
	t.Parallel()

	s := settings.Default("2025-01-01")
	assert.Equal(t, Current, Check(s, "2025-01-01"))
	assert.Equal(t, Stale, Check(s, "2025-01-02"))
	assert.Equal(t, "stale", Stale.String())
}

func TestToday(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 1, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-01-01", Today(now, time.UTC))

	tokyo := time.FixedZone("JST", 9*60*60)
	assert.Equal(t, "2025-01-02", Today(now, tokyo))
}
