package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

func frozenIDs() *id.Sequence {
	now := time.UnixMilli(1_735_725_600_000)
	return id.NewSequence(func() time.Time { return now })
}

func btc(tm string) journal.Trade {
	return journal.Trade{Date: "2025-01-01", Time: tm, Asset: "BTCUSDT", Category: journal.Crypto, BetAmount: 10, ProfitLoss: 9}
}

func TestMergeTradesDedupOnKey(t *testing.T) {
	t.Parallel()

	existing := btc("10:00")
	existing.ID = 1

	added, res := MergeTrades([]journal.Trade{existing}, []journal.Trade{btc("10:00")}, frozenIDs())
	assert.Empty(t, added)
	assert.Equal(t, Result{Skipped: 1}, res)

	added, res = MergeTrades([]journal.Trade{existing}, []journal.Trade{btc("11:00")}, frozenIDs())
	require.Len(t, added, 1)
	assert.Equal(t, Result{Added: 1}, res)
	assert.Equal(t, "11:00", added[0].Time)
}

func TestMergeTradesAssignsFreshIDs(t *testing.T) {
	t.Parallel()

	a, b := btc("10:00"), btc("10:01")
	a.ID, b.ID = 7, 7

	added, res := MergeTrades(nil, []journal.Trade{a, b}, frozenIDs())
	require.Len(t, added, 2)
	assert.Equal(t, 2, res.Added)
	assert.Equal(t, int64(1_735_725_600_000), added[0].ID)
	assert.Equal(t, int64(1_735_725_600_001), added[1].ID)
}

func TestMergeTradesDedupWithinBatch(t *testing.T) {
	t.Parallel()

	added, res := MergeTrades(nil, []journal.Trade{btc("10:00"), btc("10:00")}, frozenIDs())
	assert.Len(t, added, 1)
	assert.Equal(t, Result{Added: 1, Skipped: 1}, res)
}

func TestMergeTradesRejectsIncomplete(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*journal.Trade)
	}{
		{"no stake", func(t *journal.Trade) { t.BetAmount = 0 }},
		{"no date", func(t *journal.Trade) { t.Date = "" }},
		{"no time", func(t *journal.Trade) { t.Time = "" }},
		{"no asset", func(t *journal.Trade) { t.Asset = " " }},
		{"bad date", func(t *journal.Trade) { t.Date = "2025-13-40" }},
		{"unknown category", func(t *journal.Trade) { t.Category = "Bonds" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := btc("10:00")
			tt.mutate(&tr)
			added, res := MergeTrades(nil, []journal.Trade{tr}, frozenIDs())
			assert.Empty(t, added)
			assert.Equal(t, Result{Rejected: 1}, res)
		})
	}
}

func TestMergeTradesDoesNotModifyExisting(t *testing.T) {
	t.Parallel()

	existing := []journal.Trade{btc("09:00")}
	_, _ = MergeTrades(existing, []journal.Trade{btc("10:00")}, frozenIDs())
	assert.Equal(t, []journal.Trade{btc("09:00")}, existing)
}

func TestMergeTransactions(t *testing.T) {
	t.Parallel()

	existing := []journal.CashTransaction{{Timestamp: 100, Type: journal.Deposit, Amount: 50}}
	incoming := []journal.CashTransaction{
		{Timestamp: 100, Type: journal.Deposit, Amount: 999},
		{Timestamp: 200, Type: journal.Withdrawal, Amount: 20},
		{Timestamp: 200, Type: journal.Withdrawal, Amount: 20},
		{Timestamp: 300, Type: journal.Deposit, Amount: 0},
		{Timestamp: 0, Type: journal.Deposit, Amount: 5},
	}

	added, res := MergeTransactions(existing, incoming)
	require.Len(t, added, 1)
	assert.Equal(t, int64(200), added[0].Timestamp)
	assert.Equal(t, Result{Added: 1, Skipped: 2, Rejected: 2}, res)
}
