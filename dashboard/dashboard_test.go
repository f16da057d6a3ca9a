package dashboard

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/importer"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/risk"
	"github.com/rustyeddy/tradejournal/settings"
	"github.com/rustyeddy/tradejournal/storage"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2025, 1, 16, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type recorder struct {
	mu     sync.Mutex
	events []risk.Event
}

func (r *recorder) record(e risk.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) rules() []risk.Rule {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []risk.Rule
	for _, e := range r.events {
		out = append(out, e.Rule)
	}
	return out
}

func open(t *testing.T, store storage.Store, c *clock, rec *recorder) *Dashboard {
	t.Helper()
	opts := Options{Now: c.Now, Location: time.UTC, SnapshotKeep: 2}
	if rec != nil {
		opts.OnEvent = rec.record
	}
	d, err := Open(context.Background(), store, opts)
	require.NoError(t, err)
	return d
}

func ptr[T any](v T) *T { return &v }

func copyTrade(date, tm, asset, pl string) journal.TradeInput {
	return journal.TradeInput{Date: date, Time: tm, Asset: asset, Category: "Copy", BetAmount: "10", ProfitLoss: pl}
}

func TestAddTradeDerivesAndPersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	c := newClock()
	d := open(t, store, c, nil)

	tr, err := d.AddTrade(ctx, journal.TradeInput{
		Date: "2025-01-16", Time: "10:00", Asset: "ADAUSDT", Category: "Crypto", BetAmount: "10", Outcome: "Positive",
	})
	require.NoError(t, err)
	assert.Equal(t, 8.6, tr.ProfitLoss)
	assert.Equal(t, c.Now().UnixMilli(), tr.ID)

	dup, err := d.DuplicateTrade(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, tr.ID+1, dup.ID, "same millisecond still yields a fresh id")

	reopened := open(t, store, c, nil)
	assert.Equal(t, d.Trades(), reopened.Trades())
}

func TestEditAndRemoveTrade(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := open(t, storage.NewMemory(), newClock(), nil)

	tr, err := d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "5"))
	require.NoError(t, err)

	edited, err := d.EditTrade(ctx, tr.ID, journal.TradeInput{
		Date: "2025-01-16", Time: "10:05", Asset: "XRPUSDT", Category: "Forex", BetAmount: "20", Outcome: "Negative",
	})
	require.NoError(t, err)
	assert.Equal(t, tr.ID, edited.ID)
	assert.Equal(t, -20.0, edited.ProfitLoss)

	_, err = d.EditTrade(ctx, 42, copyTrade("2025-01-16", "10:00", "ADAUSDT", "1"))
	assert.ErrorIs(t, err, journal.ErrNotFound)

	_, err = d.AddTrade(ctx, journal.TradeInput{Date: "2025-01-16", Time: "10:00", Asset: "ADAUSDT", BetAmount: "-1", Outcome: "Tie"})
	assert.Error(t, err)

	require.NoError(t, d.RemoveTrade(ctx, tr.ID))
	assert.Empty(t, d.Trades())
	assert.ErrorIs(t, d.RemoveTrade(ctx, tr.ID), journal.ErrNotFound)
}

func TestTransactionsFeedBankroll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := open(t, storage.NewMemory(), newClock(), nil)

	dep, err := d.AddTransaction(ctx, journal.CashTransaction{Type: journal.Deposit, Amount: 100})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-16", dep.Date)

	wd, err := d.AddTransaction(ctx, journal.CashTransaction{Type: journal.Withdrawal, Amount: 30})
	require.NoError(t, err)
	assert.NotEqual(t, dep.Timestamp, wd.Timestamp)
	assert.Equal(t, 70.0, d.Figures().CurrentBankroll)

	_, err = d.EditTransaction(ctx, wd.Timestamp, journal.CashTransaction{Type: journal.Withdrawal, Amount: 50})
	require.NoError(t, err)
	assert.Equal(t, 50.0, d.Figures().TransactionsTotal)

	require.NoError(t, d.RemoveTransaction(ctx, dep.Timestamp))
	assert.Equal(t, -50.0, d.Figures().CurrentBankroll)

	_, err = d.AddTransaction(ctx, journal.CashTransaction{Type: journal.Deposit, Amount: 0})
	assert.ErrorIs(t, err, journal.ErrInvalid)
}

func TestRolloverDoesNotDoubleCount(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClock()
	d := open(t, storage.NewMemory(), c, nil)

	_, err := d.ApplySettings(ctx, settings.Patch{InitialBankroll: ptr(100.0)})
	require.NoError(t, err)
	_, err = d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "50"))
	require.NoError(t, err)
	assert.Equal(t, 150.0, d.Figures().CurrentBankroll)

	_, ok, err := d.Rollover(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "same day is a no-op")

	c.Advance(24 * time.Hour)
	f, ok, err := d.Rollover(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 150.0, f.NewInitial)
	assert.Equal(t, "2025-01-17", d.Settings().LastRolloverDate)

	fig := d.Figures()
	assert.Equal(t, 150.0, fig.InitialBankroll)
	assert.Equal(t, 0.0, fig.RunningTotal)
	assert.Equal(t, 150.0, fig.CurrentBankroll)

	_, ok, err = d.Rollover(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 150.0, d.Figures().CurrentBankroll)
}

func TestThresholdEventsAreEdgeTriggered(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := &recorder{}
	d := open(t, storage.NewMemory(), newClock(), rec)

	_, err := d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "-60"))
	require.NoError(t, err)
	assert.Equal(t, []risk.Rule{risk.StopLoss}, rec.rules())

	_, err = d.AddTrade(ctx, copyTrade("2025-01-16", "10:05", "ADAUSDT", "-5"))
	require.NoError(t, err)
	assert.Len(t, rec.rules(), 1, "still breached, no new event")
	assert.Equal(t, []risk.Rule{risk.StopLoss}, d.Firing())
}

func TestDailyGoalAndStopWinFire(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := &recorder{}
	d := open(t, storage.NewMemory(), newClock(), rec)

	_, err := d.ApplySettings(ctx, settings.Patch{InitialBankroll: ptr(1000.0)})
	require.NoError(t, err)
	assert.Empty(t, rec.rules())

	_, err = d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "120"))
	require.NoError(t, err)
	assert.Equal(t, []risk.Rule{risk.StopWin, risk.DailyGoal}, rec.rules())

	r := d.Daily("")
	assert.Equal(t, 112.0, r.GoalAmount)
	assert.True(t, r.MetGoal)
}

func TestZeroBankrollPercentGoalNeverFires(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	rec := &recorder{}
	d := open(t, storage.NewMemory(), newClock(), rec)

	_, err := d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "0"))
	require.NoError(t, err)
	assert.Empty(t, rec.rules())
	assert.False(t, d.Daily("2025-01-16").MetGoal)
}

const backupDoc = `{
  "trades": [
    {"id": 1, "date": "2025-01-16", "time": "10:00", "asset": "ADAUSDT", "type": "Crypto", "betAmount": "10", "profitLoss": 8.6},
    {"id": 2, "date": "2025-01-16", "time": "11:00", "asset": "ADAUSDT", "category": "Crypto", "betAmount": 10, "profitLoss": -10},
    {"id": 3, "date": "2025-01-16", "time": "", "asset": "ADAUSDT", "betAmount": 10, "profitLoss": 1}
  ],
  "transactions": [
    {"timestamp": 1700000000000, "type": "deposit", "amount": 100, "date": "2023-11-14"}
  ],
  "dailyGoal": 25,
  "goalType": "R$",
  "stopLoss": -5,
  "lastRolloverDate": "1999-01-01"
}`

func TestImportBackup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := open(t, storage.NewMemory(), newClock(), nil)
	_, err := d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "8.6"))
	require.NoError(t, err)

	rep, err := d.ImportBackup(ctx, strings.NewReader(backupDoc))
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Added: 1, Skipped: 1, Rejected: 1}, rep.Trades)
	assert.Equal(t, importer.Result{Added: 1}, rep.Transactions)
	assert.True(t, rep.SettingsApplied)
	assert.Equal(t, []string{"stopLoss"}, rep.Ignored)

	s := d.Settings()
	assert.Equal(t, 25.0, s.DailyGoal)
	assert.Equal(t, settings.Currency, s.GoalType)
	assert.Equal(t, 50.0, s.StopLoss)
	assert.Equal(t, "2025-01-16", s.LastRolloverDate, "the rollover date is not imported")
	assert.Len(t, d.Trades(), 2)
	assert.Equal(t, 100.0, d.Figures().TransactionsTotal)

	again, err := d.ImportBackup(ctx, strings.NewReader(backupDoc))
	require.NoError(t, err)
	assert.Equal(t, 0, again.Trades.Added)
	assert.Equal(t, 1, again.Transactions.Skipped)
}

func TestImportMalformedBackupChangesNothing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := open(t, storage.NewMemory(), newClock(), nil)
	before := d.Backup()

	for _, doc := range []string{`{"trades": [`, `{"transactions": []}`, `{"trades": null}`} {
		_, err := d.ImportBackup(ctx, strings.NewReader(doc))
		assert.ErrorIs(t, err, importer.ErrMalformedBackup, doc)
	}
	assert.Equal(t, before, d.Backup())
}

func TestBackupAfterRolloverKeepsBankroll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newClock()
	d := open(t, storage.NewMemory(), c, nil)

	_, err := d.ApplySettings(ctx, settings.Patch{InitialBankroll: ptr(100.0)})
	require.NoError(t, err)
	_, err = d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "50"))
	require.NoError(t, err)
	c.Advance(24 * time.Hour)
	_, ok, err := d.Rollover(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 150.0, d.Figures().CurrentBankroll)

	var doc bytes.Buffer
	require.NoError(t, d.ExportBackup(&doc))
	require.NoError(t, d.ClearAll(ctx))

	_, err = d.ImportBackup(ctx, bytes.NewReader(doc.Bytes()))
	require.NoError(t, err)
	fig := d.Figures()
	assert.Equal(t, 150.0, fig.InitialBankroll)
	assert.Equal(t, 0.0, fig.RunningTotal, "folded trades are not counted again")
	assert.Equal(t, 150.0, fig.CurrentBankroll)
	assert.Equal(t, 50.0, d.Settings().RolledOverTotal)

	other := open(t, storage.NewMemory(), c, nil)
	_, err = other.AddTrade(ctx, copyTrade("2025-01-17", "09:00", "BTCUSDT", "5"))
	require.NoError(t, err)
	_, err = other.ImportBackup(ctx, bytes.NewReader(doc.Bytes()))
	require.NoError(t, err)
	assert.Len(t, other.Trades(), 2)
	assert.Equal(t, 155.0, other.Figures().CurrentBankroll, "local trades still count")
}

func TestImportCSVAndOCR(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := open(t, storage.NewMemory(), newClock(), nil)

	sheet := "data;hora;ativo;tipo;valor;resultado;lucro_prejuizo\n"
	_, err := d.ImportCSV(ctx, strings.NewReader(sheet))
	assert.Error(t, err, "semicolon header does not name the columns")

	sheet = "Data,Hora,Ativo,Tipo,Valor,Resultado,Lucro_Prejuizo\n" +
		"16/01/2025,9:05,ADAUSDT,Crypto,10,Positivo,\n" +
		"2025-01-16,10:00,XRPUSDT,Copy,20,Negativo,-20\n"
	res, err := d.ImportCSV(ctx, strings.NewReader(sheet))
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Added: 2}, res)
	assert.Equal(t, -11.4, d.Figures().RunningTotal)

	res, err = d.ImportOCR(ctx, "09:05 ADAUSDT R$ 10,00 +R$ 8,60\n11:30 BNBUSDT R$ 10 win\n", "Screenshot_15012025.png")
	require.NoError(t, err)
	assert.Equal(t, importer.Result{Added: 2}, res, "a different date is a different key")

	trades := d.Trades()
	require.Len(t, trades, 4)
	assert.Equal(t, "2025-01-15", trades[3].Date)
	assert.Equal(t, 9.2, trades[3].ProfitLoss)
}

func TestSnapshotAndRestore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	c := newClock()
	d := open(t, store, c, nil)

	_, err := d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "50"))
	require.NoError(t, err)
	c.Advance(24 * time.Hour)
	_, _, err = d.Rollover(ctx)
	require.NoError(t, err)

	info, err := d.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, info.Trades)

	_, err = d.AddTrade(ctx, copyTrade("2025-01-17", "10:00", "ADAUSDT", "5"))
	require.NoError(t, err)
	_, err = d.ApplySettings(ctx, settings.Patch{DailyGoal: ptr(99.0)})
	require.NoError(t, err)

	require.NoError(t, d.Restore(ctx, info.ID))
	assert.Len(t, d.Trades(), 1)
	s := d.Settings()
	assert.Equal(t, 10.0, s.DailyGoal)
	assert.Equal(t, 50.0, s.InitialBankroll)
	assert.Equal(t, 50.0, s.RolledOverTotal)
	assert.Equal(t, 50.0, d.Figures().CurrentBankroll)

	assert.ErrorIs(t, d.Restore(ctx, "nope"), storage.ErrNotFound)

	for i := 0; i < 3; i++ {
		_, err := d.Snapshot(ctx)
		require.NoError(t, err)
	}
	list, err := d.ListSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "pruned to SnapshotKeep")
}

func TestClearAll(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	c := newClock()
	d := open(t, store, c, nil)

	require.NoError(t, d.SetAsset(ctx, "SOLUSDT", 0.8))
	_, err := d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "SOLUSDT", "-70"))
	require.NoError(t, err)
	_, err = d.AddTransaction(ctx, journal.CashTransaction{Type: journal.Deposit, Amount: 10})
	require.NoError(t, err)
	assert.NotEmpty(t, d.Firing())

	require.NoError(t, d.ClearAll(ctx))
	assert.Empty(t, d.Trades())
	assert.Empty(t, d.Transactions())
	assert.Equal(t, settings.Default("2025-01-16"), d.Settings())
	assert.Empty(t, d.Firing())

	reopened := open(t, store, c, nil)
	assert.Equal(t, settings.Default("2025-01-16"), reopened.Settings())
}

func TestAssets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := open(t, storage.NewMemory(), newClock(), nil)

	require.NoError(t, d.RenameAsset(ctx, "ADAUSDT", "ADA", 0.8))
	assert.Equal(t, 0.8, d.Settings().PayoutRatio("ADA"))
	require.NoError(t, d.RemoveAsset(ctx, "ADA"))
	assert.ErrorIs(t, d.RemoveAsset(ctx, "ADA"), settings.ErrInvalid)
	assert.ErrorIs(t, d.SetAsset(ctx, "", 0.5), settings.ErrInvalid)
}

func TestExports(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := open(t, storage.NewMemory(), newClock(), nil)
	_, err := d.AddTrade(ctx, copyTrade("2025-01-16", "10:00", "ADAUSDT", "8.6"))
	require.NoError(t, err)

	var csv bytes.Buffer
	require.NoError(t, d.ExportCSV(&csv))
	assert.True(t, strings.HasPrefix(csv.String(), "id,date,time,asset,category,betAmount,profitLoss\n"))
	assert.Contains(t, csv.String(), ",2025-01-16,10:00,ADAUSDT,Copy,10.00,8.60")

	var doc bytes.Buffer
	require.NoError(t, d.ExportBackup(&doc))

	other := open(t, storage.NewMemory(), newClock(), nil)
	rep, err := other.ImportBackup(ctx, &doc)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Trades.Added)
	assert.Empty(t, rep.Ignored)
}

func TestOpenRecoversCorruptState(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := storage.NewMemory()
	require.NoError(t, store.SetMany(ctx, map[string]string{
		storage.KeyTrades:    "not json",
		storage.KeyDailyGoal: "NaN",
	}))

	d := open(t, store, newClock(), nil)
	assert.Empty(t, d.Trades())
	assert.Equal(t, 10.0, d.Settings().DailyGoal)
}
