package storage

import (
	"bytes"
	"context"
	"database/sql"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/settings"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLite(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return s, path
}

// stores runs f against every Store implementation.
func stores(t *testing.T, f func(t *testing.T, s Store)) {
	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()
		s, _ := newTestSQLite(t)
		f(t, s)
	})
	t.Run("memory", func(t *testing.T) {
		t.Parallel()
		f(t, NewMemory())
	})
}

func TestSQLiteSchemaCreated(t *testing.T) {
	t.Parallel()

	s, path := newTestSQLite(t)
	require.NoError(t, s.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table' AND name IN ('kv','snapshots')`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	assert.True(t, found["kv"], "kv table should exist")
	assert.True(t, found["snapshots"], "snapshots table should exist")
}

func TestKV(t *testing.T) {
	t.Parallel()

	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		_, err := s.Get(ctx, "missing")
		assert.ErrorIs(t, err, ErrNotFound)

		require.NoError(t, s.SetMany(ctx, map[string]string{"a": "1", "b": "2"}))
		require.NoError(t, s.SetMany(ctx, map[string]string{"a": "3"}))

		v, err := s.Get(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "3", v)

		require.NoError(t, s.Delete(ctx, "a", "b"))
		_, err = s.Get(ctx, "b")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSnapshots(t *testing.T) {
	t.Parallel()

	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

		for i, id := range []string{"01A", "01B", "01C"} {
			info := SnapshotInfo{ID: id, Created: base.Add(time.Duration(i) * time.Minute), Trades: i}
			require.NoError(t, s.SaveSnapshot(ctx, info, []byte(`{"trades":[]}`+id)))
		}

		list, err := s.ListSnapshots(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "01C", list[0].ID, "newest first")
		assert.Equal(t, 2, list[0].Trades)
		assert.True(t, list[0].Created.Equal(base.Add(2*time.Minute)))

		doc, err := s.GetSnapshot(ctx, "01B")
		require.NoError(t, err)
		assert.Equal(t, `{"trades":[]}01B`, string(doc))

		n, err := s.PruneSnapshots(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		_, err = s.GetSnapshot(ctx, "01A")
		assert.ErrorIs(t, err, ErrNotFound)

		list, err = s.ListSnapshots(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

func sampleState() State {
	s := settings.Default("2025-01-01")
	s.InitialBankroll = -12.5
	s.RolledOverTotal = 40
	s.GoalType = settings.Currency
	return State{
		Settings: s,
		Trades: []journal.Trade{
			{ID: 1735725600000, Date: "2025-01-01", Time: "10:00", Asset: "ADAUSDT", Category: journal.Crypto, BetAmount: 10, ProfitLoss: 8.6},
		},
		Transactions: []journal.CashTransaction{
			{Timestamp: 1735725600001, Type: journal.Deposit, Amount: 100, Date: "2025-01-01"},
		},
	}
}

func TestSaveLoadState(t *testing.T) {
	t.Parallel()

	stores(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		want := sampleState()

		require.NoError(t, Save(ctx, s, want))

		v, err := s.Get(ctx, KeyDailyGoal)
		require.NoError(t, err)
		assert.Equal(t, "10", v, "scalars are string-encoded")

		got, err := Load(ctx, s, "2030-01-01", nil)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestLoadEmptyUsesDefaults(t *testing.T) {
	t.Parallel()

	got, err := Load(context.Background(), NewMemory(), "2025-06-01", nil)
	require.NoError(t, err)
	assert.Equal(t, settings.Default("2025-06-01"), got.Settings)
	assert.Empty(t, got.Trades)
	assert.Empty(t, got.Transactions)
}

func TestLoadRecoversFromCorruptValues(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := NewMemory()
	require.NoError(t, kv.SetMany(ctx, map[string]string{
		KeyTrades:       `[{"id":1,"date":`,
		KeyTransactions: `[{"timestamp":5,"type":"saque","amount":"20"}]`,
		KeyDailyGoal:    "lots",
		KeyStopLoss:     "-4",
		KeyGoalType:     "R$",
		KeyAssets:       `{"BTCUSDT": 0.8}`,
	}))

	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, nil))

	got, err := Load(ctx, kv, "2025-06-01", log)
	require.NoError(t, err)

	assert.Empty(t, got.Trades)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, journal.Withdrawal, got.Transactions[0].Type)
	assert.Equal(t, 10.0, got.Settings.DailyGoal)
	assert.Equal(t, 50.0, got.Settings.StopLoss)
	assert.Equal(t, settings.Currency, got.Settings.GoalType)
	assert.Equal(t, map[string]float64{"BTCUSDT": 0.8}, got.Settings.Assets)

	assert.Contains(t, logs.String(), "stored trades unreadable")
	assert.Contains(t, logs.String(), "key=dailyGoal")
	assert.Contains(t, logs.String(), "stopLoss")
}

func TestLoadNegativeBankrollIsNotAWarning(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, Save(ctx, m, sampleState()))

	var logs bytes.Buffer
	got, err := Load(ctx, m, "2030-01-01", slog.New(slog.NewTextHandler(&logs, nil)))
	require.NoError(t, err)
	assert.Equal(t, -12.5, got.Settings.InitialBankroll)
	assert.Equal(t, 40.0, got.Settings.RolledOverTotal)
	assert.NotContains(t, logs.String(), "out of range")
}
