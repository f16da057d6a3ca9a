package storage

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"

	"github.com/rustyeddy/tradejournal/importer"
	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/settings"
)

// Keys of the persisted documents.
const (
	KeyTrades           = "trades"
	KeyTransactions     = "transactions"
	KeyInitialBankroll  = "initialBankroll"
	KeyDailyGoal        = "dailyGoal"
	KeyGoalType         = "goalType"
	KeyStopLoss         = "stopLoss"
	KeyStopWin          = "stopWin"
	KeyStopLossType     = "stopLossType"
	KeyStopWinType      = "stopWinType"
	KeyEntryPercentage  = "entryPercentage"
	KeyCapitalBaseType  = "capitalBaseType"
	KeyLastRolloverDate = "lastRolloverDate"
	KeyRolledOverTotal  = "rolledOverTotal"
	KeyAssets           = "assets"
)

// Keys lists every key Save writes.
var Keys = []string{
	KeyTrades, KeyTransactions, KeyInitialBankroll, KeyDailyGoal, KeyGoalType,
	KeyStopLoss, KeyStopWin, KeyStopLossType, KeyStopWinType, KeyEntryPercentage,
	KeyCapitalBaseType, KeyLastRolloverDate, KeyRolledOverTotal, KeyAssets,
}

// State is everything the journal persists.
type State struct {
	Settings     settings.Settings
	Trades       []journal.Trade
	Transactions []journal.CashTransaction
}

// Load reads the state. A missing key takes its default. A value that
// does not parse also takes its default and is logged; Load only fails
// when the store itself does.
func Load(ctx context.Context, kv KV, today string, log *slog.Logger) (State, error) {
	if log == nil {
		log = slog.Default()
	}

	get := func(key string) (string, bool, error) {
		v, err := kv.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		return v, true, nil
	}

	var st State

	raw, ok, err := get(KeyTrades)
	if err != nil {
		return st, err
	}
	if ok {
		if st.Trades, err = importer.DecodeTrades([]byte(raw)); err != nil {
			log.Warn("stored trades unreadable, starting empty", "err", err)
			st.Trades = nil
		}
	}

	raw, ok, err = get(KeyTransactions)
	if err != nil {
		return st, err
	}
	if ok {
		if st.Transactions, err = importer.DecodeTransactions([]byte(raw)); err != nil {
			log.Warn("stored transactions unreadable, starting empty", "err", err)
			st.Transactions = nil
		}
	}

	var b importer.Backup
	nums := map[string]**float64{
		KeyInitialBankroll: &b.InitialBankroll,
		KeyDailyGoal:       &b.DailyGoal,
		KeyStopLoss:        &b.StopLoss,
		KeyStopWin:         &b.StopWin,
		KeyEntryPercentage: &b.EntryPercentage,
		KeyRolledOverTotal: &b.RolledOverTotal,
	}
	for key, dst := range nums {
		raw, ok, err := get(key)
		if err != nil {
			return st, err
		}
		if !ok {
			continue
		}
		v, perr := strconv.ParseFloat(raw, 64)
		if perr != nil || v != journal.Finite(v) {
			log.Warn("stored setting unreadable, using default", "key", key, "value", raw)
			continue
		}
		*dst = &v
	}

	strs := map[string]**string{
		KeyGoalType:         &b.GoalType,
		KeyStopLossType:     &b.StopLossType,
		KeyStopWinType:      &b.StopWinType,
		KeyCapitalBaseType:  &b.CapitalBaseType,
		KeyLastRolloverDate: &b.LastRolloverDate,
	}
	for key, dst := range strs {
		raw, ok, err := get(key)
		if err != nil {
			return st, err
		}
		if ok {
			v := raw
			*dst = &v
		}
	}

	raw, ok, err = get(KeyAssets)
	if err != nil {
		return st, err
	}
	if ok {
		if err := json.Unmarshal([]byte(raw), &b.Assets); err != nil {
			log.Warn("stored assets unreadable, using defaults", "err", err)
			b.Assets = nil
		}
	}

	if _, ignored := b.Patch(); len(ignored) > 0 {
		log.Warn("stored settings out of range, using defaults", "keys", ignored)
	}
	st.Settings, err = b.Settings(today)
	if err != nil {
		log.Warn("stored settings invalid, using defaults", "err", err)
		st.Settings = settings.Default(today)
	}
	return st, nil
}

// Save writes every key in one batch.
func Save(ctx context.Context, kv KV, st State) error {
	values, err := Encode(st)
	if err != nil {
		return err
	}
	return kv.SetMany(ctx, values)
}

// Encode renders the state as key-value documents. Scalars are stored as
// strings.
func Encode(st State) (map[string]string, error) {
	trades := st.Trades
	if trades == nil {
		trades = []journal.Trade{}
	}
	txs := st.Transactions
	if txs == nil {
		txs = []journal.CashTransaction{}
	}
	assets := st.Settings.Assets
	if assets == nil {
		assets = map[string]float64{}
	}

	tb, err := json.Marshal(trades)
	if err != nil {
		return nil, err
	}
	xb, err := json.Marshal(txs)
	if err != nil {
		return nil, err
	}
	ab, err := json.Marshal(assets)
	if err != nil {
		return nil, err
	}

	s := st.Settings
	return map[string]string{
		KeyTrades:           string(tb),
		KeyTransactions:     string(xb),
		KeyAssets:           string(ab),
		KeyInitialBankroll:  num(s.InitialBankroll),
		KeyDailyGoal:        num(s.DailyGoal),
		KeyGoalType:         string(s.GoalType),
		KeyStopLoss:         num(s.StopLoss),
		KeyStopWin:          num(s.StopWin),
		KeyStopLossType:     string(s.StopLossType),
		KeyStopWinType:      string(s.StopWinType),
		KeyEntryPercentage:  num(s.EntryPercentage),
		KeyCapitalBaseType:  string(s.CapitalBase),
		KeyLastRolloverDate: s.LastRolloverDate,
		KeyRolledOverTotal:  num(s.RolledOverTotal),
	}, nil
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
