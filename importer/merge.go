// Package importer reconciles trades and transactions coming from backup
// files, spreadsheets and recognised screenshots with the journal.
package importer

import (
	"strings"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/pkg/id"
)

// Result counts what a merge did with each incoming record.
type Result struct {
	Added    int `json:"added"`
	Skipped  int `json:"skipped"`  // duplicates
	Rejected int `json:"rejected"` // missing or invalid fields
}

func (r Result) add(o Result) Result {
	return Result{Added: r.Added + o.Added, Skipped: r.Skipped + o.Skipped, Rejected: r.Rejected + o.Rejected}
}

// MergeTrades returns the incoming trades that should be appended to
// existing. A trade is skipped when its date|time|asset key is already
// present, either in existing or earlier in the batch, and rejected when
// it lacks a stake, date, time or asset or fails validation. Survivors get
// fresh ids from ids. existing is not modified.
func MergeTrades(existing, incoming []journal.Trade, ids *id.Sequence) ([]journal.Trade, Result) {
	seen := make(map[string]bool, len(existing)+len(incoming))
	for _, t := range existing {
		seen[t.Key()] = true
	}

	var (
		out []journal.Trade
		res Result
	)
	for _, t := range incoming {
		t.Asset = strings.TrimSpace(t.Asset)
		if seen[t.Key()] {
			res.Skipped++
			continue
		}
		if !complete(t) {
			res.Rejected++
			continue
		}
		if c, err := journal.ParseCategory(string(t.Category)); err == nil {
			t.Category = c
		}
		t.BetAmount = journal.Finite(t.BetAmount)
		t.ProfitLoss = journal.Finite(t.ProfitLoss)
		if t.Validate() != nil {
			res.Rejected++
			continue
		}

		seen[t.Key()] = true
		t.ID = ids.Next()
		out = append(out, t)
		res.Added++
	}
	return out, res
}

func complete(t journal.Trade) bool {
	return t.BetAmount > 0 && t.Date != "" && t.Time != "" && t.Asset != ""
}

// MergeTransactions returns the incoming transactions whose timestamp is
// not already taken. Transactions without a positive timestamp or that
// fail validation are rejected.
func MergeTransactions(existing, incoming []journal.CashTransaction) ([]journal.CashTransaction, Result) {
	seen := make(map[int64]bool, len(existing)+len(incoming))
	for _, c := range existing {
		seen[c.Timestamp] = true
	}

	var (
		out []journal.CashTransaction
		res Result
	)
	for _, c := range incoming {
		if seen[c.Timestamp] {
			res.Skipped++
			continue
		}
		if c.Timestamp <= 0 || c.Validate() != nil {
			res.Rejected++
			continue
		}
		seen[c.Timestamp] = true
		out = append(out, c)
		res.Added++
	}
	return out, res
}
