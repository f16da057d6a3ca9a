package journal

import (
	"fmt"
	"sync"

	"github.com/rustyeddy/tradejournal/pkg/id"
)

// Store holds the trades and cash transactions in insertion order.
// Every mutation validates first and leaves the store untouched on error.
type Store struct {
	mu     sync.RWMutex
	trades []Trade
	txs    []CashTransaction
	ids    *id.Sequence
}

// NewStore seeds a store with previously persisted records. The id
// sequence is advanced past every existing trade id and transaction
// timestamp.
func NewStore(ids *id.Sequence, trades []Trade, txs []CashTransaction) *Store {
	if ids == nil {
		ids = id.NewSequence(nil)
	}
	s := &Store{
		trades: append([]Trade(nil), trades...),
		txs:    append([]CashTransaction(nil), txs...),
		ids:    ids,
	}
	for _, t := range s.trades {
		ids.Observe(t.ID)
	}
	for _, c := range s.txs {
		ids.Observe(c.Timestamp)
	}
	return s
}

// IDs exposes the sequence so batch imports draw from the same source.
func (s *Store) IDs() *id.Sequence { return s.ids }

func (s *Store) Trades() []Trade {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Trade(nil), s.trades...)
}

func (s *Store) Transactions() []CashTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]CashTransaction(nil), s.txs...)
}

func (s *Store) GetTrade(tradeID int64) (Trade, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.tradeIndex(tradeID)
	if i < 0 {
		return Trade{}, fmt.Errorf("trade %d: %w", tradeID, ErrNotFound)
	}
	return s.trades[i], nil
}

// AddTrade assigns a fresh id and appends the trade.
func (s *Store) AddTrade(t Trade) (Trade, error) {
	t = sanitizeTrade(t)
	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t.ID = s.ids.Next()
	s.trades = append(s.trades, t)
	return t, nil
}

// UpdateTrade replaces the trade with the given id. The id is immutable.
func (s *Store) UpdateTrade(tradeID int64, t Trade) (Trade, error) {
	t = sanitizeTrade(t)
	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tradeIndex(tradeID)
	if i < 0 {
		return Trade{}, fmt.Errorf("trade %d: %w", tradeID, ErrNotFound)
	}
	t.ID = tradeID
	s.trades[i] = t
	return t, nil
}

// DuplicateTrade appends a copy of an existing trade under a new id.
func (s *Store) DuplicateTrade(tradeID int64) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tradeIndex(tradeID)
	if i < 0 {
		return Trade{}, fmt.Errorf("trade %d: %w", tradeID, ErrNotFound)
	}
	t := s.trades[i]
	t.ID = s.ids.Next()
	s.trades = append(s.trades, t)
	return t, nil
}

func (s *Store) RemoveTrade(tradeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.tradeIndex(tradeID)
	if i < 0 {
		return fmt.Errorf("trade %d: %w", tradeID, ErrNotFound)
	}
	s.trades = append(s.trades[:i], s.trades[i+1:]...)
	return nil
}

// AppendTrades adds already identified trades, e.g. the output of an
// import merge. Ids must be unique; the batch is rejected whole otherwise.
func (s *Store) AppendTrades(batch []Trade) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int64]bool, len(s.trades)+len(batch))
	for _, t := range s.trades {
		seen[t.ID] = true
	}
	for _, t := range batch {
		if seen[t.ID] {
			return fmt.Errorf("%w: trade id %d already in use", ErrInvalid, t.ID)
		}
		seen[t.ID] = true
	}
	for _, t := range batch {
		s.ids.Observe(t.ID)
		s.trades = append(s.trades, sanitizeTrade(t))
	}
	return nil
}

// AddTransaction stamps the transaction with a fresh timestamp.
func (s *Store) AddTransaction(c CashTransaction) (CashTransaction, error) {
	c.Amount = Finite(c.Amount)
	if err := c.Validate(); err != nil {
		return CashTransaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Timestamp = s.ids.Next()
	s.txs = append(s.txs, c)
	return c, nil
}

// UpdateTransaction replaces by timestamp. The original date is kept when
// the replacement does not carry one.
func (s *Store) UpdateTransaction(ts int64, c CashTransaction) (CashTransaction, error) {
	c.Amount = Finite(c.Amount)
	if err := c.Validate(); err != nil {
		return CashTransaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(ts)
	if i < 0 {
		return CashTransaction{}, fmt.Errorf("transaction %d: %w", ts, ErrNotFound)
	}
	c.Timestamp = ts
	if c.Date == "" {
		c.Date = s.txs[i].Date
	}
	s.txs[i] = c
	return c, nil
}

func (s *Store) RemoveTransaction(ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.txIndex(ts)
	if i < 0 {
		return fmt.Errorf("transaction %d: %w", ts, ErrNotFound)
	}
	s.txs = append(s.txs[:i], s.txs[i+1:]...)
	return nil
}

func (s *Store) AppendTransactions(batch []CashTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seen := make(map[int64]bool, len(s.txs)+len(batch))
	for _, c := range s.txs {
		seen[c.Timestamp] = true
	}
	for _, c := range batch {
		if seen[c.Timestamp] {
			return fmt.Errorf("%w: transaction timestamp %d already in use", ErrInvalid, c.Timestamp)
		}
		seen[c.Timestamp] = true
	}
	for _, c := range batch {
		s.ids.Observe(c.Timestamp)
		s.txs = append(s.txs, c)
	}
	return nil
}

// Clear drops every trade and transaction.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trades = nil
	s.txs = nil
}

func (s *Store) tradeIndex(tradeID int64) int {
	for i, t := range s.trades {
		if t.ID == tradeID {
			return i
		}
	}
	return -1
}

func (s *Store) txIndex(ts int64) int {
	for i, c := range s.txs {
		if c.Timestamp == ts {
			return i
		}
	}
	return -1
}

func sanitizeTrade(t Trade) Trade {
	t.BetAmount = Finite(t.BetAmount)
	t.ProfitLoss = Finite(t.ProfitLoss)
	if c, err := ParseCategory(string(t.Category)); err == nil {
		t.Category = c
	}
	return t
}
