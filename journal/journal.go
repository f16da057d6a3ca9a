// journal/journal.go
package journal

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

var (
	ErrNotFound = errors.New("not found")
	ErrInvalid  = errors.New("invalid")
)

type Category string

const (
	Crypto      Category = "Crypto"
	Forex       Category = "Forex"
	Stocks      Category = "Stocks"
	Copy        Category = "Copy"
	Commodities Category = "Commodities"
)

// Categories lists the accepted categories in display order.
var Categories = []Category{Crypto, Forex, Stocks, Copy, Commodities}

// ParseCategory matches case-insensitively. Empty input means Crypto.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Crypto, nil
	}
	for _, c := range Categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown category %q", ErrInvalid, s)
}

type Outcome string

const (
	Positive Outcome = "Positive"
	Negative Outcome = "Negative"
	Tie      Outcome = "Tie"
)

// ParseOutcome accepts the English names and the Portuguese labels found
// in exported spreadsheets.
func ParseOutcome(s string) (Outcome, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive", "win", "positivo", "gain", "ganho":
		return Positive, nil
	case "negative", "loss", "negativo", "perda":
		return Negative, nil
	case "tie", "empate", "draw":
		return Tie, nil
	}
	return "", fmt.Errorf("%w: unknown outcome %q", ErrInvalid, s)
}

// OutcomeOf classifies a profit/loss by sign; zero is always a tie.
func OutcomeOf(profitLoss float64) Outcome {
	switch {
	case profitLoss > 0:
		return Positive
	case profitLoss < 0:
		return Negative
	}
	return Tie
}

// Trade is one logged operation. It is always replaced wholly, never patched.
type Trade struct {
	ID         int64    `json:"id"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Asset      string   `json:"asset"`
	Category   Category `json:"category"`
	BetAmount  float64  `json:"betAmount"`
	ProfitLoss float64  `json:"profitLoss"`
}

// Key is the date|time|asset identity used to spot duplicates on import.
func (t Trade) Key() string {
	return t.Date + "|" + t.Time + "|" + t.Asset
}

func (t Trade) Outcome() Outcome { return OutcomeOf(t.ProfitLoss) }

// Validate reports the first problem with the record, if any.
func (t Trade) Validate() error {
	if strings.TrimSpace(t.Asset) == "" {
		return fmt.Errorf("%w: trade: asset is required", ErrInvalid)
	}
	if _, err := time.Parse(DateLayout, t.Date); err != nil {
		return fmt.Errorf("%w: trade: date %q must be YYYY-MM-DD", ErrInvalid, t.Date)
	}
	if t.Time != "" {
		if _, err := time.Parse(TimeLayout, t.Time); err != nil {
			return fmt.Errorf("%w: trade: time %q must be HH:MM", ErrInvalid, t.Time)
		}
	}
	if _, err := ParseCategory(string(t.Category)); err != nil {
		return fmt.Errorf("trade: %w", err)
	}
	if t.BetAmount < 0 {
		return fmt.Errorf("%w: trade: bet amount must not be negative", ErrInvalid)
	}
	return nil
}

type TxType string

const (
	Deposit    TxType = "deposit"
	Withdrawal TxType = "withdrawal"
)

func ParseTxType(s string) (TxType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deposit", "deposito", "depósito":
		return Deposit, nil
	case "withdrawal", "withdraw", "saque":
		return Withdrawal, nil
	}
	return "", fmt.Errorf("%w: unknown transaction type %q", ErrInvalid, s)
}

// CashTransaction is a deposit or withdrawal. Timestamp is its identity.
type CashTransaction struct {
	Timestamp   int64   `json:"timestamp"`
	Type        TxType  `json:"type"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description,omitempty"`
	Date        string  `json:"date"`
}

func (c CashTransaction) Validate() error {
	if c.Type != Deposit && c.Type != Withdrawal {
		return fmt.Errorf("%w: transaction: type must be deposit or withdrawal", ErrInvalid)
	}
	if !(c.Amount > 0) || math.IsInf(c.Amount, 0) {
		return fmt.Errorf("%w: transaction: amount must be positive", ErrInvalid)
	}
	return nil
}

// Signed returns the amount as it affects the bankroll.
func (c CashTransaction) Signed() float64 {
	if c.Type == Withdrawal {
		return -c.Amount
	}
	return c.Amount
}

// ParseAmount never fails: unparseable or non-finite input is 0.
func ParseAmount(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return Finite(v)
}

// Finite maps NaN and ±Inf to 0.
func Finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
