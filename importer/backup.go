package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/tradejournal/journal"
	"github.com/rustyeddy/tradejournal/settings"
)

var ErrMalformedBackup = errors.New("malformed backup")

// Backup is the export document. Settings fields are pointers so an
// import can tell absent fields from zero values.
type Backup struct {
	Trades          []journal.Trade           `json:"trades"`
	Transactions    []journal.CashTransaction `json:"transactions"`
	InitialBankroll *float64                  `json:"initialBankroll,omitempty"`
	DailyGoal       *float64                  `json:"dailyGoal,omitempty"`
	GoalType        *string                   `json:"goalType,omitempty"`
	StopLoss        *float64                  `json:"stopLoss,omitempty"`
	StopWin         *float64                  `json:"stopWin,omitempty"`
	StopLossType    *string                   `json:"stopLossType,omitempty"`
	StopWinType     *string                   `json:"stopWinType,omitempty"`
	Assets          map[string]float64        `json:"assets,omitempty"`
	EntryPercentage *float64                  `json:"entryPercentage,omitempty"`
	CapitalBaseType *string                   `json:"capitalBaseType,omitempty"`

	// A merge import ignores LastRolloverDate and takes RolledOverTotal
	// only together with InitialBankroll.
	LastRolloverDate *string  `json:"lastRolloverDate,omitempty"`
	RolledOverTotal  *float64 `json:"rolledOverTotal,omitempty"`
}

// BuildBackup captures the whole journal.
func BuildBackup(s settings.Settings, trades []journal.Trade, txs []journal.CashTransaction) Backup {
	str := func(v string) *string { return &v }
	num := func(v float64) *float64 { return &v }

	if trades == nil {
		trades = []journal.Trade{}
	}
	if txs == nil {
		txs = []journal.CashTransaction{}
	}
	assets := make(map[string]float64, len(s.Assets))
	for k, v := range s.Assets {
		assets[k] = v
	}

	return Backup{
		Trades:           trades,
		Transactions:     txs,
		InitialBankroll:  num(s.InitialBankroll),
		DailyGoal:        num(s.DailyGoal),
		GoalType:         str(string(s.GoalType)),
		StopLoss:         num(s.StopLoss),
		StopWin:          num(s.StopWin),
		StopLossType:     str(string(s.StopLossType)),
		StopWinType:      str(string(s.StopWinType)),
		Assets:           assets,
		EntryPercentage:  num(s.EntryPercentage),
		CapitalBaseType:  str(string(s.CapitalBase)),
		LastRolloverDate: str(s.LastRolloverDate),
		RolledOverTotal:  num(s.RolledOverTotal),
	}
}

func WriteBackup(w io.Writer, b Backup) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(b)
}

// Marshal returns the compact encoding snapshots are stored in.
func (b Backup) Marshal() ([]byte, error) {
	return json.Marshal(b)
}

// ParseBackup decodes a backup document. Numbers may be JSON numbers or
// numeric strings, and trades may carry their category under the older
// "type" key. The document must contain a trades array.
func ParseBackup(r io.Reader) (Backup, error) {
	var raw rawBackup
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return Backup{}, fmt.Errorf("%w: %v", ErrMalformedBackup, err)
	}
	if raw.Trades == nil {
		return Backup{}, fmt.Errorf("%w: no trades array", ErrMalformedBackup)
	}

	b := Backup{
		Trades:           make([]journal.Trade, 0, len(*raw.Trades)),
		Transactions:     make([]journal.CashTransaction, 0, len(raw.Transactions)),
		InitialBankroll:  raw.InitialBankroll.ptr(),
		DailyGoal:        raw.DailyGoal.ptr(),
		GoalType:         raw.GoalType,
		StopLoss:         raw.StopLoss.ptr(),
		StopWin:          raw.StopWin.ptr(),
		StopLossType:     raw.StopLossType,
		StopWinType:      raw.StopWinType,
		EntryPercentage:  raw.EntryPercentage.ptr(),
		CapitalBaseType:  raw.CapitalBaseType,
		LastRolloverDate: raw.LastRolloverDate,
		RolledOverTotal:  raw.RolledOverTotal.ptr(),
	}
	for _, t := range *raw.Trades {
		b.Trades = append(b.Trades, t.trade())
	}
	for _, c := range raw.Transactions {
		b.Transactions = append(b.Transactions, c.transaction())
	}
	if raw.Assets != nil {
		b.Assets = make(map[string]float64, len(raw.Assets))
		for k, v := range raw.Assets {
			b.Assets[k] = float64(v)
		}
	}
	return b, nil
}

// Patch returns the settings changes a merge import applies: every field
// that is present and valid on its own. ignored names the fields that
// were present but invalid. The bankroll baseline is not part of the
// patch; see Baseline.
func (b Backup) Patch() (p settings.Patch, ignored []string) {
	amount := func(name string, v *float64, dst **float64, ok func(float64) bool) {
		if v == nil {
			return
		}
		if !ok(*v) {
			ignored = append(ignored, name)
			return
		}
		*dst = v
	}
	amountType := func(name string, v *string, dst **settings.AmountType) {
		if v == nil {
			return
		}
		t, err := settings.ParseAmountType(*v)
		if err != nil {
			ignored = append(ignored, name)
			return
		}
		*dst = &t
	}

	nonNegative := func(v float64) bool { return v >= 0 }
	if _, _, ok := b.Baseline(); !ok && b.InitialBankroll != nil {
		ignored = append(ignored, "initialBankroll")
	}
	amount("dailyGoal", b.DailyGoal, &p.DailyGoal, nonNegative)
	amount("stopLoss", b.StopLoss, &p.StopLoss, nonNegative)
	amount("stopWin", b.StopWin, &p.StopWin, nonNegative)
	amount("entryPercentage", b.EntryPercentage, &p.EntryPercentage, func(v float64) bool { return v >= 0 && v <= 100 })
	amountType("goalType", b.GoalType, &p.GoalType)
	amountType("stopLossType", b.StopLossType, &p.StopLossType)
	amountType("stopWinType", b.StopWinType, &p.StopWinType)

	if b.CapitalBaseType != nil {
		if c, err := settings.ParseCapitalBase(*b.CapitalBaseType); err == nil {
			p.CapitalBase = &c
		} else {
			ignored = append(ignored, "capitalBaseType")
		}
	}
	if b.Assets != nil {
		if validAssets(b.Assets) {
			p.Assets = b.Assets
		} else {
			ignored = append(ignored, "assets")
		}
	}
	return p, ignored
}

// Baseline returns the backup's initial bankroll together with the trade
// total already folded into it. The two travel as a pair: the folded
// trades are in the backup, and counting them on top of a bankroll that
// already includes them would count them twice. A rolled-over bankroll
// may be negative. ok is false when the bankroll is absent or not finite.
func (b Backup) Baseline() (initial, rolledOver float64, ok bool) {
	if b.InitialBankroll == nil || journal.Finite(*b.InitialBankroll) != *b.InitialBankroll {
		return 0, 0, false
	}
	if b.RolledOverTotal != nil {
		rolledOver = journal.Finite(*b.RolledOverTotal)
	}
	return *b.InitialBankroll, rolledOver, true
}

// Settings rebuilds the full configuration a snapshot was taken from,
// starting from the defaults for any field it lacks.
func (b Backup) Settings(today string) (settings.Settings, error) {
	p, _ := b.Patch()
	p.LastRolloverDate = b.LastRolloverDate
	s, err := p.Apply(settings.Default(today))
	if err != nil {
		return s, err
	}
	if initial, rolledOver, ok := b.Baseline(); ok {
		s.InitialBankroll, s.RolledOverTotal = initial, rolledOver
	}
	return s, s.Validate()
}

func validAssets(m map[string]float64) bool {
	if len(m) == 0 {
		return false
	}
	for name, ratio := range m {
		if strings.TrimSpace(name) == "" || !(ratio > 0 && ratio <= 1) {
			return false
		}
	}
	return true
}

type rawBackup struct {
	Trades           *[]rawTrade       `json:"trades"`
	Transactions     []rawTransaction  `json:"transactions"`
	InitialBankroll  *Number           `json:"initialBankroll"`
	DailyGoal        *Number           `json:"dailyGoal"`
	GoalType         *string           `json:"goalType"`
	StopLoss         *Number           `json:"stopLoss"`
	StopWin          *Number           `json:"stopWin"`
	StopLossType     *string           `json:"stopLossType"`
	StopWinType      *string           `json:"stopWinType"`
	Assets           map[string]Number `json:"assets"`
	EntryPercentage  *Number           `json:"entryPercentage"`
	CapitalBaseType  *string           `json:"capitalBaseType"`
	LastRolloverDate *string           `json:"lastRolloverDate"`
	RolledOverTotal  *Number           `json:"rolledOverTotal"`
}

type rawTrade struct {
	ID         Number `json:"id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	Asset      string `json:"asset"`
	Category   string `json:"category"`
	Type       string `json:"type"`
	BetAmount  Number `json:"betAmount"`
	ProfitLoss Number `json:"profitLoss"`
}

func (r rawTrade) trade() journal.Trade {
	cat := r.Category
	if cat == "" {
		cat = r.Type
	}
	category := journal.Category(cat)
	if c, err := journal.ParseCategory(cat); err == nil {
		category = c
	}
	return journal.Trade{
		ID:         int64(r.ID),
		Date:       r.Date,
		Time:       r.Time,
		Asset:      r.Asset,
		Category:   category,
		BetAmount:  float64(r.BetAmount),
		ProfitLoss: float64(r.ProfitLoss),
	}
}

type rawTransaction struct {
	Timestamp   Number `json:"timestamp"`
	Type        string `json:"type"`
	Amount      Number `json:"amount"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

func (r rawTransaction) transaction() journal.CashTransaction {
	typ := journal.TxType(r.Type)
	if t, err := journal.ParseTxType(r.Type); err == nil {
		typ = t
	}
	return journal.CashTransaction{
		Timestamp:   int64(r.Timestamp),
		Type:        typ,
		Amount:      float64(r.Amount),
		Description: r.Description,
		Date:        r.Date,
	}
}

// Number decodes a JSON number or a numeric string. Anything that does
// not parse is 0.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*n = 0
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = Number(Amount(s))
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			*n = 0
			return nil
		}
		*n = Number(journal.Finite(f))
	}
	return nil
}

func (n *Number) ptr() *float64 {
	if n == nil {
		return nil
	}
	v := float64(*n)
	return &v
}

// Amount parses money the way people type it: an optional R$ prefix or %
// suffix, and either 1.234,56 or 1,234.56 grouping. When both separators
// appear the last one is the decimal point; a separator repeated on its
// own groups thousands. Unparseable input is 0.
func Amount(s string) float64 {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimSuffix(s, "%")
	s = strings.ReplaceAll(s, " ", "")

	comma, dot := strings.LastIndex(s, ","), strings.LastIndex(s, ".")
	switch {
	case comma >= 0 && dot >= 0:
		group, decimal := ".", ","
		if dot > comma {
			group, decimal = ",", "."
		}
		s = strings.ReplaceAll(s, group, "")
		s = strings.Replace(s, decimal, ".", 1)
	case comma >= 0 && strings.Count(s, ",") > 1:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ".") > 1:
		s = strings.ReplaceAll(s, ".", "")
	}
	return journal.ParseAmount(s)
}

// DecodeTrades decodes a JSON array of trades with the same leniency as
// ParseBackup.
func DecodeTrades(data []byte) ([]journal.Trade, error) {
	var raw []rawTrade
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]journal.Trade, 0, len(raw))
	for _, t := range raw {
		out = append(out, t.trade())
	}
	return out, nil
}

// DecodeTransactions decodes a JSON array of cash transactions.
func DecodeTransactions(data []byte) ([]journal.CashTransaction, error) {
	var raw []rawTransaction
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]journal.CashTransaction, 0, len(raw))
	for _, c := range raw {
		out = append(out, c.transaction())
	}
	return out, nil
}
