// Package settings holds the bankroll configuration: goals, stop
// thresholds, stake sizing, asset payouts and the rollover baseline.
package settings

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
)

var ErrInvalid = errors.New("invalid setting")

// AmountType says whether a goal or threshold is a fixed amount or a
// percentage of the capital base.
type AmountType string

const (
	Currency AmountType = "currency"
	Percent  AmountType = "percent"
)

// ParseAmountType also accepts the "R$" and "%" values older data uses.
func ParseAmountType(s string) (AmountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "currency", "r$", "$", "fixed":
		return Currency, nil
	case "percent", "%", "pct":
		return Percent, nil
	}
	return "", fmt.Errorf("%w: amount type %q must be currency or percent", ErrInvalid, s)
}

// CapitalBase selects which bankroll figure percentages apply to.
type CapitalBase string

const (
	BaseCurrent CapitalBase = "current"
	BaseInitial CapitalBase = "initial"
)

func ParseCapitalBase(s string) (CapitalBase, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "current":
		return BaseCurrent, nil
	case "initial":
		return BaseInitial, nil
	}
	return "", fmt.Errorf("%w: capital base %q must be current or initial", ErrInvalid, s)
}

// Settings is the configuration singleton.
type Settings struct {
	InitialBankroll float64            `json:"initialBankroll" yaml:"initialBankroll"`
	DailyGoal       float64            `json:"dailyGoal" yaml:"dailyGoal"`
	GoalType        AmountType         `json:"goalType" yaml:"goalType"`
	StopLoss        float64            `json:"stopLoss" yaml:"stopLoss"`
	StopLossType    AmountType         `json:"stopLossType" yaml:"stopLossType"`
	StopWin         float64            `json:"stopWin" yaml:"stopWin"`
	StopWinType     AmountType         `json:"stopWinType" yaml:"stopWinType"`
	EntryPercentage float64            `json:"entryPercentage" yaml:"entryPercentage"`
	CapitalBase     CapitalBase        `json:"capitalBaseType" yaml:"capitalBaseType"`
	Assets          map[string]float64 `json:"assets" yaml:"assets"`

	// LastRolloverDate is the last day the bankroll absorbed trade results.
	LastRolloverDate string `json:"lastRolloverDate" yaml:"lastRolloverDate"`
	// RolledOverTotal is the sum of trade profit/loss already folded into
	// InitialBankroll by rollovers.
	RolledOverTotal float64 `json:"rolledOverTotal" yaml:"rolledOverTotal"`
}

// DefaultAssets is the payout seed for a fresh journal.
func DefaultAssets() map[string]float64 {
	return map[string]float64{
		"ADAUSDT": 0.86,
		"XRPUSDT": 0.90,
		"LTCUSDT": 0.88,
		"BNBUSDT": 0.92,
	}
}

// Default returns the factory settings. today becomes the rollover date
// so a fresh journal does not roll over on its first check.
func Default(today string) Settings {
	return Settings{
		InitialBankroll:  0,
		DailyGoal:        10,
		GoalType:         Percent,
		StopLoss:         50,
		StopLossType:     Currency,
		StopWin:          100,
		StopWinType:      Currency,
		EntryPercentage:  1,
		CapitalBase:      BaseCurrent,
		Assets:           DefaultAssets(),
		LastRolloverDate: today,
	}
}

// Validate checks every field.
func (s Settings) Validate() error {
	if !finite(s.InitialBankroll) || !finite(s.RolledOverTotal) {
		return fmt.Errorf("%w: bankroll figures must be finite", ErrInvalid)
	}
	if err := nonNegative("daily goal", s.DailyGoal); err != nil {
		return err
	}
	if err := nonNegative("stop loss", s.StopLoss); err != nil {
		return err
	}
	if err := nonNegative("stop win", s.StopWin); err != nil {
		return err
	}
	if !finite(s.EntryPercentage) || s.EntryPercentage < 0 || s.EntryPercentage > 100 {
		return fmt.Errorf("%w: entry percentage must be between 0 and 100", ErrInvalid)
	}
	for _, t := range []AmountType{s.GoalType, s.StopLossType, s.StopWinType} {
		if _, err := ParseAmountType(string(t)); err != nil {
			return err
		}
	}
	if _, err := ParseCapitalBase(string(s.CapitalBase)); err != nil {
		return err
	}
	for name, ratio := range s.Assets {
		if err := validateAsset(name, ratio); err != nil {
			return err
		}
	}
	return nil
}

// PayoutRatio returns the ratio for an asset, 0 when unknown.
func (s Settings) PayoutRatio(asset string) float64 {
	return s.Assets[asset]
}

// AssetNames returns the configured assets sorted by name.
func (s Settings) AssetNames() []string {
	names := make([]string, 0, len(s.Assets))
	for name := range s.Assets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s Settings) clone() Settings {
	assets := make(map[string]float64, len(s.Assets))
	for k, v := range s.Assets {
		assets[k] = v
	}
	s.Assets = assets
	return s
}

// Patch carries optional replacements. Nil fields are left alone.
type Patch struct {
	InitialBankroll  *float64
	DailyGoal        *float64
	GoalType         *AmountType
	StopLoss         *float64
	StopLossType     *AmountType
	StopWin          *float64
	StopWinType      *AmountType
	EntryPercentage  *float64
	CapitalBase      *CapitalBase
	Assets           map[string]float64
	LastRolloverDate *string
	RolledOverTotal  *float64
}

// Apply returns s with the patch applied. The result is validated as a
// whole; on error s is returned unchanged.
func (p Patch) Apply(s Settings) (Settings, error) {
	out := s.clone()
	if p.InitialBankroll != nil {
		// Rollovers may leave the bankroll negative; an entered value may not.
		if err := nonNegative("initial bankroll", *p.InitialBankroll); err != nil {
			return s, err
		}
		out.InitialBankroll = *p.InitialBankroll
	}
	if p.DailyGoal != nil {
		out.DailyGoal = *p.DailyGoal
	}
	if p.GoalType != nil {
		out.GoalType = *p.GoalType
	}
	if p.StopLoss != nil {
		out.StopLoss = *p.StopLoss
	}
	if p.StopLossType != nil {
		out.StopLossType = *p.StopLossType
	}
	if p.StopWin != nil {
		out.StopWin = *p.StopWin
	}
	if p.StopWinType != nil {
		out.StopWinType = *p.StopWinType
	}
	if p.EntryPercentage != nil {
		out.EntryPercentage = *p.EntryPercentage
	}
	if p.CapitalBase != nil {
		out.CapitalBase = *p.CapitalBase
	}
	if p.Assets != nil {
		out.Assets = make(map[string]float64, len(p.Assets))
		for k, v := range p.Assets {
			out.Assets[k] = v
		}
	}
	if p.LastRolloverDate != nil {
		out.LastRolloverDate = *p.LastRolloverDate
	}
	if p.RolledOverTotal != nil {
		out.RolledOverTotal = *p.RolledOverTotal
	}
	if err := out.Validate(); err != nil {
		return s, err
	}
	return normalize(out), nil
}

// Store guards the Settings singleton.
type Store struct {
	mu sync.RWMutex
	s  Settings
}

// NewStore validates the initial settings.
func NewStore(s Settings) (*Store, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &Store{s: normalize(s.clone())}, nil
}

// Get returns a copy; mutating it does not affect the store.
func (st *Store) Get() Settings {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.s.clone()
}

func (st *Store) Apply(p Patch) (Settings, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	next, err := p.Apply(st.s)
	if err != nil {
		return st.s.clone(), err
	}
	st.s = next
	return next.clone(), nil
}

// Fold moves the unfolded trade result into the bankroll baseline and
// stamps the rollover date. It is the only way InitialBankroll changes
// without validation of its sign.
func (st *Store) Fold(today string, newInitial, rolledOver float64) (Settings, error) {
	if !finite(newInitial) || !finite(rolledOver) {
		return st.Get(), fmt.Errorf("%w: rollover produced a non-finite bankroll", ErrInvalid)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.InitialBankroll = newInitial
	st.s.RolledOverTotal = rolledOver
	st.s.LastRolloverDate = today
	return st.s.clone(), nil
}

// Rebase replaces the bankroll baseline with one carried over from
// another journal. Like Fold, it accepts a negative bankroll.
func (st *Store) Rebase(initial, rolledOver float64) (Settings, error) {
	if !finite(initial) || !finite(rolledOver) {
		return st.Get(), fmt.Errorf("%w: baseline must be finite", ErrInvalid)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s.InitialBankroll = initial
	st.s.RolledOverTotal = rolledOver
	return st.s.clone(), nil
}

// Reset restores the factory defaults.
func (st *Store) Reset(today string) Settings {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.s = Default(today)
	return st.s.clone()
}

// SetAsset adds or replaces an asset payout ratio.
func (st *Store) SetAsset(name string, ratio float64) error {
	name = strings.TrimSpace(name)
	if err := validateAsset(name, ratio); err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.s.Assets == nil {
		st.s.Assets = map[string]float64{}
	}
	st.s.Assets[name] = ratio
	return nil
}

// RenameAsset moves an asset to a new name and ratio. The new name must
// not belong to another asset.
func (st *Store) RenameAsset(oldName, newName string, ratio float64) error {
	newName = strings.TrimSpace(newName)
	if err := validateAsset(newName, ratio); err != nil {
		return err
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.s.Assets[oldName]; !ok {
		return fmt.Errorf("%w: asset %q does not exist", ErrInvalid, oldName)
	}
	if _, taken := st.s.Assets[newName]; taken && newName != oldName {
		return fmt.Errorf("%w: asset %q already exists", ErrInvalid, newName)
	}
	delete(st.s.Assets, oldName)
	st.s.Assets[newName] = ratio
	return nil
}

func (st *Store) RemoveAsset(name string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.s.Assets[name]; !ok {
		return fmt.Errorf("%w: asset %q does not exist", ErrInvalid, name)
	}
	delete(st.s.Assets, name)
	return nil
}

func validateAsset(name string, ratio float64) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: asset name must not be empty", ErrInvalid)
	}
	if !finite(ratio) || ratio <= 0 || ratio > 1 {
		return fmt.Errorf("%w: payout ratio for %s must be in (0, 1]", ErrInvalid, name)
	}
	return nil
}

func nonNegative(field string, v float64) error {
	if !finite(v) || v < 0 {
		return fmt.Errorf("%w: %s must not be negative", ErrInvalid, field)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// normalize rewrites legacy enum spellings to their canonical form.
func normalize(s Settings) Settings {
	if t, err := ParseAmountType(string(s.GoalType)); err == nil {
		s.GoalType = t
	}
	if t, err := ParseAmountType(string(s.StopLossType)); err == nil {
		s.StopLossType = t
	}
	if t, err := ParseAmountType(string(s.StopWinType)); err == nil {
		s.StopWinType = t
	}
	if b, err := ParseCapitalBase(string(s.CapitalBase)); err == nil {
		s.CapitalBase = b
	}
	return s
}
