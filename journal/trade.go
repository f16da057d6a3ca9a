package journal

import (
	"github.com/shopspring/decimal"
)

// TradeInput is the raw form a trade is entered in. Numeric fields are
// strings and coerce to 0 when they do not parse.
type TradeInput struct {
	Date       string
	Time       string
	Asset      string
	Category   string
	BetAmount  string
	ProfitLoss string // only read for Copy trades
	Outcome    string
}

// BuildTrade turns form input into a Trade without an id. For every
// category except Copy the profit/loss is derived from the outcome and the
// asset payout ratio, rounded to cents; Copy trades keep the entered value.
func BuildTrade(in TradeInput, payout float64) (Trade, error) {
	cat, err := ParseCategory(in.Category)
	if err != nil {
		return Trade{}, err
	}

	t := Trade{
		Date:      in.Date,
		Time:      in.Time,
		Asset:     in.Asset,
		Category:  cat,
		BetAmount: ParseAmount(in.BetAmount),
	}

	if cat == Copy {
		t.ProfitLoss = ParseAmount(in.ProfitLoss)
	} else {
		outcome, err := ParseOutcome(in.Outcome)
		if err != nil {
			return Trade{}, err
		}
		t.ProfitLoss = DeriveProfitLoss(t.BetAmount, payout, outcome)
	}

	if err := t.Validate(); err != nil {
		return Trade{}, err
	}
	return t, nil
}

// DeriveProfitLoss applies the payout rule: a win pays bet*payout, a tie
// pays nothing and a loss forfeits the stake.
func DeriveProfitLoss(bet, payout float64, o Outcome) float64 {
	b := decimal.NewFromFloat(Finite(bet))
	switch o {
	case Positive:
		return b.Mul(decimal.NewFromFloat(Finite(payout))).Round(2).InexactFloat64()
	case Negative:
		return b.Neg().Round(2).InexactFloat64()
	}
	return 0
}

// InputOf converts a stored trade back to form input, inferring the
// outcome from the sign. Used to edit and duplicate.
func InputOf(t Trade) TradeInput {
	return TradeInput{
		Date:       t.Date,
		Time:       t.Time,
		Asset:      t.Asset,
		Category:   string(t.Category),
		BetAmount:  decimal.NewFromFloat(t.BetAmount).String(),
		ProfitLoss: decimal.NewFromFloat(t.ProfitLoss).String(),
		Outcome:    string(t.Outcome()),
	}
}
