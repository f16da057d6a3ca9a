package journal

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// CSVHeader is the column order of the trade export.
var CSVHeader = []string{"id", "date", "time", "asset", "category", "betAmount", "profitLoss"}

// WriteCSV exports trades one row each, money with two decimals.
func WriteCSV(w io.Writer, trades []Trade) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range trades {
		err := cw.Write([]string{
			strconv.FormatInt(t.ID, 10),
			t.Date,
			t.Time,
			t.Asset,
			string(t.Category),
			f(t.BetAmount),
			f(t.ProfitLoss),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func f(x float64) string {
	return decimal.NewFromFloat(Finite(x)).StringFixed(2)
}
