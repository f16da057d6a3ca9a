package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/rustyeddy/tradejournal/journal"
)

var ErrMissingColumns = errors.New("missing columns")

// Columns are the spreadsheet headers an import needs, matched without
// regard to case.
var Columns = []string{"data", "hora", "ativo", "tipo", "valor", "resultado", "lucro_prejuizo"}

// Row is one normalised spreadsheet or screenshot line.
type Row struct {
	Date          string
	Time          string
	Asset         string
	Category      string
	Amount        float64
	Outcome       string
	ProfitLoss    float64
	HasProfitLoss bool
}

// ReadCSV reads a headed CSV file into rows. Blank lines are skipped.
func ReadCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(Columns, ", "))
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	idx := map[string]int{}
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, c := range Columns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	var rows []Row
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		get := func(col string) string {
			i := idx[col]
			if i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if blank(rec) {
			continue
		}

		pl := get("lucro_prejuizo")
		rows = append(rows, Row{
			Date:          NormalizeDate(get("data")),
			Time:          NormalizeTime(get("hora")),
			Asset:         get("ativo"),
			Category:      get("tipo"),
			Amount:        Amount(get("valor")),
			Outcome:       get("resultado"),
			ProfitLoss:    Amount(pl),
			HasProfitLoss: pl != "",
		})
	}
	return rows, nil
}

func blank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// RowsToTrades converts rows to id-less trades ready for MergeTrades. A
// row without a profit/loss cell gets one derived from its outcome and
// the asset payout ratio.
func RowsToTrades(rows []Row, payout func(asset string) float64) []journal.Trade {
	out := make([]journal.Trade, 0, len(rows))
	for _, r := range rows {
		cat := journal.Category(r.Category)
		if c, err := journal.ParseCategory(r.Category); err == nil {
			cat = c
		}
		t := journal.Trade{
			Date:       r.Date,
			Time:       r.Time,
			Asset:      r.Asset,
			Category:   cat,
			BetAmount:  journal.Finite(r.Amount),
			ProfitLoss: journal.Finite(r.ProfitLoss),
		}
		if !r.HasProfitLoss {
			if o, err := journal.ParseOutcome(r.Outcome); err == nil {
				ratio := 0.0
				if payout != nil {
					ratio = payout(r.Asset)
				}
				t.ProfitLoss = journal.DeriveProfitLoss(t.BetAmount, ratio, o)
			}
		}
		out = append(out, t)
	}
	return out
}

var (
	dmyDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	hmTime  = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::\d{2})?$`)
)

// NormalizeDate turns dd/mm/yyyy into yyyy-mm-dd. Other input is returned
// unchanged.
func NormalizeDate(s string) string {
	m := dmyDate.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return m[3] + "-" + pad(m[2]) + "-" + pad(m[1])
}

// NormalizeTime pads H:MM to HH:MM and drops seconds.
func NormalizeTime(s string) string {
	m := hmTime.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return pad(m[1]) + ":" + m[2]
}

func pad(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
