package importer

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ocrTime     = regexp.MustCompile(`\b(\d{1,2}:\d{2})\b`)
	ocrDate     = regexp.MustCompile(`\b(\d{1,2}/\d{1,2}/\d{4})\b`)
	ocrAsset    = regexp.MustCompile(`\b([A-Z]{3,}USDT)\b`)
	ocrMoney    = regexp.MustCompile(`([+-])?\s*R\$\s*(\d+(?:[.,]\d+)?)`)
	ocrWin      = regexp.MustCompile(`(?i)ganho|lucro|profit|win|positivo`)
	ocrLoss     = regexp.MustCompile(`(?i)perda|preju[ií]zo|loss|negativo`)
	fileNameDMY = regexp.MustCompile(`(\d{2})(\d{2})(\d{4})`)
)

type money struct {
	value  float64
	signed bool
	neg    bool
}

func (m money) pl() float64 {
	if m.neg {
		return -m.value
	}
	return m.value
}

// ParseOCRText extracts trades from text recognised in a broker
// screenshot, one candidate per line. A line needs a time, an asset and
// at least one R$ amount. A signed amount is the result; an unsigned one
// is the stake, with the result taken from win or loss words on the line.
// Lines without their own dd/mm/yyyy date use date.
func ParseOCRText(text string, assets map[string]float64, date string) []Row {
	names := make([]string, 0, len(assets))
	for name := range assets {
		names = append(names, name)
	}
	// Longest first, so a name containing another name wins.
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})

	var rows []Row
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			continue
		}

		tm := ocrTime.FindStringSubmatch(line)
		if tm == nil {
			continue
		}
		asset := ""
		for _, name := range names {
			if strings.Contains(line, name) {
				asset = name
				break
			}
		}
		if asset == "" {
			if m := ocrAsset.FindStringSubmatch(line); m != nil {
				asset = m[1]
			}
		}
		if asset == "" {
			continue
		}

		var values []money
		for _, m := range ocrMoney.FindAllStringSubmatch(line, -1) {
			values = append(values, money{value: Amount(m[2]), signed: m[1] != "", neg: m[1] == "-"})
		}
		amount, pl := stakeAndResult(values, assets[asset], line)
		if amount <= 0 && pl == 0 {
			continue
		}

		d := date
		if m := ocrDate.FindStringSubmatch(line); m != nil {
			d = NormalizeDate(m[1])
		}
		category := "Crypto"
		if strings.Contains(line, "Forex") {
			category = "Forex"
		}

		rows = append(rows, Row{
			Date:          d,
			Time:          NormalizeTime(tm[1]),
			Asset:         asset,
			Category:      category,
			Amount:        cents(amount),
			ProfitLoss:    cents(pl),
			HasProfitLoss: true,
		})
	}
	return rows
}

func stakeAndResult(values []money, ratio float64, line string) (amount, pl float64) {
	switch {
	case len(values) >= 2:
		for i, v := range values {
			if v.signed {
				pl = v.pl()
				for j, o := range values {
					if j != i {
						amount = o.value
						break
					}
				}
				return amount, pl
			}
		}
		sorted := append([]money(nil), values...)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].value > sorted[j].value })
		return sorted[0].value, sorted[1].value

	case len(values) == 1:
		v := values[0]
		if v.signed {
			pl = v.pl()
			if ratio > 0 {
				amount = math.Abs(pl) / ratio
			}
			return amount, pl
		}
		amount = v.value
		switch {
		case ocrWin.MatchString(line) && ratio > 0:
			pl = amount * ratio
		case ocrLoss.MatchString(line):
			pl = -amount
		}
		return amount, pl
	}
	return 0, 0
}

// DateFromName reads a ddmmyyyy date from a screenshot file name,
// falling back to fallback.
func DateFromName(name, fallback string) string {
	m := fileNameDMY.FindStringSubmatch(name)
	if m == nil {
		return fallback
	}
	return m[3] + "-" + m[2] + "-" + m[1]
}

func cents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
