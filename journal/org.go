package journal

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTradeOrg renders a Trade as an Org-mode block suitable for pasting
// into a personal journal. Structured facts go into a PROPERTIES drawer;
// the narrative headings are left for the trader to fill in.
func FormatTradeOrg(t Trade) string {
	heading := fmt.Sprintf("** Trade: %s %s %s (%s)", t.Asset, t.Date, t.Time, shortID(strconv.FormatInt(t.ID, 10)))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %d\n", t.ID))
	b.WriteString(fmt.Sprintf(":ASSET: %s\n", t.Asset))
	b.WriteString(fmt.Sprintf(":CATEGORY: %s\n", t.Category))
	b.WriteString(fmt.Sprintf(":DATE: %s\n", t.Date))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", t.Time))
	b.WriteString(fmt.Sprintf(":BET_AMOUNT: %.2f\n", t.BetAmount))
	b.WriteString(fmt.Sprintf(":PROFIT_LOSS: %.2f\n", t.ProfitLoss))
	b.WriteString(fmt.Sprintf(":OUTCOME: %s\n", t.Outcome()))
	b.WriteString(":END:\n")
	b.WriteString("\n")
	b.WriteString("*** Thesis\n- \n\n")
	b.WriteString("*** Execution\n- \n\n")
	b.WriteString("*** Review\n- \n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []Trade) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

// shortID keeps the last 8 digits, which vary between trades; the leading
// digits of a millisecond timestamp are shared by everything in a year.
func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
