package notifier

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const timeLayout = "2006-01-02 15:04:05Z07:00"

var printer = message.NewPrinter(language.English)

// money renders v as $1,234.56.
func money(v float64) string {
	if v < 0 {
		return printer.Sprintf("-$%.2f", -v)
	}

	return printer.Sprintf("$%.2f", v)
}

func quantity(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ratio(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsNaN(v):
		return "nan"
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// FormatTrade renders a trade notice as a Markdown message.
func FormatTrade(n TradeNotice) string {
	var b strings.Builder

	b.WriteString("*Trade Executed*\n")
	fmt.Fprintf(&b, "Time: `%s`\n", n.Time.Format(timeLayout))
	fmt.Fprintf(&b, "Ticker: `%s`\n", n.Ticker)
	fmt.Fprintf(&b, "Action: *%s*\n", strings.ToUpper(string(n.Action)))
	fmt.Fprintf(&b, "Quantity: `%s` at Price: `%s`\n", quantity(n.Quantity), money(n.Price))
	fmt.Fprintf(&b, "Net Shares: `%s`\n", quantity(n.NetShares))
	fmt.Fprintf(&b, "Position Value: `%s`\n", money(n.PositionValue))
	fmt.Fprintf(&b, "Cash: `%s`", money(n.CashAfter))

	return b.String()
}

// FormatSummary renders a portfolio summary as a Markdown message.
func FormatSummary(n SummaryNotice) string {
	var b strings.Builder

	b.WriteString("*Portfolio Summary*\n")
	fmt.Fprintf(&b, "Time: `%s`\n", n.Time.Format(timeLayout))
	fmt.Fprintf(&b, "Total Value: `%s`\n", money(n.TotalValue))
	fmt.Fprintf(&b, "Cash: `%s`\n", money(n.Cash))
	fmt.Fprintf(&b, "Long Exp: `%s` | Short Exp: `%s`\n", money(n.Exposure.Long), money(n.Exposure.Short))
	fmt.Fprintf(&b, "Gross: `%s` | Net: `%s`\n", money(n.Exposure.Gross), money(n.Exposure.Net))
	fmt.Fprintf(&b, "Long/Short Ratio: `%s`", ratio(n.Exposure.LongShortRatio))

	return b.String()
}
