package document

import (
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	printer = message.NewPrinter(language.English)

	breakTags = regexp.MustCompile(`(?i)<\s*(br|/p|/li|/div|/h[1-6]|/tr)\s*/?\s*>`)
	anyTag    = regexp.MustCompile(`<[^>]*>`)
	blankRuns = regexp.MustCompile(`[ \t]+`)
)

// FormatMoney renders an amount with thousands separators and two decimals, e.g. 12,345.60
func FormatMoney(d decimal.Decimal) string {
	f, _ := d.Round(2).Float64()
	return printer.Sprintf("%.2f", f)
}

// FormatCurrency prefixes FormatMoney with the peso sign
func FormatCurrency(d decimal.Decimal) string {
	if d.IsNegative() {
		return "-₱" + FormatMoney(d.Neg())
	}
	return "₱" + FormatMoney(d)
}

// FormatPercent renders a discount percentage without trailing zeros, e.g. 12%
func FormatPercent(d decimal.Decimal) string {
	return d.Round(2).String() + "%"
}

// FormatDate renders the document date as it is printed on the banner
func FormatDate(t time.Time) string {
	return t.Format("January 2, 2006")
}

// PlainText converts an HTML fragment to text lines
func PlainText(fragment string) []string {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}
	s := breakTags.ReplaceAllString(fragment, "\n")
	s = anyTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)

	var lines []string
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(blankRuns.ReplaceAllString(line, " "))
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func negate(d decimal.Decimal) decimal.Decimal {
	return d.Neg()
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}
