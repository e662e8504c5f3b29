package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// rateAdjust corrects for the platform markup: the advertised price is 0.82
// of what actually lands. Applied identically to bookings and compensations.
var rateAdjust = decimal.RequireFromString("0.82")

// Student-name label variants, tried in order. The capture runs non-greedily
// up to the next recognized label or end of string; RE2 has no lookahead, so
// the stopping label is consumed by a non-capturing group instead.
var bookingStudentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)학생\s*[:：]\s*(.+?)\s*(?:(?:레슨\s*시간|Lesson\s*time|비용|Price)\s*[:：]|$)`),
	regexp.MustCompile(`(?i)Student\s*[:：]\s*(.+?)\s*(?:(?:Lesson\s*time|레슨\s*시간|Price|비용)\s*[:：]|$)`),
}

// Cancellation mail drops the "시간"/"time" qualifier, so the stop set is the
// bare 레슨/Lesson label.
var cancellationStudentPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)학생\s*[:：]\s*(.+?)\s*(?:(?:레슨|Lesson|비용|Price)\s*[:：]|$)`),
	regexp.MustCompile(`(?i)Student\s*[:：]\s*(.+?)\s*(?:(?:Lesson|레슨|Price|비용)\s*[:：]|$)`),
}

const amountPattern = `([0-9][0-9,]*(?:\.[0-9]{1,2})?)`

var (
	// Combined price pattern: optional 비용/Price label, currency marker
	// before or after the number. A match with neither label nor marker is
	// skipped in code, otherwise every bare number (lesson times, dates)
	// would qualify.
	labeledPriceRe = regexp.MustCompile(
		`(?i)((?:비용|Price)\s*[:：]?\s*)?(\$|USD|₩|KRW)?\s*` + amountPattern + `\s*(\$|USD|₩|KRW)?`)

	// Fallbacks, in order.
	dollarAmountRe = regexp.MustCompile(`\$\s*` + amountPattern)
	amountCodeRe   = regexp.MustCompile(`(?i)` + amountPattern + `\s*(USD|KRW)\b`)

	// Cancellation amounts accept symbol suffixes as well.
	amountAnyMarkerRe = regexp.MustCompile(`(?i)` + amountPattern + `\s*(USD|KRW|\$|₩)`)
)

// matchFirst returns the first submatch of the first pattern that matches.
func matchFirst(s string, patterns []*regexp.Regexp) (string, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(s); m != nil && strings.TrimSpace(m[1]) != "" {
			return strings.TrimSpace(m[1]), true
		}
	}
	return "", false
}

// canonicalCurrency maps a matched currency token to a code. Blank means the
// marker was absent; the booking mail omits it only for dollar prices.
func canonicalCurrency(tok string) string {
	switch strings.ToUpper(tok) {
	case "", "$", "USD":
		return "USD"
	case "₩", "KRW":
		return "KRW"
	default:
		return strings.ToUpper(tok)
	}
}

// parseAmount parses a matched numeric string (thousands commas allowed) and
// applies the markup correction.
func parseAmount(num string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.ReplaceAll(num, ",", ""))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d.Mul(rateAdjust), true
}

// findPrice locates the price in a cleaned body: combined pattern first, then
// the bare-$ and amount-code fallbacks. Returns the raw number and the
// currency token (possibly "").
func findPrice(s string) (num, currency string, ok bool) {
	for _, m := range labeledPriceRe.FindAllStringSubmatch(s, -1) {
		label, before, amount, after := m[1], m[2], m[3], m[4]
		if label == "" && before == "" && after == "" {
			continue
		}
		cur := before
		if cur == "" {
			cur = after
		}
		return amount, cur, true
	}
	if m := dollarAmountRe.FindStringSubmatch(s); m != nil {
		return m[1], "$", true
	}
	if m := amountCodeRe.FindStringSubmatch(s); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}
