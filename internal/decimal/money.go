// Package decimal normalizes locale-formatted amounts into whole pesos.
//
// CLP has no minor unit, so every conversion truncates toward zero. Rounding
// would change totals that issuers already truncated.
package decimal

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	hundred  = decimal.NewFromInt(100)
	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Normalize converts Chilean-formatted numeric text ("1.234,56") to an
// integer amount. Dots are thousands separators and the part after the last
// comma is a discarded fraction. Unparsable input yields 0.
func Normalize(text string) int64 {
	cleaned := keep(text, ",-")
	if i := strings.LastIndexByte(cleaned, ','); i >= 0 {
		cleaned = strings.ReplaceAll(cleaned[:i], ",", "")
	}
	return truncate(cleaned)
}

// NormalizeXML converts numeric text found in XML documents. Schema values
// use a decimal dot ("1190.75"); text with a comma falls back to Normalize,
// as does text with more than one dot.
func NormalizeXML(text string) int64 {
	if strings.ContainsRune(text, ',') {
		return Normalize(text)
	}
	cleaned := keep(text, ".-")
	if strings.Count(cleaned, ".") > 1 {
		return Normalize(text)
	}
	return truncate(cleaned)
}

// ParsePercent reads a percentage such as "10", "10,5", "12.5%".
// The second return value is false when no positive percentage is present.
func ParsePercent(text string) (decimal.Decimal, bool) {
	cleaned := keep(text, ".,-")
	if i := strings.LastIndexByte(cleaned, ','); i >= 0 {
		cleaned = strings.ReplaceAll(cleaned[:i], ".", "") + "." + cleaned[i+1:]
		cleaned = strings.ReplaceAll(cleaned, ",", "")
	}
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil || !d.IsPositive() {
		return decimal.Zero, false
	}
	return d, true
}

// LineAmount computes quantity * unit price
func LineAmount(quantity, unitPrice int64) int64 {
	return clamp(decimal.NewFromInt(quantity).Mul(decimal.NewFromInt(unitPrice)))
}

// ApplyDiscount reduces amount by a percentage or, if no percentage is
// given, by a fixed amount. The result is truncated and never negative.
func ApplyDiscount(amount int64, percent *decimal.Decimal, fixed *int64) int64 {
	var result int64
	switch {
	case percent != nil && percent.IsPositive():
		factor := decimal.NewFromInt(1).Sub(percent.Div(hundred))
		result = clamp(decimal.NewFromInt(amount).Mul(factor))
	case fixed != nil && *fixed > 0:
		result = amount - *fixed
	default:
		result = amount
	}
	if result < 0 {
		return 0
	}
	return result
}

// keep drops every rune that is not a digit or one of extra
func keep(text, extra string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if (r >= '0' && r <= '9') || strings.ContainsRune(extra, r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func truncate(s string) int64 {
	if s == "" {
		return 0
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0
	}
	return clamp(d)
}

func clamp(d decimal.Decimal) int64 {
	if d.GreaterThan(maxInt64) || d.LessThan(minInt64) {
		return 0
	}
	return d.Truncate(0).IntPart()
}
