package normalize

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var magnitudes = map[string]int32{
	"M": 6,
	"B": 9,
	"T": 12,
}

var magnitudeWords = map[string]int32{
	"MILLION":  6,
	"MILLIONS": 6,
	"BILLION":  9,
	"BILLIONS": 9,
	"TRILLION": 12,
}

// ParseDecimal applies the monetary rules and returns the exact decimal.
//
//  1. trim, empty marker → no value
//  2. "( … )" → negative, parentheses stripped
//  3. "$", "," and a leading "+" stripped
//  4. trailing "%" → divided by 100
//  5. trailing M/B/T (any case) → ×1e6/1e9/1e12
//  6. parse as decimal, apply sign
//  7. parse failure → no value
func (e *Engine) ParseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if e.IsEmpty(s) {
		return decimal.Decimal{}, false
	}

	negative := false
	if len(s) >= 2 && strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	s = strings.NewReplacer("$", "", ",", "").Replace(s)
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "+")

	var shift int32
	if strings.HasSuffix(s, "%") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "%"))
		shift -= 2
	}

	if n := len(s); n > 1 {
		if exp, ok := magnitudes[strings.ToUpper(s[n-1:])]; ok {
			s = strings.TrimSpace(s[:n-1])
			shift += exp
		}
	}

	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}

	d = d.Shift(shift)
	if negative {
		d = d.Neg()
	}
	return d, true
}

// ParseNumber parses a monetary/numeric string. "$1.5B" → 1.5e9, "5.5%" → 0.055.
func (e *Engine) ParseNumber(s string) *float64 {
	d, ok := e.ParseDecimal(s)
	if !ok {
		return nil
	}
	f := d.InexactFloat64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil
	}
	return &f
}

// ParseInt parses like ParseNumber and keeps only integral results.
func (e *Engine) ParseInt(s string) *int64 {
	d, ok := e.ParseDecimal(s)
	if !ok || !d.IsInteger() {
		return nil
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt64)) || d.LessThan(decimal.NewFromInt(math.MinInt64)) {
		return nil
	}
	n := d.IntPart()
	return &n
}

// ParseMagnitude maps a standalone suffix to its multiplier: "B" → 1e9.
// Unknown or empty → nil.
func (e *Engine) ParseMagnitude(s string) *float64 {
	s = strings.ToUpper(strings.TrimSpace(s))
	if e.IsEmpty(s) {
		return nil
	}
	exp, ok := magnitudes[s]
	if !ok {
		exp, ok = magnitudeWords[s]
	}
	if !ok {
		return nil
	}
	f := math.Pow10(int(exp))
	return &f
}

// FormatNumber renders the canonical string form of a parsed number: the
// shortest plain decimal that parses back to exactly x.
// ParseNumber(FormatNumber(x)) == x for every finite x.
func FormatNumber(x float64) string {
	if math.IsInf(x, 0) || math.IsNaN(x) {
		return ""
	}
	return decimal.NewFromFloat(x).String()
}
