// Package money provides pure cents-denominated arithmetic for pricing and
// displaying wagers. All functions are deterministic; both the pre-placement
// payout preview and settlement call the same profit function so the two can
// never drift apart.
package money

import "strings"

// MaxParsedCents caps currency input parsing at $10,000,000.00.
const MaxParsedCents int64 = 10_000_000_00

// ProfitFromAmericanOdds returns the profit in cents for a winning bet of
// stakeCents at the given American odds.
//
// Positive odds +N: a stake of 100 profits N.
// Negative odds -N: a stake of N profits 100.
//
// Rounding is half-up to the nearest cent, computed in integer arithmetic so
// the result is reproducible for any (stake, odds) pair. Odds of 0 or a
// non-positive stake yield 0; a valid priced market never produces either.
func ProfitFromAmericanOdds(stakeCents, odds int64) int64 {
	if stakeCents <= 0 || odds == 0 {
		return 0
	}
	if odds > 0 {
		return (stakeCents*odds + 50) / 100
	}
	abs := -odds
	return (stakeCents*100 + abs/2) / abs
}

// ClampInt64 clamps n to [lo, hi].
func ClampInt64(n, lo, hi int64) int64 {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}

// ParseCurrencyToCents converts free-form currency input ("$1,234.56") to
// non-negative cents. Non-numeric, non-dot characters are stripped, at most
// two fractional digits are honored, and the result is clamped to
// [0, MaxParsedCents]. It never fails: unparseable input yields 0.
func ParseCurrencyToCents(s string) int64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}

	whole, frac, _ := strings.Cut(cleaned, ".")
	// Ignore anything beyond the first dot.
	if i := strings.IndexByte(frac, '.'); i >= 0 {
		frac = frac[:i]
	}
	frac = (frac + "00")[:2]

	var dollars int64
	for _, r := range whole {
		dollars = dollars*10 + int64(r-'0')
		if dollars > MaxParsedCents {
			return MaxParsedCents
		}
	}
	cents := dollars*100 + int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	return ClampInt64(cents, 0, MaxParsedCents)
}

// FormatUSD renders cents as a US dollar amount with comma grouping,
// e.g. 102273 -> "$1,022.73".
func FormatUSD(cents int64) string {
	neg := cents < 0
	if neg {
		cents = -cents
	}

	dollars := cents / 100
	rem := cents % 100

	digits := []byte{}
	if dollars == 0 {
		digits = append(digits, '0')
	}
	for dollars > 0 {
		digits = append(digits, byte('0'+dollars%10))
		dollars /= 10
	}

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i := len(digits) - 1; i >= 0; i-- {
		b.WriteByte(digits[i])
		if i > 0 && i%3 == 0 {
			b.WriteByte(',')
		}
	}
	b.WriteByte('.')
	b.WriteByte(byte('0' + rem/10))
	b.WriteByte(byte('0' + rem%10))
	return b.String()
}
