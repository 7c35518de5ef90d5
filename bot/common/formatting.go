package common

import (
	"cashgame/domain/money"
)

// FormatAmount renders an amount with two decimals
func FormatAmount(a money.Amount) string {
	return a.String()
}

// FormatSigned renders an amount with an explicit sign, as used for nets
func FormatSigned(a money.Amount) string {
	if a > 0 {
		return "+" + a.String()
	}
	return a.String()
}

// Truncate shortens s to at most max runes, ending with an ellipsis when cut
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}
