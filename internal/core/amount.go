// Package core holds the domain model shared by the store, the ledger
// aggregator and the report builder.
//
// This file contains amount parsing. Amounts are decimal values in the
// configured currency; arithmetic always goes through shopspring/decimal to
// avoid floating-point drift in fund balances.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a user-supplied amount string to a decimal.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators and
// rejects empty, signed, or non-positive values. Only new entries go
// through this check; historical rows loaded from file may carry amounts
// that would fail it.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// FormatAmount renders a decimal with two fractional digits for tables and
// report cells.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}
