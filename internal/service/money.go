package service

import (
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// round2 rounds half away from zero to two places
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// percentOf returns amount × rate / 100 without rounding
func percentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Div(hundred)
}

// money converts a request amount to a two-place decimal
func money(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

func toFloat(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

func nullToFloat(d decimal.NullDecimal) *float64 {
	if !d.Valid {
		return nil
	}
	f := d.Decimal.InexactFloat64()
	return &f
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatTime(*t)
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefStr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
