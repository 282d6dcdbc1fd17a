package domain

import "math"

// ToCents converts a decimal currency amount to integer cents, rounding half away from zero.
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents converts integer cents back to a decimal amount.
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// CentsPtr converts an optional decimal amount.
func CentsPtr(amount *float64) *int64 {
	if amount == nil {
		return nil
	}
	c := ToCents(*amount)
	return &c
}

// AmountPtr converts optional cents to an optional decimal amount.
func AmountPtr(cents *int64) *float64 {
	if cents == nil {
		return nil
	}
	a := FromCents(*cents)
	return &a
}
