// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing signed monetary amounts from
// user input and JSON numbers and converting between cents and decimal
// representations.
package core

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is a signed amount stored as integer cents.
type Money struct {
	Cents int64
}

// maxCents bounds amounts so that summing a realistic ledger cannot overflow.
const maxCents = (1<<63 - 1) / 1_000_000

var maxAmount = decimal.New(maxCents, -2)

// ParseAmount converts a decimal string to Money with half-away-from-zero
// rounding on the third fractional digit.
//
// It accepts an optional leading sign and both dot (12.34) and comma (12,34)
// decimal separators. Zero is a valid amount.
//
// Examples:
//
//	ParseAmount("1000")    -> 1000.00
//	ParseAmount("-150,50") -> -150.50
//	ParseAmount("12.345")  -> 12.35
//	ParseAmount("abc")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	// decimal accepts exponents; form input never carries them
	if strings.ContainsAny(s, "eE") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return fromDecimal(d)
}

// ParseNumber converts a JSON number literal to Money. Unlike ParseAmount it
// accepts exponent notation (1e3) and rejects the comma separator.
func ParseNumber(s string) (Money, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return fromDecimal(d)
}

// NewMoney returns Money for an amount in cents.
func NewMoney(cents int64) Money {
	return Money{Cents: cents}
}

func fromDecimal(d decimal.Decimal) (Money, error) {
	d = d.Round(2)
	if d.Abs().GreaterThan(maxAmount) {
		return Money{}, ErrInvalidAmount
	}
	return Money{Cents: d.Shift(2).IntPart()}, nil
}

// Decimal returns the exact decimal value of m.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Add returns m + o.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// Sub returns m - o.
func (m Money) Sub(o Money) Money {
	return Money{Cents: m.Cents - o.Cents}
}

// Type classifies the amount by sign; zero counts as income.
func (m Money) Type() TransactionType {
	if m.Cents >= 0 {
		return Income
	}
	return Expense
}

// String formats the amount with exactly two fractional digits ("849.50").
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes Money as a bare JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal().String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return ErrInvalidAmount
	}
	var (
		parsed Money
		err    error
	)
	if len(data) > 0 && data[0] == '"' {
		parsed, err = ParseAmount(string(bytes.Trim(data, `"`)))
	} else {
		parsed, err = ParseNumber(string(data))
	}
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
