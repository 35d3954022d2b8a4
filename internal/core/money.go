// Package core provides money parsing and handling utilities.
//
// This file contains the Money type used for transaction amounts and the
// parser that turns user input into it.
package core

import (
	"bytes"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an exact decimal amount. It is serialised to JSON as a bare number
// and stored as text or NUMERIC by the SQL backends.
type Money struct {
	decimal.Decimal
}

// NewMoney wraps d.
func NewMoney(d decimal.Decimal) Money {
	return Money{Decimal: d}
}

// MoneyFromInt returns a whole-unit amount.
func MoneyFromInt(v int64) Money {
	return Money{Decimal: decimal.NewFromInt(v)}
}

// ParseAmount converts user input into a strictly positive Money.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. Signs,
// empty input and anything that is not a number yield ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("0")     -> ErrInvalidAmount
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	m := Money{Decimal: d}
	if err := m.Validate(); err != nil {
		return Money{}, err
	}
	return m, nil
}

const (
	// maxScale is the number of fractional digits an amount may carry.
	maxScale = 8
	// maxIntegerDigits bounds amounts below 10^15.
	maxIntegerDigits = 15
)

// Validate ensures the amount is strictly positive and of a sane size. The
// exponent is checked before anything that would rescale the coefficient.
func (m Money) Validate() error {
	if !m.IsPositive() {
		return ErrInvalidAmount
	}
	exp := m.Exponent()
	if exp < -maxScale || exp > maxIntegerDigits {
		return ErrInvalidAmount
	}
	if m.NumDigits()+int(exp) > maxIntegerDigits {
		return ErrInvalidAmount
	}
	return nil
}

func (m Money) Add(o Money) Money {
	return Money{Decimal: m.Decimal.Add(o.Decimal)}
}

func (m Money) Sub(o Money) Money {
	return Money{Decimal: m.Decimal.Sub(o.Decimal)}
}

// Cmp compares two amounts: -1 if m < o, 0 if equal, +1 if m > o.
func (m Money) Cmp(o Money) int {
	return m.Decimal.Cmp(o.Decimal)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.Decimal.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string. Positivity is
// left to Validate so that callers can report it per field.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = Money{}
		return nil
	}
	s := strings.ReplaceAll(strings.Trim(string(b), `"`), ",", ".")
	if strings.TrimSpace(s) == "" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return ErrInvalidAmount
	}
	m.Decimal = d
	return nil
}
