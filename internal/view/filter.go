package view

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// TypeFilter restricts rows to one kind.
type TypeFilter string

const (
	TypeAll     TypeFilter = "all"
	TypeIncome  TypeFilter = "income"
	TypeExpense TypeFilter = "expense"
)

// Bucket is an amount range; the zero value matches everything.
type Bucket string

const (
	BucketAny       Bucket = ""
	BucketUnder100  Bucket = "<100"
	Bucket100To500  Bucket = "100-500"
	Bucket500To1000 Bucket = "500-1000"
	BucketOver1000  Bucket = ">1000"
)

var (
	hundred     = decimal.NewFromInt(100)
	fiveHundred = decimal.NewFromInt(500)
	thousand    = decimal.NewFromInt(1000)
)

// Filter is the conjunction of four optional predicates.
type Filter struct {
	Search string     `json:"search,omitempty"`
	Type   TypeFilter `json:"type,omitempty"`
	Date   core.Date  `json:"date"`
	Amount Bucket     `json:"amount,omitempty"`
}

func ParseTypeFilter(s string) (TypeFilter, error) {
	switch t := TypeFilter(strings.ToLower(strings.TrimSpace(s))); t {
	case "", TypeAll:
		return TypeAll, nil
	case TypeIncome, TypeExpense:
		return t, nil
	default:
		return "", fmt.Errorf("unknown type filter %q", s)
	}
}

func ParseBucket(s string) (Bucket, error) {
	switch b := Bucket(strings.ReplaceAll(strings.TrimSpace(s), " ", "")); b {
	case BucketAny, BucketUnder100, Bucket100To500, Bucket500To1000, BucketOver1000:
		return b, nil
	default:
		return "", fmt.Errorf("unknown amount range %q", s)
	}
}

// Contains reports whether amount falls in the bucket. 100 and 500 belong to
// 100-500; 1000 belongs to 500-1000.
func (b Bucket) Contains(amount core.Money) bool {
	a := amount.Decimal
	switch b {
	case BucketUnder100:
		return a.LessThan(hundred)
	case Bucket100To500:
		return a.GreaterThanOrEqual(hundred) && a.LessThanOrEqual(fiveHundred)
	case Bucket500To1000:
		return a.GreaterThan(fiveHundred) && a.LessThanOrEqual(thousand)
	case BucketOver1000:
		return a.GreaterThan(thousand)
	default:
		return true
	}
}

// Match applies every set predicate.
func (f Filter) Match(tx core.Transaction) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(tx.Title), term) &&
			!strings.Contains(strings.ToLower(tx.Description), term) {
			return false
		}
	}
	if f.Type != "" && f.Type != TypeAll && string(f.Type) != string(tx.Kind) {
		return false
	}
	if !f.Date.IsEmpty() && f.Date.String() != tx.Date.String() {
		return false
	}
	return f.Amount.Contains(tx.Amount)
}

// Apply keeps the rows matching f, preserving order.
func (f Filter) Apply(rows []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(rows))
	for _, tx := range rows {
		if f.Match(tx) {
			out = append(out, tx)
		}
	}
	return out
}
