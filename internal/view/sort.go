package view

import (
	"fmt"
	"slices"
	"strings"

	"fintrack/internal/core"
)

type SortKey string

const (
	SortByDate        SortKey = "date"
	SortByTitle       SortKey = "title"
	SortByDescription SortKey = "description"
	SortByAmount      SortKey = "amount"
	SortByType        SortKey = "type"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// SortConfig is the only piece of view state. It is a value: Request
// returns a new configuration instead of mutating the receiver.
type SortConfig struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders rows by date, newest first.
func DefaultSort() SortConfig {
	return SortConfig{Key: SortByDate, Direction: Desc}
}

// Request models a click on column key: the same key sorted ascending flips
// to descending, anything else selects key ascending.
func (c SortConfig) Request(key SortKey) SortConfig {
	if c.Key == key && c.Direction == Asc {
		return SortConfig{Key: key, Direction: Desc}
	}
	return SortConfig{Key: key, Direction: Asc}
}

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortByDate, SortByTitle, SortByDescription, SortByAmount, SortByType:
		return k, nil
	case "kind":
		return SortByType, nil
	default:
		return "", fmt.Errorf("unknown sort key %q", s)
	}
}

func ParseDirection(s string) (Direction, error) {
	switch d := Direction(strings.ToLower(strings.TrimSpace(s))); d {
	case Asc, Desc:
		return d, nil
	default:
		return "", fmt.Errorf("unknown sort direction %q", s)
	}
}

func compareBy(key SortKey) func(a, b core.Transaction) int {
	switch key {
	case SortByTitle:
		return func(a, b core.Transaction) int { return strings.Compare(a.Title, b.Title) }
	case SortByDescription:
		return func(a, b core.Transaction) int { return strings.Compare(a.Description, b.Description) }
	case SortByAmount:
		return func(a, b core.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case SortByType:
		return func(a, b core.Transaction) int { return strings.Compare(string(a.Kind), string(b.Kind)) }
	default:
		return func(a, b core.Transaction) int { return a.Date.Compare(b.Date.Time) }
	}
}

// Sort returns a stably sorted copy of rows. Rows with equal keys keep their
// input order in both directions.
func Sort(rows []core.Transaction, cfg SortConfig) []core.Transaction {
	out := slices.Clone(rows)
	cmp := compareBy(cfg.Key)
	if cfg.Direction == Desc {
		slices.SortStableFunc(out, func(a, b core.Transaction) int { return cmp(b, a) })
	} else {
		slices.SortStableFunc(out, cmp)
	}
	return out
}
