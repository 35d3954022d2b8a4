// Package view derives the combined transaction table and dashboard from
// the income and expense lists. Every function here is pure.
package view

import (
	"slices"

	"fintrack/internal/core"
)

// Table is the display-ready result of Build.
type Table struct {
	Rows   []core.Transaction `json:"rows"`
	Totals core.Totals        `json:"totals"`
	Sort   SortConfig         `json:"sort"`
	Filter Filter             `json:"filter"`
	// Empty tells consumers to render a "no results" state.
	Empty bool `json:"empty"`
}

// Union tags each record with its kind: all incomes, then all expenses.
func Union(incomes, expenses []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(incomes)+len(expenses))
	for _, tx := range incomes {
		tx.Kind = core.KindIncome
		out = append(out, tx)
	}
	for _, tx := range expenses {
		tx.Kind = core.KindExpense
		out = append(out, tx)
	}
	return out
}

// Aggregate sums both full lists.
func Aggregate(incomes, expenses []core.Transaction) core.Totals {
	return core.NewTotals(sum(incomes), sum(expenses))
}

func sum(txs []core.Transaction) core.Money {
	var total core.Money
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// Build unions, filters and sorts the rows. Totals always cover the
// unfiltered lists.
func Build(incomes, expenses []core.Transaction, sort SortConfig, filter Filter) Table {
	rows := Sort(filter.Apply(Union(incomes, expenses)), sort)
	return Table{
		Rows:   rows,
		Totals: Aggregate(incomes, expenses),
		Sort:   sort,
		Filter: filter,
		Empty:  len(rows) == 0,
	}
}

// Dashboard is the overview screen: totals, latest records and amount ranges.
type Dashboard struct {
	Totals       core.Totals        `json:"totals"`
	Recent       []core.Transaction `json:"recent"`
	IncomeRange  *core.AmountRange  `json:"incomeRange"`
	ExpenseRange *core.AmountRange  `json:"expenseRange"`
}

// DefaultRecent is the number of rows in the dashboard history.
const DefaultRecent = 3

func BuildDashboard(incomes, expenses []core.Transaction, recent int) Dashboard {
	return Dashboard{
		Totals:       Aggregate(incomes, expenses),
		Recent:       RecentHistory(incomes, expenses, recent),
		IncomeRange:  Range(incomes),
		ExpenseRange: Range(expenses),
	}
}

// RecentHistory returns the n most recently created records of either kind.
func RecentHistory(incomes, expenses []core.Transaction, n int) []core.Transaction {
	rows := Union(incomes, expenses)
	slices.SortStableFunc(rows, func(a, b core.Transaction) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	if n < 0 {
		n = 0
	}
	if len(rows) > n {
		rows = rows[:n]
	}
	return rows
}

// Range returns the smallest and largest amount, or nil for an empty list.
func Range(txs []core.Transaction) *core.AmountRange {
	if len(txs) == 0 {
		return nil
	}
	r := core.AmountRange{Min: txs[0].Amount, Max: txs[0].Amount}
	for _, tx := range txs[1:] {
		if tx.Amount.Cmp(r.Min) < 0 {
			r.Min = tx.Amount
		}
		if tx.Amount.Cmp(r.Max) > 0 {
			r.Max = tx.Amount
		}
	}
	return &r
}
