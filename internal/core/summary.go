package core

// Totals summarises both collections.
type Totals struct {
	Income   Money `json:"totalIncome"`
	Expenses Money `json:"totalExpenses"`
	Balance  Money `json:"totalBalance"`
}

// AmountRange holds the smallest and largest amount of one kind. Both are
// zero when the kind has no records.
type AmountRange struct {
	Min Money `json:"min"`
	Max Money `json:"max"`
}

// NewTotals derives the balance from the two sums.
func NewTotals(income, expenses Money) Totals {
	return Totals{Income: income, Expenses: expenses, Balance: income.Sub(expenses)}
}
