package view

import (
	"encoding/json"
	"testing"
	"time"

	"fintrack/internal/core"
)

func amount(t *testing.T, s string) core.Money {
	t.Helper()
	m, err := core.ParseAmount(s)
	if err != nil {
		t.Fatalf("amount %q: %v", s, err)
	}
	return m
}

func record(t *testing.T, title, amt string, date core.Date) core.Transaction {
	return core.Transaction{
		ID:          title,
		Title:       title,
		Description: title + " note",
		Amount:      amount(t, amt),
		Date:        date,
	}
}

func titlesOf(rows []core.Transaction) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Title
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestUnionOrder(t *testing.T) {
	incomes := []core.Transaction{record(t, "i1", "1", core.NewDate(2024, 1, 1)), record(t, "i2", "1", core.NewDate(2024, 1, 1))}
	expenses := []core.Transaction{record(t, "e1", "1", core.NewDate(2024, 1, 1))}

	rows := Union(incomes, expenses)

	if got := titlesOf(rows); !equal(got, []string{"i1", "i2", "e1"}) {
		t.Fatalf("union order = %v", got)
	}
	if rows[0].Kind != core.KindIncome || rows[2].Kind != core.KindExpense {
		t.Fatalf("rows not tagged: %+v", rows)
	}
}

func TestSortByDateToggle(t *testing.T) {
	rows := []core.Transaction{
		record(t, "jan", "1", core.NewDate(2024, 1, 1)),
		record(t, "mar", "1", core.NewDate(2024, 3, 1)),
		record(t, "feb", "1", core.NewDate(2024, 2, 1)),
	}

	cfg := DefaultSort().Request(SortByDate)
	if cfg != (SortConfig{Key: SortByDate, Direction: Asc}) {
		t.Fatalf("request from default = %+v", cfg)
	}
	if got := titlesOf(Sort(rows, cfg)); !equal(got, []string{"jan", "feb", "mar"}) {
		t.Fatalf("asc = %v", got)
	}

	cfg = cfg.Request(SortByDate)
	if cfg.Direction != Desc {
		t.Fatalf("expected toggle to desc, got %+v", cfg)
	}
	if got := titlesOf(Sort(rows, cfg)); !equal(got, []string{"mar", "feb", "jan"}) {
		t.Fatalf("desc = %v", got)
	}

	if got := cfg.Request(SortByAmount); got != (SortConfig{Key: SortByAmount, Direction: Asc}) {
		t.Fatalf("new key should reset to asc, got %+v", got)
	}
	if got := cfg.Request(SortByDate); got.Direction != Asc {
		t.Fatalf("same key from desc should select asc, got %+v", got)
	}
}

func TestSortStableInBothDirections(t *testing.T) {
	day := core.NewDate(2024, 5, 5)
	rows := []core.Transaction{
		record(t, "a", "10", day),
		record(t, "b", "5", day),
		record(t, "c", "10", day),
	}

	for _, dir := range []Direction{Asc, Desc} {
		got := titlesOf(Sort(rows, SortConfig{Key: SortByDate, Direction: dir}))
		if !equal(got, []string{"a", "b", "c"}) {
			t.Fatalf("%s: equal dates must keep input order, got %v", dir, got)
		}
	}

	if got := titlesOf(Sort(rows, SortConfig{Key: SortByAmount, Direction: Desc})); !equal(got, []string{"a", "c", "b"}) {
		t.Fatalf("amount desc = %v", got)
	}
	if got := titlesOf(Sort(rows, SortConfig{Key: SortByAmount, Direction: Asc})); !equal(got, []string{"b", "a", "c"}) {
		t.Fatalf("amount asc = %v", got)
	}
}

func TestSortAmountIsNumeric(t *testing.T) {
	rows := []core.Transaction{
		record(t, "nine", "9", core.NewDate(2024, 1, 1)),
		record(t, "hundred", "100", core.NewDate(2024, 1, 1)),
		record(t, "twenty", "20.5", core.NewDate(2024, 1, 1)),
	}
	got := titlesOf(Sort(rows, SortConfig{Key: SortByAmount, Direction: Asc}))
	if !equal(got, []string{"nine", "twenty", "hundred"}) {
		t.Fatalf("got %v", got)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	rows := []core.Transaction{
		record(t, "b", "1", core.NewDate(2024, 1, 1)),
		record(t, "a", "1", core.NewDate(2024, 1, 1)),
	}
	Sort(rows, SortConfig{Key: SortByTitle, Direction: Asc})
	if rows[0].Title != "b" {
		t.Fatalf("input mutated")
	}
}

func TestBucketBoundaries(t *testing.T) {
	cases := []struct {
		amount string
		bucket Bucket
	}{
		{"99.99", BucketUnder100},
		{"100", Bucket100To500},
		{"500", Bucket100To500},
		{"500.01", Bucket500To1000},
		{"1000", Bucket500To1000},
		{"1000.01", BucketOver1000},
	}
	all := []Bucket{BucketUnder100, Bucket100To500, Bucket500To1000, BucketOver1000}
	for _, tc := range cases {
		m := amount(t, tc.amount)
		for _, b := range all {
			if got, want := b.Contains(m), b == tc.bucket; got != want {
				t.Errorf("%s in %s = %v, want %v", tc.amount, b, got, want)
			}
		}
		if !BucketAny.Contains(m) {
			t.Errorf("unset bucket should match %s", tc.amount)
		}
	}
}

func TestBuildFilterLeavesTotalsAlone(t *testing.T) {
	incomes := []core.Transaction{record(t, "Freelance", "50", core.NewDate(2024, 1, 1))}
	expenses := []core.Transaction{record(t, "Laptop", "1500", core.NewDate(2024, 1, 2))}

	for bucket, want := range map[Bucket]string{BucketUnder100: "Freelance", BucketOver1000: "Laptop"} {
		table := Build(incomes, expenses, DefaultSort(), Filter{Amount: bucket})
		if got := titlesOf(table.Rows); !equal(got, []string{want}) {
			t.Fatalf("%s rows = %v", bucket, got)
		}
		if table.Totals.Income.String() != "50" || table.Totals.Expenses.String() != "1500" || table.Totals.Balance.String() != "-1450" {
			t.Fatalf("%s totals = %+v", bucket, table.Totals)
		}
	}
}

func TestSearchMatchesTitleOrDescription(t *testing.T) {
	rows := Union(nil, []core.Transaction{
		record(t, "Groceries", "20", core.NewDate(2024, 1, 1)),
		{ID: "x", Title: "Misc", Description: "weekly GROCERY run", Amount: amount(t, "5"), Date: core.NewDate(2024, 1, 1)},
		record(t, "Cinema", "12", core.NewDate(2024, 1, 1)),
	})

	got := titlesOf(Filter{Search: "gro"}.Apply(rows))
	if !equal(got, []string{"Groceries", "Misc"}) {
		t.Fatalf("search = %v", got)
	}
}

func TestFilterTypeAndDate(t *testing.T) {
	incomes := []core.Transaction{record(t, "pay", "10", core.NewDate(2024, 2, 1))}
	expenses := []core.Transaction{
		record(t, "food", "10", core.NewDate(2024, 2, 1)),
		record(t, "rent", "10", core.NewDate(2024, 2, 2)),
	}

	table := Build(incomes, expenses, SortConfig{Key: SortByTitle, Direction: Asc}, Filter{Type: TypeExpense, Date: core.NewDate(2024, 2, 1)})
	if got := titlesOf(table.Rows); !equal(got, []string{"food"}) {
		t.Fatalf("rows = %v", got)
	}

	table = Build(incomes, expenses, DefaultSort(), Filter{Type: TypeAll})
	if len(table.Rows) != 3 {
		t.Fatalf("all should keep every row, got %d", len(table.Rows))
	}
}

func TestBuildEmptyResult(t *testing.T) {
	incomes := []core.Transaction{record(t, "pay", "10", core.NewDate(2024, 2, 1))}

	table := Build(incomes, nil, DefaultSort(), Filter{Search: "nothing matches"})
	if !table.Empty {
		t.Fatal("expected empty flag")
	}
	b, err := json.Marshal(table)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if rows, ok := decoded["rows"].([]any); !ok || len(rows) != 0 {
		t.Fatalf("rows should encode as an empty array, got %s", b)
	}
}

func TestRecentHistoryAndRange(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(title, amt string, minutes int) core.Transaction {
		tx := record(t, title, amt, core.NewDate(2024, 1, 1))
		tx.CreatedAt = base.Add(time.Duration(minutes) * time.Minute)
		return tx
	}
	incomes := []core.Transaction{mk("i-late", "300", 50), mk("i-early", "20", 10)}
	expenses := []core.Transaction{mk("e-mid", "75", 30), mk("e-first", "5", 0)}

	dash := BuildDashboard(incomes, expenses, DefaultRecent)
	if got := titlesOf(dash.Recent); !equal(got, []string{"i-late", "e-mid", "i-early"}) {
		t.Fatalf("recent = %v", got)
	}
	if dash.IncomeRange == nil || dash.IncomeRange.Min.String() != "20" || dash.IncomeRange.Max.String() != "300" {
		t.Fatalf("income range = %+v", dash.IncomeRange)
	}
	if dash.ExpenseRange.Min.String() != "5" || dash.ExpenseRange.Max.String() != "75" {
		t.Fatalf("expense range = %+v", dash.ExpenseRange)
	}

	if Range(nil) != nil {
		t.Fatal("empty list should have no range")
	}
	if got := RecentHistory(incomes, expenses, 10); len(got) != 4 {
		t.Fatalf("expected all four rows, got %d", len(got))
	}
}

func TestParsers(t *testing.T) {
	if _, err := ParseSortKey("colour"); err == nil {
		t.Error("expected unknown sort key error")
	}
	if k, err := ParseSortKey("kind"); err != nil || k != SortByType {
		t.Errorf("kind alias = %v, %v", k, err)
	}
	if _, err := ParseDirection("up"); err == nil {
		t.Error("expected unknown direction error")
	}
	if f, err := ParseTypeFilter(""); err != nil || f != TypeAll {
		t.Errorf("empty type filter = %v, %v", f, err)
	}
	if _, err := ParseTypeFilter("transfer"); err == nil {
		t.Error("expected unknown type filter error")
	}
	if b, err := ParseBucket("100 - 500"); err != nil || b != Bucket100To500 {
		t.Errorf("bucket = %v, %v", b, err)
	}
	if _, err := ParseBucket("<50"); err == nil {
		t.Error("expected unknown bucket error")
	}
}
