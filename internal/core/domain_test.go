package core

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func validPayload() Payload {
	return Payload{
		Title:       "Salary",
		Amount:      MoneyFromInt(1000),
		Category:    "salary",
		Description: "monthly",
		Date:        NewDate(2024, 1, 15),
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-01-15", "2024-01-15", true},
		{"2024-01-15T23:30:00Z", "2024-01-15", true},
		{"2024-01-15T23:30:00-02:00", "2024-01-16", true},
		{"", "", false},
		{"15/01/2024", "", false},
	}
	for _, tc := range cases {
		d, err := ParseDate(tc.in)
		if tc.ok {
			if err != nil || d.String() != tc.want {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.want, d, err)
			}
			if d.Location() != time.UTC || d.Hour() != 0 {
				t.Fatalf("%q expected UTC midnight, got %v", tc.in, d.Time)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2024, 3, 9))
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `"2024-03-09"` {
		t.Fatalf("got %s", b)
	}
	var d Date
	if err := json.Unmarshal([]byte(`"2024-03-09T10:00:00Z"`), &d); err != nil {
		t.Fatal(err)
	}
	if !d.Equal(NewDate(2024, 3, 9).Time) {
		t.Fatalf("got %v", d)
	}
}

func TestPayloadValidate(t *testing.T) {
	if err := validPayload().Validate(KindIncome); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name   string
		kind   Kind
		mutate func(*Payload)
		field  string
	}{
		{"empty title", KindIncome, func(p *Payload) { p.Title = "  " }, "title"},
		{"long title", KindIncome, func(p *Payload) { p.Title = strings.Repeat("x", 201) }, "title"},
		{"empty category", KindIncome, func(p *Payload) { p.Category = "" }, "category"},
		{"empty description", KindIncome, func(p *Payload) { p.Description = "" }, "description"},
		{"zero date", KindIncome, func(p *Payload) { p.Date = Date{} }, "date"},
		{"zero amount", KindIncome, func(p *Payload) { p.Amount = Money{} }, "amount"},
		{"negative amount", KindIncome, func(p *Payload) { p.Amount = MoneyFromInt(-5) }, "amount"},
		{"expense category on income", KindIncome, func(p *Payload) { p.Category = "groceries" }, "category"},
		{"income category on expense", KindExpense, func(p *Payload) {}, "category"},
		{"bad kind", Kind("transfer"), func(p *Payload) {}, "type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := validPayload()
			tc.mutate(&p)
			err := p.Validate(tc.kind)
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %v", err)
			}
			if ve.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, ve.Field)
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected errors.Is(err, ErrValidation)")
			}
		})
	}
}

func TestPayloadValidateAmountSentinel(t *testing.T) {
	p := validPayload()
	p.Amount = Money{}
	if err := p.Validate(KindIncome); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestKindCategories(t *testing.T) {
	if !KindExpense.HasCategory("travelling") || KindExpense.HasCategory("salary") {
		t.Fatalf("unexpected expense categories")
	}
	if len(KindIncome.Categories()) != 8 || len(KindExpense.Categories()) != 8 {
		t.Fatalf("expected eight categories per kind")
	}
	if _, err := ParseKind("Expense"); err != nil {
		t.Fatalf("expected Expense to parse, got %v", err)
	}
	if _, err := ParseKind("loan"); !errors.Is(err, ErrInvalidKind) {
		t.Fatalf("expected ErrInvalidKind, got %v", err)
	}
	if KindIncome.Label() != "Income" {
		t.Fatalf("got %q", KindIncome.Label())
	}
}

func TestApplyReplacesMutableFields(t *testing.T) {
	tx := Transaction{ID: "abc", Kind: KindIncome, Title: "old"}
	p := validPayload()
	p.Title = " Bonus "
	p.Apply(&tx)
	if tx.ID != "abc" || tx.Kind != KindIncome {
		t.Fatalf("identity changed: %+v", tx)
	}
	if tx.Title != "Bonus" || tx.Category != "salary" || tx.Date.String() != "2024-01-15" {
		t.Fatalf("fields not applied: %+v", tx)
	}
}
