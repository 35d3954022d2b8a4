package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// DateLayout is the calendar-day wire format used for transaction dates.
const DateLayout = "2006-01-02"

const maxTextLength = 200

type (
	// Kind discriminates the two transaction collections.
	Kind string

	Date struct {
		time.Time
	}

	// Transaction is a stored income or expense record.
	Transaction struct {
		ID          string    `json:"id"`
		Kind        Kind      `json:"type"`
		Title       string    `json:"title"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
		UpdatedAt   time.Time `json:"updatedAt"`
	}

	// Payload carries the user-editable fields of a transaction. Create and
	// update both take the full set; there is no partial patch.
	Payload struct {
		Title       string
		Amount      Money
		Category    string
		Description string
		Date        Date
	}
)

var (
	ErrInvalidAmount    = errors.New("amount must be a positive number")
	ErrEmptyTitle       = errors.New("title is required")
	ErrEmptyDescription = errors.New("description is required")
	ErrEmptyCategory    = errors.New("category is required")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrEmptyDate        = errors.New("date is required")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidKind      = errors.New("invalid transaction type")
)

var categories = map[Kind][]string{
	KindIncome: {
		"salary", "freelancing", "investments", "stocks",
		"bitcoin", "bank", "youtube", "other",
	},
	KindExpense: {
		"education", "groceries", "health", "subscriptions",
		"takeaways", "clothing", "travelling", "other",
	},
}

// Kinds returns both kinds in union order: incomes first.
func Kinds() []Kind {
	return []Kind{KindIncome, KindExpense}
}

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
	}
	return k, nil
}

func (k Kind) Valid() bool {
	return k == KindIncome || k == KindExpense
}

func (k Kind) String() string {
	return string(k)
}

// Label returns the capitalised name used in user-facing messages.
func (k Kind) Label() string {
	switch k {
	case KindIncome:
		return "Income"
	case KindExpense:
		return "Expense"
	default:
		return string(k)
	}
}

// Categories returns the allowed categories for the kind.
func (k Kind) Categories() []string {
	return append([]string(nil), categories[k]...)
}

// HasCategory reports whether c belongs to the kind's enumeration.
func (k Kind) HasCategory(c string) bool {
	for _, v := range categories[k] {
		if v == c {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate accepts a calendar day (2006-01-02) or an RFC 3339 timestamp, in
// which case the UTC calendar day of the timestamp is kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrEmptyDate
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	t = t.UTC()
	return NewDate(t.Year(), int(t.Month()), t.Day()), nil
}

// IsEmpty returns true if the date is zero
func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, string(b))
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Validate checks every field of the payload against the rules of kind and
// returns the first violation as a *ValidationError.
func (p Payload) Validate(kind Kind) error {
	if !kind.Valid() {
		return newValidationError("type", ErrInvalidKind)
	}
	if strings.TrimSpace(p.Title) == "" {
		return newValidationError("title", ErrEmptyTitle)
	}
	if len(p.Title) > maxTextLength {
		return &ValidationError{Field: "title", Message: fmt.Sprintf("title too long (max %d characters)", maxTextLength)}
	}
	if strings.TrimSpace(p.Category) == "" {
		return newValidationError("category", ErrEmptyCategory)
	}
	if strings.TrimSpace(p.Description) == "" {
		return newValidationError("description", ErrEmptyDescription)
	}
	if len(p.Description) > maxTextLength {
		return &ValidationError{Field: "description", Message: fmt.Sprintf("description too long (max %d characters)", maxTextLength)}
	}
	if p.Date.IsEmpty() {
		return newValidationError("date", ErrEmptyDate)
	}
	if err := p.Amount.Validate(); err != nil {
		return newValidationError("amount", err)
	}
	if !kind.HasCategory(p.Category) {
		return &ValidationError{
			Field:   "category",
			Message: fmt.Sprintf("unknown %s category %q", kind, p.Category),
			Err:     ErrUnknownCategory,
		}
	}
	return nil
}

// Apply copies the payload onto tx, replacing every mutable field.
func (p Payload) Apply(tx *Transaction) {
	tx.Title = strings.TrimSpace(p.Title)
	tx.Amount = p.Amount
	tx.Category = p.Category
	tx.Description = strings.TrimSpace(p.Description)
	tx.Date = p.Date
}

// Payload returns the mutable fields of tx.
func (t Transaction) Payload() Payload {
	return Payload{
		Title:       t.Title,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		Date:        t.Date,
	}
}
