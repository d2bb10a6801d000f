package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Built-in category labels.
const (
	Food          = "Food"
	Rent          = "Rent"
	Entertainment = "Entertainment"
	Transport     = "Transport"
	Loan          = "EMI/Loan"
	Others        = "Others"
	Utilities     = "Utilities"
)

// DateLayout is the day-precision layout used for dates in storage and forms.
const DateLayout = "2006-01-02"

type (
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// YearMonth identifies a calendar month, e.g. "2024-03".
	YearMonth struct {
		Year  int
		Month time.Month
	}

	Expense struct {
		Date        Date   `json:"date"`
		Amount      Money  `json:"amount"`
		Description string `json:"description"`
		Category    string `json:"category"`
	}

	// LoanRecord is a registered loan or EMI. Its name feeds the classifier.
	LoanRecord struct {
		Name   string `json:"name"`
		Amount Money  `json:"amount"`
	}

	// BudgetGoal is the spending ceiling and savings target for one category.
	BudgetGoal struct {
		Category    string `json:"category"`
		BudgetLimit Money  `json:"budgetLimit"`
		SavingsGoal Money  `json:"savingsGoal"`
	}
)

var (
	ErrInvalidDate       = errors.New("invalid date")
	ErrInvalidMonth      = errors.New("invalid month")
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrEmptyDescription  = errors.New("empty description")
	ErrEmptyCategory     = errors.New("empty category")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrDuplicateCategory = errors.New("category already exists")
	ErrEmptyName         = errors.New("empty name")
)

// ValidationError reports which input field was rejected and why.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid builds a ValidationError for field.
func Invalid(field string, err error) error {
	return &ValidationError{Field: field, Err: err}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// BuiltinCategories returns the fixed label set in display order.
func BuiltinCategories() []string {
	return []string{Food, Rent, Entertainment, Transport, Loan, Others, Utilities}
}

// IsBuiltinCategory reports whether label is one of the fixed labels.
func IsBuiltinCategory(label string) bool {
	for _, c := range BuiltinCategories() {
		if c == label {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String formats the date as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format(DateLayout)
}

// YearMonth returns the month the date falls in.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return fmt.Errorf("decode date %q: %w", s, err)
	}
	*d = parsed
	return nil
}

// ParseYearMonth parses a YYYY-MM string.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, ErrInvalidMonth
	}
	return YearMonth{Year: t.Year(), Month: t.Month()}, nil
}

// CurrentYearMonth returns the month containing now.
func CurrentYearMonth(now time.Time) YearMonth {
	return YearMonth{Year: now.Year(), Month: now.Month()}
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Contains reports whether d falls within the month.
func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && d.Month() == ym.Month
}

func (m Money) Validate() error {
	if m.Cents <= 0 || m.Cents > MaxCents {
		return ErrInvalidAmount
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Date.Validate(); err != nil {
		return Invalid("date", err)
	}
	if err := e.Amount.Validate(); err != nil {
		return Invalid("amount", err)
	}
	if strings.TrimSpace(e.Description) == "" {
		return Invalid("description", ErrEmptyDescription)
	}
	if strings.TrimSpace(e.Category) == "" {
		return Invalid("category", ErrEmptyCategory)
	}
	return nil
}

func (l LoanRecord) Validate() error {
	if strings.TrimSpace(l.Name) == "" {
		return Invalid("name", ErrEmptyName)
	}
	if err := l.Amount.Validate(); err != nil {
		return Invalid("amount", err)
	}
	return nil
}

func (b BudgetGoal) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return Invalid("category", ErrEmptyCategory)
	}
	if err := b.BudgetLimit.Validate(); err != nil {
		return Invalid("budgetLimit", err)
	}
	if b.SavingsGoal.Cents < 0 {
		return Invalid("savingsGoal", ErrInvalidAmount)
	}
	return nil
}

func (ym YearMonth) MarshalJSON() ([]byte, error) {
	return json.Marshal(ym.String())
}
