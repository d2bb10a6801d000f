// Package kv defines the key-value store the ledger persists into.
//
// Values are opaque text. A missing key is reported through the ok result,
// never as an error.
package kv

import "context"

// Keys written by the ledger.
const (
	KeyExpenses      = "expenses"
	KeyLoans         = "loans"
	KeyBudgets       = "budgets"
	KeyMonthlyIncome = "monthlyIncome"
	KeyCategories    = "categories"
)

// Keys returns every key the ledger reads at load time.
func Keys() []string {
	return []string{KeyExpenses, KeyLoans, KeyBudgets, KeyMonthlyIncome, KeyCategories}
}

// Ports for outbound adapters.
type (
	Reader interface {
		Get(ctx context.Context, key string) (value string, ok bool, err error)
	}

	Writer interface {
		// Set replaces the whole value stored under key.
		Set(ctx context.Context, key, value string) error
	}

	Store interface {
		Reader
		Writer
	}
)
