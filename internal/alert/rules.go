// Package alert turns totals and budget goals into status and alert
// messages. The rule functions are pure; Engine formats their results.
package alert

import (
	"math"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/report"
)

// Status is the goal-progress state of a category.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusExceeded
)

func (s Status) String() string {
	switch s {
	case StatusWarning:
		return "warning"
	case StatusExceeded:
		return "exceeded"
	default:
		return "ok"
	}
}

// BudgetState is the result of BudgetStatus.
type BudgetState struct {
	Status Status
	// Percent of the limit spent, rounded half up. Set for StatusWarning.
	Percent int
}

// BudgetStatus classifies spend against limit: above the limit is exceeded,
// above 70% of it is a warning.
func BudgetStatus(spent, limit core.Money) BudgetState {
	switch {
	case spent.Cents > limit.Cents:
		return BudgetState{Status: StatusExceeded}
	case aboveTenths(spent, limit, 7):
		return BudgetState{Status: StatusWarning, Percent: percent(spent, limit)}
	default:
		return BudgetState{Status: StatusOK}
	}
}

// aboveTenths reports spent > limit*tenths/10. Callers have already ruled
// out spent > limit, so exact integer math is safe for limits up to MaxCents.
func aboveTenths(spent, limit core.Money, tenths int64) bool {
	if limit.Cents <= core.MaxCents {
		return spent.Cents*10 > limit.Cents*tenths
	}
	return float64(spent.Cents)*10 > float64(limit.Cents)*float64(tenths)
}

// percent rounds spent/limit half up. spent must not exceed limit.
func percent(spent, limit core.Money) int {
	if limit.Cents <= 0 {
		return 0
	}
	if limit.Cents > core.MaxCents {
		return int(math.Round(float64(spent.Cents) * 100 / float64(limit.Cents)))
	}
	return int((spent.Cents*200 + limit.Cents) / (2 * limit.Cents))
}

// Level is the severity of a budget alert.
type Level int

const (
	LevelNone Level = iota
	LevelNearLimit
	LevelExceeded
)

func (l Level) String() string {
	switch l {
	case LevelNearLimit:
		return "near_limit"
	case LevelExceeded:
		return "exceeded"
	default:
		return "none"
	}
}

// BudgetAlert reports exceeded above the limit and near-limit above 90% of
// it. It is independent of BudgetStatus.
func BudgetAlert(spent, limit core.Money) Level {
	switch {
	case spent.Cents > limit.Cents:
		return LevelExceeded
	case aboveTenths(spent, limit, 9):
		return LevelNearLimit
	default:
		return LevelNone
	}
}

// Savings is the progress toward a savings goal.
type Savings struct {
	// HasGoal is false when the goal is zero; Met and Left are then meaningless.
	HasGoal bool
	Met     bool
	Left    core.Money
}

// SavingsProgress computes max(goal - (income - spent), 0).
func SavingsProgress(goal, income, spent core.Money) Savings {
	if goal.Cents <= 0 {
		return Savings{}
	}
	left := goal.Sub(income.Sub(spent))
	if left.Cents < 0 {
		left = core.Money{}
	}
	return Savings{HasGoal: true, Met: left.IsZero(), Left: left}
}

// WeeklyTop returns the category with the strictly greatest positive total.
// Ties keep the first in totals order.
func WeeklyTop(totals report.Totals) (core.CategoryAmount, bool) {
	var top core.CategoryAmount
	found := false
	for _, ca := range totals {
		if ca.Amount.Cents > top.Amount.Cents {
			top = ca
			found = true
		}
	}
	return top, found
}

// Thresholds are the flat overspend limits, in the same currency as totals.
type Thresholds struct {
	Over    core.Money
	Nearing core.Money
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Over:    core.Money{Cents: 1000_00},
		Nearing: core.Money{Cents: 500_00},
	}
}

// Flat is one flat-threshold alert.
type Flat struct {
	Category string
	Amount   core.Money
	Level    Level
}

// FlatOverspend flags totals above Over as exceeded and totals in
// (Nearing, Over] as near-limit, in totals order. It ignores budget goals.
func (th Thresholds) FlatOverspend(totals report.Totals) []Flat {
	var out []Flat
	for _, ca := range totals {
		switch {
		case ca.Amount.Cents > th.Over.Cents:
			out = append(out, Flat{Category: ca.Name, Amount: ca.Amount, Level: LevelExceeded})
		case ca.Amount.Cents > th.Nearing.Cents:
			out = append(out, Flat{Category: ca.Name, Amount: ca.Amount, Level: LevelNearLimit})
		}
	}
	return out
}
