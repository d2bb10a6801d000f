package alert

import (
	"fmt"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/report"
)

const DefaultCurrencySymbol = "₹"

type Engine struct {
	symbol     string
	thresholds Thresholds
}

type Option func(*Engine)

func WithCurrencySymbol(symbol string) Option {
	return func(e *Engine) {
		if symbol != "" {
			e.symbol = symbol
		}
	}
}

func WithThresholds(th Thresholds) Option {
	return func(e *Engine) {
		e.thresholds = th
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{symbol: DefaultCurrencySymbol, thresholds: DefaultThresholds()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Thresholds() Thresholds { return e.thresholds }

// Format renders an amount with the currency symbol and two decimals.
func (e *Engine) Format(m core.Money) string {
	return e.symbol + m.Fixed()
}

// GoalProgress is the dashboard line for one budget goal. spent is the
// all-time total for the category. The savings clause needs an income.
func (e *Engine) GoalProgress(goal core.BudgetGoal, spent, income core.Money, hasIncome bool) string {
	var msg string
	state := BudgetStatus(spent, goal.BudgetLimit)
	switch state.Status {
	case StatusExceeded:
		msg = fmt.Sprintf("Yo! You totally blasted your %s budget. Chill for a bit! 😵‍💫", goal.Category)
	case StatusWarning:
		msg = fmt.Sprintf("Heads up! You're at %d%% of your %s budget. Keep slayin'! 🔥", state.Percent, goal.Category)
	default:
		msg = fmt.Sprintf("All good in %s zone. Keep grinding! 💪", goal.Category)
	}

	if hasIncome {
		if sv := SavingsProgress(goal.SavingsGoal, income, spent); sv.HasGoal {
			if sv.Met {
				msg += " Also, you smashed your savings goal! 🎉"
			} else {
				msg += fmt.Sprintf(" Save %s more to hit your goal.", e.Format(sv.Left))
			}
		}
	}

	return fmt.Sprintf("%s: Spent %s / Budget %s. %s",
		goal.Category, e.Format(spent), e.Format(goal.BudgetLimit), msg)
}

// GoalProgressLines renders GoalProgress for every goal in order.
func (e *Engine) GoalProgressLines(goals []core.BudgetGoal, expenses []core.Expense, income core.Money, hasIncome bool) []string {
	lines := make([]string, 0, len(goals))
	for _, g := range goals {
		lines = append(lines, e.GoalProgress(g, report.CategoryTotal(expenses, g.Category), income, hasIncome))
	}
	return lines
}

// BudgetAlerts checks every goal against its all-time category spend.
func (e *Engine) BudgetAlerts(goals []core.BudgetGoal, expenses []core.Expense) []string {
	var out []string
	for _, g := range goals {
		switch BudgetAlert(report.CategoryTotal(expenses, g.Category), g.BudgetLimit) {
		case LevelExceeded:
			out = append(out, fmt.Sprintf("Woaah! You just went over your %s budget. Slow down, boss! 🚨", g.Category))
		case LevelNearLimit:
			out = append(out, fmt.Sprintf("Yo, only 10%% left in your %s budget. Don't blow it all! ⚠️", g.Category))
		}
	}
	return out
}

// OverspendAlerts applies the flat thresholds to totals.
func (e *Engine) OverspendAlerts(totals report.Totals) []string {
	var out []string
	for _, f := range e.thresholds.FlatOverspend(totals) {
		switch f.Level {
		case LevelExceeded:
			out = append(out, fmt.Sprintf("Whoa! You're overspending on %s - %s already 💸", f.Category, e.Format(f.Amount)))
		case LevelNearLimit:
			out = append(out, fmt.Sprintf("Careful, %s is nearing budget at %s 👀", f.Category, e.Format(f.Amount)))
		}
	}
	return out
}

// WeeklyTopMessage names the week's biggest category, if any.
func (e *Engine) WeeklyTopMessage(totals report.Totals) (string, bool) {
	top, ok := WeeklyTop(totals)
	if !ok {
		return "", false
	}
	return fmt.Sprintf("Yo! This week, you dropped most cash on %s - %s 🤑 Keep hustlin' smart!",
		top.Name, e.Format(top.Amount)), true
}

func (e *Engine) IncomeSet(income core.Money) string {
	return fmt.Sprintf("Yo! Your monthly income is set to %s 💰", e.Format(income))
}

func (e *Engine) ExpenseAdded(x core.Expense) string {
	return fmt.Sprintf("Added %s to %s on %s 🤑", e.Format(x.Amount), x.Category, x.Date)
}

func (e *Engine) LoanAdded(l core.LoanRecord) string {
	return fmt.Sprintf("Added loan/EMI: %s %s 🏦", l.Name, e.Format(l.Amount))
}

func (e *Engine) BudgetSet(g core.BudgetGoal) string {
	goal := e.symbol + "0"
	if !g.SavingsGoal.IsZero() {
		goal = e.Format(g.SavingsGoal)
	}
	return fmt.Sprintf("Budget/Goal set for %s: %s, Savings Goal %s 🔥", g.Category, e.Format(g.BudgetLimit), goal)
}

func (e *Engine) CategoryRegistered(label string) string {
	return fmt.Sprintf("New category unlocked: %s ✨", label)
}
