package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/report"
)

func TestGoalProgress(t *testing.T) {
	e := NewEngine()
	goal := core.BudgetGoal{Category: core.Food, BudgetLimit: units(1000), SavingsGoal: units(2000)}

	got := e.GoalProgress(goal, units(950), units(5000), true)
	assert.Equal(t, "Food: Spent ₹950.00 / Budget ₹1000.00. Heads up! You're at 95% of your Food budget. Keep slayin'! 🔥 Also, you smashed your savings goal! 🎉", got)

	got = e.GoalProgress(goal, units(4000), units(5000), true)
	assert.Contains(t, got, "Yo! You totally blasted your Food budget.")
	assert.Contains(t, got, "Save ₹1000.00 more to hit your goal.")

	got = e.GoalProgress(core.BudgetGoal{Category: core.Rent, BudgetLimit: units(100)}, units(10), units(5000), true)
	assert.Equal(t, "Rent: Spent ₹10.00 / Budget ₹100.00. All good in Rent zone. Keep grinding! 💪", got)

	got = e.GoalProgress(goal, units(10), core.Money{}, false)
	assert.NotContains(t, got, "Save", "no savings clause without income")
}

func TestGoalProgressMetGoal(t *testing.T) {
	e := NewEngine(WithCurrencySymbol("$"))
	goal := core.BudgetGoal{Category: core.Food, BudgetLimit: units(1000), SavingsGoal: units(100)}
	got := e.GoalProgress(goal, units(10), units(5000), true)
	assert.Equal(t, "Food: Spent $10.00 / Budget $1000.00. All good in Food zone. Keep grinding! 💪 Also, you smashed your savings goal! 🎉", got)
}

func TestBudgetAlerts(t *testing.T) {
	e := NewEngine()
	d := core.NewDate(2024, 3, 1)
	expenses := []core.Expense{
		{Date: d, Amount: units(950), Description: "x", Category: core.Food},
		{Date: d, Amount: units(1050), Description: "x", Category: core.Rent},
		{Date: d, Amount: units(10), Description: "x", Category: core.Transport},
	}
	goals := []core.BudgetGoal{
		{Category: core.Food, BudgetLimit: units(1000)},
		{Category: core.Rent, BudgetLimit: units(1000)},
		{Category: core.Transport, BudgetLimit: units(1000)},
	}
	assert.Equal(t, []string{
		"Yo, only 10% left in your Food budget. Don't blow it all! ⚠️",
		"Woaah! You just went over your Rent budget. Slow down, boss! 🚨",
	}, e.BudgetAlerts(goals, expenses))
}

func TestOverspendAlerts(t *testing.T) {
	e := NewEngine(WithThresholds(Thresholds{Over: units(100), Nearing: units(50)}))
	got := e.OverspendAlerts(report.Totals{
		{Name: core.Food, Amount: units(150)},
		{Name: core.Rent, Amount: units(60)},
		{Name: core.Others, Amount: units(5)},
	})
	assert.Equal(t, []string{
		"Whoa! You're overspending on Food - ₹150.00 already 💸",
		"Careful, Rent is nearing budget at ₹60.00 👀",
	}, got)
}

func TestWeeklyTopMessage(t *testing.T) {
	e := NewEngine()
	_, ok := e.WeeklyTopMessage(nil)
	assert.False(t, ok)

	msg, ok := e.WeeklyTopMessage(report.Totals{{Name: core.Transport, Amount: core.Money{Cents: 12050}}})
	assert.True(t, ok)
	assert.Equal(t, "Yo! This week, you dropped most cash on Transport - ₹120.50 🤑 Keep hustlin' smart!", msg)
}

func TestNotices(t *testing.T) {
	e := NewEngine()
	assert.Equal(t, "Yo! Your monthly income is set to ₹5000.00 💰", e.IncomeSet(units(5000)))
	assert.Equal(t, "Added ₹100.00 to Food on 2024-03-01 🤑",
		e.ExpenseAdded(core.Expense{Date: core.NewDate(2024, 3, 1), Amount: units(100), Category: core.Food}))
	assert.Equal(t, "Added loan/EMI: HomeLoan ₹5000.00 🏦", e.LoanAdded(core.LoanRecord{Name: "HomeLoan", Amount: units(5000)}))
	assert.Equal(t, "Budget/Goal set for Food: ₹1000.00, Savings Goal ₹0 🔥",
		e.BudgetSet(core.BudgetGoal{Category: core.Food, BudgetLimit: units(1000)}))
	assert.Equal(t, "Budget/Goal set for Food: ₹1000.00, Savings Goal ₹200.00 🔥",
		e.BudgetSet(core.BudgetGoal{Category: core.Food, BudgetLimit: units(1000), SavingsGoal: units(200)}))
}
