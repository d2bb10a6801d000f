package services

import (
	"budgetbuddy/internal/alert"
	"budgetbuddy/internal/core"
	"budgetbuddy/internal/report"
)

// Dashboard is everything the presentation layer renders for a month.
type Dashboard struct {
	Month      core.YearMonth `json:"month"`
	Income     *core.Money    `json:"income"`
	Categories []string       `json:"categories"`
	Chart      report.Totals  `json:"chart"`
	Total      core.Money     `json:"total"`
	Goals      []string       `json:"goals"`
	Expenses   []core.Expense `json:"expenses"`
	Alerts     []alert.Notice `json:"alerts"`
}

// Dashboard builds the month view: chart series in category order, goal
// progress lines and the month's expenses sorted by date.
func (s *BudgetService) Dashboard(ym core.YearMonth) Dashboard {
	snap := s.store.Snapshot()
	overview := report.Overview(snap.Expenses, ym)

	d := Dashboard{
		Month:      ym,
		Categories: snap.Categories,
		Chart:      report.ChartSeries(snap.Categories, overview.ByCategory),
		Total:      overview.Total,
		Goals:      s.engine.GoalProgressLines(snap.Budgets, snap.Expenses, snap.Income, snap.HasIncome),
		Expenses:   report.MonthExpenses(snap.Expenses, ym),
		Alerts:     s.feed.Snapshot(),
	}
	if snap.HasIncome {
		income := snap.Income
		d.Income = &income
	}
	return d
}

// MonthExpenses returns the sorted expense table for ym.
func (s *BudgetService) MonthExpenses(ym core.YearMonth) []core.Expense {
	return report.MonthExpenses(s.store.Expenses(), ym)
}

// ChartSeries returns per-category totals for ym in category order.
func (s *BudgetService) ChartSeries(ym core.YearMonth) report.Totals {
	snap := s.store.Snapshot()
	return report.ChartSeries(snap.Categories, report.Overview(snap.Expenses, ym).ByCategory)
}

// CurrentMonth is the month containing the service clock's now.
func (s *BudgetService) CurrentMonth() core.YearMonth {
	return core.CurrentYearMonth(s.now())
}

// Status recomputes the standing alerts for ym without touching the feed:
// budget alerts over all expenses followed by the flat overspend rule on the
// month's totals.
func (s *BudgetService) Status(ym core.YearMonth) []string {
	snap := s.store.Snapshot()
	out := s.engine.BudgetAlerts(snap.Budgets, snap.Expenses)
	return append(out, s.engine.OverspendAlerts(report.MonthlyTotals(snap.Expenses, ym))...)
}
