// Package report derives totals from expense records. Every function is pure.
package report

import (
	"sort"
	"time"

	"budgetbuddy/internal/core"
)

// Totals maps categories to amounts, ordered by the first record seen for
// each category. Categories without records are absent.
type Totals []core.CategoryAmount

// Get returns the total for category, or zero.
func (t Totals) Get(category string) core.Money {
	for _, ca := range t {
		if ca.Name == category {
			return ca.Amount
		}
	}
	return core.Money{}
}

// Sum returns the grand total.
func (t Totals) Sum() core.Money {
	var sum core.Money
	for _, ca := range t {
		sum = sum.Add(ca.Amount)
	}
	return sum
}

func (t Totals) Map() map[string]core.Money {
	m := make(map[string]core.Money, len(t))
	for _, ca := range t {
		m[ca.Name] = ca.Amount
	}
	return m
}

func total(expenses []core.Expense, keep func(core.Expense) bool) Totals {
	idx := map[string]int{}
	var out Totals
	for _, e := range expenses {
		if !keep(e) {
			continue
		}
		i, ok := idx[e.Category]
		if !ok {
			i = len(out)
			idx[e.Category] = i
			out = append(out, core.CategoryAmount{Name: e.Category})
		}
		out[i].Amount = out[i].Amount.Add(e.Amount)
	}
	return out
}

// MonthlyTotals sums expenses dated within ym per category.
func MonthlyTotals(expenses []core.Expense, ym core.YearMonth) Totals {
	return total(expenses, func(e core.Expense) bool { return ym.Contains(e.Date) })
}

// CategoryTotal sums every expense in category, regardless of date.
func CategoryTotal(expenses []core.Expense, category string) core.Money {
	var sum core.Money
	for _, e := range expenses {
		if e.Category == category {
			sum = sum.Add(e.Amount)
		}
	}
	return sum
}

// WeekNumber returns ceil((daysSinceJan1 + weekdayOfJan1 + 1) / 7) with
// Sunday as weekday 0. This is not ISO-8601: January 1st is always week 1
// and December 31st can fall in week 53 or 54.
func WeekNumber(d core.Date) int {
	jan1 := time.Date(d.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	days := int(day.Sub(jan1).Hours() / 24)
	n := days + int(jan1.Weekday()) + 1
	return (n + 6) / 7
}

// WeeklyTotals sums expenses that fall in week of year per category.
func WeeklyTotals(expenses []core.Expense, week, year int) Totals {
	return total(expenses, func(e core.Expense) bool {
		return e.Date.Year() == year && WeekNumber(e.Date) == week
	})
}

// MonthExpenses returns the expenses dated within ym, sorted ascending by
// date. Records sharing a date keep submission order.
func MonthExpenses(expenses []core.Expense, ym core.YearMonth) []core.Expense {
	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if ym.Contains(e.Date) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date.Time)
	})
	return out
}

// ChartSeries lays totals out in the given label order, zero-filling labels
// without spend. Labels in totals but not in categories are appended.
func ChartSeries(categories []string, totals Totals) Totals {
	out := make(Totals, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, c := range categories {
		if seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, core.CategoryAmount{Name: c, Amount: totals.Get(c)})
	}
	for _, ca := range totals {
		if !seen[ca.Name] {
			out = append(out, ca)
		}
	}
	return out
}

// Overview summarises a month.
func Overview(expenses []core.Expense, ym core.YearMonth) core.MonthOverview {
	totals := MonthlyTotals(expenses, ym)
	return core.MonthOverview{
		Month:      ym,
		Total:      totals.Sum(),
		ByCategory: []core.CategoryAmount(totals),
	}
}
