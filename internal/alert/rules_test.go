package alert

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"budgetbuddy/internal/core"
	"budgetbuddy/internal/report"
)

func units(u int64) core.Money { return core.Money{Cents: u * 100} }

func TestBudgetStatus(t *testing.T) {
	tests := []struct {
		name    string
		spent   core.Money
		limit   core.Money
		status  Status
		percent int
	}{
		{"well under", units(100), units(1000), StatusOK, 0},
		{"exactly seventy percent", units(700), units(1000), StatusOK, 0},
		{"just above seventy", core.Money{Cents: 70001}, units(1000), StatusWarning, 70},
		{"ninety five", units(950), units(1000), StatusWarning, 95},
		{"rounds half up", core.Money{Cents: 72500}, units(1000), StatusWarning, 73},
		{"at the limit", units(1000), units(1000), StatusWarning, 100},
		{"over", units(1050), units(1000), StatusExceeded, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BudgetStatus(tt.spent, tt.limit)
			assert.Equal(t, tt.status, got.Status)
			assert.Equal(t, tt.percent, got.Percent)
		})
	}
}

func TestBudgetAlert(t *testing.T) {
	assert.Equal(t, LevelNearLimit, BudgetAlert(units(950), units(1000)))
	assert.Equal(t, LevelExceeded, BudgetAlert(units(1050), units(1000)))
	assert.Equal(t, LevelNearLimit, BudgetAlert(units(1000), units(1000)))
	assert.Equal(t, LevelNone, BudgetAlert(units(900), units(1000)))
	assert.Equal(t, LevelNone, BudgetAlert(units(0), units(1000)))
}

func TestSavingsProgress(t *testing.T) {
	got := SavingsProgress(units(2000), units(5000), units(4000))
	assert.Equal(t, Savings{HasGoal: true, Left: units(1000)}, got)

	got = SavingsProgress(units(2000), units(5000), units(1000))
	assert.True(t, got.Met)
	assert.True(t, got.Left.IsZero())

	got = SavingsProgress(units(1000), units(5000), units(4000))
	assert.True(t, got.Met, "leftover equal to the goal meets it")

	assert.False(t, SavingsProgress(core.Money{}, units(5000), units(1)).HasGoal)
}

func TestWeeklyTop(t *testing.T) {
	_, ok := WeeklyTop(nil)
	assert.False(t, ok)

	totals := report.Totals{
		{Name: core.Food, Amount: units(300)},
		{Name: core.Transport, Amount: units(500)},
		{Name: core.Rent, Amount: units(500)},
	}
	top, ok := WeeklyTop(totals)
	assert.True(t, ok)
	assert.Equal(t, core.Transport, top.Name, "ties keep the first encountered")
	assert.Equal(t, units(500), top.Amount)
}

func TestFlatOverspend(t *testing.T) {
	totals := report.Totals{
		{Name: core.Food, Amount: units(1001)},
		{Name: core.Rent, Amount: units(1000)},
		{Name: core.Transport, Amount: units(500)},
		{Name: core.Others, Amount: core.Money{Cents: 50001}},
	}
	got := DefaultThresholds().FlatOverspend(totals)
	assert.Equal(t, []Flat{
		{Category: core.Food, Amount: units(1001), Level: LevelExceeded},
		{Category: core.Rent, Amount: units(1000), Level: LevelNearLimit},
		{Category: core.Others, Amount: core.Money{Cents: 50001}, Level: LevelNearLimit},
	}, got)

	custom := Thresholds{Over: units(100), Nearing: units(50)}
	assert.Len(t, custom.FlatOverspend(totals), 4)
}

func TestStatusStrings(t *testing.T) {
	assert.Equal(t, "warning", StatusWarning.String())
	assert.Equal(t, "near_limit", LevelNearLimit.String())
	assert.Equal(t, "none", LevelNone.String())
}

func TestRulesWithExtremeAmounts(t *testing.T) {
	const maxInt64 = int64(^uint64(0) >> 1)
	huge := core.Money{Cents: maxInt64}

	// A saturated total never wraps negative.
	spent := core.Money{Cents: core.MaxCents}
	for i := 0; i < 200000; i++ {
		spent = spent.Add(core.Money{Cents: core.MaxCents})
	}
	assert.Equal(t, huge, spent)
	assert.Equal(t, StatusExceeded, BudgetStatus(spent, units(1000)).Status)
	assert.Equal(t, LevelExceeded, BudgetAlert(spent, units(1000)))

	st := BudgetStatus(core.Money{Cents: maxInt64 / 100 * 95}, huge)
	assert.Equal(t, StatusWarning, st.Status)
	assert.Equal(t, 95, st.Percent)
	assert.Equal(t, LevelNearLimit, BudgetAlert(core.Money{Cents: maxInt64 / 100 * 95}, huge))

	sv := SavingsProgress(units(100), units(10), huge)
	assert.True(t, sv.HasGoal)
	assert.False(t, sv.Met)
	assert.Greater(t, sv.Left.Cents, int64(0))
}
