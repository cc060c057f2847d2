package aggregate

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var march = domain.Month{Year: 2024, Month: time.March}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func tx(d civil.Date, desc, amount string, typ domain.Type, category string) domain.Transaction {
	return domain.Transaction{
		ID:          desc + d.String(),
		Date:        d,
		Description: desc,
		Amount:      dec(amount),
		Type:        typ,
		Category:    category,
		Member:      domain.MemberMe,
	}
}

func mar(day int) civil.Date { return civil.Date{Year: 2024, Month: time.March, Day: day} }

func assertDec(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...interface{}) {
	t.Helper()
	assert.True(t, dec(want).Equal(got), append([]interface{}{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func sampleMonth() []domain.Transaction {
	return []domain.Transaction{
		tx(mar(1), "Salário", "2000", domain.TypeIncome, "Salário"),
		tx(mar(2), "Pingo Doce", "150.40", domain.TypeExpense, "Supermercado"),
		tx(mar(3), "Cofre férias", "200", domain.TypeSavings, "Poupança"),
		tx(mar(4), "ETF World", "300", domain.TypeInvestment, "Investimentos"),
		tx(mar(5), "Renda", "800", domain.TypeExpense, "Habitação"),
		tx(civil.Date{Year: 2024, Month: time.February, Day: 28}, "Renda", "800", domain.TypeExpense, "Habitação"),
	}
}

func TestMonthlyTotals(t *testing.T) {
	got := MonthlyTotals(sampleMonth(), march)

	assertDec(t, "2000", got.Income)
	assertDec(t, "950.40", got.Expense)
	assertDec(t, "200", got.Savings)
	assertDec(t, "300", got.Investment)
	assertDec(t, "549.60", got.Balance)
	assertDec(t, "0.25", got.SavingsRate)

	assert.True(t, got.Balance.Equal(got.Income.Sub(got.Expense).Sub(got.Savings).Sub(got.Investment)))
}

func TestSavingsRateZeroIncome(t *testing.T) {
	got := Sum([]domain.Transaction{
		tx(mar(1), "Cofre", "100", domain.TypeSavings, "Poupança"),
	})
	assertDec(t, "0", got.SavingsRate)
	assertDec(t, "-100", got.Balance)

	empty := Sum(nil)
	assertDec(t, "0", empty.SavingsRate)
	assertDec(t, "0", empty.Balance)
}

func TestCategoryBreakdown(t *testing.T) {
	txs := append(sampleMonth(),
		tx(mar(6), "Continente", "49.60", domain.TypeExpense, "Supermercado"),
		tx(mar(7), "Cinema", "200", domain.TypeExpense, "Lazer"),
	)
	got := CategoryBreakdown(txs)

	require.Len(t, got, 3)
	assert.Equal(t, "Habitação", got[0].Category)
	assertDec(t, "1600", got[0].Total)
	assert.Equal(t, "Lazer", got[1].Category, "ties sort by name")
	assert.Equal(t, "Supermercado", got[2].Category)
	assertDec(t, "200", got[2].Total)
}

func TestRecentTransactions(t *testing.T) {
	got := RecentTransactions(sampleMonth(), 2)
	require.Len(t, got, 2)
	assert.Equal(t, mar(5), got[0].Date)
	assert.Equal(t, mar(4), got[1].Date)

	assert.Len(t, RecentTransactions(sampleMonth(), 100), 6)
}

func TestDetectRecurring(t *testing.T) {
	txs := []domain.Transaction{
		tx(mar(1), "Netflix", "11.99", domain.TypeExpense, "Lazer"),
		tx(mar(2), " Ginásio Solinca ", "35", domain.TypeExpense, "Saúde"),
		tx(mar(3), "Pastelaria", "2.10", domain.TypeExpense, "Restaurantes"),
		tx(mar(4), "pastelaria", "3.40", domain.TypeExpense, "Restaurantes"),
		tx(mar(5), "Pastelaria", "2.50", domain.TypeExpense, "Restaurantes"),
		tx(mar(6), "Farmácia", "12", domain.TypeExpense, "Saúde"),
		tx(mar(7), "Netflix", "11.99", domain.TypeIncome, "Reembolso"),
	}

	got := DetectRecurring(txs, DefaultSubscriptionKeywords)

	require.Len(t, got, 3)
	assert.Equal(t, "ginásio solinca", got[0].Name)
	assert.Equal(t, 1, got[0].Count)
	assertDec(t, "420", got[0].AnnualCost)

	assert.Equal(t, "netflix", got[1].Name)
	assert.Equal(t, 1, got[1].Count, "income rows are not grouped")

	assert.Equal(t, "pastelaria", got[2].Name)
	assert.Equal(t, 3, got[2].Count)
	assertDec(t, "2.50", got[2].Amount, "amount comes from the last occurrence")
	assert.Equal(t, mar(5), got[2].LastDate)
	assertDec(t, "30", got[2].AnnualCost)

	assertDec(t, "49.49", MonthlySubscriptionTotal(got))
}

func TestDetectRecurringLastInInputOrder(t *testing.T) {
	txs := []domain.Transaction{
		tx(mar(20), "Spotify", "10.99", domain.TypeExpense, "Lazer"),
		tx(mar(1), "Spotify", "9.99", domain.TypeExpense, "Lazer"),
	}
	got := DetectRecurring(txs, nil)
	require.Len(t, got, 1)
	assertDec(t, "9.99", got[0].Amount)
}

func TestForecastCurrentMonth(t *testing.T) {
	txs := []domain.Transaction{
		tx(mar(1), "Salário", "2000", domain.TypeIncome, "Salário"),
		tx(mar(5), "Compras", "500", domain.TypeExpense, "Supermercado"),
		tx(mar(9), "Renda", "500", domain.TypeExpense, "Habitação"),
	}
	now := time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

	got := ForecastMonth(txs, march, now)

	assert.True(t, got.Extrapolated)
	assertDec(t, "100", got.AvgDailySpend)
	assertDec(t, "2100", got.ProjectedRemaining)
	assertDec(t, "-1100", got.ProjectedBalance)
	assert.Equal(t, StatusDanger, got.Status)
}

func TestForecastSafe(t *testing.T) {
	txs := []domain.Transaction{
		tx(mar(1), "Salário", "3100", domain.TypeIncome, "Salário"),
		tx(mar(1), "Café", "31", domain.TypeExpense, "Restaurantes"),
	}
	now := time.Date(2024, time.March, 1, 8, 0, 0, 0, time.UTC)

	got := ForecastMonth(txs, march, now)
	assertDec(t, "31", got.AvgDailySpend)
	assertDec(t, "930", got.ProjectedRemaining)
	assertDec(t, "2139", got.ProjectedBalance)
	assert.Equal(t, StatusSafe, got.Status)
}

func TestForecastPastMonthNotExtrapolated(t *testing.T) {
	now := time.Date(2024, time.April, 2, 0, 0, 0, 0, time.UTC)
	got := ForecastMonth(sampleMonth(), march, now)

	assert.False(t, got.Extrapolated)
	assertDec(t, "0", got.ProjectedRemaining)
	assertDec(t, "549.60", got.ProjectedBalance)
	assert.Equal(t, StatusSafe, got.Status)

	empty := ForecastMonth(nil, march, now)
	assert.Equal(t, StatusDanger, empty.Status, "a zero balance is not safe")
}

func TestPlanVsActual(t *testing.T) {
	budget := []domain.BudgetItem{
		{ID: "b1", Month: march, Description: "Ordenado", Amount: dec("2000"), Type: domain.TypeIncome, Category: "Salário"},
		{ID: "b2", Month: march, Description: "Compras", Amount: dec("100"), Type: domain.TypeExpense, Category: "Supermercado"},
		{ID: "b3", Month: march, Description: "Renda", Amount: dec("900"), Type: domain.TypeExpense, Category: "Habitação"},
		{ID: "b4", Month: march, Description: "Cofre", Amount: dec("250"), Type: domain.TypeSavings, Category: "Poupança"},
		{ID: "b5", Month: march.AddMonths(1), Description: "Renda", Amount: dec("900"), Type: domain.TypeExpense, Category: "Habitação"},
	}

	p := PlanVsActual(budget, sampleMonth(), march)

	assertDec(t, "2000", p.Planned.Income)
	assertDec(t, "1000", p.Planned.Expense)
	assertDec(t, "750", p.ProjectedAvailable)
	assertDec(t, "950.40", p.Actual.Expense)

	require.Len(t, p.Categories, 2)
	housing := p.Categories[0]
	assert.Equal(t, "Habitação", housing.Category)
	assert.False(t, housing.OverBudget)
	assert.True(t, housing.Percent.LessThan(hundred))

	groceries := p.Categories[1]
	assert.Equal(t, "Supermercado", groceries.Category)
	assert.True(t, groceries.OverBudget)
	assertDec(t, "100", groceries.Percent, "percent is capped")
}

func TestGoalProgress(t *testing.T) {
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	g := domain.Goal{
		ID:            "g1",
		Name:          "Fundo de emergência",
		TargetAmount:  dec("6000"),
		CurrentAmount: dec("1500"),
		Deadline:      civil.Date{Year: 2024, Month: time.September, Day: 1},
		Category:      domain.GoalEmergency,
		Priority:      domain.PriorityHigh,
	}

	got := GoalProgress(g, now)
	assertDec(t, "25", got.Percent)
	assertDec(t, "4500", got.Remaining)
	assert.Equal(t, 7, got.MonthsRemaining, "184 days round up to 7 months of 30 days")
	assert.True(t, got.SuggestedMonthly.Sub(dec("642.857")).Abs().LessThan(dec("0.001")))

	g.CurrentAmount = dec("7000")
	assertDec(t, "100", GoalProgress(g, now).Percent)

	g.Deadline = civil.Date{Year: 2024, Month: time.January, Day: 1}
	past := GoalProgress(g, now)
	assert.Equal(t, 0, past.MonthsRemaining)
	assertDec(t, "0", past.SuggestedMonthly)

	g.TargetAmount = decimal.Zero
	assertDec(t, "0", GoalProgress(g, now).Percent)
}

func TestGoalsInsight(t *testing.T) {
	assert.Nil(t, GoalsInsight(nil, dec("2000")))

	goals := []domain.Goal{
		{TargetAmount: dec("6000"), CurrentAmount: dec("0")},
	}
	warn := GoalsInsight(goals, dec("2000"))
	require.NotNil(t, warn)
	assert.Equal(t, InsightWarning, warn.Level)
	assert.Contains(t, warn.Message, "500,00 €")
	assert.Contains(t, warn.Message, "400,00 €")

	ok := GoalsInsight(goals, dec("3000"))
	require.NotNil(t, ok)
	assert.Equal(t, InsightSuccess, ok.Level)
	assert.Contains(t, ok.Message, "600,00 €")
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, time.March, 10, 9, 0, 0, 0, time.UTC)
	goals := []domain.Goal{{ID: "g1", Name: "Férias", TargetAmount: dec("1200"), CurrentAmount: dec("300"),
		Deadline: civil.Date{Year: 2024, Month: time.December, Day: 1}, Category: domain.GoalVacation, Priority: domain.PriorityMedium}}

	d := BuildDashboard(sampleMonth(), nil, goals, march, nil, now)

	assert.Equal(t, march, d.Month)
	assertDec(t, "2000", d.Totals.Income)
	assertDec(t, "950.40", d.Totals.Expense)
	require.Len(t, d.Recurring, 1, "rent appears in February and March")
	assert.Equal(t, "renda", d.Recurring[0].Name)
	assert.True(t, d.Forecast.Extrapolated)
	require.Len(t, d.Goals, 1)
	require.NotNil(t, d.GoalsInsight)
	assert.Len(t, d.Recent, 5, "only March rows")
	assert.Equal(t, mar(5), d.Recent[0].Date)
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(nil, nil, nil, march, nil, time.Now())
	assert.NotNil(t, d.Categories)
	assert.NotNil(t, d.Recurring)
	assert.NotNil(t, d.Recent)
	assert.NotNil(t, d.Goals)
	assert.Nil(t, d.GoalsInsight)
}
