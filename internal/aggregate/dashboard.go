package aggregate

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/household-finance/internal/domain"
)

// RecentCount is how many transactions the dashboard lists.
const RecentCount = 10

// Dashboard is everything the overview screen shows for one month.
type Dashboard struct {
	Month                domain.Month         `json:"month"`
	Totals               Totals               `json:"totals"`
	Categories           []CategoryTotal      `json:"categories"`
	Recurring            []RecurringCharge    `json:"recurring"`
	MonthlySubscriptions decimal.Decimal      `json:"monthly_subscriptions"`
	Forecast             Forecast             `json:"forecast"`
	Plan                 Plan                 `json:"plan"`
	Goals                []GoalStatus         `json:"goals"`
	GoalsInsight         *Insight             `json:"goals_insight,omitempty"`
	Recent               []domain.Transaction `json:"recent"`
}

// BuildDashboard computes the dashboard for month from the household state.
// Recurring charges look at the whole history, the rest at month only.
func BuildDashboard(txs []domain.Transaction, budget []domain.BudgetItem, goals []domain.Goal, month domain.Month, keywords []string, now time.Time) Dashboard {
	inMonth := InMonth(txs, month)
	totals := Sum(inMonth)
	recurring := DetectRecurring(txs, keywords)

	d := Dashboard{
		Month:                month,
		Totals:               totals,
		Categories:           CategoryBreakdown(inMonth),
		Recurring:            recurring,
		MonthlySubscriptions: MonthlySubscriptionTotal(recurring),
		Forecast:             ForecastMonth(txs, month, now),
		Plan:                 PlanVsActual(budget, txs, month),
		Goals:                []GoalStatus{},
		GoalsInsight:         GoalsInsight(goals, totals.Income),
		Recent:               RecentTransactions(inMonth, RecentCount),
	}
	for _, g := range goals {
		d.Goals = append(d.Goals, GoalProgress(g, now))
	}
	if d.Categories == nil {
		d.Categories = []CategoryTotal{}
	}
	if d.Recurring == nil {
		d.Recurring = []RecurringCharge{}
	}
	if d.Recent == nil {
		d.Recent = []domain.Transaction{}
	}
	return d
}
