package aggregate

import (
	"time"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

type ForecastStatus string

const (
	StatusSafe   ForecastStatus = "safe"
	StatusDanger ForecastStatus = "danger"
)

// Forecast is the end-of-month projection for a month.
type Forecast struct {
	Month              domain.Month    `json:"month"`
	AvgDailySpend      decimal.Decimal `json:"avg_daily_spend"`
	ProjectedRemaining decimal.Decimal `json:"projected_remaining"`
	ProjectedBalance   decimal.Decimal `json:"projected_balance"`
	Status             ForecastStatus  `json:"status"`
	Extrapolated       bool            `json:"extrapolated"`
}

// ForecastMonth projects the month's closing balance. Only the month containing now is
// extrapolated from the month-to-date burn rate; any other month reports its actual balance.
func ForecastMonth(txs []domain.Transaction, month domain.Month, now time.Time) Forecast {
	totals := MonthlyTotals(txs, month)
	f := Forecast{Month: month}

	if month == domain.MonthOf(now) {
		day := now.Day()
		passed := day
		if passed < 1 {
			passed = 1
		}
		f.AvgDailySpend = totals.Expense.Div(decimal.NewFromInt(int64(passed)))
		f.ProjectedRemaining = f.AvgDailySpend.Mul(decimal.NewFromInt(int64(month.Days() - day)))
		f.ProjectedBalance = totals.Income.Sub(totals.Expense.Add(f.ProjectedRemaining))
		f.Extrapolated = true
	} else {
		f.AvgDailySpend = totals.Expense.Div(decimal.NewFromInt(int64(month.Days())))
		f.ProjectedBalance = totals.Balance
	}

	f.Status = StatusDanger
	if f.ProjectedBalance.IsPositive() {
		f.Status = StatusSafe
	}
	return f
}
