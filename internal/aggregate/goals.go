package aggregate

import (
	"fmt"
	"math"
	"time"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

// GoalStatus is the derived progress of one goal.
type GoalStatus struct {
	Goal             domain.Goal     `json:"goal"`
	Percent          decimal.Decimal `json:"percent"`
	Remaining        decimal.Decimal `json:"remaining"`
	MonthsRemaining  int             `json:"months_remaining"`
	SuggestedMonthly decimal.Decimal `json:"suggested_monthly"`
}

// GoalProgress computes progress towards g as of now. A month is counted as 30 days.
func GoalProgress(g domain.Goal, now time.Time) GoalStatus {
	s := GoalStatus{Goal: g, Remaining: g.TargetAmount.Sub(g.CurrentAmount)}
	if g.TargetAmount.IsPositive() {
		s.Percent = decimal.Min(g.CurrentAmount.Div(g.TargetAmount).Mul(hundred), hundred)
	}

	deadline := g.Deadline.In(now.Location())
	months := int(math.Ceil(deadline.Sub(now).Hours() / 24 / 30))
	if months < 0 {
		months = 0
	}
	s.MonthsRemaining = months
	if months > 0 {
		s.SuggestedMonthly = s.Remaining.Div(decimal.NewFromInt(int64(months)))
	}
	return s
}

// InsightLevel tags a goals insight.
type InsightLevel string

const (
	InsightWarning InsightLevel = "warning"
	InsightSuccess InsightLevel = "success"
)

type Insight struct {
	Level   InsightLevel `json:"level"`
	Message string       `json:"message"`
}

var savingsCapacityShare = decimal.RequireFromString("0.2")

// GoalsInsight checks whether reaching every goal within a year fits in 20% of the
// monthly income. It returns nil when there are no goals.
func GoalsInsight(goals []domain.Goal, monthlyIncome decimal.Decimal) *Insight {
	if len(goals) == 0 {
		return nil
	}
	remaining := decimal.Zero
	for _, g := range goals {
		remaining = remaining.Add(g.TargetAmount.Sub(g.CurrentAmount))
	}
	recommended := remaining.Div(monthsPerYear)
	capacity := monthlyIncome.Mul(savingsCapacityShare)

	if recommended.GreaterThan(capacity) {
		return &Insight{
			Level: InsightWarning,
			Message: fmt.Sprintf("Para atingir todas as metas, precisas poupar %s/mês. Considera %s (20%% do rendimento).",
				domain.FormatEUR(recommended), domain.FormatEUR(capacity)),
		}
	}
	return &Insight{
		Level:   InsightSuccess,
		Message: fmt.Sprintf("Estás no caminho certo! Poupando %s/mês, atinges as tuas metas.", domain.FormatEUR(capacity)),
	}
}
