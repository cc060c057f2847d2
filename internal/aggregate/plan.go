package aggregate

import (
	"sort"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

// Plan compares a month's budget with what actually happened.
type Plan struct {
	Month              domain.Month    `json:"month"`
	Planned            Totals          `json:"planned"`
	Actual             Totals          `json:"actual"`
	ProjectedAvailable decimal.Decimal `json:"projected_available"`
	Categories         []CategoryPlan  `json:"categories"`
}

type CategoryPlan struct {
	Category   string          `json:"category"`
	Planned    decimal.Decimal `json:"planned"`
	Actual     decimal.Decimal `json:"actual"`
	Percent    decimal.Decimal `json:"percent"`
	OverBudget bool            `json:"over_budget"`
}

// PlanVsActual builds the planning view for month.
func PlanVsActual(budget []domain.BudgetItem, txs []domain.Transaction, month domain.Month) Plan {
	var planned []domain.Transaction
	for _, b := range budget {
		if b.Month != month {
			continue
		}
		planned = append(planned, domain.Transaction{
			Date:     month.First(),
			Amount:   b.Amount,
			Type:     b.Type,
			Category: b.Category,
		})
	}
	actual := InMonth(txs, month)

	p := Plan{
		Month:   month,
		Planned: Sum(planned),
		Actual:  Sum(actual),
	}
	p.ProjectedAvailable = p.Planned.Balance

	plannedBy := expenseByCategory(planned)
	actualBy := expenseByCategory(actual)
	names := map[string]struct{}{}
	for c := range plannedBy {
		names[c] = struct{}{}
	}
	for c := range actualBy {
		names[c] = struct{}{}
	}

	for c := range names {
		row := CategoryPlan{Category: c, Planned: plannedBy[c], Actual: actualBy[c]}
		base := row.Planned
		if base.IsZero() {
			base = decimal.NewFromInt(1)
		}
		row.Percent = decimal.Min(row.Actual.Div(base).Mul(hundred), hundred)
		row.OverBudget = row.Actual.GreaterThan(row.Planned)
		p.Categories = append(p.Categories, row)
	}
	sort.Slice(p.Categories, func(i, j int) bool {
		return p.Categories[i].Category < p.Categories[j].Category
	})
	return p
}

func expenseByCategory(txs []domain.Transaction) map[string]decimal.Decimal {
	out := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.Type == domain.TypeExpense {
			out[tx.Category] = out[tx.Category].Add(tx.Amount)
		}
	}
	return out
}
