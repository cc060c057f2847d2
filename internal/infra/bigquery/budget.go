package bigquery

import (
	"fmt"
	"math/big"

	"github.com/dvloznov/household-finance/internal/domain"
)

type BudgetItemRow struct {
	BudgetItemID string   `bigquery:"budget_item_id"` // REQUIRED
	Household    string   `bigquery:"household"`      // REQUIRED
	Month        string   `bigquery:"month"`          // REQUIRED, YYYY-MM
	Description  string   `bigquery:"description"`    // REQUIRED
	Amount       *big.Rat `bigquery:"amount"`         // REQUIRED NUMERIC
	Type         string   `bigquery:"type"`           // REQUIRED
	Category     string   `bigquery:"category"`       // REQUIRED
	IsRecurring  bool     `bigquery:"is_recurring"`
}

func (r *BudgetItemRow) toDomain() (domain.BudgetItem, error) {
	month, err := domain.ParseMonth(r.Month)
	if err != nil {
		return domain.BudgetItem{}, fmt.Errorf("budget item %s: %w", r.BudgetItemID, err)
	}
	amount, err := ratToDecimal(r.Amount)
	if err != nil {
		return domain.BudgetItem{}, fmt.Errorf("budget item %s: %w", r.BudgetItemID, err)
	}
	return domain.BudgetItem{
		ID:          r.BudgetItemID,
		Month:       month,
		Description: r.Description,
		Amount:      amount,
		Type:        domain.Type(r.Type),
		Category:    r.Category,
		IsRecurring: r.IsRecurring,
	}, nil
}
