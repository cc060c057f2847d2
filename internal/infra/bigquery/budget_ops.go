package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/household-finance/internal/domain"
	"google.golang.org/api/iterator"
)

func (s *Storage) ListBudgetItems(ctx context.Context, household string) ([]domain.BudgetItem, error) {
	q := s.client.Query(`
		SELECT budget_item_id, household, month, description, amount, type, category, is_recurring
		FROM ` + s.qualified(budgetTable) + `
		WHERE household = @household
		ORDER BY month, budget_item_id
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "household", Value: household},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListBudgetItems: query read: %w", err)
	}

	var out []domain.BudgetItem
	for {
		var r BudgetItemRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListBudgetItems: iter next: %w", err)
		}
		item, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListBudgetItems: %w", err)
		}
		out = append(out, item)
	}
	return out, nil
}

// UpsertBudgetItems runs one MERGE per item keyed on (household, id).
func (s *Storage) UpsertBudgetItems(ctx context.Context, household string, items []domain.BudgetItem) error {
	sql := `
		MERGE ` + s.qualified(budgetTable) + ` T
		USING (SELECT @id AS budget_item_id, @household AS household) S
		ON T.budget_item_id = S.budget_item_id AND T.household = S.household
		WHEN MATCHED THEN UPDATE SET
			month = @month,
			description = @description,
			amount = @amount,
			type = @type,
			category = @category,
			is_recurring = @is_recurring
		WHEN NOT MATCHED THEN INSERT
			(budget_item_id, household, month, description, amount, type, category, is_recurring)
			VALUES (@id, @household, @month, @description, @amount, @type, @category, @is_recurring)
	`
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("UpsertBudgetItems: %w", err)
		}
		if _, err := s.runDML(ctx, sql, []bigquery.QueryParameter{
			{Name: "id", Value: item.ID},
			{Name: "household", Value: household},
			{Name: "month", Value: item.Month.String()},
			{Name: "description", Value: item.Description},
			{Name: "amount", Value: item.Amount.Rat()},
			{Name: "type", Value: string(item.Type)},
			{Name: "category", Value: item.Category},
			{Name: "is_recurring", Value: item.IsRecurring},
		}); err != nil {
			return fmt.Errorf("UpsertBudgetItems: merge %s: %w", item.ID, err)
		}
	}
	return nil
}
