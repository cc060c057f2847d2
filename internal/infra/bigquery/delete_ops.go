package bigquery

import (
	"context"

	"cloud.google.com/go/bigquery"
)

func (s *Storage) deleteByID(ctx context.Context, op, table, idColumn, household, id string) error {
	sql := `
		DELETE FROM ` + s.qualified(table) + `
		WHERE ` + idColumn + ` = @id AND household = @household
	`
	return s.runDMLExpectRow(ctx, op, id, sql, []bigquery.QueryParameter{
		{Name: "id", Value: id},
		{Name: "household", Value: household},
	})
}

// Delete removes one transaction.
func (s *Storage) Delete(ctx context.Context, household string, id string) error {
	return s.deleteByID(ctx, "Delete", transactionsTable, "transaction_id", household, id)
}

// DeleteBudgetItem removes one budget item.
func (s *Storage) DeleteBudgetItem(ctx context.Context, household string, id string) error {
	return s.deleteByID(ctx, "DeleteBudgetItem", budgetTable, "budget_item_id", household, id)
}

// DeleteGoal removes one goal.
func (s *Storage) DeleteGoal(ctx context.Context, household string, id string) error {
	return s.deleteByID(ctx, "DeleteGoal", goalsTable, "goal_id", household, id)
}
