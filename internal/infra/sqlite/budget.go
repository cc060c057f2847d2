package sqlite

import (
	"context"
	"fmt"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

func (s *Storage) ListBudgetItems(ctx context.Context, household string) ([]domain.BudgetItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, month, description, amount, type, category, is_recurring
		FROM budget_items
		WHERE household = ?
		ORDER BY month, rowid`, household)
	if err != nil {
		return nil, fmt.Errorf("ListBudgetItems: query: %w", err)
	}
	defer rows.Close()

	var out []domain.BudgetItem
	for rows.Next() {
		var (
			item               domain.BudgetItem
			month, amount, typ string
		)
		if err := rows.Scan(&item.ID, &month, &item.Description, &amount, &typ, &item.Category, &item.IsRecurring); err != nil {
			return nil, fmt.Errorf("ListBudgetItems: scan: %w", err)
		}
		if item.Month, err = domain.ParseMonth(month); err != nil {
			return nil, fmt.Errorf("ListBudgetItems: row %s: %w", item.ID, err)
		}
		if item.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("ListBudgetItems: row %s: %w", item.ID, err)
		}
		item.Type = domain.Type(typ)
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListBudgetItems: iterate: %w", err)
	}
	return out, nil
}

func (s *Storage) UpsertBudgetItems(ctx context.Context, household string, items []domain.BudgetItem) error {
	if len(items) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("UpsertBudgetItems: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO budget_items (id, household, month, description, amount, type, category, is_recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("UpsertBudgetItems: prepare: %w", err)
	}
	defer stmt.Close()

	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("UpsertBudgetItems: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			item.ID, household, item.Month.String(), item.Description, item.Amount.String(),
			string(item.Type), item.Category, item.IsRecurring,
		); err != nil {
			return fmt.Errorf("UpsertBudgetItems: insert %s: %w", item.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("UpsertBudgetItems: commit: %w", err)
	}
	return nil
}

func (s *Storage) DeleteBudgetItem(ctx context.Context, household string, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM budget_items WHERE id = ? AND household = ?`, id, household)
	if err != nil {
		return fmt.Errorf("DeleteBudgetItem: exec: %w", err)
	}
	return checkAffected(res, "DeleteBudgetItem", id)
}
