package sqlite

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

func (s *Storage) ListGoals(ctx context.Context, household string) ([]domain.Goal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, target_amount, current_amount, deadline, category, priority, created_at
		FROM goals
		WHERE household = ?
		ORDER BY created_at, rowid`, household)
	if err != nil {
		return nil, fmt.Errorf("ListGoals: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Goal
	for rows.Next() {
		var (
			g                         domain.Goal
			target, current, deadline string
			category, priority        string
			createdAt                 time.Time
		)
		if err := rows.Scan(&g.ID, &g.Name, &target, &current, &deadline, &category, &priority, &createdAt); err != nil {
			return nil, fmt.Errorf("ListGoals: scan: %w", err)
		}
		if g.TargetAmount, err = decimal.NewFromString(target); err != nil {
			return nil, fmt.Errorf("ListGoals: row %s: %w", g.ID, err)
		}
		if g.CurrentAmount, err = decimal.NewFromString(current); err != nil {
			return nil, fmt.Errorf("ListGoals: row %s: %w", g.ID, err)
		}
		if g.Deadline, err = civil.ParseDate(deadline); err != nil {
			return nil, fmt.Errorf("ListGoals: row %s: %w", g.ID, err)
		}
		g.Category = domain.GoalCategory(category)
		g.Priority = domain.Priority(priority)
		g.CreatedAt = createdAt.UTC()
		out = append(out, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListGoals: iterate: %w", err)
	}
	return out, nil
}

func (s *Storage) UpsertGoal(ctx context.Context, household string, g domain.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("UpsertGoal: %w", err)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO goals (id, household, name, target_amount, current_amount, deadline, category, priority, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID, household, g.Name, g.TargetAmount.String(), g.CurrentAmount.String(), g.Deadline.String(),
		string(g.Category), string(g.Priority), g.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("UpsertGoal: exec: %w", err)
	}
	return nil
}

func (s *Storage) DeleteGoal(ctx context.Context, household string, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ? AND household = ?`, id, household)
	if err != nil {
		return fmt.Errorf("DeleteGoal: exec: %w", err)
	}
	return checkAffected(res, "DeleteGoal", id)
}
