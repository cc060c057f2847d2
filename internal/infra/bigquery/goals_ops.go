package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/household-finance/internal/domain"
	"google.golang.org/api/iterator"
)

func (s *Storage) ListGoals(ctx context.Context, household string) ([]domain.Goal, error) {
	q := s.client.Query(`
		SELECT goal_id, household, name, target_amount, current_amount, deadline, category, priority, created_ts
		FROM ` + s.qualified(goalsTable) + `
		WHERE household = @household
		ORDER BY created_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "household", Value: household},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListGoals: query read: %w", err)
	}

	var out []domain.Goal
	for {
		var r GoalRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListGoals: iter next: %w", err)
		}
		g, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListGoals: %w", err)
		}
		out = append(out, g)
	}
	return out, nil
}

func (s *Storage) UpsertGoal(ctx context.Context, household string, g domain.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("UpsertGoal: %w", err)
	}
	sql := `
		MERGE ` + s.qualified(goalsTable) + ` T
		USING (SELECT @id AS goal_id, @household AS household) S
		ON T.goal_id = S.goal_id AND T.household = S.household
		WHEN MATCHED THEN UPDATE SET
			name = @name,
			target_amount = @target_amount,
			current_amount = @current_amount,
			deadline = @deadline,
			category = @category,
			priority = @priority
		WHEN NOT MATCHED THEN INSERT
			(goal_id, household, name, target_amount, current_amount, deadline, category, priority, created_ts)
			VALUES (@id, @household, @name, @target_amount, @current_amount, @deadline, @category, @priority, @created_ts)
	`
	if _, err := s.runDML(ctx, sql, []bigquery.QueryParameter{
		{Name: "id", Value: g.ID},
		{Name: "household", Value: household},
		{Name: "name", Value: g.Name},
		{Name: "target_amount", Value: g.TargetAmount.Rat()},
		{Name: "current_amount", Value: g.CurrentAmount.Rat()},
		{Name: "deadline", Value: g.Deadline},
		{Name: "category", Value: string(g.Category)},
		{Name: "priority", Value: string(g.Priority)},
		{Name: "created_ts", Value: g.CreatedAt.UTC()},
	}); err != nil {
		return fmt.Errorf("UpsertGoal: merge %s: %w", g.ID, err)
	}
	return nil
}
