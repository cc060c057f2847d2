package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
)

type GoalRow struct {
	GoalID        string     `bigquery:"goal_id"`        // REQUIRED
	Household     string     `bigquery:"household"`      // REQUIRED
	Name          string     `bigquery:"name"`           // REQUIRED
	TargetAmount  *big.Rat   `bigquery:"target_amount"`  // REQUIRED NUMERIC
	CurrentAmount *big.Rat   `bigquery:"current_amount"` // REQUIRED NUMERIC
	Deadline      civil.Date `bigquery:"deadline"`       // REQUIRED
	Category      string     `bigquery:"category"`
	Priority      string     `bigquery:"priority"`
	CreatedTS     time.Time  `bigquery:"created_ts"`
}

func (r *GoalRow) toDomain() (domain.Goal, error) {
	target, err := ratToDecimal(r.TargetAmount)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("goal %s: target: %w", r.GoalID, err)
	}
	current, err := ratToDecimal(r.CurrentAmount)
	if err != nil {
		return domain.Goal{}, fmt.Errorf("goal %s: current: %w", r.GoalID, err)
	}
	return domain.Goal{
		ID:            r.GoalID,
		Name:          r.Name,
		TargetAmount:  target,
		CurrentAmount: current,
		Deadline:      r.Deadline,
		Category:      domain.GoalCategory(r.Category),
		Priority:      domain.Priority(r.Priority),
		CreatedAt:     r.CreatedTS,
	}, nil
}
