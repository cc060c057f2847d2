package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// ErrInvalidGoal is returned by Goal.Validate.
var ErrInvalidGoal = errors.New("invalid goal")

// GoalCategory groups savings goals.
type GoalCategory string

const (
	GoalEmergency  GoalCategory = "emergency"
	GoalVacation   GoalCategory = "vacation"
	GoalHouse      GoalCategory = "house"
	GoalEducation  GoalCategory = "education"
	GoalRetirement GoalCategory = "retirement"
	GoalOther      GoalCategory = "other"
)

func (c GoalCategory) Valid() bool {
	switch c {
	case GoalEmergency, GoalVacation, GoalHouse, GoalEducation, GoalRetirement, GoalOther:
		return true
	}
	return false
}

// Priority ranks goals.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Goal is a savings target. CurrentAmount may exceed TargetAmount.
type Goal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"target_amount"`
	CurrentAmount decimal.Decimal `json:"current_amount"`
	Deadline      civil.Date      `json:"deadline"`
	Category      GoalCategory    `json:"category"`
	Priority      Priority        `json:"priority"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Validate checks the goal invariants.
func (g Goal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidGoal)
	}
	if g.TargetAmount.IsNegative() || g.CurrentAmount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrInvalidGoal)
	}
	if !g.Deadline.IsValid() {
		return fmt.Errorf("%w: invalid deadline %v", ErrInvalidGoal, g.Deadline)
	}
	if !g.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidGoal, g.Category)
	}
	if !g.Priority.Valid() {
		return fmt.Errorf("%w: unknown priority %q", ErrInvalidGoal, g.Priority)
	}
	return nil
}
