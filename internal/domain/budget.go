package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultRecurrenceCount is how many monthly copies a recurring budget item expands into.
const DefaultRecurrenceCount = 12

// ErrInvalidBudgetItem is returned by BudgetItem.Validate.
var ErrInvalidBudgetItem = errors.New("invalid budget item")

// BudgetItem is a planned entry for one calendar month.
type BudgetItem struct {
	ID          string          `json:"id"`
	Month       Month           `json:"month"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Type            `json:"type"`
	Category    string          `json:"category"`
	IsRecurring bool            `json:"is_recurring"`
}

// Validate checks the budget item invariants.
func (b BudgetItem) Validate() error {
	if b.Month.IsZero() {
		return fmt.Errorf("%w: missing month", ErrInvalidBudgetItem)
	}
	if strings.TrimSpace(b.Description) == "" {
		return fmt.Errorf("%w: empty description", ErrInvalidBudgetItem)
	}
	if b.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrInvalidBudgetItem, b.Amount)
	}
	if !b.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidBudgetItem, b.Type)
	}
	return nil
}

// ExpandRecurring explodes a recurring item into count consecutive monthly copies starting
// at item.Month. Each copy gets a fresh id. Non-recurring items are returned as-is.
func ExpandRecurring(item BudgetItem, count int, newID func() string) []BudgetItem {
	if newID == nil {
		newID = uuid.NewString
	}
	if item.ID == "" {
		item.ID = newID()
	}
	if !item.IsRecurring {
		return []BudgetItem{item}
	}
	if count <= 0 {
		count = DefaultRecurrenceCount
	}

	items := make([]BudgetItem, 0, count)
	for i := 0; i < count; i++ {
		copyItem := item
		copyItem.Month = item.Month.AddMonths(i)
		if i > 0 {
			copyItem.ID = newID()
		}
		items = append(items, copyItem)
	}
	return items
}

// DiffBudget returns the ids present in previous but absent from next.
func DiffBudget(previous, next []BudgetItem) []string {
	keep := make(map[string]bool, len(next))
	for _, item := range next {
		keep[item.ID] = true
	}

	var removed []string
	for _, item := range previous {
		if !keep[item.ID] {
			removed = append(removed, item.ID)
		}
	}
	return removed
}
