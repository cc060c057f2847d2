// Package store defines the persistence collaborators used by the ledger and the
// import pipeline. Implementations live under internal/infra.
package store

import (
	"context"
	"errors"

	"github.com/dvloznov/household-finance/internal/domain"
)

// ErrNotFound is returned when an update or delete targets a row that does not exist.
var ErrNotFound = errors.New("not found")

// TransactionStore persists a household's transactions.
type TransactionStore interface {
	// ListTransactions returns every transaction of the household, oldest first.
	ListTransactions(ctx context.Context, household string) ([]domain.Transaction, error)

	// Insert stores a single transaction.
	Insert(ctx context.Context, household string, tx domain.Transaction) error

	// InsertBatch stores the accepted rows of one import.
	InsertBatch(ctx context.Context, household string, txs []domain.Transaction) error

	// Update replaces the transaction with the same id.
	Update(ctx context.Context, household string, tx domain.Transaction) error

	// Delete removes the transaction with the given id.
	Delete(ctx context.Context, household string, id string) error
}

// BudgetStore persists monthly budget items.
type BudgetStore interface {
	ListBudgetItems(ctx context.Context, household string) ([]domain.BudgetItem, error)

	// UpsertBudgetItems inserts new items and overwrites existing ones by id.
	UpsertBudgetItems(ctx context.Context, household string, items []domain.BudgetItem) error

	DeleteBudgetItem(ctx context.Context, household string, id string) error
}

// GoalStore persists savings goals.
type GoalStore interface {
	ListGoals(ctx context.Context, household string) ([]domain.Goal, error)
	UpsertGoal(ctx context.Context, household string, goal domain.Goal) error
	DeleteGoal(ctx context.Context, household string, id string) error
}

// Store bundles every collaborator a backend provides.
type Store interface {
	TransactionStore
	BudgetStore
	GoalStore
	Close() error
}
