// Package ledger keeps one household's transactions, budget and goals in memory.
// Mutations are optimistic: the local state changes first, then the store is
// written, and a failed write reloads everything from the store.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/logger"
	"github.com/dvloznov/household-finance/internal/store"
)

// ErrPersistFailed wraps store errors after the ledger has reloaded its state.
var ErrPersistFailed = errors.New("persist failed")

// Ledger is safe for concurrent use.
type Ledger struct {
	household string
	store     store.Store

	// importMu serializes snapshot, merge and append across imports.
	importMu sync.Mutex

	mu     sync.RWMutex
	txs    []domain.Transaction
	budget []domain.BudgetItem
	goals  []domain.Goal
}

// Load reads the household's full state from st.
func Load(ctx context.Context, household string, st store.Store) (*Ledger, error) {
	l := &Ledger{household: household, store: st}
	if err := l.Reload(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *Ledger) Household() string {
	return l.household
}

// Reload replaces the in-memory state with the store's.
func (l *Ledger) Reload(ctx context.Context) error {
	txs, err := l.store.ListTransactions(ctx, l.household)
	if err != nil {
		return fmt.Errorf("Reload: transactions: %w", err)
	}
	budget, err := l.store.ListBudgetItems(ctx, l.household)
	if err != nil {
		return fmt.Errorf("Reload: budget: %w", err)
	}
	goals, err := l.store.ListGoals(ctx, l.household)
	if err != nil {
		return fmt.Errorf("Reload: goals: %w", err)
	}

	l.mu.Lock()
	l.txs, l.budget, l.goals = txs, budget, goals
	l.mu.Unlock()
	return nil
}

// Transactions returns a copy of the current transactions.
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Transaction(nil), l.txs...)
}

func (l *Ledger) Budget() []domain.BudgetItem {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.BudgetItem(nil), l.budget...)
}

func (l *Ledger) Goals() []domain.Goal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.Goal(nil), l.goals...)
}

// persist runs write and, when it fails, reloads and wraps the error.
func (l *Ledger) persist(ctx context.Context, op string, write func() error) error {
	err := write()
	if err == nil {
		return nil
	}

	log := logger.FromContext(ctx)
	log.Error().Err(err).Str("household", l.household).Str("op", op).Msg("Store write failed, reloading ledger")

	if reloadErr := l.Reload(ctx); reloadErr != nil {
		log.Error().Err(reloadErr).Str("household", l.household).Msg("Ledger reload failed")
		return fmt.Errorf("%s: %w: %w (reload: %v)", op, ErrPersistFailed, err, reloadErr)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrPersistFailed, err)
}

// AddTransaction appends one validated transaction.
func (l *Ledger) AddTransaction(ctx context.Context, tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("AddTransaction: %w", err)
	}
	l.mu.Lock()
	l.txs = append(l.txs, tx)
	l.mu.Unlock()

	return l.persist(ctx, "AddTransaction", func() error {
		return l.store.Insert(ctx, l.household, tx)
	})
}

// WithImportLock runs fn while holding the household's import lock.
func (l *Ledger) WithImportLock(ctx context.Context, fn func(ctx context.Context) error) error {
	l.importMu.Lock()
	defer l.importMu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

// AppendTransactions appends the accepted rows of an import in one batch.
func (l *Ledger) AppendTransactions(ctx context.Context, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("AppendTransactions: %w", err)
		}
	}
	l.mu.Lock()
	l.txs = append(l.txs, txs...)
	l.mu.Unlock()

	return l.persist(ctx, "AppendTransactions", func() error {
		return l.store.InsertBatch(ctx, l.household, txs)
	})
}

// UpdateTransaction replaces the transaction with the same id.
func (l *Ledger) UpdateTransaction(ctx context.Context, tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("UpdateTransaction: %w", err)
	}
	l.mu.Lock()
	i := indexTransaction(l.txs, tx.ID)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("UpdateTransaction %q: %w", tx.ID, store.ErrNotFound)
	}
	l.txs[i] = tx
	l.mu.Unlock()

	return l.persist(ctx, "UpdateTransaction", func() error {
		return l.store.Update(ctx, l.household, tx)
	})
}

func (l *Ledger) DeleteTransaction(ctx context.Context, id string) error {
	l.mu.Lock()
	i := indexTransaction(l.txs, id)
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("DeleteTransaction %q: %w", id, store.ErrNotFound)
	}
	l.txs = append(l.txs[:i:i], l.txs[i+1:]...)
	l.mu.Unlock()

	return l.persist(ctx, "DeleteTransaction", func() error {
		return l.store.Delete(ctx, l.household, id)
	})
}

// AddBudgetItem expands a recurring item into monthly copies and stores them all.
// It returns the stored items.
func (l *Ledger) AddBudgetItem(ctx context.Context, item domain.BudgetItem, recurrence int) ([]domain.BudgetItem, error) {
	items := domain.ExpandRecurring(item, recurrence, nil)
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("AddBudgetItem: %w", err)
		}
	}
	l.mu.Lock()
	l.budget = append(l.budget, items...)
	l.mu.Unlock()

	err := l.persist(ctx, "AddBudgetItem", func() error {
		return l.store.UpsertBudgetItems(ctx, l.household, items)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// ReplaceBudget makes next the full budget: items are upserted and every id
// missing from next is deleted.
func (l *Ledger) ReplaceBudget(ctx context.Context, next []domain.BudgetItem) error {
	for _, it := range next {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("ReplaceBudget: %w", err)
		}
	}
	l.mu.Lock()
	removed := domain.DiffBudget(l.budget, next)
	l.budget = append([]domain.BudgetItem(nil), next...)
	l.mu.Unlock()

	return l.persist(ctx, "ReplaceBudget", func() error {
		if err := l.store.UpsertBudgetItems(ctx, l.household, next); err != nil {
			return err
		}
		for _, id := range removed {
			if err := l.store.DeleteBudgetItem(ctx, l.household, id); err != nil && !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}
		return nil
	})
}

// UpsertGoal adds a new goal or replaces the one with the same id.
func (l *Ledger) UpsertGoal(ctx context.Context, g domain.Goal) error {
	if err := g.Validate(); err != nil {
		return fmt.Errorf("UpsertGoal: %w", err)
	}
	l.mu.Lock()
	replaced := false
	for i := range l.goals {
		if l.goals[i].ID == g.ID {
			l.goals[i] = g
			replaced = true
			break
		}
	}
	if !replaced {
		l.goals = append(l.goals, g)
	}
	l.mu.Unlock()

	return l.persist(ctx, "UpsertGoal", func() error {
		return l.store.UpsertGoal(ctx, l.household, g)
	})
}

func (l *Ledger) DeleteGoal(ctx context.Context, id string) error {
	l.mu.Lock()
	i := -1
	for j := range l.goals {
		if l.goals[j].ID == id {
			i = j
			break
		}
	}
	if i < 0 {
		l.mu.Unlock()
		return fmt.Errorf("DeleteGoal %q: %w", id, store.ErrNotFound)
	}
	l.goals = append(l.goals[:i:i], l.goals[i+1:]...)
	l.mu.Unlock()

	return l.persist(ctx, "DeleteGoal", func() error {
		return l.store.DeleteGoal(ctx, l.household, id)
	})
}

func indexTransaction(txs []domain.Transaction, id string) int {
	for i := range txs {
		if txs[i].ID == id {
			return i
		}
	}
	return -1
}
