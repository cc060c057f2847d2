// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/store"
)

// Memory keeps rows per household. Setting Err makes every write fail with it.
type Memory struct {
	mu     sync.Mutex
	txs    map[string][]domain.Transaction
	budget map[string][]domain.BudgetItem
	goals  map[string][]domain.Goal

	Err    error
	Writes int
}

var _ store.Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{
		txs:    map[string][]domain.Transaction{},
		budget: map[string][]domain.BudgetItem{},
		goals:  map[string][]domain.Goal{},
	}
}

// Seed stores transactions without counting them as writes.
func (m *Memory) Seed(household string, txs ...domain.Transaction) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txs[household] = append(m.txs[household], txs...)
}

func (m *Memory) write() error {
	m.Writes++
	return m.Err
}

func (m *Memory) ListTransactions(_ context.Context, household string) ([]domain.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Transaction(nil), m.txs[household]...), nil
}

func (m *Memory) Insert(ctx context.Context, household string, tx domain.Transaction) error {
	return m.InsertBatch(ctx, household, []domain.Transaction{tx})
}

func (m *Memory) InsertBatch(_ context.Context, household string, txs []domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	m.txs[household] = append(m.txs[household], txs...)
	return nil
}

func (m *Memory) Update(_ context.Context, household string, tx domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.txs[household] {
		if m.txs[household][i].ID == tx.ID {
			m.txs[household][i] = tx
			return nil
		}
	}
	return fmt.Errorf("Update %q: %w", tx.ID, store.ErrNotFound)
}

func (m *Memory) Delete(_ context.Context, household string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	rows := m.txs[household]
	for i := range rows {
		if rows[i].ID == id {
			m.txs[household] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("Delete %q: %w", id, store.ErrNotFound)
}

func (m *Memory) ListBudgetItems(_ context.Context, household string) ([]domain.BudgetItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.BudgetItem(nil), m.budget[household]...), nil
}

func (m *Memory) UpsertBudgetItems(_ context.Context, household string, items []domain.BudgetItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
next:
	for _, item := range items {
		for i := range m.budget[household] {
			if m.budget[household][i].ID == item.ID {
				m.budget[household][i] = item
				continue next
			}
		}
		m.budget[household] = append(m.budget[household], item)
	}
	return nil
}

func (m *Memory) DeleteBudgetItem(_ context.Context, household string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	rows := m.budget[household]
	for i := range rows {
		if rows[i].ID == id {
			m.budget[household] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("DeleteBudgetItem %q: %w", id, store.ErrNotFound)
}

func (m *Memory) ListGoals(_ context.Context, household string) ([]domain.Goal, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Goal(nil), m.goals[household]...), nil
}

func (m *Memory) UpsertGoal(_ context.Context, household string, g domain.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	for i := range m.goals[household] {
		if m.goals[household][i].ID == g.ID {
			m.goals[household][i] = g
			return nil
		}
	}
	m.goals[household] = append(m.goals[household], g)
	return nil
}

func (m *Memory) DeleteGoal(_ context.Context, household string, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(); err != nil {
		return err
	}
	rows := m.goals[household]
	for i := range rows {
		if rows[i].ID == id {
			m.goals[household] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("DeleteGoal %q: %w", id, store.ErrNotFound)
}

func (m *Memory) Close() error { return nil }
