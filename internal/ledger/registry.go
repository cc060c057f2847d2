package ledger

import (
	"context"
	"sync"

	"github.com/dvloznov/household-finance/internal/store"
)

// Registry lazily loads one Ledger per household.
type Registry struct {
	store store.Store

	mu      sync.Mutex
	ledgers map[string]*Ledger
}

func NewRegistry(st store.Store) *Registry {
	return &Registry{store: st, ledgers: make(map[string]*Ledger)}
}

// Get returns the household's ledger, loading it on first use. A failed load is
// not cached so the next call retries.
func (r *Registry) Get(ctx context.Context, household string) (*Ledger, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.ledgers[household]; ok {
		return l, nil
	}
	l, err := Load(ctx, household, r.store)
	if err != nil {
		return nil, err
	}
	r.ledgers[household] = l
	return l, nil
}
