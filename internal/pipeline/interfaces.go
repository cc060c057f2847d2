package pipeline

import (
	"context"

	"github.com/dvloznov/household-finance/internal/domain"
)

// Ledger is the household state an import reads from and appends to.
// *ledger.Ledger satisfies it.
type Ledger interface {
	Household() string
	Transactions() []domain.Transaction
	AppendTransactions(ctx context.Context, txs []domain.Transaction) error
	// WithImportLock runs fn while no other import into the household can run.
	WithImportLock(ctx context.Context, fn func(ctx context.Context) error) error
}

// ObjectFetcher downloads a previously uploaded statement. *gcs.Storage satisfies it.
type ObjectFetcher interface {
	Fetch(ctx context.Context, uri string) ([]byte, error)
}
