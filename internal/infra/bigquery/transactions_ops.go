package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/household-finance/internal/domain"
	"google.golang.org/api/iterator"
)

// ListTransactions returns every transaction of the household ordered by date.
func (s *Storage) ListTransactions(ctx context.Context, household string) ([]domain.Transaction, error) {
	q := s.client.Query(`
		SELECT
			transaction_id,
			household,
			transaction_date,
			description,
			amount,
			type,
			category,
			member,
			created_ts
		FROM ` + s.qualified(transactionsTable) + `
		WHERE household = @household
		ORDER BY transaction_date, created_ts
	`)
	q.Parameters = []bigquery.QueryParameter{
		{Name: "household", Value: household},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query read: %w", err)
	}

	var out []domain.Transaction
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: iter next: %w", err)
		}
		tx, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("ListTransactions: %w", err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (s *Storage) Insert(ctx context.Context, household string, tx domain.Transaction) error {
	return s.InsertBatch(ctx, household, []domain.Transaction{tx})
}

// InsertBatch streams the rows with the transaction id as insert id, so a retried
// request does not duplicate rows.
func (s *Storage) InsertBatch(ctx context.Context, household string, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	now := time.Now().UTC()
	savers := make([]*bigquery.StructSaver, 0, len(txs))
	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("InsertBatch: %w", err)
		}
		savers = append(savers, &bigquery.StructSaver{
			Struct:   transactionToRow(household, tx, now),
			InsertID: tx.ID,
		})
	}

	if err := s.table(transactionsTable).Inserter().Put(ctx, savers); err != nil {
		return fmt.Errorf("InsertBatch: inserting rows: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, household string, tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	sql := `
		UPDATE ` + s.qualified(transactionsTable) + `
		SET transaction_date = @transaction_date,
		    description = @description,
		    amount = @amount,
		    type = @type,
		    category = @category,
		    member = @member
		WHERE transaction_id = @transaction_id AND household = @household
	`
	return s.runDMLExpectRow(ctx, "Update", tx.ID, sql, []bigquery.QueryParameter{
		{Name: "transaction_date", Value: tx.Date},
		{Name: "description", Value: tx.Description},
		{Name: "amount", Value: tx.Amount.Rat()},
		{Name: "type", Value: string(tx.Type)},
		{Name: "category", Value: tx.Category},
		{Name: "member", Value: string(tx.Member)},
		{Name: "transaction_id", Value: tx.ID},
		{Name: "household", Value: household},
	})
}
