package sqlite

import (
	"context"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

const upsertTransactionSQL = `
	INSERT OR REPLACE INTO transactions (id, household, date, description, amount, type, category, member)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (s *Storage) ListTransactions(ctx context.Context, household string) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, date, description, amount, type, category, member
		FROM transactions
		WHERE household = ?
		ORDER BY date, created_at, rowid`, household)
	if err != nil {
		return nil, fmt.Errorf("ListTransactions: query: %w", err)
	}
	defer rows.Close()

	var out []domain.Transaction
	for rows.Next() {
		var (
			tx                domain.Transaction
			date, amount, typ string
			member            string
		)
		if err := rows.Scan(&tx.ID, &date, &tx.Description, &amount, &typ, &tx.Category, &member); err != nil {
			return nil, fmt.Errorf("ListTransactions: scan: %w", err)
		}
		if tx.Date, err = civil.ParseDate(date); err != nil {
			return nil, fmt.Errorf("ListTransactions: row %s: %w", tx.ID, err)
		}
		if tx.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("ListTransactions: row %s: %w", tx.ID, err)
		}
		tx.Type = domain.Type(typ)
		tx.Member = domain.Member(member)
		out = append(out, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListTransactions: iterate: %w", err)
	}
	return out, nil
}

func (s *Storage) Insert(ctx context.Context, household string, tx domain.Transaction) error {
	return s.InsertBatch(ctx, household, []domain.Transaction{tx})
}

// InsertBatch writes every row in one SQL transaction.
func (s *Storage) InsertBatch(ctx context.Context, household string, txs []domain.Transaction) error {
	if len(txs) == 0 {
		return nil
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("InsertBatch: begin: %w", err)
	}
	defer func() { _ = sqlTx.Rollback() }()

	stmt, err := sqlTx.PrepareContext(ctx, upsertTransactionSQL)
	if err != nil {
		return fmt.Errorf("InsertBatch: prepare: %w", err)
	}
	defer stmt.Close()

	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("InsertBatch: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, transactionArgs(household, tx)...); err != nil {
			return fmt.Errorf("InsertBatch: insert %s: %w", tx.ID, err)
		}
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("InsertBatch: commit: %w", err)
	}
	return nil
}

func (s *Storage) Update(ctx context.Context, household string, tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("Update: %w", err)
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE transactions
		SET date = ?, description = ?, amount = ?, type = ?, category = ?, member = ?
		WHERE id = ? AND household = ?`,
		tx.Date.String(), tx.Description, tx.Amount.String(), string(tx.Type), tx.Category, string(tx.Member),
		tx.ID, household)
	if err != nil {
		return fmt.Errorf("Update: exec: %w", err)
	}
	return checkAffected(res, "Update", tx.ID)
}

func (s *Storage) Delete(ctx context.Context, household string, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = ? AND household = ?`, id, household)
	if err != nil {
		return fmt.Errorf("Delete: exec: %w", err)
	}
	return checkAffected(res, "Delete", id)
}

func transactionArgs(household string, tx domain.Transaction) []interface{} {
	return []interface{}{
		tx.ID,
		household,
		tx.Date.String(),
		tx.Description,
		tx.Amount.String(),
		string(tx.Type),
		tx.Category,
		string(tx.Member),
	}
}
