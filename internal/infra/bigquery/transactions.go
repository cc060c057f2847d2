package bigquery

import (
	"fmt"
	"math/big"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

// numericScale is the number of fractional digits a BigQuery NUMERIC keeps.
const numericScale = 9

type TransactionRow struct {
	TransactionID   string     `bigquery:"transaction_id"`   // REQUIRED
	Household       string     `bigquery:"household"`        // REQUIRED
	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED
	Description     string     `bigquery:"description"`      // REQUIRED
	Amount          *big.Rat   `bigquery:"amount"`           // REQUIRED NUMERIC
	Type            string     `bigquery:"type"`             // REQUIRED
	Category        string     `bigquery:"category"`         // REQUIRED
	Member          string     `bigquery:"member"`           // REQUIRED
	CreatedTS       time.Time  `bigquery:"created_ts"`       // REQUIRED
}

func transactionToRow(household string, tx domain.Transaction, now time.Time) *TransactionRow {
	return &TransactionRow{
		TransactionID:   tx.ID,
		Household:       household,
		TransactionDate: tx.Date,
		Description:     tx.Description,
		Amount:          tx.Amount.Rat(),
		Type:            string(tx.Type),
		Category:        tx.Category,
		Member:          string(tx.Member),
		CreatedTS:       now,
	}
}

func (r *TransactionRow) toDomain() (domain.Transaction, error) {
	amount, err := ratToDecimal(r.Amount)
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("transaction %s: %w", r.TransactionID, err)
	}
	return domain.Transaction{
		ID:          r.TransactionID,
		Date:        r.TransactionDate,
		Description: r.Description,
		Amount:      amount,
		Type:        domain.Type(r.Type),
		Category:    r.Category,
		Member:      domain.Member(r.Member),
	}, nil
}

func ratToDecimal(r *big.Rat) (decimal.Decimal, error) {
	if r == nil {
		return decimal.Zero, fmt.Errorf("NULL amount")
	}
	return decimal.NewFromString(r.FloatString(numericScale))
}
