package bigquery

import (
	"math/big"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionRowRoundTrip(t *testing.T) {
	tx := domain.Transaction{
		ID:          "t1",
		Date:        civil.Date{Year: 2024, Month: time.March, Day: 1},
		Description: "Pingo Doce",
		Amount:      decimal.RequireFromString("45.20"),
		Type:        domain.TypeExpense,
		Category:    "Supermercado",
		Member:      domain.MemberPartner,
	}
	now := time.Date(2024, time.March, 2, 0, 0, 0, 0, time.UTC)

	row := transactionToRow("h1", tx, now)
	assert.Equal(t, "h1", row.Household)
	assert.Equal(t, "Despesa", row.Type)
	assert.Equal(t, 0, row.Amount.Cmp(big.NewRat(452, 10)))
	assert.Equal(t, now, row.CreatedTS)

	back, err := row.toDomain()
	require.NoError(t, err)
	assert.True(t, tx.Amount.Equal(back.Amount))
	back.Amount = tx.Amount
	assert.Equal(t, tx, back)
}

func TestRatToDecimal(t *testing.T) {
	d, err := ratToDecimal(big.NewRat(1, 3))
	require.NoError(t, err)
	assert.Equal(t, "0.333333333", d.String())

	_, err = ratToDecimal(nil)
	assert.Error(t, err)
}

func TestBudgetItemRowToDomain(t *testing.T) {
	row := &BudgetItemRow{
		BudgetItemID: "b1",
		Month:        "2024-03",
		Description:  "Renda",
		Amount:       big.NewRat(900, 1),
		Type:         "Despesa",
		Category:     "Habitação",
		IsRecurring:  true,
	}
	item, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.Month{Year: 2024, Month: time.March}, item.Month)
	assert.True(t, item.IsRecurring)

	row.Month = "March"
	_, err = row.toDomain()
	assert.Error(t, err)
}

func TestGoalRowToDomain(t *testing.T) {
	row := &GoalRow{
		GoalID:        "g1",
		Name:          "Casa",
		TargetAmount:  big.NewRat(20000, 1),
		CurrentAmount: big.NewRat(1500, 1),
		Deadline:      civil.Date{Year: 2026, Month: time.January, Day: 1},
		Category:      "house",
		Priority:      "high",
	}
	g, err := row.toDomain()
	require.NoError(t, err)
	assert.Equal(t, domain.GoalHouse, g.Category)
	assert.Equal(t, domain.PriorityHigh, g.Priority)
	assert.True(t, decimal.NewFromInt(1500).Equal(g.CurrentAmount))
	require.NoError(t, g.Validate())
}

func TestQualifiedName(t *testing.T) {
	assert.Equal(t, "`p.d.transactions`", qualifiedName("p", "d", transactionsTable))
}
