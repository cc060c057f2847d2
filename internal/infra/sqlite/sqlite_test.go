package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "data", "finance.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sampleTx(id string, day int, amount string) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Date:        civil.Date{Year: 2024, Month: time.March, Day: day},
		Description: "Pingo Doce",
		Amount:      decimal.RequireFromString(amount),
		Type:        domain.TypeExpense,
		Category:    "Supermercado",
		Member:      domain.MemberJoint,
	}
}

func TestOpenMigrates(t *testing.T) {
	s := openTestStorage(t)

	var version int
	require.NoError(t, s.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, ExpectedSchemaVersion, version)

	require.NoError(t, s.Migrate(context.Background()), "migrate is idempotent")
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestTransactionsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	require.NoError(t, s.InsertBatch(ctx, "h1", []domain.Transaction{
		sampleTx("b", 5, "10.10"),
		sampleTx("a", 1, "45.20"),
	}))
	require.NoError(t, s.Insert(ctx, "h2", sampleTx("c", 2, "1")))

	got, err := s.ListTransactions(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID, "ordered by date")
	assert.Equal(t, sampleTx("a", 1, "45.20").Date, got[0].Date)
	assert.True(t, decimal.RequireFromString("45.20").Equal(got[0].Amount))
	assert.Equal(t, domain.MemberJoint, got[0].Member)
	assert.Equal(t, domain.TypeExpense, got[0].Type)

	updated := got[0]
	updated.Description = "Continente"
	updated.Type = domain.TypeIncome
	require.NoError(t, s.Update(ctx, "h1", updated))

	got, err = s.ListTransactions(ctx, "h1")
	require.NoError(t, err)
	assert.Equal(t, "Continente", got[0].Description)
	assert.Equal(t, domain.TypeIncome, got[0].Type)

	require.NoError(t, s.Delete(ctx, "h1", "a"))
	got, err = s.ListTransactions(ctx, "h1")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestTransactionsNotFound(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)
	require.NoError(t, s.Insert(ctx, "h1", sampleTx("a", 1, "1")))

	assert.ErrorIs(t, s.Delete(ctx, "h1", "missing"), store.ErrNotFound)
	assert.ErrorIs(t, s.Delete(ctx, "other", "a"), store.ErrNotFound, "households are isolated")
	assert.ErrorIs(t, s.Update(ctx, "h1", sampleTx("missing", 1, "1")), store.ErrNotFound)
}

func TestInsertBatchIsAtomic(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	bad := sampleTx("bad", 2, "1")
	bad.Member = "nobody"
	err := s.InsertBatch(ctx, "h1", []domain.Transaction{sampleTx("ok", 1, "1"), bad})
	require.ErrorIs(t, err, domain.ErrInvalidTransaction)

	got, err := s.ListTransactions(ctx, "h1")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestBudgetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	march := domain.Month{Year: 2024, Month: time.March}
	item := domain.BudgetItem{
		ID:          "rent",
		Month:       march,
		Description: "Renda",
		Amount:      decimal.RequireFromString("900"),
		Type:        domain.TypeExpense,
		Category:    "Habitação",
		IsRecurring: true,
	}
	items := domain.ExpandRecurring(item, 3, nil)
	require.NoError(t, s.UpsertBudgetItems(ctx, "h1", items))

	got, err := s.ListBudgetItems(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, march, got[0].Month)
	assert.Equal(t, march.AddMonths(2), got[2].Month)
	assert.True(t, got[0].IsRecurring)

	got[0].Amount = decimal.RequireFromString("950")
	require.NoError(t, s.UpsertBudgetItems(ctx, "h1", got[:1]))
	require.NoError(t, s.DeleteBudgetItem(ctx, "h1", got[2].ID))

	got, err = s.ListBudgetItems(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.True(t, decimal.RequireFromString("950").Equal(got[0].Amount))

	assert.ErrorIs(t, s.DeleteBudgetItem(ctx, "h1", "missing"), store.ErrNotFound)
}

func TestGoalsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := openTestStorage(t)

	g := domain.Goal{
		ID:            "g1",
		Name:          "Férias",
		TargetAmount:  decimal.RequireFromString("3000"),
		CurrentAmount: decimal.RequireFromString("250.50"),
		Deadline:      civil.Date{Year: 2025, Month: time.July, Day: 1},
		Category:      domain.GoalVacation,
		Priority:      domain.PriorityMedium,
		CreatedAt:     time.Date(2024, time.March, 1, 9, 30, 0, 0, time.UTC),
	}
	require.NoError(t, s.UpsertGoal(ctx, "h1", g))

	got, err := s.ListGoals(ctx, "h1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, g.Name, got[0].Name)
	assert.Equal(t, g.Deadline, got[0].Deadline)
	assert.True(t, g.CurrentAmount.Equal(got[0].CurrentAmount))
	assert.True(t, g.CreatedAt.Equal(got[0].CreatedAt))

	require.NoError(t, s.DeleteGoal(ctx, "h1", "g1"))
	assert.ErrorIs(t, s.DeleteGoal(ctx, "h1", "g1"), store.ErrNotFound)
}
