package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/store"
	"github.com/dvloznov/household-finance/internal/store/storetest"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tx(id string, day int) domain.Transaction {
	return domain.Transaction{
		ID:          id,
		Date:        civil.Date{Year: 2024, Month: time.March, Day: day},
		Description: "Compra " + id,
		Amount:      decimal.NewFromInt(int64(day)),
		Type:        domain.TypeExpense,
		Category:    domain.CategoryFallback,
		Member:      domain.MemberMe,
	}
}

func loadLedger(t *testing.T, st *storetest.Memory) *Ledger {
	t.Helper()
	l, err := Load(context.Background(), "casa", st)
	require.NoError(t, err)
	return l
}

func TestLoadReadsStore(t *testing.T) {
	st := storetest.NewMemory()
	st.Seed("casa", tx("a", 1), tx("b", 2))
	st.Seed("other", tx("c", 3))

	l := loadLedger(t, st)
	assert.Equal(t, "casa", l.Household())
	assert.Len(t, l.Transactions(), 2)
}

func TestAppendTransactionsPersists(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	l := loadLedger(t, st)

	require.NoError(t, l.AppendTransactions(ctx, []domain.Transaction{tx("a", 1), tx("b", 2)}))
	assert.Len(t, l.Transactions(), 2)

	stored, err := st.ListTransactions(ctx, "casa")
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, 1, st.Writes, "one batch write")
}

func TestAppendTransactionsReloadsOnFailure(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	st.Seed("casa", tx("existing", 1))
	l := loadLedger(t, st)

	st.Err = errors.New("network down")
	err := l.AppendTransactions(ctx, []domain.Transaction{tx("new", 2)})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPersistFailed)
	assert.Contains(t, err.Error(), "network down")

	got := l.Transactions()
	require.Len(t, got, 1, "optimistic row is dropped by the reload")
	assert.Equal(t, "existing", got[0].ID)
}

func TestAppendRejectsInvalidRows(t *testing.T) {
	st := storetest.NewMemory()
	l := loadLedger(t, st)

	bad := tx("a", 1)
	bad.Amount = decimal.NewFromInt(-1)
	err := l.AppendTransactions(context.Background(), []domain.Transaction{bad})

	assert.ErrorIs(t, err, domain.ErrInvalidTransaction)
	assert.Empty(t, l.Transactions())
	assert.Zero(t, st.Writes)
}

func TestUpdateAndDeleteTransaction(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	st.Seed("casa", tx("a", 1), tx("b", 2))
	l := loadLedger(t, st)

	changed := tx("a", 1)
	changed.Category = "Supermercado"
	require.NoError(t, l.UpdateTransaction(ctx, changed))
	assert.Equal(t, "Supermercado", l.Transactions()[0].Category)

	require.NoError(t, l.DeleteTransaction(ctx, "b"))
	assert.Len(t, l.Transactions(), 1)

	assert.ErrorIs(t, l.DeleteTransaction(ctx, "missing"), store.ErrNotFound)
	assert.ErrorIs(t, l.UpdateTransaction(ctx, tx("missing", 3)), store.ErrNotFound)
}

func TestDeleteReloadsOnFailure(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	st.Seed("casa", tx("a", 1))
	l := loadLedger(t, st)

	st.Err = errors.New("boom")
	require.ErrorIs(t, l.DeleteTransaction(ctx, "a"), ErrPersistFailed)
	assert.Len(t, l.Transactions(), 1, "deleted row comes back")
}

func TestAddBudgetItemExpandsRecurrence(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	l := loadLedger(t, st)

	item := domain.BudgetItem{
		Month:       domain.Month{Year: 2024, Month: time.November},
		Description: "Ginásio",
		Amount:      decimal.NewFromInt(35),
		Type:        domain.TypeExpense,
		Category:    "Saúde",
		IsRecurring: true,
	}
	items, err := l.AddBudgetItem(ctx, item, 0)
	require.NoError(t, err)
	require.Len(t, items, domain.DefaultRecurrenceCount)
	assert.Equal(t, domain.Month{Year: 2025, Month: time.October}, items[11].Month)

	stored, err := st.ListBudgetItems(ctx, "casa")
	require.NoError(t, err)
	assert.Len(t, stored, 12)
	assert.Len(t, l.Budget(), 12)
}

func TestReplaceBudgetDeletesMissing(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	l := loadLedger(t, st)

	march := domain.Month{Year: 2024, Month: time.March}
	mk := func(id string) domain.BudgetItem {
		return domain.BudgetItem{ID: id, Month: march, Description: id, Amount: decimal.NewFromInt(1), Type: domain.TypeExpense, Category: "Lazer"}
	}
	require.NoError(t, l.ReplaceBudget(ctx, []domain.BudgetItem{mk("a"), mk("b"), mk("c")}))
	require.NoError(t, l.ReplaceBudget(ctx, []domain.BudgetItem{mk("a"), mk("c")}))

	stored, err := st.ListBudgetItems(ctx, "casa")
	require.NoError(t, err)
	ids := []string{}
	for _, it := range stored {
		ids = append(ids, it.ID)
	}
	assert.ElementsMatch(t, []string{"a", "c"}, ids)
	assert.Len(t, l.Budget(), 2)
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	l := loadLedger(t, st)

	g := domain.Goal{
		ID:           "g1",
		Name:         "Férias",
		TargetAmount: decimal.NewFromInt(2000),
		Deadline:     civil.Date{Year: 2025, Month: time.August, Day: 1},
		Category:     domain.GoalVacation,
		Priority:     domain.PriorityLow,
	}
	require.NoError(t, l.UpsertGoal(ctx, g))
	g.CurrentAmount = decimal.NewFromInt(500)
	require.NoError(t, l.UpsertGoal(ctx, g))

	goals := l.Goals()
	require.Len(t, goals, 1)
	assert.True(t, decimal.NewFromInt(500).Equal(goals[0].CurrentAmount))

	require.NoError(t, l.DeleteGoal(ctx, "g1"))
	assert.Empty(t, l.Goals())
	assert.ErrorIs(t, l.DeleteGoal(ctx, "g1"), store.ErrNotFound)
}

func TestConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	l := loadLedger(t, st)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = l.AddTransaction(ctx, tx(fmt.Sprintf("t%d", i), i%28+1))
			_ = l.Transactions()
		}(i)
	}
	wg.Wait()
	assert.Len(t, l.Transactions(), 20)
}

func TestRegistryCachesLedgers(t *testing.T) {
	ctx := context.Background()
	st := storetest.NewMemory()
	r := NewRegistry(st)

	a, err := r.Get(ctx, "casa")
	require.NoError(t, err)
	b, err := r.Get(ctx, "casa")
	require.NoError(t, err)
	c, err := r.Get(ctx, "other")
	require.NoError(t, err)

	assert.Same(t, a, b)
	assert.NotSame(t, a, c)
}
