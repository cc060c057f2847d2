package merge

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) civil.Date {
	return civil.Date{Year: 2024, Month: time.March, Day: d}
}

func cand(d int, desc, amount string, typ domain.Type) domain.Candidate {
	return domain.Candidate{
		Date:        day(d),
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
		Type:        typ,
		Category:    domain.CategoryFallback,
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestSameEvent(t *testing.T) {
	stored := cand(1, "Pingo Doce", "45.20", domain.TypeExpense).Transaction("x", domain.MemberMe)

	tests := []struct {
		name string
		c    domain.Candidate
		want bool
	}{
		{"identical", cand(1, "Pingo Doce", "45.20", domain.TypeExpense), true},
		{"different description", cand(1, "PINGO DOCE LISBOA", "45.20", domain.TypeExpense), true},
		{"within epsilon", cand(1, "x", "45.205", domain.TypeExpense), true},
		{"at epsilon", cand(1, "x", "45.21", domain.TypeExpense), false},
		{"different day", cand(2, "Pingo Doce", "45.20", domain.TypeExpense), false},
		{"different type", cand(1, "Pingo Doce", "45.20", domain.TypeIncome), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SameEvent(tt.c, stored))
		})
	}
}

func TestMerge_ThreeRowsTwoDuplicates(t *testing.T) {
	existing := []domain.Transaction{
		cand(1, "Compra manual", "45.20", domain.TypeExpense).Transaction("e1", domain.MemberPartner),
		cand(2, "Ordenado", "2500", domain.TypeIncome).Transaction("e2", domain.MemberMe),
	}
	candidates := []domain.Candidate{
		cand(1, "Pingo Doce", "45.20", domain.TypeExpense),
		cand(2, "Salário ACME", "2500.00", domain.TypeIncome),
		cand(3, "Uber", "7.50", domain.TypeExpense),
	}

	out := Merge(candidates, existing, domain.MemberJoint, sequentialIDs())

	require.Len(t, out.Accepted, 1)
	assert.Equal(t, 2, out.DuplicateCount)
	assert.Equal(t, NewWithDuplicates, out.Kind())
	assert.Equal(t, "1 transações importadas com sucesso (2 duplicadas ignoradas).", out.Message())

	got := out.Accepted[0]
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, domain.MemberJoint, got.Member)
	assert.Equal(t, "Uber", got.Description)
	require.NoError(t, got.Validate())
}

func TestMerge_Kinds(t *testing.T) {
	existing := []domain.Transaction{
		cand(1, "a", "10", domain.TypeExpense).Transaction("e1", domain.MemberMe),
	}

	nothing := Merge(nil, existing, domain.MemberMe, nil)
	assert.Equal(t, NothingExtracted, nothing.Kind())

	allDup := Merge([]domain.Candidate{cand(1, "b", "10", domain.TypeExpense)}, existing, domain.MemberMe, nil)
	assert.Equal(t, AllDuplicates, allDup.Kind())
	assert.Equal(t, "Todas as 1 transações detetadas já existem no sistema.", allDup.Message())

	allNew := Merge([]domain.Candidate{cand(2, "b", "10", domain.TypeExpense)}, existing, domain.MemberMe, nil)
	assert.Equal(t, AllNew, allNew.Kind())
	assert.Equal(t, "1 transações importadas com sucesso.", allNew.Message())
	assert.NotEmpty(t, allNew.Accepted[0].ID, "default generator assigns an id")
}

func TestMerge_Conservation(t *testing.T) {
	existing := []domain.Transaction{
		cand(1, "a", "10", domain.TypeExpense).Transaction("e1", domain.MemberMe),
		cand(5, "b", "99.99", domain.TypeSavings).Transaction("e2", domain.MemberMe),
	}
	candidates := []domain.Candidate{
		cand(1, "a", "10", domain.TypeExpense),
		cand(1, "a", "10", domain.TypeIncome),
		cand(5, "b", "99.99", domain.TypeSavings),
		cand(6, "c", "1", domain.TypeExpense),
		cand(6, "c", "1", domain.TypeExpense),
	}

	out := Merge(candidates, existing, domain.MemberMe, nil)

	assert.Equal(t, len(candidates), len(out.Accepted)+out.DuplicateCount)
	assert.Len(t, out.Accepted, 3, "duplicates inside one batch are both kept")

	ids := map[string]bool{}
	for _, tx := range out.Accepted {
		assert.False(t, ids[tx.ID], "ids are unique")
		ids[tx.ID] = true
		for _, e := range existing {
			assert.False(t, SameEvent(tx.Candidate(), e))
		}
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	existing := []domain.Transaction{cand(1, "a", "10", domain.TypeExpense).Transaction("e1", domain.MemberMe)}
	candidates := []domain.Candidate{cand(2, "b", "5", domain.TypeExpense)}

	Merge(candidates, existing, domain.MemberMe, nil)

	assert.Len(t, existing, 1)
	assert.Equal(t, "b", candidates[0].Description)
}

func TestOutcomeJSON(t *testing.T) {
	out := Outcome{DuplicateCount: 2}
	data, err := json.Marshal(out)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"accepted": [],
		"duplicate_count": 2,
		"kind": "all_duplicates",
		"message": "Todas as 2 transações detetadas já existem no sistema."
	}`, string(data))
}
