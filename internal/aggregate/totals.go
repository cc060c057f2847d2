// Package aggregate derives the dashboard figures from a household's transactions,
// budget and goals. Every function here is pure.
package aggregate

import (
	"sort"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Totals are per-type sums over a set of transactions.
type Totals struct {
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Savings     decimal.Decimal `json:"savings"`
	Investment  decimal.Decimal `json:"investment"`
	Balance     decimal.Decimal `json:"balance"`
	SavingsRate decimal.Decimal `json:"savings_rate"`
}

// Sum returns the totals over every transaction.
func Sum(txs []domain.Transaction) Totals {
	var t Totals
	for _, tx := range txs {
		switch tx.Type {
		case domain.TypeIncome:
			t.Income = t.Income.Add(tx.Amount)
		case domain.TypeExpense:
			t.Expense = t.Expense.Add(tx.Amount)
		case domain.TypeSavings:
			t.Savings = t.Savings.Add(tx.Amount)
		case domain.TypeInvestment:
			t.Investment = t.Investment.Add(tx.Amount)
		}
	}
	t.Balance = t.Income.Sub(t.Expense).Sub(t.Savings).Sub(t.Investment)
	if !t.Income.IsZero() {
		t.SavingsRate = t.Savings.Add(t.Investment).Div(t.Income)
	}
	return t
}

// MonthlyTotals returns the totals over the transactions dated inside month.
func MonthlyTotals(txs []domain.Transaction, month domain.Month) Totals {
	return Sum(InMonth(txs, month))
}

// InMonth filters txs to the given month, keeping input order.
func InMonth(txs []domain.Transaction, month domain.Month) []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range txs {
		if month.Contains(tx.Date) {
			out = append(out, tx)
		}
	}
	return out
}

type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// CategoryBreakdown sums expenses per category, largest first. Ties sort by name.
func CategoryBreakdown(txs []domain.Transaction) []CategoryTotal {
	sums := map[string]decimal.Decimal{}
	for _, tx := range txs {
		if tx.Type != domain.TypeExpense {
			continue
		}
		sums[tx.Category] = sums[tx.Category].Add(tx.Amount)
	}

	out := make([]CategoryTotal, 0, len(sums))
	for c, total := range sums {
		out = append(out, CategoryTotal{Category: c, Total: total})
	}
	sort.Slice(out, func(i, j int) bool {
		if cmp := out[i].Total.Cmp(out[j].Total); cmp != 0 {
			return cmp > 0
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// RecentTransactions returns the n most recent transactions, newest first.
// Transactions on the same day keep their input order.
func RecentTransactions(txs []domain.Transaction, n int) []domain.Transaction {
	sorted := make([]domain.Transaction, len(txs))
	copy(sorted, txs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
