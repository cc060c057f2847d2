package aggregate

import (
	"sort"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

// DefaultSubscriptionKeywords flag a description as a subscription even when seen once.
var DefaultSubscriptionKeywords = []string{
	"netflix", "spotify", "vodafone", "meo", "nos", "ginásio", "fitness", "apple", "google", "edp", "epal",
}

var monthsPerYear = decimal.NewFromInt(12)

// RecurringCharge is an expense that looks like a subscription.
type RecurringCharge struct {
	Name       string          `json:"name"`
	Count      int             `json:"count"`
	Amount     decimal.Decimal `json:"amount"`
	LastDate   civil.Date      `json:"last_date"`
	AnnualCost decimal.Decimal `json:"annual_cost"`
}

// DetectRecurring groups expenses by lowercased, trimmed description and keeps the
// groups seen more than once or whose key contains a keyword. Amount and LastDate
// come from the last occurrence in input order, not the latest date.
func DetectRecurring(txs []domain.Transaction, keywords []string) []RecurringCharge {
	groups := map[string]*RecurringCharge{}
	var order []string
	for _, tx := range txs {
		if tx.Type != domain.TypeExpense {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(tx.Description))
		g, ok := groups[key]
		if !ok {
			g = &RecurringCharge{Name: key}
			groups[key] = g
			order = append(order, key)
		}
		g.Count++
		g.Amount = tx.Amount
		g.LastDate = tx.Date
	}

	var out []RecurringCharge
	for _, key := range order {
		g := groups[key]
		if g.Count <= 1 && !containsAny(key, keywords) {
			continue
		}
		g.AnnualCost = g.Amount.Mul(monthsPerYear)
		out = append(out, *g)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Amount.GreaterThan(out[j].Amount)
	})
	return out
}

// MonthlySubscriptionTotal sums the amounts of the detected charges.
func MonthlySubscriptionTotal(charges []RecurringCharge) decimal.Decimal {
	total := decimal.Zero
	for _, c := range charges {
		total = total.Add(c.Amount)
	}
	return total
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if k != "" && strings.Contains(s, k) {
			return true
		}
	}
	return false
}
