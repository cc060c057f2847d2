package domain

import "sort"

// Well-known category labels.
const (
	CategoryFallback    = "Outros"
	CategoryTransfer    = "Transferência"
	CategorySalary      = "Salário"
	CategoryInvestments = "Investimentos"
)

// SeedCategories is the predefined vocabulary offered before any user additions.
var SeedCategories = []string{
	"Habitação",
	"Supermercado",
	"Restaurantes",
	"Transporte",
	"Saúde",
	"Lazer",
	"Educação",
	"Serviços (Água/Luz/Net)",
	CategoryInvestments,
	CategorySalary,
	CategoryFallback,
}

// AvailableCategories returns the sorted union of seed, transaction and budget categories,
// without the fallback label.
func AvailableCategories(seed []string, txs []Transaction, budget []BudgetItem) []string {
	set := make(map[string]struct{})
	add := func(c string) {
		if c != "" && c != CategoryFallback {
			set[c] = struct{}{}
		}
	}
	for _, c := range seed {
		add(c)
	}
	for _, t := range txs {
		add(t.Category)
	}
	for _, b := range budget {
		add(b.Category)
	}

	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}
