package categorize

import "github.com/dvloznov/household-finance/internal/domain"

// Default returns the built-in rule table. Order matters: "uber eats" must be
// seen before "uber".
func Default() *Categorizer {
	return &Categorizer{
		Expense: Rules{
			{Category: "Supermercado", Keywords: []string{
				"pingo doce", "continente", "lidl", "aldi", "auchan", "mercadona",
				"minipreço", "intermarché", "el corte ingles", "meu super",
			}},
			{Category: "Restaurantes", Keywords: []string{
				"restaurante", "uber eats", "glovo", "bolt food", "mcdonald", "burger king",
				"pastelaria", "padaria", "starbucks", "telepizza",
			}},
			{Category: "Transporte", Keywords: []string{
				"uber", "bolt", "galp", "repsol", "cepsa", "prio", "via verde",
				"carris", "metro", "comboios", "cp", "estacionamento", "combustível",
			}},
			{Category: "Serviços (Água/Luz/Net)", Keywords: []string{
				"edp", "epal", "vodafone", "meo", "nos comunicações", "endesa",
				"goldenergy", "águas de",
			}},
			{Category: "Habitação", Keywords: []string{
				"renda", "condomínio", "ikea", "leroy merlin", "imi", "seguro casa",
			}},
			{Category: "Saúde", Keywords: []string{
				"farmácia", "hospital", "clínica", "cuf", "lusíadas", "dentista", "wells",
			}},
			{Category: "Lazer", Keywords: []string{
				"netflix", "spotify", "disney", "hbo", "cinema", "steam", "playstation",
				"ginásio", "fitness", "viagem", "booking",
			}},
			{Category: "Educação", Keywords: []string{
				"escola", "universidade", "propina", "colégio", "livraria", "bertrand",
			}},
		},
		Income: Rules{
			{Category: domain.CategorySalary, Keywords: []string{"salário", "vencimento", "ordenado", "payroll"}},
			{Category: "Reembolso", Keywords: []string{"reembolso", "refund"}},
		},
		ExpenseFallback: domain.CategoryFallback,
		IncomeFallback:  domain.CategoryTransfer,
	}
}
