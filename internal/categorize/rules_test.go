package categorize

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCategorize(t *testing.T) {
	c := Default()

	tests := []struct {
		desc string
		typ  domain.Type
		want string
	}{
		{"Pingo Doce", domain.TypeExpense, "Supermercado"},
		{"PINGO DOCE LISBOA", domain.TypeExpense, "Supermercado"},
		{"Uber Eats", domain.TypeExpense, "Restaurantes"},
		{"Uber *Trip", domain.TypeExpense, "Transporte"},
		{"Farmacia Central", domain.TypeExpense, "Saúde"},
		{"Vending machine", domain.TypeExpense, domain.CategoryFallback},
		{"Transferência de utilizador Revolut", domain.TypeIncome, domain.CategoryTransfer},
		{"Vencimento Junho", domain.TypeIncome, domain.CategorySalary},
		{"Fundo Monetário", domain.TypeInvestment, domain.CategoryInvestments},
		{"Aumento de limite cartão", domain.TypeExpense, domain.CategoryFallback},
		{"Pagamento IMI 2024", domain.TypeExpense, "Habitação"},
		{"Prioridade Seguros", domain.TypeExpense, domain.CategoryFallback},
		{"Prio Energy Lisboa", domain.TypeExpense, "Transporte"},
		{"CP Comboios", domain.TypeExpense, "Transporte"},
		{"Bilhete CP", domain.TypeExpense, "Transporte"},
		{"Loja CPAP", domain.TypeExpense, domain.CategoryFallback},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Categorize(tt.desc, tt.typ))
		})
	}
}

func TestRulesFirstMatchWins(t *testing.T) {
	rules := Rules{
		{Category: "A", Keywords: []string{"shop"}},
		{Category: "B", Keywords: []string{"shop"}},
	}
	got, ok := rules.Match("Corner Shop")
	require.True(t, ok)
	assert.Equal(t, "A", got)

	_, ok = rules.Match("nothing")
	assert.False(t, ok)
}

func TestContainsKeyword(t *testing.T) {
	assert.True(t, containsKeyword("via verde portugal", "via verde"))
	assert.True(t, containsKeyword("continentebomdia", "continente"))
	assert.True(t, containsKeyword("edp comercial", "edp"))
	assert.True(t, containsKeyword("meo/fibra", "meo"))
	assert.False(t, containsKeyword("limite", "imi"))
	assert.False(t, containsKeyword("timimi imi2", "imi"))
	assert.True(t, containsKeyword("limite imi", "imi"))
}

func TestFold(t *testing.T) {
	assert.Equal(t, "transferencia de", Fold("Transferência de"))
	assert.Equal(t, "ginasio", Fold("GINÁSIO"))
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `
expense:
  - category: Animais
    keywords: [zooplus, veterinário]
  - category: Supermercado
    keywords: [lidl]
income:
  - category: Rendas
    keywords: [inquilino]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Animais", c.Categorize("Hospital Veterinário Sul", domain.TypeExpense))
	assert.Equal(t, "Rendas", c.Categorize("Pagamento inquilino", domain.TypeIncome))
	assert.Equal(t, domain.CategoryFallback, c.Categorize("Pingo Doce", domain.TypeExpense))
	assert.Equal(t, domain.CategoryTransfer, c.Categorize("MB Way", domain.TypeIncome))
	assert.Equal(t, []string{"Animais", "Supermercado", "Rendas", "Outros", "Transferência"}, c.Categories())
}

func TestParseRejectsRuleWithoutCategory(t *testing.T) {
	_, err := Parse([]byte("expense:\n  - keywords: [x]\n"))
	assert.Error(t, err)
}
