package parser

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ledgerHeader = "Extrato de EUR\nGerado em 01/07/2024\nExtrato de 01/06/2024 a 30/06/2024\n" +
	"Data Descrição Dinheiro retirado Dinheiro recebido Saldo\n"

func newLedger() *LedgerParser {
	return NewLedgerParser(DefaultLedgerFormat(), categorize.Default())
}

func TestLedgerParser_Scenario(t *testing.T) {
	text := "Data Descrição Dinheiro retirado Dinheiro recebido Saldo\n" +
		"01/06/2024 Pingo Doce €45.30 €1000.00\n" +
		"02/06/2024 Transferência de utilizador Revolut €50.00 €1050.00\n"

	res := newLedger().Parse(text)
	require.True(t, res.Recognized())
	require.Len(t, res.Candidates(), 2)

	first := res.Candidates()[0]
	assert.Equal(t, "2024-06-01", first.Date.String())
	assert.Equal(t, "Pingo Doce", first.Description)
	assert.True(t, decimal.RequireFromString("45.30").Equal(first.Amount))
	assert.Equal(t, domain.TypeExpense, first.Type)
	assert.Equal(t, "Supermercado", first.Category)

	second := res.Candidates()[1]
	assert.Equal(t, "2024-06-02", second.Date.String())
	assert.Equal(t, "Transferência de utilizador Revolut", second.Description)
	assert.True(t, decimal.RequireFromString("50.00").Equal(second.Amount))
	assert.Equal(t, domain.TypeIncome, second.Type)
	assert.Equal(t, domain.CategoryTransfer, second.Category)
}

func TestLedgerParser_NotRecognizedWithoutMarkers(t *testing.T) {
	res := newLedger().Parse("01/06/2024 Pingo Doce €45.30 €1000.00")
	assert.False(t, res.Recognized())
	assert.Empty(t, res.Candidates())

	res = newLedger().Parse("Dinheiro retirado only\n01/06/2024 Pingo Doce €45.30")
	assert.False(t, res.Recognized())
}

func TestLedgerParser_RecognizedButEmpty(t *testing.T) {
	res := newLedger().Parse(ledgerHeader + "Sem movimentos neste período.\n")
	assert.True(t, res.Recognized())
	assert.Empty(t, res.Candidates())
}

func TestLedgerParser_RejectsHeaderCaptions(t *testing.T) {
	text := ledgerHeader + "03/06/2024 Lidl €12.10 €900.00\n"

	res := newLedger().Parse(text)
	require.True(t, res.Recognized())
	require.Len(t, res.Candidates(), 1)
	assert.Equal(t, "Lidl", res.Candidates()[0].Description)
}

func TestLedgerParser_SectionExclusion(t *testing.T) {
	text := ledgerHeader +
		"Transações da conta\n" +
		"05/06/2024 Continente €20.00 €980.00\n" +
		"Transações de cofres\n" +
		"06/06/2024 Férias cofre €100.00 €500.00\n" +
		"Transações da conta\n" +
		"07/06/2024 Galp €40.00 €940.00\n" +
		"Depósito a prazo\n" +
		"08/06/2024 Juros depósito €1.20 €5001.20\n"

	res := newLedger().Parse(text)
	require.True(t, res.Recognized())

	var descriptions []string
	for _, c := range res.Candidates() {
		descriptions = append(descriptions, c.Description)
	}
	assert.Equal(t, []string{"Continente", "Galp"}, descriptions)
}

func TestLedgerParser_ExcludedSectionWithoutMainMarker(t *testing.T) {
	text := ledgerHeader +
		"05/06/2024 Continente €20.00 €980.00\n" +
		"Transações de cofres\n" +
		"06/06/2024 Férias cofre €100.00 €500.00\n"

	res := newLedger().Parse(text)
	require.Len(t, res.Candidates(), 1)
	assert.Equal(t, "Continente", res.Candidates()[0].Description)
}

func TestLedgerParser_AmountsAreNeverNonPositive(t *testing.T) {
	text := ledgerHeader +
		"10/06/2024 Vending machine €0.50 €899.50\n" +
		"11/06/2024 Ajuste €0.00 €899.50\n" +
		"12/06/2024 Sem valor\n" +
		"13/06/2024 Reembolso loja -€5.00 €904.50\n"

	res := newLedger().Parse(text)
	require.True(t, res.Recognized())
	require.Len(t, res.Candidates(), 2)
	for _, c := range res.Candidates() {
		assert.True(t, c.Amount.IsPositive(), c.Description)
	}
	assert.Equal(t, "Vending machine", res.Candidates()[0].Description)
	assert.True(t, decimal.RequireFromString("0.50").Equal(res.Candidates()[0].Amount))
	assert.Equal(t, domain.TypeIncome, res.Candidates()[1].Type)
}

func TestLedgerParser_Classification(t *testing.T) {
	text := ledgerHeader +
		"14/06/2024 Compra de ETF VWCE €200.00 €700.00\n" +
		"15/06/2024 Para João Silva €30.00 €670.00\n" +
		"16/06/2024 Uber Eats €18.40 €651.60\n" +
		"17/06/2024 Netflix €13.99 €637.61\n" +
		"18/06/2024 Pagamento de Maria Silva €20.00 €657.61\n"

	res := newLedger().Parse(text)
	require.Len(t, res.Candidates(), 5)

	got := res.Candidates()
	assert.Equal(t, domain.TypeInvestment, got[0].Type)
	assert.Equal(t, domain.CategoryInvestments, got[0].Category)
	assert.Equal(t, domain.TypeExpense, got[1].Type)
	assert.Equal(t, domain.CategoryFallback, got[1].Category)
	assert.Equal(t, "Restaurantes", got[2].Category)
	assert.Equal(t, domain.TypeExpense, got[3].Type)
	assert.Equal(t, "Lazer", got[3].Category)
	assert.Equal(t, domain.TypeIncome, got[4].Type)
	assert.Equal(t, domain.CategoryTransfer, got[4].Category)
}

func TestLedgerParser_DigitsInDescription(t *testing.T) {
	tests := []struct {
		name        string
		row         string
		description string
		amount      string
	}{
		{"store number", "01/06/2024 Pingo Doce 0456 €45.30 €1000.00\n", "Pingo Doce 0456", "45.30"},
		{"phone number", "02/06/2024 MB WAY 912345678 €5.00 €995.00\n", "MB WAY 912345678", "5.00"},
		{"trailing symbol", "03/06/2024 Continente 0123 12,40 € 982,60 €\n", "Continente 0123", "12.40"},
		{"glued digits", "04/06/2024 Loja24 7,00 € 975,60 €\n", "Loja24", "7.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newLedger().Parse(ledgerHeader + tt.row)
			require.Len(t, res.Candidates(), 1)
			c := res.Candidates()[0]
			assert.Equal(t, tt.description, c.Description)
			assert.True(t, decimal.RequireFromString(tt.amount).Equal(c.Amount), "got %s", c.Amount)
		})
	}
}

func TestLedgerParser_CaptionPhrases(t *testing.T) {
	text := ledgerHeader +
		"Movimentos entre 01/06/2024 e 30/06/2024\n" +
		"Documento gerado a 01/07/2024\n" +
		"05/06/2024 Transferência entre contas €10.00 €890.00\n" +
		"06/06/2024 Lidl €12.10 €877.90\n" +
		"Saldo inicial em 01/06/2024 Saldo final em 30/06/2024\n"

	res := newLedger().Parse(text)
	require.Len(t, res.Candidates(), 2)
	assert.Equal(t, "Transferência entre contas", res.Candidates()[0].Description)
	assert.Equal(t, "Lidl", res.Candidates()[1].Description)
}

func TestLookbehind(t *testing.T) {
	assert.Equal(t, "Gerado em ", lookbehind("Extrato\nGerado em 01/07/2024", 18, 40))
	assert.Equal(t, " ", lookbehind("Transferência entre contas €10.00 €890.00 06/06/2024", 47, 40))
	assert.Equal(t, "ção ", lookbehind("Descrição 01/06/2024", 12, 4))
}

func TestLedgerParser_ThreeAmountsUsesReceivedColumnForInbound(t *testing.T) {
	text := ledgerHeader +
		"18/06/2024 Transferência de Ana €0.00 €75.00 €712.61\n" +
		"19/06/2024 Continente €22.00 €0.00 €690.61\n"

	res := newLedger().Parse(text)
	require.Len(t, res.Candidates(), 2)
	assert.True(t, decimal.NewFromInt(75).Equal(res.Candidates()[0].Amount))
	assert.Equal(t, domain.TypeIncome, res.Candidates()[0].Type)
	assert.True(t, decimal.NewFromInt(22).Equal(res.Candidates()[1].Amount))
}

func TestLedgerParser_ValueDateBelongsToRow(t *testing.T) {
	text := ledgerHeader + "20/06/2024 21/06/2024 Pingo Doce 45,30 € 1.000,00 €\n"

	res := newLedger().Parse(text)
	require.Len(t, res.Candidates(), 1)
	c := res.Candidates()[0]
	assert.Equal(t, civil.Date{Year: 2024, Month: time.June, Day: 20}, c.Date)
	assert.True(t, decimal.RequireFromString("45.30").Equal(c.Amount))
}

func TestLedgerParser_SkipsExchangeRateFigures(t *testing.T) {
	text := ledgerHeader + "22/06/2024 Amazon US $54.00 Taxa de câmbio: €0.92 €49.68 €640.93\n"

	res := newLedger().Parse(text)
	require.Len(t, res.Candidates(), 1)
	assert.Equal(t, "Amazon US", res.Candidates()[0].Description)
	assert.True(t, decimal.RequireFromString("54.00").Equal(res.Candidates()[0].Amount))
}

func TestLedgerParser_InvalidCalendarDateIgnored(t *testing.T) {
	res := newLedger().Parse(ledgerHeader + "31/02/2024 Lidl €10.00 €100.00\n")
	assert.Empty(t, res.Candidates())
}

func TestLedgerParser_DescriptionCap(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "Loja "
	}
	res := newLedger().Parse(ledgerHeader + "23/06/2024 " + long + "€1.00 €99.00\n")
	require.Len(t, res.Candidates(), 1)
	assert.LessOrEqual(t, len([]rune(res.Candidates()[0].Description)), MaxDescriptionRunes)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"€45.30", "45.3"},
		{"€1.000,00", "1000"},
		{"1,234.56 €", "1234.56"},
		{"-€5.00", "5"},
		{"€ 12", "12"},
		{"12,5 EUR", "12.5"},
		{"£1.000", "1000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}
