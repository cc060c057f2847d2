package parser

import (
	"testing"

	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240615120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>EUR
<BANKACCTFROM>
<BANKID>0033
<ACCTID>000123456789
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240601120000[0:GMT]
<DTEND>20240630120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240603120000[0:GMT]
<TRNAMT>-45.30
<FITID>2024060301
<NAME>PINGO DOCE LISBOA
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240625120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024062501
<NAME>VENCIMENTO JUNHO
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240626120000[0:GMT]
<TRNAMT>0.00
<FITID>2024062601
<NAME>AJUSTE
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240630120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestOFXParser(t *testing.T) {
	res := NewOFXParser(categorize.Default()).Parse(sampleOFX)
	require.True(t, res.Recognized())
	require.Len(t, res.Candidates(), 2)

	groceries := res.Candidates()[0]
	assert.Equal(t, "2024-06-03", groceries.Date.String())
	assert.Equal(t, domain.TypeExpense, groceries.Type)
	assert.Equal(t, "Supermercado", groceries.Category)
	assert.True(t, decimal.RequireFromString("45.30").Equal(groceries.Amount))

	salary := res.Candidates()[1]
	assert.Equal(t, domain.TypeIncome, salary.Type)
	assert.Equal(t, domain.CategorySalary, salary.Category)
}

func TestOFXParser_Declines(t *testing.T) {
	assert.False(t, NewOFXParser(nil).Parse("date,description,amount").Recognized())
}

func TestOFXParser_BrokenDocumentIsRecognizedButEmpty(t *testing.T) {
	res := NewOFXParser(nil).Parse("<OFX><garbage")
	assert.True(t, res.Recognized())
	assert.Empty(t, res.Candidates())
}

func TestCSVParser(t *testing.T) {
	text := "Data;Descrição;Valor;Categoria\n" +
		"01/06/2024;Pingo Doce;-45,30;\n" +
		"02/06/2024;Vencimento;2.500,00;\n" +
		"03/06/2024;Farmácia;-12,00;Saúde Família\n" +
		"xx/06/2024;Linha partida;-1,00;\n" +
		"04/06/2024;Ajuste;0,00;\n"

	res := NewCSVParser(categorize.Default()).Parse(text)
	require.True(t, res.Recognized())
	require.Len(t, res.Candidates(), 3)

	got := res.Candidates()
	assert.Equal(t, "Supermercado", got[0].Category)
	assert.Equal(t, domain.TypeExpense, got[0].Type)
	assert.True(t, decimal.RequireFromString("45.30").Equal(got[0].Amount))
	assert.Equal(t, domain.TypeIncome, got[1].Type)
	assert.True(t, decimal.NewFromInt(2500).Equal(got[1].Amount))
	assert.Equal(t, "Saúde Família", got[2].Category)
}

func TestCSVParser_MalformedLineKeepsTheRest(t *testing.T) {
	text := "date,description,amount\r\n" +
		"2024-06-01,Lidl,-10.00\r\n" +
		"2024-06-02,\"Continente,-20.00\r\n" +
		"\r\n" +
		"2024-06-03,\"Galp, Lisboa\",-30.00\r\n" +
		"2024-06-04,Loja \"Zé\",-5.00\r\n"

	res := NewCSVParser(nil).Parse(text)
	require.True(t, res.Recognized())

	var descriptions []string
	for _, c := range res.Candidates() {
		descriptions = append(descriptions, c.Description)
	}
	assert.Equal(t, []string{"Lidl", "Galp, Lisboa", "Loja \"Zé\""}, descriptions)
}

func TestCSVParser_ExplicitTypeColumn(t *testing.T) {
	text := "date,description,amount,type\n2024-06-05,Reforço PPR,150.00,Investimento\n"

	res := NewCSVParser(nil).Parse(text)
	require.Len(t, res.Candidates(), 1)
	assert.Equal(t, domain.TypeInvestment, res.Candidates()[0].Type)
}

func TestCSVParser_DeclinesUnknownHeader(t *testing.T) {
	assert.False(t, NewCSVParser(nil).Parse("foo,bar\n1,2\n").Recognized())
	assert.False(t, NewCSVParser(nil).Parse("").Recognized())
}

func TestChain(t *testing.T) {
	c := categorize.Default()
	chain := Chain{NewLedgerParser(DefaultLedgerFormat(), c), NewOFXParser(c), NewCSVParser(c)}

	res, name := chain.Parse(sampleOFX)
	assert.True(t, res.Recognized())
	assert.Equal(t, "ofx", name)

	res, name = chain.Parse("free text the bank sent me")
	assert.False(t, res.Recognized())
	assert.Empty(t, name)
}
