package parser

import (
	"regexp"

	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/dvloznov/household-finance/internal/domain"
)

// Patterns run against categorize.Fold output, so they are lowercase and unaccented.
var (
	investmentPattern = regexp.MustCompile(`\b(?:fundos?|investimentos?|etf|acoes|accoes|trading|cripto|crypto|ppr|obrigacoes)\b`)
	inboundPattern    = regexp.MustCompile(`\b(?:transferencia de|transferencia recebida|recebid[oa] de|pagamento de|from|carregamento|reembolso|deposito de|vencimento|salario)\b`)
	outboundPattern   = regexp.MustCompile(`^(?:transferencia\s+)?(?:para|to)\b`)
)

// isInbound reports whether the description reads as money received.
// A leading "para <payee>" / "to <payee>" always means money out.
func isInbound(description string) bool {
	folded := categorize.Fold(description)
	if outboundPattern.MatchString(folded) {
		return false
	}
	return inboundPattern.MatchString(folded)
}

// classify applies the type precedence: investment, then inbound transfer, then expense.
func classify(description string) domain.Type {
	if investmentPattern.MatchString(categorize.Fold(description)) {
		return domain.TypeInvestment
	}
	if isInbound(description) {
		return domain.TypeIncome
	}
	return domain.TypeExpense
}
