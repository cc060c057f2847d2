package parser

import (
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/aclindsa/ofxgo"
	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/shopspring/decimal"
)

var ofxMarker = regexp.MustCompile(`(?i)<OFX>`)

// OFXParser reads OFX/QFX bank and credit card statements.
type OFXParser struct {
	categorizer *categorize.Categorizer
}

// NewOFXParser creates an OFX parser that categorizes rows with c.
func NewOFXParser(c *categorize.Categorizer) *OFXParser {
	if c == nil {
		c = categorize.Default()
	}
	return &OFXParser{categorizer: c}
}

func (p *OFXParser) Name() string { return "ofx" }

// Parse recognizes any document carrying an <OFX> root. A document that fails to
// decode is still a recognized format and yields no rows.
func (p *OFXParser) Parse(text string) Result {
	if !ofxMarker.MatchString(text) {
		return NotRecognized()
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(strings.TrimLeft(text, " \t\r\n")))
	if err != nil {
		return Matched([]domain.Candidate{})
	}

	candidates := []domain.Candidate{}
	for _, msg := range resp.Bank {
		if stmt, ok := msg.(*ofxgo.StatementResponse); ok && stmt.BankTranList != nil {
			candidates = append(candidates, p.convert(stmt.BankTranList.Transactions)...)
		}
	}
	for _, msg := range resp.CreditCard {
		if stmt, ok := msg.(*ofxgo.CCStatementResponse); ok && stmt.BankTranList != nil {
			candidates = append(candidates, p.convert(stmt.BankTranList.Transactions)...)
		}
	}
	return Matched(candidates)
}

func (p *OFXParser) convert(txs []ofxgo.Transaction) []domain.Candidate {
	var out []domain.Candidate
	for _, tx := range txs {
		signed, err := decimal.NewFromString(tx.TrnAmt.FloatString(2))
		if err != nil || signed.IsZero() {
			continue
		}

		description := ofxDescription(tx)
		if description == "" {
			continue
		}

		typ := domain.TypeIncome
		if signed.IsNegative() {
			typ = domain.TypeExpense
			if investmentPattern.MatchString(categorize.Fold(description)) {
				typ = domain.TypeInvestment
			}
		}

		out = append(out, domain.Candidate{
			Date:        civil.DateOf(tx.DtPosted.Time),
			Description: domain.TruncateDescription(description, MaxDescriptionRunes),
			Amount:      signed.Abs(),
			Type:        typ,
			Category:    p.categorizer.Categorize(description, typ),
		})
	}
	return out
}

// ofxDescription prefers PAYEE, then NAME, then MEMO.
func ofxDescription(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}
	if name := strings.TrimSpace(string(tx.Name)); name != "" {
		return name
	}
	return strings.TrimSpace(string(tx.Memo))
}
