package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

func init() {
	// Amounts travel as JSON numbers on every wire contract.
	decimal.MarshalJSONWithoutQuotes = true
}

// ErrInvalidTransaction is returned by Validate for transactions that break the model invariants.
var ErrInvalidTransaction = errors.New("invalid transaction")

// Type is the direction of a movement. Sign lives here, never in the amount.
type Type string

const (
	TypeIncome     Type = "Receita"
	TypeExpense    Type = "Despesa"
	TypeSavings    Type = "Poupança"
	TypeInvestment Type = "Investimento"
)

// Types lists every transaction type in display order.
var Types = []Type{TypeIncome, TypeExpense, TypeSavings, TypeInvestment}

// Valid reports whether t is one of the known types.
func (t Type) Valid() bool {
	switch t {
	case TypeIncome, TypeExpense, TypeSavings, TypeInvestment:
		return true
	}
	return false
}

// ParseType accepts the wire values plus their English names.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "receita", "income":
		return TypeIncome, nil
	case "despesa", "expense":
		return TypeExpense, nil
	case "poupança", "poupanca", "savings":
		return TypeSavings, nil
	case "investimento", "investment":
		return TypeInvestment, nil
	}
	return "", fmt.Errorf("ParseType: unknown transaction type %q", s)
}

// Member identifies which household participant owns a transaction.
type Member string

const (
	MemberMe      Member = "Eu"
	MemberPartner Member = "Esposa"
	MemberJoint   Member = "Conjunto"
)

// Valid reports whether m is one of the known members.
func (m Member) Valid() bool {
	switch m {
	case MemberMe, MemberPartner, MemberJoint:
		return true
	}
	return false
}

// ParseMember accepts the wire values plus their English names.
func ParseMember(s string) (Member, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eu", "me":
		return MemberMe, nil
	case "esposa", "partner":
		return MemberPartner, nil
	case "conjunto", "joint":
		return MemberJoint, nil
	}
	return "", fmt.Errorf("ParseMember: unknown member %q", s)
}

// Transaction is a single financial movement owned by a household.
type Transaction struct {
	ID          string          `json:"id"`
	Date        civil.Date      `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Type            `json:"type"`
	Category    string          `json:"category"`
	Member      Member          `json:"member"`
}

// Validate checks the invariants every stored transaction must hold.
func (t Transaction) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidTransaction)
	}
	if !t.Member.Valid() {
		return fmt.Errorf("%w: unknown member %q", ErrInvalidTransaction, t.Member)
	}
	return t.Candidate().Validate()
}

// Candidate strips ownership metadata from the transaction.
func (t Transaction) Candidate() Candidate {
	return Candidate{
		Date:        t.Date,
		Description: t.Description,
		Amount:      t.Amount,
		Type:        t.Type,
		Category:    t.Category,
	}
}

// Candidate is a parser-produced transaction that has no id or member yet.
type Candidate struct {
	Date        civil.Date      `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Type        Type            `json:"type"`
	Category    string          `json:"category"`
}

// Validate checks the candidate contract shared by every parser.
func (c Candidate) Validate() error {
	if !c.Date.IsValid() {
		return fmt.Errorf("%w: invalid date %v", ErrInvalidTransaction, c.Date)
	}
	if strings.TrimSpace(c.Description) == "" {
		return fmt.Errorf("%w: empty description", ErrInvalidTransaction)
	}
	if c.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount %s", ErrInvalidTransaction, c.Amount)
	}
	if !c.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidTransaction, c.Type)
	}
	return nil
}

// Transaction promotes the candidate into an owned transaction.
func (c Candidate) Transaction(id string, member Member) Transaction {
	return Transaction{
		ID:          id,
		Date:        c.Date,
		Description: c.Description,
		Amount:      c.Amount,
		Type:        c.Type,
		Category:    c.Category,
		Member:      member,
	}
}

// TruncateDescription caps s at max runes.
func TruncateDescription(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:max]))
}
