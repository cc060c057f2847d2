// Package merge reconciles freshly parsed candidates with a household's stored transactions.
package merge

import (
	"encoding/json"
	"fmt"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Epsilon is the amount tolerance below which two movements count as the same event.
var Epsilon = decimal.RequireFromString("0.01")

// Kind classifies a merge outcome.
type Kind string

const (
	NothingExtracted  Kind = "nothing_extracted"
	AllDuplicates     Kind = "all_duplicates"
	NewWithDuplicates Kind = "new_with_duplicates"
	AllNew            Kind = "all_new"
)

// SameEvent reports whether a candidate and a stored transaction describe the same movement.
// Descriptions are ignored because a manual entry rarely matches the bank's wording.
func SameEvent(a domain.Candidate, b domain.Transaction) bool {
	return a.Date == b.Date &&
		a.Type == b.Type &&
		a.Amount.Sub(b.Amount).Abs().LessThan(Epsilon)
}

// Outcome is the result of one merge.
type Outcome struct {
	Accepted       []domain.Transaction
	DuplicateCount int
}

// Kind derives the outcome classification from the counts.
func (o Outcome) Kind() Kind {
	switch {
	case len(o.Accepted) == 0 && o.DuplicateCount == 0:
		return NothingExtracted
	case len(o.Accepted) == 0:
		return AllDuplicates
	case o.DuplicateCount > 0:
		return NewWithDuplicates
	default:
		return AllNew
	}
}

// Message is the user-facing summary.
func (o Outcome) Message() string {
	switch o.Kind() {
	case NothingExtracted:
		return "Não foram encontradas transações válidas no texto."
	case AllDuplicates:
		return fmt.Sprintf("Todas as %d transações detetadas já existem no sistema.", o.DuplicateCount)
	case NewWithDuplicates:
		return fmt.Sprintf("%d transações importadas com sucesso (%d duplicadas ignoradas).", len(o.Accepted), o.DuplicateCount)
	default:
		return fmt.Sprintf("%d transações importadas com sucesso.", len(o.Accepted))
	}
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	accepted := o.Accepted
	if accepted == nil {
		accepted = []domain.Transaction{}
	}
	return json.Marshal(struct {
		Accepted       []domain.Transaction `json:"accepted"`
		DuplicateCount int                  `json:"duplicate_count"`
		Kind           Kind                 `json:"kind"`
		Message        string               `json:"message"`
	}{accepted, o.DuplicateCount, o.Kind(), o.Message()})
}

// Merge drops candidates that match an existing transaction and promotes the rest,
// assigning each a fresh id and the given member. Candidates are only compared
// against existing, never against each other. A nil newID uses uuid.NewString.
func Merge(candidates []domain.Candidate, existing []domain.Transaction, member domain.Member, newID func() string) Outcome {
	if newID == nil {
		newID = uuid.NewString
	}

	var out Outcome
	for _, c := range candidates {
		if isDuplicate(c, existing) {
			out.DuplicateCount++
			continue
		}
		out.Accepted = append(out.Accepted, c.Transaction(newID(), member))
	}
	return out
}

func isDuplicate(c domain.Candidate, existing []domain.Transaction) bool {
	for _, tx := range existing {
		if SameEvent(c, tx) {
			return true
		}
	}
	return false
}
