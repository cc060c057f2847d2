// Package parser holds the deterministic statement parsers. Each parser either
// recognizes a document and returns its rows, or declines so the caller can fall
// back to AI extraction.
package parser

import "github.com/dvloznov/household-finance/internal/domain"

// Result is Matched(candidates) or NotRecognized. A matched result may hold zero rows.
type Result struct {
	recognized bool
	candidates []domain.Candidate
}

// Matched reports a recognized document with its extracted rows.
func Matched(candidates []domain.Candidate) Result {
	return Result{recognized: true, candidates: candidates}
}

// NotRecognized reports that the parser does not handle this format.
func NotRecognized() Result {
	return Result{}
}

// Recognized reports whether the format was detected.
func (r Result) Recognized() bool { return r.recognized }

// Candidates returns the extracted rows. Always empty when not recognized.
func (r Result) Candidates() []domain.Candidate { return r.candidates }

// Parser extracts candidates from normalized statement text.
type Parser interface {
	Name() string
	Parse(text string) Result
}

// Chain tries parsers in order.
type Chain []Parser

// Parse returns the first recognized result and the name of the parser that produced it.
func (c Chain) Parse(text string) (Result, string) {
	for _, p := range c {
		if res := p.Parse(text); res.Recognized() {
			return res, p.Name()
		}
	}
	return NotRecognized(), ""
}
