// Package pipeline wires statement import end to end: normalize, parse with the
// structured parsers, fall back to the AI extractor, merge against the ledger and
// persist.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/extract"
	"github.com/dvloznov/household-finance/internal/logger"
	"github.com/dvloznov/household-finance/internal/merge"
	"github.com/dvloznov/household-finance/internal/parser"
)

// Importer runs the import steps.
type Importer struct {
	chain     parser.Chain
	extractor extract.StatementExtractor
	newID     func() string
}

// NewImporter builds an Importer. A nil extractor disables the AI fallback.
func NewImporter(chain parser.Chain, extractor extract.StatementExtractor) *Importer {
	return &Importer{chain: chain, extractor: extractor}
}

// WithIDGenerator overrides the id generator used for accepted rows.
func (i *Importer) WithIDGenerator(newID func() string) *Importer {
	i.newID = newID
	return i
}

// Input describes one statement to import.
type Input struct {
	Filename string
	Data     []byte
	Text     string
	Member   domain.Member
	DryRun   bool
}

// Result reports what an import did.
type Result struct {
	Parser  string        `json:"parser"`
	DryRun  bool          `json:"dry_run"`
	Outcome merge.Outcome `json:"outcome"`
}

// Steps returns the ordered step list.
func (i *Importer) Steps() []PipelineStep {
	return []PipelineStep{
		&NormalizeStep{},
		&StructuredParseStep{Chain: i.chain},
		&AIFallbackStep{Extractor: i.extractor},
		&LockedStep{Steps: []PipelineStep{
			&LoadExistingStep{},
			&MergeStep{NewID: i.newID},
			&PersistStep{},
		}},
	}
}

// Import runs every step against the ledger and returns the merge outcome.
func (i *Importer) Import(ctx context.Context, l Ledger, in Input) (*Result, error) {
	if !in.Member.Valid() {
		return nil, fmt.Errorf("Import: unknown member %q", in.Member)
	}

	state := &PipelineState{
		Filename: in.Filename,
		Data:     in.Data,
		Text:     in.Text,
		Member:   in.Member,
		DryRun:   in.DryRun,
		Ledger:   l,
	}

	log := logger.FromContext(ctx)
	start := time.Now()
	for _, step := range i.Steps() {
		if err := step.Execute(ctx, state); err != nil {
			log.Warn().
				Err(err).
				Str("household", l.Household()).
				Str("filename", in.Filename).
				Msg("Import failed")
			return nil, fmt.Errorf("Import: %w", err)
		}
	}

	log.Info().
		Str("household", l.Household()).
		Str("filename", in.Filename).
		Str("parser", state.Parser).
		Int("candidates", len(state.Candidates)).
		Int("accepted", len(state.Outcome.Accepted)).
		Int("duplicates", state.Outcome.DuplicateCount).
		Bool("dry_run", in.DryRun).
		Dur("duration", time.Since(start)).
		Msg("Statement imported")

	return &Result{Parser: state.Parser, DryRun: in.DryRun, Outcome: state.Outcome}, nil
}

// ImportObject fetches a stored statement and imports it.
func (i *Importer) ImportObject(ctx context.Context, fetcher ObjectFetcher, l Ledger, uri string, filename string, member domain.Member) (*Result, error) {
	data, err := fetcher.Fetch(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("ImportObject: %w", err)
	}
	return i.Import(ctx, l, Input{Filename: filename, Data: data, Member: member})
}
