package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/extract"
	"github.com/dvloznov/household-finance/internal/logger"
	"github.com/dvloznov/household-finance/internal/merge"
	"github.com/dvloznov/household-finance/internal/parser"
	"github.com/dvloznov/household-finance/internal/statement"
)

// ErrNotRecognized is returned when no structured parser claims the statement
// and no AI extractor is configured.
var ErrNotRecognized = errors.New("statement format not recognized")

// ParserAI names the AI fallback in PipelineState.Parser.
const ParserAI = "ai"

// PipelineStep represents a single step in the import pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	// Inputs. Either Data (a file) or Text (pasted) is set.
	Filename string
	Data     []byte
	Text     string
	Member   domain.Member
	DryRun   bool
	Ledger   Ledger

	// Filled in by the steps.
	Parser     string
	Recognized bool
	Candidates []domain.Candidate
	Existing   []domain.Transaction
	Outcome    merge.Outcome
}

// Step 1: NormalizeStep turns the raw input into normalized text.
type NormalizeStep struct{}

func (s *NormalizeStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Data == nil {
		state.Text = statement.Normalize(state.Text)
		return nil
	}
	text, err := statement.FromFile(state.Filename, state.Data)
	if err != nil {
		return fmt.Errorf("NormalizeStep: %w", err)
	}
	state.Text = text
	return nil
}

// Step 2: StructuredParseStep tries the known formats in order.
type StructuredParseStep struct {
	Chain parser.Chain
}

func (s *StructuredParseStep) Execute(ctx context.Context, state *PipelineState) error {
	result, name := s.Chain.Parse(state.Text)
	if !result.Recognized() {
		return nil
	}
	state.Recognized = true
	state.Parser = name
	state.Candidates = result.Candidates()
	return nil
}

// Step 3: AIFallbackStep runs only when no structured parser recognized the text.
// A recognized statement with zero rows never reaches the model.
type AIFallbackStep struct {
	Extractor extract.StatementExtractor
}

func (s *AIFallbackStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.Recognized {
		return nil
	}
	if s.Extractor == nil {
		return ErrNotRecognized
	}
	candidates, err := s.Extractor.ExtractStatement(ctx, state.Text)
	if err != nil {
		return err
	}
	state.Parser = ParserAI
	state.Candidates = candidates
	return nil
}

// LockedStep runs Steps under the ledger's import lock, so the snapshot a merge
// reads is still current when its rows are appended.
type LockedStep struct {
	Steps []PipelineStep
}

func (s *LockedStep) Execute(ctx context.Context, state *PipelineState) error {
	return state.Ledger.WithImportLock(ctx, func(ctx context.Context) error {
		for _, step := range s.Steps {
			if err := step.Execute(ctx, state); err != nil {
				return err
			}
		}
		return nil
	})
}

// Step 4: LoadExistingStep snapshots the ledger for duplicate detection.
type LoadExistingStep struct{}

func (s *LoadExistingStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Existing = state.Ledger.Transactions()
	return nil
}

// Step 5: MergeStep drops duplicates and promotes the rest.
type MergeStep struct {
	NewID func() string
}

func (s *MergeStep) Execute(ctx context.Context, state *PipelineState) error {
	state.Outcome = merge.Merge(state.Candidates, state.Existing, state.Member, s.NewID)
	return nil
}

// Step 6: PersistStep appends the accepted rows unless this is a dry run.
type PersistStep struct{}

func (s *PersistStep) Execute(ctx context.Context, state *PipelineState) error {
	if state.DryRun || len(state.Outcome.Accepted) == 0 {
		return nil
	}
	if err := state.Ledger.AppendTransactions(ctx, state.Outcome.Accepted); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().
		Str("household", state.Ledger.Household()).
		Int("accepted", len(state.Outcome.Accepted)).
		Msg("Imported transactions persisted")
	return nil
}
