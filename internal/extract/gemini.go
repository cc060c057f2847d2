// Package extract delegates statement and receipt extraction to Gemini and
// validates the JSON it returns against the candidate transaction schema.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/logger"
	"google.golang.org/genai"
)

// ErrExtractionFailed wraps every transport, format and schema failure of a model call.
var ErrExtractionFailed = errors.New("extraction failed")

// StatementExtractor turns statement text into candidate transactions.
type StatementExtractor interface {
	ExtractStatement(ctx context.Context, text string) ([]domain.Candidate, error)
}

// ReceiptExtractor turns a receipt photo into a single candidate transaction.
type ReceiptExtractor interface {
	ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*domain.Candidate, error)
}

// Generator is the slice of the genai client used here. *genai.Models satisfies it.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewClient creates a Gemini API client. An empty apiKey falls back to the
// GOOGLE_API_KEY / Vertex environment variables read by the SDK.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	cfg := &genai.ClientConfig{APIKey: apiKey}
	if apiKey != "" {
		cfg.Backend = genai.BackendGeminiAPI
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("NewClient: create genai client: %w", err)
	}
	return client, nil
}

// Gemini implements StatementExtractor and ReceiptExtractor.
type Gemini struct {
	gen          Generator
	model        string
	receiptModel string
	timeout      time.Duration
	now          func() time.Time
	categories   []string
}

// Option configures Gemini.
type Option func(*Gemini)

func WithModel(model string) Option {
	return func(g *Gemini) {
		if model != "" {
			g.model = model
		}
	}
}

func WithReceiptModel(model string) Option {
	return func(g *Gemini) {
		if model != "" {
			g.receiptModel = model
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(g *Gemini) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithClock overrides the clock used for "today" in prompts and receipt defaults.
func WithClock(now func() time.Time) Option {
	return func(g *Gemini) { g.now = now }
}

// WithCategories sets the category vocabulary offered to the model.
func WithCategories(categories []string) Option {
	return func(g *Gemini) {
		if len(categories) > 0 {
			g.categories = categories
		}
	}
}

// NewGemini builds an extractor over gen, usually client.Models.
func NewGemini(gen Generator, opts ...Option) *Gemini {
	g := &Gemini{
		gen:          gen,
		model:        DefaultStatementModel,
		receiptModel: DefaultReceiptModel,
		timeout:      DefaultTimeout,
		now:          time.Now,
		categories:   domain.SeedCategories,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// ExtractStatement sends the statement text to the model. The result is all-or-nothing:
// any invalid row fails the whole extraction.
func (g *Gemini) ExtractStatement(ctx context.Context, text string) ([]domain.Candidate, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	log := logger.FromContext(ctx)

	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: buildStatementPrompt(g.now(), g.categories, text)}},
		},
	}

	start := time.Now()
	resp, err := g.gen.GenerateContent(ctx, g.model, contents, statementConfig())
	if err != nil {
		return nil, fmt.Errorf("ExtractStatement: %w: generate content: %w", ErrExtractionFailed, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("ExtractStatement: %w: empty response from model", ErrExtractionFailed)
	}

	candidates, err := transformStatementOutput(cleanModelJSON(rawText, '[', ']'), g.categories)
	if err != nil {
		log.Warn().Err(err).Str("model", g.model).Msg("Model output failed validation")
		return nil, fmt.Errorf("ExtractStatement: %w: %w", ErrExtractionFailed, err)
	}

	log.Info().
		Str("model", g.model).
		Int("transactions", len(candidates)).
		Dur("duration", time.Since(start)).
		Msg("Statement extracted by model")

	return candidates, nil
}

// ExtractReceipt reads one receipt photo. Type is restricted to income or expense.
func (g *Gemini) ExtractReceipt(ctx context.Context, image []byte, mimeType string) (*domain.Candidate, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("ExtractReceipt: %w: empty image", ErrExtractionFailed)
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{
					InlineData: &genai.Blob{
						MIMEType: mimeType,
						Data:     image,
					},
				},
				{Text: buildReceiptPrompt(g.now(), g.categories)},
			},
		},
	}

	resp, err := g.gen.GenerateContent(ctx, g.receiptModel, contents, receiptConfig())
	if err != nil {
		return nil, fmt.Errorf("ExtractReceipt: %w: generate content: %w", ErrExtractionFailed, err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("ExtractReceipt: %w: empty response from model", ErrExtractionFailed)
	}

	candidate, err := transformReceiptOutput(cleanModelJSON(rawText, '{', '}'), g.now(), g.categories)
	if err != nil {
		return nil, fmt.Errorf("ExtractReceipt: %w: %w", ErrExtractionFailed, err)
	}
	return candidate, nil
}

var (
	_ StatementExtractor = (*Gemini)(nil)
	_ ReceiptExtractor   = (*Gemini)(nil)
)
