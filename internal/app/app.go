// Package app wires configuration into the services shared by the API server
// and the CLI.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/household-finance/internal/advisor"
	"github.com/dvloznov/household-finance/internal/categorize"
	"github.com/dvloznov/household-finance/internal/config"
	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/extract"
	"github.com/dvloznov/household-finance/internal/infra/bigquery"
	"github.com/dvloznov/household-finance/internal/infra/gcs"
	"github.com/dvloznov/household-finance/internal/infra/sqlite"
	"github.com/dvloznov/household-finance/internal/ledger"
	"github.com/dvloznov/household-finance/internal/parser"
	"github.com/dvloznov/household-finance/internal/pipeline"
	"github.com/dvloznov/household-finance/internal/store"
)

// App holds the long-lived services. Optional integrations are nil when not configured.
type App struct {
	Config      *config.Config
	Log         zerolog.Logger
	Store       store.Store
	Ledgers     *ledger.Registry
	Categorizer *categorize.Categorizer
	Importer    *pipeline.Importer

	// Gemini is nil without an API key.
	Gemini  *extract.Gemini
	Advisor *advisor.Advisor
	// Objects is nil without gcs.bucket.
	Objects *gcs.Storage

	closers []func() error
}

// New builds an App from cfg. The caller must Close it.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{Config: cfg, Log: log}

	st, err := OpenStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}
	a.Store = st
	a.closers = append(a.closers, st.Close)
	a.Ledgers = ledger.NewRegistry(st)

	cat, err := LoadCategorizer(cfg.Categories.RulesFile)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.Categorizer = cat

	if cfg.AI.APIKey != "" {
		client, err := extract.NewClient(ctx, cfg.AI.APIKey)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app.New: %w", err)
		}
		a.Gemini = extract.NewGemini(client.Models,
			extract.WithModel(cfg.AI.Model),
			extract.WithReceiptModel(cfg.AI.ReceiptModel),
			extract.WithTimeout(cfg.AI.Timeout),
			extract.WithCategories(Vocabulary(cat)),
		)
		a.Advisor = advisor.New(client.Models, cfg.AI.AdvisorModel, cfg.AI.Timeout)
	} else {
		log.Warn().Msg("No AI API key configured, unrecognized statements will be rejected")
	}

	// A typed nil would defeat the importer's nil check.
	var fallback extract.StatementExtractor
	if a.Gemini != nil {
		fallback = a.Gemini
	}
	a.Importer = pipeline.NewImporter(ParserChain(cat), fallback)

	if cfg.GCS.Bucket != "" {
		objects, err := gcs.New(ctx, cfg.GCS.Bucket)
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("app.New: %w", err)
		}
		a.Objects = objects
		a.closers = append(a.closers, objects.Close)
	}

	return a, nil
}

// Close releases every client in reverse order of creation.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// DefaultMember is the member used when a request or flag names none.
func (a *App) DefaultMember() domain.Member {
	m, err := a.Config.Household.DefaultMember()
	if err != nil {
		return domain.MemberJoint
	}
	return m
}

// OpenStore opens the configured persistence backend.
func OpenStore(ctx context.Context, cfg config.StorageConfig) (store.Store, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		st, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, fmt.Errorf("OpenStore: %w", err)
		}
		return st, nil
	case config.BackendBigQuery:
		st, err := bigquery.New(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset)
		if err != nil {
			return nil, fmt.Errorf("OpenStore: %w", err)
		}
		return st, nil
	default:
		return nil, fmt.Errorf("OpenStore: unknown storage backend %q", cfg.Backend)
	}
}

// LoadCategorizer reads the YAML rule table at path, or returns the built-in
// rules when path is empty.
func LoadCategorizer(path string) (*categorize.Categorizer, error) {
	if path == "" {
		return categorize.Default(), nil
	}
	c, err := categorize.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadCategorizer: %w", err)
	}
	return c, nil
}

// ParserChain orders the structured parsers from most to least specific.
func ParserChain(c *categorize.Categorizer) parser.Chain {
	return parser.Chain{
		parser.NewLedgerParser(parser.DefaultLedgerFormat(), c),
		parser.NewOFXParser(c),
		parser.NewCSVParser(c),
	}
}

// Vocabulary is the category list offered to the model: the seed categories
// plus every category the rules can produce, with the fallback last.
func Vocabulary(c *categorize.Categorizer) []string {
	seed := append(append([]string(nil), domain.SeedCategories...), c.Categories()...)
	return append(domain.AvailableCategories(seed, nil, nil), domain.CategoryFallback)
}
