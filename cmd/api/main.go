package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/household-finance/internal/api/handlers"
	"github.com/dvloznov/household-finance/internal/api/middleware"
	"github.com/dvloznov/household-finance/internal/app"
	"github.com/dvloznov/household-finance/internal/config"
	"github.com/dvloznov/household-finance/internal/extract"
	"github.com/dvloznov/household-finance/internal/jobs"
	"github.com/dvloznov/household-finance/internal/jobs/inmemory"
	"github.com/dvloznov/household-finance/internal/logger"
	"github.com/dvloznov/household-finance/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to finance.yaml (default: ./finance.yaml or ~/.config/finance/finance.yaml)")
	flag.Parse()

	bootLog := logger.New()

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log, err := logger.NewWithConfig(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to create logger")
	}

	ctx := logger.WithContext(context.Background(), log)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialise services")
	}
	defer a.Close()

	if a.Objects == nil {
		log.Warn().Msg("No GCS bucket configured - statement uploads and background imports will be disabled")
	}

	// Job infrastructure
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(cfg.Jobs.Buffer, cfg.Jobs.Workers, jobStore).WithMaxRetries(cfg.Jobs.MaxRetries)

	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()

	if a.Objects != nil {
		ledgers := jobs.LedgerSourceFunc(func(ctx context.Context, household string) (pipeline.Ledger, error) {
			return a.Ledgers.Get(ctx, household)
		})
		jobHandler := jobs.NewImportHandler(a.Importer, a.Objects, ledgers)

		go func() {
			log.Info().Int("workers", cfg.Jobs.Workers).Msg("Starting job workers")
			if err := jobQueue.Start(workerCtx, jobHandler); err != nil {
				log.Error().Err(err).Msg("Job worker stopped with error")
			}
		}()
	}

	// Optional integrations stay nil interfaces when unconfigured.
	var (
		publisher jobs.Publisher
		uploader  handlers.Uploader
		receipts  extract.ReceiptExtractor
		adviser   handlers.Adviser
	)
	if a.Objects != nil {
		publisher = jobQueue
		uploader = a.Objects
	}
	if a.Gemini != nil {
		receipts = a.Gemini
	}
	if a.Advisor != nil {
		adviser = a.Advisor
	}

	defaultMember := a.DefaultMember()
	mux := handlers.NewRouter(handlers.Handlers{
		Imports:      handlers.NewImportsHandler(a.Ledgers, a.Importer, publisher, uploader, defaultMember, log),
		Transactions: handlers.NewTransactionsHandler(a.Ledgers, defaultMember, log),
		Budget:       handlers.NewBudgetHandler(a.Ledgers, log),
		Goals:        handlers.NewGoalsHandler(a.Ledgers, log),
		Dashboard:    handlers.NewDashboardHandler(a.Ledgers, cfg.Recurring.Keywords, log),
		Categories:   handlers.NewCategoriesHandler(a.Ledgers, app.Vocabulary(a.Categorizer), log),
		Receipts:     handlers.NewReceiptsHandler(receipts, log),
		Advisor:      handlers.NewAdvisorHandler(a.Ledgers, adviser, log),
		Jobs:         handlers.NewJobsHandler(jobStore, log),
	})

	handler := middleware.Recovery(log)(
		middleware.RequestID(
			middleware.Logger(log)(
				middleware.CORS(
					middleware.Auth(cfg.Household.ID)(mux),
				),
			),
		),
	)

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Str("storage", cfg.Storage.Backend).Msg("Starting API server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	// Stop job queue and wait for in-flight jobs
	cancelWorker()
	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error stopping job queue")
	}
	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Server exited")
}
