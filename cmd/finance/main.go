// Command finance is the household finance CLI: statement imports, dashboards,
// budget and goals management, the AI advisor and Notion mirroring.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/app"
	"github.com/dvloznov/household-finance/internal/config"
	"github.com/dvloznov/household-finance/internal/ledger"
	"github.com/dvloznov/household-finance/internal/logger"
)

var (
	cfgFile   string
	household string
	logLevel  string

	rootCmd = &cobra.Command{
		Use:           "finance",
		Short:         "Household finance: import bank statements, track budget and goals",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./finance.yaml or ~/.config/finance/finance.yaml)")
	rootCmd.PersistentFlags().StringVar(&household, "household", "", "household id (default: household.id from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(transactionsCmd())
	rootCmd.AddCommand(budgetCmd())
	rootCmd.AddCommand(goalsCmd())
	rootCmd.AddCommand(adviseCmd())
	rootCmd.AddCommand(notionSyncCmd())
	rootCmd.AddCommand(categoriesCmd())
	rootCmd.AddCommand(uploadCmd())
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Erro: "+err.Error()))
		os.Exit(1)
	}
}

// session is what a command needs to act on one household.
type session struct {
	*app.App
	Ledger *ledger.Ledger
}

// openSession loads config, builds the services and loads the household ledger.
// Logs go to stderr so command output stays clean.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	if household != "" {
		cfg.Household.ID = household
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}

	log, err := logger.NewWithConfig(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Out: os.Stderr})
	if err != nil {
		return nil, err
	}
	ctx := logger.WithContext(cmd.Context(), log)
	cmd.SetContext(ctx)

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	l, err := a.Ledgers.Get(ctx, cfg.Household.ID)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("loading household %q: %w", cfg.Household.ID, err)
	}
	return &session{App: a, Ledger: l}, nil
}
