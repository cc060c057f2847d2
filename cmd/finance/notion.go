package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dvloznov/household-finance/internal/notionsync"
)

func notionSyncCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "notion-sync",
		Short: "Mirror transactions into the configured Notion database",
		Long: `Mirror the household's transactions into a Notion database.

Pages are matched by transaction id: missing pages are created, changed ones
updated, and pages whose transaction no longer exists are archived.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd)
			if err != nil {
				return err
			}
			defer s.Close()

			cfg := s.Config.Notion
			if cfg.Token == "" || cfg.DatabaseID == "" {
				return errors.New("notion.token and notion.database_id are required")
			}
			syncer := notionsync.NewSyncer(notionsync.NewNotionClient(cfg.Token), cfg.DatabaseID)
			stats, err := syncer.SyncTransactions(cmd.Context(), s.Ledger.Transactions(), dryRun)
			if err != nil {
				return err
			}

			prefix := ""
			if dryRun {
				prefix = "[simulação] "
			}
			fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render(fmt.Sprintf("%s%d criadas, %d atualizadas, %d arquivadas, %d sem alterações, %d falhadas",
				prefix, stats.Created, stats.Updated, stats.Archived, stats.Unchanged, stats.Failed)))
			if stats.Failed > 0 {
				return fmt.Errorf("%d pages failed to sync", stats.Failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "preview changes without writing to Notion")
	return cmd
}
