// Package notionsync mirrors a household's transactions into a Notion database.
// The ledger stays the source of truth: pages for deleted transactions are
// archived, missing ones are created and edited ones are updated.
package notionsync

import (
	"context"
	"fmt"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/logger"
	"github.com/jomei/notionapi"
)

const (
	// BatchSize defines the number of transactions to process in a single batch
	BatchSize = 100
)

// Stats counts what a sync did, or would do on a dry run.
type Stats struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Archived  int `json:"archived"`
	Unchanged int `json:"unchanged"`
	Failed    int `json:"failed"`
}

// Syncer mirrors transactions into one Notion database.
type Syncer struct {
	notion     NotionService
	databaseID string
}

func NewSyncer(notion NotionService, databaseID string) *Syncer {
	return &Syncer{notion: notion, databaseID: databaseID}
}

// SyncTransactions makes the database match txs. Individual page failures are
// logged and counted; only a failed database query aborts the sync.
func (s *Syncer) SyncTransactions(ctx context.Context, txs []domain.Transaction, dryRun bool) (Stats, error) {
	log := logger.FromContext(ctx)
	var stats Stats

	log.Info().
		Int("transaction_count", len(txs)).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	pages, err := queryAllNotionPages(ctx, s.notion, s.databaseID)
	if err != nil {
		return stats, fmt.Errorf("SyncTransactions: %w", err)
	}
	log.Info().Int("notion_page_count", len(pages)).Msg("Retrieved existing Notion pages")

	valid := make(map[string]bool, len(txs))
	for _, tx := range txs {
		valid[tx.ID] = true
	}

	// A second page carrying the same transaction ID is stale too.
	existing := make(map[string]notionapi.Page, len(pages))
	for _, page := range pages {
		txID := extractTransactionID(page)
		if _, dup := existing[txID]; txID != "" && valid[txID] && !dup {
			existing[txID] = page
			continue
		}

		if dryRun {
			log.Info().Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
			stats.Archived++
			continue
		}
		if err := s.notion.ArchivePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
			stats.Failed++
			continue
		}
		stats.Archived++
	}

	for i := 0; i < len(txs); i += BatchSize {
		end := i + BatchSize
		if end > len(txs) {
			end = len(txs)
		}
		log.Debug().Int("batch_start", i).Int("batch_end", end).Msg("Processing batch")

		for _, tx := range txs[i:end] {
			if err := ctx.Err(); err != nil {
				return stats, fmt.Errorf("SyncTransactions: %w", err)
			}
			s.syncOne(ctx, tx, existing, dryRun, &stats)
		}
	}

	log.Info().
		Int("created", stats.Created).
		Int("updated", stats.Updated).
		Int("archived", stats.Archived).
		Int("unchanged", stats.Unchanged).
		Int("failed", stats.Failed).
		Msg("Transaction sync completed")

	return stats, nil
}

func (s *Syncer) syncOne(ctx context.Context, tx domain.Transaction, existing map[string]notionapi.Page, dryRun bool, stats *Stats) {
	log := logger.FromContext(ctx)

	page, found := existing[tx.ID]
	switch {
	case found && pageMirrors(page, tx):
		stats.Unchanged++

	case found:
		if dryRun {
			log.Info().Str("transaction_id", tx.ID).Msg("[DRY RUN] Would update existing Notion page")
			stats.Updated++
			return
		}
		if _, err := s.notion.UpdatePage(ctx, string(page.ID), TransactionToNotionProperties(tx)); err != nil {
			log.Warn().Err(err).Str("transaction_id", tx.ID).Str("page_id", string(page.ID)).Msg("Failed to update Notion page")
			stats.Failed++
			return
		}
		stats.Updated++

	default:
		if dryRun {
			log.Info().Str("transaction_id", tx.ID).Msg("[DRY RUN] Would create new Notion page")
			stats.Created++
			return
		}
		created, err := s.notion.CreatePage(ctx, s.databaseID, TransactionToNotionProperties(tx))
		if err != nil {
			log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Failed to create Notion page")
			stats.Failed++
			return
		}
		log.Debug().Str("transaction_id", tx.ID).Str("page_id", string(created.ID)).Msg("Created Notion page")
		stats.Created++
	}
}

// queryAllNotionPages queries all pages from a Notion database and returns them.
// Handles pagination automatically.
func queryAllNotionPages(ctx context.Context, notionClient NotionService, databaseID string) ([]notionapi.Page, error) {
	var allPages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := notionClient.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("queryAllNotionPages: %w", err)
		}

		allPages = append(allPages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return allPages, nil
}
