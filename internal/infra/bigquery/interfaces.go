// Package bigquery is the cloud persistence backend. Rows live in one dataset,
// partitioned by household through a column.
package bigquery

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/household-finance/internal/store"
)

const (
	transactionsTable = "transactions"
	budgetTable       = "budget_items"
	goalsTable        = "goals"
)

// Storage implements store.Store on BigQuery. It holds a shared client so each
// operation reuses one connection.
type Storage struct {
	client    *bigquery.Client
	projectID string
	datasetID string
}

var _ store.Store = (*Storage)(nil)

// New creates a Storage with its own BigQuery client.
func New(ctx context.Context, projectID, datasetID string) (*Storage, error) {
	if projectID == "" || datasetID == "" {
		return nil, fmt.Errorf("bigquery.New: project and dataset are required")
	}
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("bigquery.New: creating client: %w", err)
	}
	return NewWithClient(client, projectID, datasetID), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *bigquery.Client, projectID, datasetID string) *Storage {
	return &Storage{client: client, projectID: projectID, datasetID: datasetID}
}

// Close closes the BigQuery client connection.
func (s *Storage) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

func (s *Storage) table(name string) *bigquery.Table {
	return s.client.DatasetInProject(s.projectID, s.datasetID).Table(name)
}

// qualified returns the backquoted `project.dataset.table` name for SQL text.
func (s *Storage) qualified(name string) string {
	return qualifiedName(s.projectID, s.datasetID, name)
}

func qualifiedName(projectID, datasetID, table string) string {
	return "`" + projectID + "." + datasetID + "." + table + "`"
}

// runDML runs a parameterized statement and returns the number of affected rows.
func (s *Storage) runDML(ctx context.Context, sql string, params []bigquery.QueryParameter) (int64, error) {
	q := s.client.Query(sql)
	q.Parameters = params

	job, err := q.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("run query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return 0, fmt.Errorf("wait for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return 0, fmt.Errorf("job error: %w", err)
	}

	if status.Statistics != nil {
		if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
			return qs.NumDMLAffectedRows, nil
		}
	}
	return 0, nil
}

// runDMLExpectRow is runDML for statements that must touch a row.
func (s *Storage) runDMLExpectRow(ctx context.Context, op, id, sql string, params []bigquery.QueryParameter) error {
	n, err := s.runDML(ctx, sql, params)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s %q: %w", op, id, store.ErrNotFound)
	}
	return nil
}
