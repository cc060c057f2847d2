package jobs

import (
	"context"
	"fmt"

	"github.com/dvloznov/household-finance/internal/domain"
	"github.com/dvloznov/household-finance/internal/infra/gcs"
	"github.com/dvloznov/household-finance/internal/logger"
	"github.com/dvloznov/household-finance/internal/pipeline"
)

// LedgerSource resolves a household to its ledger. *ledger.Registry satisfies it
// through LedgerSourceFunc.
type LedgerSource interface {
	Ledger(ctx context.Context, household string) (pipeline.Ledger, error)
}

// LedgerSourceFunc adapts a function to LedgerSource.
type LedgerSourceFunc func(ctx context.Context, household string) (pipeline.Ledger, error)

func (f LedgerSourceFunc) Ledger(ctx context.Context, household string) (pipeline.Ledger, error) {
	return f(ctx, household)
}

// NewImportHandler returns a JobHandler that fetches the job's object and runs
// it through the importer.
func NewImportHandler(importer *pipeline.Importer, fetcher pipeline.ObjectFetcher, ledgers LedgerSource) JobHandler {
	return func(ctx context.Context, job Job) error {
		j, ok := job.(*ImportStatementJob)
		if !ok {
			return fmt.Errorf("import handler: unexpected job type %s", job.GetType())
		}

		log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
			"job_id":    j.JobID,
			"household": j.Household,
			"gcs_uri":   j.GCSURI,
		})
		ctx = logger.WithContext(ctx, log)

		member, err := domain.ParseMember(j.Member)
		if err != nil {
			return fmt.Errorf("import handler: %w", err)
		}
		l, err := ledgers.Ledger(ctx, j.Household)
		if err != nil {
			return fmt.Errorf("import handler: load ledger: %w", err)
		}

		filename := j.Filename
		if filename == "" {
			filename = gcs.FilenameFromURI(j.GCSURI)
		}

		res, err := importer.ImportObject(ctx, fetcher, l, j.GCSURI, filename, member)
		if err != nil {
			return err
		}

		j.Result = &ImportSummary{
			Parser:         res.Parser,
			Accepted:       len(res.Outcome.Accepted),
			DuplicateCount: res.Outcome.DuplicateCount,
			Kind:           string(res.Outcome.Kind()),
			Message:        res.Outcome.Message(),
		}
		return nil
	}
}
