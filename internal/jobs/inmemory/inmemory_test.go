package inmemory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dvloznov/household-finance/internal/jobs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForStatus(t *testing.T, s *Store, id string, want jobs.JobStatus) *jobs.ImportStatementJob {
	t.Helper()
	var got *jobs.ImportStatementJob
	require.Eventually(t, func() bool {
		j, err := s.GetJob(context.Background(), id)
		if err != nil {
			return false
		}
		got = j
		return j.Status == want
	}, 2*time.Second, 10*time.Millisecond)
	return got
}

func TestQueueCompletesJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(4, 2, store)
	require.NoError(t, q.Start(ctx, func(_ context.Context, job jobs.Job) error {
		job.(*jobs.ImportStatementJob).Result = &jobs.ImportSummary{Accepted: 3}
		return nil
	}))
	defer q.Stop(context.Background())

	job := &jobs.ImportStatementJob{Household: "casa", Member: "Eu", GCSURI: "gs://b/o.csv"}
	require.NoError(t, q.PublishImportStatement(ctx, job))
	assert.NotEmpty(t, job.JobID)
	assert.Equal(t, 0, job.MaxRetries)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	require.NotNil(t, done.Result)
	assert.Equal(t, 3, done.Result.Accepted)
	assert.NotNil(t, done.CompletedAt)
}

func TestQueueFailedJobIsNotRetriedByDefault(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	store := NewStore()
	q := NewQueue(4, 1, store)
	require.NoError(t, q.Start(ctx, func(context.Context, jobs.Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}))
	defer q.Stop(context.Background())

	job := &jobs.ImportStatementJob{Household: "casa"}
	require.NoError(t, q.PublishImportStatement(ctx, job))

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, "boom", failed.Error)
	assert.Equal(t, 0, failed.RetryCount)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueRetriesWithBudget(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	store := NewStore()
	q := NewQueue(4, 1, store).WithMaxRetries(2).WithRetryDelay(time.Millisecond)
	require.NoError(t, q.Start(ctx, func(context.Context, jobs.Job) error {
		if atomic.AddInt32(&calls, 1) < 3 {
			return errors.New("bucket unavailable")
		}
		return nil
	}))
	defer q.Stop(context.Background())

	job := &jobs.ImportStatementJob{Household: "casa"}
	require.NoError(t, q.PublishImportStatement(ctx, job))
	assert.Equal(t, 2, job.MaxRetries)

	done := waitForStatus(t, store, job.JobID, jobs.JobStatusCompleted)
	assert.Equal(t, 2, done.RetryCount)
	assert.Empty(t, done.Error)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestQueueRetryBudgetExhausted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls int32
	store := NewStore()
	q := NewQueue(4, 1, store).WithMaxRetries(1).WithRetryDelay(time.Millisecond)
	require.NoError(t, q.Start(ctx, func(context.Context, jobs.Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}))
	defer q.Stop(context.Background())

	job := &jobs.ImportStatementJob{Household: "casa"}
	require.NoError(t, q.PublishImportStatement(ctx, job))

	failed := waitForStatus(t, store, job.JobID, jobs.JobStatusFailed)
	assert.Equal(t, 1, failed.RetryCount)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestQueueWorkerDoesNotShareCallerJob(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewStore()
	q := NewQueue(4, 2, store)
	seen := make(chan *jobs.ImportStatementJob, 1)
	require.NoError(t, q.Start(ctx, func(_ context.Context, job jobs.Job) error {
		seen <- job.(*jobs.ImportStatementJob)
		return nil
	}))
	defer q.Stop(context.Background())

	job := &jobs.ImportStatementJob{Household: "casa"}
	require.NoError(t, q.PublishImportStatement(ctx, job))
	id, status := job.JobID, job.Status

	worked := <-seen
	assert.NotSame(t, job, worked)
	assert.Equal(t, id, worked.JobID)

	waitForStatus(t, store, id, jobs.JobStatusCompleted)
	assert.Equal(t, jobs.JobStatusPending, status)
	assert.Equal(t, jobs.JobStatusPending, job.Status)
	assert.Nil(t, job.StartedAt)
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue(1, 1, nil)
	require.NoError(t, q.Close())

	err := q.PublishImportStatement(context.Background(), &jobs.ImportStatementJob{})
	assert.ErrorIs(t, err, jobs.ErrQueueClosed)
	assert.ErrorIs(t, q.Start(context.Background(), nil), jobs.ErrQueueClosed)
	assert.NoError(t, q.Stop(context.Background()), "stop is idempotent")
}

func TestStoreListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	base := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	for i, h := range []string{"casa", "casa", "outra"} {
		require.NoError(t, s.SaveJob(ctx, &jobs.ImportStatementJob{
			JobID:     string(rune('a' + i)),
			Household: h,
			Status:    jobs.JobStatusPending,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.UpdateJobStatus(ctx, "a", jobs.JobStatusFailed, "bad"))

	all, err := s.ListJobs(ctx, jobs.JobFilter{Household: "casa"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "b", all[0].JobID, "newest first")

	failed, err := s.ListJobs(ctx, jobs.JobFilter{Status: jobs.JobStatusFailed})
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].Error)

	paged, err := s.ListJobs(ctx, jobs.JobFilter{Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, "b", paged[0].JobID)

	empty, err := s.ListJobs(ctx, jobs.JobFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	assert.Error(t, s.SaveJob(ctx, &jobs.ImportStatementJob{}))
	_, err := s.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, jobs.ErrJobNotFound)
	assert.ErrorIs(t, s.UpdateJobStatus(ctx, "missing", jobs.JobStatusFailed, ""), jobs.ErrJobNotFound)
}

func TestStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	job := &jobs.ImportStatementJob{JobID: "x", Result: &jobs.ImportSummary{Accepted: 1}}
	require.NoError(t, s.SaveJob(ctx, job))

	job.Result.Accepted = 99
	got, err := s.GetJob(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Result.Accepted)
}
