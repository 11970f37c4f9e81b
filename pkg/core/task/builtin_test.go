package task

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/job-executor/pkg/core/job"
)

func TestSleep_Completes(t *testing.T) {
	ctx := job.WithBatchID(job.WithJobID(context.Background(), "job-1"), "batch-1")

	res, err := Sleep(10 * time.Millisecond)(ctx)
	require.NoError(t, err)
	assert.Equal(t, "job-1", res.JobID)
	assert.Equal(t, "batch-1", res.BatchID)
	assert.GreaterOrEqual(t, res.Elapsed, 10*time.Millisecond)
}

func TestSleep_Aborted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := Sleep(time.Minute)(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), time.Second)
}

func TestSleep_ZeroDelay(t *testing.T) {
	_, err := Sleep(0)(context.Background())
	assert.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Sleep(0)(ctx)
	assert.ErrorIs(t, err, ErrAborted)
}

func TestFlaky(t *testing.T) {
	fail := Flaky(0, 0.5, func() float64 { return 0.1 })
	_, err := fail(job.WithJobID(context.Background(), "job-x"))
	require.ErrorIs(t, err, ErrInjectedFailure)
	assert.Contains(t, err.Error(), "job-x")

	pass := Flaky(0, 0.5, func() float64 { return 0.9 })
	_, err = pass(context.Background())
	assert.NoError(t, err)

	never := Flaky(0, 0, nil)
	_, err = never(context.Background())
	assert.NoError(t, err)
}
