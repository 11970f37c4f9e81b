package cmd

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunJobs_Completes(t *testing.T) {
	logger, _ := test.NewNullLogger()

	summary, err := runJobs(context.Background(), runOptions{Count: 5, Delay: 10 * time.Millisecond}, logger)
	require.NoError(t, err)
	assert.EqualValues(t, 5, summary.Started)
	assert.EqualValues(t, 5, summary.Succeeded)
	assert.Equal(t, 0, summary.Terminated)
	assert.EqualValues(t, 1, summary.Drains)
	assert.Equal(t, 0, summary.Size)
}

func TestRunJobs_TerminatesSome(t *testing.T) {
	logger, _ := test.NewNullLogger()

	summary, err := runJobs(context.Background(), runOptions{
		Count:          10,
		Delay:          time.Minute,
		Terminate:      10,
		TerminateAfter: 20 * time.Millisecond,
	}, logger)
	require.NoError(t, err)
	assert.Equal(t, 10, summary.Terminated)
	assert.EqualValues(t, 10, summary.Cancelled)
	assert.EqualValues(t, 10, summary.Failed)
	assert.EqualValues(t, 1, summary.Drains)
}

func TestRunJobs_InterruptTerminatesAll(t *testing.T) {
	logger, _ := test.NewNullLogger()
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	summary, err := runJobs(ctx, runOptions{Count: 3, Delay: time.Minute}, logger)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Terminated)
	assert.EqualValues(t, 3, summary.Cancelled)
	assert.Equal(t, 0, summary.Size)
}

func TestRunJobs_NegativeCount(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := runJobs(context.Background(), runOptions{Count: -1}, logger)
	assert.Error(t, err)
}

func TestRunJobs_FailRate(t *testing.T) {
	logger, _ := test.NewNullLogger()
	summary, err := runJobs(context.Background(), runOptions{Count: 4, FailRate: 1}, logger)
	require.NoError(t, err)
	assert.EqualValues(t, 4, summary.Failed)
	assert.EqualValues(t, 0, summary.Cancelled)
}
