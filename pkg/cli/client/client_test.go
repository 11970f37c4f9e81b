package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/job-executor/pkg/api"
	"github.com/LENAX/job-executor/pkg/core/executor"
	"github.com/LENAX/job-executor/pkg/core/task"
)

func newTestServer(t *testing.T, delay time.Duration) (*Client, *executor.JobExecutor[task.Result]) {
	t.Helper()
	logger, _ := test.NewNullLogger()
	exec, err := executor.New(executor.Options[task.Result]{
		Task:   executor.TaskFunc[task.Result](task.Sleep(delay)),
		Logger: logger,
	})
	require.NoError(t, err)

	srv := httptest.NewServer(api.SetupRouter(api.Dependencies{
		Jobs:    exec,
		Logger:  logger,
		Version: "test",
	}))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = exec.TerminateAll(ctx)
		srv.Close()
	})
	return New(srv.URL), exec
}

func TestClient_Lifecycle(t *testing.T) {
	c, exec := newTestServer(t, time.Minute)
	ctx := context.Background()

	health, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, "healthy", health.Status)

	started, err := c.Execute(ctx, 4, false)
	require.NoError(t, err)
	assert.Equal(t, 4, started.Count)
	assert.NotEmpty(t, started.BatchID)

	status, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, status.Size)

	one := 1
	terminated, err := c.Terminate(ctx, &one)
	require.NoError(t, err)
	assert.Equal(t, 1, terminated.Terminated)

	terminated, err = c.Terminate(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, terminated.Terminated)

	waited, err := c.Wait(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, waited.Size)
	assert.Equal(t, 0, exec.Size())
}

func TestClient_ExecuteWait(t *testing.T) {
	c, _ := newTestServer(t, 10*time.Millisecond)

	resp, err := c.Execute(context.Background(), 2, true)
	require.NoError(t, err)
	assert.True(t, resp.Completed)
}

func TestClient_BadRequest(t *testing.T) {
	c, _ := newTestServer(t, time.Millisecond)

	_, err := c.Execute(context.Background(), -1, false)
	require.Error(t, err)
	assert.True(t, IsBadRequest(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, 400, apiErr.Code)
}

func TestClient_ConnectionError(t *testing.T) {
	c := New("http://127.0.0.1:1")
	_, err := c.Health(context.Background())
	assert.Error(t, err)
	assert.False(t, IsBadRequest(err))
}
