package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewJob(t *testing.T) {
	j := New(context.Background(), "batch-1")

	assert.NotEmpty(t, j.ID)
	assert.Equal(t, "batch-1", j.BatchID)
	assert.NotZero(t, j.CreatedAt)
	assert.False(t, j.Cancelled())
	select {
	case <-j.Done():
		t.Fatal("新建Job不应处于完成状态")
	default:
	}
	assert.NoError(t, j.Context().Err())

	// context携带job/batch信息
	assert.Equal(t, j.ID, GetJobID(j.Context()))
	assert.Equal(t, "batch-1", GetBatchID(j.Context()))
}

func TestJob_CancelIsIdempotent(t *testing.T) {
	j := New(context.Background(), "")

	assert.True(t, j.Cancel())
	assert.False(t, j.Cancel())
	assert.True(t, j.Cancelled())
	assert.ErrorIs(t, j.Context().Err(), context.Canceled)
}

func TestJob_ParentCancelDoesNotSetFlag(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	j := New(parent, "")

	cancel()

	assert.Error(t, j.Context().Err())
	assert.False(t, j.Cancelled())
	// 执行器仍可触发一次
	assert.True(t, j.Cancel())
}

func TestJob_FinishOnce(t *testing.T) {
	j := New(context.Background(), "")

	j.Finish()
	j.Finish()

	select {
	case <-j.Done():
	default:
		t.Fatal("完成信号未关闭")
	}
	// Finish释放context但不置位取消标志
	assert.False(t, j.Cancelled())
}

func TestContextKeys_Missing(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "", GetJobID(ctx))
	assert.Equal(t, "", GetBatchID(ctx))
}
