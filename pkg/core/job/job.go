// Package job 定义执行器内部追踪的Job及其注册表
package job

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Job 一次任务调度实例：取消令牌 + 单次触发的完成信号
type Job struct {
	ID        string
	BatchID   string
	CreatedAt time.Time

	ctx       context.Context
	cancel    context.CancelFunc
	cancelled atomic.Bool

	done     chan struct{}
	doneOnce sync.Once
}

// New 创建Job，parent为nil时使用context.Background()
func New(parent context.Context, batchID string) *Job {
	if parent == nil {
		parent = context.Background()
	}
	id := uuid.NewString()

	ctx := WithBatchID(WithJobID(parent, id), batchID)
	ctx, cancel := context.WithCancel(ctx)

	return &Job{
		ID:        id,
		BatchID:   batchID,
		CreatedAt: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
}

// Context 返回传给任务函数的context，即取消令牌
func (j *Job) Context() context.Context {
	return j.ctx
}

// Cancel 触发取消令牌。可重复调用，仅第一次调用返回true
func (j *Job) Cancel() bool {
	if !j.cancelled.CompareAndSwap(false, true) {
		return false
	}
	j.cancel()
	return true
}

// Cancelled 令牌是否已被执行器触发
// 父context被取消不会置位该标志
func (j *Job) Cancelled() bool {
	return j.cancelled.Load()
}

// Done 完成信号，Finish之后关闭
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Finish 完成信号只会被触发一次，同时释放context资源
func (j *Job) Finish() {
	j.doneOnce.Do(func() {
		j.cancel()
		close(j.done)
	})
}
