package executor

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
)

// Batch 一次Start调用创建的Job集合
type Batch struct {
	id        string
	size      int
	remaining atomic.Int64
	done      chan struct{}
}

func newBatch(size int) *Batch {
	b := &Batch{
		id:   uuid.NewString(),
		size: size,
		done: make(chan struct{}),
	}
	b.remaining.Store(int64(size))
	if size == 0 {
		close(b.done)
	}
	return b
}

// ID 批次ID
func (b *Batch) ID() string {
	return b.id
}

// Size 批次创建的Job数量
func (b *Batch) Size() int {
	return b.size
}

// Done 批次内所有Job完成收尾后关闭
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Wait 阻塞直到批次完成或ctx结束
func (b *Batch) Wait(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Batch) jobFinished() {
	if b.remaining.Add(-1) == 0 {
		close(b.done)
	}
}
