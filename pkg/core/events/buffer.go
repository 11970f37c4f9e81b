package events

import (
	"sync/atomic"
)

// DefaultBufferCapacity 订阅缓冲区默认容量
const DefaultBufferCapacity = 256

// BufferStats 缓冲区统计
type BufferStats struct {
	TotalIn  int64   `json:"total_in"`
	TotalOut int64   `json:"total_out"`
	Dropped  int64   `json:"dropped"`
	Usage    float64 `json:"usage"`
}

// Buffer 订阅端的有界事件缓冲区
// 只有一个生产者负责Push与关闭；缓冲区满时丢弃新事件，慢消费者不会拖住总线
type Buffer struct {
	data         chan *Event
	capacity     int
	threshold    float64
	backpressure atomic.Bool

	totalIn  atomic.Int64
	totalOut atomic.Int64
	dropped  atomic.Int64

	onBackpressure func(usage float64)
}

// NewBuffer 创建缓冲区，使用率达到threshold时进入背压状态
func NewBuffer(capacity int, threshold float64) *Buffer {
	if capacity <= 0 {
		capacity = DefaultBufferCapacity
	}
	if threshold <= 0 || threshold > 1 {
		threshold = 0.8
	}
	return &Buffer{
		data:      make(chan *Event, capacity),
		capacity:  capacity,
		threshold: threshold,
	}
}

// OnBackpressure 设置进入背压时的回调，须在开始Push之前调用
func (b *Buffer) OnBackpressure(fn func(usage float64)) {
	b.onBackpressure = fn
}

// Push 非阻塞推入，缓冲区满时丢弃并返回false
func (b *Buffer) Push(event *Event) bool {
	select {
	case b.data <- event:
		b.totalIn.Add(1)
		b.checkBackpressure()
		return true
	default:
		b.dropped.Add(1)
		return false
	}
}

// Next 阻塞取出下一个事件
// 缓冲区已关闭且为空，或done关闭时返回false
func (b *Buffer) Next(done <-chan struct{}) (*Event, bool) {
	select {
	case event, ok := <-b.data:
		if !ok {
			return nil, false
		}
		b.totalOut.Add(1)
		b.checkBackpressure()
		return event, true
	case <-done:
		return nil, false
	}
}

// close 生产者结束时调用
func (b *Buffer) close() {
	close(b.data)
}

// Len 当前缓冲的事件数
func (b *Buffer) Len() int {
	return len(b.data)
}

// Cap 缓冲区容量
func (b *Buffer) Cap() int {
	return b.capacity
}

// Usage 使用率
func (b *Buffer) Usage() float64 {
	return float64(len(b.data)) / float64(b.capacity)
}

// IsBackpressure 是否处于背压状态
func (b *Buffer) IsBackpressure() bool {
	return b.backpressure.Load()
}

// Stats 统计快照
func (b *Buffer) Stats() BufferStats {
	return BufferStats{
		TotalIn:  b.totalIn.Load(),
		TotalOut: b.totalOut.Load(),
		Dropped:  b.dropped.Load(),
		Usage:    b.Usage(),
	}
}

// checkBackpressure 使用率降到阈值一半以下才解除背压
func (b *Buffer) checkBackpressure() {
	usage := b.Usage()
	switch {
	case usage >= b.threshold:
		if b.backpressure.CompareAndSwap(false, true) && b.onBackpressure != nil {
			b.onBackpressure(usage)
		}
	case usage < b.threshold*0.5:
		b.backpressure.Store(false)
	}
}
