// Package events 提供Job生命周期事件及基于watermill的事件总线
package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType 事件类型
type EventType string

const (
	EventBatchStarted    EventType = "batch.started"    // 批次启动
	EventJobStarted      EventType = "job.started"      // Job开始执行
	EventJobSucceeded    EventType = "job.succeeded"    // Job执行成功
	EventJobFailed       EventType = "job.failed"       // Job执行失败
	EventJobCancelled    EventType = "job.cancelled"    // Job被取消后结束
	EventRegistryDrained EventType = "registry.drained" // 注册表清空
)

// Event Job生命周期事件
type Event struct {
	ID        string            `json:"id"`
	Type      EventType         `json:"type"`
	JobID     string            `json:"job_id,omitempty"`
	BatchID   string            `json:"batch_id,omitempty"`
	Count     int               `json:"count,omitempty"`
	Error     string            `json:"error,omitempty"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewEvent 创建事件
func NewEvent(eventType EventType, jobID, batchID string) *Event {
	return &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		JobID:     jobID,
		BatchID:   batchID,
		Timestamp: time.Now(),
	}
}

// WithMetadata 添加元数据
func (e *Event) WithMetadata(key, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(map[string]string)
	}
	e.Metadata[key] = value
	return e
}

// WithError 记录错误信息
func (e *Event) WithError(err error) *Event {
	if err != nil {
		e.Error = err.Error()
	}
	return e
}
