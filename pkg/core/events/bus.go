package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/job-executor/pkg/core/executor"
)

// Topic 所有生命周期事件发布到同一个topic
const Topic = "job-executor.events"

var (
	_ executor.Observer      = (*Bus)(nil)
	_ executor.BatchObserver = (*Bus)(nil)
)

// Bus 进程内事件总线
// 没有订阅者时发布的事件会被丢弃
// 发布会等待所有订阅者确认，每个订阅者按发布顺序收到事件
type Bus struct {
	pubsub *gochannel.GoChannel
	logger logrus.FieldLogger
}

// NewBus 创建事件总线
func NewBus(logger logrus.FieldLogger) *Bus {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	pubsub := gochannel.NewGoChannel(
		gochannel.Config{
			Persistent:                     false,
			BlockPublishUntilSubscriberAck: true,
		},
		watermill.NopLogger{},
	)
	return &Bus{
		pubsub: pubsub,
		logger: logger.WithField("component", "events"),
	}
}

// Publish 发布事件
func (b *Bus) Publish(event *Event) error {
	if event.ID == "" {
		event.ID = watermill.NewUUID()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("序列化事件失败: %w", err)
	}

	msg := message.NewMessage(event.ID, payload)
	msg.Metadata.Set("event_type", string(event.Type))
	msg.Metadata.Set("job_id", event.JobID)
	msg.Metadata.Set("batch_id", event.BatchID)
	msg.Metadata.Set("timestamp", event.Timestamp.Format(time.RFC3339Nano))

	if err := b.pubsub.Publish(Topic, msg); err != nil {
		return fmt.Errorf("发布事件失败: %w", err)
	}
	return nil
}

// Subscribe 订阅事件，ctx结束后返回的channel被关闭
// channel已满时发布方会被阻塞，消费慢的订阅者应使用SubscribeBuffered
func (b *Bus) Subscribe(ctx context.Context) (<-chan *Event, error) {
	out := make(chan *Event, DefaultBufferCapacity)
	err := b.forward(ctx, func(event *Event) bool {
		select {
		case out <- event:
			return true
		case <-ctx.Done():
			return false
		}
	}, func() { close(out) })
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SubscribeBuffered 订阅事件并写入有界缓冲区，满时丢弃新事件
// ctx结束或总线关闭后缓冲区被关闭
func (b *Bus) SubscribeBuffered(ctx context.Context, capacity int) (*Buffer, error) {
	buf := NewBuffer(capacity, 0.8)
	buf.OnBackpressure(func(usage float64) {
		b.logger.WithField("usage", usage).Warn("⚠️ 事件订阅缓冲区进入背压，后续事件可能被丢弃")
	})
	err := b.forward(ctx, func(event *Event) bool {
		buf.Push(event)
		return true
	}, buf.close)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// forward 逐条解码并交付消息，交付后才确认，保证下一条消息不会提前到达
func (b *Bus) forward(ctx context.Context, deliver func(*Event) bool, done func()) error {
	messages, err := b.pubsub.Subscribe(ctx, Topic)
	if err != nil {
		return fmt.Errorf("订阅事件失败: %w", err)
	}

	go func() {
		defer done()
		for msg := range messages {
			var event Event
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				b.logger.WithError(err).Warn("⚠️ 事件反序列化失败，已丢弃")
				msg.Ack()
				continue
			}
			if !deliver(&event) {
				return
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close 关闭总线，所有订阅channel随之关闭
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// BatchStarted 实现executor.BatchObserver
func (b *Bus) BatchStarted(batchID string, count int) {
	event := NewEvent(EventBatchStarted, "", batchID)
	event.Count = count
	b.publish(event)
}

// JobStarted 实现executor.Observer
func (b *Bus) JobStarted(info executor.JobInfo) {
	b.publish(NewEvent(EventJobStarted, info.ID, info.BatchID))
}

// JobFinished 实现executor.Observer
func (b *Bus) JobFinished(info executor.JobInfo, err error) {
	var eventType EventType
	switch {
	case err == nil:
		eventType = EventJobSucceeded
	case info.Cancelled:
		eventType = EventJobCancelled
	default:
		eventType = EventJobFailed
	}
	event := NewEvent(eventType, info.ID, info.BatchID).WithError(err)
	event.Duration = info.Duration
	b.publish(event)
}

// RegistryDrained 实现executor.Observer
func (b *Bus) RegistryDrained() {
	b.publish(NewEvent(EventRegistryDrained, "", ""))
}

func (b *Bus) publish(event *Event) {
	if err := b.Publish(event); err != nil {
		b.logger.WithError(err).WithField("event_type", event.Type).Warn("⚠️ 事件发布失败")
	}
}
