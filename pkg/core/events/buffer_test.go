package events

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer_DropsWhenFull(t *testing.T) {
	buf := NewBuffer(2, 1)

	assert.True(t, buf.Push(NewEvent(EventJobStarted, "a", "")))
	assert.True(t, buf.Push(NewEvent(EventJobStarted, "b", "")))
	assert.False(t, buf.Push(NewEvent(EventJobStarted, "c", "")))

	stats := buf.Stats()
	assert.EqualValues(t, 2, stats.TotalIn)
	assert.EqualValues(t, 1, stats.Dropped)
	assert.Equal(t, 1.0, stats.Usage)

	done := make(chan struct{})
	e, ok := buf.Next(done)
	require.True(t, ok)
	assert.Equal(t, "a", e.JobID)
	assert.Equal(t, 1, buf.Len())
	assert.EqualValues(t, 1, buf.Stats().TotalOut)
}

func TestBuffer_Backpressure(t *testing.T) {
	buf := NewBuffer(4, 0.5)
	var triggered []float64
	buf.OnBackpressure(func(usage float64) { triggered = append(triggered, usage) })

	buf.Push(NewEvent(EventJobStarted, "1", ""))
	assert.False(t, buf.IsBackpressure())
	buf.Push(NewEvent(EventJobStarted, "2", ""))
	assert.True(t, buf.IsBackpressure())
	buf.Push(NewEvent(EventJobStarted, "3", ""))
	assert.Equal(t, []float64{0.5}, triggered)

	done := make(chan struct{})
	buf.Next(done)
	buf.Next(done)
	// 使用率0.25，未低于阈值一半
	assert.True(t, buf.IsBackpressure())
	buf.Next(done)
	assert.False(t, buf.IsBackpressure())
}

func TestBuffer_NextStopsOnDoneAndClose(t *testing.T) {
	buf := NewBuffer(1, 0.8)
	done := make(chan struct{})
	close(done)
	_, ok := buf.Next(done)
	assert.False(t, ok)

	buf.Push(NewEvent(EventJobStarted, "x", ""))
	buf.close()
	e, ok := buf.Next(make(chan struct{}))
	require.True(t, ok)
	assert.Equal(t, "x", e.JobID)
	_, ok = buf.Next(make(chan struct{}))
	assert.False(t, ok)
}

func TestBus_SubscribeBuffered(t *testing.T) {
	logger, _ := test.NewNullLogger()
	bus := NewBus(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	buf, err := bus.SubscribeBuffered(ctx, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, buf.Cap())

	require.NoError(t, bus.Publish(NewEvent(EventRegistryDrained, "", "")))

	got := make(chan *Event, 1)
	go func() {
		if e, ok := buf.Next(ctx.Done()); ok {
			got <- e
		}
	}()
	select {
	case e := <-got:
		assert.Equal(t, EventRegistryDrained, e.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("buffered subscription received nothing")
	}

	// 总线关闭后缓冲区随之关闭
	require.NoError(t, bus.Close())
	assert.Eventually(t, func() bool {
		_, ok := buf.Next(ctx.Done())
		return !ok
	}, time.Second, 10*time.Millisecond)
}
