package executor

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// TaskFunc 任务函数：ctx即取消令牌，任务需自行观察ctx.Done()
type TaskFunc[T any] func(ctx context.Context) (T, error)

// Options 执行器构造参数，构造后不可修改
type Options[T any] struct {
	// Task 必填，每个Job调用一次
	Task TaskFunc[T]
	// JobDone 任务成功回调
	JobDone func(result T)
	// JobError 任务失败回调，包含因取消而失败的情况
	JobError func(err error)
	// AllJobsDone 注册表每次由非空变为空时回调一次
	AllJobsDone func()

	Logger    logrus.FieldLogger
	Observers []Observer
	Tracer    trace.Tracer
}

// JobInfo 提供给Observer的Job信息
type JobInfo struct {
	ID      string
	BatchID string
	// Cancelled 任务返回错误且Job已被取消；取消后仍成功返回的Job为false
	Cancelled bool
	StartedAt time.Time
	Duration  time.Duration
}

// Observer Job生命周期监听器
// 在Job所在的goroutine中调用，可能并发执行
type Observer interface {
	JobStarted(info JobInfo)
	JobFinished(info JobInfo, err error)
	RegistryDrained()
}

// BatchObserver 可选接口，Observer实现它即可收到批次启动通知
type BatchObserver interface {
	BatchStarted(batchID string, count int)
}

// Stats 执行器累计统计
type Stats struct {
	Size      int   `json:"size"`
	Started   int64 `json:"started"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	Cancelled int64 `json:"cancelled"`
}
