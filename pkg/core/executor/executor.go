// Package executor 批量启动相互独立的异步Job，支持协作式取消部分或全部Job，
// 并可等待注册表清空
package executor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/LENAX/job-executor/pkg/core/job"
)

const tracerName = "github.com/LENAX/job-executor/pkg/core/executor"

// JobExecutor 执行器，独占持有Job注册表
type JobExecutor[T any] struct {
	mu   sync.Mutex
	jobs *job.Registry // 受mu保护

	opts   Options[T]
	logger logrus.FieldLogger
	tracer trace.Tracer

	started   atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	cancelled atomic.Int64
}

// New 创建执行器
func New[T any](opts Options[T]) (*JobExecutor[T], error) {
	if opts.Task == nil {
		return nil, fmt.Errorf("%w: task function is required", ErrInvalidArgument)
	}

	logger := opts.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = otel.Tracer(tracerName)
	}

	return &JobExecutor[T]{
		jobs:   job.NewRegistry(),
		opts:   opts,
		logger: logger.WithField("component", "executor"),
		tracer: tracer,
	}, nil
}

// Size 当前注册表中的Job数量
func (e *JobExecutor[T]) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.jobs.Len()
}

// Stats 累计统计快照
func (e *JobExecutor[T]) Stats() Stats {
	return Stats{
		Size:      e.Size(),
		Started:   e.started.Load(),
		Succeeded: e.succeeded.Load(),
		Failed:    e.failed.Load(),
		Cancelled: e.cancelled.Load(),
	}
}

// Start 创建count个Job并立即返回
// 返回时所有Job已经加入注册表，任务在各自的goroutine中执行
// Job的context派生自ctx
func (e *JobExecutor[T]) Start(ctx context.Context, count int) (*Batch, error) {
	if count < 0 {
		return nil, invalidCount("execute", count)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	batch := newBatch(count)
	jobs := make([]*job.Job, count)

	e.mu.Lock()
	for i := range jobs {
		j := job.New(ctx, batch.ID())
		e.jobs.Add(j)
		jobs[i] = j
	}
	size := e.jobs.Len()
	e.mu.Unlock()

	e.started.Add(int64(count))
	e.logger.WithFields(logrus.Fields{
		"batch_id": batch.ID(),
		"count":    count,
		"size":     size,
	}).Info("🚀 [批次启动]")

	for _, obs := range e.opts.Observers {
		if bo, ok := obs.(BatchObserver); ok {
			bo.BatchStarted(batch.ID(), count)
		}
	}

	for _, j := range jobs {
		go e.run(j, batch)
	}
	return batch, nil
}

// Execute 启动count个Job并等待本次启动的Job全部完成收尾
// 任务失败由JobError回调吸收，不会让Execute返回错误
func (e *JobExecutor[T]) Execute(ctx context.Context, count int) error {
	batch, err := e.Start(ctx, count)
	if err != nil {
		return err
	}
	<-batch.Done()
	return nil
}

// Terminate 按注册顺序取消最多count个尚未取消的Job，并等待它们完成收尾
// 返回实际取消的数量；可取消的不足count时不视为错误
func (e *JobExecutor[T]) Terminate(ctx context.Context, count int) (int, error) {
	if count < 0 {
		return 0, invalidCount("terminate", count)
	}
	return e.terminate(ctx, count)
}

// TerminateAll 取消所有尚未取消的Job
func (e *JobExecutor[T]) TerminateAll(ctx context.Context) (int, error) {
	return e.terminate(ctx, -1)
}

func (e *JobExecutor[T]) terminate(ctx context.Context, limit int) (int, error) {
	e.mu.Lock()
	selected := e.jobs.Select(limit, func(j *job.Job) bool { return !j.Cancelled() })
	for _, j := range selected {
		j.Cancel()
	}
	e.mu.Unlock()

	if len(selected) == 0 {
		return 0, nil
	}

	e.logger.WithFields(logrus.Fields{
		"requested": limit,
		"selected":  len(selected),
	}).Info("🛑 [取消Job]")

	if err := awaitJobs(ctx, selected); err != nil {
		return len(selected), err
	}
	return len(selected), nil
}

// Wait 阻塞直到注册表为空
// 每轮对当前注册表做快照并等待快照中的Job，等待期间新加入的Job由下一轮覆盖。
// 最后一次判空之后才加入的Job不在等待范围内
func (e *JobExecutor[T]) Wait(ctx context.Context) error {
	for {
		e.mu.Lock()
		snapshot := e.jobs.Snapshot()
		e.mu.Unlock()

		if len(snapshot) == 0 {
			return nil
		}
		if err := awaitJobs(ctx, snapshot); err != nil {
			return err
		}
	}
}

func (e *JobExecutor[T]) run(j *job.Job, batch *Batch) {
	ctx, span := e.tracer.Start(j.Context(), "job.run", trace.WithAttributes(
		attribute.String("job.id", j.ID),
		attribute.String("batch.id", j.BatchID),
	))

	info := JobInfo{ID: j.ID, BatchID: j.BatchID, StartedAt: time.Now()}
	for _, obs := range e.opts.Observers {
		obs.JobStarted(info)
	}

	result, err := e.invoke(ctx, j)

	span.SetAttributes(attribute.Bool("job.cancelled", j.Cancelled()))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()

	e.finalize(j, batch, info, result, err)
}

func (e *JobExecutor[T]) invoke(ctx context.Context, j *job.Job) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &TaskPanicError{JobID: j.ID, Value: r, Stack: debug.Stack()}
		}
	}()
	return e.opts.Task(ctx)
}

// finalize 顺序：结果回调 -> 移出注册表 -> Observer -> 清空回调 -> 完成信号
func (e *JobExecutor[T]) finalize(j *job.Job, batch *Batch, info JobInfo, result T, err error) {
	info.Duration = time.Since(info.StartedAt)
	// 被取消但任务仍成功返回的Job按成功统计
	info.Cancelled = err != nil && j.Cancelled()
	if info.Cancelled {
		e.cancelled.Add(1)
	}

	log := e.logger.WithFields(logrus.Fields{
		"job_id":   j.ID,
		"batch_id": j.BatchID,
		"duration": info.Duration,
	})

	if err != nil {
		e.failed.Add(1)
		log.WithError(err).WithField("cancelled", info.Cancelled).Warn("❌ [Job执行失败]")
		if e.opts.JobError != nil {
			e.safeCall("JobError", func() { e.opts.JobError(err) })
		}
	} else {
		e.succeeded.Add(1)
		log.Debug("✅ [Job执行成功]")
		if e.opts.JobDone != nil {
			e.safeCall("JobDone", func() { e.opts.JobDone(result) })
		}
	}

	e.mu.Lock()
	e.jobs.Remove(j.ID)
	drained := e.jobs.Empty()
	e.mu.Unlock()

	for _, obs := range e.opts.Observers {
		obs.JobFinished(info, err)
	}

	if drained {
		e.logger.Info("🏁 [注册表已清空]")
		if e.opts.AllJobsDone != nil {
			e.safeCall("AllJobsDone", e.opts.AllJobsDone)
		}
		for _, obs := range e.opts.Observers {
			obs.RegistryDrained()
		}
	}

	j.Finish()
	batch.jobFinished()
}

// safeCall 回调panic不能打断收尾流程
func (e *JobExecutor[T]) safeCall(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.WithFields(logrus.Fields{
				"callback": name,
				"panic":    r,
			}).Error("⚠️ [回调panic已恢复]")
		}
	}()
	fn()
}

func awaitJobs(ctx context.Context, jobs []*job.Job) error {
	if ctx == nil {
		ctx = context.Background()
	}
	for _, j := range jobs {
		select {
		case <-j.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
