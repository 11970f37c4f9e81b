// Package task 提供执行器可直接使用的内置任务函数
package task

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/LENAX/job-executor/pkg/core/job"
)

var (
	// ErrAborted 任务观察到取消令牌后返回的错误
	ErrAborted = errors.New("job was aborted")
	// ErrInjectedFailure Flaky任务按概率注入的失败
	ErrInjectedFailure = errors.New("injected failure")
)

// Result 内置任务的执行结果
type Result struct {
	JobID   string        `json:"job_id"`
	BatchID string        `json:"batch_id"`
	Elapsed time.Duration `json:"elapsed"`
}

// Func 内置任务的函数签名，可直接赋值给 executor.TaskFunc[Result]
type Func func(ctx context.Context) (Result, error)

// Sleep 等待d或直到ctx结束；被取消时返回ErrAborted
func Sleep(d time.Duration) Func {
	return func(ctx context.Context) (Result, error) {
		start := time.Now()
		if err := sleep(ctx, d); err != nil {
			return Result{}, err
		}
		return Result{
			JobID:   job.GetJobID(ctx),
			BatchID: job.GetBatchID(ctx),
			Elapsed: time.Since(start),
		}, nil
	}
}

// Flaky 在Sleep的基础上以failRate的概率失败
// roll为nil时使用math/rand/v2的全局随机源
func Flaky(d time.Duration, failRate float64, roll func() float64) Func {
	if roll == nil {
		roll = rand.Float64
	}
	base := Sleep(d)
	return func(ctx context.Context) (Result, error) {
		res, err := base(ctx)
		if err != nil {
			return res, err
		}
		if failRate > 0 && roll() < failRate {
			return Result{}, fmt.Errorf("%w: job %s", ErrInjectedFailure, res.JobID)
		}
		return res, nil
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrAborted, ctx.Err())
	}
}
