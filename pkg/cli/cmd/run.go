package cmd

import (
	"context"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/LENAX/job-executor/pkg/cli/output"
	"github.com/LENAX/job-executor/pkg/core/executor"
	"github.com/LENAX/job-executor/pkg/core/task"
	"github.com/LENAX/job-executor/pkg/logger"
)

// runOptions 本地运行参数
type runOptions struct {
	Count          int
	Delay          time.Duration
	FailRate       float64
	Terminate      int
	TerminateAfter time.Duration
}

// runSummary 本地运行结果
type runSummary struct {
	executor.Stats
	Terminated int    `json:"terminated"`
	Drains     int64  `json:"drains"`
	Elapsed    string `json:"elapsed"`
}

var (
	runOpts     runOptions
	runLogLevel string
)

// runCmd 在本进程内运行一批Job
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "在本进程内运行一批Job",
	Long: `启动count个Job，每个Job等待delay后按fail-rate概率失败。
指定--terminate时，在--terminate-after之后终止相应数量的Job，然后等待全部Job结束。

示例：
  job-executor run --count 10 --delay 1s --terminate 3 --terminate-after 500ms`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New(runLogLevel, "text")
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		summary, err := runJobs(ctx, runOpts, log)
		if err != nil {
			output.Error("运行失败: %v", err)
			return err
		}

		if outputJSON {
			return output.PrintJSON(summary)
		}
		table := output.NewTable("METRIC", "VALUE")
		table.AddRow("started", summary.Started)
		table.AddRow("succeeded", summary.Succeeded)
		table.AddRow("failed", summary.Failed)
		table.AddRow("cancelled", summary.Cancelled)
		table.AddRow("terminated", summary.Terminated)
		table.AddRow("drains", summary.Drains)
		table.AddRow("elapsed", summary.Elapsed)
		table.Render()
		return nil
	},
}

// runJobs 启动一批Job，可选地终止其中一部分，并等待注册表清空
// ctx结束时终止全部Job
func runJobs(ctx context.Context, opts runOptions, log logrus.FieldLogger) (*runSummary, error) {
	var drains atomic.Int64
	exec, err := executor.New(executor.Options[task.Result]{
		Task:        executor.TaskFunc[task.Result](task.Flaky(opts.Delay, opts.FailRate, nil)),
		AllJobsDone: func() { drains.Add(1) },
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}

	start := time.Now()
	// Job不跟随ctx取消，中断时统一走TerminateAll
	batch, err := exec.Start(context.WithoutCancel(ctx), opts.Count)
	if err != nil {
		return nil, err
	}

	terminated := 0
	if opts.Terminate > 0 {
		timer := time.NewTimer(opts.TerminateAfter)
		select {
		case <-timer.C:
			if terminated, err = exec.Terminate(context.Background(), opts.Terminate); err != nil {
				return nil, err
			}
		case <-batch.Done():
		case <-ctx.Done():
		}
		timer.Stop()
	}

	waitErr := exec.Wait(ctx)
	if waitErr != nil {
		n, err := exec.TerminateAll(context.Background())
		if err != nil {
			return nil, err
		}
		terminated += n
	}

	return &runSummary{
		Stats:      exec.Stats(),
		Terminated: terminated,
		Drains:     drains.Load(),
		Elapsed:    time.Since(start).Round(time.Millisecond).String(),
	}, nil
}

func init() {
	runCmd.Flags().IntVarP(&runOpts.Count, "count", "n", 10, "启动的Job数量")
	runCmd.Flags().DurationVar(&runOpts.Delay, "delay", time.Second, "每个Job的执行时长")
	runCmd.Flags().Float64Var(&runOpts.FailRate, "fail-rate", 0, "Job失败概率(0-1)")
	runCmd.Flags().IntVar(&runOpts.Terminate, "terminate", 0, "终止的Job数量")
	runCmd.Flags().DurationVar(&runOpts.TerminateAfter, "terminate-after", 500*time.Millisecond, "启动后多久执行终止")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "warn", "日志级别")
}
