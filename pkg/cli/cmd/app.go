package cmd

import (
	"context"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/LENAX/job-executor/pkg/api"
	"github.com/LENAX/job-executor/pkg/config"
	"github.com/LENAX/job-executor/pkg/core/events"
	"github.com/LENAX/job-executor/pkg/core/executor"
	"github.com/LENAX/job-executor/pkg/core/task"
	"github.com/LENAX/job-executor/pkg/metrics"
	"github.com/LENAX/job-executor/pkg/scheduler"
)

// app 服务端组件装配：执行器、事件总线、指标、调度器与API服务器
type app struct {
	cfg       *config.Config
	logger    logrus.FieldLogger
	exec      *executor.JobExecutor[task.Result]
	bus       *events.Bus
	collector *metrics.Collector
	scheduler *scheduler.Scheduler
	server    *api.APIServer
	ready     atomic.Bool
}

func newApp(cfg *config.Config, logger logrus.FieldLogger) (*app, error) {
	c := cfg.JobExecutor
	a := &app{
		cfg:       cfg,
		logger:    logger.WithField("instance", c.General.InstanceName),
		collector: metrics.NewCollector(prometheus.NewRegistry()),
	}

	observers := []executor.Observer{a.collector}
	if c.Events.Enabled {
		a.bus = events.NewBus(a.logger)
		observers = append(observers, a.bus)
	}

	exec, err := executor.New(executor.Options[task.Result]{
		Task:      executor.TaskFunc[task.Result](task.Flaky(cfg.GetTaskDelay(), c.Task.FailRate, nil)),
		Logger:    a.logger,
		Observers: observers,
	})
	if err != nil {
		return nil, fmt.Errorf("创建执行器失败: %w", err)
	}
	a.exec = exec
	a.collector.TrackSize(exec.Size)

	a.scheduler = scheduler.New(exec, a.logger)
	for _, s := range c.Schedules {
		if err := a.scheduler.Add(s.Name, s.Cron, s.Count); err != nil {
			return nil, fmt.Errorf("注册调度项失败: %w", err)
		}
	}

	deps := api.Dependencies{
		Jobs:      exec,
		Schedules: a.scheduler,
		Metrics:   a.collector.Handler(),
		Ready:     a.ready.Load,
		Logger:    a.logger,
		Version:   Version,
	}
	// 事件未启用时保持接口为nil，事件路由返回503
	if a.bus != nil {
		deps.Events = a.bus
	}
	a.server = api.NewAPIServer(deps, api.ServerConfig{
		Host:         c.Server.Host,
		Port:         c.Server.Port,
		ReadTimeout:  c.Server.ReadTimeout,
		WriteTimeout: c.Server.WriteTimeout,
	})
	return a, nil
}

// run 运行API服务与调度器，直到ctx结束或服务出错，然后优雅关闭
func (a *app) run(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Serve(ln)
	})

	a.scheduler.Start()
	a.ready.Store(true)

	g.Go(func() error {
		<-gctx.Done()
		return a.shutdown(a.cfg.JobExecutor.Server.ShutdownTimeout)
	})

	return g.Wait()
}

// shutdown 顺序：停止调度 -> 终止全部Job -> 关闭事件总线 -> 关闭HTTP服务
func (a *app) shutdown(timeout time.Duration) error {
	a.ready.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.scheduler.Close(ctx); err != nil {
		a.logger.WithError(err).Warn("⚠️ 停止调度器超时")
	}

	n, err := a.exec.TerminateAll(ctx)
	if err != nil {
		a.logger.WithError(err).WithField("terminated", n).Warn("⚠️ 等待Job退出超时")
	} else {
		a.logger.WithField("terminated", n).Info("🛑 已终止全部Job")
	}

	if a.bus != nil {
		if err := a.bus.Close(); err != nil {
			a.logger.WithError(err).Warn("⚠️ 关闭事件总线失败")
		}
	}

	return a.server.Shutdown(ctx)
}
