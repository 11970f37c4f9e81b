// Package scheduler 按cron表达式周期性地启动Job批次
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/job-executor/pkg/core/executor"
)

var (
	ErrDuplicateEntry = errors.New("schedule entry already exists")
	ErrEntryNotFound  = errors.New("schedule entry not found")
)

// Launcher 启动一批Job，不等待其完成
type Launcher interface {
	Start(ctx context.Context, count int) (*executor.Batch, error)
}

// Entry 已注册的调度项
type Entry struct {
	Name  string    `json:"name"`
	Spec  string    `json:"spec"`
	Count int       `json:"count"`
	Next  time.Time `json:"next"`
	Prev  time.Time `json:"prev"`
}

type entry struct {
	spec  string
	count int
	id    cron.EntryID
}

// Scheduler 秒级精度的cron调度器
type Scheduler struct {
	cron     *cron.Cron
	parser   cron.Parser
	launcher Launcher
	logger   logrus.FieldLogger

	mu      sync.RWMutex
	entries map[string]*entry

	ctx    context.Context
	cancel context.CancelFunc
}

// New 创建调度器
func New(launcher Launcher, logger logrus.FieldLogger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:     cron.New(cron.WithParser(parser)),
		parser:   parser,
		launcher: launcher,
		logger:   logger.WithField("component", "scheduler"),
		entries:  make(map[string]*entry),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Add 注册调度项，每次触发启动count个Job
func (s *Scheduler) Add(name, spec string, count int) error {
	if name == "" {
		return fmt.Errorf("%w: schedule name is required", executor.ErrInvalidArgument)
	}
	if count < 0 {
		return fmt.Errorf("%w: schedule %s count must be non-negative, got %d", executor.ErrInvalidArgument, name, count)
	}
	schedule, err := s.parser.Parse(spec)
	if err != nil {
		return fmt.Errorf("%w: schedule %s has invalid cron expression: %w", executor.ErrInvalidArgument, name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntry, name)
	}

	id := s.cron.Schedule(schedule, cron.FuncJob(func() { s.trigger(name, count) }))
	s.entries[name] = &entry{spec: spec, count: count, id: id}

	s.logger.WithFields(logrus.Fields{
		"name":  name,
		"spec":  spec,
		"count": count,
	}).Info("✅ [Cron调度器] 已注册调度项")
	return nil
}

// Remove 移除调度项
func (s *Scheduler) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, exists := s.entries[name]
	if !exists {
		return fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	s.cron.Remove(e.id)
	delete(s.entries, name)

	s.logger.WithField("name", name).Info("✅ [Cron调度器] 已移除调度项")
	return nil
}

// RunNow 立即触发一次调度项，返回启动的批次
func (s *Scheduler) RunNow(name string) (*executor.Batch, error) {
	s.mu.RLock()
	e, exists := s.entries[name]
	s.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	return s.launch(name, e.count)
}

func (s *Scheduler) trigger(name string, count int) {
	if _, err := s.launch(name, count); err != nil {
		s.logger.WithError(err).WithField("name", name).Error("❌ [Cron调度器] 启动批次失败")
	}
}

func (s *Scheduler) launch(name string, count int) (*executor.Batch, error) {
	batch, err := s.launcher.Start(s.ctx, count)
	if err != nil {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"name":     name,
		"batch_id": batch.ID(),
		"count":    count,
	}).Info("🕐 [Cron调度器] 已触发批次")
	return batch, nil
}

// Start 启动调度
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("✅ [Cron调度器] 已启动")
}

// Stop 停止调度，等待正在执行的触发函数返回
// 已启动的Job不受影响，由执行器负责终止
func (s *Scheduler) Stop(ctx context.Context) error {
	stopped := s.cron.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info("✅ [Cron调度器] 已停止")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close 停止调度，并取消所有由调度触发启动的Job的context
func (s *Scheduler) Close(ctx context.Context) error {
	err := s.Stop(ctx)
	s.cancel()
	return err
}

// Entries 按名称排序返回所有调度项
func (s *Scheduler) Entries() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.entries))
	for name, e := range s.entries {
		ce := s.cron.Entry(e.id)
		out = append(out, Entry{
			Name:  name,
			Spec:  e.spec,
			Count: e.count,
			Next:  ce.Next,
			Prev:  ce.Prev,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
