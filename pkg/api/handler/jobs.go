package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/job-executor/pkg/api/dto"
	"github.com/LENAX/job-executor/pkg/core/executor"
	"github.com/LENAX/job-executor/pkg/scheduler"
)

// JobController 处理器依赖的执行器能力
type JobController interface {
	Start(ctx context.Context, count int) (*executor.Batch, error)
	Terminate(ctx context.Context, count int) (int, error)
	TerminateAll(ctx context.Context) (int, error)
	Wait(ctx context.Context) error
	Size() int
	Stats() executor.Stats
}

// ScheduleLister 可选，用于在状态中展示调度项
type ScheduleLister interface {
	Entries() []scheduler.Entry
}

// JobHandler Job API处理器
type JobHandler struct {
	jobs      JobController
	schedules ScheduleLister
}

// NewJobHandler 创建JobHandler，schedules可以为nil
func NewJobHandler(jobs JobController, schedules ScheduleLister) *JobHandler {
	return &JobHandler{jobs: jobs, schedules: schedules}
}

// Status 执行器状态
// GET /api/v1/jobs
func (h *JobHandler) Status(c *gin.Context) {
	stats := h.jobs.Stats()
	status := dto.JobsStatus{Size: stats.Size, Stats: stats}
	if h.schedules != nil {
		status.Schedules = h.schedules.Entries()
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(status))
}

// Execute 启动一批Job
// POST /api/v1/jobs/execute
// wait=false时立即返回202；wait=true时等待本批次完成
func (h *JobHandler) Execute(c *gin.Context) {
	var req dto.ExecuteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数错误: %v", err)))
		return
	}

	// Job的生命周期不随请求结束
	batch, err := h.jobs.Start(context.WithoutCancel(c.Request.Context()), *req.Count)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := dto.ExecuteResponse{
		BatchID: batch.ID(),
		Count:   batch.Size(),
		Size:    h.jobs.Size(),
	}
	if !req.Wait {
		c.JSON(http.StatusAccepted, dto.NewSuccessResponse(resp))
		return
	}

	if err := batch.Wait(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	resp.Completed = true
	resp.Size = h.jobs.Size()
	c.JSON(http.StatusOK, dto.NewSuccessResponse(resp))
}

// Terminate 终止Job，count为空时终止全部
// POST /api/v1/jobs/terminate
func (h *JobHandler) Terminate(c *gin.Context) {
	var req dto.TerminateRequest
	// 空body等同于终止全部
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, fmt.Sprintf("请求参数错误: %v", err)))
		return
	}

	ctx := c.Request.Context()
	var (
		n   int
		err error
	)
	if req.Count == nil {
		n, err = h.jobs.TerminateAll(ctx)
	} else {
		n, err = h.jobs.Terminate(ctx, *req.Count)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.TerminateResponse{
		Terminated: n,
		Size:       h.jobs.Size(),
	}))
}

// Wait 阻塞直到注册表为空，受请求context约束
// POST /api/v1/jobs/wait
func (h *JobHandler) Wait(c *gin.Context) {
	start := time.Now()
	if err := h.jobs.Wait(c.Request.Context()); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.WaitResponse{
		Size:    h.jobs.Size(),
		Elapsed: dto.FormatDuration(time.Since(start)),
	}))
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, executor.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, dto.NewErrorResponse(400, err.Error()))
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		c.JSON(http.StatusRequestTimeout, dto.NewErrorResponse(408, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, dto.NewErrorResponse(500, err.Error()))
	}
}
