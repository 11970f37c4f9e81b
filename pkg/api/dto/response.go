package dto

import (
	"time"

	"github.com/LENAX/job-executor/pkg/core/executor"
	"github.com/LENAX/job-executor/pkg/scheduler"
)

// APIResponse 通用API响应结构
type APIResponse[T any] struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    T      `json:"data,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{
		Code:    0,
		Message: "success",
		Data:    data,
	}
}

// NewErrorResponse 创建错误响应
func NewErrorResponse(code int, message string) APIResponse[any] {
	return APIResponse[any]{
		Code:    code,
		Message: message,
	}
}

// JobsStatus 执行器状态
type JobsStatus struct {
	Size      int               `json:"size"`
	Stats     executor.Stats    `json:"stats"`
	Schedules []scheduler.Entry `json:"schedules,omitempty"`
}

// ExecuteResponse 启动批次响应
type ExecuteResponse struct {
	BatchID   string `json:"batch_id"`
	Count     int    `json:"count"`
	Size      int    `json:"size"`
	Completed bool   `json:"completed"`
}

// TerminateResponse 终止响应
type TerminateResponse struct {
	Terminated int `json:"terminated"`
	Size       int `json:"size"`
}

// WaitResponse 等待注册表清空的响应
type WaitResponse struct {
	Size    int    `json:"size"`
	Elapsed string `json:"elapsed"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}

// FormatDuration 格式化时长，精确到毫秒
func FormatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
