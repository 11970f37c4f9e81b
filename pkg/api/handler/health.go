package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/LENAX/job-executor/pkg/api/dto"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version   string
	startTime time.Time
	ready     func() bool
}

// NewHealthHandler 创建HealthHandler，ready为nil时总是就绪
func NewHealthHandler(version string, ready func() bool) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startTime: time.Now(),
		ready:     ready,
	}
}

// Health 健康检查
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{
		Status:    "healthy",
		Version:   h.version,
		Uptime:    dto.FormatDuration(time.Since(h.startTime)),
		Timestamp: time.Now().Format(time.RFC3339),
	}))
}

// Ready 就绪检查
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.ready != nil && !h.ready() {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(503, "not ready"))
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(map[string]string{
		"status": "ready",
	}))
}
