package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/job-executor/pkg/api/dto"
	"github.com/LENAX/job-executor/pkg/core/events"
)

const writeWait = 5 * time.Second

// EventSource 生命周期事件源
type EventSource interface {
	SubscribeBuffered(ctx context.Context, capacity int) (*events.Buffer, error)
}

// EventHandler 通过websocket推送生命周期事件
type EventHandler struct {
	source   EventSource
	upgrader websocket.Upgrader
	logger   logrus.FieldLogger
}

// NewEventHandler 创建EventHandler
func NewEventHandler(source EventSource, logger logrus.FieldLogger) *EventHandler {
	return &EventHandler{
		source: source,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Stream 推送事件直到客户端断开
// GET /api/v1/events/ws
func (h *EventHandler) Stream(c *gin.Context) {
	if h.source == nil {
		c.JSON(http.StatusServiceUnavailable, dto.NewErrorResponse(503, "事件流未启用"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket升级失败")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	buf, err := h.source.SubscribeBuffered(ctx, events.DefaultBufferCapacity)
	if err != nil {
		h.logger.WithError(err).Error("订阅事件失败")
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "subscribe failed"))
		return
	}

	// 读循环只用于感知客户端断开
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.WithError(err).Debug("WebSocket读取错误")
				}
				return
			}
		}
	}()

	defer func() {
		if stats := buf.Stats(); stats.Dropped > 0 {
			h.logger.WithField("dropped", stats.Dropped).Warn("⚠️ 慢客户端丢弃了部分事件")
		}
	}()

	for {
		event, ok := buf.Next(ctx.Done())
		if !ok {
			if ctx.Err() == nil {
				// 总线已关闭
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			}
			return
		}
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.WithError(err).Debug("WebSocket写入失败")
			return
		}
	}
}
