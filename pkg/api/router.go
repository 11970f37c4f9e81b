package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/LENAX/job-executor/pkg/api/handler"
	"github.com/LENAX/job-executor/pkg/api/middleware"
)

// Dependencies 路由依赖
// Schedules、Events、Metrics可以为nil，对应路由返回503或不注册
type Dependencies struct {
	Jobs      handler.JobController
	Schedules handler.ScheduleLister
	Events    handler.EventSource
	Metrics   http.Handler
	Ready     func() bool
	Logger    logrus.FieldLogger
	Version   string
}

// SetupRouter 设置路由
func SetupRouter(deps Dependencies) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger = logger.WithField("component", "api")

	router := gin.New()

	// 全局中间件
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))

	jobHandler := handler.NewJobHandler(deps.Jobs, deps.Schedules)
	eventHandler := handler.NewEventHandler(deps.Events, logger)
	healthHandler := handler.NewHealthHandler(deps.Version, deps.Ready)

	// 健康检查路由（不带前缀）
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	v1 := router.Group("/api/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.GET("", jobHandler.Status)
			jobs.POST("/execute", jobHandler.Execute)
			jobs.POST("/terminate", jobHandler.Terminate)
			jobs.POST("/wait", jobHandler.Wait)
		}

		v1.GET("/events/ws", eventHandler.Stream)
	}

	return router
}
