package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ServerConfig API服务器配置
type ServerConfig struct {
	Host         string        // 监听地址
	Port         int           // 监听端口
	ReadTimeout  time.Duration // 读取超时
	WriteTimeout time.Duration // 写入超时
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 5 * time.Minute,
	}
}

// APIServer HTTP API服务器
type APIServer struct {
	httpServer *http.Server
	config     ServerConfig
	logger     logrus.FieldLogger
}

// NewAPIServer 创建API服务器
func NewAPIServer(deps Dependencies, config ServerConfig) *APIServer {
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &APIServer{
		config: config,
		logger: logger.WithField("component", "api"),
	}
	s.httpServer = &http.Server{
		Addr:         s.Addr(),
		Handler:      SetupRouter(deps),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}
	return s
}

// Handler 路由处理器，便于测试
func (s *APIServer) Handler() http.Handler {
	return s.httpServer.Handler
}

// Serve 在给定listener上提供服务
func (s *APIServer) Serve(ln net.Listener) error {
	s.logger.WithField("addr", ln.Addr().String()).Info("🚀 Job Executor API Server starting")

	if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server serve failed: %w", err)
	}
	return nil
}

// Shutdown 优雅关闭服务器
func (s *APIServer) Shutdown(ctx context.Context) error {
	s.logger.Info("🛑 Shutting down API Server...")

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("✅ API Server stopped")
	return nil
}

// Addr 获取服务器地址
func (s *APIServer) Addr() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}
