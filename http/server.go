// Package http 提供流失预测的HTTP服务：表单页面与JSON API
package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"churnpredict/monitoring"
	"churnpredict/predict"
)

// Server HTTP服务器
type Server struct {
	server *http.Server
	config ServerConfig
	logger *zap.Logger
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port           int
	Timeout        time.Duration
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// DefaultServerConfig 默认服务器配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           8080,
		Timeout:        30 * time.Second,
		MaxBodyBytes:   10 << 20,
		AllowedOrigins: []string{"*"},
	}
}

// Dependencies 处理器依赖
type Dependencies struct {
	Service *predict.Service
	History HistoryStore
	Hub     *monitoring.WebSocketHub
	Metrics *monitoring.Metrics
	Logger  *zap.Logger
}

// NewServer 创建HTTP服务器
func NewServer(config ServerConfig, deps Dependencies) *Server {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	return &Server{
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", config.Port),
			Handler:      NewHandler(config, deps),
			ReadTimeout:  config.Timeout,
			WriteTimeout: config.Timeout,
			IdleTimeout:  120 * time.Second,
		},
		config: config,
		logger: deps.Logger,
	}
}

// NewHandler 注册所有路由并包装中间件链
func NewHandler(config ServerConfig, deps Dependencies) http.Handler {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	mux := http.NewServeMux()

	h := &handlers{deps: deps}
	RegisterHandlers(mux, h)
	RegisterPredictHandlers(mux, h)
	RegisterUIHandlers(mux, h)

	chain := Chain(
		RecoveryMiddleware(deps.Logger),               // 1. 恢复中间件（最先执行，捕获panic）
		LoggerMiddleware(deps.Logger, deps.Metrics),   // 2. 日志中间件
		SecurityHeadersMiddleware,                     // 3. 安全头中间件
		CORSMiddleware(config.AllowedOrigins),         // 4. CORS中间件
		TimeoutMiddleware(config.Timeout),             // 5. 超时中间件
		RequestSizeMiddleware(config.MaxBodyBytes),    // 6. 请求大小限制
	)
	return chain(mux)
}

// Start 启动服务器
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Stop 停止服务器
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.logger.Info("shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	return nil
}
