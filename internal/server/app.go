package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wallet-session/pkg/logger"
)

type Config struct {
	HttpPort string
	// ShutdownTimeout 默认 5s
	ShutdownTimeout time.Duration
}

type App struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
}

func New(cfg Config, httpHandler *gin.Engine) *App {
	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &App{
		httpServer: &http.Server{
			Addr:    ":" + cfg.HttpPort,
			Handler: httpHandler,
		},
		shutdownTimeout: timeout,
	}
}

// Run 启动服务并阻塞，直到收到关闭信号
func (a *App) Run() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-quit
		logger.Info("⚠️  Shutting down server...")
		cancel()
	}()

	if err := a.Serve(ctx); err != nil {
		logger.Fatal("HTTP Server failure", zap.Error(err))
	}
	logger.Info("Server exited properly")
}

// Serve 启动 HTTP 服务, ctx 结束后优雅关闭
func (a *App) Serve(ctx context.Context) error {
	// 请求 ctx 派生自 ctx, 关闭时 SSE 连接随之结束
	a.httpServer.BaseContext = func(net.Listener) context.Context { return ctx }

	// 1. Start HTTP
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP Server", zap.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 2. 阻塞
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	// 3. Graceful Shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP Server forced to shutdown", zap.Error(err))
		return a.httpServer.Close()
	}
	return nil
}
