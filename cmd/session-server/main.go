package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wallet-session/internal/bootstrap"
	"wallet-session/internal/handler"
	"wallet-session/internal/server"
	"wallet-session/pkg/config"
	"wallet-session/pkg/logger"
	"wallet-session/pkg/monitor"
)

func main() {
	// 0. 初始化 Config
	config.Init()

	// 1. 初始化 Logger
	logger.Init(config.Global.App.Env)
	defer logger.Sync()

	// 2. 监控指标要在启动任务之前注册, 否则启动时的指标会丢
	monitor.Init()

	// 3. 存储, 消息队列, 钱包 Provider
	ctx := context.Background()
	rt, err := bootstrap.New(ctx, config.Global, nil)
	if err != nil {
		logger.Fatal("初始化会话失败", zap.Error(err))
	}
	defer rt.Close()

	// 4. 启动时的两个检查, 不阻塞 HTTP 服务
	boot := rt.Manager.Initialize(ctx)
	go func() {
		waitCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		for _, task := range boot.Tasks() {
			select {
			case <-task.Done():
			case <-waitCtx.Done():
				logger.Warn("init task still running", zap.String("task", task.Name))
				return
			}
			if err := task.Err(); err != nil {
				logger.Warn("init task failed", zap.String("task", task.Name), zap.Error(err))
				continue
			}
			logger.Info("init task done", zap.String("task", task.Name))
		}
		snap := rt.Manager.Snapshot()
		logger.Info("session ready",
			zap.String("account", snap.ConnectedAccount),
			zap.Int("transactions", len(snap.Transactions)),
		)
	}()

	// 5. HTTP
	h := handler.NewSessionHandler(rt.Manager, config.Global.Wallet.ConfirmTimeout)
	app := server.New(server.Config{HttpPort: config.Global.App.HttpPort}, server.NewHTTPRouter(h))
	app.Run()
}
