package session

import (
	"context"

	"go.uber.org/zap"
)

// MissingProviderNotice 是没有检测到钱包时给用户的提示
const MissingProviderNotice = "Please install MetaMask"

// Notifier 向用户展示阻塞式提示 (浏览器里的 alert)
type Notifier interface {
	Notify(ctx context.Context, message string)
}

// LogNotifier 把提示写进日志, 用于没有界面的场景
type LogNotifier struct {
	Log *zap.Logger
}

func (n LogNotifier) Notify(ctx context.Context, message string) {
	if n.Log != nil {
		n.Log.Warn("user notice", zap.String("message", message))
	}
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, message string)

func (f NotifierFunc) Notify(ctx context.Context, message string) {
	f(ctx, message)
}
