package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"wallet-session/pkg/logger"
)

const eventStreamContentType = "text/event-stream;charset=utf-8"

// StreamSession GET /api/v1/session/stream
// 每次会话状态变化推送一个 "session" 事件, 连接时先推送当前快照
func (h *SessionHandler) StreamSession(c *gin.Context) {
	// 1. SSE 头, 和 c.SSEvent 写入的 Content-Type 保持一致
	c.Header("Content-Type", eventStreamContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(200)
	c.Writer.Flush()

	// 2. 订阅, 连接结束时取消
	updates, cancel := h.manager.Store().Subscribe()
	defer cancel()

	logger.Debug("SSE client connected", zap.String("remote_addr", c.Request.RemoteAddr))

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	ctx := c.Request.Context()
	for {
		select {
		case <-keepalive.C:
			fmt.Fprint(c.Writer, ": keepalive\n\n")
			c.Writer.Flush()

		case state, ok := <-updates:
			if !ok {
				return
			}
			c.SSEvent("session", state)
			c.Writer.Flush()

		case <-ctx.Done():
			logger.Debug("SSE client disconnected", zap.String("remote_addr", c.Request.RemoteAddr))
			return
		}
	}
}
