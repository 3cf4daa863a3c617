package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"wallet-session/internal/handler/request"
	"wallet-session/internal/handler/response"
	"wallet-session/internal/model"
	"wallet-session/internal/session"
	"wallet-session/pkg/errno"
)

// SessionHandler exposes one session manager over HTTP.
type SessionHandler struct {
	manager *session.Manager

	// confirmTimeout 限制一次发送等待确认的总时长
	confirmTimeout time.Duration
	// keepalive 是 SSE 注释行的间隔
	keepalive time.Duration
}

func NewSessionHandler(m *session.Manager, confirmTimeout time.Duration) *SessionHandler {
	return &SessionHandler{
		manager:        m,
		confirmTimeout: confirmTimeout,
		keepalive:      15 * time.Second,
	}
}

// GetSession GET /api/v1/session
func (h *SessionHandler) GetSession(c *gin.Context) {
	response.Success(c, h.manager.Snapshot())
}

// ConnectWallet POST /api/v1/wallet/connect
func (h *SessionHandler) ConnectWallet(c *gin.Context) {
	if err := h.manager.ConnectWallet(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.manager.Snapshot())
}

// SetForm PUT /api/v1/form
func (h *SessionHandler) SetForm(c *gin.Context) {
	var req request.SetFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.New(errno.ErrBind, "setForm", err))
		return
	}
	h.manager.SetFormData(req.Draft())
	response.Success(c, h.manager.Snapshot().FormData)
}

// ChangeField PATCH /api/v1/form/:field
func (h *SessionHandler) ChangeField(c *gin.Context) {
	var req request.ChangeFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errno.New(errno.ErrBind, "handleChange", err))
		return
	}
	if err := h.manager.HandleChange(c.Param("field"), *req.Value); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.manager.Snapshot().FormData)
}

// SendTransaction POST /api/v1/transactions
// 客户端断开不会中断等待确认, 只受 confirmTimeout 限制
func (h *SessionHandler) SendTransaction(c *gin.Context) {
	ctx := context.WithoutCancel(c.Request.Context())
	if h.confirmTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.confirmTimeout)
		defer cancel()
	}

	if err := h.manager.SendTransaction(ctx); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, h.manager.Snapshot())
}

// ListTransactions GET /api/v1/transactions
func (h *SessionHandler) ListTransactions(c *gin.Context) {
	if err := h.manager.GetAllTransactions(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	txs := h.manager.Snapshot().Transactions
	if txs == nil {
		txs = []model.TransactionRecord{}
	}
	response.Success(c, txs)
}
