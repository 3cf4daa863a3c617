package monitor

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义会话层业务指标
type BusinessMetrics struct {
	TransactionsSubmitted *prometheus.CounterVec
	ProviderFailures      *prometheus.CounterVec
	PendingConfirmations  prometheus.Gauge
	ConfirmationDuration  prometheus.Histogram
	WalletConnections     *prometheus.CounterVec
}

// business 在 InitBusinessMetrics 之前为 nil; 启动任务可能和 Init 并发读取
var business atomic.Pointer[BusinessMetrics]

// Business returns the registered business metrics, or nil before Init.
func Business() *BusinessMetrics {
	return business.Load()
}

// InitBusinessMetrics 初始化业务指标, 由 Init 调用一次
func InitBusinessMetrics() {
	business.Store(&BusinessMetrics{
		TransactionsSubmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_session_transactions_submitted_total",
			Help: "Transactions submitted through the session, by result",
		}, []string{"result"}),
		ProviderFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_session_provider_failures_total",
			Help: "Failed provider or contract calls, by error code",
		}, []string{"op", "code"}),
		PendingConfirmations: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "wallet_session_pending_confirmations",
			Help: "Broadcast transactions still waiting for a receipt",
		}),
		ConfirmationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "wallet_session_confirmation_duration_seconds",
			Help:    "Time between broadcast of the record call and its receipt",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300},
		}),
		WalletConnections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wallet_session_wallet_connections_total",
			Help: "Wallet authorizations, by flow (connect or check)",
		}, []string{"flow"}),
	})
}

// 下面的 helper 在业务指标未初始化时什么都不做 (单元测试、CLI)

func ObserveSubmitted(result string) {
	if b := business.Load(); b != nil {
		b.TransactionsSubmitted.WithLabelValues(result).Inc()
	}
}

func ObserveFailure(op string, code int) {
	if b := business.Load(); b != nil {
		b.ProviderFailures.WithLabelValues(op, strconv.Itoa(code)).Inc()
	}
}

func ObservePending(delta float64) {
	if b := business.Load(); b != nil {
		b.PendingConfirmations.Add(delta)
	}
}

func ObserveConfirmation(started time.Time) {
	if b := business.Load(); b != nil {
		b.ConfirmationDuration.Observe(time.Since(started).Seconds())
	}
}

func ObserveConnection(flow string) {
	if b := business.Load(); b != nil {
		b.WalletConnections.WithLabelValues(flow).Inc()
	}
}
