package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wallet-session/internal/handler"
	"wallet-session/internal/provider/providertest"
	"wallet-session/internal/session"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	addr := common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3")
	m := session.NewManager(session.Options{
		Provider:        providertest.New(addr),
		ContractAddress: addr,
	})
	return NewHTTPRouter(handler.NewSessionHandler(m, time.Second))
}

func TestRouter(t *testing.T) {
	r := newTestRouter()

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/api/v1/session", http.StatusOK},
		{http.MethodGet, "/api/v1/transactions", http.StatusOK},
		{http.MethodPost, "/api/v1/transactions", http.StatusConflict},
		{http.MethodGet, "/api/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}
