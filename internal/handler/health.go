package handler

import (
	"github.com/gin-gonic/gin"

	"wallet-session/internal/handler/response"
)

// HealthCheck reports that the server is up.
func HealthCheck(c *gin.Context) {
	response.Success(c, gin.H{
		"status":  "UP",
		"version": "1.0.0",
		"service": "session-server",
	})
}
