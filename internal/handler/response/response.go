package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"wallet-session/pkg/errno"
)

// Response defines the standard JSON structure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"msg"`
	Data    interface{} `json:"data"`
}

// Success returns a success response with data
func Success(c *gin.Context, data interface{}) {
	if data == nil {
		data = gin.H{} // Return empty object instead of null
	}
	c.JSON(http.StatusOK, Response{
		Code:    errno.OK.Code,
		Message: errno.OK.Message,
		Data:    data,
	})
}

// Error returns an error response; the HTTP status follows the error category
func Error(c *gin.Context, err error) {
	code, msg := errno.Decode(err)
	c.JSON(StatusOf(code), Response{
		Code:    code,
		Message: msg,
		Data:    gin.H{},
	})
}

// StatusOf maps an errno code to an HTTP status.
func StatusOf(code int) int {
	switch code {
	case errno.OK.Code:
		return http.StatusOK
	case errno.ErrBind.Code, errno.ErrInvalidAmount.Code, errno.ErrInvalidAddress.Code, errno.ErrUnknownField.Code:
		return http.StatusBadRequest
	case errno.ErrNotConnected.Code, errno.ErrNoAccounts.Code:
		return http.StatusConflict
	case errno.ErrUserRejected.Code:
		return http.StatusForbidden
	case errno.ErrMissingProvider.Code:
		return http.StatusServiceUnavailable
	case errno.ErrNetwork.Code, errno.ErrProvider.Code, errno.ErrContractRevert.Code:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
