package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response JSON envelope used by the infrastructure endpoints
type Response struct {
	Code    int         `json:"code"` // 0 on success
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"` // only filled in debug mode
}

// Success 200 with data
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error JSON error with the given HTTP status. err is only exposed in debug mode.
func Error(c *gin.Context, status int, message string, data interface{}, err error) {
	resp := Response{
		Code:    status,
		Message: message,
		Data:    data,
	}
	if gin.Mode() == gin.DebugMode && err != nil {
		resp.Error = err.Error()
	}
	c.JSON(status, resp)
}

// NotAllowed plain-text refusal for ownership checks
func NotAllowed(c *gin.Context, message string) {
	c.String(http.StatusForbidden, message)
}

// Redirect 302 to location, ending the request
func Redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
	c.Abort()
}
