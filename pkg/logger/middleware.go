package logger

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecoveryMiddleware turns a panic into a 500 and logs it
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		var msg string
		switch v := recovered.(type) {
		case error:
			msg = v.Error()
		default:
			msg = fmt.Sprintf("%v", v)
		}
		Error("panic while handling request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("ip", c.ClientIP()),
			zap.String("error", msg),
		)
		c.AbortWithStatus(http.StatusInternalServerError)
	})
}

// RequestLogger logs one entry per request, level chosen by status code
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := map[string]interface{}{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"query":      c.Request.URL.RawQuery,
			"ip":         c.ClientIP(),
			"status":     status,
			"latency":    latency.String(),
			"user_agent": c.Request.UserAgent(),
		}
		if errs := c.Errors.ByType(gin.ErrorTypeAny).String(); errs != "" {
			fields["errors"] = errs
		}
		logger := WithFields(fields)

		switch {
		case status >= 500:
			logger.Error("http request failed")
		case status >= 400:
			logger.Warn("http request rejected")
		default:
			logger.Info("http request")
		}
	}
}
