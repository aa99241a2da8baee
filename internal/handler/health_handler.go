package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"forum-system/pkg/response"

	"github.com/gin-gonic/gin"
)

// HealthCheck pings one backing service
type HealthCheck func(ctx context.Context) error

// Health GET /health, 503 when any dependency is down
func Health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := gin.H{}
		var failure error
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status[name] = "down"
				failure = fmt.Errorf("%s: %w", name, err)
				continue
			}
			status[name] = "ok"
		}

		data := gin.H{
			"status":   "ok",
			"services": status,
			"time":     time.Now().Format(time.RFC3339),
		}
		if failure != nil {
			data["status"] = "degraded"
			response.Error(c, http.StatusServiceUnavailable, "unhealthy", data, failure)
			return
		}
		response.Success(c, data)
	}
}
