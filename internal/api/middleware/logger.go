package middleware

import (
	"time"

	"microgrid-sim/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

// Logger tags every request with an ID and logs it once it completes.
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)

		c.Next()

		status := c.Writer.Status()
		fields := map[string]any{
			"request_id": id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": time.Since(start).Milliseconds(),
		}
		if status >= 500 {
			log.Errorf("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, id)
			return
		}
		log.Debugw("request", fields)
	}
}
