package middleware

import (
	"microgrid-sim/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics counts every request against its matched route pattern.
func Metrics(rec *metrics.Recorder) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		rec.ObserveRequest(c.Request.Method, c.FullPath(), c.Writer.Status())
	}
}
