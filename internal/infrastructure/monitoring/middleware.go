package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Middleware creates a Gin middleware for metrics collection.
func Middleware(metrics *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		c.Next()

		duration := time.Since(start)
		status := strconv.Itoa(c.Writer.Status())
		metrics.RecordHTTPRequest(method, path, status, duration)
	}
}

// Timer measures capability invocation duration.
type Timer struct {
	start      time.Time
	metrics    *Metrics
	capability string
	tool       string
}

// NewTimer creates a new timer.
func NewTimer(metrics *Metrics, capability, tool string) *Timer {
	return &Timer{
		start:      time.Now(),
		metrics:    metrics,
		capability: capability,
		tool:       tool,
	}
}

// Stop stops the timer and records the invocation.
func (t *Timer) Stop(status string) {
	t.metrics.RecordCapabilityCall(t.capability, t.tool, status, time.Since(t.start))
}
