package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/leafkeep/plantcare-backend/internal/platform/logger"
)

// RequestLog emits one structured line per request after it completes.
func RequestLog(log *logger.Logger) gin.HandlerFunc {
	reqLog := log.With("component", "http")
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()

		fields := []interface{}{
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed_ms", time.Since(started).Milliseconds(),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "errors", c.Errors.String())
		}
		if c.Writer.Status() >= 500 {
			reqLog.Error("Request failed", fields...)
			return
		}
		reqLog.Info("Request completed", fields...)
	}
}
