package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"statbench/internal"
)

// RequestLogger logs one line per request. Server errors log at warn level.
func RequestLogger(logger *internal.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		elapsed := time.Since(start)
		if status >= 500 {
			logger.Warn("%s %s -> %d (%s) %s", c.Request.Method, c.Request.URL.Path, status, elapsed, c.Errors.String())
			return
		}
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, status, elapsed)
	}
}
