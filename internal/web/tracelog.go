package web

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TraceLog(c *gin.Context) {
	// Finish all others and then write trace log
	c.Next()

	logger := c.MustGet(LoggerKey).(*zerolog.Logger)

	event := logger.Info()
	if c.Writer.Status() >= http.StatusInternalServerError {
		event = logger.Warn()
	}

	event.
		Str("label", "trace").
		Str("method", c.Request.Method).
		Str("url", c.Request.URL.Path).
		Str("clientIp", c.ClientIP()).
		Int("code", c.Writer.Status()).
		Int("size", c.Writer.Size()).
		Float64("duration", requestDuration(c).Seconds()).
		Msg("")
}
