package web

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func RegisterLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestLogger := logger.
			With().
			Str(CorrelationIdKey, c.GetString(CorrelationIdKey)).
			Logger()

		c.Set(LoggerKey, &requestLogger)
	}
}
