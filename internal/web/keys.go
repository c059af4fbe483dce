package web

// Request scoped values set on the gin context.
const (
	LoggerKey           = "logger"
	CorrelationIdKey    = "correlationId"
	RequestStartTimeKey = "requestStartTime"

	CorrelationIdHeader = "x-correlation-id"
)
