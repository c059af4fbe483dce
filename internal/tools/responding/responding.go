package responding

import (
	"errors"
	"fmt"
	"strings"

	"bitbucket.org/crgw/rental-gateway/internal/config"
	"github.com/gin-gonic/gin"
	pkgerrors "github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const ErrorDetailKey string = "errorDetail"

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Stack   string `json:"stack,omitempty"`
}

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// ErrorDetail stores the verbosity used by HandleError for this request.
func ErrorDetail(detail config.ErrorDetail) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ErrorDetailKey, detail)
	}
}

// HandleError aborts the request with a JSON failure body. How much of err
// reaches the caller depends on the detail level set by ErrorDetail.
func HandleError(c *gin.Context, status int, message string, err error) {
	if logger, ok := c.Value("logger").(*zerolog.Logger); ok && err != nil {
		logger.Error().
			Err(err).
			Int("code", status).
			Str("stack", Stack(err)).
			Msg(message)
	}

	c.AbortWithStatusJSON(status, NewErrorResponse(detailOf(c), message, err))
}

func NewErrorResponse(detail config.ErrorDetail, message string, err error) ErrorResponse {
	response := ErrorResponse{Message: message}
	if err == nil {
		return response
	}

	// The error field is always present on failures. Under none it repeats
	// the generic message instead of the cause.
	if detail == config.ErrorDetailNone {
		response.Error = message
		return response
	}

	response.Error = err.Error()
	if detail == config.ErrorDetailStack {
		response.Stack = Stack(err)
	}

	return response
}

// Stack renders the outermost stack trace attached to err, or "" if none.
func Stack(err error) string {
	var tracer stackTracer
	if !errors.As(err, &tracer) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%+v", tracer.StackTrace()))
}

func detailOf(c *gin.Context) config.ErrorDetail {
	if detail, ok := c.Value(ErrorDetailKey).(config.ErrorDetail); ok {
		return detail
	}
	return config.ErrorDetailStack
}
