package rental

import (
	"context"
	"errors"
	"net/http"

	"bitbucket.org/crgw/rental-gateway/internal/rental/middleware"
	"bitbucket.org/crgw/rental-gateway/internal/tools/responding"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type Submitter interface {
	SubmitRental(ctx context.Context, request RentalRequest, logger *zerolog.Logger) (QueueMessage, error)
}

// ConfigurationChecker is implemented by submitters that can report a
// missing broker configuration before the request body is inspected.
type ConfigurationChecker interface {
	CheckConfiguration() error
}

type RouteOptions struct {
	// OpenAPI, when set, validates request bodies before they are bound.
	OpenAPI *openapi3.T
}

func RegisterRoutes(router gin.IRouter, submitter Submitter, options RouteOptions) {
	group := router.Group("/api", middleware.TapLogger("rental"))

	handlers := []gin.HandlerFunc{}
	if checker, ok := submitter.(ConfigurationChecker); ok {
		handlers = append(handlers, requireConfiguration(checker))
	}
	if options.OpenAPI != nil {
		handlers = append(handlers, middleware.OpenapiValidator(options.OpenAPI, http.MethodPost, "/api/rental"))
	}

	handlers = append(handlers,
		middleware.PrepareParams(RentalRequest{}),
		func(ctx *gin.Context) {
			params, ok := ctx.MustGet(middleware.ParamsKey).(*RentalRequest)
			if !ok {
				responding.HandleError(ctx, http.StatusInternalServerError, "Bad request params", errors.New("unexpected params type"))
				return
			}

			logger := ctx.MustGet("logger").(*zerolog.Logger)

			_, err := submitter.SubmitRental(ctx.Request.Context(), *params, logger)
			if err != nil {
				responding.HandleError(ctx, StatusCode(err), PublicMessage(err), err)
				return
			}

			ctx.String(http.StatusOK, SuccessMessage)
		},
	)

	group.POST("/rental", handlers...)
}

// requireConfiguration answers 500 before schema checks and binding, so a
// missing connection string wins over a bad payload.
func requireConfiguration(checker ConfigurationChecker) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if err := checker.CheckConfiguration(); err != nil {
			responding.HandleError(ctx, StatusCode(err), PublicMessage(err), err)
			return
		}
		ctx.Next()
	}
}
