package middleware

import (
	"fmt"
	"net/http"

	"bitbucket.org/crgw/rental-gateway/internal/tools/responding"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/gin-gonic/gin"
)

// OpenapiValidator checks requests against the operation doc declares for
// method and path. It panics at setup if the operation is missing.
func OpenapiValidator(doc *openapi3.T, method, path string) gin.HandlerFunc {
	pathItem := doc.Paths.Find(path)
	if pathItem == nil || pathItem.GetOperation(method) == nil {
		panic(fmt.Sprintf("openapi operation %s %s not found", method, path))
	}

	route := &routers.Route{
		Spec:      doc,
		Path:      path,
		PathItem:  pathItem,
		Method:    method,
		Operation: pathItem.GetOperation(method),
	}

	return func(ctx *gin.Context) {
		input := &openapi3filter.RequestValidationInput{
			Request: ctx.Request,
			Route:   route,
		}

		if err := openapi3filter.ValidateRequest(ctx.Request.Context(), input); err != nil {
			responding.HandleError(ctx, http.StatusBadRequest, "Request does not match the API schema", err)
			return
		}
	}
}
