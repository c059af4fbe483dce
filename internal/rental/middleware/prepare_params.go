package middleware

import (
	"errors"
	"io"
	"net/http"
	"reflect"

	"bitbucket.org/crgw/rental-gateway/internal/tools/responding"
	"github.com/gin-gonic/gin"
)

const (
	ParamsKey string = "params"
)

// PrepareParams binds the JSON body into a new value of val's type and stores
// a pointer to it under ParamsKey. An empty body binds as an empty object.
func PrepareParams(val any) gin.HandlerFunc {
	value := reflect.ValueOf(val)
	if value.Kind() == reflect.Ptr {
		panic(`Bind struct can not be a pointer.`)
	}

	typ := value.Type()

	return func(ctx *gin.Context) {
		params := reflect.New(typ).Interface()

		err := ctx.ShouldBindJSON(params)
		if err != nil && !errors.Is(err, io.EOF) {
			responding.HandleError(ctx, http.StatusBadRequest, "Failed to bind request params", err)
			return
		}

		ctx.Set(ParamsKey, params)
	}
}
