package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bitbucket.org/crgw/rental-gateway/api"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testParams struct {
	Name string `json:"name"`
}

func newRouter(logs *bytes.Buffer, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)

	logger := zerolog.New(logs)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("logger", &logger)
	})
	router.POST("/api/rental", handlers...)

	return router
}

func serve(router *gin.Engine, body string, contentType string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/rental", strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestPrepareParams(t *testing.T) {
	var captured *testParams

	capture := func(c *gin.Context) {
		captured = c.MustGet(ParamsKey).(*testParams)
		c.Status(http.StatusOK)
	}

	t.Run("binds json body", func(t *testing.T) {
		router := newRouter(&bytes.Buffer{}, PrepareParams(testParams{}), capture)

		w := serve(router, `{"name":"A"}`, "application/json")

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, captured)
		assert.Equal(t, "A", captured.Name)
	})

	t.Run("empty body binds as empty object", func(t *testing.T) {
		router := newRouter(&bytes.Buffer{}, PrepareParams(testParams{}), capture)

		w := serve(router, "", "")

		assert.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, captured)
		assert.Equal(t, testParams{}, *captured)
	})

	t.Run("malformed body is rejected", func(t *testing.T) {
		router := newRouter(&bytes.Buffer{}, PrepareParams(testParams{}), capture)

		w := serve(router, `{"name":`, "application/json")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Failed to bind request params")
	})

	t.Run("pointer is refused at setup", func(t *testing.T) {
		assert.Panics(t, func() {
			PrepareParams(&testParams{})
		})
	})
}

func TestTapLogger(t *testing.T) {
	var logs bytes.Buffer

	router := newRouter(&logs, TapLogger("rental"), func(c *gin.Context) {
		logger := c.MustGet("logger").(*zerolog.Logger)
		logger.Info().Msg("tapped")
		c.Status(http.StatusOK)
	})

	serve(router, "", "")

	assert.Contains(t, logs.String(), `"operation":"rental"`)
	assert.Contains(t, logs.String(), `"operationId":"`)
}

func TestOpenapiValidator(t *testing.T) {
	doc, err := api.Load()
	require.NoError(t, err)

	ok := func(c *gin.Context) {
		c.Status(http.StatusOK)
	}

	tests := []struct {
		name string
		body string
		code int
	}{
		{
			name: "valid request",
			body: `{"name":"A","email":"a@x.com","model":"Civic","year":"2020","rentalDuration":"3 days"}`,
			code: http.StatusOK,
		},
		{
			name: "integer year",
			body: `{"name":"A","email":"a@x.com","year":2020,"rentalDuration":3}`,
			code: http.StatusOK,
		},
		{
			name: "missing email",
			body: `{"name":"A"}`,
			code: http.StatusBadRequest,
		},
		{
			name: "year of wrong type",
			body: `{"name":"A","email":"a@x.com","year":true}`,
			code: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newRouter(&bytes.Buffer{}, OpenapiValidator(doc, http.MethodPost, "/api/rental"), ok)

			w := serve(router, tt.body, "application/json")

			assert.Equal(t, tt.code, w.Code)
		})
	}

	t.Run("unknown operation panics", func(t *testing.T) {
		assert.Panics(t, func() {
			OpenapiValidator(doc, http.MethodGet, "/api/unknown")
		})
	})
}
