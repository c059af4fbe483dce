package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"bitbucket.org/crgw/rental-gateway/api"
	"bitbucket.org/crgw/rental-gateway/internal/config"
	"bitbucket.org/crgw/rental-gateway/internal/metrics"
	"bitbucket.org/crgw/rental-gateway/internal/queue/queuetest"
	"bitbucket.org/crgw/rental-gateway/internal/rental"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	connectionString = "Endpoint=sb://rentals.servicebus.windows.net/;SharedAccessKeyName=send;SharedAccessKey=c2VjcmV0"
	civicBody        = `{"name":"A","email":"a@x.com","model":"Civic","year":"2020","rentalDuration":"3 days"}`
)

type routerSetup struct {
	provider    config.Provider
	transport   *queuetest.Transport
	errorDetail config.ErrorDetail
	validation  bool
	logs        *bytes.Buffer
	registry    *prometheus.Registry
}

func newRouter(t *testing.T, setup routerSetup) *gin.Engine {
	gin.SetMode(gin.TestMode)

	if setup.logs == nil {
		setup.logs = &bytes.Buffer{}
	}
	log := zerolog.New(setup.logs)

	options := RouterOptions{ErrorDetail: setup.errorDetail}
	gatewayOptions := []rental.OptionFunc{rental.WithValidation(setup.validation)}

	if setup.validation {
		doc, err := api.Load()
		require.NoError(t, err)
		options.OpenAPI = doc
	}

	if setup.registry != nil {
		m, err := metrics.New(setup.registry)
		require.NoError(t, err)
		options.Metrics = setup.registry
		gatewayOptions = append(gatewayOptions, rental.WithMetrics(m))
	}

	gateway := rental.NewGateway(setup.provider, setup.transport, gatewayOptions...)

	return SetupRouter(&log, gateway, options)
}

func post(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/api/rental", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRentalEndToEnd(t *testing.T) {
	for _, validation := range []bool{true, false} {
		name := "validation disabled"
		if validation {
			name = "validation enabled"
		}

		t.Run(name, func(t *testing.T) {
			t.Run("valid configuration sends one message", func(t *testing.T) {
				transport := queuetest.New()
				router := newRouter(t, routerSetup{
					provider:    config.StaticProvider(connectionString),
					transport:   transport,
					errorDetail: config.ErrorDetailStack,
					validation:  validation,
				})

				w := post(router, civicBody, nil)

				assert.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, rental.SuccessMessage, w.Body.String())

				sent := transport.Sent()
				require.Len(t, sent, 1)
				assert.Equal(t, rental.Destination, sent[0].Destination)

				var body map[string]any
				require.NoError(t, json.Unmarshal(sent[0].Envelope.Body, &body))
				date, ok := body["date"].(string)
				require.True(t, ok)
				_, err := time.Parse(rental.DateLayout, date)
				assert.NoError(t, err)

				delete(body, "date")
				var input map[string]any
				require.NoError(t, json.Unmarshal([]byte(civicBody), &input))
				assert.Equal(t, input, body)
			})

			t.Run("empty configuration answers 500 and sends nothing", func(t *testing.T) {
				transport := queuetest.New()
				router := newRouter(t, routerSetup{
					provider:    config.StaticProvider(""),
					transport:   transport,
					errorDetail: config.ErrorDetailStack,
					validation:  validation,
				})

				w := post(router, civicBody, nil)

				assert.Equal(t, http.StatusInternalServerError, w.Code)
				assert.Empty(t, transport.Sent())
				assert.Equal(t, 0, transport.ConnectAttempts())
			})
		})
	}
}

func TestRentalErrorDetail(t *testing.T) {
	tests := []struct {
		detail    config.ErrorDetail
		wantError bool
		wantStack bool
	}{
		{detail: config.ErrorDetailStack, wantError: true, wantStack: true},
		{detail: config.ErrorDetailMessage, wantError: true},
		{detail: config.ErrorDetailNone},
	}

	for _, tt := range tests {
		t.Run(string(tt.detail), func(t *testing.T) {
			transport := queuetest.New()
			transport.SendErr = errors.New("broker rejected message")
			router := newRouter(t, routerSetup{
				provider:    config.StaticProvider(connectionString),
				transport:   transport,
				errorDetail: tt.detail,
			})

			w := post(router, civicBody, nil)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, 1, transport.SenderCloses())
			assert.Equal(t, 1, transport.ConnectionCloses())

			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, "Internal server error", body["message"])

			if tt.wantError {
				assert.Equal(t, "broker rejected message", body["error"])
			} else {
				assert.Equal(t, "Internal server error", body["error"])
				assert.NotContains(t, w.Body.String(), "broker rejected message")
			}

			if tt.wantStack {
				assert.NotEmpty(t, body["stack"])
			} else {
				assert.NotContains(t, body, "stack")
			}
		})
	}
}

func TestMiddlewareChain(t *testing.T) {
	t.Run("correlation id is propagated to logs and response", func(t *testing.T) {
		var logs bytes.Buffer
		router := newRouter(t, routerSetup{
			provider:    config.StaticProvider(connectionString),
			transport:   queuetest.New(),
			errorDetail: config.ErrorDetailStack,
			logs:        &logs,
		})

		w := post(router, civicBody, map[string]string{CorrelationIdHeader: "abc-123"})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "abc-123", w.Header().Get(CorrelationIdHeader))
		assert.Contains(t, logs.String(), `"correlationId":"abc-123"`)
		assert.Contains(t, logs.String(), `"label":"trace"`)
		assert.Contains(t, logs.String(), `"operation":"rental"`)
		assert.NotContains(t, logs.String(), "c2VjcmV0")
	})

	t.Run("a failed submission logs one error line", func(t *testing.T) {
		var logs bytes.Buffer
		transport := queuetest.New()
		transport.SendErr = errors.New("broker rejected message")
		router := newRouter(t, routerSetup{
			provider:  config.StaticProvider(connectionString),
			transport: transport,
			logs:      &logs,
		})

		w := post(router, civicBody, nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, 1, strings.Count(logs.String(), `"level":"error"`))
	})

	t.Run("generated correlation id", func(t *testing.T) {
		router := newRouter(t, routerSetup{
			provider:  config.StaticProvider(connectionString),
			transport: queuetest.New(),
		})

		w := post(router, civicBody, nil)

		assert.NotEmpty(t, w.Header().Get(CorrelationIdHeader))
	})

	t.Run("any origin is allowed", func(t *testing.T) {
		router := newRouter(t, routerSetup{
			provider:  config.StaticProvider(connectionString),
			transport: queuetest.New(),
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodOptions, "/api/rental", nil)
		req.Header.Set("Origin", "https://rentals.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("panics answer 500", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		var logs bytes.Buffer
		log := zerolog.New(&logs)

		router := gin.New()
		router.Use(StartRequest, CorrelationId, RegisterLogger(&log), TraceLog, PanicRecovery)
		router.GET("/boom", func(c *gin.Context) {
			panic("boom")
		})

		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/boom", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), `"message":"boom"`)
		assert.Contains(t, logs.String(), `"code":500`)
	})
}

func TestOperationalRoutes(t *testing.T) {
	registry := prometheus.NewRegistry()
	router := newRouter(t, routerSetup{
		provider:  config.StaticProvider(connectionString),
		transport: queuetest.New(),
		registry:  registry,
	})

	post(router, civicBody, nil)

	t.Run("status", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/status", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"uptime"`)
	})

	t.Run("openapi document", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/openapi.json", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, string(api.Document), w.Body.String())
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/metrics", nil)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `rental_gateway_submissions_total{outcome="success",transport="fake"} 1`)
	})
}
