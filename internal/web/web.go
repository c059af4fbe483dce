package web

import (
	"net/http"
	"time"

	"bitbucket.org/crgw/rental-gateway/api"
	"bitbucket.org/crgw/rental-gateway/internal/config"
	"bitbucket.org/crgw/rental-gateway/internal/rental"
	"bitbucket.org/crgw/rental-gateway/internal/tools/responding"
	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

type RouterOptions struct {
	// OpenAPI enables request validation against the document when set.
	OpenAPI *openapi3.T

	// Metrics is served on /metrics when set.
	Metrics prometheus.Gatherer

	ErrorDetail config.ErrorDetail
}

func SetupRouter(log *zerolog.Logger, submitter rental.Submitter, options RouterOptions) *gin.Engine {
	startTime := time.Now()

	router := gin.New()

	router.
		Use(StartRequest).
		Use(CorrelationId).
		Use(RegisterLogger(log)).
		Use(TraceLog).
		Use(responding.ErrorDetail(options.ErrorDetail)).
		Use(PanicRecovery).
		Use(cors.New(corsConfig()))

	router.GET("/status", func(c *gin.Context) {
		response := struct {
			Uptime float64 `json:"uptime"`
		}{
			Uptime: time.Since(startTime).Seconds(),
		}

		c.JSON(http.StatusOK, response)
	})

	router.GET("/openapi.json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", api.Document)
	})

	if options.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(options.Metrics, promhttp.HandlerOpts{})))
	}

	pprof.Register(router)

	rental.RegisterRoutes(router, submitter, rental.RouteOptions{
		OpenAPI: options.OpenAPI,
	})

	return router
}

func corsConfig() cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = true
	cfg.AllowHeaders = append(cfg.AllowHeaders, "X-Correlation-Id")
	return cfg
}
