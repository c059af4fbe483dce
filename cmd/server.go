//go:build !integration

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"bitbucket.org/crgw/rental-gateway/api"
	"bitbucket.org/crgw/rental-gateway/internal/config"
	"bitbucket.org/crgw/rental-gateway/internal/metrics"
	"bitbucket.org/crgw/rental-gateway/internal/queue/factory"
	"bitbucket.org/crgw/rental-gateway/internal/queue/implementations/channel"
	"bitbucket.org/crgw/rental-gateway/internal/rental"
	"bitbucket.org/crgw/rental-gateway/internal/tools/logger"
	"bitbucket.org/crgw/rental-gateway/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
)

func serverApp(httpServer *http.Server, logger *zerolog.Logger) int {
	shutdown := false
	done := make(chan error, 1)
	stop := make(chan os.Signal, 1)
	go func() {
		logger.
			Info().
			Msg("Listening on address " + httpServer.Addr)
		done <- httpServer.ListenAndServe()
	}()
	go func() {
		// Wait for stop
		<-stop
		shutdown = true
		logger.Info().Msg("Shutting down server...")
		_ = httpServer.Shutdown(context.Background())
	}()

	// Notify stop channel if SIGINT or SIGTERM is received
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	err := <-done
	if err != nil && !shutdown {
		logger.
			Error().
			Err(err).
			Msg("Server failed")
		return 1
	}
	return 0
}

func main() {
	_ = godotenv.Load(".env")
	log := logger.New(os.Getenv("LOG_LEVEL"))

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	log.Info().Str("config", cfg.String()).Msg("Configuration loaded")

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	transport, err := factory.New(cfg.Transport, log)
	if err != nil {
		log.Fatal().Err(err).Strs("supported", factory.Names).Msg("Invalid queue transport")
	}

	if local, ok := transport.(*channel.Transport); ok {
		if err := channel.LogMessages(context.Background(), local, rental.Destination, log); err != nil {
			log.Fatal().Err(err).Msg("Failed to subscribe to local channel")
		}
	}

	gatewayOptions := []rental.OptionFunc{
		rental.WithValidation(cfg.RequestValidation),
		rental.WithSendTimeout(cfg.SendTimeout),
	}

	routerOptions := web.RouterOptions{
		ErrorDetail: cfg.ErrorDetail,
	}

	if cfg.RequestValidation {
		doc, err := api.Load()
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load OpenAPI document")
		}
		routerOptions.OpenAPI = doc
	}

	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)

		m, err := metrics.New(registry)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to register metrics")
		}

		gatewayOptions = append(gatewayOptions, rental.WithMetrics(m))
		routerOptions.Metrics = registry
	}

	gateway := rental.NewGateway(cfg.Provider(), transport, gatewayOptions...)

	appRouter := web.SetupRouter(log, gateway, routerOptions)

	var host string
	if os.Getenv("TEST") == "true" {
		host = "localhost"
	}

	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", host, cfg.Port),
		Handler: appRouter,
	}

	os.Exit(serverApp(httpServer, log))
}
