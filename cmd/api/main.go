package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"capi-event-relay/internal/config"
	eventsCapi "capi-event-relay/internal/events/adapters/capi"
	eventsHttp "capi-event-relay/internal/events/adapters/http/fiber"
	"capi-event-relay/internal/events/core/domain"
	eventsUsecase "capi-event-relay/internal/events/core/usecase"
	"capi-event-relay/internal/events/core/validation"

	metricsStatsd "capi-event-relay/internal/metrics/adapters/dogstatsd"
	metricsUsecase "capi-event-relay/internal/metrics/core/usecase"

	"capi-event-relay/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberLogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	_ "capi-event-relay/docs"
)

// @title CAPI Event Relay
// @version 1.0
// @description Server-side relay for Meta Conversions API events.
// @BasePath /
func main() {
	// Config
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(err)
	}

	logger.Init(cfg.LogLevel, cfg.IsProduction())
	log := logger.Logger()
	defer func() { _ = log.Sync() }()

	if cfg.PixelID == "" || cfg.AccessToken == "" {
		log.Warn("no default Meta credentials configured; requests must send credential headers")
	}

	// Metrics
	statsdClient, err := metricsStatsd.NewClient(cfg.StatsdAddr, cfg.AppName, cfg.AppEnv)
	if err != nil {
		log.Fatal("failed to create statsd client", zap.Error(err))
	}
	defer func() { _ = statsdClient.Close() }()

	metricsWriter := metricsStatsd.NewWriter(statsdClient, cfg.MetricSamplingRate, log)
	recordRelayUC := metricsUsecase.NewRecordRelayUseCase(metricsWriter)

	// Outbound
	forwarder, err := eventsCapi.NewForwarder(eventsCapi.Config{
		BaseURL:    cfg.APIBaseURL,
		APIVersion: cfg.APIVersion,
		Timeout:    cfg.UpstreamTimeout,
	}, log)
	if err != nil {
		log.Fatal("failed to create conversions api forwarder", zap.Error(err))
	}

	// Usecases
	validator := validation.New(validation.Config{
		MaxEventAge:    cfg.EventMaxAge,
		MaxFutureSkew:  cfg.EventMaxFutureSkew,
		PixelIDPattern: cfg.PixelIDRegexp(),
	})
	relayEventUC := eventsUsecase.NewRelayEventUseCase(validator, forwarder, recordRelayUC, log)

	// HTTP (Fiber) app + handlers
	app := fiber.New(fiber.Config{
		AppName: cfg.AppName,
	})

	app.Use(recover.New())
	app.Use(fiberLogger.New(fiberLogger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.GetCORSAllowOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept, " +
			eventsHttp.HeaderPixelID + ", " + eventsHttp.HeaderAccessToken,
		ExposeHeaders: eventsHttp.HeaderRequestID,
	}))

	// events endpoints
	eventsHandler := eventsHttp.NewEventHandler(relayEventUC, eventsHttp.HandlerConfig{
		ServiceName: cfg.AppName,
		Defaults: domain.Credentials{
			PixelID:     cfg.PixelID,
			AccessToken: cfg.AccessToken,
		},
		TrustedIPHeader: cfg.TrustedIPHeader,
	}, log)
	app.Post("/v1/process-event", eventsHandler.ProcessEvent)
	app.Get("/health", eventsHandler.Health)

	// Swagger
	app.Get("/docs/*", fiberSwagger.WrapHandler)
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/docs/index.html")
	})

	// Graceful shutdown
	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("fiber stopped", zap.Error(err))
		}
	}()

	log.Info("server started",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
		zap.String("api_version", cfg.APIVersion),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit

	log.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error("fiber shutdown error", zap.Error(err))
	}

	log.Info("server exiting")
}
