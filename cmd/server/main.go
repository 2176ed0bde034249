package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"word-orchestrator/internal/adapter/word_http"
	"word-orchestrator/internal/di"
	"word-orchestrator/internal/infra/config"
	"word-orchestrator/internal/infra/logger"
	"word-orchestrator/internal/infra/telemetry"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 1. Load Config
	cfg := config.Load()

	// 2. Initialize Telemetry (before the logger so the OTel bridge sees the provider)
	shutdownTelemetry, err := telemetry.InitProvider(ctx, telemetry.Config{
		ServiceName:  cfg.Telemetry.ServiceName,
		Environment:  cfg.Env,
		OTLPEndpoint: cfg.Telemetry.OTLPEndpoint,
		Enabled:      cfg.Telemetry.OTelEnabled,
		SampleRatio:  cfg.Telemetry.SampleRatio,
	})
	if err != nil {
		return fmt.Errorf("failed to init telemetry: %w", err)
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(flushCtx)
	}()

	// 3. Initialize Logger
	log := logger.New(logger.Options{
		Level:       cfg.Telemetry.LogLevel,
		ServiceName: cfg.Telemetry.ServiceName,
		ExportOTel:  cfg.Telemetry.OTelEnabled,
	})
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Telemetry.LogLevel, "otel_enabled", cfg.Telemetry.OTelEnabled)
	requestLog := logger.NewContextLogger(log, cfg.Telemetry.ServiceName)

	// 4. Wire Components
	app, err := di.NewApplicationComponents(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.Close()

	// 5. Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	if cfg.Telemetry.OTelEnabled {
		e.Use(otelecho.Middleware(cfg.Telemetry.ServiceName))
	}
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/healthz" || p == "/readyz" || p == "/metrics"
		},
		LogStatus:   true,
		LogURI:      true,
		LogError:    true,
		LogMethod:   true,
		LogLatency:  true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			rctx := c.Request().Context()
			if runID := c.Response().Header().Get("X-Run-Id"); runID != "" {
				rctx = logger.WithRunID(rctx, runID)
			}
			l := requestLog.WithContext(rctx)
			if v.Error == nil {
				l.InfoContext(rctx, "request completed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds())
			} else {
				l.ErrorContext(rctx, "request failed",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
					"latency_ms", v.Latency.Milliseconds(),
					"error", v.Error.Error())
			}
			return nil
		},
	}))
	e.Use(middleware.Recover())

	// 6. Request Validation
	doc, err := word_http.LoadOpenAPI(ctx)
	if err != nil {
		return err
	}
	validator, err := word_http.OpenAPIValidator(doc)
	if err != nil {
		return err
	}
	e.Use(validator)

	// 7. Register Handlers
	handler := word_http.NewHandler(app.FindRelatedWordsUsecase, app.LookupSimilarWordsUsecase, log)
	handler.Register(e)

	// 8. Health Checks and Metrics
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/readyz", func(c echo.Context) error {
		if err := app.Ready(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready", "error": err.Error()})
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(app.Registry, promhttp.HandlerOpts{})))

	// 9. Start Server (h2c so HTTP/2 clients work without TLS)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:           h2c.NewHandler(e, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 10. Graceful Shutdown
	g.Go(func() error {
		<-gCtx.Done()
		log.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
