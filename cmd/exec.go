package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"event-ticketing/config"
	"event-ticketing/handlers"
	"event-ticketing/monitoring"
	"event-ticketing/security"
	"event-ticketing/services"
	"event-ticketing/utils"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/pocketbase/pocketbase/core"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Start applies pending migrations, wires every component on top of app and
// serves until app terminates.
func Start(app core.App, cfg *config.Config) error {
	stopped := make(chan struct{})
	defer close(stopped)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.RunAllMigrations(); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	redisClient, err := utils.NewRedisClient(cfg.RedisURL)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	images, err := services.NewImageService(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("failed to open upload dir: %w", err)
	}
	defer images.Close()

	// Inventory feed
	var publisher services.Publisher
	if cfg.PubNubPublishKey != "" && cfg.PubNubSubscribeKey != "" {
		publisher = services.NewPubNubPublisher(cfg.PubNubPublishKey, cfg.PubNubSubscribeKey, cfg.PubNubSecretKey, cfg.PubNubUserID)
	} else {
		slog.Info("pubnub keys not set, inventory feed disabled")
	}
	var inventory *services.InventoryPublisher
	if publisher != nil {
		inventory = services.NewInventoryPublisher(publisher, utils.NewCircuitBreaker("pubnub"))
	}

	// Monitoring
	var monitor *monitoring.Monitor
	if cfg.EnableMetrics {
		monitor = monitoring.NewMonitor(app.DB(), redisClient, cfg.MetricsInterval)
		go monitor.Run(ctx)
		go serveMetrics(ctx, cfg.MetricsPort)
	}

	// Services
	credentials := services.NewCredentialService(app, cfg.BcryptCost)
	sessions := services.NewSessionService(redisClient, credentials, cfg.SessionTTL, cfg.RememberTTL)

	e := echo.New()
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	handlers.RegisterRoutes(e, handlers.Dependencies{
		Credentials: credentials,
		Sessions:    sessions,
		Events:      services.NewEventService(app),
		Purchases:   services.NewPurchaseService(app, inventory, monitor),
		Comments:    services.NewCommentService(app),
		Images:      images,
		Monitor:     monitor,
		Checks: map[string]handlers.HealthCheck{
			"database": func(ctx context.Context) error { return utils.DatabaseHealthCheck(ctx, app.DB()) },
			"redis":    func(ctx context.Context) error { return utils.RedisHealthCheck(ctx, redisClient) },
		},
		Limiter:                 security.NewRateLimiter(redisClient),
		RateLimitPerMinute:      cfg.RateLimitPerMinute,
		LoginRateLimitPerMinute: cfg.LoginRateLimitPerMinute,
		SecureCookies:           !cfg.IsDevelopment(),
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// pocketbase fires OnTerminate on SIGINT/SIGTERM; hold it until the
	// server has drained.
	app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
		cancel()
		<-stopped
		return e.Next()
	})

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}

	slog.Info("server exited cleanly")
	return nil
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
			}
			if v.Error != nil {
				slog.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	})
}

// serveMetrics exposes /metrics on its own port so it never shares the public
// listener or its rate limits.
func serveMetrics(ctx context.Context, port string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics server starting", "port", port)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("metrics server error", "error", err)
	}
}
