package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/pflag"

	httpAdapter "github.com/lorrc/smartdesk-web/internal/adapters/primary/http"
	mw "github.com/lorrc/smartdesk-web/internal/adapters/primary/http/middleware"
	"github.com/lorrc/smartdesk-web/internal/adapters/secondary/smartdesk"
	"github.com/lorrc/smartdesk-web/internal/auth"
	"github.com/lorrc/smartdesk-web/internal/config"
	"github.com/lorrc/smartdesk-web/internal/core/services"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/logging"
	"github.com/lorrc/smartdesk-web/internal/infrastructure/metrics"
	"github.com/lorrc/smartdesk-web/web"
)

func main() {
	envFiles := pflag.StringSlice("env-file", nil, "dotenv files to load before reading the environment (default .env)")
	addr := pflag.String("addr", "", "listen address, overrides SERVER_PORT")
	showVersion := pflag.Bool("version", false, "print the version and exit")
	pflag.Parse()

	// 1. Load Configuration
	cfg, err := config.Load(*envFiles...)
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	if *showVersion {
		fmt.Println(cfg.App.Name, cfg.App.Version)
		return
	}
	if *addr != "" {
		cfg.Server.Port = *addr
	}

	// 2. Initialize Structured Logger
	logger := logging.NewLogger(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Output:      os.Stdout,
		ServiceName: cfg.App.Name,
		Environment: cfg.App.Environment,
	})

	logger.Info("starting service",
		"version", cfg.App.Version,
		"environment", cfg.App.Environment,
		"config", cfg.String(),
	)

	// 3. Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(registry)

	// 4. SmartDesk API client
	backend := smartdesk.NewClient(cfg.Backend.URL, cfg.Backend.Timeout, logger, smartdesk.WithMetrics(m))

	// 5. Page sessions and their sweeper
	sessions := services.NewPageSessionStore(cfg.Session.PageTTL, services.WithSessionObserver(m))
	sweeper, err := services.NewSessionSweeper(sessions, cfg.Session.SweepSpec, logger)
	if err != nil {
		logger.Error("failed to schedule page session sweeper", "error", err)
		os.Exit(1)
	}
	sweeper.Start()

	// 6. Rate Limiters
	var generalRateLimiter, formRateLimiter *mw.RateLimiter
	if cfg.RateLimit.Enabled {
		generalRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			BurstSize:         cfg.RateLimit.BurstSize,
			CleanupInterval:   time.Minute,
			TTL:               3 * time.Minute,
		})

		formRateLimiter = mw.NewRateLimiter(mw.RateLimiterConfig{
			RequestsPerSecond: cfg.RateLimit.FormRPS,
			BurstSize:         cfg.RateLimit.FormBurst,
			CleanupInterval:   time.Minute,
			TTL:               5 * time.Minute,
		})
	}

	// 7. Dependency Injection (Wiring the Hexagon)
	showcase, err := loadShowcase(cfg.App.ShowcaseFile)
	if err != nil {
		logger.Error("failed to load landing page charts", "error", err)
		os.Exit(1)
	}

	templates, err := web.Templates()
	if err != nil {
		logger.Error("failed to open templates", "error", err)
		os.Exit(1)
	}
	static, err := web.Static()
	if err != nil {
		logger.Error("failed to open static assets", "error", err)
		os.Exit(1)
	}
	renderer, err := httpAdapter.NewRenderer(templates, m, logger)
	if err != nil {
		logger.Error("failed to parse templates", "error", err)
		os.Exit(1)
	}

	tokenManager := auth.NewTokenManager(cfg.Session.Secret, cfg.Session.ToastTTL)
	formTokens := mw.NewFormTokens(auth.NewTokenManager(cfg.Session.Secret, cfg.Session.FormTokenTTL), logger)
	notifier := httpAdapter.NewNotifier(tokenManager, cfg.Session.SecureCookie, m, logger)
	errorHandler := httpAdapter.NewErrorHandler(logger, renderer)

	// Services (Core)
	desk := services.NewTicketDesk(backend, sessions, logger)
	charts := services.NewChartBuilder(time.Now)

	// Handlers (Primary Adapters)
	router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
		Logger:         logger,
		Guard:          mw.NewGuard(backend, logger),
		FormTokens:     formTokens,
		Landing:        httpAdapter.NewLandingHandler(backend, showcase, renderer, notifier, logger),
		Auth:           httpAdapter.NewAuthHandler(backend, renderer, notifier, logger),
		Dashboard:      httpAdapter.NewDashboardHandler(desk, renderer, notifier, errorHandler, logger),
		MyTickets:      httpAdapter.NewMyTicketsHandler(desk, renderer, notifier, errorHandler, logger),
		Analytics:      httpAdapter.NewAnalyticsHandler(backend, charts, renderer, notifier, errorHandler, logger),
		Health:         httpAdapter.NewHealthHandler(backend, cfg.App.Version),
		Metrics:        metrics.Handler(registry),
		Static:         static,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		CORSMaxAge:     cfg.CORS.MaxAge,
		GeneralLimiter: generalRateLimiter,
		FormLimiter:    formRateLimiter,
	})

	// 8. Start Server with Graceful Shutdown
	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting", "port", cfg.Server.Port, "backend", cfg.Backend.URL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", "signal", sig.String())

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	// Graceful shutdown
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
		os.Exit(1)
	}

	<-sweeper.Stop().Done()
	if generalRateLimiter != nil {
		generalRateLimiter.Stop()
	}
	if formRateLimiter != nil {
		formRateLimiter.Stop()
	}

	logger.Info("server shutdown complete")
}

// loadShowcase reads the landing page charts from path, or from the embedded
// default when path is empty.
func loadShowcase(path string) ([]services.Chart, error) {
	var (
		f   io.ReadCloser
		err error
	)
	if path != "" {
		f, err = os.Open(path)
	} else {
		f, err = web.Showcase()
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return services.LoadShowcase(f)
}
