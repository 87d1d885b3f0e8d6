package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/gaprints/prints-backend/api/routes"
	"github.com/gaprints/prints-backend/internal/cart"
	"github.com/gaprints/prints-backend/internal/catalog"
	"github.com/gaprints/prints-backend/internal/checkout"
	"github.com/gaprints/prints-backend/internal/signals"
	"github.com/gaprints/prints-backend/pkg/config"
	"github.com/gaprints/prints-backend/pkg/db"
	"github.com/gaprints/prints-backend/pkg/instance"
	"github.com/gaprints/prints-backend/pkg/logger"
	"github.com/gaprints/prints-backend/pkg/mailer"
	"github.com/gaprints/prints-backend/pkg/metrics"
	"github.com/gaprints/prints-backend/pkg/migrate"
	"github.com/gaprints/prints-backend/pkg/redis"
)

const (
	sessionSweepInterval = 5 * time.Minute
	sessionIdleTimeout   = 30 * time.Minute
	shutdownTimeout      = 15 * time.Second
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	instanceID := instance.GetID()
	redisClient, err := redis.New(ctx, cfg.Redis, instanceID, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), redisClient, cfg.Catalog, logg)
	if err != nil {
		logg.Error(ctx, "failed to create catalog service", err)
		os.Exit(1)
	}

	registry := signals.NewRegistry(func(sessionID string) cart.Storage {
		return redisClient.CartSession(sessionID, cfg.CartSession.TTL)
	}, logg)
	go sweepSessions(ctx, registry, logg)

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	sender, err := mailer.New(cfg.SMTP, logg)
	if err != nil {
		logg.Error(ctx, "failed to create mail sender", err)
		os.Exit(1)
	}
	renderer, err := checkout.NewRenderer(cfg.Brand, nil, nil)
	if err != nil {
		logg.Error(ctx, "failed to load email templates", err)
		os.Exit(1)
	}
	checkoutService, err := checkout.NewService(
		sender,
		renderer,
		checkout.NewIDGenerator(cfg.Order.IDPrefix),
		cfg.Order,
		cfg.Checkout,
		metrics.NewCheckoutMetrics(promRegistry),
		logg,
	)
	if err != nil {
		logg.Error(ctx, "failed to create checkout service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instanceID,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			catalogService,
			registry,
			checkoutService,
			promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Event streams never finish on their own, so shutdown cancels every
	// request context instead of waiting for them.
	baseCtx, cancelRequests := context.WithCancel(context.Background())
	server.BaseContext = func(net.Listener) context.Context { return baseCtx }
	server.RegisterOnShutdown(cancelRequests)

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutting down api server")
	}

	registry.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = multierr.Combine(
		server.Shutdown(shutdownCtx),
		redisClient.Close(),
		dbClient.Close(),
	)
	if err != nil {
		logg.Error(shutdownCtx, "error during shutdown", err)
		exitCode = 1
	}
	os.Exit(exitCode)
}

func sweepSessions(ctx context.Context, registry *signals.Registry, logg *logger.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := registry.Sweep(sessionIdleTimeout); n > 0 {
				logg.Debug(logg.WithField(ctx, "sessions", n), "swept idle cart sessions")
			}
		}
	}
}
