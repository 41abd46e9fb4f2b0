package main

import (
	"context"
	"errors"
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

	"github.com/angelmondragon/meaw-storefront/api/routes"
	"github.com/angelmondragon/meaw-storefront/internal/cart"
	"github.com/angelmondragon/meaw-storefront/internal/session"
	"github.com/angelmondragon/meaw-storefront/internal/workspace"
	"github.com/angelmondragon/meaw-storefront/pkg/config"
	"github.com/angelmondragon/meaw-storefront/pkg/instance"
	"github.com/angelmondragon/meaw-storefront/pkg/logger"
	"github.com/angelmondragon/meaw-storefront/pkg/metrics"
	"github.com/angelmondragon/meaw-storefront/pkg/security"
	"github.com/angelmondragon/meaw-storefront/pkg/storage"
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
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap snapshot store", err)
		os.Exit(1)
	}

	directory, err := session.NewSeedDirectory(security.NewHasher(cfg.Password), time.Now().UTC())
	if err != nil {
		logg.Error(ctx, "failed to seed identity directory", err)
		_ = store.Close()
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	storefrontMetrics := metrics.NewStorefrontMetrics(promRegistry)

	pricing := cart.PricingPolicyFromConfig(cfg.Pricing)
	workspaces, err := workspace.NewRegistry(workspace.Params{
		Store:           store,
		Directory:       directory,
		Pricing:         &pricing,
		LoginLatency:    cfg.Latency.Login,
		DiscountLatency: cfg.Latency.Discount,
		Capacity:        cfg.Workspaces.Capacity,
		Logger:          logg,
		Metrics:         storefrontMetrics,
	})
	if err != nil {
		logg.Error(ctx, "failed to create workspace registry", err)
		_ = store.Close()
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"instance":  instance.ID(),
		"storage":   store.Driver(),
		"directory": directory.Len(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, workspaces, storefrontMetrics, promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{})),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
	case err := <-serveErr:
		if err != nil {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			exitCode = 1
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	var shutdownErr error
	multierr.AppendInto(&shutdownErr, server.Shutdown(shutdownCtx))
	multierr.AppendInto(&shutdownErr, workspaces.Close(shutdownCtx))
	if shutdownErr != nil {
		logg.Error(ctx, "api shutdown incomplete", shutdownErr)
		exitCode = 1
	} else {
		logg.Info(ctx, "api server stopped")
	}

	if exitCode != 0 {
		cancel()
		os.Exit(exitCode)
	}
}
