//go:generate templ generate

package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/msomdec/praylude/internal/config"
	"github.com/msomdec/praylude/internal/domain"
	"github.com/msomdec/praylude/internal/handler"
	"github.com/msomdec/praylude/internal/repository/catalog"
	"github.com/msomdec/praylude/internal/repository/sqlite"
	"github.com/msomdec/praylude/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logOpts := &slog.HandlerOptions{Level: cfg.LogLevel}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Migrate(context.Background()); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	var catalogRepo domain.CatalogRepository = catalog.NewEmbedded()
	if cfg.CatalogPath != "" {
		catalogRepo = catalog.NewFile(cfg.CatalogPath)
	}
	catalogService := service.NewCatalogService(catalogRepo)

	// Fail fast on a broken catalog rather than on the first page view.
	catalogStats, err := catalogService.DataStats(context.Background())
	if err != nil {
		slog.Error("failed to load catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	slog.Info("catalog loaded", "sections", catalogStats.SectionCount, "techniques", catalogStats.TechniqueCount)

	historyService := service.NewHistoryService(db)
	playbackService := service.NewPlaybackService(historyService, cfg.TickInterval)
	limiter := service.NewTokenBucket(cfg.RateLimitPerSecond, float64(cfg.RateLimitBurst))

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		DB:       db,
		Devices:  service.NewDeviceService(cfg.DeviceSecret),
		Themes:   service.NewThemeService(db),
		Catalog:  catalogService,
		Custom:   service.NewCustomSessionService(db.CustomSessions(), catalogRepo),
		Playback: playbackService,
		History:  historyService,
		Limiter:  limiter,
	}, handler.Options{
		CookieSecure: cfg.CookieSecure,
		DevRoutes:    cfg.DevRoutes,
	})
	if cfg.DevRoutes {
		slog.Warn("development routes enabled")
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// No WriteTimeout: the player stream is long-lived. Request contexts
	// derive from ctx so open streams end when shutdown begins.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.SecurityHeaders(mux),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go limiter.RunSweeper(ctx, time.Minute)
	go playbackService.RunSweeper(ctx, time.Minute, cfg.PlayerIdleTimeout)

	go func() {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	playbackService.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}
