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

	"github.com/joho/godotenv"

	"github.com/fr0stylo/hooksig/internal/adapters/sqlite"
	"github.com/fr0stylo/hooksig/internal/app/services"
	"github.com/fr0stylo/hooksig/internal/config"
	"github.com/fr0stylo/hooksig/internal/db"
	"github.com/fr0stylo/hooksig/internal/observability"
	"github.com/fr0stylo/hooksig/internal/server"
	"github.com/fr0stylo/hooksig/internal/server/routes"
	"github.com/fr0stylo/hooksig/internal/webhooks/receiver"
)

func Run() error {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := observability.NewLogger(os.Stdout, cfg.LogLevel)
	slog.SetDefault(log)
	if envErr != nil {
		slog.Debug("No .env file loaded", "error", envErr)
	}
	if cfg.Admin.Token == "" {
		slog.Warn("HOOKSIG_ADMIN_TOKEN not set, admin API is unauthenticated")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.SetupOpenTelemetry(ctx, log, observability.OpenTelemetryConfig{
		Enabled:           cfg.Observability.Enabled,
		OTLPEndpoint:      cfg.Observability.OTLPEndpoint,
		OTLPTraceHeaders:  cfg.Observability.OTLPTraceHeaders,
		OTLPMetricHeaders: cfg.Observability.OTLPMetricHeaders,
		ServiceName:       cfg.Observability.ServiceName,
		ServiceVer:        cfg.Observability.ServiceVer,
		SamplingRatio:     cfg.Observability.SamplingRatio,
		MetricsConsole:    cfg.Observability.MetricsConsole,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			slog.Error("Failed to shutdown OpenTelemetry", "error", err)
		}
	}()

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}()

	if cfg.Database.LogTiming {
		go logDBLatencyStats(ctx, log, database)
	}

	store := sqlite.NewStore(database)
	orgs := services.NewOrganizationService(store, services.WithRotationGrace(cfg.Webhooks.RotationGrace))
	receive := services.NewReceiveService(orgs, store, cfg.Tolerance(), log)

	srv := server.New(log, cfg.Observability.ServiceName)
	srv.RegisterRouter(routes.NewHealthRoutes(database))
	srv.RegisterRouter(routes.NewWebhookRoutes(receiver.NewHandler(receive)))
	srv.RegisterRouter(routes.NewAPIRoutes(orgs, services.NewReceiptService(orgs, store), cfg.Admin.Token))

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("Starting server", "port", cfg.Server.Port, "tolerance", cfg.Tolerance(), "rotation_grace", cfg.Webhooks.RotationGrace)
		errCh <- srv.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func main() {
	os.Exit(exitCode(slog.Default(), Run()))
}

func exitCode(log *slog.Logger, err error) int {
	if err == nil {
		return 0
	}
	log.Error("Server exited", "error", err)
	return 1
}

func logDBLatencyStats(ctx context.Context, log *slog.Logger, database *db.Database) {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		stats := database.QueryLatencyStats()
		limit := 5
		if len(stats) < limit {
			limit = len(stats)
		}
		for index := 0; index < limit; index++ {
			entry := stats[index]
			log.Info("db_query_latency",
				"query", entry.Name,
				"count", entry.Count,
				"p50_ms", entry.P50.Milliseconds(),
				"p95_ms", entry.P95.Milliseconds(),
				"max_ms", entry.Max.Milliseconds(),
			)
		}
	}
}
