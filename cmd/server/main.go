// Package main is the entry point for the Vitrine backend server binary.
// It dispatches two subcommands — serve and version — via a simple switch on
// os.Args so the binary's full CLI surface is readable in one place without
// requiring a cobra dependency.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vitrine-app/vitrine-backend/internal/api"
	"github.com/vitrine-app/vitrine-backend/internal/audit"
	"github.com/vitrine-app/vitrine-backend/internal/auth"
	"github.com/vitrine-app/vitrine-backend/internal/config"
	"github.com/vitrine-app/vitrine-backend/internal/jobs"
	"github.com/vitrine-app/vitrine-backend/internal/safego"
	"github.com/vitrine-app/vitrine-backend/internal/storage"
	"github.com/vitrine-app/vitrine-backend/internal/telemetry"
)

const version = "0.1.0"

func main() {
	if err := run(); err != nil {
		log.Fatalf("Error: %v\n", err)
	}
}

func run() error {
	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	switch command {
	case "serve":
		cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return serve(cfg)
	case "version":
		fmt.Printf("Vitrine backend v%s\n", version)
		return nil
	default:
		return fmt.Errorf("unknown command: %s\nAvailable commands: serve, version", command)
	}
}

func serve(cfg *config.Config) error {
	// Initialise structured logger as early as possible so all subsequent log
	// output uses the configured format (json / text) and level.
	telemetry.SetupLogger(cfg.Logging.Format, cfg.Logging.Level)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Validate JWT secret configuration (fails in production if not set)
	if err := auth.ValidateJWTSecret(); err != nil {
		return fmt.Errorf("security configuration error: %w", err)
	}
	slog.Info("JWT secret validated")

	// Audit trail: the writer owns the daily partition files, the facade is
	// the only entry point components use to record events.
	auditWriter, err := audit.NewWriter(cfg.Audit.Directory, cfg.Audit.MaxPartitions)
	if err != nil {
		return fmt.Errorf("failed to open audit trail: %w", err)
	}
	defer auditWriter.Close()
	auditor := audit.NewLogger(auditWriter)
	auditReader := audit.NewReader(cfg.Audit.Directory)
	slog.Info("audit trail opened", "directory", cfg.Audit.Directory, "max_partitions", cfg.Audit.MaxPartitions)

	// Scheduled rotation closes out partitions on idle days and triggers
	// retention without waiting for the next write.
	rotationCtx, stopRotation := context.WithCancel(context.Background())
	defer stopRotation()
	rotationJob := jobs.NewLogRotation(auditWriter, cfg.Audit.RotationCheckHours)
	safego.Go(func() { rotationJob.Start(rotationCtx) })

	storageBackend, err := storage.NewStorage(cfg)
	if err != nil {
		stopRotation()
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	slog.Info("storage backend initialized", "backend", cfg.Storage.DefaultBackend)

	// Serve Prometheus metrics on a dedicated port so the scrape path is not
	// reachable through the public API ingress.
	if cfg.Telemetry.MetricsEnabled {
		metricsAddr := fmt.Sprintf(":%d", cfg.Telemetry.PrometheusPort)
		safego.Go(func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			slog.Info("starting Prometheus metrics server", "addr", metricsAddr)
			srv := &http.Server{
				Addr:         metricsAddr,
				Handler:      mux,
				ReadTimeout:  10 * time.Second,
				WriteTimeout: 10 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		})
	}

	router, bgServices := api.NewRouter(cfg, auditWriter, auditor, auditReader, storageBackend)

	server := &http.Server{
		Addr:         cfg.Server.GetAddress(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	safego.Go(func() {
		slog.Info("starting server",
			"addr", cfg.Server.GetAddress(),
			"base_url", cfg.Server.BaseURL,
			"storage_backend", cfg.Storage.DefaultBackend)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	})

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server")

	// Drain in-flight requests first so their audit records are written
	// before the writer closes.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	rotationJob.Stop()
	stopRotation()
	bgServices.Shutdown()

	slog.Info("server stopped gracefully")
	return nil
}
