// Package api wires together all HTTP routes for the Vitrine backend.
//
// Route grouping:
//   - /health and /ready are unauthenticated so load balancers and
//     orchestration probes can reach them without credentials.
//   - /api/v1/uploads/ requires authentication; uploads get a stricter
//     rate-limit bucket than the rest of the API.
//   - /api/v1/admin/ additionally requires the admin role.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/vitrine-app/vitrine-backend/internal/api/admin"
	"github.com/vitrine-app/vitrine-backend/internal/api/uploads"
	"github.com/vitrine-app/vitrine-backend/internal/audit"
	"github.com/vitrine-app/vitrine-backend/internal/auth"
	"github.com/vitrine-app/vitrine-backend/internal/config"
	"github.com/vitrine-app/vitrine-backend/internal/middleware"
	"github.com/vitrine-app/vitrine-backend/internal/storage"
	"github.com/vitrine-app/vitrine-backend/internal/upload"

	// Import storage backends to register them
	_ "github.com/vitrine-app/vitrine-backend/internal/storage/local"
	_ "github.com/vitrine-app/vitrine-backend/internal/storage/s3"
)

// BackgroundServices holds resources that must be stopped during graceful
// shutdown. The caller (cmd/server) is responsible for calling Shutdown()
// when the process receives a termination signal.
type BackgroundServices struct {
	rateLimiters []*middleware.RateLimiter
}

// Shutdown stops all background goroutines. It should be called after the
// HTTP server has been shut down so that in-flight requests are drained
// first.
func (bg *BackgroundServices) Shutdown() {
	slog.Info("stopping background services")
	for _, rl := range bg.rateLimiters {
		rl.Stop()
	}
	slog.Info("all background services stopped")
}

// NewRouter creates and configures the Gin router.
func NewRouter(
	cfg *config.Config,
	auditWriter *audit.Writer,
	auditor *audit.Logger,
	auditReader *audit.Reader,
	storageBackend storage.Storage,
) (*gin.Engine, *BackgroundServices) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())
	router.Use(loggerMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware(middleware.APISecurityHeadersConfig()))
	router.Use(middleware.FailedRequestAudit(auditor, cfg.Audit.LogFailedRequests))

	bg := &BackgroundServices{}

	gate := upload.NewGate(storageBackend, auditor)

	// Health probes
	router.GET("/health", healthCheckHandler())
	router.GET("/ready", readinessHandler(auditWriter, storageBackend))
	router.GET("/version", versionHandler())

	apiV1 := router.Group("/api/v1")
	apiV1.Use(middleware.AuthMiddleware(auditor))

	if cfg.Security.RateLimiting.Enabled {
		apiLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: cfg.Security.RateLimiting.RequestsPerMinute,
			BurstSize:         cfg.Security.RateLimiting.Burst,
			CleanupInterval:   5 * time.Minute,
		})
		bg.rateLimiters = append(bg.rateLimiters, apiLimiter)
		apiV1.Use(middleware.RateLimitMiddleware(apiLimiter))
	}

	uploadGroup := apiV1.Group("/uploads")
	if cfg.Security.RateLimiting.Enabled {
		uploadLimiter := middleware.NewRateLimiter(middleware.UploadRateLimitConfig())
		bg.rateLimiters = append(bg.rateLimiters, uploadLimiter)
		uploadGroup.Use(middleware.RateLimitMiddleware(uploadLimiter))
	}
	uploadGroup.POST("/:category", uploads.UploadHandler(gate, cfg.Uploads.MaxMultipartMemory))
	uploadGroup.DELETE("/:category/:name", uploads.DeleteHandler(gate))

	adminGroup := apiV1.Group("/admin")
	adminGroup.Use(middleware.RequireRole(auth.RoleAdmin))
	adminGroup.GET("/audit-logs", admin.ListAuditLogsHandler(auditReader))
	adminGroup.POST("/audit-logs/purge", admin.PurgeAuditLogsHandler(auditWriter))

	return router, bg
}

// healthCheckHandler returns the liveness status of the service.
func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// readinessHandler returns the readiness status of the service. Unlike the
// liveness probe (/health), this checks the audit writer and the storage
// backend so that a readiness gate fails when uploads would error.
func readinessHandler(auditWriter *audit.Writer, storageBackend storage.Storage) gin.HandlerFunc {
	return func(c *gin.Context) {
		checks := gin.H{}

		if err := auditWriter.Rotate(); err != nil {
			checks["audit"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "audit trail not writable",
			})
			return
		}
		checks["audit"] = "healthy"

		// Probe with a known-absent sentinel path. Exists() exercises
		// authentication and network connectivity without creating state.
		if _, err := storageBackend.Exists(c.Request.Context(), ".readiness-probe"); err != nil {
			checks["storage"] = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"ready":  false,
				"checks": checks,
				"error":  "storage backend not ready",
			})
			return
		}
		checks["storage"] = "healthy"

		c.JSON(http.StatusOK, gin.H{
			"ready":  true,
			"checks": checks,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// versionHandler returns the API version.
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":     "0.1.0",
			"api_version": "v1",
		})
	}
}

// loggerMiddleware emits one structured slog record per request.
func loggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		requestID, _ := c.Get(middleware.RequestIDKey)
		slog.LogAttrs(
			c.Request.Context(),
			slog.LevelInfo,
			"http request",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.String("query", query),
			slog.Int("status", c.Writer.Status()),
			slog.Int("size", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("ip", c.ClientIP()),
			slog.String("request_id", fmt.Sprintf("%v", requestID)),
			slog.String("user_agent", c.Request.UserAgent()),
		)
	}
}
