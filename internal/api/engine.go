// Package api builds the gin engine shared by every eCoA endpoint: request
// ids, access logging, CORS, rate limiting, health and metrics.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/kpvarma/ecoas-forge-sub000/internal/config"
	"github.com/kpvarma/ecoas-forge-sub000/internal/metrics"
)

// Options configures NewEngine.
type Options struct {
	CORS      config.CORSConfig
	RateLimit float64 // requests per second per client, 0 disables limiting
	RateBurst int
	// DB is pinged by /healthz. Nil for the memory backend.
	DB *gorm.DB
}

// NewEngine returns an engine with the shared middleware, GET /healthz,
// GET /metrics and a JSON 404 for unknown routes. Callers mount /api on it.
func NewEngine(opts Options) *gin.Engine {
	e := gin.New()
	e.Use(gin.CustomRecovery(func(c *gin.Context, err any) {
		slog.ErrorContext(c.Request.Context(), "panic recovered",
			"request_id", c.GetString("request_id"),
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
	}))
	e.Use(RequestIDMiddleware())
	e.Use(RequestLogMiddleware())
	e.Use(CORSMiddleware(opts.CORS))
	if opts.RateLimit > 0 {
		e.Use(RateLimitMiddleware(opts.RateLimit, opts.RateBurst))
	}

	health := NewHealthController(opts.DB)
	e.GET("/healthz", health.Check)
	e.GET("/metrics", MetricsHandler(opts.DB))

	e.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "not_found",
			"message": fmt.Sprintf("no route for %s %s", c.Request.Method, c.Request.URL.Path),
		})
	})
	return e
}

// MetricsHandler serves the Prometheus registry after refreshing the
// connection pool gauges.
func MetricsHandler(db *gorm.DB) gin.HandlerFunc {
	h := metrics.Handler()
	return func(c *gin.Context) {
		if db != nil {
			if err := metrics.UpdateDatabaseConnections(db); err != nil {
				slog.WarnContext(c.Request.Context(), "failed to read connection pool stats", "error", err)
			}
		}
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// HealthController reports whether the service can reach its database.
type HealthController struct {
	db *gorm.DB
}

func NewHealthController(db *gorm.DB) *HealthController {
	return &HealthController{db: db}
}

// Check answers 200 when every configured dependency responds, 503 otherwise.
func (hc *HealthController) Check(c *gin.Context) {
	status := "healthy"
	checks := map[string]string{}

	if hc.db == nil {
		checks["database"] = "not configured"
	} else if err := hc.checkDatabase(c.Request.Context()); err != nil {
		status = "unhealthy"
		checks["database"] = "unhealthy: " + err.Error()
	} else {
		checks["database"] = "healthy"
	}

	code := http.StatusOK
	if status != "healthy" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{
		"status":    status,
		"checks":    checks,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (hc *HealthController) checkDatabase(ctx context.Context) error {
	sqlDB, err := hc.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx)
}
