package handlers

import (
	"aerograph/core"
	"aerograph/models"
	"aerograph/service"
	"aerograph/version"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger checks that the settings database is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

// Handler serves the diagnostics API
type Handler struct {
	services *service.Services
	db       Pinger
}

// New builds a Handler. db may be nil when no database is configured.
func New(services *service.Services, db Pinger) *Handler {
	return &Handler{services: services, db: db}
}

// RegisterRoutes mounts every endpoint under /api
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	api := r.Group("/api")
	api.Use(RouteContext(), Recovery(h.services.Logs.Logger()))
	{
		// Error log routes
		api.GET("/error-logs", h.ListErrorLogs)
		api.POST("/error-logs", h.ReportError)
		api.DELETE("/error-logs", h.ClearErrorLogs)
		api.GET("/error-logs/stats", h.ErrorLogStats)
		api.GET("/error-logs/export", h.ExportErrorLogs)
		api.GET("/error-logs/stream", h.StreamErrorLogs)

		// Validation routes
		api.POST("/validate/:kind", h.ValidateRecords)
		api.POST("/sanitize/workflow", h.SanitizeWorkflow)
		api.POST("/schema/compare", h.CompareSchema)

		// Health and metrics routes
		api.GET("/health", h.HealthCheck)
		api.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// RouteContext stores the matched route on the request context so entries
// logged while serving it carry the route automatically.
func RouteContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		route = c.Request.Method + " " + route
		c.Request = c.Request.WithContext(core.WithRoute(c.Request.Context(), route))
		c.Next()
	}
}

// Recovery turns a handler panic into a critical runtime entry and a 500 response.
// Install it first on the engine so it also covers the other middleware.
func Recovery(logger *core.ErrorLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				panicErr := core.NewPanicError(r, 3)
				logger.LogError(c.Request.Context(), fmt.Sprintf("Panic while serving %s", c.Request.URL.Path), panicErr, models.CategoryRuntime, models.SeverityCritical)
				c.Abort()
				fail(c, http.StatusInternalServerError, CodeInternal, "Internal server error", nil)
			}
		}()
		c.Next()
	}
}

// HealthCheck reports service and database health. A failed ping is logged as a database error.
func (h *Handler) HealthCheck(c *gin.Context) {
	health := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().Unix(),
		"version":    version.GetFullVersion(),
		"db_healthy": true,
		"error_logs": h.services.Logs.Logger().Len(),
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.services.Logs.Logger().LogDatabaseError(c.Request.Context(), "Database health check failed", err, &models.LogContext{Operation: "ping"})
			health["status"] = "degraded"
			health["db_healthy"] = false
			respond(c, http.StatusServiceUnavailable, CodeUnavailable, "Database unreachable", health)
			return
		}
	}

	ok(c, health)
}
