// Package api assembles the HTTP router: route groups, authentication,
// request logging and Prometheus instrumentation.
package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shapeu/shapeu/internal/api/accounts"
	"github.com/shapeu/shapeu/internal/api/achievements"
	"github.com/shapeu/shapeu/internal/api/goals"
	"github.com/shapeu/shapeu/internal/api/insights"
	"github.com/shapeu/shapeu/internal/api/metas"
	"github.com/shapeu/shapeu/internal/api/profile"
	"github.com/shapeu/shapeu/internal/api/stats"
	"github.com/shapeu/shapeu/internal/auth"
	appcache "github.com/shapeu/shapeu/internal/cache"
	"github.com/shapeu/shapeu/internal/metrics"
	"github.com/shapeu/shapeu/pkg/logger"
)

// Handlers bundles the per-domain handlers mounted by the router.
type Handlers struct {
	Accounts     *accounts.Handler
	Goals        *goals.Handler
	Achievements *achievements.Handler
	Metas        *metas.Handler
	Profile      *profile.Handler
	Stats        *stats.Handler
	Insights     *insights.Handler
}

// HealthChecker reports storage liveness.
type HealthChecker interface {
	Health() error
}

// NewRouter builds the Gin engine with all routes mounted.
func NewRouter(h Handlers, tokens *auth.TokenManager, db HealthChecker, cache appcache.Cache, log *logger.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(log))
	router.Use(requestMetrics())

	router.GET("/health", healthHandler(db, cache))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api")
	authed := router.Group("/api")
	authed.Use(auth.Middleware(tokens))

	h.Accounts.RegisterRoutes(public, authed)
	h.Goals.RegisterRoutes(authed)
	h.Achievements.RegisterRoutes(authed)
	h.Metas.RegisterRoutes(authed)
	h.Profile.RegisterRoutes(authed)
	h.Stats.RegisterRoutes(authed)
	h.Insights.RegisterRoutes(authed)

	return router
}

// requestLogger logs each request with latency and status.
func requestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client_ip", c.ClientIP()).
			Msg("Request handled")
	}
}

// requestMetrics records request latency per method, route and status.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveRequestDuration(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
			time.Since(start).Seconds(),
		)
	}
}

// healthHandler checks database and cache connectivity.
func healthHandler(db HealthChecker, cache appcache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := http.StatusOK
		dbStatus := "ok"
		if err := db.Health(); err != nil {
			dbStatus = "unavailable"
			status = http.StatusServiceUnavailable
		}

		cacheStatus := "ok"
		if cache != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := cache.Health(ctx); err != nil {
				cacheStatus = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}

		overall := "ok"
		if status != http.StatusOK {
			overall = "degraded"
		}
		c.JSON(status, gin.H{
			"status":    overall,
			"database":  dbStatus,
			"cache":     cacheStatus,
			"timestamp": time.Now().UTC(),
		})
	}
}
