// Package stats provides REST handlers for summaries, charts and strength
// groupings.
package stats

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapeu/shapeu/internal/auth"
	svcstats "github.com/shapeu/shapeu/internal/service/stats"
	"github.com/shapeu/shapeu/pkg/logger"
)

// StatsService interface for aggregation operations.
type StatsService interface {
	Summary(ctx context.Context, userID uint, period string) (*svcstats.Summary, error)
	Strengths(ctx context.Context, userID uint, period string) (*svcstats.Strengths, error)
	Chart(ctx context.Context, userID uint, period, chartType string) (interface{}, error)
}

// Handler handles stats API requests.
type Handler struct {
	stats StatsService
	log   *logger.Logger
}

// NewHandler creates a new stats handler.
func NewHandler(statsService *svcstats.Service, log *logger.Logger) *Handler {
	return &Handler{stats: statsService, log: log}
}

// NewHandlerWithInterfaces creates a new stats handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(statsService StatsService, log *logger.Logger) *Handler {
	return &Handler{stats: statsService, log: log}
}

// RegisterRoutes mounts the stats routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats/summary", h.Summary)
	rg.GET("/stats/charts", h.Charts)
	rg.GET("/stats/strengths", h.Strengths)
}

// Summary returns the headline stats for a period.
// GET /api/stats/summary?period=daily.
func (h *Handler) Summary(c *gin.Context) {
	period := c.DefaultQuery("period", "daily")
	summary, err := h.stats.Summary(c.Request.Context(), auth.UserID(c), period)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build summary")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load summary")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// Charts returns chart data for a period.
// GET /api/stats/charts?period=daily&type=evolution.
func (h *Handler) Charts(c *gin.Context) {
	period := c.DefaultQuery("period", "daily")
	chartType := c.DefaultQuery("type", "evolution")
	data, err := h.stats.Chart(c.Request.Context(), auth.UserID(c), period, chartType)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build chart")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load chart data")
		return
	}
	c.JSON(http.StatusOK, data)
}

// Strengths returns the strong/weak goal grouping for a period.
// GET /api/stats/strengths?period=daily.
func (h *Handler) Strengths(c *gin.Context) {
	period := c.DefaultQuery("period", "daily")
	data, err := h.stats.Strengths(c.Request.Context(), auth.UserID(c), period)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build strengths")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load strengths")
		return
	}
	c.JSON(http.StatusOK, data)
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
