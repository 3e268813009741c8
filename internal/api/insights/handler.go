// Package insights provides REST handlers for generated quotes and
// routine analyses.
package insights

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapeu/shapeu/internal/auth"
	svcinsights "github.com/shapeu/shapeu/internal/service/insights"
	"github.com/shapeu/shapeu/pkg/logger"
)

// InsightsService interface for quote and analysis operations.
type InsightsService interface {
	Motivation(ctx context.Context, userID uint) (*svcinsights.Quote, error)
	RefreshMotivation(ctx context.Context, userID uint) (*svcinsights.Quote, error)
	Analysis(ctx context.Context, userID uint, period string) (*svcinsights.Analysis, error)
}

// Handler handles insight API requests.
type Handler struct {
	insights InsightsService
	log      *logger.Logger
}

// NewHandler creates a new insights handler.
func NewHandler(insightsService *svcinsights.Service, log *logger.Logger) *Handler {
	return &Handler{insights: insightsService, log: log}
}

// NewHandlerWithInterfaces creates a new insights handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(insightsService InsightsService, log *logger.Logger) *Handler {
	return &Handler{insights: insightsService, log: log}
}

// RegisterRoutes mounts the insight routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/ai/motivation", h.Motivation)
	rg.POST("/ai/refresh-motivation", h.RefreshMotivation)
	rg.GET("/ai/analysis", h.Analysis)
}

// Motivation returns today's quote, generating it when absent.
// GET /api/ai/motivation.
func (h *Handler) Motivation(c *gin.Context) {
	quote, err := h.insights.Motivation(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to serve motivation")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load quote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": quote.Text, "cached": quote.Cached})
}

// RefreshMotivation regenerates today's quote within the daily budget.
// POST /api/ai/refresh-motivation.
func (h *Handler) RefreshMotivation(c *gin.Context) {
	quote, err := h.insights.RefreshMotivation(c.Request.Context(), auth.UserID(c))
	if err != nil {
		if errors.Is(err, svcinsights.ErrQuoteLimit) {
			h.errorResponse(c, http.StatusTooManyRequests, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to refresh motivation")
		h.errorResponse(c, http.StatusInternalServerError, "failed to refresh quote")
		return
	}
	c.JSON(http.StatusOK, gin.H{"quote": quote.Text, "remaining": quote.Remaining})
}

// Analysis returns the routine analysis for a period.
// GET /api/ai/analysis?period=weekly.
func (h *Handler) Analysis(c *gin.Context) {
	analysis, err := h.insights.Analysis(c.Request.Context(), auth.UserID(c), c.Query("period"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to serve analysis")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load analysis")
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis": analysis.Text, "cached": analysis.Cached})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
