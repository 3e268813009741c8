// Package goals provides REST handlers for the habit catalog, the daily
// view and check-ins.
package goals

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapeu/shapeu/internal/auth"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/service/checkin"
	svcgoals "github.com/shapeu/shapeu/internal/service/goals"
	"github.com/shapeu/shapeu/internal/service/stats"
	"github.com/shapeu/shapeu/pkg/logger"
)

// GoalService interface for goal lifecycle operations.
type GoalService interface {
	List(userID uint) ([]models.Goal, error)
	Create(ctx context.Context, userID uint, input svcgoals.CreateInput) (*models.Goal, error)
	Update(userID, goalID uint, input svcgoals.UpdateInput) (*models.Goal, error)
	Deactivate(userID, goalID uint) error
	Reorder(userID uint, orderedIDs []uint) error
}

// CheckinService interface for daily view and check-in operations.
type CheckinService interface {
	Daily(ctx context.Context, userID uint, date string) (*checkin.DailyView, error)
	Toggle(ctx context.Context, userID, goalID uint, date string, completed bool) (*checkin.Result, error)
}

// StatsInvalidator drops cached stats after writes.
type StatsInvalidator interface {
	Invalidate(ctx context.Context, userID uint)
}

// Handler handles goal API requests.
type Handler struct {
	goals    GoalService
	checkins CheckinService
	stats    StatsInvalidator
	scan     func(ctx context.Context, userID uint)
	log      *logger.Logger
}

// NewHandler creates a new goals handler. scan runs a badge scan after a
// goal is created; pass nil to skip.
func NewHandler(
	goalService *svcgoals.Service,
	checkinService *checkin.Service,
	statsService *stats.Service,
	scan func(ctx context.Context, userID uint),
	log *logger.Logger,
) *Handler {
	return &Handler{
		goals:    goalService,
		checkins: checkinService,
		stats:    statsService,
		scan:     scan,
		log:      log,
	}
}

// NewHandlerWithInterfaces creates a new goals handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(
	goalService GoalService,
	checkinService CheckinService,
	statsService StatsInvalidator,
	scan func(ctx context.Context, userID uint),
	log *logger.Logger,
) *Handler {
	return &Handler{
		goals:    goalService,
		checkins: checkinService,
		stats:    statsService,
		scan:     scan,
		log:      log,
	}
}

// RegisterRoutes mounts the goal routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/goals", h.List)
	rg.POST("/goals", h.Create)
	rg.PUT("/goals/reorder", h.Reorder)
	rg.GET("/goals/daily", h.Daily)
	rg.POST("/goals/checkin", h.Checkin)
	rg.PUT("/goals/:id", h.Update)
	rg.DELETE("/goals/:id", h.Delete)
}

// List returns the user's active goals.
// GET /api/goals.
func (h *Handler) List(c *gin.Context) {
	goals, err := h.goals.List(auth.UserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list goals")
		h.errorResponse(c, http.StatusInternalServerError, "failed to list goals")
		return
	}
	c.JSON(http.StatusOK, goals)
}

// Create adds a goal and triggers a badge scan.
// POST /api/goals.
func (h *Handler) Create(c *gin.Context) {
	var input svcgoals.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	userID := auth.UserID(c)
	goal, err := h.goals.Create(c.Request.Context(), userID, input)
	if err != nil {
		if errors.Is(err, svcgoals.ErrNameRequired) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to create goal")
		h.errorResponse(c, http.StatusInternalServerError, "failed to create goal")
		return
	}

	if h.scan != nil {
		h.scan(c.Request.Context(), userID)
	}
	c.JSON(http.StatusCreated, goal)
}

// Update edits a goal's descriptive fields and schedule.
// PUT /api/goals/:id.
func (h *Handler) Update(c *gin.Context) {
	goalID, err := h.parseGoalID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var input svcgoals.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	goal, err := h.goals.Update(auth.UserID(c), goalID, input)
	if err != nil {
		if errors.Is(err, svcgoals.ErrGoalNotFound) {
			h.errorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("goal_id", goalID).Msg("Failed to update goal")
		h.errorResponse(c, http.StatusInternalServerError, "failed to update goal")
		return
	}
	c.JSON(http.StatusOK, goal)
}

// Delete deactivates a goal, keeping its history.
// DELETE /api/goals/:id.
func (h *Handler) Delete(c *gin.Context) {
	goalID, err := h.parseGoalID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.goals.Deactivate(auth.UserID(c), goalID); err != nil {
		if errors.Is(err, svcgoals.ErrGoalNotFound) {
			h.errorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("goal_id", goalID).Msg("Failed to deactivate goal")
		h.errorResponse(c, http.StatusInternalServerError, "failed to remove goal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type reorderRequest struct {
	Order []uint `json:"order"`
}

// Reorder persists a new display order.
// PUT /api/goals/reorder.
func (h *Handler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Order == nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid order")
		return
	}

	if err := h.goals.Reorder(auth.UserID(c), req.Order); err != nil {
		h.log.Error().Err(err).Msg("Failed to reorder goals")
		h.errorResponse(c, http.StatusInternalServerError, "failed to reorder goals")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Daily returns the reconciled daily view.
// GET /api/goals/daily?date=YYYY-MM-DD.
func (h *Handler) Daily(c *gin.Context) {
	view, err := h.checkins.Daily(c.Request.Context(), auth.UserID(c), c.Query("date"))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to build daily view")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load daily goals")
		return
	}
	c.JSON(http.StatusOK, view)
}

type checkinRequest struct {
	GoalID    uint   `json:"goalId"`
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

// Checkin toggles a goal's completion for a date.
// POST /api/goals/checkin.
func (h *Handler) Checkin(c *gin.Context) {
	var req checkinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.GoalID == 0 {
		h.errorResponse(c, http.StatusBadRequest, "goalId is required")
		return
	}

	userID := auth.UserID(c)
	result, err := h.checkins.Toggle(c.Request.Context(), userID, req.GoalID, req.Date, req.Completed)
	if err != nil {
		if errors.Is(err, checkin.ErrGoalNotFound) {
			h.errorResponse(c, http.StatusNotFound, err.Error())
			return
		}
		h.log.Error().Err(err).Uint("goal_id", req.GoalID).Msg("Check-in failed")
		h.errorResponse(c, http.StatusInternalServerError, "failed to process check-in")
		return
	}

	if h.stats != nil {
		h.stats.Invalidate(c.Request.Context(), userID)
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) parseGoalID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, errors.New("invalid goal ID: " + idStr)
	}
	return uint(id), nil
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
