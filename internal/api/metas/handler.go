// Package metas provides REST handlers for long-term targets.
package metas

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/auth"
	"github.com/shapeu/shapeu/internal/models"
	svcmetas "github.com/shapeu/shapeu/internal/service/metas"
	"github.com/shapeu/shapeu/pkg/logger"
)

// MetaService interface for target operations.
type MetaService interface {
	List(userID uint) ([]models.Meta, error)
	Create(userID uint, input svcmetas.CreateInput) (*models.Meta, error)
	Update(userID, metaID uint, input svcmetas.UpdateInput) (*models.Meta, error)
	Delete(userID, metaID uint) error
}

// Handler handles target API requests.
type Handler struct {
	metas MetaService
	log   *logger.Logger
}

// NewHandler creates a new metas handler.
func NewHandler(metaService *svcmetas.Service, log *logger.Logger) *Handler {
	return &Handler{metas: metaService, log: log}
}

// NewHandlerWithInterfaces creates a new metas handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(metaService MetaService, log *logger.Logger) *Handler {
	return &Handler{metas: metaService, log: log}
}

// RegisterRoutes mounts the target routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/metas", h.List)
	rg.POST("/metas", h.Create)
	rg.PUT("/metas/:id", h.Update)
	rg.DELETE("/metas/:id", h.Delete)
}

// List returns the user's targets, newest first.
// GET /api/metas.
func (h *Handler) List(c *gin.Context) {
	metas, err := h.metas.List(auth.UserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to list metas")
		h.errorResponse(c, http.StatusInternalServerError, "failed to list metas")
		return
	}
	c.JSON(http.StatusOK, metas)
}

// Create adds a target.
// POST /api/metas.
func (h *Handler) Create(c *gin.Context) {
	var input svcmetas.CreateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	meta, err := h.metas.Create(auth.UserID(c), input)
	if err != nil {
		switch {
		case errors.Is(err, svcmetas.ErrNameRequired),
			errors.Is(err, svcmetas.ErrTargetTooSmall),
			errors.Is(err, svcmetas.ErrDatesRequired),
			errors.Is(err, svcmetas.ErrDatesOutOfOrder):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("Failed to create meta")
			h.errorResponse(c, http.StatusInternalServerError, "failed to create meta")
		}
		return
	}
	c.JSON(http.StatusCreated, meta)
}

// Update edits a target; reaching the target value completes it.
// PUT /api/metas/:id.
func (h *Handler) Update(c *gin.Context) {
	metaID, err := h.parseMetaID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	var input svcmetas.UpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	meta, err := h.metas.Update(auth.UserID(c), metaID, input)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "meta not found")
			return
		}
		h.log.Error().Err(err).Uint("meta_id", metaID).Msg("Failed to update meta")
		h.errorResponse(c, http.StatusInternalServerError, "failed to update meta")
		return
	}
	c.JSON(http.StatusOK, meta)
}

// Delete removes a target.
// DELETE /api/metas/:id.
func (h *Handler) Delete(c *gin.Context) {
	metaID, err := h.parseMetaID(c)
	if err != nil {
		h.errorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.metas.Delete(auth.UserID(c), metaID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.errorResponse(c, http.StatusNotFound, "meta not found")
			return
		}
		h.log.Error().Err(err).Uint("meta_id", metaID).Msg("Failed to delete meta")
		h.errorResponse(c, http.StatusInternalServerError, "failed to delete meta")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) parseMetaID(c *gin.Context) (uint, error) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return 0, errors.New("invalid meta ID: " + idStr)
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
