// Package profile provides REST handlers for account customization, data
// portability and account deletion.
package profile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapeu/shapeu/internal/auth"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/service/users"
	"github.com/shapeu/shapeu/pkg/logger"
)

// UserService interface for profile operations.
type UserService interface {
	Get(userID uint) (*models.User, error)
	UpdateTheme(ctx context.Context, userID uint, theme string) error
	UpdateAvatar(ctx context.Context, userID uint, avatarType, value string) (*models.User, error)
	ChangePassword(userID uint, currentPassword, newPassword, confirmPassword string) error
	Export(userID uint) (*users.ExportData, error)
	Import(userID uint, data *users.ExportData) error
	DeleteAccount(userID uint, confirmUsername string) error
}

// Handler handles profile API requests.
type Handler struct {
	users        UserService
	secureCookie bool
	log          *logger.Logger
}

// NewHandler creates a new profile handler.
func NewHandler(userService *users.Service, secureCookie bool, log *logger.Logger) *Handler {
	return &Handler{users: userService, secureCookie: secureCookie, log: log}
}

// NewHandlerWithInterfaces creates a new profile handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(userService UserService, secureCookie bool, log *logger.Logger) *Handler {
	return &Handler{users: userService, secureCookie: secureCookie, log: log}
}

// RegisterRoutes mounts the profile routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PUT("/profile/theme", h.UpdateTheme)
	rg.PUT("/profile/avatar", h.UpdateAvatar)
	rg.PUT("/profile/password", h.ChangePassword)
	rg.GET("/profile/export", h.Export)
	rg.POST("/profile/import", h.Import)
	rg.DELETE("/profile/account", h.DeleteAccount)
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// UpdateTheme switches the UI theme.
// PUT /api/profile/theme.
func (h *Handler) UpdateTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.users.UpdateTheme(c.Request.Context(), auth.UserID(c), req.Theme); err != nil {
		if errors.Is(err, users.ErrInvalidTheme) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to update theme")
		h.errorResponse(c, http.StatusInternalServerError, "failed to update theme")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "theme": req.Theme})
}

type avatarRequest struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// UpdateAvatar sets a predefined, unlockable or custom avatar. Custom
// avatars carry the image as a data URL in value.
// PUT /api/profile/avatar.
func (h *Handler) UpdateAvatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.UpdateAvatar(c.Request.Context(), auth.UserID(c), req.Type, req.Value)
	if err != nil {
		if errors.Is(err, users.ErrInvalidAvatar) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to update avatar")
		h.errorResponse(c, http.StatusInternalServerError, "failed to update avatar")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"avatar":  gin.H{"type": user.AvatarType, "value": user.AvatarValue},
	})
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

// ChangePassword rotates the password after verifying the current one.
// PUT /api/profile/password.
func (h *Handler) ChangePassword(c *gin.Context) {
	var req passwordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	err := h.users.ChangePassword(auth.UserID(c), req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrWrongPassword),
			errors.Is(err, users.ErrPasswordTooShort),
			errors.Is(err, users.ErrPasswordMismatch):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("Failed to change password")
			h.errorResponse(c, http.StatusInternalServerError, "failed to change password")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Export downloads the full account snapshot.
// GET /api/profile/export.
func (h *Handler) Export(c *gin.Context) {
	data, err := h.users.Export(auth.UserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to export data")
		h.errorResponse(c, http.StatusInternalServerError, "failed to export data")
		return
	}

	filename := fmt.Sprintf("shapeu_export_%s_%s.json", data.User.Username, time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.JSON(http.StatusOK, data)
}

// Import replaces the account's data with an exported snapshot.
// POST /api/profile/import.
func (h *Handler) Import(c *gin.Context) {
	var data users.ExportData
	if err := c.ShouldBindJSON(&data); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid file format")
		return
	}

	if err := h.users.Import(auth.UserID(c), &data); err != nil {
		if errors.Is(err, users.ErrInvalidImport) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to import data")
		h.errorResponse(c, http.StatusInternalServerError, "failed to import data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type deleteAccountRequest struct {
	ConfirmUsername string `json:"confirmUsername"`
}

// DeleteAccount removes the account and all owned data.
// DELETE /api/profile/account.
func (h *Handler) DeleteAccount(c *gin.Context) {
	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.users.DeleteAccount(auth.UserID(c), req.ConfirmUsername); err != nil {
		if errors.Is(err, users.ErrConfirmMismatch) {
			h.errorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Failed to delete account")
		h.errorResponse(c, http.StatusInternalServerError, "failed to delete account")
		return
	}

	auth.ClearSessionCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
