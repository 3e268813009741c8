// Package accounts provides REST handlers for registration, login and
// session management.
package accounts

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapeu/shapeu/internal/auth"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/progression"
	"github.com/shapeu/shapeu/internal/service/users"
	"github.com/shapeu/shapeu/pkg/logger"
)

// UserService interface for account operations.
type UserService interface {
	Register(ctx context.Context, username, password, confirmPassword string) (*models.User, error)
	Login(ctx context.Context, username, password string) (*models.User, error)
	Get(userID uint) (*models.User, error)
}

// Handler handles account API requests.
type Handler struct {
	users        UserService
	tokens       *auth.TokenManager
	secureCookie bool
	log          *logger.Logger
}

// NewHandler creates a new accounts handler.
func NewHandler(userService *users.Service, tokens *auth.TokenManager, secureCookie bool, log *logger.Logger) *Handler {
	return &Handler{users: userService, tokens: tokens, secureCookie: secureCookie, log: log}
}

// NewHandlerWithInterfaces creates a new accounts handler with interface
// dependencies (useful for testing).
func NewHandlerWithInterfaces(userService UserService, tokens *auth.TokenManager, secureCookie bool, log *logger.Logger) *Handler {
	return &Handler{users: userService, tokens: tokens, secureCookie: secureCookie, log: log}
}

// RegisterRoutes mounts the public auth routes and the authenticated
// profile lookup.
func (h *Handler) RegisterRoutes(public, authed *gin.RouterGroup) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	public.POST("/auth/logout", h.Logout)
	authed.GET("/auth/me", h.Me)
}

type credentialsRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Register creates an account and opens a session.
// POST /api/auth/register.
func (h *Handler) Register(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Register(c.Request.Context(), req.Username, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, users.ErrUsernameTaken):
			h.errorResponse(c, http.StatusConflict, err.Error())
		case errors.Is(err, users.ErrUsernameTooShort),
			errors.Is(err, users.ErrPasswordTooShort),
			errors.Is(err, users.ErrPasswordMismatch):
			h.errorResponse(c, http.StatusBadRequest, err.Error())
		default:
			h.log.Error().Err(err).Msg("Registration failed")
			h.errorResponse(c, http.StatusInternalServerError, "failed to create account")
		}
		return
	}

	if err := h.openSession(c, user.ID); err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "failed to open session")
		return
	}
	c.JSON(http.StatusCreated, h.userPayload(user))
}

// Login verifies credentials and opens a session.
// POST /api/auth/login.
func (h *Handler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.errorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, users.ErrInvalidCredentials) {
			h.errorResponse(c, http.StatusUnauthorized, err.Error())
			return
		}
		h.log.Error().Err(err).Msg("Login failed")
		h.errorResponse(c, http.StatusInternalServerError, "failed to log in")
		return
	}

	if err := h.openSession(c, user.ID); err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "failed to open session")
		return
	}
	c.JSON(http.StatusOK, h.userPayload(user))
}

// Logout clears the session cookie.
// POST /api/auth/logout.
func (h *Handler) Logout(c *gin.Context) {
	auth.ClearSessionCookie(c, h.secureCookie)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Me returns the authenticated user with progression details.
// GET /api/auth/me.
func (h *Handler) Me(c *gin.Context) {
	user, err := h.users.Get(auth.UserID(c))
	if err != nil {
		h.errorResponse(c, http.StatusInternalServerError, "failed to load profile")
		return
	}
	c.JSON(http.StatusOK, h.userPayload(user))
}

func (h *Handler) openSession(c *gin.Context, userID uint) error {
	token, err := h.tokens.Issue(userID)
	if err != nil {
		h.log.Error().Err(err).Uint("user_id", userID).Msg("Failed to issue token")
		return err
	}
	auth.SetSessionCookie(c, token, h.tokens.TTL(), h.secureCookie)
	return nil
}

func (h *Handler) userPayload(user *models.User) gin.H {
	levelInfo := progression.LevelFor(user.XP)
	return gin.H{
		"user":      user,
		"level":     user.Level,
		"xp":        user.XP,
		"xpInLevel": levelInfo.XPInCurrentLevel,
		"xpForNext": levelInfo.XPForNext,
		"title":     progression.TitleFor(user.Level),
	}
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
