// Package achievements provides REST handlers for the badge catalog and
// unlock state.
package achievements

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shapeu/shapeu/internal/auth"
	"github.com/shapeu/shapeu/internal/catalog"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/progression"
	"github.com/shapeu/shapeu/internal/repository"
	svcachievements "github.com/shapeu/shapeu/internal/service/achievements"
	"github.com/shapeu/shapeu/pkg/logger"
)

// Checker runs a full badge scan.
type Checker interface {
	Check(ctx context.Context, userID uint) ([]svcachievements.Unlock, error)
}

// UnlockRepository interface for unlock records.
type UnlockRepository interface {
	ListByUser(userID uint) ([]models.UserAchievement, error)
	MarkAllSeen(userID uint) error
}

// UserRepository interface for user lookups.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// Handler handles achievement API requests.
type Handler struct {
	catalog *catalog.Catalog
	checker Checker
	unlocks UnlockRepository
	users   UserRepository
	log     *logger.Logger
}

// NewHandler creates a new achievements handler.
func NewHandler(
	cat *catalog.Catalog,
	checker *svcachievements.Service,
	unlocks *repository.AchievementRepository,
	users *repository.UserRepository,
	log *logger.Logger,
) *Handler {
	return &Handler{catalog: cat, checker: checker, unlocks: unlocks, users: users, log: log}
}

// NewHandlerWithInterfaces creates a new achievements handler with
// interface dependencies (useful for testing).
func NewHandlerWithInterfaces(
	cat *catalog.Catalog,
	checker Checker,
	unlocks UnlockRepository,
	users UserRepository,
	log *logger.Logger,
) *Handler {
	return &Handler{catalog: cat, checker: checker, unlocks: unlocks, users: users, log: log}
}

// RegisterRoutes mounts the achievement routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/achievements", h.List)
	rg.POST("/achievements/seen", h.MarkSeen)
	rg.GET("/achievements/check", h.Check)
}

type badgeView struct {
	catalog.Badge
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt"`
	Seen       bool       `json:"seen"`
}

// List returns the full catalog annotated with the user's unlock state,
// plus the user's progression headline.
// GET /api/achievements.
func (h *Handler) List(c *gin.Context) {
	userID := auth.UserID(c)

	user, err := h.users.GetByID(userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load user")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load achievements")
		return
	}
	unlocks, err := h.unlocks.ListByUser(userID)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to load unlocks")
		h.errorResponse(c, http.StatusInternalServerError, "failed to load achievements")
		return
	}

	unlockedMap := make(map[string]models.UserAchievement, len(unlocks))
	for _, u := range unlocks {
		unlockedMap[u.AchievementID] = u
	}

	all := make([]badgeView, 0, len(h.catalog.Achievements))
	for _, badge := range h.catalog.Achievements {
		view := badgeView{Badge: badge}
		if u, ok := unlockedMap[badge.ID]; ok {
			view.Unlocked = true
			unlockedAt := u.UnlockedAt
			view.UnlockedAt = &unlockedAt
			view.Seen = u.Seen
		}
		all = append(all, view)
	}

	levelInfo := progression.LevelFor(user.XP)
	c.JSON(http.StatusOK, gin.H{
		"achievements":  all,
		"totalUnlocked": len(unlocks),
		"totalBadges":   len(h.catalog.Achievements),
		"level":         user.Level,
		"xp":            user.XP,
		"xpInLevel":     levelInfo.XPInCurrentLevel,
		"xpForNext":     levelInfo.XPForNext,
		"title":         progression.TitleFor(user.Level),
	})
}

// MarkSeen flags every unseen unlock as seen.
// POST /api/achievements/seen.
func (h *Handler) MarkSeen(c *gin.Context) {
	if err := h.unlocks.MarkAllSeen(auth.UserID(c)); err != nil {
		h.log.Error().Err(err).Msg("Failed to mark achievements seen")
		h.errorResponse(c, http.StatusInternalServerError, "failed to mark achievements")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Check runs a scan on demand and returns fresh unlocks.
// GET /api/achievements/check.
func (h *Handler) Check(c *gin.Context) {
	results, err := h.checker.Check(c.Request.Context(), auth.UserID(c))
	if err != nil {
		h.log.Error().Err(err).Msg("Achievement scan failed")
		h.errorResponse(c, http.StatusInternalServerError, "failed to check achievements")
		return
	}
	if results == nil {
		results = []svcachievements.Unlock{}
	}
	c.JSON(http.StatusOK, gin.H{"newAchievements": results})
}

// errorResponse sends a standardized error response.
func (h *Handler) errorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{
		"error":     message,
		"timestamp": time.Now().UTC(),
	})
}
