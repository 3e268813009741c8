// Package achievements implements the badge rule engine: it evaluates the
// static catalog against a snapshot of the user's history and records
// unlocks, awarding XP for each.
package achievements

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/catalog"
	appmetrics "github.com/shapeu/shapeu/internal/metrics"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/progression"
	"github.com/shapeu/shapeu/internal/repository"
	"github.com/shapeu/shapeu/pkg/logger"
)

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	Update(user *models.User) error
	CountCreatedUpTo(t time.Time) (int64, error)
}

// GoalRepository interface for goal operations.
type GoalRepository interface {
	ListActive(userID uint) ([]models.Goal, error)
	ListAll(userID uint) ([]models.Goal, error)
}

// LogRepository interface for daily log operations.
type LogRepository interface {
	ListAllDesc(userID uint) ([]models.DailyLog, error)
}

// UnlockRepository interface for unlock records.
type UnlockRepository interface {
	Create(unlock *models.UserAchievement) error
	ListByUser(userID uint) ([]models.UserAchievement, error)
}

// Service evaluates and awards achievements.
type Service struct {
	catalog *catalog.Catalog
	users   UserRepository
	goals   GoalRepository
	logs    LogRepository
	unlocks UnlockRepository
	log     *logger.Logger
}

// NewService creates a new achievement service.
func NewService(
	cat *catalog.Catalog,
	users *repository.UserRepository,
	goals *repository.GoalRepository,
	logs *repository.DailyLogRepository,
	unlocks *repository.AchievementRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		catalog: cat,
		users:   users,
		goals:   goals,
		logs:    logs,
		unlocks: unlocks,
		log:     log,
	}
}

// NewServiceWithInterfaces creates a new achievement service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	cat *catalog.Catalog,
	users UserRepository,
	goals GoalRepository,
	logs LogRepository,
	unlocks UnlockRepository,
	log *logger.Logger,
) *Service {
	return &Service{
		catalog: cat,
		users:   users,
		goals:   goals,
		logs:    logs,
		unlocks: unlocks,
		log:     log,
	}
}

// Unlock describes one badge awarded during a scan.
type Unlock struct {
	Badge     catalog.Badge `json:"badge"`
	XPAwarded int           `json:"xpAwarded"`
	LeveledUp bool          `json:"leveledUp"`
	NewLevel  int           `json:"newLevel"`
}

// Check evaluates every not-yet-unlocked catalog entry against the user's
// history and awards the ones earned. Entries unlocked earlier in the same
// pass are visible to later entries through the unlocked set. A failing
// evaluator marks its entry as not earned and never aborts the scan.
func (s *Service) Check(ctx context.Context, userID uint) ([]Unlock, error) {
	start := time.Now()

	user, err := s.users.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	existing, err := s.unlocks.ListByUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocks: %w", err)
	}
	unlocked := make(map[string]bool, len(existing))
	for _, u := range existing {
		unlocked[u.AchievementID] = true
	}

	activeGoals, err := s.goals.ListActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load active goals: %w", err)
	}
	allGoals, err := s.goals.ListAll(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load goals: %w", err)
	}
	logs, err := s.logs.ListAllDesc(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}

	snap := &snapshot{
		user:        user,
		activeGoals: activeGoals,
		allGoals:    allGoals,
		logs:        logs,
		unlocked:    unlocked,
		users:       s.users,
	}

	var results []Unlock

	for i := range s.catalog.Achievements {
		badge := s.catalog.Achievements[i]
		if unlocked[badge.ID] {
			continue
		}

		earned := s.evaluate(snap, &badge)
		if !earned {
			continue
		}

		xp := badge.XP
		if xp == 0 {
			xp = progression.AchievementXP(badge.Rarity)
		}

		err := s.unlocks.Create(&models.UserAchievement{
			UserID:        userID,
			AchievementID: badge.ID,
			UnlockedAt:    time.Now(),
			XPAwarded:     xp,
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Raced with a concurrent unlock of the same badge.
				unlocked[badge.ID] = true
				continue
			}
			return results, fmt.Errorf("failed to record unlock %s: %w", badge.ID, err)
		}

		user.XP += xp
		levelInfo := progression.LevelFor(user.XP)
		leveledUp := levelInfo.Level > user.Level
		user.Level = levelInfo.Level
		if err := s.users.Update(user); err != nil {
			return results, fmt.Errorf("failed to save user after unlock %s: %w", badge.ID, err)
		}

		appmetrics.RecordAchievementUnlocked(badge.Rarity)
		appmetrics.RecordXPAwarded("achievement", xp)
		if leveledUp {
			appmetrics.RecordLevelUp()
		}

		s.log.Info().
			Uint("user_id", userID).
			Str("badge", badge.ID).
			Int("xp", xp).
			Bool("leveled_up", leveledUp).
			Msg("Achievement unlocked")

		results = append(results, Unlock{
			Badge:     badge,
			XPAwarded: xp,
			LeveledUp: leveledUp,
			NewLevel:  user.Level,
		})
		unlocked[badge.ID] = true
	}

	appmetrics.ObserveAchievementScanDuration(time.Since(start).Seconds())
	_ = ctx
	return results, nil
}

// evaluate runs the badge's criteria evaluator. Unknown criteria types and
// evaluator panics both count as not earned.
func (s *Service) evaluate(snap *snapshot, badge *catalog.Badge) (earned bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("badge", badge.ID).
				Interface("panic", r).
				Msg("Criteria evaluator panicked, skipping entry")
			earned = false
		}
	}()

	eval, ok := evaluators[badge.Criteria.Type]
	if !ok {
		return false
	}

	earned, err := eval(snap, badge.Criteria)
	if err != nil {
		s.log.Warn().
			Err(err).
			Str("badge", badge.ID).
			Msg("Criteria evaluation failed, skipping entry")
		return false
	}
	return earned
}
