// Package metas manages long-term targets, including the automatic
// progress updates driven by check-ins on a linked goal.
package metas

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shapeu/shapeu/internal/metrics"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/progression"
	"github.com/shapeu/shapeu/internal/repository"
	"github.com/shapeu/shapeu/pkg/logger"
)

// MetaCompletionBonus is the one-time XP awarded when a target is reached.
const MetaCompletionBonus = 100

// Validation errors surfaced to the API layer.
var (
	ErrNameRequired    = errors.New("meta name is required")
	ErrTargetTooSmall  = errors.New("target value must be at least 1")
	ErrDatesRequired   = errors.New("start and end dates are required")
	ErrDatesOutOfOrder = errors.New("end date must not precede start date")
)

// MetaRepository interface for meta operations.
type MetaRepository interface {
	Create(meta *models.Meta) error
	GetByID(userID, metaID uint) (*models.Meta, error)
	List(userID uint) ([]models.Meta, error)
	ListOpenLinked(userID, goalID uint) ([]models.Meta, error)
	Update(meta *models.Meta) error
	Delete(userID, metaID uint) error
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	Update(user *models.User) error
}

// Service manages long-term targets.
type Service struct {
	metas MetaRepository
	users UserRepository
	log   *logger.Logger
}

// NewService creates a new meta service.
func NewService(metas *repository.MetaRepository, users *repository.UserRepository, log *logger.Logger) *Service {
	return &Service{metas: metas, users: users, log: log}
}

// NewServiceWithInterfaces creates a new meta service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(metas MetaRepository, users UserRepository, log *logger.Logger) *Service {
	return &Service{metas: metas, users: users, log: log}
}

// CreateInput holds the fields for a new target.
type CreateInput struct {
	Name         string `json:"name"`
	Icon         string `json:"icon"`
	TargetValue  int    `json:"targetValue"`
	Unit         string `json:"unit"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	LinkedGoalID *uint  `json:"linkedGoalId"`
}

// UpdateInput holds the optional fields of a target update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name         *string `json:"name"`
	Icon         *string `json:"icon"`
	TargetValue  *int    `json:"targetValue"`
	Unit         *string `json:"unit"`
	StartDate    *string `json:"startDate"`
	EndDate      *string `json:"endDate"`
	LinkedGoalID *uint   `json:"linkedGoalId"`
	CurrentValue *int    `json:"currentValue"`
}

// List returns the user's targets, newest first.
func (s *Service) List(userID uint) ([]models.Meta, error) {
	return s.metas.List(userID)
}

// Create validates and stores a new target.
func (s *Service) Create(userID uint, input CreateInput) (*models.Meta, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}
	if input.TargetValue < 1 {
		return nil, ErrTargetTooSmall
	}
	if input.StartDate == "" || input.EndDate == "" {
		return nil, ErrDatesRequired
	}
	// Date strings compare lexicographically, same as Meta.InWindow.
	if input.EndDate < input.StartDate {
		return nil, ErrDatesOutOfOrder
	}

	icon := input.Icon
	if icon == "" {
		icon = "🎯"
	}
	unit := input.Unit
	if unit == "" {
		unit = "vezes"
	}

	meta := &models.Meta{
		UserID:       userID,
		Name:         name,
		Icon:         icon,
		TargetValue:  input.TargetValue,
		Unit:         unit,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		LinkedGoalID: input.LinkedGoalID,
	}
	if err := s.metas.Create(meta); err != nil {
		return nil, fmt.Errorf("failed to create meta: %w", err)
	}
	return meta, nil
}

// Update applies the given fields. Manual progress reaching the target
// value marks the target completed and pays the same one-time XP bonus as a
// linked check-in.
func (s *Service) Update(userID, metaID uint, input UpdateInput) (*models.Meta, error) {
	meta, err := s.metas.GetByID(userID, metaID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		meta.Name = strings.TrimSpace(*input.Name)
	}
	if input.Icon != nil && *input.Icon != "" {
		meta.Icon = *input.Icon
	}
	if input.TargetValue != nil {
		meta.TargetValue = *input.TargetValue
	}
	if input.Unit != nil && *input.Unit != "" {
		meta.Unit = *input.Unit
	}
	if input.StartDate != nil && *input.StartDate != "" {
		meta.StartDate = *input.StartDate
	}
	if input.EndDate != nil && *input.EndDate != "" {
		meta.EndDate = *input.EndDate
	}
	if input.LinkedGoalID != nil {
		meta.LinkedGoalID = input.LinkedGoalID
	}
	if input.CurrentValue != nil {
		meta.CurrentValue = *input.CurrentValue
	}

	if meta.CurrentValue >= meta.TargetValue && !meta.IsCompleted {
		meta.CurrentValue = meta.TargetValue
		meta.IsCompleted = true
		now := time.Now()
		meta.CompletedAt = &now
		if err := s.awardCompletionBonus(userID, meta); err != nil {
			return nil, err
		}
	}

	if err := s.metas.Update(meta); err != nil {
		return nil, fmt.Errorf("failed to update meta: %w", err)
	}
	return meta, nil
}

// Delete removes a target.
func (s *Service) Delete(userID, metaID uint) error {
	if _, err := s.metas.GetByID(userID, metaID); err != nil {
		return err
	}
	return s.metas.Delete(userID, metaID)
}

// OnGoalCompleted advances every open target linked to the goal whose
// window covers the date. Progress is clamped at the target value; a target
// reaching it is marked completed and awards the one-time XP bonus. Returns
// the total bonus XP granted.
func (s *Service) OnGoalCompleted(ctx context.Context, userID, goalID uint, date string) (int, error) {
	linked, err := s.metas.ListOpenLinked(userID, goalID)
	if err != nil {
		return 0, fmt.Errorf("failed to list linked metas: %w", err)
	}

	bonus := 0
	for i := range linked {
		meta := &linked[i]
		if !meta.InWindow(date) {
			continue
		}

		meta.CurrentValue++
		if meta.CurrentValue > meta.TargetValue {
			meta.CurrentValue = meta.TargetValue
		}

		if meta.CurrentValue >= meta.TargetValue {
			meta.IsCompleted = true
			now := time.Now()
			meta.CompletedAt = &now
			if err := s.awardCompletionBonus(userID, meta); err != nil {
				return bonus, err
			}
			bonus += MetaCompletionBonus
		}

		if err := s.metas.Update(meta); err != nil {
			return bonus, fmt.Errorf("failed to update linked meta: %w", err)
		}
	}

	_ = ctx
	return bonus, nil
}

// awardCompletionBonus pays the one-time XP bonus for a reached target and
// recomputes the user's level.
func (s *Service) awardCompletionBonus(userID uint, meta *models.Meta) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return fmt.Errorf("failed to load user for meta bonus: %w", err)
	}
	user.XP += MetaCompletionBonus
	user.Level = progression.LevelFor(user.XP).Level
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to award meta bonus: %w", err)
	}

	metrics.RecordMetaCompleted()
	metrics.RecordXPAwarded("meta_bonus", MetaCompletionBonus)

	s.log.Info().
		Uint("user_id", userID).
		Uint("meta_id", meta.ID).
		Str("name", meta.Name).
		Msg("Meta completed")
	return nil
}

// OnGoalUnchecked rolls back one unit of progress on every open target
// linked to the goal. Progress never drops below zero and completed targets
// are left untouched.
func (s *Service) OnGoalUnchecked(ctx context.Context, userID, goalID uint) error {
	linked, err := s.metas.ListOpenLinked(userID, goalID)
	if err != nil {
		return fmt.Errorf("failed to list linked metas: %w", err)
	}

	for i := range linked {
		meta := &linked[i]
		if meta.CurrentValue == 0 {
			continue
		}
		meta.CurrentValue--
		if err := s.metas.Update(meta); err != nil {
			return fmt.Errorf("failed to update linked meta: %w", err)
		}
	}

	_ = ctx
	return nil
}
