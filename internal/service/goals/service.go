// Package goals manages the habit catalog: creation with effort
// classification, updates, soft deletion, reordering and the default set
// seeded at registration.
package goals

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/repository"
	"github.com/shapeu/shapeu/internal/textgen"
	"github.com/shapeu/shapeu/pkg/logger"
)

// Errors surfaced to the API layer.
var (
	ErrNameRequired = errors.New("goal name is required")
	ErrGoalNotFound = errors.New("goal not found")
)

// GoalRepository interface for goal operations.
type GoalRepository interface {
	Create(goal *models.Goal) error
	CreateBatch(goals []models.Goal) error
	GetByID(userID, goalID uint) (*models.Goal, error)
	ListActive(userID uint) ([]models.Goal, error)
	CountActive(userID uint) (int64, error)
	Update(goal *models.Goal) error
	Reorder(userID uint, orderedIDs []uint) error
}

// Classifier assigns an effort level to a goal name.
type Classifier interface {
	ClassifyEffort(ctx context.Context, goalName string) string
}

// Service manages goal lifecycle.
type Service struct {
	goals      GoalRepository
	classifier Classifier
	log        *logger.Logger
}

// NewService creates a new goal service.
func NewService(goals *repository.GoalRepository, classifier textgen.Generator, log *logger.Logger) *Service {
	return &Service{goals: goals, classifier: classifier, log: log}
}

// NewServiceWithInterfaces creates a new goal service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(goals GoalRepository, classifier Classifier, log *logger.Logger) *Service {
	return &Service{goals: goals, classifier: classifier, log: log}
}

// CreateInput holds the fields for a new goal.
type CreateInput struct {
	Name          string            `json:"name"`
	Icon          string            `json:"icon"`
	Time          string            `json:"time"`
	FrequencyType string            `json:"frequency_type"`
	SpecificDays  models.StringList `json:"specific_days"`
	DaysPerWeek   int               `json:"days_per_week"`
}

// UpdateInput holds the optional fields of a goal update. Nil fields are
// left unchanged.
type UpdateInput struct {
	Name          *string            `json:"name"`
	Icon          *string            `json:"icon"`
	Time          *string            `json:"time"`
	FrequencyType *string            `json:"frequency_type"`
	SpecificDays  *models.StringList `json:"specific_days"`
	DaysPerWeek   *int               `json:"days_per_week"`
}

// List returns the user's active goals in display order.
func (s *Service) List(userID uint) ([]models.Goal, error) {
	return s.goals.ListActive(userID)
}

// Get returns one active goal of the user.
func (s *Service) Get(userID, goalID uint) (*models.Goal, error) {
	goal, err := s.goals.GetByID(userID, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}
	return goal, nil
}

// Create validates and stores a new goal at the end of the display order.
// The effort level comes from the classifier and defaults to light.
func (s *Service) Create(ctx context.Context, userID uint, input CreateInput) (*models.Goal, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	effortLevel := s.classifier.ClassifyEffort(ctx, name)

	count, err := s.goals.CountActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count goals: %w", err)
	}

	icon := input.Icon
	if icon == "" {
		icon = "🎯"
	}
	frequencyType := input.FrequencyType
	if frequencyType == "" {
		frequencyType = models.FrequencyDaily
	}

	goal := &models.Goal{
		UserID:        userID,
		Name:          name,
		Icon:          icon,
		Time:          input.Time,
		FrequencyType: frequencyType,
		SpecificDays:  input.SpecificDays,
		DaysPerWeek:   input.DaysPerWeek,
		EffortLevel:   effortLevel,
		IsActive:      true,
		Order:         int(count),
	}
	if err := s.goals.Create(goal); err != nil {
		return nil, fmt.Errorf("failed to create goal: %w", err)
	}

	s.log.Info().
		Uint("user_id", userID).
		Uint("goal_id", goal.ID).
		Str("effort", effortLevel).
		Msg("Goal created")
	return goal, nil
}

// Update applies the given fields to a goal.
func (s *Service) Update(userID, goalID uint, input UpdateInput) (*models.Goal, error) {
	goal, err := s.Get(userID, goalID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil && strings.TrimSpace(*input.Name) != "" {
		goal.Name = strings.TrimSpace(*input.Name)
	}
	if input.Icon != nil && *input.Icon != "" {
		goal.Icon = *input.Icon
	}
	if input.Time != nil {
		goal.Time = *input.Time
	}
	if input.FrequencyType != nil && *input.FrequencyType != "" {
		goal.FrequencyType = *input.FrequencyType
	}
	if input.SpecificDays != nil {
		goal.SpecificDays = *input.SpecificDays
	}
	if input.DaysPerWeek != nil {
		goal.DaysPerWeek = *input.DaysPerWeek
	}

	if err := s.goals.Update(goal); err != nil {
		return nil, fmt.Errorf("failed to update goal: %w", err)
	}
	return goal, nil
}

// Deactivate soft-deletes a goal. History, streaks and counters survive.
func (s *Service) Deactivate(userID, goalID uint) error {
	goal, err := s.Get(userID, goalID)
	if err != nil {
		return err
	}
	goal.IsActive = false
	if err := s.goals.Update(goal); err != nil {
		return fmt.Errorf("failed to deactivate goal: %w", err)
	}
	return nil
}

// Reorder assigns display ranks following the given ID order.
func (s *Service) Reorder(userID uint, orderedIDs []uint) error {
	if len(orderedIDs) == 0 {
		return nil
	}
	return s.goals.Reorder(userID, orderedIDs)
}

// SeedDefaults creates the starter goal set for a new account.
func (s *Service) SeedDefaults(userID uint) error {
	defaults := []models.Goal{
		{UserID: userID, Name: "Academia/Treino", Icon: "🏋️", EffortLevel: models.EffortHigh, FrequencyType: models.FrequencyDaily, IsActive: true, Order: 0},
		{UserID: userID, Name: "Alimentação Saudável", Icon: "🥗", EffortLevel: models.EffortLight, FrequencyType: models.FrequencyDaily, IsActive: true, Order: 1},
		{UserID: userID, Name: "Hidratação 2L", Icon: "💧", EffortLevel: models.EffortLight, FrequencyType: models.FrequencyDaily, IsActive: true, Order: 2},
		{UserID: userID, Name: "Estudo 1h", Icon: "📚", EffortLevel: models.EffortLight, FrequencyType: models.FrequencyDaily, IsActive: true, Order: 3},
	}
	if err := s.goals.CreateBatch(defaults); err != nil {
		return fmt.Errorf("failed to seed default goals: %w", err)
	}
	return nil
}
