package repository

import (
	"fmt"

	"github.com/shapeu/shapeu/internal/models"
)

// GoalRepository handles goal-related database operations.
type GoalRepository struct {
	db *DB
}

// NewGoalRepository creates a new goal repository.
func NewGoalRepository(db *DB) *GoalRepository {
	return &GoalRepository{db: db}
}

// Create creates a new goal.
func (r *GoalRepository) Create(goal *models.Goal) error {
	if err := r.db.Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

// CreateBatch creates several goals in one insert. Used for default goal
// seeding at registration.
func (r *GoalRepository) CreateBatch(goals []models.Goal) error {
	if len(goals) == 0 {
		return nil
	}
	if err := r.db.Create(&goals).Error; err != nil {
		return fmt.Errorf("failed to create goals: %w", err)
	}
	return nil
}

// GetByID retrieves a goal owned by the given user.
func (r *GoalRepository) GetByID(userID, goalID uint) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.Where("id = ? AND user_id = ?", goalID, userID).First(&goal).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get goal %d: %w", goalID, err)
	}
	return &goal, nil
}

// ListActive retrieves the user's active goals in display order.
func (r *GoalRepository) ListActive(userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("display_order ASC").
		Find(&goals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active goals: %w", err)
	}
	return goals, nil
}

// ListAll retrieves every goal of the user, active or not.
func (r *GoalRepository) ListAll(userID uint) ([]models.Goal, error) {
	var goals []models.Goal
	if err := r.db.Where("user_id = ?", userID).Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// CountActive counts the user's active goals.
func (r *GoalRepository) CountActive(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Goal{}).
		Where("user_id = ? AND is_active = ?", userID, true).
		Count(&count).Error
	return count, err
}

// Update persists goal mutations.
func (r *GoalRepository) Update(goal *models.Goal) error {
	if err := r.db.Save(goal).Error; err != nil {
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return nil
}

// Reorder assigns display ranks following the given ID order.
func (r *GoalRepository) Reorder(userID uint, orderedIDs []uint) error {
	for i, id := range orderedIDs {
		err := r.db.Model(&models.Goal{}).
			Where("id = ? AND user_id = ?", id, userID).
			Update("display_order", i).Error
		if err != nil {
			return fmt.Errorf("failed to reorder goal %d: %w", id, err)
		}
	}
	return nil
}

// DeleteAllForUser removes every goal of a user. Used by import and account
// deletion.
func (r *GoalRepository) DeleteAllForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Goal{}).Error
}
