package repository

import (
	"fmt"

	"github.com/shapeu/shapeu/internal/models"
)

// AchievementRepository handles badge unlock records.
type AchievementRepository struct {
	db *DB
}

// NewAchievementRepository creates a new achievement repository.
func NewAchievementRepository(db *DB) *AchievementRepository {
	return &AchievementRepository{db: db}
}

// Create records an unlock. A duplicate (user, achievement) surfaces as
// gorm.ErrDuplicatedKey; callers skip, never error (idempotent unlocks).
func (r *AchievementRepository) Create(unlock *models.UserAchievement) error {
	return r.db.Create(unlock).Error
}

// ListByUser retrieves all unlocks of a user.
func (r *AchievementRepository) ListByUser(userID uint) ([]models.UserAchievement, error) {
	var unlocks []models.UserAchievement
	if err := r.db.Where("user_id = ?", userID).Find(&unlocks).Error; err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return unlocks, nil
}

// CountByUser counts a user's unlocks.
func (r *AchievementRepository) CountByUser(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.UserAchievement{}).
		Where("user_id = ?", userID).
		Count(&count).Error
	return count, err
}

// MarkAllSeen flags every unseen unlock of the user as seen.
func (r *AchievementRepository) MarkAllSeen(userID uint) error {
	return r.db.Model(&models.UserAchievement{}).
		Where("user_id = ? AND seen = ?", userID, false).
		Update("seen", true).Error
}

// DeleteAllForUser removes every unlock of a user.
func (r *AchievementRepository) DeleteAllForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.UserAchievement{}).Error
}
