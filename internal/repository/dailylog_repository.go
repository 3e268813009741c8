package repository

import (
	"fmt"

	"github.com/shapeu/shapeu/internal/models"
)

// DailyLogRepository handles daily log database operations.
type DailyLogRepository struct {
	db *DB
}

// NewDailyLogRepository creates a new daily log repository.
func NewDailyLogRepository(db *DB) *DailyLogRepository {
	return &DailyLogRepository{db: db}
}

// Create creates a daily log. A duplicate (user, date) surfaces as
// gorm.ErrDuplicatedKey; callers treat that as "already exists".
func (r *DailyLogRepository) Create(log *models.DailyLog) error {
	if err := r.db.Create(log).Error; err != nil {
		return fmt.Errorf("failed to create daily log: %w", err)
	}
	return nil
}

// GetByDate retrieves the log for one (user, calendar date) pair.
func (r *DailyLogRepository) GetByDate(userID uint, date string) (*models.DailyLog, error) {
	var log models.DailyLog
	err := r.db.Where("user_id = ? AND date = ?", userID, date).First(&log).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get daily log for %s: %w", date, err)
	}
	return &log, nil
}

// Update persists log mutations.
func (r *DailyLogRepository) Update(log *models.DailyLog) error {
	if err := r.db.Save(log).Error; err != nil {
		return fmt.Errorf("failed to update daily log: %w", err)
	}
	return nil
}

// ListAllDesc retrieves the user's full log history, most recent date first.
func (r *DailyLogRepository) ListAllDesc(userID uint) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	err := r.db.
		Where("user_id = ?", userID).
		Order("date DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list daily logs: %w", err)
	}
	return logs, nil
}

// ListRecent retrieves the most recent logs up to limit.
func (r *DailyLogRepository) ListRecent(userID uint, limit int) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	err := r.db.
		Where("user_id = ?", userID).
		Order("date DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list recent logs: %w", err)
	}
	return logs, nil
}

// ListBetween retrieves logs with from <= date <= to, oldest first.
func (r *DailyLogRepository) ListBetween(userID uint, from, to string) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	err := r.db.
		Where("user_id = ? AND date >= ? AND date <= ?", userID, from, to).
		Order("date ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list logs between %s and %s: %w", from, to, err)
	}
	return logs, nil
}

// ListBetweenExclusive retrieves logs with from <= date < to, oldest first.
// Used for previous-window comparisons.
func (r *DailyLogRepository) ListBetweenExclusive(userID uint, from, to string) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	err := r.db.
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to).
		Order("date ASC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list logs between %s and %s: %w", from, to, err)
	}
	return logs, nil
}

// ListPerfectUpTo retrieves perfect-rate logs dated at or before date,
// most recent first, up to limit. Used for perfect week/month detection.
func (r *DailyLogRepository) ListPerfectUpTo(userID uint, date string, limit int) ([]models.DailyLog, error) {
	var logs []models.DailyLog
	err := r.db.
		Where("user_id = ? AND date <= ? AND completion_rate = ?", userID, date, 100).
		Order("date DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list perfect logs: %w", err)
	}
	return logs, nil
}

// DeleteAllForUser removes every log of a user.
func (r *DailyLogRepository) DeleteAllForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.DailyLog{}).Error
}
