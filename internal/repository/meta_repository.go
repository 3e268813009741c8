package repository

import (
	"fmt"

	"github.com/shapeu/shapeu/internal/models"
)

// MetaRepository handles long-term target database operations.
type MetaRepository struct {
	db *DB
}

// NewMetaRepository creates a new meta repository.
func NewMetaRepository(db *DB) *MetaRepository {
	return &MetaRepository{db: db}
}

// Create creates a new meta.
func (r *MetaRepository) Create(meta *models.Meta) error {
	if err := r.db.Create(meta).Error; err != nil {
		return fmt.Errorf("failed to create meta: %w", err)
	}
	return nil
}

// GetByID retrieves a meta owned by the given user.
func (r *MetaRepository) GetByID(userID, metaID uint) (*models.Meta, error) {
	var meta models.Meta
	err := r.db.Where("id = ? AND user_id = ?", metaID, userID).First(&meta).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get meta %d: %w", metaID, err)
	}
	return &meta, nil
}

// List retrieves the user's metas, newest first.
func (r *MetaRepository) List(userID uint) ([]models.Meta, error) {
	var metas []models.Meta
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&metas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list metas: %w", err)
	}
	return metas, nil
}

// ListOpenLinked retrieves the user's non-completed metas linked to a goal.
func (r *MetaRepository) ListOpenLinked(userID, goalID uint) ([]models.Meta, error) {
	var metas []models.Meta
	err := r.db.
		Where("user_id = ? AND linked_goal_id = ? AND is_completed = ?", userID, goalID, false).
		Find(&metas).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list linked metas: %w", err)
	}
	return metas, nil
}

// Update persists meta mutations.
func (r *MetaRepository) Update(meta *models.Meta) error {
	if err := r.db.Save(meta).Error; err != nil {
		return fmt.Errorf("failed to update meta: %w", err)
	}
	return nil
}

// Delete removes a meta.
func (r *MetaRepository) Delete(userID, metaID uint) error {
	return r.db.Where("id = ? AND user_id = ?", metaID, userID).Delete(&models.Meta{}).Error
}

// DeleteAllForUser removes every meta of a user.
func (r *MetaRepository) DeleteAllForUser(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Meta{}).Error
}
