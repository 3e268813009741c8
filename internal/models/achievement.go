package models

import (
	"time"
)

// UserAchievement records a one-time badge unlock for a user.
// Uniqueness on (user_id, achievement_id) is the concurrency safeguard:
// a duplicate-key violation on insert means "already unlocked", not an error.
type UserAchievement struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	UserID        uint      `gorm:"not null;uniqueIndex:idx_user_achievement" json:"user_id"`
	User          User      `gorm:"foreignKey:UserID" json:"-"`
	AchievementID string    `gorm:"not null;size:60;uniqueIndex:idx_user_achievement" json:"achievement_id"`
	UnlockedAt    time.Time `gorm:"not null" json:"unlocked_at"`
	XPAwarded     int       `gorm:"default:0" json:"xp_awarded"`
	Seen          bool      `gorm:"default:false" json:"seen"`
}

// TableName specifies the table name for UserAchievement model.
func (UserAchievement) TableName() string {
	return "user_achievements"
}
