// Package models defines domain models for the habit tracking system.
package models

import (
	"time"
)

// Avatar types.
const (
	AvatarPredefined = "predefined"
	AvatarUnlockable = "unlockable"
	AvatarCustom     = "custom"
)

// DefaultTheme is the theme every account starts with; changing away from it
// counts as a customization.
const DefaultTheme = "gold"

// User represents an account with its gamification progression state.
// The level column is a cache of the level derived from xp and must be
// recomputed on every xp mutation.
type User struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	Username            string    `gorm:"uniqueIndex;not null;size:100" json:"username"`
	PasswordHash        string    `gorm:"not null" json:"-"`
	AvatarType          string    `gorm:"size:20;default:predefined" json:"avatar_type"`
	AvatarValue         string    `gorm:"type:text;default:😀" json:"avatar_value"`
	Theme               string    `gorm:"size:30;default:gold" json:"theme"`
	Level               int       `gorm:"default:1" json:"level"`
	XP                  int       `gorm:"default:0" json:"xp"`
	TotalGoalsCompleted int       `gorm:"default:0" json:"total_goals_completed"`
	TotalPerfectDays    int       `gorm:"default:0" json:"total_perfect_days"`
	LongestStreak       int       `gorm:"default:0" json:"longest_streak"`
	ConsecutiveLogins   int       `gorm:"default:0" json:"consecutive_logins"`
	LastLoginAt         time.Time `json:"last_login_at"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// TableName specifies the table name for User model.
func (User) TableName() string {
	return "users"
}
