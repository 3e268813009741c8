package models

import (
	"time"
)

// Meta is a long-term numeric target, optionally linked to a goal.
// Linked metas advance automatically on check-ins of their goal while the
// date falls inside [StartDate, EndDate]; unlinked metas advance only via
// explicit progress updates.
type Meta struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	User         User       `gorm:"foreignKey:UserID" json:"-"`
	Name         string     `gorm:"not null;size:200" json:"name"`
	Icon         string     `gorm:"size:20;default:🎯" json:"icon"`
	TargetValue  int        `gorm:"not null" json:"target_value"`
	CurrentValue int        `gorm:"default:0" json:"current_value"`
	Unit         string     `gorm:"size:50;default:vezes" json:"unit"`
	StartDate    string     `gorm:"not null;size:10" json:"start_date"`
	EndDate      string     `gorm:"not null;size:10" json:"end_date"`
	LinkedGoalID *uint      `gorm:"index" json:"linked_goal_id"`
	IsCompleted  bool       `gorm:"default:false" json:"is_completed"`
	CompletedAt  *time.Time `json:"completed_at"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Meta model.
func (Meta) TableName() string {
	return "metas"
}

// InWindow reports whether a calendar date string falls inside the meta's
// [StartDate, EndDate] range. Date strings compare lexicographically.
func (m *Meta) InWindow(date string) bool {
	return date >= m.StartDate && date <= m.EndDate
}
