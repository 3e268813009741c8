package models

import (
	"time"
)

// Frequency types.
const (
	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyCustom  = "custom"
)

// Effort levels.
const (
	EffortLight = "light"
	EffortHigh  = "effort"
)

// DayAbbreviations maps time.Weekday ordinals to the day-of-week
// abbreviations used by goal frequencies and daily logs.
var DayAbbreviations = [7]string{"sun", "mon", "tue", "wed", "thu", "fri", "sat"}

// Goal represents a recurring habit owned by a user.
// Streak and completion counters are mutated only by the check-in flow.
type Goal struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	UserID            uint       `gorm:"not null;index" json:"user_id"`
	User              User       `gorm:"foreignKey:UserID" json:"-"`
	Name              string     `gorm:"not null;size:200" json:"name"`
	Icon              string     `gorm:"size:20;default:🎯" json:"icon"`
	Time              string     `gorm:"size:10" json:"time"`
	FrequencyType     string     `gorm:"size:10;default:daily" json:"frequency_type"`
	DaysPerWeek       int        `json:"days_per_week,omitempty"`
	SpecificDays      StringList `gorm:"type:jsonb" json:"specific_days"`
	EffortLevel       string     `gorm:"size:10;default:light" json:"effort_level"`
	TotalCompletions  int        `gorm:"default:0" json:"total_completions"`
	CurrentStreak     int        `gorm:"default:0" json:"current_streak"`
	LongestStreak     int        `gorm:"default:0" json:"longest_streak"`
	ConsecutiveMonths int        `gorm:"default:0" json:"consecutive_months"`
	IsActive          bool       `gorm:"default:true;index" json:"is_active"`
	Order             int        `gorm:"column:display_order;default:0" json:"order"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// TableName specifies the table name for Goal model.
func (Goal) TableName() string {
	return "goals"
}

// AppliesOn reports whether the goal is applicable on the given day-of-week
// abbreviation. Daily and monthly goals apply every day; weekly and custom
// goals apply on their specific days, or every day when none are set.
func (g *Goal) AppliesOn(dayOfWeek string) bool {
	switch g.FrequencyType {
	case FrequencyWeekly, FrequencyCustom:
		if len(g.SpecificDays) == 0 {
			return true
		}
		for _, d := range g.SpecificDays {
			if d == dayOfWeek {
				return true
			}
		}
		return false
	default:
		return true
	}
}
