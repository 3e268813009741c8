package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// Completion records one goal's state within a daily log.
type Completion struct {
	GoalID      uint       `json:"goal_id"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// CompletionList is the per-day completion ledger, stored as a JSON document.
type CompletionList []Completion

// Value implements driver.Valuer.
func (l CompletionList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	return string(b), err
}

// Scan implements sql.Scanner.
func (l *CompletionList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// Find returns the completion entry for a goal, or nil.
func (l CompletionList) Find(goalID uint) *Completion {
	for i := range l {
		if l[i].GoalID == goalID {
			return &l[i]
		}
	}
	return nil
}

// CompletedCount returns the number of completed entries.
func (l CompletionList) CompletedCount() int {
	n := 0
	for _, c := range l {
		if c.Completed {
			n++
		}
	}
	return n
}

// DailyLog is the per-(user, calendar date) completion ledger.
// Dates are calendar date strings (YYYY-MM-DD); one log per user per date.
type DailyLog struct {
	ID             uint           `gorm:"primaryKey" json:"id"`
	UserID         uint           `gorm:"not null;uniqueIndex:idx_user_date" json:"user_id"`
	User           User           `gorm:"foreignKey:UserID" json:"-"`
	Date           string         `gorm:"not null;size:10;uniqueIndex:idx_user_date" json:"date"`
	DayOfWeek      string         `gorm:"size:3" json:"day_of_week"`
	Completions    CompletionList `gorm:"type:jsonb" json:"completions"`
	CompletionRate int            `gorm:"default:0" json:"completion_rate"`
	TotalXPEarned  int            `gorm:"default:0" json:"total_xp_earned"`
	AIQuote        string         `gorm:"type:text" json:"ai_quote,omitempty"`
	AIAnalysis     string         `gorm:"type:text" json:"ai_analysis,omitempty"`
	AIQuoteCount   int            `gorm:"default:0" json:"ai_quote_count"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// TableName specifies the table name for DailyLog model.
func (DailyLog) TableName() string {
	return "daily_logs"
}
