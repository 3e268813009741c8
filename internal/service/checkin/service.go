// Package checkin implements the daily view and the check-in flow, the
// write path that drives streaks, XP and achievement scans.
package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/metrics"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/progression"
	"github.com/shapeu/shapeu/internal/repository"
	"github.com/shapeu/shapeu/internal/service/achievements"
	svcmetas "github.com/shapeu/shapeu/internal/service/metas"
	"github.com/shapeu/shapeu/pkg/logger"
)

// ErrGoalNotFound is returned when the goal does not exist or belongs to
// another user.
var ErrGoalNotFound = errors.New("goal not found")

// GoalRepository interface for goal operations.
type GoalRepository interface {
	GetByID(userID, goalID uint) (*models.Goal, error)
	ListActive(userID uint) ([]models.Goal, error)
	Update(goal *models.Goal) error
}

// LogRepository interface for daily log operations.
type LogRepository interface {
	Create(log *models.DailyLog) error
	GetByDate(userID uint, date string) (*models.DailyLog, error)
	Update(log *models.DailyLog) error
	ListPerfectUpTo(userID uint, date string, limit int) ([]models.DailyLog, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
	Update(user *models.User) error
}

// AchievementChecker runs a full badge scan for a user.
type AchievementChecker interface {
	Check(ctx context.Context, userID uint) ([]achievements.Unlock, error)
}

// MetaLinker propagates check-ins into linked long-term targets.
type MetaLinker interface {
	OnGoalCompleted(ctx context.Context, userID, goalID uint, date string) (int, error)
	OnGoalUnchecked(ctx context.Context, userID, goalID uint) error
}

// Service orchestrates daily views and check-ins.
type Service struct {
	goals      GoalRepository
	logs       LogRepository
	users      UserRepository
	checker    AchievementChecker
	metaLinker MetaLinker
	log        *logger.Logger
	now        func() time.Time
}

// NewService creates a new check-in service.
func NewService(
	goals *repository.GoalRepository,
	logs *repository.DailyLogRepository,
	users *repository.UserRepository,
	checker *achievements.Service,
	metaLinker *svcmetas.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		goals:      goals,
		logs:       logs,
		users:      users,
		checker:    checker,
		metaLinker: metaLinker,
		log:        log,
		now:        time.Now,
	}
}

// NewServiceWithInterfaces creates a new check-in service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	goals GoalRepository,
	logs LogRepository,
	users UserRepository,
	checker AchievementChecker,
	metaLinker MetaLinker,
	log *logger.Logger,
) *Service {
	return &Service{
		goals:      goals,
		logs:       logs,
		users:      users,
		checker:    checker,
		metaLinker: metaLinker,
		log:        log,
		now:        time.Now,
	}
}

// DayOfWeek returns the abbreviation (sun..sat) for a calendar date string.
func DayOfWeek(date string) (string, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return models.DayAbbreviations[d.Weekday()], nil
}

// DailyGoal is one goal's row in the daily view.
type DailyGoal struct {
	ID            uint              `json:"id"`
	Name          string            `json:"name"`
	Icon          string            `json:"icon"`
	Time          string            `json:"time"`
	FrequencyType string            `json:"frequency_type"`
	SpecificDays  models.StringList `json:"specific_days"`
	EffortLevel   string            `json:"effort_level"`
	CurrentStreak int               `json:"current_streak"`
	LongestStreak int               `json:"longest_streak"`
	Completed     bool              `json:"completed"`
	CompletedAt   *time.Time        `json:"completed_at"`
}

// DailyView is the reconciled state of one calendar date.
type DailyView struct {
	Date           string      `json:"date"`
	DayOfWeek      string      `json:"day_of_week"`
	Goals          []DailyGoal `json:"goals"`
	CompletionRate int         `json:"completion_rate"`
	CompletedCount int         `json:"completed_count"`
	TotalCount     int         `json:"total_count"`
}

// Result is the check-in response payload.
type Result struct {
	Success         bool                  `json:"success"`
	XPGained        int                   `json:"xp_gained"`
	NewXP           int                   `json:"new_xp"`
	NewLevel        int                   `json:"new_level"`
	LevelUp         bool                  `json:"level_up"`
	NewAchievements []achievements.Unlock `json:"new_achievements"`
	CompletionRate  int                   `json:"completion_rate"`
	CompletedCount  int                   `json:"completed_count"`
	TotalCount      int                   `json:"total_count"`
	Streak          int                   `json:"streak"`
}

// applicableOn filters goals down to the ones scheduled for a day of week.
func applicableOn(goals []models.Goal, dayOfWeek string) []models.Goal {
	applicable := make([]models.Goal, 0, len(goals))
	for i := range goals {
		if goals[i].AppliesOn(dayOfWeek) {
			applicable = append(applicable, goals[i])
		}
	}
	return applicable
}

func roundRate(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(float64(completed)/float64(total)*100 + 0.5)
}

// Daily reconciles and returns the daily view for a date. The stored log is
// brought in line with the current goal set: entries appear for newly
// applicable goals and disappear for goals no longer applicable. An empty
// date means today.
func (s *Service) Daily(ctx context.Context, userID uint, date string) (*DailyView, error) {
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	dayOfWeek, err := DayOfWeek(date)
	if err != nil {
		return nil, err
	}

	goals, err := s.goals.ListActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	applicable := applicableOn(goals, dayOfWeek)

	dayLog, err := s.logs.GetByDate(userID, date)
	switch {
	case err == nil:
		// Reconcile the stored ledger against the current goal set.
		existing := make(map[uint]bool, len(dayLog.Completions))
		for _, c := range dayLog.Completions {
			existing[c.GoalID] = true
		}
		for _, g := range applicable {
			if !existing[g.ID] {
				dayLog.Completions = append(dayLog.Completions, models.Completion{GoalID: g.ID})
			}
		}
		applicableIDs := make(map[uint]bool, len(applicable))
		for _, g := range applicable {
			applicableIDs[g.ID] = true
		}
		kept := dayLog.Completions[:0]
		for _, c := range dayLog.Completions {
			if applicableIDs[c.GoalID] {
				kept = append(kept, c)
			}
		}
		dayLog.Completions = kept
		if err := s.logs.Update(dayLog); err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		completions := make(models.CompletionList, 0, len(applicable))
		for _, g := range applicable {
			completions = append(completions, models.Completion{GoalID: g.ID})
		}
		dayLog = &models.DailyLog{
			UserID:      userID,
			Date:        date,
			DayOfWeek:   dayOfWeek,
			Completions: completions,
		}
		if err := s.logs.Create(dayLog); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	view := &DailyView{
		Date:      date,
		DayOfWeek: dayOfWeek,
		Goals:     make([]DailyGoal, 0, len(applicable)),
	}
	for _, g := range applicable {
		row := DailyGoal{
			ID:            g.ID,
			Name:          g.Name,
			Icon:          g.Icon,
			Time:          g.Time,
			FrequencyType: g.FrequencyType,
			SpecificDays:  g.SpecificDays,
			EffortLevel:   g.EffortLevel,
			CurrentStreak: g.CurrentStreak,
			LongestStreak: g.LongestStreak,
		}
		if comp := dayLog.Completions.Find(g.ID); comp != nil {
			row.Completed = comp.Completed
			row.CompletedAt = comp.CompletedAt
		}
		view.Goals = append(view.Goals, row)
	}

	for _, g := range view.Goals {
		if g.Completed {
			view.CompletedCount++
		}
	}
	view.TotalCount = len(view.Goals)
	view.CompletionRate = roundRate(view.CompletedCount, view.TotalCount)

	_ = ctx
	return view, nil
}

// Toggle flips one goal's completion state for a date and runs the full
// progression pipeline: completion rate, streaks, XP with modifiers, user
// counters, level, achievement scan and linked target propagation.
// Unchecking reverses the counters destructively and zeroes the streak.
func (s *Service) Toggle(ctx context.Context, userID, goalID uint, date string, completed bool) (*Result, error) {
	if date == "" {
		date = s.now().Format("2006-01-02")
	}
	dayOfWeek, err := DayOfWeek(date)
	if err != nil {
		return nil, err
	}

	goal, err := s.goals.GetByID(userID, goalID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, err
	}

	now := s.now()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}

	dayLog, err := s.logs.GetByDate(userID, date)
	switch {
	case err == nil:
		if comp := dayLog.Completions.Find(goalID); comp != nil {
			comp.Completed = completed
			comp.CompletedAt = completedAt
		} else {
			dayLog.Completions = append(dayLog.Completions, models.Completion{
				GoalID:      goalID,
				Completed:   completed,
				CompletedAt: completedAt,
			})
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		dayLog = &models.DailyLog{
			UserID:    userID,
			Date:      date,
			DayOfWeek: dayOfWeek,
			Completions: models.CompletionList{
				{GoalID: goalID, Completed: completed, CompletedAt: completedAt},
			},
		}
		if err := s.logs.Create(dayLog); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	// Completion rate counts only goals scheduled for this day of week.
	active, err := s.goals.ListActive(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	applicable := applicableOn(active, dayOfWeek)
	applicableIDs := make(map[uint]bool, len(applicable))
	for _, g := range applicable {
		applicableIDs[g.ID] = true
	}

	var relevant models.CompletionList
	for _, c := range dayLog.Completions {
		if applicableIDs[c.GoalID] {
			relevant = append(relevant, c)
		}
	}
	completedCount := relevant.CompletedCount()
	completionRate := roundRate(completedCount, len(relevant))

	dayLog.CompletionRate = completionRate
	if err := s.logs.Update(dayLog); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	xpGained := 0
	if completed {
		goal.TotalCompletions++

		hadYesterday, err := s.completedYesterday(userID, goalID, date)
		if err != nil {
			return nil, err
		}
		if hadYesterday {
			goal.CurrentStreak++
		} else {
			goal.CurrentStreak = 1
		}
		if goal.CurrentStreak > goal.LongestStreak {
			goal.LongestStreak = goal.CurrentStreak
		}

		mods, err := s.buildModifiers(userID, date, now, completionRate, relevant)
		if err != nil {
			return nil, err
		}

		xpGained = progression.CheckinXP(goal, goal.CurrentStreak, mods)

		user.TotalGoalsCompleted++
		if mods.PerfectDay {
			user.TotalPerfectDays++
		}
		if goal.CurrentStreak > user.LongestStreak {
			user.LongestStreak = goal.CurrentStreak
		}
		user.XP += xpGained
		dayLog.TotalXPEarned += xpGained

		metrics.RecordCheckin("complete")
		metrics.RecordXPAwarded("checkin", xpGained)
	} else {
		if goal.TotalCompletions > 0 {
			goal.TotalCompletions--
		}
		goal.CurrentStreak = 0

		metrics.RecordCheckin("uncheck")
	}

	if err := s.goals.Update(goal); err != nil {
		return nil, err
	}

	oldLevel := user.Level
	user.Level = progression.LevelFor(user.XP).Level
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	if err := s.logs.Update(dayLog); err != nil {
		return nil, err
	}

	levelUp := user.Level > oldLevel
	if levelUp {
		metrics.RecordLevelUp()
	}

	newAchievements, err := s.checker.Check(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("achievement scan failed: %w", err)
	}

	if completed {
		bonus, err := s.metaLinker.OnGoalCompleted(ctx, userID, goalID, date)
		if err != nil {
			return nil, err
		}
		xpGained += bonus
	} else {
		if err := s.metaLinker.OnGoalUnchecked(ctx, userID, goalID); err != nil {
			return nil, err
		}
	}

	// Reload: the scan and linked targets may have changed XP and level.
	user, err = s.users.GetByID(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload user: %w", err)
	}

	s.log.Info().
		Uint("user_id", userID).
		Uint("goal_id", goalID).
		Str("date", date).
		Bool("completed", completed).
		Int("xp_gained", xpGained).
		Int("streak", goal.CurrentStreak).
		Msg("Check-in processed")

	if newAchievements == nil {
		newAchievements = []achievements.Unlock{}
	}

	return &Result{
		Success:         true,
		XPGained:        xpGained,
		NewXP:           user.XP,
		NewLevel:        user.Level,
		LevelUp:         levelUp,
		NewAchievements: newAchievements,
		CompletionRate:  completionRate,
		CompletedCount:  completedCount,
		TotalCount:      len(relevant),
		Streak:          goal.CurrentStreak,
	}, nil
}

// completedYesterday reports whether the goal was completed on the day
// before date. A missing log counts as not completed.
func (s *Service) completedYesterday(userID, goalID uint, date string) (bool, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false, fmt.Errorf("invalid date %q: %w", date, err)
	}
	yesterday := d.AddDate(0, 0, -1).Format("2006-01-02")

	yLog, err := s.logs.GetByDate(userID, yesterday)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	comp := yLog.Completions.Find(goalID)
	return comp != nil && comp.Completed, nil
}

// buildModifiers derives the XP bonus flags for a completing check-in.
// Perfect week and month look at the most recent perfect-rate logs up to
// the date; a perfect month requires a perfect week first.
func (s *Service) buildModifiers(userID uint, date string, now time.Time, completionRate int, relevant models.CompletionList) (progression.Modifiers, error) {
	mods := progression.Modifiers{
		PerfectDay: completionRate == 100,
		BeforeSix:  now.Hour() < 6,
		AfterTen:   now.Hour() >= 22,
		FirstOfDay: relevant.CompletedCount() == 1,
	}

	if mods.PerfectDay {
		allBeforeNoon := true
		for _, c := range relevant {
			if !c.Completed || c.CompletedAt == nil || c.CompletedAt.Hour() >= 12 {
				allBeforeNoon = false
				break
			}
		}
		mods.AllBeforeNoon = allBeforeNoon

		perfect, err := s.logs.ListPerfectUpTo(userID, date, 7)
		if err != nil {
			return mods, err
		}
		mods.PerfectWeek = len(perfect) >= 7

		if mods.PerfectWeek {
			perfect, err = s.logs.ListPerfectUpTo(userID, date, 30)
			if err != nil {
				return mods, err
			}
			mods.PerfectMonth = len(perfect) >= 30
		}
	}

	return mods, nil
}
