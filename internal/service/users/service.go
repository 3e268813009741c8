// Package users implements account lifecycle: registration with default
// goal seeding, login with consecutive-login tracking, profile
// customization, data export/import and account deletion.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/auth"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/repository"
	"github.com/shapeu/shapeu/internal/service/achievements"
	svcgoals "github.com/shapeu/shapeu/internal/service/goals"
	"github.com/shapeu/shapeu/pkg/logger"
)

// Validation and authentication errors surfaced to the API layer.
var (
	ErrUsernameTooShort   = errors.New("username must have at least 3 characters")
	ErrPasswordTooShort   = errors.New("password must have at least 6 characters")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrUsernameTaken      = errors.New("username is already in use")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidTheme       = errors.New("invalid theme")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrConfirmMismatch    = errors.New("username confirmation does not match")
	ErrInvalidImport      = errors.New("invalid import payload")
	ErrInvalidAvatar      = errors.New("invalid avatar payload")
)

// ValidThemes lists the selectable UI themes.
var ValidThemes = []string{
	"dourado", "azul-royal", "verde-esmeralda", "rosa-neon", "roxo-imperial",
	"laranja-fogo", "ciano-eletrico", "vermelho-rubi", "ambar", "indigo",
	"teal", "lima", "coral", "lavanda", "prata",
}

// UserRepository interface for user operations.
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByUsername(username string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
}

// GoalRepository interface for goal operations.
type GoalRepository interface {
	Create(goal *models.Goal) error
	ListAll(userID uint) ([]models.Goal, error)
	DeleteAllForUser(userID uint) error
}

// LogRepository interface for daily log operations.
type LogRepository interface {
	Create(log *models.DailyLog) error
	ListAllDesc(userID uint) ([]models.DailyLog, error)
	DeleteAllForUser(userID uint) error
}

// UnlockRepository interface for unlock records.
type UnlockRepository interface {
	Create(unlock *models.UserAchievement) error
	ListByUser(userID uint) ([]models.UserAchievement, error)
	DeleteAllForUser(userID uint) error
}

// MetaRepository interface for meta operations.
type MetaRepository interface {
	Create(meta *models.Meta) error
	List(userID uint) ([]models.Meta, error)
	DeleteAllForUser(userID uint) error
}

// GoalSeeder creates the starter goal set for a new account.
type GoalSeeder interface {
	SeedDefaults(userID uint) error
}

// AchievementChecker runs a full badge scan for a user.
type AchievementChecker interface {
	Check(ctx context.Context, userID uint) ([]achievements.Unlock, error)
}

// Service implements account lifecycle operations.
type Service struct {
	users   UserRepository
	goals   GoalRepository
	logs    LogRepository
	unlocks UnlockRepository
	metas   MetaRepository
	seeder  GoalSeeder
	checker AchievementChecker
	log     *logger.Logger
	now     func() time.Time
}

// NewService creates a new user service.
func NewService(
	users *repository.UserRepository,
	goalsRepo *repository.GoalRepository,
	logs *repository.DailyLogRepository,
	unlocks *repository.AchievementRepository,
	metasRepo *repository.MetaRepository,
	seeder *svcgoals.Service,
	checker *achievements.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		users:   users,
		goals:   goalsRepo,
		logs:    logs,
		unlocks: unlocks,
		metas:   metasRepo,
		seeder:  seeder,
		checker: checker,
		log:     log,
		now:     time.Now,
	}
}

// NewServiceWithInterfaces creates a new user service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	users UserRepository,
	goals GoalRepository,
	logs LogRepository,
	unlocks UnlockRepository,
	metas MetaRepository,
	seeder GoalSeeder,
	checker AchievementChecker,
	log *logger.Logger,
) *Service {
	return &Service{
		users:   users,
		goals:   goals,
		logs:    logs,
		unlocks: unlocks,
		metas:   metas,
		seeder:  seeder,
		checker: checker,
		log:     log,
		now:     time.Now,
	}
}

// Get returns one user by ID.
func (s *Service) Get(userID uint) (*models.User, error) {
	return s.users.GetByID(userID)
}

// Register creates an account, seeds the default goals and runs the first
// badge scan. Usernames are case-insensitive.
func (s *Service) Register(ctx context.Context, username, password, confirmPassword string) (*models.User, error) {
	clean := strings.ToLower(strings.TrimSpace(username))
	if len(clean) < 3 {
		return nil, ErrUsernameTooShort
	}
	if len(password) < 6 {
		return nil, ErrPasswordTooShort
	}
	if password != confirmPassword {
		return nil, ErrPasswordMismatch
	}

	if _, err := s.users.GetByUsername(clean); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     clean,
		PasswordHash: hash,
		AvatarType:   models.AvatarPredefined,
		AvatarValue:  "😀",
		Theme:        models.DefaultTheme,
		Level:        1,
		LastLoginAt:  s.now(),
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.seeder.SeedDefaults(user.ID); err != nil {
		return nil, err
	}
	if _, err := s.checker.Check(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("Initial achievement scan failed")
	}

	s.log.Info().Uint("user_id", user.ID).Str("username", clean).Msg("Account registered")
	return user, nil
}

// Login verifies credentials and maintains the consecutive-login counter:
// a login exactly one day after the previous one extends the run, a longer
// gap resets it to 1 and a same-day login leaves it unchanged.
func (s *Service) Login(ctx context.Context, username, password string) (*models.User, error) {
	clean := strings.ToLower(strings.TrimSpace(username))

	user, err := s.users.GetByUsername(clean)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	diffDays := int(now.Sub(user.LastLoginAt).Hours() / 24)
	if diffDays == 1 {
		user.ConsecutiveLogins++
	} else if diffDays > 1 {
		user.ConsecutiveLogins = 1
	}
	user.LastLoginAt = now
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update login state: %w", err)
	}

	if _, err := s.checker.Check(ctx, user.ID); err != nil {
		s.log.Warn().Err(err).Uint("user_id", user.ID).Msg("Login achievement scan failed")
	}

	return user, nil
}

// UpdateTheme switches the UI theme and re-scans badges.
func (s *Service) UpdateTheme(ctx context.Context, userID uint, theme string) error {
	valid := false
	for _, t := range ValidThemes {
		if t == theme {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidTheme
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	user.Theme = theme
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to update theme: %w", err)
	}

	if _, err := s.checker.Check(ctx, userID); err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Theme achievement scan failed")
	}
	return nil
}

// UpdateAvatar sets the avatar. Custom avatars trigger a badge scan.
func (s *Service) UpdateAvatar(ctx context.Context, userID uint, avatarType, value string) (*models.User, error) {
	if avatarType == "" || value == "" {
		return nil, ErrInvalidAvatar
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.AvatarType = avatarType
	user.AvatarValue = value
	if err := s.users.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update avatar: %w", err)
	}

	if avatarType == models.AvatarCustom {
		if _, err := s.checker.Check(ctx, userID); err != nil {
			s.log.Warn().Err(err).Uint("user_id", userID).Msg("Avatar achievement scan failed")
		}
	}
	return user, nil
}

// ChangePassword verifies the current password and sets a new one.
func (s *Service) ChangePassword(userID uint, currentPassword, newPassword, confirmPassword string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.PasswordHash, currentPassword) {
		return ErrWrongPassword
	}
	if len(newPassword) < 6 {
		return ErrPasswordTooShort
	}
	if newPassword != confirmPassword {
		return ErrPasswordMismatch
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash
	if err := s.users.Update(user); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// ExportData is the full account snapshot served by the export endpoint.
type ExportData struct {
	ExportDate   time.Time                `json:"exportDate"`
	User         *models.User             `json:"user"`
	Goals        []models.Goal            `json:"goals"`
	DailyLogs    []models.DailyLog        `json:"dailyLogs"`
	Achievements []models.UserAchievement `json:"achievements"`
	Metas        []models.Meta            `json:"metas"`
}

// Export gathers the user's complete data set.
func (s *Service) Export(userID uint) (*ExportData, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.ListAll(userID)
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListAllDesc(userID)
	if err != nil {
		return nil, err
	}
	unlocks, err := s.unlocks.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	metas, err := s.metas.List(userID)
	if err != nil {
		return nil, err
	}

	return &ExportData{
		ExportDate:   s.now(),
		User:         user,
		Goals:        goals,
		DailyLogs:    logs,
		Achievements: unlocks,
		Metas:        metas,
	}, nil
}

// Import replaces the user's goals, logs, unlocks and targets with the
// payload's and copies the progression counters over. Rows that collide
// with a unique constraint are skipped.
func (s *Service) Import(userID uint, data *ExportData) error {
	if data == nil || data.Goals == nil {
		return ErrInvalidImport
	}

	if err := s.goals.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to clear goals: %w", err)
	}
	if err := s.logs.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to clear logs: %w", err)
	}
	if err := s.unlocks.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to clear unlocks: %w", err)
	}
	if err := s.metas.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to clear metas: %w", err)
	}

	goalIDs := make(map[uint]uint, len(data.Goals))
	for i := range data.Goals {
		goal := data.Goals[i]
		oldID := goal.ID
		goal.ID = 0
		goal.UserID = userID
		if err := s.goals.Create(&goal); err != nil {
			s.log.Warn().Err(err).Str("goal", goal.Name).Msg("Skipped goal on import")
			continue
		}
		goalIDs[oldID] = goal.ID
	}

	for i := range data.DailyLogs {
		logEntry := data.DailyLogs[i]
		logEntry.ID = 0
		logEntry.UserID = userID
		for j := range logEntry.Completions {
			if newID, ok := goalIDs[logEntry.Completions[j].GoalID]; ok {
				logEntry.Completions[j].GoalID = newID
			}
		}
		if err := s.logs.Create(&logEntry); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				s.log.Warn().Err(err).Str("date", logEntry.Date).Msg("Skipped log on import")
			}
		}
	}

	for i := range data.Achievements {
		unlock := data.Achievements[i]
		unlock.ID = 0
		unlock.UserID = userID
		if err := s.unlocks.Create(&unlock); err != nil {
			if !errors.Is(err, gorm.ErrDuplicatedKey) {
				s.log.Warn().Err(err).Str("badge", unlock.AchievementID).Msg("Skipped unlock on import")
			}
		}
	}

	for i := range data.Metas {
		meta := data.Metas[i]
		meta.ID = 0
		meta.UserID = userID
		if meta.LinkedGoalID != nil {
			if newID, ok := goalIDs[*meta.LinkedGoalID]; ok {
				linked := newID
				meta.LinkedGoalID = &linked
			} else {
				meta.LinkedGoalID = nil
			}
		}
		if err := s.metas.Create(&meta); err != nil {
			s.log.Warn().Err(err).Str("meta", meta.Name).Msg("Skipped meta on import")
		}
	}

	if data.User != nil {
		user, err := s.users.GetByID(userID)
		if err != nil {
			return err
		}
		user.XP = data.User.XP
		user.Level = data.User.Level
		user.TotalGoalsCompleted = data.User.TotalGoalsCompleted
		user.TotalPerfectDays = data.User.TotalPerfectDays
		user.LongestStreak = data.User.LongestStreak
		if err := s.users.Update(user); err != nil {
			return fmt.Errorf("failed to restore counters: %w", err)
		}
	}

	s.log.Info().Uint("user_id", userID).Int("goals", len(data.Goals)).Msg("Account data imported")
	return nil
}

// DeleteAccount removes the account and all owned data after the username
// confirmation matches.
func (s *Service) DeleteAccount(userID uint, confirmUsername string) error {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return err
	}
	if confirmUsername != user.Username {
		return ErrConfirmMismatch
	}

	if err := s.goals.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to delete goals: %w", err)
	}
	if err := s.logs.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to delete logs: %w", err)
	}
	if err := s.unlocks.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to delete unlocks: %w", err)
	}
	if err := s.metas.DeleteAllForUser(userID); err != nil {
		return fmt.Errorf("failed to delete metas: %w", err)
	}
	if err := s.users.Delete(userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.log.Info().Uint("user_id", userID).Msg("Account deleted")
	return nil
}
