// Package insights serves the generated motivational quote and routine
// analysis, cached on the current day's log. Quote refreshes are capped
// per day.
package insights

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/repository"
	"github.com/shapeu/shapeu/internal/service/stats"
	"github.com/shapeu/shapeu/internal/textgen"
	"github.com/shapeu/shapeu/pkg/logger"
)

// MaxQuotesPerDay caps generated quotes per user per day.
const MaxQuotesPerDay = 3

// ErrQuoteLimit is returned once the daily quote budget is spent.
var ErrQuoteLimit = errors.New("daily quote limit reached")

// LogRepository interface for daily log operations.
type LogRepository interface {
	Create(log *models.DailyLog) error
	GetByDate(userID uint, date string) (*models.DailyLog, error)
	Update(log *models.DailyLog) error
	ListRecent(userID uint, limit int) ([]models.DailyLog, error)
}

// GoalRepository interface for goal operations.
type GoalRepository interface {
	ListActive(userID uint) ([]models.Goal, error)
}

// UserRepository interface for user operations.
type UserRepository interface {
	GetByID(id uint) (*models.User, error)
}

// StatsProvider supplies the aggregates the analysis prompt is built from.
type StatsProvider interface {
	Summary(ctx context.Context, userID uint, period string) (*stats.Summary, error)
	Strengths(ctx context.Context, userID uint, period string) (*stats.Strengths, error)
}

// Service serves quotes and analyses.
type Service struct {
	logs      LogRepository
	goals     GoalRepository
	users     UserRepository
	generator textgen.Generator
	stats     StatsProvider
	log       *logger.Logger
	now       func() time.Time
}

// NewService creates a new insights service.
func NewService(
	logs *repository.DailyLogRepository,
	goals *repository.GoalRepository,
	users *repository.UserRepository,
	generator textgen.Generator,
	statsProvider *stats.Service,
	log *logger.Logger,
) *Service {
	return &Service{
		logs:      logs,
		goals:     goals,
		users:     users,
		generator: generator,
		stats:     statsProvider,
		log:       log,
		now:       time.Now,
	}
}

// NewServiceWithInterfaces creates a new insights service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(
	logs LogRepository,
	goals GoalRepository,
	users UserRepository,
	generator textgen.Generator,
	statsProvider StatsProvider,
	log *logger.Logger,
) *Service {
	return &Service{
		logs:      logs,
		goals:     goals,
		users:     users,
		generator: generator,
		stats:     statsProvider,
		log:       log,
		now:       time.Now,
	}
}

// Quote holds a served motivational quote.
type Quote struct {
	Text      string `json:"quote"`
	Cached    bool   `json:"cached"`
	Remaining int    `json:"remaining"`
}

// todayLog fetches today's log, or nil when none exists yet.
func (s *Service) todayLog(userID uint, date string) (*models.DailyLog, error) {
	dayLog, err := s.logs.GetByDate(userID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return dayLog, nil
}

func (s *Service) motivationContext(ctx context.Context, userID uint, dayLog *models.DailyLog, comparison string) (textgen.MotivationContext, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return textgen.MotivationContext{}, err
	}
	goals, err := s.goals.ListActive(userID)
	if err != nil {
		return textgen.MotivationContext{}, err
	}

	completed := 0
	if dayLog != nil {
		completed = dayLog.Completions.CompletedCount()
	}
	maxStreak := 0
	for _, g := range goals {
		if g.CurrentStreak > maxStreak {
			maxStreak = g.CurrentStreak
		}
	}

	last7, err := s.logs.ListRecent(userID, 7)
	if err != nil {
		return textgen.MotivationContext{}, err
	}
	weeklyRate := 0
	if len(last7) > 0 {
		sum := 0
		for _, l := range last7 {
			sum += l.CompletionRate
		}
		weeklyRate = int(float64(sum)/float64(len(last7)) + 0.5)
	}

	if comparison == "" {
		switch {
		case weeklyRate > 70:
			comparison = "acima da média"
		case weeklyRate > 50:
			comparison = "na média"
		default:
			comparison = "abaixo da média"
		}
	}

	_ = ctx
	return textgen.MotivationContext{
		Username:   user.Username,
		Completed:  completed,
		Total:      len(goals),
		Streak:     maxStreak,
		WeeklyRate: weeklyRate,
		Comparison: comparison,
	}, nil
}

// Motivation returns today's quote, generating and caching it on the
// day's log when absent.
func (s *Service) Motivation(ctx context.Context, userID uint) (*Quote, error) {
	today := s.now().Format("2006-01-02")
	dayLog, err := s.todayLog(userID, today)
	if err != nil {
		return nil, err
	}

	if dayLog != nil && dayLog.AIQuote != "" {
		return &Quote{Text: dayLog.AIQuote, Cached: true, Remaining: MaxQuotesPerDay - dayLog.AIQuoteCount}, nil
	}

	mc, err := s.motivationContext(ctx, userID, dayLog, "")
	if err != nil {
		return nil, err
	}
	quote := s.generator.GenerateMotivation(ctx, mc)

	if dayLog == nil {
		dayOfWeek := models.DayAbbreviations[s.now().Weekday()]
		dayLog = &models.DailyLog{
			UserID:       userID,
			Date:         today,
			DayOfWeek:    dayOfWeek,
			AIQuote:      quote,
			AIQuoteCount: 1,
		}
		if err := s.logs.Create(dayLog); err != nil {
			return nil, err
		}
	} else {
		dayLog.AIQuote = quote
		dayLog.AIQuoteCount++
		if err := s.logs.Update(dayLog); err != nil {
			return nil, err
		}
	}

	return &Quote{Text: quote, Remaining: MaxQuotesPerDay - dayLog.AIQuoteCount}, nil
}

// RefreshMotivation regenerates today's quote within the daily budget.
func (s *Service) RefreshMotivation(ctx context.Context, userID uint) (*Quote, error) {
	today := s.now().Format("2006-01-02")
	dayLog, err := s.todayLog(userID, today)
	if err != nil {
		return nil, err
	}

	if dayLog != nil && dayLog.AIQuoteCount >= MaxQuotesPerDay {
		return nil, ErrQuoteLimit
	}

	mc, err := s.motivationContext(ctx, userID, dayLog, "dados atualizados")
	if err != nil {
		return nil, err
	}
	quote := s.generator.GenerateMotivation(ctx, mc)

	used := 1
	if dayLog != nil {
		dayLog.AIQuote = quote
		dayLog.AIQuoteCount++
		used = dayLog.AIQuoteCount
		if err := s.logs.Update(dayLog); err != nil {
			return nil, err
		}
	}

	return &Quote{Text: quote, Remaining: MaxQuotesPerDay - used}, nil
}

// Analysis holds a served routine analysis.
type Analysis struct {
	Text   string `json:"analysis"`
	Cached bool   `json:"cached"`
}

// Analysis returns the routine analysis for a period, cached on today's
// log once generated.
func (s *Service) Analysis(ctx context.Context, userID uint, period string) (*Analysis, error) {
	if period == "" {
		period = "weekly"
	}
	today := s.now().Format("2006-01-02")
	dayLog, err := s.todayLog(userID, today)
	if err != nil {
		return nil, err
	}

	if dayLog != nil && dayLog.AIAnalysis != "" {
		return &Analysis{Text: dayLog.AIAnalysis, Cached: true}, nil
	}

	summary, err := s.stats.Summary(ctx, userID, period)
	if err != nil {
		return nil, err
	}
	strengths, err := s.stats.Strengths(ctx, userID, period)
	if err != nil {
		return nil, err
	}

	all := make([]stats.GoalStat, 0, len(strengths.Strengths)+len(strengths.Improvements)+len(strengths.Neutral))
	all = append(all, strengths.Strengths...)
	all = append(all, strengths.Improvements...)
	all = append(all, strengths.Neutral...)

	rates := make([]string, 0, len(all))
	for _, g := range all {
		rates = append(rates, fmt.Sprintf("%s: %d%%", g.Name, g.Rate))
	}
	perGoalRates := strings.Join(rates, ", ")
	if perGoalRates == "" {
		perGoalRates = "sem dados suficientes"
	}

	trend := "estável"
	if summary.RateChange > 0 {
		trend = "melhorando"
	} else if summary.RateChange < 0 {
		trend = "caindo"
	}

	best := "N/A"
	if len(strengths.Strengths) > 0 {
		best = fmt.Sprintf("%s (%d%%)", strengths.Strengths[0].Name, strengths.Strengths[0].Rate)
	}
	worst := "N/A"
	if len(strengths.Improvements) > 0 {
		worst = fmt.Sprintf("%s (%d%%)", strengths.Improvements[0].Name, strengths.Improvements[0].Rate)
	}

	analysis := s.generator.GenerateAnalysis(ctx, textgen.AnalysisContext{
		PerGoalRates: perGoalRates,
		Trend:        trend,
		Best:         best,
		Worst:        worst,
		Streaks:      fmt.Sprintf("%d dias (%s)", summary.BestStreak.Days, summary.BestStreak.GoalName),
	})

	if dayLog != nil {
		dayLog.AIAnalysis = analysis
		if err := s.logs.Update(dayLog); err != nil {
			return nil, err
		}
	}

	return &Analysis{Text: analysis}, nil
}
