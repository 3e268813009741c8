// Package stats aggregates completion history into summaries, chart data
// and strength groupings. Read-heavy results are cached in Redis with a
// short TTL.
package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shapeu/shapeu/internal/cache"
	"github.com/shapeu/shapeu/internal/models"
	"github.com/shapeu/shapeu/internal/repository"
	"github.com/shapeu/shapeu/pkg/logger"
)

const cacheTTL = 5 * time.Minute

// LogRepository interface for daily log operations.
type LogRepository interface {
	ListBetween(userID uint, from, to string) ([]models.DailyLog, error)
	ListBetweenExclusive(userID uint, from, to string) ([]models.DailyLog, error)
}

// GoalRepository interface for goal operations.
type GoalRepository interface {
	ListActive(userID uint) ([]models.Goal, error)
	ListAll(userID uint) ([]models.Goal, error)
}

// Service aggregates history into stats views.
type Service struct {
	logs  LogRepository
	goals GoalRepository
	cache cache.Cache
	log   *logger.Logger
	now   func() time.Time
}

// NewService creates a new stats service.
func NewService(logs *repository.DailyLogRepository, goals *repository.GoalRepository, c cache.Cache, log *logger.Logger) *Service {
	return &Service{logs: logs, goals: goals, cache: c, log: log, now: time.Now}
}

// NewServiceWithInterfaces creates a new stats service with interface
// dependencies (useful for testing).
func NewServiceWithInterfaces(logs LogRepository, goals GoalRepository, c cache.Cache, log *logger.Logger) *Service {
	return &Service{logs: logs, goals: goals, cache: c, log: log, now: time.Now}
}

// dateRange bounds the current window and the previous one for comparison.
type dateRange struct {
	start     string
	end       string
	prevStart string
	prevEnd   string
}

func (s *Service) rangeFor(period string) dateRange {
	now := s.now()
	today := now.Format("2006-01-02")

	switch period {
	case "daily":
		start := now.AddDate(0, 0, -7)
		return dateRange{
			start:     start.Format("2006-01-02"),
			end:       today,
			prevStart: start.AddDate(0, 0, -7).Format("2006-01-02"),
			prevEnd:   start.Format("2006-01-02"),
		}
	case "weekly":
		start := now.AddDate(0, 0, -28)
		return dateRange{
			start:     start.Format("2006-01-02"),
			end:       today,
			prevStart: start.AddDate(0, 0, -28).Format("2006-01-02"),
			prevEnd:   start.Format("2006-01-02"),
		}
	case "monthly":
		start := now.AddDate(0, -6, 0)
		return dateRange{
			start:     start.Format("2006-01-02"),
			end:       today,
			prevStart: start.AddDate(0, -6, 0).Format("2006-01-02"),
			prevEnd:   start.Format("2006-01-02"),
		}
	case "yearly":
		start := now.AddDate(-2, 0, 0)
		return dateRange{
			start:     start.Format("2006-01-02"),
			end:       today,
			prevStart: start.AddDate(-2, 0, 0).Format("2006-01-02"),
			prevEnd:   start.Format("2006-01-02"),
		}
	default:
		start := now.AddDate(0, 0, -7).Format("2006-01-02")
		return dateRange{start: start, end: today, prevStart: start, prevEnd: today}
	}
}

// BestStreak names the goal with the longest streak in the window.
type BestStreak struct {
	Days     int    `json:"days"`
	GoalName string `json:"goalName"`
}

// Summary is the headline stats view for a period.
type Summary struct {
	CompletionRate   int        `json:"completionRate"`
	RateChange       int        `json:"rateChange"`
	BestStreak       BestStreak `json:"bestStreak"`
	TotalCompleted   int        `json:"totalCompleted"`
	Consistency      int        `json:"consistency"`
	ConsistencyLabel string     `json:"consistencyLabel"`
	Period           string     `json:"period"`
	DaysTracked      int        `json:"daysTracked"`
}

var consistencyLabels = map[int]string{
	1: "Precisa melhorar",
	2: "Regular",
	3: "Bom",
	4: "Muito bom",
	5: "Excelente",
}

func meanRate(logs []models.DailyLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var sum float64
	for _, l := range logs {
		sum += float64(l.CompletionRate)
	}
	return sum / float64(len(logs))
}

func roundHalfUp(v float64) int {
	if v < 0 {
		return -int(-v + 0.5)
	}
	return int(v + 0.5)
}

// Summary builds the headline stats for a period, serving from cache when
// a fresh copy exists.
func (s *Service) Summary(ctx context.Context, userID uint, period string) (*Summary, error) {
	key := fmt.Sprintf("stats:summary:%d:%s", userID, period)
	if cached := s.fromCache(ctx, key); cached != "" {
		var out Summary
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
	}

	r := s.rangeFor(period)
	current, err := s.logs.ListBetween(userID, r.start, r.end)
	if err != nil {
		return nil, err
	}
	previous, err := s.logs.ListBetweenExclusive(userID, r.prevStart, r.prevEnd)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.ListAll(userID)
	if err != nil {
		return nil, err
	}

	currentRate := meanRate(current)
	prevRate := meanRate(previous)
	rateChange := 0.0
	if prevRate > 0 {
		rateChange = currentRate - prevRate
	}

	best := BestStreak{GoalName: "N/A"}
	for _, g := range goals {
		streak := g.CurrentStreak
		if g.LongestStreak > streak {
			streak = g.LongestStreak
		}
		if streak > best.Days {
			best = BestStreak{Days: streak, GoalName: g.Name}
		}
	}

	totalCompleted := 0
	for _, l := range current {
		totalCompleted += l.Completions.CompletedCount()
	}

	consistency := 1
	switch {
	case currentRate >= 90:
		consistency = 5
	case currentRate >= 75:
		consistency = 4
	case currentRate >= 60:
		consistency = 3
	case currentRate >= 40:
		consistency = 2
	}

	out := &Summary{
		CompletionRate:   roundHalfUp(currentRate),
		RateChange:       roundHalfUp(rateChange),
		BestStreak:       best,
		TotalCompleted:   totalCompleted,
		Consistency:      consistency,
		ConsistencyLabel: consistencyLabels[consistency],
		Period:           period,
		DaysTracked:      len(current),
	}
	s.toCache(ctx, key, out)
	return out, nil
}

// GoalStat is one goal's completion rate inside a window.
type GoalStat struct {
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	Rate   int    `json:"rate"`
	Streak int    `json:"streak"`
}

// Strengths groups active goals by their window completion rate.
type Strengths struct {
	Strengths    []GoalStat `json:"strengths"`
	Improvements []GoalStat `json:"improvements"`
	Neutral      []GoalStat `json:"neutral"`
}

// Strengths groups active goals into strong (>=70%), needs-improvement
// (<50%) and neutral buckets over the period window.
func (s *Service) Strengths(ctx context.Context, userID uint, period string) (*Strengths, error) {
	key := fmt.Sprintf("stats:strengths:%d:%s", userID, period)
	if cached := s.fromCache(ctx, key); cached != "" {
		var out Strengths
		if err := json.Unmarshal([]byte(cached), &out); err == nil {
			return &out, nil
		}
	}

	r := s.rangeFor(period)
	logs, err := s.logs.ListBetween(userID, r.start, r.end)
	if err != nil {
		return nil, err
	}
	goals, err := s.goals.ListActive(userID)
	if err != nil {
		return nil, err
	}

	stats := goalRates(goals, logs)

	out := &Strengths{
		Strengths:    []GoalStat{},
		Improvements: []GoalStat{},
		Neutral:      []GoalStat{},
	}
	for _, gs := range stats {
		switch {
		case gs.Rate >= 70:
			out.Strengths = append(out.Strengths, gs)
		case gs.Rate < 50:
			out.Improvements = append(out.Improvements, gs)
		default:
			out.Neutral = append(out.Neutral, gs)
		}
	}
	sort.Slice(out.Strengths, func(i, j int) bool { return out.Strengths[i].Rate > out.Strengths[j].Rate })
	sort.Slice(out.Improvements, func(i, j int) bool { return out.Improvements[i].Rate < out.Improvements[j].Rate })

	s.toCache(ctx, key, out)
	return out, nil
}

func goalRates(goals []models.Goal, logs []models.DailyLog) []GoalStat {
	stats := make([]GoalStat, 0, len(goals))
	for _, g := range goals {
		completed, total := 0, 0
		for _, l := range logs {
			if comp := l.Completions.Find(g.ID); comp != nil {
				total++
				if comp.Completed {
					completed++
				}
			}
		}
		rate := 0
		if total > 0 {
			rate = roundHalfUp(float64(completed) / float64(total) * 100)
		}
		stats = append(stats, GoalStat{Name: g.Name, Icon: g.Icon, Rate: rate, Streak: g.CurrentStreak})
	}
	return stats
}

// EvolutionChart is the per-day rate series for a window.
type EvolutionChart struct {
	Type    string   `json:"type"`
	Labels  []string `json:"labels"`
	Data    []int    `json:"data"`
	Average int      `json:"average"`
}

// ComparisonChart sets the current window against the previous one.
type ComparisonChart struct {
	Labels   []string `json:"labels"`
	Current  []int    `json:"current"`
	Previous []int    `json:"previous"`
}

// DistributionChart is the per-goal rate breakdown.
type DistributionChart struct {
	Labels []string `json:"labels"`
	Data   []int    `json:"data"`
	Colors []string `json:"colors"`
}

// HeatmapChart maps dates to completion rates.
type HeatmapChart struct {
	Data      map[string]int `json:"data"`
	StartDate string         `json:"startDate"`
	EndDate   string         `json:"endDate"`
}

// Chart builds the requested chart for a period. Unknown chart types yield
// an empty object.
func (s *Service) Chart(ctx context.Context, userID uint, period, chartType string) (interface{}, error) {
	r := s.rangeFor(period)
	current, err := s.logs.ListBetween(userID, r.start, r.end)
	if err != nil {
		return nil, err
	}

	switch chartType {
	case "evolution":
		labels := make([]string, 0, len(current))
		data := make([]int, 0, len(current))
		sum := 0
		for _, l := range current {
			// DD/MM labels from YYYY-MM-DD dates.
			if len(l.Date) == 10 {
				labels = append(labels, l.Date[8:10]+"/"+l.Date[5:7])
			} else {
				labels = append(labels, l.Date)
			}
			data = append(data, l.CompletionRate)
			sum += l.CompletionRate
		}
		avg := 0
		if len(data) > 0 {
			avg = roundHalfUp(float64(sum) / float64(len(data)))
		}
		kind := "line"
		if period == "daily" || period == "weekly" {
			kind = "bar"
		}
		return &EvolutionChart{Type: kind, Labels: labels, Data: data, Average: avg}, nil

	case "comparison":
		previous, err := s.logs.ListBetweenExclusive(userID, r.prevStart, r.prevEnd)
		if err != nil {
			return nil, err
		}
		currentValues := groupByPeriod(current, period)
		prevValues := groupByPeriod(previous, period)

		periodLabels := map[string]string{"daily": "dia", "weekly": "semana", "monthly": "mês", "yearly": "ano"}
		label, ok := periodLabels[period]
		if !ok {
			label = "período"
		}
		labels := make([]string, len(currentValues))
		for i := range currentValues {
			labels[i] = fmt.Sprintf("%s %d", label, i+1)
		}
		return &ComparisonChart{Labels: labels, Current: currentValues, Previous: prevValues}, nil

	case "distribution":
		goals, err := s.goals.ListActive(userID)
		if err != nil {
			return nil, err
		}
		stats := goalRates(goals, current)
		out := &DistributionChart{
			Labels: make([]string, 0, len(stats)),
			Data:   make([]int, 0, len(stats)),
			Colors: make([]string, 0, len(stats)),
		}
		for _, gs := range stats {
			out.Labels = append(out.Labels, gs.Icon+" "+gs.Name)
			out.Data = append(out.Data, gs.Rate)
			switch {
			case gs.Rate >= 70:
				out.Colors = append(out.Colors, "#00E676")
			case gs.Rate >= 50:
				out.Colors = append(out.Colors, "#FFC107")
			default:
				out.Colors = append(out.Colors, "#FF5252")
			}
		}
		return out, nil

	case "heatmap":
		months := 12
		if period == "daily" || period == "weekly" {
			months = 3
		}
		heatStart := s.now().AddDate(0, -months, 0).Format("2006-01-02")
		heatLogs, err := s.logs.ListBetween(userID, heatStart, r.end)
		if err != nil {
			return nil, err
		}
		data := make(map[string]int, len(heatLogs))
		for _, l := range heatLogs {
			data[l.Date] = l.CompletionRate
		}
		return &HeatmapChart{Data: data, StartDate: heatStart, EndDate: r.end}, nil

	default:
		return map[string]interface{}{}, nil
	}
}

// groupByPeriod buckets logs by day, week, month or year and averages the
// rate of each bucket, returning buckets in chronological order.
func groupByPeriod(logs []models.DailyLog, period string) []int {
	type bucket struct {
		sum   int
		count int
	}
	groups := make(map[string]*bucket)
	keys := make([]string, 0)

	for _, l := range logs {
		var key string
		switch period {
		case "weekly":
			d, err := time.Parse("2006-01-02", l.Date)
			if err != nil {
				continue
			}
			weekStart := d.AddDate(0, 0, -int(d.Weekday()))
			key = weekStart.Format("2006-01-02")
		case "monthly":
			if len(l.Date) >= 7 {
				key = l.Date[:7]
			}
		case "yearly":
			if len(l.Date) >= 4 {
				key = l.Date[:4]
			}
		default:
			key = l.Date
		}
		if key == "" {
			continue
		}
		if _, ok := groups[key]; !ok {
			groups[key] = &bucket{}
			keys = append(keys, key)
		}
		groups[key].sum += l.CompletionRate
		groups[key].count++
	}

	sort.Strings(keys)
	out := make([]int, 0, len(keys))
	for _, k := range keys {
		b := groups[k]
		out = append(out, roundHalfUp(float64(b.sum)/float64(b.count)))
	}
	return out
}

// Invalidate drops the cached views of a user. Called after writes that
// change history.
func (s *Service) Invalidate(ctx context.Context, userID uint) {
	if s.cache == nil {
		return
	}
	keys := make([]string, 0, 10)
	for _, period := range []string{"daily", "weekly", "monthly", "yearly"} {
		keys = append(keys,
			fmt.Sprintf("stats:summary:%d:%s", userID, period),
			fmt.Sprintf("stats:strengths:%d:%s", userID, period),
		)
	}
	if err := s.cache.Del(ctx, keys...); err != nil {
		s.log.Warn().Err(err).Uint("user_id", userID).Msg("Failed to invalidate stats cache")
	}
}

func (s *Service) fromCache(ctx context.Context, key string) string {
	if s.cache == nil {
		return ""
	}
	val, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		return ""
	}
	return val
}

func (s *Service) toCache(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(b), cacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}
