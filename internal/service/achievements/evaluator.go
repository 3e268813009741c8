package achievements

import (
	"sort"
	"strings"
	"time"

	"github.com/shapeu/shapeu/internal/catalog"
	"github.com/shapeu/shapeu/internal/models"
)

// snapshot is the read-only view of one user's history that a scan
// evaluates against. Logs are ordered by date descending.
type snapshot struct {
	user        *models.User
	activeGoals []models.Goal
	allGoals    []models.Goal
	logs        []models.DailyLog
	unlocked    map[string]bool
	users       UserRepository
}

// logsAscending returns a copy of the logs sorted oldest first.
func (s *snapshot) logsAscending() []models.DailyLog {
	sorted := make([]models.DailyLog, len(s.logs))
	copy(sorted, s.logs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date < sorted[j].Date
	})
	return sorted
}

func averageRate(logs []models.DailyLog) float64 {
	if len(logs) == 0 {
		return 0
	}
	var sum float64
	for _, l := range logs {
		sum += float64(l.CompletionRate)
	}
	return sum / float64(len(logs))
}

func matchesKeywords(name string, keywords []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

type evalFunc func(s *snapshot, c catalog.Criteria) (bool, error)

var evaluators = map[string]evalFunc{
	"any_streak":          evalAnyStreak,
	"goal_streak":         evalGoalStreak,
	"streak_recovery":     evalStreakRecovery,
	"total_completions":   evalTotalCompletions,
	"goal_total":          evalGoalTotal,
	"active_goals":        evalActiveGoals,
	"perfect_days":        evalPerfectDays,
	"consecutive_perfect": evalConsecutivePerfect,
	"weekly_rate":         evalWeeklyRate,
	"sustained_rate":      evalSustainedRate,
	"monthly_rate":        evalMonthlyRate,
	"perfect_weekends":    evalPerfectWeekends,
	"improving_trend":     evalImprovingTrend,
	"before_hour":         evalBeforeHour,
	"after_hour":          evalAfterHour,
	"all_before_hour":     evalAllBeforeHour,
	"account_age":         evalAccountAge,
	"pioneer":             evalPioneer,
	"explorer":            evalExplorer,
	"custom_goal":         evalCustomGoal,
	"theme_change":        evalThemeChange,
	"avatar_upload":       evalAvatarUpload,
	"ghost":               evalGhost,
	"same_rate":           evalSameRate,
	"midnight":            evalMidnight,
	"comeback":            evalComeback,
	"perfect_first_day":   evalPerfectFirstDay,
	"rebirth":             evalRebirth,
	"night_and_day":       evalNightAndDay,
	"daily_completions":   evalDailyCompletions,
	"minimalist":          evalMinimalist,
	"consecutive_logins":  evalConsecutiveLogins,
	"total_achievements":  evalTotalAchievements,
	"reach_level":         evalReachLevel,
}

func evalAnyStreak(s *snapshot, c catalog.Criteria) (bool, error) {
	for _, g := range s.allGoals {
		if g.LongestStreak >= c.Days || g.CurrentStreak >= c.Days {
			return true, nil
		}
	}
	return false, nil
}

func evalGoalStreak(s *snapshot, c catalog.Criteria) (bool, error) {
	for _, g := range s.allGoals {
		if !matchesKeywords(g.Name, c.GoalKeywords) {
			continue
		}
		if g.LongestStreak >= c.Days || g.CurrentStreak >= c.Days {
			return true, nil
		}
	}
	return false, nil
}

// A recovery is a goal whose streak was broken (longest above current)
// and is being rebuilt (current above zero).
func evalStreakRecovery(s *snapshot, c catalog.Criteria) (bool, error) {
	recoveries := 0
	for _, g := range s.allGoals {
		if g.CurrentStreak > 0 && g.LongestStreak > g.CurrentStreak {
			recoveries++
		}
	}
	return recoveries >= c.Count, nil
}

func evalTotalCompletions(s *snapshot, c catalog.Criteria) (bool, error) {
	return s.user.TotalGoalsCompleted >= c.Count, nil
}

func evalGoalTotal(s *snapshot, c catalog.Criteria) (bool, error) {
	total := 0
	for _, g := range s.allGoals {
		if matchesKeywords(g.Name, c.GoalKeywords) {
			total += g.TotalCompletions
		}
	}
	return total >= c.Count, nil
}

func evalActiveGoals(s *snapshot, c catalog.Criteria) (bool, error) {
	return len(s.activeGoals) >= c.Count, nil
}

func evalPerfectDays(s *snapshot, c catalog.Criteria) (bool, error) {
	return s.user.TotalPerfectDays >= c.Count, nil
}

func evalConsecutivePerfect(s *snapshot, c catalog.Criteria) (bool, error) {
	maxRun, current := 0, 0
	for _, l := range s.logsAscending() {
		if l.CompletionRate == 100 && len(l.Completions) > 0 {
			current++
			if current > maxRun {
				maxRun = current
			}
		} else {
			current = 0
		}
	}
	return maxRun >= c.Count, nil
}

func evalWeeklyRate(s *snapshot, c catalog.Criteria) (bool, error) {
	last7 := s.logs
	if len(last7) > 7 {
		last7 = last7[:7]
	}
	if len(last7) == 0 {
		return false, nil
	}
	return averageRate(last7) >= c.Rate, nil
}

// Each of the last c.Weeks blocks of 7 logs must average at or above
// the target rate.
func evalSustainedRate(s *snapshot, c catalog.Criteria) (bool, error) {
	if len(s.logs) < c.Weeks*7 {
		return false, nil
	}
	for w := 0; w < c.Weeks; w++ {
		week := s.logs[w*7 : (w+1)*7]
		if averageRate(week) < c.Rate {
			return false, nil
		}
	}
	return true, nil
}

func evalMonthlyRate(s *snapshot, c catalog.Criteria) (bool, error) {
	last30 := s.logs
	if len(last30) > 30 {
		last30 = last30[:30]
	}
	if len(last30) < 20 {
		return false, nil
	}
	return averageRate(last30) >= c.Rate, nil
}

func evalPerfectWeekends(s *snapshot, c catalog.Criteria) (bool, error) {
	perfectWeekends := 0
	for _, l := range s.logs {
		if perfectWeekends >= c.Weeks {
			break
		}
		d, err := time.Parse("2006-01-02", l.Date)
		if err != nil {
			continue
		}
		dow := d.Weekday()
		if (dow == time.Sunday || dow == time.Saturday) && l.CompletionRate == 100 {
			perfectWeekends++
		}
	}
	return perfectWeekends >= c.Weeks*2, nil
}

// Weekly averages must be strictly increasing across the window.
func evalImprovingTrend(s *snapshot, c catalog.Criteria) (bool, error) {
	if len(s.logs) < c.Weeks*7 {
		return false, nil
	}
	weekAvgs := make([]float64, 0, c.Weeks)
	for w := 0; w < c.Weeks; w++ {
		week := s.logs[w*7 : (w+1)*7]
		weekAvgs = append(weekAvgs, averageRate(week))
	}
	// Logs are newest first, so reverse into chronological order.
	for i, j := 0, len(weekAvgs)-1; i < j; i, j = i+1, j-1 {
		weekAvgs[i], weekAvgs[j] = weekAvgs[j], weekAvgs[i]
	}
	for i := 1; i < len(weekAvgs); i++ {
		if weekAvgs[i] <= weekAvgs[i-1] {
			return false, nil
		}
	}
	return true, nil
}

func evalBeforeHour(s *snapshot, c catalog.Criteria) (bool, error) {
	count := 0
	for _, l := range s.logs {
		for _, comp := range l.Completions {
			if comp.Completed && comp.CompletedAt != nil && comp.CompletedAt.Hour() < c.Hour {
				count++
			}
		}
	}
	return count >= c.Count, nil
}

func evalAfterHour(s *snapshot, c catalog.Criteria) (bool, error) {
	count := 0
	for _, l := range s.logs {
		for _, comp := range l.Completions {
			if comp.Completed && comp.CompletedAt != nil && comp.CompletedAt.Hour() >= c.Hour {
				count++
			}
		}
	}
	return count >= c.Count, nil
}

// Counts days on which every completed entry has a timestamp before the
// cutoff hour. Days with no completed entries do not count.
func evalAllBeforeHour(s *snapshot, c catalog.Criteria) (bool, error) {
	count := 0
	for _, l := range s.logs {
		completed := 0
		allBefore := true
		for _, comp := range l.Completions {
			if !comp.Completed {
				continue
			}
			completed++
			if comp.CompletedAt == nil || comp.CompletedAt.Hour() >= c.Hour {
				allBefore = false
			}
		}
		if completed > 0 && allBefore {
			count++
		}
	}
	return count >= c.Count, nil
}

func evalAccountAge(s *snapshot, c catalog.Criteria) (bool, error) {
	days := int(time.Since(s.user.CreatedAt).Hours() / 24)
	return days >= c.Days, nil
}

// Earned when the user is among the first c.Rank accounts created.
func evalPioneer(s *snapshot, c catalog.Criteria) (bool, error) {
	count, err := s.users.CountCreatedUpTo(s.user.CreatedAt)
	if err != nil {
		return false, err
	}
	return count <= int64(c.Rank), nil
}

func evalExplorer(s *snapshot, c catalog.Criteria) (bool, error) {
	return true, nil
}

var defaultGoalNames = []string{"academia", "treino", "alimentação", "hidratação", "estudo"}

func evalCustomGoal(s *snapshot, c catalog.Criteria) (bool, error) {
	for _, g := range s.allGoals {
		if !matchesKeywords(g.Name, defaultGoalNames) {
			return true, nil
		}
	}
	return false, nil
}

func evalThemeChange(s *snapshot, c catalog.Criteria) (bool, error) {
	return s.user.Theme != models.DefaultTheme, nil
}

func evalAvatarUpload(s *snapshot, c catalog.Criteria) (bool, error) {
	return s.user.AvatarType == models.AvatarCustom, nil
}

// Never earned automatically. The unlock row is written by hand for
// users who come back after a long absence is detected elsewhere.
func evalGhost(s *snapshot, c catalog.Criteria) (bool, error) {
	return false, nil
}

// A run of c.Days consecutive logs with the identical non-zero rate.
func evalSameRate(s *snapshot, c catalog.Criteria) (bool, error) {
	if len(s.logs) < c.Days {
		return false, nil
	}
	for i := 0; i <= len(s.logs)-c.Days; i++ {
		rate := s.logs[i].CompletionRate
		match := true
		for j := 1; j < c.Days; j++ {
			if s.logs[i+j].CompletionRate != rate {
				match = false
				break
			}
		}
		if match && rate > 0 {
			return true, nil
		}
	}
	return false, nil
}

func evalMidnight(s *snapshot, c catalog.Criteria) (bool, error) {
	for _, l := range s.logs {
		for _, comp := range l.Completions {
			if comp.Completed && comp.CompletedAt != nil {
				if comp.CompletedAt.Hour() == 0 && comp.CompletedAt.Minute() <= c.EndMinute {
					return true, nil
				}
			}
		}
	}
	return false, nil
}

// A perfect day preceded by c.BadDays logs all below the rate threshold.
func evalComeback(s *snapshot, c catalog.Criteria) (bool, error) {
	sorted := s.logsAscending()
	for i := c.BadDays; i < len(sorted); i++ {
		if sorted[i].CompletionRate != 100 {
			continue
		}
		allBad := true
		for j := 1; j <= c.BadDays; j++ {
			if float64(sorted[i-j].CompletionRate) >= c.Rate {
				allBad = false
				break
			}
		}
		if allBad {
			return true, nil
		}
	}
	return false, nil
}

func evalPerfectFirstDay(s *snapshot, c catalog.Criteria) (bool, error) {
	if len(s.logs) == 0 {
		return false, nil
	}
	first := s.logsAscending()[0]
	return first.CompletionRate == 100 && len(first.Completions) > 0, nil
}

// A perfect day following a gap of at least c.InactiveDays since the
// previous log.
func evalRebirth(s *snapshot, c catalog.Criteria) (bool, error) {
	sorted := s.logsAscending()
	for i := 1; i < len(sorted); i++ {
		prev, err := time.Parse("2006-01-02", sorted[i-1].Date)
		if err != nil {
			continue
		}
		curr, err := time.Parse("2006-01-02", sorted[i].Date)
		if err != nil {
			continue
		}
		gap := int(curr.Sub(prev).Hours() / 24)
		if gap >= c.InactiveDays && sorted[i].CompletionRate == 100 {
			return true, nil
		}
	}
	return false, nil
}

func evalNightAndDay(s *snapshot, c catalog.Criteria) (bool, error) {
	for _, l := range s.logs {
		hasBeforeSix, hasAfterTen := false, false
		for _, comp := range l.Completions {
			if comp.Completed && comp.CompletedAt != nil {
				h := comp.CompletedAt.Hour()
				if h < 6 {
					hasBeforeSix = true
				}
				if h >= 22 {
					hasAfterTen = true
				}
			}
		}
		if hasBeforeSix && hasAfterTen {
			return true, nil
		}
	}
	return false, nil
}

func evalDailyCompletions(s *snapshot, c catalog.Criteria) (bool, error) {
	for _, l := range s.logs {
		if l.Completions.CompletedCount() >= c.Count {
			return true, nil
		}
	}
	return false, nil
}

func evalMinimalist(s *snapshot, c catalog.Criteria) (bool, error) {
	if len(s.activeGoals) != c.Goals {
		return false, nil
	}
	for _, g := range s.activeGoals {
		if g.CurrentStreak >= c.Streak {
			return true, nil
		}
	}
	return false, nil
}

func evalConsecutiveLogins(s *snapshot, c catalog.Criteria) (bool, error) {
	return s.user.ConsecutiveLogins >= c.Days, nil
}

func evalTotalAchievements(s *snapshot, c catalog.Criteria) (bool, error) {
	return len(s.unlocked) >= c.Count, nil
}

func evalReachLevel(s *snapshot, c catalog.Criteria) (bool, error) {
	return s.user.Level >= c.Level, nil
}
