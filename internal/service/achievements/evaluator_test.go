package achievements

import (
	"testing"
	"time"

	"github.com/shapeu/shapeu/internal/catalog"
	"github.com/shapeu/shapeu/internal/models"
)

func timeAt(hour, minute int) *time.Time {
	t := time.Date(2025, 6, 15, hour, minute, 0, 0, time.UTC)
	return &t
}

func logOn(date string, rate int, completions ...models.Completion) models.DailyLog {
	return models.DailyLog{
		Date:           date,
		CompletionRate: rate,
		Completions:    completions,
	}
}

func TestEvalAnyStreak(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		allGoals: []models.Goal{
			{Name: "Academia", CurrentStreak: 2, LongestStreak: 5},
		},
	}

	got, err := evalAnyStreak(snap, catalog.Criteria{Days: 3})
	if err != nil || !got {
		t.Errorf("Expected streak of 5 to satisfy 3 days, got %v %v", got, err)
	}

	got, _ = evalAnyStreak(snap, catalog.Criteria{Days: 7})
	if got {
		t.Error("Expected streak of 5 to fail 7 days")
	}
}

func TestEvalGoalStreakMatchesKeywords(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		allGoals: []models.Goal{
			{Name: "Treino de Pernas", CurrentStreak: 10},
			{Name: "Leitura", CurrentStreak: 30},
		},
	}

	c := catalog.Criteria{Days: 10, GoalKeywords: []string{"treino", "academia"}}
	got, _ := evalGoalStreak(snap, c)
	if !got {
		t.Error("Expected treino goal to match keyword")
	}

	c = catalog.Criteria{Days: 20, GoalKeywords: []string{"treino", "academia"}}
	got, _ = evalGoalStreak(snap, c)
	if got {
		t.Error("Expected no matching goal with streak 20")
	}
}

func TestEvalStreakRecovery(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		allGoals: []models.Goal{
			{Name: "A", CurrentStreak: 2, LongestStreak: 10},
			{Name: "B", CurrentStreak: 0, LongestStreak: 5},
		},
	}

	got, _ := evalStreakRecovery(snap, catalog.Criteria{Count: 1})
	if !got {
		t.Error("Expected one rebuilt streak to count as recovery")
	}

	got, _ = evalStreakRecovery(snap, catalog.Criteria{Count: 2})
	if got {
		t.Error("Goal B has no current streak and must not count")
	}
}

func TestEvalConsecutivePerfect(t *testing.T) {
	comp := models.Completion{GoalID: 1, Completed: true}
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 100, comp),
			logOn("2025-06-04", 100, comp),
			logOn("2025-06-03", 50, comp),
			logOn("2025-06-02", 100, comp),
		},
	}

	got, _ := evalConsecutivePerfect(snap, catalog.Criteria{Count: 2})
	if !got {
		t.Error("Expected run of 2 perfect days")
	}

	got, _ = evalConsecutivePerfect(snap, catalog.Criteria{Count: 3})
	if got {
		t.Error("The imperfect day breaks the run")
	}
}

func TestEvalConsecutivePerfectIgnoresEmptyLogs(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 100),
			logOn("2025-06-04", 100),
		},
	}

	got, _ := evalConsecutivePerfect(snap, catalog.Criteria{Count: 2})
	if got {
		t.Error("Logs without completions must not count as perfect")
	}
}

func TestEvalWeeklyRate(t *testing.T) {
	snap := &snapshot{user: &models.User{}}
	for i := 0; i < 10; i++ {
		snap.logs = append(snap.logs, logOn("2025-06-01", 80))
	}

	got, _ := evalWeeklyRate(snap, catalog.Criteria{Rate: 80})
	if !got {
		t.Error("Expected average of 80 to satisfy rate 80")
	}

	got, _ = evalWeeklyRate(snap, catalog.Criteria{Rate: 81})
	if got {
		t.Error("Expected average of 80 to fail rate 81")
	}

	empty := &snapshot{user: &models.User{}}
	got, _ = evalWeeklyRate(empty, catalog.Criteria{Rate: 1})
	if got {
		t.Error("Expected no logs to fail any rate")
	}
}

func TestEvalSustainedRate(t *testing.T) {
	snap := &snapshot{user: &models.User{}}
	for i := 0; i < 14; i++ {
		snap.logs = append(snap.logs, logOn("2025-06-01", 90))
	}

	got, _ := evalSustainedRate(snap, catalog.Criteria{Weeks: 2, Rate: 85})
	if !got {
		t.Error("Expected two weeks at 90 to sustain rate 85")
	}

	got, _ = evalSustainedRate(snap, catalog.Criteria{Weeks: 3, Rate: 85})
	if got {
		t.Error("Only 14 logs cannot sustain three weeks")
	}

	// One weak log in the second block drops that block below target.
	snap.logs[10].CompletionRate = 0
	got, _ = evalSustainedRate(snap, catalog.Criteria{Weeks: 2, Rate: 85})
	if got {
		t.Error("Expected weak block to fail the sustained rate")
	}
}

func TestEvalMonthlyRateNeedsTwentyLogs(t *testing.T) {
	snap := &snapshot{user: &models.User{}}
	for i := 0; i < 19; i++ {
		snap.logs = append(snap.logs, logOn("2025-06-01", 100))
	}

	got, _ := evalMonthlyRate(snap, catalog.Criteria{Rate: 50})
	if got {
		t.Error("19 logs are not enough for a monthly rate")
	}

	snap.logs = append(snap.logs, logOn("2025-06-01", 100))
	got, _ = evalMonthlyRate(snap, catalog.Criteria{Rate: 50})
	if !got {
		t.Error("20 perfect logs should satisfy rate 50")
	}
}

func TestEvalImprovingTrend(t *testing.T) {
	snap := &snapshot{user: &models.User{}}
	// Newest first: one week at 90, then an older week at 50.
	for i := 0; i < 7; i++ {
		snap.logs = append(snap.logs, logOn("2025-06-10", 90))
	}
	for i := 0; i < 7; i++ {
		snap.logs = append(snap.logs, logOn("2025-06-03", 50))
	}

	got, _ := evalImprovingTrend(snap, catalog.Criteria{Weeks: 2})
	if !got {
		t.Error("Expected 50 then 90 to be an improving trend")
	}

	// Flat weeks are not improving.
	for i := range snap.logs {
		snap.logs[i].CompletionRate = 70
	}
	got, _ = evalImprovingTrend(snap, catalog.Criteria{Weeks: 2})
	if got {
		t.Error("Flat weekly averages must not count as improving")
	}
}

func TestEvalBeforeAndAfterHour(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 100,
				models.Completion{GoalID: 1, Completed: true, CompletedAt: timeAt(5, 30)},
				models.Completion{GoalID: 2, Completed: true, CompletedAt: timeAt(23, 0)},
				models.Completion{GoalID: 3, Completed: false, CompletedAt: timeAt(4, 0)},
			),
		},
	}

	got, _ := evalBeforeHour(snap, catalog.Criteria{Hour: 6, Count: 1})
	if !got {
		t.Error("Expected one completion before 6")
	}

	got, _ = evalBeforeHour(snap, catalog.Criteria{Hour: 6, Count: 2})
	if got {
		t.Error("Uncompleted entries must not count")
	}

	got, _ = evalAfterHour(snap, catalog.Criteria{Hour: 22, Count: 1})
	if !got {
		t.Error("Expected one completion at or after 22")
	}
}

func TestEvalAllBeforeHour(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 100,
				models.Completion{GoalID: 1, Completed: true, CompletedAt: timeAt(8, 0)},
				models.Completion{GoalID: 2, Completed: true, CompletedAt: timeAt(11, 59)},
			),
			logOn("2025-06-04", 100,
				models.Completion{GoalID: 1, Completed: true, CompletedAt: timeAt(8, 0)},
				models.Completion{GoalID: 2, Completed: true, CompletedAt: timeAt(14, 0)},
			),
			logOn("2025-06-03", 0),
		},
	}

	got, _ := evalAllBeforeHour(snap, catalog.Criteria{Hour: 12, Count: 1})
	if !got {
		t.Error("Expected the all-morning day to count")
	}

	got, _ = evalAllBeforeHour(snap, catalog.Criteria{Hour: 12, Count: 2})
	if got {
		t.Error("The afternoon completion and the empty day must not count")
	}
}

func TestEvalCustomGoal(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		allGoals: []models.Goal{
			{Name: "Academia"},
			{Name: "Estudo de Go"},
		},
	}

	got, _ := evalCustomGoal(snap, catalog.Criteria{})
	if got {
		t.Error("Both names match default goal keywords")
	}

	snap.allGoals = append(snap.allGoals, models.Goal{Name: "Meditar"})
	got, _ = evalCustomGoal(snap, catalog.Criteria{})
	if !got {
		t.Error("Expected a non-default goal name to count as custom")
	}
}

func TestEvalThemeAndAvatar(t *testing.T) {
	snap := &snapshot{user: &models.User{Theme: models.DefaultTheme, AvatarType: models.AvatarPredefined}}

	got, _ := evalThemeChange(snap, catalog.Criteria{})
	if got {
		t.Error("Default theme is not a change")
	}
	got, _ = evalAvatarUpload(snap, catalog.Criteria{})
	if got {
		t.Error("Predefined avatar is not an upload")
	}

	snap.user.Theme = "ocean"
	snap.user.AvatarType = models.AvatarCustom
	got, _ = evalThemeChange(snap, catalog.Criteria{})
	if !got {
		t.Error("Expected theme change to be detected")
	}
	got, _ = evalAvatarUpload(snap, catalog.Criteria{})
	if !got {
		t.Error("Expected custom avatar to be detected")
	}
}

func TestEvalSameRate(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 75),
			logOn("2025-06-04", 75),
			logOn("2025-06-03", 75),
			logOn("2025-06-02", 50),
		},
	}

	got, _ := evalSameRate(snap, catalog.Criteria{Days: 3})
	if !got {
		t.Error("Expected three consecutive logs at 75")
	}

	got, _ = evalSameRate(snap, catalog.Criteria{Days: 4})
	if got {
		t.Error("The fourth log breaks the run")
	}

	zero := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 0),
			logOn("2025-06-04", 0),
		},
	}
	got, _ = evalSameRate(zero, catalog.Criteria{Days: 2})
	if got {
		t.Error("Zero-rate runs must not count")
	}
}

func TestEvalMidnight(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 50,
				models.Completion{GoalID: 1, Completed: true, CompletedAt: timeAt(0, 10)},
			),
		},
	}

	got, _ := evalMidnight(snap, catalog.Criteria{EndMinute: 15})
	if !got {
		t.Error("Expected 00:10 to fall inside the window")
	}

	got, _ = evalMidnight(snap, catalog.Criteria{EndMinute: 5})
	if got {
		t.Error("Expected 00:10 to miss a 5 minute window")
	}
}

func TestEvalComeback(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 100),
			logOn("2025-06-04", 20),
			logOn("2025-06-03", 10),
			logOn("2025-06-02", 30),
		},
	}

	got, _ := evalComeback(snap, catalog.Criteria{BadDays: 3, Rate: 50})
	if !got {
		t.Error("Expected perfect day after three bad days")
	}

	snap.logs[2].CompletionRate = 90
	got, _ = evalComeback(snap, catalog.Criteria{BadDays: 3, Rate: 50})
	if got {
		t.Error("A good day inside the window breaks the comeback")
	}

	// A day exactly at the threshold is not a bad day.
	snap.logs[2].CompletionRate = 50
	got, _ = evalComeback(snap, catalog.Criteria{BadDays: 3, Rate: 50})
	if got {
		t.Error("A day at the rate threshold breaks the comeback")
	}
}

func TestEvalPerfectFirstDay(t *testing.T) {
	comp := models.Completion{GoalID: 1, Completed: true}
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 50, comp),
			logOn("2025-06-01", 100, comp),
		},
	}

	got, _ := evalPerfectFirstDay(snap, catalog.Criteria{})
	if !got {
		t.Error("Expected the oldest log to be the first day")
	}

	snap.logs[1].CompletionRate = 80
	got, _ = evalPerfectFirstDay(snap, catalog.Criteria{})
	if got {
		t.Error("Imperfect first day must not count")
	}
}

func TestEvalRebirth(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-20", 100, models.Completion{GoalID: 1, Completed: true}),
			logOn("2025-06-01", 50),
		},
	}

	got, _ := evalRebirth(snap, catalog.Criteria{InactiveDays: 14})
	if !got {
		t.Error("Expected perfect day after a 19 day gap")
	}

	got, _ = evalRebirth(snap, catalog.Criteria{InactiveDays: 30})
	if got {
		t.Error("19 days is not a 30 day gap")
	}
}

func TestEvalNightAndDay(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 100,
				models.Completion{GoalID: 1, Completed: true, CompletedAt: timeAt(5, 0)},
				models.Completion{GoalID: 2, Completed: true, CompletedAt: timeAt(22, 30)},
			),
		},
	}

	got, _ := evalNightAndDay(snap, catalog.Criteria{})
	if !got {
		t.Error("Expected early and late completions on the same day")
	}

	snap.logs[0].Completions[1].CompletedAt = timeAt(12, 0)
	got, _ = evalNightAndDay(snap, catalog.Criteria{})
	if got {
		t.Error("Both ends of the day are required")
	}
}

func TestEvalDailyCompletions(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		logs: []models.DailyLog{
			logOn("2025-06-05", 100,
				models.Completion{GoalID: 1, Completed: true},
				models.Completion{GoalID: 2, Completed: true},
				models.Completion{GoalID: 3, Completed: false},
			),
		},
	}

	got, _ := evalDailyCompletions(snap, catalog.Criteria{Count: 2})
	if !got {
		t.Error("Expected two completions on one day")
	}

	got, _ = evalDailyCompletions(snap, catalog.Criteria{Count: 3})
	if got {
		t.Error("The unchecked entry must not count")
	}
}

func TestEvalMinimalist(t *testing.T) {
	snap := &snapshot{
		user: &models.User{},
		activeGoals: []models.Goal{
			{Name: "A", CurrentStreak: 30},
		},
	}

	got, _ := evalMinimalist(snap, catalog.Criteria{Goals: 1, Streak: 30})
	if !got {
		t.Error("Expected single goal with long streak to qualify")
	}

	snap.activeGoals = append(snap.activeGoals, models.Goal{Name: "B"})
	got, _ = evalMinimalist(snap, catalog.Criteria{Goals: 1, Streak: 30})
	if got {
		t.Error("A second active goal disqualifies the minimalist")
	}
}

func TestEvalUserCounters(t *testing.T) {
	snap := &snapshot{
		user: &models.User{
			TotalGoalsCompleted: 100,
			TotalPerfectDays:    10,
			ConsecutiveLogins:   7,
			Level:               5,
		},
		unlocked: map[string]bool{"a": true, "b": true},
	}

	if got, _ := evalTotalCompletions(snap, catalog.Criteria{Count: 100}); !got {
		t.Error("Expected 100 completions to qualify")
	}
	if got, _ := evalPerfectDays(snap, catalog.Criteria{Count: 11}); got {
		t.Error("Expected 10 perfect days to fail 11")
	}
	if got, _ := evalConsecutiveLogins(snap, catalog.Criteria{Days: 7}); !got {
		t.Error("Expected 7 consecutive logins to qualify")
	}
	if got, _ := evalReachLevel(snap, catalog.Criteria{Level: 6}); got {
		t.Error("Expected level 5 to fail level 6")
	}
	if got, _ := evalTotalAchievements(snap, catalog.Criteria{Count: 2}); !got {
		t.Error("Expected 2 unlocks to qualify")
	}
}

func TestEvalGhostNeverEarned(t *testing.T) {
	snap := &snapshot{user: &models.User{}}
	if got, _ := evalGhost(snap, catalog.Criteria{}); got {
		t.Error("Ghost must never be earned by a scan")
	}
}
