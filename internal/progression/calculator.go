// Package progression implements the XP and leveling model: level derivation
// from total XP, per-check-in XP awards and achievement rarity rewards.
// Everything here is pure arithmetic over the user's progression state.
package progression

import (
	"sort"

	"github.com/shapeu/shapeu/internal/models"
)

// XP cost of completing level L is L * xpPerLevelStep.
const xpPerLevelStep = 500

// LevelInfo describes where a total XP amount lands in the level curve.
type LevelInfo struct {
	Level            int `json:"level"`
	XPInCurrentLevel int `json:"xp_in_current_level"`
	XPForNext        int `json:"xp_for_next"`
}

// levelTitles maps level thresholds to titles. TitleFor picks the highest
// threshold not exceeding the level.
var levelTitles = map[int]string{
	1:   "Iniciante",
	2:   "Aprendiz",
	3:   "Praticante",
	5:   "Disciplinado",
	7:   "Forjador de Hábitos",
	10:  "Máquina",
	15:  "Imparável",
	20:  "Lendário",
	25:  "Transcendente",
	30:  "Mito",
	50:  "Deus da Disciplina",
	100: "Ascendido",
}

// LevelFor derives the level reached with totalXP. Levels start at 1 and
// completing level L costs L*500 XP. Total over all non-negative inputs.
func LevelFor(totalXP int) LevelInfo {
	level := 1
	xpUsed := 0
	for {
		needed := level * xpPerLevelStep
		if xpUsed+needed > totalXP {
			break
		}
		xpUsed += needed
		level++
	}
	return LevelInfo{
		Level:            level,
		XPInCurrentLevel: totalXP - xpUsed,
		XPForNext:        level * xpPerLevelStep,
	}
}

// XPForNextLevel returns the XP cost of completing the given level.
func XPForNextLevel(level int) int {
	return level * xpPerLevelStep
}

// TitleFor returns the title for a level.
func TitleFor(level int) string {
	thresholds := make([]int, 0, len(levelTitles))
	for k := range levelTitles {
		thresholds = append(thresholds, k)
	}
	sort.Ints(thresholds)

	title := levelTitles[1]
	for _, t := range thresholds {
		if level >= t {
			title = levelTitles[t]
		}
	}
	return title
}

// Modifiers are the contextual bonuses of a single check-in.
// AllBeforeNoon is only meaningful on a perfect day; callers set it that way.
type Modifiers struct {
	PerfectDay    bool
	PerfectWeek   bool
	PerfectMonth  bool
	BeforeSix     bool
	AfterTen      bool
	AllBeforeNoon bool
	FirstOfDay    bool
}

// CheckinXP computes the XP award for completing a goal with the given
// running streak and modifiers. The base depends on frequency and effort;
// the streak bonus is non-stacking (highest threshold wins); modifier
// bonuses are additive and independent.
func CheckinXP(goal *models.Goal, streakDays int, mods Modifiers) int {
	xp := 0
	effort := goal.EffortLevel
	if effort == "" {
		effort = models.EffortLight
	}

	switch goal.FrequencyType {
	case models.FrequencyWeekly:
		xp = 20
		if effort == models.EffortHigh {
			xp = 25
		}
	case models.FrequencyCustom:
		xp = 15
		if effort == models.EffortHigh {
			xp = 20
		}
	case models.FrequencyMonthly:
		months := goal.ConsecutiveMonths
		xp = 50 + max(0, months-1)*10
	default: // daily
		xp = 10
		if effort == models.EffortHigh {
			xp = 15
		}
	}

	switch {
	case streakDays >= 90:
		xp += 30
	case streakDays >= 60:
		xp += 20
	case streakDays >= 30:
		xp += 15
	case streakDays >= 14:
		xp += 10
	case streakDays >= 7:
		xp += 5
	case streakDays >= 3:
		xp += 2
	}

	if mods.PerfectDay {
		xp += 50
	}
	if mods.PerfectWeek {
		xp += 200
	}
	if mods.PerfectMonth {
		xp += 1000
	}
	if mods.BeforeSix {
		xp += 5
	}
	if mods.AfterTen {
		xp += 5
	}
	if mods.AllBeforeNoon {
		xp += 20
	}
	if mods.FirstOfDay {
		xp += 3
	}

	return xp
}

// achievementXP maps badge rarity to its XP reward.
var achievementXP = map[string]int{
	"common":           50,
	"uncommon":         100,
	"rare":             200,
	"epic":             500,
	"legendary":        1000,
	"secret_rare":      400,
	"secret_epic":      1000,
	"secret_legendary": 2000,
}

// AchievementXP returns the XP reward for unlocking a badge of the given
// rarity. Unknown rarities reward the common amount.
func AchievementXP(rarity string) int {
	if xp, ok := achievementXP[rarity]; ok {
		return xp
	}
	return 50
}

// UnlockableAvatar is an avatar emoji gated behind a level.
type UnlockableAvatar struct {
	Emoji string `json:"emoji"`
	Level int    `json:"level"`
}

// UnlockableAvatars lists avatars unlocked by reaching a level.
var UnlockableAvatars = []UnlockableAvatar{
	{Emoji: "🛡️", Level: 5},
	{Emoji: "🥉", Level: 10},
	{Emoji: "🥈", Level: 15},
	{Emoji: "🥇", Level: 20},
	{Emoji: "✨", Level: 25},
	{Emoji: "🔥", Level: 30},
	{Emoji: "⭐", Level: 50},
	{Emoji: "❓", Level: 100},
}
