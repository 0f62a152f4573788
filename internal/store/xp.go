package store

import "github.com/aurevo/aurevo-server/internal/types"

// Fixed domain-event XP table. The values are load-bearing for behavioral
// parity with existing clients; do not tune them casually.
const (
	XPMoodLogged   = 10
	XPJournalEntry = 20
	XPTaskDone     = 25
	XPHabitCreated = 20
	XPGoalCreated  = 15

	WaterGoalXP    = 50
	WaterGoalShine = 10

	xpPerLevel       = 1000
	levelShineFactor = 10
)

// Level derives from lifetime XP: one level per 1000 XP, starting at 1.
func Level(xp int) int {
	return xp/xpPerLevel + 1
}

// SessionXP pays 5 XP per full 5-minute block.
func SessionXP(durationMin int) int {
	if durationMin < 0 {
		return 0
	}
	return durationMin / 5 * 5
}

// HabitLogXP is tiered on the resulting streak, not cumulative.
func HabitLogXP(streak int) int {
	switch {
	case streak >= 7:
		return 50
	case streak >= 3:
		return 25
	default:
		return 10
	}
}

// MilestoneXP pays once per goal per threshold; 100% is handled by the
// completion award instead.
func MilestoneXP(threshold int) int {
	switch threshold {
	case 25:
		return 10
	case 50:
		return 20
	case 75:
		return 30
	default:
		return 0
	}
}

// GoalCompletionXP combines a priority base, a per-subgoal bonus, and a
// time-estimate bonus.
func GoalCompletionXP(priority string, subGoals, timeEstimateMin int) int {
	var base int
	switch priority {
	case types.PriorityHigh:
		base = 100
	case types.PriorityMedium:
		base = 50
	default:
		base = 25
	}

	var timeBonus int
	switch {
	case timeEstimateMin > 60:
		timeBonus = 25
	case timeEstimateMin > 30:
		timeBonus = 15
	default:
		timeBonus = 5
	}

	return base + subGoals*5 + timeBonus
}

// goalMilestones are the progress thresholds that pay milestone XP.
var goalMilestones = []int{25, 50, 75}
