package types

import (
	"time"

	"github.com/google/uuid"
)

// Streak categories tracked on the profile.
const (
	StreakMood     = "mood"
	StreakHabit    = "habit"
	StreakStudy    = "study"
	StreakWellness = "wellness"
)

// UserProfile is the per-user settings and gamification snapshot. Created
// on first sign-in if absent; never hard-deleted.
type UserProfile struct {
	ID      uuid.UUID `json:"id"`
	OwnerID uuid.UUID `json:"owner_id"`

	Language             string `json:"language"`
	DarkMode             bool   `json:"dark_mode"`
	NotificationsEnabled bool   `json:"notifications_enabled"`

	XP          int            `json:"xp"`
	Level       int            `json:"level"`
	ShinePoints int            `json:"shine_points"`
	Streaks     map[string]int `json:"streaks"`
	// StreakDays records the last device-local day each category streak
	// advanced, so a streak bumps at most once per day.
	StreakDays      map[string]string `json:"streak_days"`
	UnlockedAvatars []string          `json:"unlocked_avatars"`
	CurrentAvatar   string            `json:"current_avatar"`

	WaterGoalML  int     `json:"water_goal_ml"`
	CalorieGoal  int     `json:"calorie_goal"`
	StepGoal     int     `json:"step_goal"`
	SleepGoalHrs float64 `json:"sleep_goal_hrs"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultProfile is the document written on first sign-in.
func DefaultProfile(ownerID uuid.UUID) UserProfile {
	return UserProfile{
		OwnerID:              ownerID,
		Language:             "en",
		NotificationsEnabled: true,
		XP:                   0,
		Level:                1,
		ShinePoints:          0,
		Streaks:              map[string]int{},
		StreakDays:           map[string]string{},
		UnlockedAvatars:      []string{"sprout"},
		CurrentAvatar:        "sprout",
		WaterGoalML:          2000,
		CalorieGoal:          2000,
		StepGoal:             8000,
		SleepGoalHrs:         8,
	}
}
