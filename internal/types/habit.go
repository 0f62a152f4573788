package types

import (
	"time"

	"github.com/google/uuid"
)

// HabitSchedule describes when a habit is due: a day-of-week set plus an
// optional time of day ("07:30").
type HabitSchedule struct {
	Days      []time.Weekday `json:"days"`
	TimeOfDay string         `json:"time_of_day,omitempty"`
}

type Habit struct {
	ID               uuid.UUID     `json:"id"`
	OwnerID          uuid.UUID     `json:"owner_id"`
	Title            string        `json:"title"`
	Schedule         HabitSchedule `json:"schedule"`
	Streak           int           `json:"streak"`
	LongestStreak    int           `json:"longest_streak"`
	TotalCompletions int           `json:"total_completions"`
	LastCompletedAt  *time.Time    `json:"last_completed_at,omitempty"`
	Active           bool          `json:"active"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// HabitLog is append-only; heatmaps and streaks derive from it.
type HabitLog struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	HabitID   uuid.UUID `json:"habit_id"`
	Value     float64   `json:"value"`
	Day       string    `json:"day"` // "2006-01-02" in local time
	CreatedAt time.Time `json:"created_at"`
}
