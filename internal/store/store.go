// Package store implements the client state and sync layer: one store per
// domain, each mediating between an in-memory snapshot and the remote
// document store with optimistic local mutation, an ordered-query fallback,
// and gamification bookkeeping layered across domains.
package store

import (
	"fmt"
	"time"

	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
)

// Collection names in the remote document store.
const (
	CollectionProfiles     = "profiles"
	CollectionMoodLogs     = "mood_logs"
	CollectionJournal      = "journal_entries"
	CollectionWellnessDays = "wellness_days"
	CollectionTasks        = "tasks"
	CollectionGoals        = "goals"
	CollectionSessions     = "focus_sessions"
	CollectionHabits       = "habits"
	CollectionHabitLogs    = "habit_logs"
	CollectionPosts        = "posts"
	CollectionComments     = "comments"
)

type SyncStatus string

const (
	// SyncCommitted means the remote write landed.
	SyncCommitted SyncStatus = "committed"
	// SyncFailedLocalAhead means the optimistic local mutation was kept
	// but the remote write failed; the store is dirty until the next
	// successful load reconciles it.
	SyncFailedLocalAhead SyncStatus = "failed-local-ahead"
)

type SyncResult struct {
	Status SyncStatus
	Err    error
}

func committed() SyncResult {
	return SyncResult{Status: SyncCommitted}
}

func failedLocalAhead(err error) SyncResult {
	return SyncResult{Status: SyncFailedLocalAhead, Err: err}
}

// CooldownError rejects a mood log inside the minimum interval. The wait
// time reported rounds up to the next whole minute.
type CooldownError struct {
	Remaining time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("please wait %d more minute(s) before logging again", e.RemainingMinutes())
}

func (e *CooldownError) RemainingMinutes() int {
	mins := int((e.Remaining + time.Minute - 1) / time.Minute)
	if mins < 1 {
		mins = 1
	}
	return mins
}

func (e *CooldownError) Unwrap() error {
	return apperrors.ErrCooldown
}

// dayKey is the device-local calendar day, never UTC.
func dayKey(t time.Time) string {
	return t.Local().Format("2006-01-02")
}
