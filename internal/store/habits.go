package store

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/docstore"
	"github.com/aurevo/aurevo-server/internal/logger"
	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
	"github.com/aurevo/aurevo-server/internal/types"
)

const (
	habitPageSize    = 100
	habitLogPageSize = 200
)

// HabitStore owns recurring habits and their append-only completion logs.
// Streaks live on the habit document and advance on consecutive local
// days; the log collection is the source for heatmaps.
type HabitStore struct {
	mu      sync.Mutex
	log     *logger.Logger
	docs    docstore.Store
	ledger  *ProfileStore
	notify  *NotificationCenter
	ownerID uuid.UUID

	habits []types.Habit
	logs   []types.HabitLog

	now func() time.Time
}

func NewHabitStore(docs docstore.Store, ledger *ProfileStore, notify *NotificationCenter, baseLog *logger.Logger, ownerID uuid.UUID) *HabitStore {
	return &HabitStore{
		log:     baseLog.With("store", "HabitStore"),
		docs:    docs,
		ledger:  ledger,
		notify:  notify,
		ownerID: ownerID,
		now:     func() time.Time { return time.Now() },
	}
}

// Create adds a habit and pays the creation XP. The habit lands locally
// only after the remote create succeeds.
func (s *HabitStore) Create(ctx context.Context, title string, schedule types.HabitSchedule) (*types.Habit, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: habit title is required", apperrors.ErrInvalidArgument)
	}

	fields, err := docstore.Encode(types.Habit{
		OwnerID:  s.ownerID,
		Title:    title,
		Schedule: schedule,
		Active:   true,
	})
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Create(ctx, CollectionHabits, s.ownerID, fields)
	if err != nil {
		s.log.Warn("Habit create failed", "owner_id", s.ownerID, "error", err)
		s.notifyWriteFailure()
		return nil, fmt.Errorf("create habit: %w", err)
	}

	var habit types.Habit
	if err := docstore.Decode(*doc, &habit); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.habits = append([]types.Habit{habit}, s.habits...)
	s.mu.Unlock()

	_, _, _ = s.ledger.AddXP(ctx, XPHabitCreated, "New habit started")
	return &habit, nil
}

// LogCompletion appends a completion for today and advances the habit
// streak: a repeat on the same day pays base XP without moving the
// streak, yesterday's completion increments it, a gap resets it to 1.
func (s *HabitStore) LogCompletion(ctx context.Context, habitID uuid.UUID, value float64) (*types.Habit, SyncResult, error) {
	now := s.now()
	today := dayKey(now)
	yesterday := dayKey(now.AddDate(0, 0, -1))

	s.mu.Lock()
	idx := s.habitIndexLocked(habitID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: habit %s", apperrors.ErrNotFound, habitID)
	}
	habit := s.habits[idx]
	s.mu.Unlock()

	sameDay := habit.LastCompletedAt != nil && dayKey(*habit.LastCompletedAt) == today
	if !sameDay {
		switch {
		case habit.LastCompletedAt != nil && dayKey(*habit.LastCompletedAt) == yesterday:
			habit.Streak++
		default:
			habit.Streak = 1
		}
		if habit.Streak > habit.LongestStreak {
			habit.LongestStreak = habit.Streak
		}
	}
	habit.TotalCompletions++
	completedAt := now
	habit.LastCompletedAt = &completedAt

	logFields, err := docstore.Encode(types.HabitLog{
		OwnerID: s.ownerID,
		HabitID: habitID,
		Value:   value,
		Day:     today,
	})
	if err != nil {
		return nil, SyncResult{}, err
	}
	logDoc, err := s.docs.Create(ctx, CollectionHabitLogs, s.ownerID, logFields)
	if err != nil {
		s.log.Warn("Habit log write failed", "owner_id", s.ownerID, "habit_id", habitID, "error", err)
		s.notifyWriteFailure()
		return nil, SyncResult{}, fmt.Errorf("log habit: %w", err)
	}
	var entry types.HabitLog
	if err := docstore.Decode(*logDoc, &entry); err != nil {
		return nil, SyncResult{}, err
	}

	// Habit patch is optimistic: the new streak stays local when the
	// remote update fails.
	s.mu.Lock()
	if idx = s.habitIndexLocked(habitID); idx >= 0 {
		s.habits[idx] = habit
	}
	s.logs = append([]types.HabitLog{entry}, s.logs...)
	s.mu.Unlock()

	result := s.writeBack(ctx, habit)

	var xp int
	if sameDay {
		// Repeats within one day never escalate the tier.
		xp = HabitLogXP(1)
	} else {
		xp = HabitLogXP(habit.Streak)
	}
	_, _, _ = s.ledger.AddXP(ctx, xp, fmt.Sprintf("%s completed", habit.Title))
	if !sameDay {
		s.ledger.MarkDailyStreak(ctx, types.StreakHabit)
		s.ledger.SetStreakIfHigher(ctx, types.StreakHabit, habit.Streak)
	}

	out := habit
	return &out, result, nil
}

// SetActive pauses or resumes a habit without touching its streak.
func (s *HabitStore) SetActive(ctx context.Context, habitID uuid.UUID, active bool) (*types.Habit, SyncResult, error) {
	s.mu.Lock()
	idx := s.habitIndexLocked(habitID)
	if idx < 0 {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: habit %s", apperrors.ErrNotFound, habitID)
	}
	s.habits[idx].Active = active
	habit := s.habits[idx]
	s.mu.Unlock()

	result := s.writeBack(ctx, habit)
	out := habit
	return &out, result, nil
}

// Delete removes the habit locally first, then remotely. Its logs stay;
// heatmap history survives the habit.
func (s *HabitStore) Delete(ctx context.Context, habitID uuid.UUID) (SyncResult, error) {
	s.mu.Lock()
	idx := s.habitIndexLocked(habitID)
	if idx < 0 {
		s.mu.Unlock()
		return SyncResult{}, fmt.Errorf("%w: habit %s", apperrors.ErrNotFound, habitID)
	}
	s.habits = append(s.habits[:idx], s.habits[idx+1:]...)
	s.mu.Unlock()

	if err := s.docs.Delete(ctx, CollectionHabits, habitID); err != nil {
		s.log.Warn("Habit delete failed remotely", "owner_id", s.ownerID, "habit_id", habitID, "error", err)
		s.notifyWriteFailure()
		return failedLocalAhead(err), nil
	}
	return committed(), nil
}

// Heatmap counts completions per local day over the trailing window.
func (s *HabitStore) Heatmap(habitID uuid.UUID, days int) map[string]int {
	if days <= 0 {
		days = 30
	}
	cutoff := dayKey(s.now().AddDate(0, 0, -(days - 1)))

	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int)
	for _, l := range s.logs {
		if l.HabitID != habitID || l.Day < cutoff {
			continue
		}
		out[l.Day]++
	}
	return out
}

// Load replaces local habit and log state with the remote collections.
func (s *HabitStore) Load(ctx context.Context) ([]types.Habit, error) {
	habitDocs, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionHabits,
		OwnerID:    s.ownerID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      habitPageSize,
	})
	if err != nil {
		s.resetOnLoadFailure(err)
		return nil, fmt.Errorf("load habits: %w", err)
	}
	logDocs, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionHabitLogs,
		OwnerID:    s.ownerID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      habitLogPageSize,
	})
	if err != nil {
		s.resetOnLoadFailure(err)
		return nil, fmt.Errorf("load habit logs: %w", err)
	}

	habits := make([]types.Habit, 0, len(habitDocs))
	for _, d := range habitDocs {
		var h types.Habit
		if err := docstore.Decode(d, &h); err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	logs := make([]types.HabitLog, 0, len(logDocs))
	for _, d := range logDocs {
		var l types.HabitLog
		if err := docstore.Decode(d, &l); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}

	s.mu.Lock()
	s.habits = habits
	s.logs = logs
	s.mu.Unlock()
	return habits, nil
}

func (s *HabitStore) resetOnLoadFailure(err error) {
	s.mu.Lock()
	s.habits = nil
	s.logs = nil
	s.mu.Unlock()
	s.log.Warn("Habit load failed", "owner_id", s.ownerID, "error", err)
	s.notify.Push(types.Notification{
		Type:    types.NotifySystem,
		Title:   "Habits unavailable",
		Message: "Could not load your habits right now.",
	})
}

// Habits returns the local snapshot, newest first.
func (s *HabitStore) Habits() []types.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Habit(nil), s.habits...)
}

// Logs returns the local completion log snapshot, newest first.
func (s *HabitStore) Logs() []types.HabitLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.HabitLog(nil), s.logs...)
}

func (s *HabitStore) habitIndexLocked(habitID uuid.UUID) int {
	for i := range s.habits {
		if s.habits[i].ID == habitID {
			return i
		}
	}
	return -1
}

func (s *HabitStore) writeBack(ctx context.Context, habit types.Habit) SyncResult {
	fields, err := docstore.Encode(habit)
	if err != nil {
		return failedLocalAhead(err)
	}
	if err := s.docs.Update(ctx, CollectionHabits, habit.ID, fields); err != nil {
		s.log.Warn("Habit sync failed, local state is ahead", "owner_id", s.ownerID, "habit_id", habit.ID, "error", err)
		s.notifyWriteFailure()
		return failedLocalAhead(err)
	}
	return committed()
}

func (s *HabitStore) notifyWriteFailure() {
	s.notify.Push(types.Notification{
		Type:    types.NotifySystem,
		Title:   "Could not save habit",
		Message: "Your latest change is kept locally and may not be synced.",
	})
}
