package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/docstore"
	"github.com/aurevo/aurevo-server/internal/logger"
	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
	"github.com/aurevo/aurevo-server/internal/types"
)

const sessionPageSize = 50

// FocusState is a snapshot of the countdown runtime.
type FocusState struct {
	Active       bool       `json:"active"`
	Running      bool       `json:"running"`
	Subject      string     `json:"subject,omitempty"`
	GoalID       *uuid.UUID `json:"goal_id,omitempty"`
	RemainingSec int        `json:"remaining_sec"`
	PlannedSec   int        `json:"planned_sec"`
}

type focusTimer struct {
	subject      string
	goalID       *uuid.UUID
	plannedSec   int
	remainingSec int
	startedAt    time.Time
	stopCh       chan struct{}
	running      bool
}

// SessionStore records completed focus/study sessions and runs the
// countdown timer. At most one ticking timer exists per store; starting a
// new one always cancels the previous handle first.
type SessionStore struct {
	mu      sync.Mutex
	log     *logger.Logger
	docs    docstore.Store
	ledger  *ProfileStore
	notify  *NotificationCenter
	ownerID uuid.UUID

	sessions []types.FocusSession

	timerMu sync.Mutex
	active  *focusTimer
	tick    time.Duration

	now func() time.Time
}

func NewSessionStore(docs docstore.Store, ledger *ProfileStore, notify *NotificationCenter, baseLog *logger.Logger, ownerID uuid.UUID) *SessionStore {
	return &SessionStore{
		log:     baseLog.With("store", "SessionStore"),
		docs:    docs,
		ledger:  ledger,
		notify:  notify,
		ownerID: ownerID,
		tick:    time.Second,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Record persists a completed session and pays 5 XP per 5-minute block.
func (s *SessionStore) Record(ctx context.Context, subject string, goalID *uuid.UUID, durationMin int, startedAt, endedAt time.Time) (*types.FocusSession, error) {
	if durationMin <= 0 {
		return nil, fmt.Errorf("%w: session duration must be positive", apperrors.ErrInvalidArgument)
	}

	fields, err := docstore.Encode(types.FocusSession{
		OwnerID:     s.ownerID,
		Subject:     subject,
		GoalID:      goalID,
		DurationMin: durationMin,
		StartedAt:   startedAt,
		EndedAt:     endedAt,
		Completed:   true,
	})
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Create(ctx, CollectionSessions, s.ownerID, fields)
	if err != nil {
		s.log.Warn("Session write failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Could not save session",
			Message: "Your focus session was not saved.",
		})
		return nil, fmt.Errorf("save session: %w", err)
	}

	var session types.FocusSession
	if err := docstore.Decode(*doc, &session); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions = append([]types.FocusSession{session}, s.sessions...)
	s.mu.Unlock()

	if xp := SessionXP(durationMin); xp > 0 {
		_, _, _ = s.ledger.AddXP(ctx, xp, "Focus session completed")
	}
	s.ledger.MarkDailyStreak(ctx, types.StreakStudy)
	return &session, nil
}

// StartFocus begins a countdown, cancelling any previous timer so two
// ticking timers never coexist.
func (s *SessionStore) StartFocus(subject string, goalID *uuid.UUID, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("%w: focus duration must be positive", apperrors.ErrInvalidArgument)
	}

	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	s.cancelTickLocked()
	s.active = &focusTimer{
		subject:      subject,
		goalID:       goalID,
		plannedSec:   seconds,
		remainingSec: seconds,
		startedAt:    s.now(),
	}
	s.startTickLocked()
	return nil
}

// PauseFocus cancels the tick but keeps accumulated elapsed time.
func (s *SessionStore) PauseFocus() error {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.active == nil {
		return fmt.Errorf("%w: no active focus session", apperrors.ErrNotFound)
	}
	s.cancelTickLocked()
	return nil
}

// ResumeFocus restarts the tick from the remaining duration.
func (s *SessionStore) ResumeFocus() error {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.active == nil {
		return fmt.Errorf("%w: no active focus session", apperrors.ErrNotFound)
	}
	if s.active.running {
		return nil
	}
	s.startTickLocked()
	return nil
}

// StopFocus discards the session entirely; no partial record is written.
func (s *SessionStore) StopFocus() error {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.active == nil {
		return fmt.Errorf("%w: no active focus session", apperrors.ErrNotFound)
	}
	s.cancelTickLocked()
	s.active = nil
	return nil
}

func (s *SessionStore) FocusState() FocusState {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.active == nil {
		return FocusState{}
	}
	return FocusState{
		Active:       true,
		Running:      s.active.running,
		Subject:      s.active.subject,
		GoalID:       s.active.goalID,
		RemainingSec: s.active.remainingSec,
		PlannedSec:   s.active.plannedSec,
	}
}

// cancelTickLocked stops the single tick goroutine; callers hold timerMu.
func (s *SessionStore) cancelTickLocked() {
	if s.active != nil && s.active.running {
		close(s.active.stopCh)
		s.active.stopCh = nil
		s.active.running = false
	}
}

func (s *SessionStore) startTickLocked() {
	timer := s.active
	stopCh := make(chan struct{})
	timer.stopCh = stopCh
	timer.running = true

	go func() {
		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				if s.tickOnce(timer, stopCh) {
					return
				}
			}
		}
	}()
}

// tickOnce decrements the countdown; on expiry it writes the completed
// session. Returns true when the goroutine should exit.
func (s *SessionStore) tickOnce(timer *focusTimer, stopCh chan struct{}) bool {
	s.timerMu.Lock()
	if s.active != timer || timer.stopCh != stopCh {
		s.timerMu.Unlock()
		return true
	}
	timer.remainingSec--
	if timer.remainingSec > 0 {
		s.timerMu.Unlock()
		return false
	}
	timer.running = false
	timer.stopCh = nil
	s.active = nil
	s.timerMu.Unlock()

	s.completeFocus(timer)
	return true
}

func (s *SessionStore) completeFocus(timer *focusTimer) {
	durationMin := timer.plannedSec / 60
	if durationMin < 1 {
		durationMin = 1
	}
	if _, err := s.Record(context.Background(), timer.subject, timer.goalID, durationMin, timer.startedAt, s.now()); err != nil {
		s.log.Warn("Focus completion record failed", "owner_id", s.ownerID, "error", err)
		return
	}
	s.notify.Push(types.Notification{
		Type:    types.NotifyCelebration,
		Title:   "Focus session complete!",
		Message: fmt.Sprintf("%d minutes of focus on %s", durationMin, timer.subject),
	})
}

// Load replaces local session state with the remote collection.
func (s *SessionStore) Load(ctx context.Context) ([]types.FocusSession, error) {
	found, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionSessions,
		OwnerID:    s.ownerID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      sessionPageSize,
	})
	if err != nil {
		s.mu.Lock()
		s.sessions = nil
		s.mu.Unlock()
		s.log.Warn("Session load failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Sessions unavailable",
			Message: "Could not load your focus history right now.",
		})
		return nil, fmt.Errorf("load sessions: %w", err)
	}

	sessions := make([]types.FocusSession, 0, len(found))
	for _, d := range found {
		var session types.FocusSession
		if err := docstore.Decode(d, &session); err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}

	s.mu.Lock()
	s.sessions = sessions
	s.mu.Unlock()
	return sessions, nil
}

// Sessions returns the local snapshot, newest first.
func (s *SessionStore) Sessions() []types.FocusSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.FocusSession(nil), s.sessions...)
}
