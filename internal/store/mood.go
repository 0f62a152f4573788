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

// moodCooldown is the minimum interval between two accepted mood logs for
// the same owner.
const moodCooldown = time.Hour

const moodPageSize = 50

type MoodInput struct {
	Mood      int      `json:"mood"`
	Intensity int      `json:"intensity"`
	Notes     string   `json:"notes"`
	Tags      []string `json:"tags"`
}

// MoodStore handles the append-only mood log and the journal.
type MoodStore struct {
	mu      sync.Mutex
	log     *logger.Logger
	docs    docstore.Store
	ledger  *ProfileStore
	notify  *NotificationCenter
	ownerID uuid.UUID

	logs    []types.MoodLog
	journal []types.JournalEntry
	latest  *time.Time

	now func() time.Time
}

func NewMoodStore(docs docstore.Store, ledger *ProfileStore, notify *NotificationCenter, baseLog *logger.Logger, ownerID uuid.UUID) *MoodStore {
	return &MoodStore{
		log:     baseLog.With("store", "MoodStore"),
		docs:    docs,
		ledger:  ledger,
		notify:  notify,
		ownerID: ownerID,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Log validates and appends a mood entry. Entries inside the cooldown
// window are rejected before any write, with the remaining wait reported
// rounded up to whole minutes.
func (s *MoodStore) Log(ctx context.Context, in MoodInput) (*types.MoodLog, error) {
	if in.Mood < 1 || in.Mood > 5 {
		return nil, fmt.Errorf("%w: mood must be between 1 and 5", apperrors.ErrInvalidArgument)
	}
	if in.Intensity < 1 || in.Intensity > 5 {
		return nil, fmt.Errorf("%w: intensity must be between 1 and 5", apperrors.ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.latestTimestampLocked(ctx)
	if err != nil {
		return nil, fmt.Errorf("check mood cooldown: %w", err)
	}
	if last != nil {
		elapsed := s.now().Sub(*last)
		if elapsed < moodCooldown {
			return nil, &CooldownError{Remaining: moodCooldown - elapsed}
		}
	}

	fields, err := docstore.Encode(types.MoodLog{
		OwnerID:   s.ownerID,
		Mood:      in.Mood,
		Intensity: in.Intensity,
		Notes:     in.Notes,
		Tags:      in.Tags,
	})
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Create(ctx, CollectionMoodLogs, s.ownerID, fields)
	if err != nil {
		s.log.Warn("Mood log write failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Could not save mood",
			Message: "Your mood entry was not saved. Please try again.",
		})
		return nil, fmt.Errorf("save mood log: %w", err)
	}

	var entry types.MoodLog
	if err := docstore.Decode(*doc, &entry); err != nil {
		return nil, err
	}
	s.logs = append([]types.MoodLog{entry}, s.logs...)
	s.latest = &entry.CreatedAt

	_, _, _ = s.ledger.AddXP(ctx, XPMoodLogged, "Mood logged")
	s.ledger.MarkDailyStreak(ctx, types.StreakMood)
	return &entry, nil
}

// latestTimestampLocked prefers the in-memory latest entry and falls back
// to a remote single-row query through the two-tier fetch.
func (s *MoodStore) latestTimestampLocked(ctx context.Context) (*time.Time, error) {
	if s.latest != nil {
		return s.latest, nil
	}
	found, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionMoodLogs,
		OwnerID:    s.ownerID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	ts := found[0].CreatedAt
	s.latest = &ts
	return s.latest, nil
}

// Load replaces local mood state with the remote collection, newest first.
// When both query tiers fail the local list resets to empty rather than
// keeping stale entries.
func (s *MoodStore) Load(ctx context.Context) ([]types.MoodLog, error) {
	found, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionMoodLogs,
		OwnerID:    s.ownerID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      moodPageSize,
	})
	if err != nil {
		s.mu.Lock()
		s.logs = nil
		s.latest = nil
		s.mu.Unlock()
		s.log.Warn("Mood load failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Mood history unavailable",
			Message: "Could not load your mood history right now.",
		})
		return nil, fmt.Errorf("load mood logs: %w", err)
	}

	logs := make([]types.MoodLog, 0, len(found))
	for _, d := range found {
		var entry types.MoodLog
		if err := docstore.Decode(d, &entry); err != nil {
			return nil, err
		}
		logs = append(logs, entry)
	}

	s.mu.Lock()
	s.logs = logs
	if len(logs) > 0 {
		ts := logs[0].CreatedAt
		s.latest = &ts
	} else {
		s.latest = nil
	}
	s.mu.Unlock()
	return logs, nil
}

// Logs returns the local snapshot, newest first.
func (s *MoodStore) Logs() []types.MoodLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.MoodLog(nil), s.logs...)
}

// AddJournal appends a journal entry; no cooldown applies.
func (s *MoodStore) AddJournal(ctx context.Context, title, content string, tags []string) (*types.JournalEntry, error) {
	if content == "" {
		return nil, fmt.Errorf("%w: journal content required", apperrors.ErrInvalidArgument)
	}

	fields, err := docstore.Encode(types.JournalEntry{
		OwnerID: s.ownerID,
		Title:   title,
		Content: content,
		Tags:    tags,
	})
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Create(ctx, CollectionJournal, s.ownerID, fields)
	if err != nil {
		s.log.Warn("Journal write failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Could not save journal entry",
			Message: "Your entry was not saved. Please try again.",
		})
		return nil, fmt.Errorf("save journal entry: %w", err)
	}

	var entry types.JournalEntry
	if err := docstore.Decode(*doc, &entry); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.journal = append([]types.JournalEntry{entry}, s.journal...)
	s.mu.Unlock()

	_, _, _ = s.ledger.AddXP(ctx, XPJournalEntry, "Journal entry added")
	return &entry, nil
}

// LoadJournal mirrors Load for journal entries.
func (s *MoodStore) LoadJournal(ctx context.Context) ([]types.JournalEntry, error) {
	found, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionJournal,
		OwnerID:    s.ownerID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      moodPageSize,
	})
	if err != nil {
		s.mu.Lock()
		s.journal = nil
		s.mu.Unlock()
		s.log.Warn("Journal load failed", "owner_id", s.ownerID, "error", err)
		return nil, fmt.Errorf("load journal: %w", err)
	}

	entries := make([]types.JournalEntry, 0, len(found))
	for _, d := range found {
		var entry types.JournalEntry
		if err := docstore.Decode(d, &entry); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	s.mu.Lock()
	s.journal = entries
	s.mu.Unlock()
	return entries, nil
}

// Journal returns the local snapshot, newest first.
func (s *MoodStore) Journal() []types.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.JournalEntry(nil), s.journal...)
}
