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

const wellnessHistoryDays = 30

// WellnessStore keeps one metrics record per (owner, device-local day).
// Writes find today's record and update it, inserting only when absent.
type WellnessStore struct {
	mu      sync.Mutex
	log     *logger.Logger
	docs    docstore.Store
	ledger  *ProfileStore
	notify  *NotificationCenter
	ownerID uuid.UUID

	days  []types.WellnessDailyRecord
	today *types.WellnessDailyRecord

	now func() time.Time
}

func NewWellnessStore(docs docstore.Store, ledger *ProfileStore, notify *NotificationCenter, baseLog *logger.Logger, ownerID uuid.UUID) *WellnessStore {
	return &WellnessStore{
		log:     baseLog.With("store", "WellnessStore"),
		docs:    docs,
		ledger:  ledger,
		notify:  notify,
		ownerID: ownerID,
		now:     func() time.Time { return time.Now() },
	}
}

// SetWater sets today's water total. Crossing the water goal from below
// pays the one-time bonus; oscillating above the goal without first
// dropping below it does not re-award.
func (s *WellnessStore) SetWater(ctx context.Context, ml int) (*types.WellnessDailyRecord, SyncResult, error) {
	if ml < 0 {
		return nil, SyncResult{}, fmt.Errorf("%w: water must be non-negative", apperrors.ErrInvalidArgument)
	}

	var previous int
	rec, res, err := s.upsertToday(ctx, func(r *types.WellnessDailyRecord) {
		previous = r.WaterML
		r.WaterML = ml
	})
	if err != nil {
		return nil, res, err
	}

	goal := s.ledger.WaterGoalML()
	if goal > 0 && previous < goal && ml >= goal {
		_, _, _ = s.ledger.AddXP(ctx, WaterGoalXP, "Daily water goal reached")
		_, _ = s.ledger.AddShinePoints(ctx, WaterGoalShine)
		s.ledger.MarkDailyStreak(ctx, types.StreakWellness)
		s.notify.Push(types.Notification{
			Type:    types.NotifyCelebration,
			Title:   "Hydration goal reached!",
			Message: fmt.Sprintf("%d ml today", ml),
			XP:      WaterGoalXP,
		})
	}
	return rec, res, nil
}

func (s *WellnessStore) SetCalories(ctx context.Context, calories int) (*types.WellnessDailyRecord, SyncResult, error) {
	if calories < 0 {
		return nil, SyncResult{}, fmt.Errorf("%w: calories must be non-negative", apperrors.ErrInvalidArgument)
	}
	return s.upsertToday(ctx, func(r *types.WellnessDailyRecord) { r.Calories = calories })
}

func (s *WellnessStore) SetSteps(ctx context.Context, steps int) (*types.WellnessDailyRecord, SyncResult, error) {
	if steps < 0 {
		return nil, SyncResult{}, fmt.Errorf("%w: steps must be non-negative", apperrors.ErrInvalidArgument)
	}
	return s.upsertToday(ctx, func(r *types.WellnessDailyRecord) { r.Steps = steps })
}

func (s *WellnessStore) SetSleep(ctx context.Context, hours float64) (*types.WellnessDailyRecord, SyncResult, error) {
	if hours < 0 || hours > 24 {
		return nil, SyncResult{}, fmt.Errorf("%w: sleep hours must be within 0-24", apperrors.ErrInvalidArgument)
	}
	return s.upsertToday(ctx, func(r *types.WellnessDailyRecord) { r.SleepHrs = hours })
}

// upsertToday locates today's record (cached, then remote via the two-tier
// fetch), applies the mutation locally first, then writes. An update that
// fails remotely keeps the optimistic local value.
func (s *WellnessStore) upsertToday(ctx context.Context, mutate func(*types.WellnessDailyRecord)) (*types.WellnessDailyRecord, SyncResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := dayKey(s.now())
	if s.today == nil || s.today.Day != today {
		existing, err := s.findDayLocked(ctx, today)
		if err != nil {
			return nil, SyncResult{}, err
		}
		s.today = existing
	}

	if s.today == nil {
		rec := types.WellnessDailyRecord{
			OwnerID: s.ownerID,
			Day:     today,
		}
		mutate(&rec)
		fields, err := docstore.Encode(rec)
		if err != nil {
			return nil, SyncResult{}, err
		}
		doc, err := s.docs.Create(ctx, CollectionWellnessDays, s.ownerID, fields)
		if err != nil {
			s.log.Warn("Wellness insert failed", "owner_id", s.ownerID, "day", today, "error", err)
			s.notifyWriteFailure()
			return nil, SyncResult{}, fmt.Errorf("save daily record: %w", err)
		}
		var saved types.WellnessDailyRecord
		if err := docstore.Decode(*doc, &saved); err != nil {
			return nil, SyncResult{}, err
		}
		s.today = &saved
		s.days = append([]types.WellnessDailyRecord{saved}, s.days...)
		out := saved
		return &out, committed(), nil
	}

	// Optimistic local update; remote failure keeps it.
	mutate(s.today)
	s.today.UpdatedAt = s.now().UTC()
	s.patchDayListLocked(*s.today)

	fields, err := docstore.Encode(*s.today)
	if err != nil {
		return nil, SyncResult{}, err
	}
	out := *s.today
	if err := s.docs.Update(ctx, CollectionWellnessDays, s.today.ID, fields); err != nil {
		s.log.Warn("Wellness update failed, local state is ahead", "owner_id", s.ownerID, "day", today, "error", err)
		s.notifyWriteFailure()
		return &out, failedLocalAhead(err), nil
	}
	return &out, committed(), nil
}

func (s *WellnessStore) findDayLocked(ctx context.Context, day string) (*types.WellnessDailyRecord, error) {
	found, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionWellnessDays,
		OwnerID:    s.ownerID,
		Filters:    []docstore.Filter{{Field: "day", Value: day}},
		OrderBy:    "updated_at",
		Descending: true,
		Limit:      1,
	})
	if err != nil {
		return nil, fmt.Errorf("find daily record: %w", err)
	}
	if len(found) == 0 {
		return nil, nil
	}
	var rec types.WellnessDailyRecord
	if err := docstore.Decode(found[0], &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *WellnessStore) patchDayListLocked(rec types.WellnessDailyRecord) {
	for i := range s.days {
		if s.days[i].ID == rec.ID {
			s.days[i] = rec
			return
		}
	}
	s.days = append([]types.WellnessDailyRecord{rec}, s.days...)
}

func (s *WellnessStore) notifyWriteFailure() {
	s.notify.Push(types.Notification{
		Type:    types.NotifySystem,
		Title:   "Could not save wellness data",
		Message: "Your latest change is kept locally and may not be synced.",
	})
}

// Load replaces local history with the most recent day records.
func (s *WellnessStore) Load(ctx context.Context) ([]types.WellnessDailyRecord, error) {
	found, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionWellnessDays,
		OwnerID:    s.ownerID,
		OrderBy:    "day",
		Descending: true,
		Limit:      wellnessHistoryDays,
	})
	if err != nil {
		s.mu.Lock()
		s.days = nil
		s.today = nil
		s.mu.Unlock()
		s.log.Warn("Wellness load failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Wellness history unavailable",
			Message: "Could not load your wellness history right now.",
		})
		return nil, fmt.Errorf("load wellness history: %w", err)
	}

	days := make([]types.WellnessDailyRecord, 0, len(found))
	for _, d := range found {
		var rec types.WellnessDailyRecord
		if err := docstore.Decode(d, &rec); err != nil {
			return nil, err
		}
		days = append(days, rec)
	}

	s.mu.Lock()
	s.days = days
	today := dayKey(s.now())
	s.today = nil
	for i := range days {
		if days[i].Day == today {
			rec := days[i]
			s.today = &rec
			break
		}
	}
	s.mu.Unlock()
	return days, nil
}

// Days returns the local snapshot, newest first.
func (s *WellnessStore) Days() []types.WellnessDailyRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.WellnessDailyRecord(nil), s.days...)
}
