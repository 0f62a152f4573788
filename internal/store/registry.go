package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aurevo/aurevo-server/internal/cache"
	"github.com/aurevo/aurevo-server/internal/docstore"
	"github.com/aurevo/aurevo-server/internal/logger"
)

const defaultSyncDelay = 2 * time.Second

// Set is the full store group for one signed-in user. All stores share
// the user's notification center and gamification ledger.
type Set struct {
	OwnerID       uuid.UUID
	Notifications *NotificationCenter
	Profile       *ProfileStore
	Mood          *MoodStore
	Wellness      *WellnessStore
	Tasks         *TaskStore
	Goals         *GoalStore
	Sessions      *SessionStore
	Habits        *HabitStore
	Social        *SocialStore

	hydrateOnce sync.Once
}

func newSet(docs docstore.Store, c cache.Cache, baseLog *logger.Logger, ownerID uuid.UUID, syncDelay time.Duration) *Set {
	notify := NewNotificationCenter(baseLog)
	profile := NewProfileStore(docs, c, notify, baseLog, ownerID, syncDelay)
	return &Set{
		OwnerID:       ownerID,
		Notifications: notify,
		Profile:       profile,
		Mood:          NewMoodStore(docs, profile, notify, baseLog, ownerID),
		Wellness:      NewWellnessStore(docs, profile, notify, baseLog, ownerID),
		Tasks:         NewTaskStore(docs, profile, notify, baseLog, ownerID),
		Goals:         NewGoalStore(docs, profile, notify, baseLog, ownerID),
		Sessions:      NewSessionStore(docs, profile, notify, baseLog, ownerID),
		Habits:        NewHabitStore(docs, profile, notify, baseLog, ownerID),
		Social:        NewSocialStore(docs, notify, baseLog, ownerID),
	}
}

// LoadAll hydrates every domain concurrently. Domains fail independently:
// one failed load resets that store and posts its notification without
// aborting the others, and LoadAll reports the first error seen.
func (s *Set) LoadAll(ctx context.Context) error {
	if _, err := s.Profile.Load(ctx); err != nil {
		// Without the profile the ledger has nothing to hang XP on, but
		// cached state still lets the rest hydrate.
		s.Profile.log.Warn("Profile hydration failed, continuing with cached state", "owner_id", s.OwnerID, "error", err)
	}

	// Plain group, no shared cancellation: one domain failing must not
	// abort the others mid-hydration.
	var g errgroup.Group
	g.Go(func() error { _, err := s.Mood.Load(ctx); return err })
	g.Go(func() error { _, err := s.Mood.LoadJournal(ctx); return err })
	g.Go(func() error { _, err := s.Wellness.Load(ctx); return err })
	g.Go(func() error { _, err := s.Tasks.Load(ctx); return err })
	g.Go(func() error { _, err := s.Goals.Load(ctx); return err })
	g.Go(func() error { _, err := s.Sessions.Load(ctx); return err })
	g.Go(func() error { _, err := s.Habits.Load(ctx); return err })
	g.Go(func() error { _, err := s.Social.LoadFeed(ctx); return err })
	return g.Wait()
}

// Flush forces pending debounced syncs through; call on logout.
func (s *Set) Flush(ctx context.Context) error {
	return s.Profile.Flush(ctx)
}

// Close stops background work (debounce scheduler, any focus timer).
func (s *Set) Close() {
	if s.Sessions.FocusState().Active {
		_ = s.Sessions.StopFocus()
	}
	s.Profile.Close()
}

// Registry hands out one Set per user, created lazily and reused across
// requests until evicted.
type Registry struct {
	mu        sync.Mutex
	log       *logger.Logger
	docs      docstore.Store
	cache     cache.Cache
	syncDelay time.Duration
	sets      map[uuid.UUID]*Set
}

func NewRegistry(docs docstore.Store, c cache.Cache, baseLog *logger.Logger) *Registry {
	return &Registry{
		log:       baseLog.With("store", "Registry"),
		docs:      docs,
		cache:     c,
		syncDelay: defaultSyncDelay,
		sets:      make(map[uuid.UUID]*Set),
	}
}

// ForUser returns the user's store set, building and hydrating it on
// first use. Hydration runs here rather than only in the login path: a
// still-valid token after a process restart must see remote state, not
// an empty set.
func (r *Registry) ForUser(ctx context.Context, ownerID uuid.UUID) *Set {
	r.mu.Lock()
	s, ok := r.sets[ownerID]
	if !ok {
		s = newSet(r.docs, r.cache, r.log, ownerID, r.syncDelay)
		r.sets[ownerID] = s
	}
	r.mu.Unlock()

	// Outside the registry lock: one user's slow hydration must not block
	// the others.
	s.hydrateOnce.Do(func() {
		if err := s.LoadAll(ctx); err != nil {
			r.log.Warn("Hydration incomplete, some domains start degraded", "owner_id", ownerID, "error", err)
		}
	})
	return s
}

// Evict flushes and tears down a user's set, typically on logout.
func (r *Registry) Evict(ctx context.Context, ownerID uuid.UUID) {
	r.mu.Lock()
	s, ok := r.sets[ownerID]
	delete(r.sets, ownerID)
	r.mu.Unlock()
	if !ok {
		return
	}
	if err := s.Flush(ctx); err != nil {
		r.log.Warn("Flush on evict failed", "owner_id", ownerID, "error", err)
	}
	s.Close()
}

// FlushAll flushes every live set; used at shutdown.
func (r *Registry) FlushAll(ctx context.Context) {
	r.mu.Lock()
	sets := make([]*Set, 0, len(r.sets))
	for _, s := range r.sets {
		sets = append(sets, s)
	}
	r.mu.Unlock()

	var g errgroup.Group
	for _, s := range sets {
		set := s
		g.Go(func() error {
			if err := set.Flush(ctx); err != nil {
				r.log.Warn("Flush failed", "owner_id", set.OwnerID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
