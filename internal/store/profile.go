package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/cache"
	"github.com/aurevo/aurevo-server/internal/docstore"
	"github.com/aurevo/aurevo-server/internal/logger"
	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
	"github.com/aurevo/aurevo-server/internal/types"
)

// Avatars granted automatically on reaching a level.
var levelAvatars = map[int]string{
	2:  "ember",
	3:  "river",
	5:  "aurora",
	7:  "sage",
	10: "nova",
}

// ProfileStore owns the user profile document and the gamification ledger
// layered on top of it: XP, level, shine points, and per-category streaks.
// Every ledger mutation persists the whitelisted subset to the durable
// cache synchronously and schedules a debounced remote sync.
type ProfileStore struct {
	mu      sync.Mutex
	log     *logger.Logger
	docs    docstore.Store
	cache   cache.Cache
	notify  *NotificationCenter
	ownerID uuid.UUID

	profile types.UserProfile
	docID   uuid.UUID
	dirty   bool

	sched *syncScheduler
	now   func() time.Time
}

// profileCacheBlob is the whitelisted subset persisted locally so a fresh
// session paints before the remote profile loads.
type profileCacheBlob struct {
	Language             string         `json:"language"`
	DarkMode             bool           `json:"dark_mode"`
	NotificationsEnabled bool           `json:"notifications_enabled"`
	XP                   int            `json:"xp"`
	Level                int            `json:"level"`
	ShinePoints          int            `json:"shine_points"`
	Streaks              map[string]int `json:"streaks"`
	CurrentAvatar        string         `json:"current_avatar"`
}

func profileCacheKey(ownerID uuid.UUID) string {
	return "profile-cache:" + ownerID.String()
}

func NewProfileStore(docs docstore.Store, c cache.Cache, notify *NotificationCenter, baseLog *logger.Logger, ownerID uuid.UUID, syncDelay time.Duration) *ProfileStore {
	ps := &ProfileStore{
		log:     baseLog.With("store", "ProfileStore"),
		docs:    docs,
		cache:   c,
		notify:  notify,
		ownerID: ownerID,
		profile: types.DefaultProfile(ownerID),
		now:     func() time.Time { return time.Now().UTC() },
	}
	ps.sched = newSyncScheduler(ps.log, syncDelay, ps.syncRemote)
	ps.rehydrate(context.Background())
	return ps
}

// rehydrate applies the cached subset before the remote profile is known.
// The remote load overwrites these values; remote is authoritative.
func (ps *ProfileStore) rehydrate(ctx context.Context) {
	raw, ok, err := ps.cache.Get(ctx, profileCacheKey(ps.ownerID))
	if err != nil {
		ps.log.Warn("Profile cache read failed", "error", err)
		return
	}
	if !ok {
		return
	}
	var blob profileCacheBlob
	if err := json.Unmarshal([]byte(raw), &blob); err != nil {
		ps.log.Warn("Profile cache blob is corrupt, ignoring", "error", err)
		return
	}
	ps.mu.Lock()
	defer ps.mu.Unlock()
	ps.profile.Language = blob.Language
	ps.profile.DarkMode = blob.DarkMode
	ps.profile.NotificationsEnabled = blob.NotificationsEnabled
	ps.profile.XP = blob.XP
	ps.profile.Level = blob.Level
	ps.profile.ShinePoints = blob.ShinePoints
	if blob.Streaks != nil {
		ps.profile.Streaks = blob.Streaks
	}
	if blob.CurrentAvatar != "" {
		ps.profile.CurrentAvatar = blob.CurrentAvatar
	}
}

// persistCacheLocked writes the whitelisted subset; callers hold ps.mu.
func (ps *ProfileStore) persistCacheLocked(ctx context.Context) {
	blob := profileCacheBlob{
		Language:             ps.profile.Language,
		DarkMode:             ps.profile.DarkMode,
		NotificationsEnabled: ps.profile.NotificationsEnabled,
		XP:                   ps.profile.XP,
		Level:                ps.profile.Level,
		ShinePoints:          ps.profile.ShinePoints,
		Streaks:              ps.profile.Streaks,
		CurrentAvatar:        ps.profile.CurrentAvatar,
	}
	raw, err := json.Marshal(blob)
	if err != nil {
		ps.log.Warn("Profile cache marshal failed", "error", err)
		return
	}
	if err := ps.cache.Set(ctx, profileCacheKey(ps.ownerID), string(raw)); err != nil {
		ps.log.Warn("Profile cache write failed", "error", err)
	}
}

// Load fetches the remote profile, creating the default document on first
// sign-in. Remote values overwrite anything rehydrated from the cache.
func (ps *ProfileStore) Load(ctx context.Context) (types.UserProfile, error) {
	found, err := ps.docs.Query(ctx, docstore.Query{
		Collection: CollectionProfiles,
		OwnerID:    ps.ownerID,
		Limit:      1,
	})
	if err != nil {
		ps.log.Warn("Profile load failed, keeping cached state", "owner_id", ps.ownerID, "error", err)
		return ps.Profile(), fmt.Errorf("load profile: %w", err)
	}

	if len(found) == 0 {
		return ps.createRemote(ctx)
	}

	var remote types.UserProfile
	if err := docstore.Decode(found[0], &remote); err != nil {
		return ps.Profile(), fmt.Errorf("decode profile: %w", err)
	}
	if remote.Streaks == nil {
		remote.Streaks = map[string]int{}
	}
	if remote.StreakDays == nil {
		remote.StreakDays = map[string]string{}
	}

	ps.mu.Lock()
	ps.profile = remote
	ps.docID = found[0].ID
	ps.dirty = false
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	return remote, nil
}

func (ps *ProfileStore) createRemote(ctx context.Context) (types.UserProfile, error) {
	ps.mu.Lock()
	snapshot := ps.snapshotLocked()
	ps.mu.Unlock()

	fields, err := docstore.Encode(snapshot)
	if err != nil {
		return snapshot, err
	}
	doc, err := ps.docs.Create(ctx, CollectionProfiles, ps.ownerID, fields)
	if err != nil {
		ps.mu.Lock()
		ps.dirty = true
		ps.mu.Unlock()
		ps.log.Warn("Profile create failed", "owner_id", ps.ownerID, "error", err)
		return snapshot, fmt.Errorf("create profile: %w", err)
	}

	ps.mu.Lock()
	ps.docID = doc.ID
	ps.profile.ID = doc.ID
	ps.profile.CreatedAt = doc.CreatedAt
	ps.profile.UpdatedAt = doc.UpdatedAt
	ps.dirty = false
	snapshot = ps.snapshotLocked()
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	return snapshot, nil
}

func (ps *ProfileStore) snapshotLocked() types.UserProfile {
	p := ps.profile
	p.Streaks = make(map[string]int, len(ps.profile.Streaks))
	for k, v := range ps.profile.Streaks {
		p.Streaks[k] = v
	}
	p.StreakDays = make(map[string]string, len(ps.profile.StreakDays))
	for k, v := range ps.profile.StreakDays {
		p.StreakDays[k] = v
	}
	p.UnlockedAvatars = append([]string(nil), ps.profile.UnlockedAvatars...)
	return p
}

// Profile returns a snapshot of current local state.
func (ps *ProfileStore) Profile() types.UserProfile {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.snapshotLocked()
}

// Dirty reports whether local state is ahead of the remote document.
func (ps *ProfileStore) Dirty() bool {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.dirty
}

// AddXP applies a non-negative XP delta, re-derives the level, pays the
// level-up shine bonus when a 1000-XP boundary is crossed, and schedules a
// debounced remote sync. Returns the new XP total and level.
func (ps *ProfileStore) AddXP(ctx context.Context, points int, reason string) (int, int, error) {
	if points < 0 {
		return 0, 0, fmt.Errorf("%w: xp delta must be non-negative", apperrors.ErrInvalidArgument)
	}

	ps.mu.Lock()
	oldLevel := ps.profile.Level
	ps.profile.XP += points
	newLevel := Level(ps.profile.XP)
	ps.profile.Level = newLevel
	leveledUp := newLevel > oldLevel
	var shineBonus int
	if leveledUp {
		shineBonus = newLevel * levelShineFactor
		ps.profile.ShinePoints += shineBonus
		if avatar, ok := levelAvatars[newLevel]; ok {
			ps.unlockAvatarLocked(avatar)
		}
	}
	ps.persistCacheLocked(ctx)
	xp := ps.profile.XP
	ps.mu.Unlock()

	if points > 0 && reason != "" {
		ps.notify.Push(types.Notification{
			Type:    types.NotifyAchievement,
			Title:   reason,
			Message: fmt.Sprintf("+%d XP", points),
			XP:      points,
		})
	}
	if leveledUp {
		// A level-up gets its own celebration, distinct from the plain
		// XP notification.
		ps.notify.Push(types.Notification{
			Type:    types.NotifyCelebration,
			Title:   fmt.Sprintf("Level %d reached!", newLevel),
			Message: fmt.Sprintf("+%d shine points", shineBonus),
			XP:      points,
		})
	}

	ps.sched.Schedule()
	return xp, newLevel, nil
}

// AddShinePoints adds bonus currency directly; no derived effects.
func (ps *ProfileStore) AddShinePoints(ctx context.Context, points int) (int, error) {
	if points < 0 {
		return 0, fmt.Errorf("%w: shine delta must be non-negative", apperrors.ErrInvalidArgument)
	}
	ps.mu.Lock()
	ps.profile.ShinePoints += points
	total := ps.profile.ShinePoints
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	ps.sched.Schedule()
	return total, nil
}

// MarkDailyStreak advances a category streak at most once per device-local
// day: consecutive days increment, a gap resets to 1. Returns the new
// streak value.
func (ps *ProfileStore) MarkDailyStreak(ctx context.Context, category string) int {
	today := dayKey(ps.now())
	yesterday := dayKey(ps.now().AddDate(0, 0, -1))

	ps.mu.Lock()
	last := ps.profile.StreakDays[category]
	switch last {
	case today:
		// Already counted today.
	case yesterday:
		ps.profile.Streaks[category]++
		ps.profile.StreakDays[category] = today
	default:
		ps.profile.Streaks[category] = 1
		ps.profile.StreakDays[category] = today
	}
	value := ps.profile.Streaks[category]
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()

	ps.sched.Schedule()
	return value
}

// SetStreakIfHigher raises a category streak counter to value; used by
// habits, where the per-habit streak is authoritative.
func (ps *ProfileStore) SetStreakIfHigher(ctx context.Context, category string, value int) {
	ps.mu.Lock()
	if value > ps.profile.Streaks[category] {
		ps.profile.Streaks[category] = value
		ps.profile.StreakDays[category] = dayKey(ps.now())
	}
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	ps.sched.Schedule()
}

func (ps *ProfileStore) SetLanguage(ctx context.Context, language string) {
	ps.mu.Lock()
	ps.profile.Language = language
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	ps.sched.Schedule()
}

func (ps *ProfileStore) SetDarkMode(ctx context.Context, enabled bool) {
	ps.mu.Lock()
	ps.profile.DarkMode = enabled
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	ps.sched.Schedule()
}

func (ps *ProfileStore) SetNotificationsEnabled(ctx context.Context, enabled bool) {
	ps.mu.Lock()
	ps.profile.NotificationsEnabled = enabled
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	ps.sched.Schedule()
}

// SetWellnessGoals updates the daily metric targets. Zero values keep the
// existing goal.
func (ps *ProfileStore) SetWellnessGoals(ctx context.Context, waterML, calories, steps int, sleepHrs float64) {
	ps.mu.Lock()
	if waterML > 0 {
		ps.profile.WaterGoalML = waterML
	}
	if calories > 0 {
		ps.profile.CalorieGoal = calories
	}
	if steps > 0 {
		ps.profile.StepGoal = steps
	}
	if sleepHrs > 0 {
		ps.profile.SleepGoalHrs = sleepHrs
	}
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	ps.sched.Schedule()
}

func (ps *ProfileStore) WaterGoalML() int {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	return ps.profile.WaterGoalML
}

func (ps *ProfileStore) unlockAvatarLocked(avatar string) {
	for _, a := range ps.profile.UnlockedAvatars {
		if a == avatar {
			return
		}
	}
	ps.profile.UnlockedAvatars = append(ps.profile.UnlockedAvatars, avatar)
}

// SetCurrentAvatar switches to an already-unlocked avatar.
func (ps *ProfileStore) SetCurrentAvatar(ctx context.Context, avatar string) error {
	ps.mu.Lock()
	unlocked := false
	for _, a := range ps.profile.UnlockedAvatars {
		if a == avatar {
			unlocked = true
			break
		}
	}
	if !unlocked {
		ps.mu.Unlock()
		return fmt.Errorf("%w: avatar %q not unlocked", apperrors.ErrInvalidArgument, avatar)
	}
	ps.profile.CurrentAvatar = avatar
	ps.persistCacheLocked(ctx)
	ps.mu.Unlock()
	ps.sched.Schedule()
	return nil
}

// syncRemote is the debounced write: a blind overwrite of the whole
// profile document with the current local state.
func (ps *ProfileStore) syncRemote(ctx context.Context) error {
	ps.mu.Lock()
	snapshot := ps.snapshotLocked()
	docID := ps.docID
	ps.mu.Unlock()

	fields, err := docstore.Encode(snapshot)
	if err != nil {
		return err
	}

	if docID == uuid.Nil {
		doc, err := ps.docs.Create(ctx, CollectionProfiles, ps.ownerID, fields)
		if err != nil {
			ps.markSyncFailure(err)
			return err
		}
		ps.mu.Lock()
		ps.docID = doc.ID
		ps.profile.ID = doc.ID
		ps.dirty = false
		ps.mu.Unlock()
		return nil
	}

	if err := ps.docs.Update(ctx, CollectionProfiles, docID, fields); err != nil {
		ps.markSyncFailure(err)
		return err
	}
	ps.mu.Lock()
	ps.dirty = false
	ps.mu.Unlock()
	return nil
}

func (ps *ProfileStore) markSyncFailure(err error) {
	ps.mu.Lock()
	ps.dirty = true
	ps.mu.Unlock()
	ps.log.Warn("Profile sync failed, local state is ahead of remote", "owner_id", ps.ownerID, "error", err)
	ps.notify.Push(types.Notification{
		Type:    types.NotifySystem,
		Title:   "Sync failed",
		Message: "Your progress is saved locally and will retry on next sync.",
	})
}

// Flush runs any pending sync immediately; call before logout/shutdown.
func (ps *ProfileStore) Flush(ctx context.Context) error {
	return ps.sched.Flush(ctx)
}

// Close stops the debounce scheduler.
func (ps *ProfileStore) Close() {
	ps.sched.Close()
}
