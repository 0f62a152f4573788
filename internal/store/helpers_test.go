package store

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/cache"
	"github.com/aurevo/aurevo-server/internal/docstore"
	"github.com/aurevo/aurevo-server/internal/logger"
)

// fullIndexes declares every ordering the stores use, so tests exercise
// the indexed path unless they strip entries deliberately.
func fullIndexes() docstore.Indexes {
	return docstore.Indexes{
		CollectionProfiles:     {"created_at"},
		CollectionMoodLogs:     {"created_at"},
		CollectionJournal:      {"created_at"},
		CollectionWellnessDays: {"updated_at", "day"},
		CollectionTasks:        {"created_at"},
		CollectionGoals:        {"created_at"},
		CollectionSessions:     {"created_at"},
		CollectionHabits:       {"created_at"},
		CollectionHabitLogs:    {"created_at"},
		CollectionPosts:        {"created_at"},
		CollectionComments:     {"created_at"},
	}
}

type testEnv struct {
	docs    *docstore.MemoryStore
	cache   *cache.MemoryCache
	log     *logger.Logger
	notify  *NotificationCenter
	profile *ProfileStore
	ownerID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	docs := docstore.NewMemoryStore(fullIndexes())
	c := cache.NewMemoryCache()
	notify := NewNotificationCenter(log)
	ownerID := uuid.New()
	profile := NewProfileStore(docs, c, notify, log, ownerID, 10*time.Millisecond)
	t.Cleanup(profile.Close)
	return &testEnv{
		docs:    docs,
		cache:   c,
		log:     log,
		notify:  notify,
		profile: profile,
		ownerID: ownerID,
	}
}

// setClock pins the profile store and doc store clocks to a mutable time.
func (env *testEnv) setClock(now *time.Time) {
	env.profile.now = func() time.Time { return *now }
	env.docs.Now = func() time.Time { return *now }
}

func profileQuery(env *testEnv) docstore.Query {
	return docstore.Query{Collection: CollectionProfiles, OwnerID: env.ownerID}
}

func countByType(notify *NotificationCenter, typ string) int {
	count := 0
	for _, n := range notify.List(NotificationFilter{}) {
		if string(n.Type) == typ {
			count++
		}
	}
	return count
}
