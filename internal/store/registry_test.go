package store

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/cache"
	"github.com/aurevo/aurevo-server/internal/docstore"
)

func newRegistryEnv(t *testing.T) (*docstore.MemoryStore, *Registry) {
	t.Helper()
	docs := docstore.NewMemoryStore(fullIndexes())
	r := NewRegistry(docs, cache.NewMemoryCache(), testLogger(t))
	return docs, r
}

func TestRegistryForUserReusesSet(t *testing.T) {
	_, r := newRegistryEnv(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	setA := r.ForUser(ctx, alice)
	if r.ForUser(ctx, alice) != setA {
		t.Fatalf("same user must get the same set back")
	}
	if r.ForUser(ctx, bob) == setA {
		t.Fatalf("different users must get different sets")
	}
	if setA.OwnerID != alice {
		t.Fatalf("owner: want=%s got=%s", alice, setA.OwnerID)
	}

	t.Cleanup(func() {
		r.Evict(context.Background(), alice)
		r.Evict(context.Background(), bob)
	})
}

func TestSetLoadAllFailsDomainsIndependently(t *testing.T) {
	docs, r := newRegistryEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	set := r.ForUser(ctx, userID)
	t.Cleanup(func() { r.Evict(ctx, userID) })

	// Seed one task so there is local state to lose.
	if _, err := set.Tasks.Create(ctx, TaskInput{Title: "stale"}); err != nil {
		t.Fatalf("seed task: %v", err)
	}

	docs.FailQueries = errors.New("backend down")
	if err := set.LoadAll(ctx); err == nil {
		t.Fatalf("LoadAll should report the hydration failure")
	}
	docs.ClearFailures()

	// Every domain reset itself and queued its own notification instead
	// of aborting the others.
	if got := len(set.Tasks.Tasks()); got != 0 {
		t.Fatalf("tasks after failed hydration: want=0 got=%d", got)
	}
	if got := countByType(set.Notifications, "system"); got < 2 {
		t.Fatalf("system notifications from independent failures: want>=2 got=%d", got)
	}

	// A clean backend hydrates again.
	if err := set.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll after recovery: %v", err)
	}
	if got := len(set.Tasks.Tasks()); got != 1 {
		t.Fatalf("tasks after recovery: want=1 got=%d", got)
	}
}

func TestRegistryEvictFlushesPendingState(t *testing.T) {
	_, r := newRegistryEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	set := r.ForUser(ctx, userID)
	if _, _, err := set.Profile.AddXP(ctx, 120, "test"); err != nil {
		t.Fatalf("add xp: %v", err)
	}

	// Evict flushes the debounced sync before tearing the set down.
	r.Evict(ctx, userID)

	fresh := r.ForUser(ctx, userID)
	t.Cleanup(func() { r.Evict(ctx, userID) })
	profile, err := fresh.Profile.Load(ctx)
	if err != nil {
		t.Fatalf("fresh load: %v", err)
	}
	if profile.XP != 120 {
		t.Fatalf("xp after evict+reload: want=120 got=%d", profile.XP)
	}
}

func TestRegistryHydratesSetBuiltOutsideLogin(t *testing.T) {
	docs, r := newRegistryEnv(t)
	ctx := context.Background()
	userID := uuid.New()

	set := r.ForUser(ctx, userID)
	goal, err := set.Goals.Create(ctx, GoalInput{Title: "survive a restart"})
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	r.Evict(ctx, userID)

	// A fresh registry over the same backend stands in for a restarted
	// process handling a request on a still-valid token: no login ran,
	// so ForUser itself must hydrate.
	r2 := NewRegistry(docs, cache.NewMemoryCache(), testLogger(t))
	fresh := r2.ForUser(ctx, userID)
	t.Cleanup(func() { r2.Evict(ctx, userID) })

	goals := fresh.Goals.Goals()
	if len(goals) != 1 || goals[0].ID != goal.ID {
		t.Fatalf("hydrated goals: want [%s] got %v", goal.ID, goals)
	}
	updated, _, err := fresh.Goals.UpdateProgress(ctx, goal.ID, 30)
	if err != nil {
		t.Fatalf("mutating a remote goal through a fresh set: %v", err)
	}
	if updated.Progress != 30 {
		t.Fatalf("progress: want=30 got=%d", updated.Progress)
	}
}
