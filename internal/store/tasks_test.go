package store

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
	"github.com/aurevo/aurevo-server/internal/types"
)

func newTaskEnv(t *testing.T) (*testEnv, *TaskStore) {
	t.Helper()
	env := newTestEnv(t)
	if _, err := env.profile.Load(context.Background()); err != nil {
		t.Fatalf("profile load: %v", err)
	}
	tasks := NewTaskStore(env.docs, env.profile, env.notify, env.log, env.ownerID)
	return env, tasks
}

func TestTaskCreateValidatesAndDefaults(t *testing.T) {
	_, tasks := newTaskEnv(t)
	ctx := context.Background()

	if _, err := tasks.Create(ctx, TaskInput{Title: "   "}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("blank title: want ErrInvalidArgument, got %v", err)
	}

	task, err := tasks.Create(ctx, TaskInput{Title: "  read paper  "})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Title != "read paper" {
		t.Fatalf("title: want %q got %q", "read paper", task.Title)
	}
	if task.Priority != types.PriorityMedium {
		t.Fatalf("default priority: want %q got %q", types.PriorityMedium, task.Priority)
	}
	if task.Completed {
		t.Fatalf("new task must start incomplete")
	}
}

func TestTaskCreateFailureLandsNowhere(t *testing.T) {
	env, tasks := newTaskEnv(t)
	ctx := context.Background()

	env.docs.FailCreates = errors.New("backend down")
	if _, err := tasks.Create(ctx, TaskInput{Title: "doomed"}); err == nil {
		t.Fatalf("create should surface the write error")
	}
	if got := len(tasks.Tasks()); got != 0 {
		t.Fatalf("local tasks after failed create: want=0 got=%d", got)
	}
	if got := countByType(env.notify, "system"); got != 1 {
		t.Fatalf("system notifications: want=1 got=%d", got)
	}
}

func TestTaskToggleCompleteAwardsOnce(t *testing.T) {
	env, tasks := newTaskEnv(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, TaskInput{Title: "write tests"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	base := env.profile.Profile().XP

	done, res, err := tasks.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if res.Status != SyncCommitted {
		t.Fatalf("sync status: want=%q got=%q", SyncCommitted, res.Status)
	}
	if !done.Completed || done.CompletedAt == nil {
		t.Fatalf("task should be completed with a timestamp")
	}
	if got := env.profile.Profile().XP - base; got != XPTaskDone {
		t.Fatalf("completion xp: want=%d got=%d", XPTaskDone, got)
	}

	// Un-completing and re-completing does not pay again.
	if _, _, err := tasks.ToggleComplete(ctx, task.ID); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	again, _, err := tasks.ToggleComplete(ctx, task.ID)
	if err != nil {
		t.Fatalf("toggle on: %v", err)
	}
	if !again.Completed {
		t.Fatalf("task should be completed again")
	}
	if got := env.profile.Profile().XP - base; got != XPTaskDone {
		t.Fatalf("xp after re-completion: want=%d got=%d", XPTaskDone, got)
	}
}

func TestTaskUpdateKeepsLocalOnSyncFailure(t *testing.T) {
	env, tasks := newTaskEnv(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, TaskInput{Title: "old title"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	env.docs.FailUpdates = errors.New("timeout")
	newTitle := "new title"
	updated, res, err := tasks.Update(ctx, task.ID, TaskPatch{Title: &newTitle})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Status != SyncFailedLocalAhead {
		t.Fatalf("sync status: want=%q got=%q", SyncFailedLocalAhead, res.Status)
	}
	if updated.Title != "new title" {
		t.Fatalf("local title after failed sync: want %q got %q", "new title", updated.Title)
	}
	if got := tasks.Tasks()[0].Title; got != "new title" {
		t.Fatalf("snapshot title: want %q got %q", "new title", got)
	}

	// The next load reconciles to the remote copy, which never saw the patch.
	env.docs.ClearFailures()
	loaded, err := tasks.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 1 || loaded[0].Title != "old title" {
		t.Fatalf("reconciled title: want %q got %+v", "old title", loaded)
	}
}

func TestTaskDeleteIsLocalFirst(t *testing.T) {
	env, tasks := newTaskEnv(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, TaskInput{Title: "to delete"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	env.docs.FailDeletes = errors.New("timeout")
	res, err := tasks.Delete(ctx, task.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Status != SyncFailedLocalAhead {
		t.Fatalf("sync status: want=%q got=%q", SyncFailedLocalAhead, res.Status)
	}
	if got := len(tasks.Tasks()); got != 0 {
		t.Fatalf("local tasks after delete: want=0 got=%d", got)
	}

	if _, err := tasks.Delete(ctx, task.ID); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}

func TestTaskLoadOrdersNewestFirst(t *testing.T) {
	env, tasks := newTaskEnv(t)
	ctx := context.Background()

	now := env.profile.now()
	env.setClock(&now)
	for _, title := range []string{"first", "second", "third"} {
		if _, err := tasks.Create(ctx, TaskInput{Title: title}); err != nil {
			t.Fatalf("create %q: %v", title, err)
		}
		now = now.Add(time.Minute)
	}

	loaded, err := tasks.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(loaded) != len(want) {
		t.Fatalf("loaded: want=%d got=%d", len(want), len(loaded))
	}
	for i, title := range want {
		if loaded[i].Title != title {
			t.Fatalf("loaded[%d]: want %q got %q", i, title, loaded[i].Title)
		}
	}
}
