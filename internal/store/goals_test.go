package store

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/aurevo/aurevo-server/internal/pkg/errors"
	"github.com/aurevo/aurevo-server/internal/types"
)

func newGoalEnv(t *testing.T) (*testEnv, *GoalStore) {
	t.Helper()
	env := newTestEnv(t)
	if _, err := env.profile.Load(context.Background()); err != nil {
		t.Fatalf("profile load: %v", err)
	}
	goals := NewGoalStore(env.docs, env.profile, env.notify, env.log, env.ownerID)
	return env, goals
}

func TestGoalCreateAwardsXP(t *testing.T) {
	env, goals := newGoalEnv(t)
	ctx := context.Background()

	if _, err := goals.Create(ctx, GoalInput{Title: " "}); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("blank title: want ErrInvalidArgument, got %v", err)
	}

	base := env.profile.Profile().XP
	goal, err := goals.Create(ctx, GoalInput{Title: "learn sailing"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if goal.Status != types.GoalNotStarted {
		t.Fatalf("status: want=%q got=%q", types.GoalNotStarted, goal.Status)
	}
	if goal.Priority != types.PriorityMedium {
		t.Fatalf("default priority: want=%q got=%q", types.PriorityMedium, goal.Priority)
	}
	if got := env.profile.Profile().XP - base; got != XPGoalCreated {
		t.Fatalf("creation xp: want=%d got=%d", XPGoalCreated, got)
	}
}

func TestGoalProgressClampsAndPaysMilestonesOnce(t *testing.T) {
	env, goals := newGoalEnv(t)
	ctx := context.Background()

	goal, err := goals.Create(ctx, GoalInput{Title: "run a marathon", Priority: types.PriorityLow})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	base := env.profile.Profile().XP

	updated, _, err := goals.UpdateProgress(ctx, goal.ID, 60)
	if err != nil {
		t.Fatalf("progress 60: %v", err)
	}
	if updated.Progress != 60 {
		t.Fatalf("progress: want=60 got=%d", updated.Progress)
	}
	if updated.Status != types.GoalInProgress {
		t.Fatalf("status: want=%q got=%q", types.GoalInProgress, updated.Status)
	}
	// 25 and 50 both crossed in one jump.
	wantXP := MilestoneXP(25) + MilestoneXP(50)
	if got := env.profile.Profile().XP - base; got != wantXP {
		t.Fatalf("milestone xp: want=%d got=%d", wantXP, got)
	}

	// Dropping below a paid threshold and crossing it again pays nothing.
	if _, _, err := goals.UpdateProgress(ctx, goal.ID, 10); err != nil {
		t.Fatalf("progress 10: %v", err)
	}
	if _, _, err := goals.UpdateProgress(ctx, goal.ID, 55); err != nil {
		t.Fatalf("progress 55: %v", err)
	}
	if got := env.profile.Profile().XP - base; got != wantXP {
		t.Fatalf("xp after re-crossing: want=%d got=%d", wantXP, got)
	}

	// 150 clamps to 100, pays the 75 milestone plus the completion award.
	updated, _, err = goals.UpdateProgress(ctx, goal.ID, 150)
	if err != nil {
		t.Fatalf("progress 150: %v", err)
	}
	if updated.Progress != 100 {
		t.Fatalf("clamped progress: want=100 got=%d", updated.Progress)
	}
	if updated.Status != types.GoalCompleted || updated.CompletedAt == nil {
		t.Fatalf("goal should be completed with a timestamp: %+v", updated)
	}
	completionXP := GoalCompletionXP(types.PriorityLow, 0, 0)
	wantXP += MilestoneXP(75) + completionXP
	if got := env.profile.Profile().XP - base; got != wantXP {
		t.Fatalf("xp after completion: want=%d got=%d", wantXP, got)
	}
	if got := countByType(env.notify, "celebration"); got == 0 {
		t.Fatalf("completion should push a celebration notification")
	}
}

func TestGoalCompletionAwardsExactlyOnce(t *testing.T) {
	env, goals := newGoalEnv(t)
	ctx := context.Background()

	goal, err := goals.Create(ctx, GoalInput{
		Title:           "ship the release",
		Priority:        types.PriorityHigh,
		SubGoals:        []string{"freeze", "qa", "tag"},
		TimeEstimateMin: 90,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	base := env.profile.Profile().XP

	if _, _, err := goals.Complete(ctx, goal.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}
	wantXP := MilestoneXP(25) + MilestoneXP(50) + MilestoneXP(75) +
		GoalCompletionXP(types.PriorityHigh, 3, 90)
	if got := env.profile.Profile().XP - base; got != wantXP {
		t.Fatalf("xp: want=%d got=%d", wantXP, got)
	}

	// Lowering progress re-opens the goal without re-arming the award.
	reopened, _, err := goals.UpdateProgress(ctx, goal.ID, 40)
	if err != nil {
		t.Fatalf("progress 40: %v", err)
	}
	if reopened.Status != types.GoalInProgress {
		t.Fatalf("reopened status: want=%q got=%q", types.GoalInProgress, reopened.Status)
	}
	if reopened.CompletedAt == nil {
		t.Fatalf("completion timestamp must survive re-opening")
	}
	if _, _, err := goals.Complete(ctx, goal.ID); err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if got := env.profile.Profile().XP - base; got != wantXP {
		t.Fatalf("xp after second completion: want=%d got=%d", wantXP, got)
	}
}

func TestGoalSetStatus(t *testing.T) {
	_, goals := newGoalEnv(t)
	ctx := context.Background()

	goal, err := goals.Create(ctx, GoalInput{Title: "blocked work"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, _, err := goals.SetStatus(ctx, goal.ID, "paused"); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("unknown status: want ErrInvalidArgument, got %v", err)
	}

	updated, _, err := goals.SetStatus(ctx, goal.ID, types.GoalBlocked)
	if err != nil {
		t.Fatalf("set blocked: %v", err)
	}
	if updated.Status != types.GoalBlocked {
		t.Fatalf("status: want=%q got=%q", types.GoalBlocked, updated.Status)
	}

	// Setting completed goes through the progress path.
	updated, _, err = goals.SetStatus(ctx, goal.ID, types.GoalCompleted)
	if err != nil {
		t.Fatalf("set completed: %v", err)
	}
	if updated.Progress != 100 || updated.Status != types.GoalCompleted {
		t.Fatalf("completed via status: got progress=%d status=%q", updated.Progress, updated.Status)
	}
}

func TestGoalDependencyMirroring(t *testing.T) {
	_, goals := newGoalEnv(t)
	ctx := context.Background()

	a, err := goals.Create(ctx, GoalInput{Title: "a"})
	if err != nil {
		t.Fatalf("create a: %v", err)
	}
	b, err := goals.Create(ctx, GoalInput{Title: "b"})
	if err != nil {
		t.Fatalf("create b: %v", err)
	}

	if _, err := goals.AddDependency(ctx, a.ID, a.ID); !errors.Is(err, apperrors.ErrInvalidArgument) {
		t.Fatalf("self-dependency: want ErrInvalidArgument, got %v", err)
	}

	res, err := goals.AddDependency(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("add dependency: %v", err)
	}
	if res.Status != SyncCommitted {
		t.Fatalf("sync status: want=%q got=%q", SyncCommitted, res.Status)
	}
	// Adding the same edge twice stays idempotent.
	if _, err := goals.AddDependency(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("re-add dependency: %v", err)
	}

	byID := make(map[string]types.Goal)
	for _, g := range goals.Goals() {
		byID[g.ID.String()] = g
	}
	if got := byID[a.ID.String()].DependsOn; len(got) != 1 || got[0] != b.ID {
		t.Fatalf("a.DependsOn: want [%s] got %v", b.ID, got)
	}
	if got := byID[b.ID.String()].Dependents; len(got) != 1 || got[0] != a.ID {
		t.Fatalf("b.Dependents: want [%s] got %v", a.ID, got)
	}

	if _, err := goals.RemoveDependency(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("remove dependency: %v", err)
	}
	byID = make(map[string]types.Goal)
	for _, g := range goals.Goals() {
		byID[g.ID.String()] = g
	}
	if got := byID[a.ID.String()].DependsOn; len(got) != 0 {
		t.Fatalf("a.DependsOn after removal: want empty got %v", got)
	}
	if got := byID[b.ID.String()].Dependents; len(got) != 0 {
		t.Fatalf("b.Dependents after removal: want empty got %v", got)
	}

	// Both sides of the edge survive a round trip through the backend.
	loaded, err := goals.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("loaded goals: want=2 got=%d", len(loaded))
	}
}
