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

const goalPageSize = 100

type GoalInput struct {
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Priority        string     `json:"priority"`
	Tags            []string   `json:"tags"`
	SubGoals        []string   `json:"sub_goals"`
	TimeEstimateMin int        `json:"time_estimate_min"`
	Deadline        *time.Time `json:"deadline,omitempty"`
}

type GoalStore struct {
	mu      sync.Mutex
	log     *logger.Logger
	docs    docstore.Store
	ledger  *ProfileStore
	notify  *NotificationCenter
	ownerID uuid.UUID

	goals []types.Goal

	now func() time.Time
}

func NewGoalStore(docs docstore.Store, ledger *ProfileStore, notify *NotificationCenter, baseLog *logger.Logger, ownerID uuid.UUID) *GoalStore {
	return &GoalStore{
		log:     baseLog.With("store", "GoalStore"),
		docs:    docs,
		ledger:  ledger,
		notify:  notify,
		ownerID: ownerID,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *GoalStore) Create(ctx context.Context, in GoalInput) (*types.Goal, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: goal title required", apperrors.ErrInvalidArgument)
	}
	if in.Priority == "" {
		in.Priority = types.PriorityMedium
	}

	fields, err := docstore.Encode(types.Goal{
		OwnerID:           s.ownerID,
		Title:             strings.TrimSpace(in.Title),
		Description:       in.Description,
		Category:          in.Category,
		Priority:          in.Priority,
		Progress:          0,
		Status:            types.GoalNotStarted,
		DependsOn:         []uuid.UUID{},
		Dependents:        []uuid.UUID{},
		MilestonesAwarded: []int{},
		Tags:              in.Tags,
		SubGoals:          in.SubGoals,
		TimeEstimateMin:   in.TimeEstimateMin,
		Deadline:          in.Deadline,
	})
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Create(ctx, CollectionGoals, s.ownerID, fields)
	if err != nil {
		s.log.Warn("Goal create failed", "owner_id", s.ownerID, "error", err)
		s.notifyWriteFailure()
		return nil, fmt.Errorf("create goal: %w", err)
	}

	var goal types.Goal
	if err := docstore.Decode(*doc, &goal); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.goals = append([]types.Goal{goal}, s.goals...)
	s.mu.Unlock()

	_, _, _ = s.ledger.AddXP(ctx, XPGoalCreated, "Goal created")
	return &goal, nil
}

// UpdateProgress clamps to [0,100], pays milestone XP once per threshold,
// and completes the goal when progress reaches 100. Lowering progress
// after completion re-opens the status but never re-arms the completion
// award or past milestones.
func (s *GoalStore) UpdateProgress(ctx context.Context, id uuid.UUID, progress int) (*types.Goal, SyncResult, error) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	s.mu.Lock()
	goal := s.findLocked(id)
	if goal == nil {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: goal %s", apperrors.ErrNotFound, id)
	}

	goal.Progress = progress
	var milestonesHit []int
	for _, threshold := range goalMilestones {
		if progress >= threshold && !containsInt(goal.MilestonesAwarded, threshold) {
			goal.MilestonesAwarded = append(goal.MilestonesAwarded, threshold)
			milestonesHit = append(milestonesHit, threshold)
		}
	}

	completedNow := false
	switch {
	case progress >= 100:
		goal.Status = types.GoalCompleted
		if goal.CompletedAt == nil {
			now := s.now()
			goal.CompletedAt = &now
			completedNow = true
		}
	case goal.Status == types.GoalCompleted:
		goal.Status = types.GoalInProgress
	case goal.Status == types.GoalNotStarted && progress > 0:
		goal.Status = types.GoalInProgress
	}
	goal.UpdatedAt = s.now()
	out := *goal
	s.mu.Unlock()

	for _, threshold := range milestonesHit {
		_, _, _ = s.ledger.AddXP(ctx, MilestoneXP(threshold), fmt.Sprintf("Goal %d%% milestone", threshold))
	}
	if completedNow {
		s.awardCompletion(ctx, out)
	}
	return s.writeBack(ctx, out)
}

// Complete drives progress to 100 through the normal milestone path.
func (s *GoalStore) Complete(ctx context.Context, id uuid.UUID) (*types.Goal, SyncResult, error) {
	return s.UpdateProgress(ctx, id, 100)
}

func (s *GoalStore) awardCompletion(ctx context.Context, goal types.Goal) {
	xp := GoalCompletionXP(goal.Priority, len(goal.SubGoals), goal.TimeEstimateMin)
	_, _, _ = s.ledger.AddXP(ctx, xp, "Goal completed")
	_, _ = s.ledger.AddShinePoints(ctx, xp/2)
	s.notify.Push(types.Notification{
		Type:    types.NotifyCelebration,
		Title:   "Goal completed!",
		Message: goal.Title,
		XP:      xp,
	})
}

func (s *GoalStore) SetStatus(ctx context.Context, id uuid.UUID, status types.GoalStatus) (*types.Goal, SyncResult, error) {
	switch status {
	case types.GoalNotStarted, types.GoalInProgress, types.GoalBlocked:
	case types.GoalCompleted:
		return s.Complete(ctx, id)
	default:
		return nil, SyncResult{}, fmt.Errorf("%w: unknown goal status %q", apperrors.ErrInvalidArgument, status)
	}

	s.mu.Lock()
	goal := s.findLocked(id)
	if goal == nil {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: goal %s", apperrors.ErrNotFound, id)
	}
	goal.Status = status
	goal.UpdatedAt = s.now()
	out := *goal
	s.mu.Unlock()

	return s.writeBack(ctx, out)
}

func (s *GoalStore) SetArchived(ctx context.Context, id uuid.UUID, archived bool) (*types.Goal, SyncResult, error) {
	s.mu.Lock()
	goal := s.findLocked(id)
	if goal == nil {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: goal %s", apperrors.ErrNotFound, id)
	}
	goal.Archived = archived
	goal.UpdatedAt = s.now()
	out := *goal
	s.mu.Unlock()

	return s.writeBack(ctx, out)
}

// AddDependency links goal -> dependsOn and mirrors the inverse edge on
// the other goal. The two remote writes are sequential with no atomicity;
// a failure in between leaves the graph inconsistent until the next load.
func (s *GoalStore) AddDependency(ctx context.Context, goalID, dependsOnID uuid.UUID) (SyncResult, error) {
	if goalID == dependsOnID {
		return SyncResult{}, fmt.Errorf("%w: goal cannot depend on itself", apperrors.ErrInvalidArgument)
	}

	s.mu.Lock()
	goal := s.findLocked(goalID)
	dep := s.findLocked(dependsOnID)
	if goal == nil || dep == nil {
		s.mu.Unlock()
		return SyncResult{}, fmt.Errorf("%w: goal", apperrors.ErrNotFound)
	}
	if !containsUUID(goal.DependsOn, dependsOnID) {
		goal.DependsOn = append(goal.DependsOn, dependsOnID)
	}
	if !containsUUID(dep.Dependents, goalID) {
		dep.Dependents = append(dep.Dependents, goalID)
	}
	goal.UpdatedAt = s.now()
	dep.UpdatedAt = s.now()
	goalOut, depOut := *goal, *dep
	s.mu.Unlock()

	return s.writeEdge(ctx, goalOut, depOut)
}

// RemoveDependency unlinks both sides of the edge.
func (s *GoalStore) RemoveDependency(ctx context.Context, goalID, dependsOnID uuid.UUID) (SyncResult, error) {
	s.mu.Lock()
	goal := s.findLocked(goalID)
	dep := s.findLocked(dependsOnID)
	if goal == nil || dep == nil {
		s.mu.Unlock()
		return SyncResult{}, fmt.Errorf("%w: goal", apperrors.ErrNotFound)
	}
	goal.DependsOn = removeUUID(goal.DependsOn, dependsOnID)
	dep.Dependents = removeUUID(dep.Dependents, goalID)
	goal.UpdatedAt = s.now()
	dep.UpdatedAt = s.now()
	goalOut, depOut := *goal, *dep
	s.mu.Unlock()

	return s.writeEdge(ctx, goalOut, depOut)
}

func (s *GoalStore) writeEdge(ctx context.Context, goal, dep types.Goal) (SyncResult, error) {
	if _, res, err := s.writeBack(ctx, goal); err != nil || res.Status != SyncCommitted {
		return res, err
	}
	_, res, err := s.writeBack(ctx, dep)
	if err == nil && res.Status != SyncCommitted {
		s.log.Warn("Dependency edge half-written, graph inconsistent until next load",
			"owner_id", s.ownerID, "goal_id", goal.ID, "depends_on", dep.ID)
	}
	return res, err
}

func (s *GoalStore) Delete(ctx context.Context, id uuid.UUID) (SyncResult, error) {
	s.mu.Lock()
	found := false
	for i := range s.goals {
		if s.goals[i].ID == id {
			s.goals = append(s.goals[:i], s.goals[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return SyncResult{}, fmt.Errorf("%w: goal %s", apperrors.ErrNotFound, id)
	}

	if err := s.docs.Delete(ctx, CollectionGoals, id); err != nil {
		s.log.Warn("Goal delete failed, local state is ahead", "owner_id", s.ownerID, "error", err)
		s.notifyWriteFailure()
		return failedLocalAhead(err), nil
	}
	return committed(), nil
}

func (s *GoalStore) writeBack(ctx context.Context, goal types.Goal) (*types.Goal, SyncResult, error) {
	fields, err := docstore.Encode(goal)
	if err != nil {
		return nil, SyncResult{}, err
	}
	if err := s.docs.Update(ctx, CollectionGoals, goal.ID, fields); err != nil {
		s.log.Warn("Goal update failed, local state is ahead", "owner_id", s.ownerID, "error", err)
		s.notifyWriteFailure()
		return &goal, failedLocalAhead(err), nil
	}
	return &goal, committed(), nil
}

func (s *GoalStore) notifyWriteFailure() {
	s.notify.Push(types.Notification{
		Type:    types.NotifySystem,
		Title:   "Could not save goal",
		Message: "Your latest change is kept locally and may not be synced.",
	})
}

func (s *GoalStore) findLocked(id uuid.UUID) *types.Goal {
	for i := range s.goals {
		if s.goals[i].ID == id {
			return &s.goals[i]
		}
	}
	return nil
}

// Load replaces local goal state with the remote collection.
func (s *GoalStore) Load(ctx context.Context) ([]types.Goal, error) {
	found, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionGoals,
		OwnerID:    s.ownerID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      goalPageSize,
	})
	if err != nil {
		s.mu.Lock()
		s.goals = nil
		s.mu.Unlock()
		s.log.Warn("Goal load failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Goals unavailable",
			Message: "Could not load your goals right now.",
		})
		return nil, fmt.Errorf("load goals: %w", err)
	}

	goals := make([]types.Goal, 0, len(found))
	for _, d := range found {
		var goal types.Goal
		if err := docstore.Decode(d, &goal); err != nil {
			return nil, err
		}
		goals = append(goals, goal)
	}

	s.mu.Lock()
	s.goals = goals
	s.mu.Unlock()
	return goals, nil
}

// Goals returns the local snapshot, newest first.
func (s *GoalStore) Goals() []types.Goal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Goal(nil), s.goals...)
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsUUID(list []uuid.UUID, v uuid.UUID) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func removeUUID(list []uuid.UUID, v uuid.UUID) []uuid.UUID {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}
