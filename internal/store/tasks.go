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

const taskPageSize = 100

type TaskInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Recurrence  string `json:"recurrence"`
}

type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Recurrence  *string `json:"recurrence,omitempty"`
}

type TaskStore struct {
	mu      sync.Mutex
	log     *logger.Logger
	docs    docstore.Store
	ledger  *ProfileStore
	notify  *NotificationCenter
	ownerID uuid.UUID

	tasks []types.Task

	now func() time.Time
}

func NewTaskStore(docs docstore.Store, ledger *ProfileStore, notify *NotificationCenter, baseLog *logger.Logger, ownerID uuid.UUID) *TaskStore {
	return &TaskStore{
		log:     baseLog.With("store", "TaskStore"),
		docs:    docs,
		ledger:  ledger,
		notify:  notify,
		ownerID: ownerID,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *TaskStore) Create(ctx context.Context, in TaskInput) (*types.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("%w: task title required", apperrors.ErrInvalidArgument)
	}
	if in.Priority == "" {
		in.Priority = types.PriorityMedium
	}

	fields, err := docstore.Encode(types.Task{
		OwnerID:     s.ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Category:    in.Category,
		Priority:    in.Priority,
		Recurrence:  in.Recurrence,
	})
	if err != nil {
		return nil, err
	}
	doc, err := s.docs.Create(ctx, CollectionTasks, s.ownerID, fields)
	if err != nil {
		s.log.Warn("Task create failed", "owner_id", s.ownerID, "error", err)
		s.notifyWriteFailure()
		return nil, fmt.Errorf("create task: %w", err)
	}

	var task types.Task
	if err := docstore.Decode(*doc, &task); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tasks = append([]types.Task{task}, s.tasks...)
	s.mu.Unlock()
	return &task, nil
}

// Update applies a partial patch optimistically; a failed remote write
// keeps the local value and reports failed-local-ahead.
func (s *TaskStore) Update(ctx context.Context, id uuid.UUID, patch TaskPatch) (*types.Task, SyncResult, error) {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id)
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Category != nil {
		task.Category = *patch.Category
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.Recurrence != nil {
		task.Recurrence = *patch.Recurrence
	}
	task.UpdatedAt = s.now()
	out := *task
	s.mu.Unlock()

	return s.writeBack(ctx, out)
}

// ToggleComplete flips completion. The 25 XP bonus pays only on the first
// ever transition to completed for the task.
func (s *TaskStore) ToggleComplete(ctx context.Context, id uuid.UUID) (*types.Task, SyncResult, error) {
	s.mu.Lock()
	task := s.findLocked(id)
	if task == nil {
		s.mu.Unlock()
		return nil, SyncResult{}, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id)
	}

	var firstCompletion bool
	if task.Completed {
		task.Completed = false
		task.CompletedAt = nil
	} else {
		task.Completed = true
		now := s.now()
		task.CompletedAt = &now
		firstCompletion = !task.XPAwarded
		task.XPAwarded = true
	}
	task.UpdatedAt = s.now()
	out := *task
	s.mu.Unlock()

	if firstCompletion {
		_, _, _ = s.ledger.AddXP(ctx, XPTaskDone, "Task completed")
	}
	return s.writeBack(ctx, out)
}

func (s *TaskStore) Delete(ctx context.Context, id uuid.UUID) (SyncResult, error) {
	s.mu.Lock()
	found := false
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		return SyncResult{}, fmt.Errorf("%w: task %s", apperrors.ErrNotFound, id)
	}

	if err := s.docs.Delete(ctx, CollectionTasks, id); err != nil {
		s.log.Warn("Task delete failed, local state is ahead", "owner_id", s.ownerID, "error", err)
		s.notifyWriteFailure()
		return failedLocalAhead(err), nil
	}
	return committed(), nil
}

func (s *TaskStore) writeBack(ctx context.Context, task types.Task) (*types.Task, SyncResult, error) {
	fields, err := docstore.Encode(task)
	if err != nil {
		return nil, SyncResult{}, err
	}
	if err := s.docs.Update(ctx, CollectionTasks, task.ID, fields); err != nil {
		s.log.Warn("Task update failed, local state is ahead", "owner_id", s.ownerID, "error", err)
		s.notifyWriteFailure()
		return &task, failedLocalAhead(err), nil
	}
	return &task, committed(), nil
}

func (s *TaskStore) notifyWriteFailure() {
	s.notify.Push(types.Notification{
		Type:    types.NotifySystem,
		Title:   "Could not save task",
		Message: "Your latest change is kept locally and may not be synced.",
	})
}

func (s *TaskStore) findLocked(id uuid.UUID) *types.Task {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return &s.tasks[i]
		}
	}
	return nil
}

// Load replaces local task state with the remote collection.
func (s *TaskStore) Load(ctx context.Context) ([]types.Task, error) {
	found, err := docstore.FetchOrdered(ctx, s.docs, s.log, docstore.Query{
		Collection: CollectionTasks,
		OwnerID:    s.ownerID,
		OrderBy:    "created_at",
		Descending: true,
		Limit:      taskPageSize,
	})
	if err != nil {
		s.mu.Lock()
		s.tasks = nil
		s.mu.Unlock()
		s.log.Warn("Task load failed", "owner_id", s.ownerID, "error", err)
		s.notify.Push(types.Notification{
			Type:    types.NotifySystem,
			Title:   "Tasks unavailable",
			Message: "Could not load your tasks right now.",
		})
		return nil, fmt.Errorf("load tasks: %w", err)
	}

	tasks := make([]types.Task, 0, len(found))
	for _, d := range found {
		var task types.Task
		if err := docstore.Decode(d, &task); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	s.mu.Lock()
	s.tasks = tasks
	s.mu.Unlock()
	return tasks, nil
}

// Tasks returns the local snapshot, newest first.
func (s *TaskStore) Tasks() []types.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]types.Task(nil), s.tasks...)
}
