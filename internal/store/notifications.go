package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/logger"
	"github.com/aurevo/aurevo-server/internal/types"
)

// NotificationFilter selects a view of the queue.
type NotificationFilter struct {
	// Unread limits to unread entries.
	Unread bool
	// Type limits to one notification type; empty means all.
	Type types.NotificationType
}

// NotificationCenter is the local-only notification queue. Nothing here is
// persisted remotely; ordering is insertion order, newest first.
type NotificationCenter struct {
	mu    sync.Mutex
	log   *logger.Logger
	items []types.Notification
	now   func() time.Time
}

func NewNotificationCenter(baseLog *logger.Logger) *NotificationCenter {
	return &NotificationCenter{
		log: baseLog.With("store", "NotificationCenter"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Push prepends a notification with a generated id and read=false.
func (nc *NotificationCenter) Push(n types.Notification) types.Notification {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	n.ID = uuid.New()
	n.Read = false
	n.CreatedAt = nc.now()
	nc.items = append([]types.Notification{n}, nc.items...)
	return n
}

func (nc *NotificationCenter) MarkRead(id uuid.UUID) bool {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	for i := range nc.items {
		if nc.items[i].ID == id {
			nc.items[i].Read = true
			return true
		}
	}
	return false
}

func (nc *NotificationCenter) MarkAllRead() {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	for i := range nc.items {
		nc.items[i].Read = true
	}
}

func (nc *NotificationCenter) Dismiss(id uuid.UUID) bool {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	for i := range nc.items {
		if nc.items[i].ID == id {
			nc.items = append(nc.items[:i], nc.items[i+1:]...)
			return true
		}
	}
	return false
}

func (nc *NotificationCenter) Clear() {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	nc.items = nil
}

// UnreadCount is recomputed on every call, never stored.
func (nc *NotificationCenter) UnreadCount() int {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	count := 0
	for i := range nc.items {
		if !nc.items[i].Read {
			count++
		}
	}
	return count
}

func (nc *NotificationCenter) List(f NotificationFilter) []types.Notification {
	nc.mu.Lock()
	defer nc.mu.Unlock()
	out := make([]types.Notification, 0, len(nc.items))
	for _, n := range nc.items {
		if f.Unread && n.Read {
			continue
		}
		if f.Type != "" && n.Type != f.Type {
			continue
		}
		out = append(out, n)
	}
	return out
}
