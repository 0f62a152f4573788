package store

import (
	"testing"

	"github.com/google/uuid"

	"github.com/aurevo/aurevo-server/internal/types"
)

func newNotificationCenter(t *testing.T) *NotificationCenter {
	t.Helper()
	return NewNotificationCenter(testLogger(t))
}

func TestNotificationPushPrependsUnread(t *testing.T) {
	nc := newNotificationCenter(t)

	first := nc.Push(types.Notification{Type: types.NotifySystem, Title: "first"})
	second := nc.Push(types.Notification{Type: types.NotifyCelebration, Title: "second"})

	if first.ID == uuid.Nil || second.ID == uuid.Nil {
		t.Fatalf("push must assign ids")
	}
	if first.Read || second.Read {
		t.Fatalf("pushed notifications must start unread")
	}

	items := nc.List(NotificationFilter{})
	if len(items) != 2 {
		t.Fatalf("list: want=2 got=%d", len(items))
	}
	if items[0].Title != "second" || items[1].Title != "first" {
		t.Fatalf("newest first: got [%s %s]", items[0].Title, items[1].Title)
	}
}

func TestNotificationUnreadCountRecomputes(t *testing.T) {
	nc := newNotificationCenter(t)

	a := nc.Push(types.Notification{Type: types.NotifySystem, Title: "a"})
	nc.Push(types.Notification{Type: types.NotifySystem, Title: "b"})
	nc.Push(types.Notification{Type: types.NotifyStreak, Title: "c"})
	if got := nc.UnreadCount(); got != 3 {
		t.Fatalf("unread: want=3 got=%d", got)
	}

	if !nc.MarkRead(a.ID) {
		t.Fatalf("mark read should find the notification")
	}
	if !nc.MarkRead(a.ID) {
		t.Fatalf("marking read twice still reports found")
	}
	if got := nc.UnreadCount(); got != 2 {
		t.Fatalf("unread after mark: want=2 got=%d", got)
	}

	if nc.MarkRead(uuid.New()) {
		t.Fatalf("unknown id must report not found")
	}

	nc.MarkAllRead()
	if got := nc.UnreadCount(); got != 0 {
		t.Fatalf("unread after mark all: want=0 got=%d", got)
	}
}

func TestNotificationListFilters(t *testing.T) {
	nc := newNotificationCenter(t)

	nc.Push(types.Notification{Type: types.NotifySystem, Title: "sys"})
	streak := nc.Push(types.Notification{Type: types.NotifyStreak, Title: "streak"})
	nc.Push(types.Notification{Type: types.NotifyCelebration, Title: "party"})
	nc.MarkRead(streak.ID)

	if got := len(nc.List(NotificationFilter{Type: types.NotifyStreak})); got != 1 {
		t.Fatalf("type filter: want=1 got=%d", got)
	}
	if got := len(nc.List(NotificationFilter{Unread: true})); got != 2 {
		t.Fatalf("unread filter: want=2 got=%d", got)
	}
	if got := len(nc.List(NotificationFilter{Unread: true, Type: types.NotifyStreak})); got != 0 {
		t.Fatalf("combined filter: want=0 got=%d", got)
	}
}

func TestNotificationDismissAndClear(t *testing.T) {
	nc := newNotificationCenter(t)

	a := nc.Push(types.Notification{Type: types.NotifySystem, Title: "a"})
	nc.Push(types.Notification{Type: types.NotifySystem, Title: "b"})

	if !nc.Dismiss(a.ID) {
		t.Fatalf("dismiss should find the notification")
	}
	if nc.Dismiss(a.ID) {
		t.Fatalf("second dismiss must report not found")
	}
	if got := len(nc.List(NotificationFilter{})); got != 1 {
		t.Fatalf("list after dismiss: want=1 got=%d", got)
	}

	nc.Clear()
	if got := len(nc.List(NotificationFilter{})); got != 0 {
		t.Fatalf("list after clear: want=0 got=%d", got)
	}
	if got := nc.UnreadCount(); got != 0 {
		t.Fatalf("unread after clear: want=0 got=%d", got)
	}
}
