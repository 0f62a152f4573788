package types

import (
	"time"

	"github.com/google/uuid"
)

type NotificationType string

const (
	NotifyStudy       NotificationType = "study"
	NotifyAchievement NotificationType = "achievement"
	NotifyReminder    NotificationType = "reminder"
	NotifyGoal        NotificationType = "goal"
	NotifyStreak      NotificationType = "streak"
	NotifySystem      NotificationType = "system"
	NotifyCelebration NotificationType = "celebration"
)

// Notification lives only in the local queue; it is never persisted to the
// document store.
type Notification struct {
	ID        uuid.UUID        `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	XP        int              `json:"xp,omitempty"`
	Streak    int              `json:"streak,omitempty"`
	Action    string           `json:"action,omitempty"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
