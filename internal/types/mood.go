package types

import (
	"time"

	"github.com/google/uuid"
)

// MoodLog is append-only; at most one log per owner per hour is accepted.
type MoodLog struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Mood      int       `json:"mood"`      // 1-5
	Intensity int       `json:"intensity"` // 1-5
	Notes     string    `json:"notes"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

type JournalEntry struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}
