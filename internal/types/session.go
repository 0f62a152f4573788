package types

import (
	"time"

	"github.com/google/uuid"
)

// FocusSession is written only when a session runs to completion; stopping
// a timer early discards the session without a record.
type FocusSession struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Subject     string     `json:"subject"`
	GoalID      *uuid.UUID `json:"goal_id,omitempty"`
	DurationMin int        `json:"duration_min"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     time.Time  `json:"ended_at"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
}
