package types

import (
	"time"

	"github.com/google/uuid"
)

type GoalStatus string

const (
	GoalNotStarted GoalStatus = "not_started"
	GoalInProgress GoalStatus = "in_progress"
	GoalBlocked    GoalStatus = "blocked"
	GoalCompleted  GoalStatus = "completed"
)

// Goal progress is clamped to [0,100]; reaching 100 forces
// Status=GoalCompleted and stamps CompletedAt exactly once.
type Goal struct {
	ID          uuid.UUID  `json:"id"`
	OwnerID     uuid.UUID  `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Priority    string     `json:"priority"`
	Progress    int        `json:"progress"` // 0-100
	Status      GoalStatus `json:"status"`

	// Dependency edges are kept mirrored: adding g2 to g1.DependsOn also
	// adds g1 to g2.Dependents. The two writes are sequential and not
	// atomic.
	DependsOn  []uuid.UUID `json:"depends_on"`
	Dependents []uuid.UUID `json:"dependents"`

	// Milestone thresholds (25/50/75) that already paid out XP. A
	// threshold never pays twice for the same goal.
	MilestonesAwarded []int `json:"milestones_awarded"`

	Tags            []string   `json:"tags"`
	SubGoals        []string   `json:"sub_goals"`
	TimeEstimateMin int        `json:"time_estimate_min"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	Archived        bool       `json:"archived"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
