package types

import (
	"time"

	"github.com/google/uuid"
)

// WellnessDailyRecord holds the day's scalar metrics. At most one record
// exists per (owner, day); writes upsert into the existing day record.
// Day is the device-local calendar date, not UTC.
type WellnessDailyRecord struct {
	ID        uuid.UUID `json:"id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	Day       string    `json:"day"` // "2006-01-02" in local time
	WaterML   int       `json:"water_ml"`
	Calories  int       `json:"calories"`
	Steps     int       `json:"steps"`
	SleepHrs  float64   `json:"sleep_hrs"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
