package commands

import "time"

// CreateGatheringCommand carries a new gathering plus the person ids to
// link as hosts and attendees. Every referenced person must already exist;
// the whole write is atomic.
type CreateGatheringCommand struct {
	Slug        string    `json:"slug" validate:"required"`
	Title       string    `json:"title" validate:"required"`
	Description string    `json:"description" validate:"required"`
	StartAt     time.Time `json:"startAt" validate:"required"`
	EndAt       time.Time `json:"endAt" validate:"required,gtefield=StartAt"`
	Venue       string    `json:"venue" validate:"required"`
	MaxCapacity int       `json:"maxCapacity" validate:"required,gt=0"`
	Owner       string    `json:"owner" validate:"required"`
	HostIDs     []string  `json:"hostIds"`
	AttendeeIDs []string  `json:"attendeeIds"`
}
