package entities

import "time"

// Gathering is a community event. AttendeeCount is a snapshot of the
// attendee list length taken at creation time; there is no attendance
// mutation API, so it is never updated afterward.
type Gathering struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Venue       string    `json:"venue"`
	MaxCapacity int       `json:"maxCapacity"`
	Owner       string    `json:"owner"`

	AttendeeCount int `json:"attendeeCount"`
}

// ParticipantRole distinguishes the two directed edge kinds linking a
// person to a gathering.
type ParticipantRole string

const (
	RoleHost     ParticipantRole = "host"
	RoleAttendee ParticipantRole = "attendee"
)

// Participant is one relationship edge of a gathering, as returned by the
// reverse lookup. Edges are immutable and never deleted.
type Participant struct {
	PersonID    string          `json:"personId"`
	GatheringID string          `json:"gatheringId"`
	Role        ParticipantRole `json:"role"`
}
