package ports

import (
	"context"
	"time"

	"communityapp/application/queries"
	"communityapp/domain/core/entities"
)

// PersonRepository persists person profiles and serves the filtered,
// token-paginated person stream.
type PersonRepository interface {
	// Create writes a new profile row including every derived
	// secondary-index projection attribute.
	Create(ctx context.Context, person *entities.Person) error

	// GetByID returns the profile for id, or a not found error.
	GetByID(ctx context.Context, id string) (*entities.Person, error)

	// Filter resolves the best index for the filter set, applies the rest
	// in memory, and returns up to roughly pageSize persons plus a
	// continuation token when more data remains. A malformed token behaves
	// like an absent one.
	Filter(ctx context.Context, filter queries.PersonFilter, pageSize int, token *string) ([]*entities.Person, *string, error)

	// IncrementHostedCount atomically bumps the hosted counter and then
	// rewrites the derived projection key. The two steps are not atomic
	// with each other; callers treat failures as log-only.
	IncrementHostedCount(ctx context.Context, personID string) (int, error)

	// IncrementAttendedCount is the attended-side counterpart. It also
	// rewrites the activity projection key, which mirrors the attended one.
	IncrementAttendedCount(ctx context.Context, personID string) (int, error)
}

// GatheringRepository persists gatherings and their relationship edges.
type GatheringRepository interface {
	// CreateWithParticipants writes the gathering row, one host edge per
	// host and one attends edge per attendee in a single atomic
	// transaction, with existence checks on every referenced person.
	// Any failed precondition aborts the whole write.
	CreateWithParticipants(ctx context.Context, gathering *entities.Gathering, hostIDs, attendeeIDs []string) error

	// ListParticipants returns all edges of a gathering through the
	// reverse-lookup projection.
	ListParticipants(ctx context.Context, gatheringID string) ([]*entities.Participant, error)
}

// EmailRepository persists email send records and serves the analytics
// scan engine.
type EmailRepository interface {
	// CreateQueued writes one queued record per recipient. Individual
	// write failures are logged and skipped.
	CreateQueued(ctx context.Context, records []*entities.EmailSendRecord) error

	// UpdateStatus moves one record to a new status, optionally stamping
	// the completion time or the delivery error.
	UpdateStatus(ctx context.Context, id string, status entities.EmailStatus, sentAt *time.Time, errorMessage *string) error

	// Analytics filters, sorts and paginates the full record stream.
	Analytics(ctx context.Context, filter queries.AnalyticsFilter, pageSize int, token *string) (*queries.AnalyticsPage, error)
}
