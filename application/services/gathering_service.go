package services

import (
	"context"

	"communityapp/application/commands"
	"communityapp/application/ports"
	"communityapp/domain/core/entities"
	apperrors "communityapp/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GatheringService coordinates gathering creation: the atomic relationship
// transaction first, then the best-effort counter maintenance on every
// referenced person.
type GatheringService struct {
	gatherings ports.GatheringRepository
	persons    ports.PersonRepository
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewGatheringService creates a new GatheringService
func NewGatheringService(gatherings ports.GatheringRepository, persons ports.PersonRepository, logger *zap.Logger) *GatheringService {
	return &GatheringService{
		gatherings: gatherings,
		persons:    persons,
		validate:   validator.New(),
		logger:     logger,
	}
}

// CreateGathering creates the gathering with all its relationship edges in
// one atomic write, then increments each participant's counter and
// rewrites the derived projection keys. The counter updates run after the
// transaction has committed and are not atomic with it: a crash here
// leaves edges durable and counters stale until a later write heals them.
// That window is deliberate; failures are logged, never raised, because
// the gathering itself already exists.
func (s *GatheringService) CreateGathering(ctx context.Context, cmd commands.CreateGatheringCommand) (*entities.Gathering, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, apperrors.NewValidationError("invalid gathering payload").WithCause(err)
	}

	gathering := &entities.Gathering{
		ID:            uuid.New().String(),
		Slug:          cmd.Slug,
		Title:         cmd.Title,
		Description:   cmd.Description,
		StartAt:       cmd.StartAt,
		EndAt:         cmd.EndAt,
		Venue:         cmd.Venue,
		MaxCapacity:   cmd.MaxCapacity,
		Owner:         cmd.Owner,
		AttendeeCount: len(cmd.AttendeeIDs),
	}

	if err := s.gatherings.CreateWithParticipants(ctx, gathering, cmd.HostIDs, cmd.AttendeeIDs); err != nil {
		return nil, err
	}

	for _, hostID := range cmd.HostIDs {
		if _, err := s.persons.IncrementHostedCount(ctx, hostID); err != nil {
			s.logger.Error("Hosted counter update failed, projection may be stale",
				zap.Error(err),
				zap.String("personID", hostID),
				zap.String("gatheringID", gathering.ID),
			)
		}
	}
	for _, attendeeID := range cmd.AttendeeIDs {
		if _, err := s.persons.IncrementAttendedCount(ctx, attendeeID); err != nil {
			s.logger.Error("Attended counter update failed, projection may be stale",
				zap.Error(err),
				zap.String("personID", attendeeID),
				zap.String("gatheringID", gathering.ID),
			)
		}
	}

	return gathering, nil
}

// ListParticipants returns every relationship edge of a gathering.
func (s *GatheringService) ListParticipants(ctx context.Context, gatheringID string) ([]*entities.Participant, error) {
	if gatheringID == "" {
		return nil, apperrors.NewValidationError("gathering id is required")
	}
	return s.gatherings.ListParticipants(ctx, gatheringID)
}
