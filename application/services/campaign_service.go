package services

import (
	"context"
	"sync"
	"time"

	"communityapp/application/commands"
	"communityapp/application/ports"
	"communityapp/application/queries"
	"communityapp/domain/core/entities"
	apperrors "communityapp/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CampaignService dispatches bulk email campaigns and serves the analytics
// view over their send records.
//
// Dispatch is split in two phases. The synchronous phase resolves
// recipients, writes one queued record each, and returns the queued count.
// The asynchronous phase is one fire-and-forget unit per recipient with no
// ordering between units: each sends and then updates its own record.
// Nothing persists which units were scheduled, so a crash leaves the
// unfinished remainder permanently queued. That gap is deliberate; a
// durable work queue is out of scope.
type CampaignService struct {
	persons  ports.PersonRepository
	emails   ports.EmailRepository
	mailer   ports.Mailer
	validate *validator.Validate
	logger   *zap.Logger
	inflight sync.WaitGroup
}

// NewCampaignService creates a new CampaignService
func NewCampaignService(persons ports.PersonRepository, emails ports.EmailRepository, mailer ports.Mailer, logger *zap.Logger) *CampaignService {
	return &CampaignService{
		persons:  persons,
		emails:   emails,
		mailer:   mailer,
		validate: validator.New(),
		logger:   logger,
	}
}

// Dispatch queues one send record per matching person under a fresh
// campaign id and launches the delivery units. The caller learns how many
// were queued before any are sent; delivery outcomes are only visible
// through analytics.
func (s *CampaignService) Dispatch(ctx context.Context, cmd commands.DispatchCampaignCommand) (*commands.DispatchCampaignResult, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, apperrors.NewValidationError("invalid campaign payload").WithCause(err)
	}

	recipients, err := s.collectRecipients(ctx, cmd.Recipients)
	if err != nil {
		return nil, err
	}

	campaignID := uuid.New().String()
	now := time.Now().UTC()

	records := make([]*entities.EmailSendRecord, 0, len(recipients))
	for _, person := range recipients {
		records = append(records, &entities.EmailSendRecord{
			ID:          uuid.New().String(),
			PersonID:    person.ID,
			Email:       person.Email,
			Subject:     cmd.Subject,
			Status:      entities.EmailStatusQueued,
			CampaignID:  campaignID,
			CreatedAt:   now,
			UTMCampaign: cmd.UTMCampaign,
			UTMSource:   cmd.UTMSource,
			UTMMedium:   cmd.UTMMedium,
		})
	}

	if err := s.emails.CreateQueued(ctx, records); err != nil {
		return nil, err
	}

	for _, record := range records {
		s.inflight.Add(1)
		go s.deliver(record.ID, record.Email, cmd.Subject, cmd.Body)
	}

	s.logger.Info("Campaign dispatched",
		zap.String("campaignID", campaignID),
		zap.Int("queued", len(records)),
	)

	return &commands.DispatchCampaignResult{
		CampaignID:  campaignID,
		QueuedCount: len(records),
	}, nil
}

// GetAnalytics serves the filtered, paginated send record stream.
func (s *CampaignService) GetAnalytics(ctx context.Context, filter queries.AnalyticsFilter, pageSize int, token *string) (*queries.AnalyticsPage, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return s.emails.Analytics(ctx, filter, pageSize, token)
}

// Drain blocks until every in-flight delivery unit has finished. Called on
// shutdown; it adds no durability and is not a retry mechanism.
func (s *CampaignService) Drain() {
	s.inflight.Wait()
}

// collectRecipients pages through the person query engine until the filter
// is exhausted.
func (s *CampaignService) collectRecipients(ctx context.Context, filter queries.PersonFilter) ([]*entities.Person, error) {
	var (
		all   []*entities.Person
		token *string
	)
	for {
		page, next, err := s.persons.Filter(ctx, filter, 100, token)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == nil {
			return all, nil
		}
		token = next
	}
}

// deliver is one asynchronous unit: send, then record the terminal status
// on this recipient's row. It is detached from the request context on
// purpose; the dispatch response does not wait for it, and a failure here
// is recorded but never surfaced to the original caller.
func (s *CampaignService) deliver(recordID, email, subject, body string) {
	defer s.inflight.Done()
	ctx := context.Background()

	if err := s.mailer.Send(ctx, email, subject, body); err != nil {
		s.logger.Warn("Email delivery failed",
			zap.Error(err),
			zap.String("emailID", recordID),
			zap.String("recipient", email),
		)
		msg := err.Error()
		if updateErr := s.emails.UpdateStatus(ctx, recordID, entities.EmailStatusFailed, nil, &msg); updateErr != nil {
			s.logger.Error("Failed to record delivery failure",
				zap.Error(updateErr),
				zap.String("emailID", recordID),
			)
		}
		return
	}

	sentAt := time.Now().UTC()
	if err := s.emails.UpdateStatus(ctx, recordID, entities.EmailStatusSent, &sentAt, nil); err != nil {
		s.logger.Error("Failed to record delivery success",
			zap.Error(err),
			zap.String("emailID", recordID),
		)
	}
}
