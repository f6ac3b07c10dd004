package services

import (
	"context"

	"communityapp/application/commands"
	"communityapp/application/ports"
	"communityapp/application/queries"
	"communityapp/domain/core/entities"
	apperrors "communityapp/pkg/errors"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultPageSize applies when a caller does not ask for a page size.
const DefaultPageSize = 20

// PersonService handles person registration and filtered person queries.
type PersonService struct {
	persons  ports.PersonRepository
	validate *validator.Validate
	logger   *zap.Logger
}

// NewPersonService creates a new PersonService
func NewPersonService(persons ports.PersonRepository, logger *zap.Logger) *PersonService {
	return &PersonService{
		persons:  persons,
		validate: validator.New(),
		logger:   logger,
	}
}

// CreatePerson registers a new person with zeroed counters.
func (s *PersonService) CreatePerson(ctx context.Context, cmd commands.CreatePersonCommand) (*entities.Person, error) {
	if err := s.validate.Struct(cmd); err != nil {
		return nil, apperrors.NewValidationError("invalid person payload").WithCause(err)
	}

	person := &entities.Person{
		ID:          uuid.New().String(),
		FirstName:   cmd.FirstName,
		LastName:    cmd.LastName,
		PhoneNumber: cmd.PhoneNumber,
		Email:       cmd.Email,
		Avatar:      cmd.Avatar,
		Gender:      cmd.Gender,
		JobTitle:    cmd.JobTitle,
		Company:     cmd.Company,
		City:        cmd.City,
		State:       cmd.State,
	}

	if err := s.persons.Create(ctx, person); err != nil {
		return nil, err
	}

	return person, nil
}

// FilterPersons serves the filtered, token-paginated person stream. Page
// order is whatever the chosen index or scan returns; there is no
// secondary business ordering.
func (s *PersonService) FilterPersons(ctx context.Context, filter queries.PersonFilter, pageSize int, token *string) ([]*entities.Person, *string, error) {
	if pageSize == 0 {
		pageSize = DefaultPageSize
	}
	return s.persons.Filter(ctx, filter, pageSize, token)
}
