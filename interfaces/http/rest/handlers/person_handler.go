package handlers

import (
	"net/http"
	"strconv"

	"communityapp/application/commands"
	"communityapp/application/queries"
	"communityapp/application/services"
	"communityapp/pkg/common"
	apperrors "communityapp/pkg/errors"

	"go.uber.org/zap"
)

// PersonHandler handles person-related HTTP requests
type PersonHandler struct {
	persons *services.PersonService
	logger  *zap.Logger
}

// NewPersonHandler creates a new person handler
func NewPersonHandler(persons *services.PersonService, logger *zap.Logger) *PersonHandler {
	return &PersonHandler{
		persons: persons,
		logger:  logger,
	}
}

// CreatePersonRequest represents the request body for registering a person
type CreatePersonRequest struct {
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	PhoneNumber string  `json:"phoneNumber"`
	Email       string  `json:"email"`
	Avatar      *string `json:"avatar,omitempty"`
	Gender      *string `json:"gender,omitempty"`
	JobTitle    *string `json:"jobTitle,omitempty"`
	Company     *string `json:"company,omitempty"`
	City        *string `json:"city,omitempty"`
	State       *string `json:"state,omitempty"`
}

// CreatePerson handles POST /persons
func (h *PersonHandler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	var req CreatePersonRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}

	person, err := h.persons.CreatePerson(r.Context(), commands.CreatePersonCommand{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Email:       req.Email,
		Avatar:      req.Avatar,
		Gender:      req.Gender,
		JobTitle:    req.JobTitle,
		Company:     req.Company,
		City:        req.City,
		State:       req.State,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, person)
}

// allowedFilterParams is the closed set of query parameters accepted by the
// person filter endpoint. Anything else is rejected rather than silently
// ignored, so a typo like "compnay" cannot return the whole table.
var allowedFilterParams = map[string]struct{}{
	"company":          {},
	"jobTitle":         {},
	"city":             {},
	"state":            {},
	"hostedCountMin":   {},
	"hostedCountMax":   {},
	"attendedCountMin": {},
	"attendedCountMax": {},
	"limit":            {},
	"nextToken":        {},
}

// FilterPersons handles GET /persons
func (h *PersonHandler) FilterPersons(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	for param := range query {
		if _, ok := allowedFilterParams[param]; !ok {
			common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "unknown query parameter: "+param)
			return
		}
	}

	filter, err := buildPersonFilter(query.Get("company"), query.Get("jobTitle"), query.Get("city"), query.Get("state"),
		query.Get("hostedCountMin"), query.Get("hostedCountMax"),
		query.Get("attendedCountMin"), query.Get("attendedCountMax"))
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	params := common.ExtractPageParams(r)

	persons, nextToken, err := h.persons.FilterPersons(r.Context(), filter, params.PageSize, params.NextToken)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, common.NewPaginatedResult(persons, len(persons), nextToken))
}

// buildPersonFilter assembles the filter from raw query values. City and
// state are only usable together; a lone half is rejected because the
// location index keys on the combined pair.
func buildPersonFilter(company, jobTitle, city, state, hostedMin, hostedMax, attendedMin, attendedMax string) (queries.PersonFilter, error) {
	var filter queries.PersonFilter

	if company != "" {
		filter.Company = &company
	}
	if jobTitle != "" {
		filter.JobTitle = &jobTitle
	}
	if (city != "") != (state != "") {
		return filter, apperrors.NewValidationError("city and state must be provided together")
	}
	if city != "" {
		filter.City = &city
		filter.State = &state
	}

	hostedRange, err := buildCountRange(hostedMin, hostedMax, "hostedCount")
	if err != nil {
		return filter, err
	}
	filter.HostedCount = hostedRange

	attendedRange, err := buildCountRange(attendedMin, attendedMax, "attendedCount")
	if err != nil {
		return filter, err
	}
	filter.AttendedCount = attendedRange

	return filter, nil
}

func buildCountRange(minRaw, maxRaw, name string) (*queries.CountRange, error) {
	if minRaw == "" && maxRaw == "" {
		return nil, nil
	}
	var r queries.CountRange
	if minRaw != "" {
		n, err := strconv.Atoi(minRaw)
		if err != nil || n < 0 {
			return nil, apperrors.NewValidationError(name + " bounds must be non-negative integers")
		}
		r.Min = &n
	}
	if maxRaw != "" {
		n, err := strconv.Atoi(maxRaw)
		if err != nil || n < 0 {
			return nil, apperrors.NewValidationError(name + " bounds must be non-negative integers")
		}
		r.Max = &n
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		return nil, apperrors.NewValidationError(name + " min must not exceed max")
	}
	return &r, nil
}
