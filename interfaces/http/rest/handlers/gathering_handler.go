package handlers

import (
	"net/http"
	"time"

	"communityapp/application/commands"
	"communityapp/application/services"
	"communityapp/pkg/common"
	apperrors "communityapp/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// GatheringHandler handles gathering-related HTTP requests
type GatheringHandler struct {
	gatherings *services.GatheringService
	logger     *zap.Logger
}

// NewGatheringHandler creates a new gathering handler
func NewGatheringHandler(gatherings *services.GatheringService, logger *zap.Logger) *GatheringHandler {
	return &GatheringHandler{
		gatherings: gatherings,
		logger:     logger,
	}
}

// CreateGatheringRequest represents the request body for creating a gathering
type CreateGatheringRequest struct {
	Slug        string    `json:"slug"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Venue       string    `json:"venue"`
	MaxCapacity int       `json:"maxCapacity"`
	Owner       string    `json:"owner"`
	HostIDs     []string  `json:"hostIds"`
	AttendeeIDs []string  `json:"attendeeIds"`
}

// CreateGathering handles POST /gatherings
func (h *GatheringHandler) CreateGathering(w http.ResponseWriter, r *http.Request) {
	var req CreateGatheringRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}

	gathering, err := h.gatherings.CreateGathering(r.Context(), commands.CreateGatheringCommand{
		Slug:        req.Slug,
		Title:       req.Title,
		Description: req.Description,
		StartAt:     req.StartAt,
		EndAt:       req.EndAt,
		Venue:       req.Venue,
		MaxCapacity: req.MaxCapacity,
		Owner:       req.Owner,
		HostIDs:     req.HostIDs,
		AttendeeIDs: req.AttendeeIDs,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, gathering)
}

// ListParticipants handles GET /gatherings/{gatheringID}/participants
func (h *GatheringHandler) ListParticipants(w http.ResponseWriter, r *http.Request) {
	gatheringID := chi.URLParam(r, "gatheringID")

	participants, err := h.gatherings.ListParticipants(r.Context(), gatheringID)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"participants": participants,
		"count":        len(participants),
	})
}
