package handlers

import (
	"net/http"
	"time"

	"communityapp/application/commands"
	"communityapp/application/queries"
	"communityapp/application/services"
	"communityapp/domain/core/entities"
	"communityapp/pkg/common"
	apperrors "communityapp/pkg/errors"

	"go.uber.org/zap"
)

// Campaign UTM defaults applied when the caller omits them.
const (
	defaultUTMSource = "crm"
	defaultUTMMedium = "email"
)

// CampaignHandler handles campaign-related HTTP requests
type CampaignHandler struct {
	campaigns *services.CampaignService
	logger    *zap.Logger
}

// NewCampaignHandler creates a new campaign handler
func NewCampaignHandler(campaigns *services.CampaignService, logger *zap.Logger) *CampaignHandler {
	return &CampaignHandler{
		campaigns: campaigns,
		logger:    logger,
	}
}

// DispatchCampaignRequest represents the request body for dispatching a campaign
type DispatchCampaignRequest struct {
	Subject     string               `json:"subject"`
	Body        string               `json:"body"`
	UTMCampaign *string              `json:"utmCampaign,omitempty"`
	UTMSource   *string              `json:"utmSource,omitempty"`
	UTMMedium   *string              `json:"utmMedium,omitempty"`
	Recipients  queries.PersonFilter `json:"recipients"`
}

// Dispatch handles POST /campaigns
func (h *CampaignHandler) Dispatch(w http.ResponseWriter, r *http.Request) {
	var req DispatchCampaignRequest
	if err := common.ParseJSONBody(r, &req, 1<<20); err != nil {
		common.RespondError(w, http.StatusBadRequest, string(apperrors.ErrorTypeValidation), "invalid request body: "+err.Error())
		return
	}

	if req.UTMSource == nil {
		source := defaultUTMSource
		req.UTMSource = &source
	}
	if req.UTMMedium == nil {
		medium := defaultUTMMedium
		req.UTMMedium = &medium
	}

	result, err := h.campaigns.Dispatch(r.Context(), commands.DispatchCampaignCommand{
		Subject:     req.Subject,
		Body:        req.Body,
		UTMCampaign: req.UTMCampaign,
		UTMSource:   req.UTMSource,
		UTMMedium:   req.UTMMedium,
		Recipients:  req.Recipients,
	})
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusAccepted, result)
}

// GetAnalytics handles GET /campaigns/analytics
func (h *CampaignHandler) GetAnalytics(w http.ResponseWriter, r *http.Request) {
	filter, err := buildAnalyticsFilter(r)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	params := common.ExtractPageParams(r)

	page, err := h.campaigns.GetAnalytics(r.Context(), filter, params.PageSize, params.NextToken)
	if err != nil {
		common.RespondAppError(w, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, page)
}

// buildAnalyticsFilter parses the analytics dimensions from the query
// string. Dates accept RFC 3339 or a bare date; a bare end date extends to
// the end of that day so single-day ranges behave as callers expect.
func buildAnalyticsFilter(r *http.Request) (queries.AnalyticsFilter, error) {
	var filter queries.AnalyticsFilter
	query := r.URL.Query()

	if raw := query.Get("status"); raw != "" {
		status := entities.EmailStatus(raw)
		if !status.Valid() {
			return filter, apperrors.NewValidationError("unknown status: " + raw)
		}
		filter.Status = &status
	}
	if v := query.Get("utmCampaign"); v != "" {
		filter.UTMCampaign = &v
	}
	if v := query.Get("utmSource"); v != "" {
		filter.UTMSource = &v
	}
	if v := query.Get("utmMedium"); v != "" {
		filter.UTMMedium = &v
	}

	if raw := query.Get("startDate"); raw != "" {
		t, err := parseFilterDate(raw, false)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid startDate: " + raw)
		}
		filter.StartDate = &t
	}
	if raw := query.Get("endDate"); raw != "" {
		t, err := parseFilterDate(raw, true)
		if err != nil {
			return filter, apperrors.NewValidationError("invalid endDate: " + raw)
		}
		filter.EndDate = &t
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.StartDate.After(*filter.EndDate) {
		return filter, apperrors.NewValidationError("startDate must not be after endDate")
	}

	return filter, nil
}

func parseFilterDate(raw string, endOfDay bool) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t.UTC(), nil
}
