package queries

import (
	"time"

	"communityapp/domain/core/entities"
)

// AnalyticsFilter narrows the email send record stream. All dimensions AND
// together. The time range is inclusive on both ends.
type AnalyticsFilter struct {
	Status      *entities.EmailStatus `json:"status"`
	UTMCampaign *string               `json:"utmCampaign"`
	UTMSource   *string               `json:"utmSource"`
	UTMMedium   *string               `json:"utmMedium"`
	StartDate   *time.Time            `json:"startDate"`
	EndDate     *time.Time            `json:"endDate"`
}

// HasDateRange reports whether either time bound is set.
func (f AnalyticsFilter) HasDateRange() bool {
	return f.StartDate != nil || f.EndDate != nil
}

// AnalyticsPage is the result of one analytics query. Total is computed by
// a separate full pass over every matching row, so it is exact but costs
// O(table size).
type AnalyticsPage struct {
	Records   []*entities.EmailSendRecord `json:"records"`
	Count     int                         `json:"count"`
	Total     int                         `json:"total"`
	HasMore   bool                        `json:"hasMore"`
	NextToken *string                     `json:"nextToken,omitempty"`
}
