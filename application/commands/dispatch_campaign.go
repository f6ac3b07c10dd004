package commands

import "communityapp/application/queries"

// DispatchCampaignCommand starts a bulk email campaign. Recipients are
// resolved through the same filter set as person queries. UTM source and
// medium default at the HTTP boundary ("crm" / "email") when omitted.
type DispatchCampaignCommand struct {
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`

	UTMCampaign *string `json:"utmCampaign"`
	UTMSource   *string `json:"utmSource"`
	UTMMedium   *string `json:"utmMedium"`

	Recipients queries.PersonFilter `json:"recipients"`
}

// DispatchCampaignResult reports the synchronous outcome: how many send
// records were queued under the generated campaign id. Actual delivery
// happens asynchronously and is only visible through analytics.
type DispatchCampaignResult struct {
	CampaignID  string `json:"campaignId"`
	QueuedCount int    `json:"queuedCount"`
}
