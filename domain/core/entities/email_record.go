package entities

import "time"

// EmailStatus is the lifecycle state of one send record. A record is
// created queued and transitions exactly once to a terminal state.
type EmailStatus string

const (
	EmailStatusQueued  EmailStatus = "queued"
	EmailStatusSent    EmailStatus = "sent"
	EmailStatusFailed  EmailStatus = "failed"
	EmailStatusBounced EmailStatus = "bounced"
)

// Valid reports whether s is a known status value.
func (s EmailStatus) Valid() bool {
	switch s {
	case EmailStatusQueued, EmailStatusSent, EmailStatusFailed, EmailStatusBounced:
		return true
	}
	return false
}

// EmailSendRecord tracks one (campaign, recipient) pair. Optional fields
// are pointers and always present on the wire, so API consumers never need
// presence checks: unset means an explicit null.
type EmailSendRecord struct {
	ID         string      `json:"id"`
	PersonID   string      `json:"personId"`
	Email      string      `json:"email"`
	Subject    string      `json:"subject"`
	Status     EmailStatus `json:"status"`
	CampaignID string      `json:"campaignId"`
	CreatedAt  time.Time   `json:"createdAt"`

	UTMCampaign  *string    `json:"utmCampaign"`
	UTMSource    *string    `json:"utmSource"`
	UTMMedium    *string    `json:"utmMedium"`
	SentAt       *time.Time `json:"sentAt"`
	ErrorMessage *string    `json:"errorMessage"`
}
