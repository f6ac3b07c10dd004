package dynamodb

import (
	"fmt"
	"time"

	"communityapp/domain/core/entities"
)

// Single-table key layout. Every entity lives in one sparse table keyed by
// (PK, SK); GSI_* attributes are projection keys written by the
// application to make rows discoverable through the secondary indexes.
const (
	skProfile   = "PROFILE"
	skDetail    = "DETAIL"
	skAnalytics = "ANALYTICS"

	gsiByCompany       = "GSI_ByCompany"
	gsiByJobTitle      = "GSI_ByJobTitle"
	gsiByLocation      = "GSI_ByLocation"
	gsiByHostedCount   = "GSI_ByHostedCount"
	gsiByAttendedCount = "GSI_ByAttendedCount"
	gsiByActivity      = "GSI_ByActivity"
	gsiParticipants    = "GSI_GatheringParticipants"
	gsiByDate          = "GSI_GatheringsByDate"

	// Partition values for the activity indexes: all profiles share one
	// partition so the zero-padded sort key yields a counter ordering.
	activityProfilePartition  = "PERSON_PROFILE"
	activityActivityPartition = "PERSON_ACTIVITY"

	timelinePartition = "GATHERING_TIMELINE"
)

func personPK(id string) string    { return "PERSON#" + id }
func gatheringPK(id string) string { return "GATHERING#" + id }
func emailPK(id string) string     { return "EMAIL#" + id }

func hostSK(personID string) string       { return "HOST#" + personID }
func attendsSK(gatheringID string) string { return "ATTENDS#" + gatheringID }

func companyPartition(company string) string   { return "COMPANY#" + company }
func jobTitlePartition(jobTitle string) string { return "JOBTITLE#" + jobTitle }
func locationPartition(state, city string) string {
	return fmt.Sprintf("LOCATION#%s#%s", state, city)
}

// lastNameSort keys the attribute GSIs so equal-attribute persons come back
// in last-name order.
func lastNameSort(lastName, personID string) string {
	return fmt.Sprintf("LASTNAME#%s#PERSON#%s", lastName, personID)
}

// paddedCount renders a counter as a fixed-width decimal so string order in
// the index sort key equals numeric order. Counters only grow, so ten
// digits never overflow in practice.
func paddedCount(n int) string { return fmt.Sprintf("%010d", n) }

func hostedCountSort(count int, personID string) string {
	return fmt.Sprintf("HOSTED_COUNT#%s#PERSON#%s", paddedCount(count), personID)
}

func attendedCountSort(count int, personID string) string {
	return fmt.Sprintf("ATTENDED_COUNT#%s#PERSON#%s", paddedCount(count), personID)
}

// personItem is the DynamoDB shape of a person profile row. Optional
// profile attributes and conditional projection keys carry omitempty so
// unset stays absent in storage rather than becoming an empty string.
type personItem struct {
	PK            string  `dynamodbav:"PK"`
	SK            string  `dynamodbav:"SK"`
	ID            string  `dynamodbav:"id"`
	FirstName     string  `dynamodbav:"firstName"`
	LastName      string  `dynamodbav:"lastName"`
	PhoneNumber   string  `dynamodbav:"phoneNumber"`
	Email         string  `dynamodbav:"email"`
	Avatar        *string `dynamodbav:"avatar,omitempty"`
	Gender        *string `dynamodbav:"gender,omitempty"`
	JobTitle      *string `dynamodbav:"jobTitle,omitempty"`
	Company       *string `dynamodbav:"company,omitempty"`
	City          *string `dynamodbav:"city,omitempty"`
	State         *string `dynamodbav:"state,omitempty"`
	HostedCount   int     `dynamodbav:"hostedCount"`
	AttendedCount int     `dynamodbav:"attendedCount"`

	GSIByCompanyPK       string `dynamodbav:"GSI_ByCompany_PK,omitempty"`
	GSIByCompanySK       string `dynamodbav:"GSI_ByCompany_SK,omitempty"`
	GSIByJobTitlePK      string `dynamodbav:"GSI_ByJobTitle_PK,omitempty"`
	GSIByJobTitleSK      string `dynamodbav:"GSI_ByJobTitle_SK,omitempty"`
	GSIByLocationPK      string `dynamodbav:"GSI_ByLocation_PK,omitempty"`
	GSIByLocationSK      string `dynamodbav:"GSI_ByLocation_SK,omitempty"`
	GSIByHostedCountPK   string `dynamodbav:"GSI_ByHostedCount_PK"`
	GSIByHostedCountSK   string `dynamodbav:"GSI_ByHostedCount_SK"`
	GSIByAttendedCountPK string `dynamodbav:"GSI_ByAttendedCount_PK"`
	GSIByAttendedCountSK string `dynamodbav:"GSI_ByAttendedCount_SK"`
	GSIByActivityPK      string `dynamodbav:"GSI_ByActivity_PK"`
	GSIByActivitySK      string `dynamodbav:"GSI_ByActivity_SK"`
}

// newPersonItem derives every projection key from the person's current
// attribute values. Any write that changes company, jobTitle, city/state or
// a counter must rewrite the matching projection key, or index filtering
// silently breaks.
func newPersonItem(p *entities.Person) personItem {
	item := personItem{
		PK:            personPK(p.ID),
		SK:            skProfile,
		ID:            p.ID,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PhoneNumber:   p.PhoneNumber,
		Email:         p.Email,
		Avatar:        p.Avatar,
		Gender:        p.Gender,
		JobTitle:      p.JobTitle,
		Company:       p.Company,
		City:          p.City,
		State:         p.State,
		HostedCount:   p.HostedCount,
		AttendedCount: p.AttendedCount,

		GSIByHostedCountPK:   activityProfilePartition,
		GSIByHostedCountSK:   hostedCountSort(p.HostedCount, p.ID),
		GSIByAttendedCountPK: activityProfilePartition,
		GSIByAttendedCountSK: attendedCountSort(p.AttendedCount, p.ID),
		GSIByActivityPK:      activityActivityPartition,
		GSIByActivitySK:      attendedCountSort(p.AttendedCount, p.ID),
	}

	if p.Company != nil {
		item.GSIByCompanyPK = companyPartition(*p.Company)
		item.GSIByCompanySK = lastNameSort(p.LastName, p.ID)
	}
	if p.JobTitle != nil {
		item.GSIByJobTitlePK = jobTitlePartition(*p.JobTitle)
		item.GSIByJobTitleSK = lastNameSort(p.LastName, p.ID)
	}
	if p.HasLocation() {
		item.GSIByLocationPK = locationPartition(*p.State, *p.City)
		item.GSIByLocationSK = lastNameSort(p.LastName, p.ID)
	}

	return item
}

func (i personItem) toPerson() *entities.Person {
	return &entities.Person{
		ID:            i.ID,
		FirstName:     i.FirstName,
		LastName:      i.LastName,
		PhoneNumber:   i.PhoneNumber,
		Email:         i.Email,
		Avatar:        i.Avatar,
		Gender:        i.Gender,
		JobTitle:      i.JobTitle,
		Company:       i.Company,
		City:          i.City,
		State:         i.State,
		HostedCount:   i.HostedCount,
		AttendedCount: i.AttendedCount,
	}
}

// gatheringItem is the DynamoDB shape of a gathering detail row. The
// attendeeCount is the creation-time snapshot and is never rewritten.
type gatheringItem struct {
	PK            string `dynamodbav:"PK"`
	SK            string `dynamodbav:"SK"`
	ID            string `dynamodbav:"id"`
	Slug          string `dynamodbav:"slug"`
	Title         string `dynamodbav:"title"`
	Description   string `dynamodbav:"description"`
	StartAt       string `dynamodbav:"startAt"`
	EndAt         string `dynamodbav:"endAt"`
	Venue         string `dynamodbav:"venue"`
	MaxCapacity   int    `dynamodbav:"maxCapacity"`
	Owner         string `dynamodbav:"owner"`
	AttendeeCount int    `dynamodbav:"attendeeCount"`

	GSIByDatePK string `dynamodbav:"GSI_GatheringsByDate_PK"`
	GSIByDateSK string `dynamodbav:"GSI_GatheringsByDate_SK"`
}

func newGatheringItem(g *entities.Gathering) gatheringItem {
	return gatheringItem{
		PK:            gatheringPK(g.ID),
		SK:            skDetail,
		ID:            g.ID,
		Slug:          g.Slug,
		Title:         g.Title,
		Description:   g.Description,
		StartAt:       g.StartAt.Format(time.RFC3339),
		EndAt:         g.EndAt.Format(time.RFC3339),
		Venue:         g.Venue,
		MaxCapacity:   g.MaxCapacity,
		Owner:         g.Owner,
		AttendeeCount: g.AttendeeCount,

		GSIByDatePK: timelinePartition,
		GSIByDateSK: "DATE#" + g.StartAt.Format("2006-01-02"),
	}
}

// edgeItem is one relationship row. Host edges hang off the gathering
// partition, attends edges off the person partition; both carry the
// reverse-lookup projection keyed by gathering so participants can be
// listed without a scan.
type edgeItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	PersonID    string `dynamodbav:"personId"`
	GatheringID string `dynamodbav:"gatheringId"`
	Role        string `dynamodbav:"role"`

	GSIParticipantsPK string `dynamodbav:"GSI_GatheringParticipants_PK"`
	GSIParticipantsSK string `dynamodbav:"GSI_GatheringParticipants_SK"`
}

func newHostEdgeItem(gatheringID, personID string) edgeItem {
	return edgeItem{
		PK:                gatheringPK(gatheringID),
		SK:                hostSK(personID),
		PersonID:          personID,
		GatheringID:       gatheringID,
		Role:              string(entities.RoleHost),
		GSIParticipantsPK: gatheringPK(gatheringID),
		GSIParticipantsSK: personPK(personID),
	}
}

func newAttendsEdgeItem(gatheringID, personID string) edgeItem {
	return edgeItem{
		PK:                personPK(personID),
		SK:                attendsSK(gatheringID),
		PersonID:          personID,
		GatheringID:       gatheringID,
		Role:              string(entities.RoleAttendee),
		GSIParticipantsPK: gatheringPK(gatheringID),
		GSIParticipantsSK: personPK(personID),
	}
}

func (i edgeItem) toParticipant() *entities.Participant {
	return &entities.Participant{
		PersonID:    i.PersonID,
		GatheringID: i.GatheringID,
		Role:        entities.ParticipantRole(i.Role),
	}
}

// emailItem is one send record row. Timestamps are stored as RFC 3339
// strings; optional fields stay absent in storage until written.
type emailItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	ID         string `dynamodbav:"id"`
	PersonID   string `dynamodbav:"personId"`
	Email      string `dynamodbav:"email"`
	Subject    string `dynamodbav:"subject"`
	Status     string `dynamodbav:"status"`
	CampaignID string `dynamodbav:"campaignId"`
	CreatedAt  string `dynamodbav:"createdAt"`

	UTMCampaign  *string `dynamodbav:"utmCampaign,omitempty"`
	UTMSource    *string `dynamodbav:"utmSource,omitempty"`
	UTMMedium    *string `dynamodbav:"utmMedium,omitempty"`
	SentAt       *string `dynamodbav:"sentAt,omitempty"`
	ErrorMessage *string `dynamodbav:"errorMessage,omitempty"`
}

func newEmailItem(r *entities.EmailSendRecord) emailItem {
	item := emailItem{
		PK:           emailPK(r.ID),
		SK:           skAnalytics,
		ID:           r.ID,
		PersonID:     r.PersonID,
		Email:        r.Email,
		Subject:      r.Subject,
		Status:       string(r.Status),
		CampaignID:   r.CampaignID,
		CreatedAt:    r.CreatedAt.UTC().Format(time.RFC3339),
		UTMCampaign:  r.UTMCampaign,
		UTMSource:    r.UTMSource,
		UTMMedium:    r.UTMMedium,
		ErrorMessage: r.ErrorMessage,
	}
	if r.SentAt != nil {
		s := r.SentAt.UTC().Format(time.RFC3339)
		item.SentAt = &s
	}
	return item
}

// toRecord normalizes the row to the API shape: every optional field is
// present, explicitly nil when unset. A malformed stored timestamp yields
// the zero time; the analytics predicate decides what to do with it.
func (i emailItem) toRecord() *entities.EmailSendRecord {
	rec := &entities.EmailSendRecord{
		ID:           i.ID,
		PersonID:     i.PersonID,
		Email:        i.Email,
		Subject:      i.Subject,
		Status:       entities.EmailStatus(i.Status),
		CampaignID:   i.CampaignID,
		UTMCampaign:  i.UTMCampaign,
		UTMSource:    i.UTMSource,
		UTMMedium:    i.UTMMedium,
		ErrorMessage: i.ErrorMessage,
	}
	if t, err := time.Parse(time.RFC3339, i.CreatedAt); err == nil {
		rec.CreatedAt = t
	}
	if i.SentAt != nil {
		if t, err := time.Parse(time.RFC3339, *i.SentAt); err == nil {
			rec.SentAt = &t
		}
	}
	return rec
}
