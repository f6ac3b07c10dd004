package services

import (
	"context"
	"fmt"
	"testing"

	"communityapp/application/commands"
	"communityapp/application/queries"
	"communityapp/domain/core/entities"
	apperrors "communityapp/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func campaignPersons(n int) []*entities.Person {
	persons := make([]*entities.Person, 0, n)
	for i := 0; i < n; i++ {
		persons = append(persons, &entities.Person{
			ID:        fmt.Sprintf("p%02d", i),
			FirstName: "Person",
			LastName:  fmt.Sprintf("L%02d", i),
			Email:     fmt.Sprintf("p%02d@x.com", i),
		})
	}
	return persons
}

func validCampaignCommand() commands.DispatchCampaignCommand {
	return commands.DispatchCampaignCommand{
		Subject: "Hello",
		Body:    "See you at the next gathering",
	}
}

func TestCampaignService_DispatchQueuesEveryRecipient(t *testing.T) {
	persons := newFakePersonRepo(campaignPersons(5)...)
	emails := newFakeEmailRepo()
	mailer := newFakeMailer()
	svc := NewCampaignService(persons, emails, mailer, zap.NewNop())

	result, err := svc.Dispatch(context.Background(), validCampaignCommand())
	require.NoError(t, err)

	assert.NotEmpty(t, result.CampaignID)
	assert.Equal(t, 5, result.QueuedCount)

	svc.Drain()

	counts := emails.statusCounts()
	assert.Equal(t, 5, counts[entities.EmailStatusSent])
	assert.Zero(t, counts[entities.EmailStatusQueued])
}

func TestCampaignService_DeliveryFailureRecordedNotRaised(t *testing.T) {
	persons := newFakePersonRepo(campaignPersons(4)...)
	emails := newFakeEmailRepo()
	mailer := newFakeMailer("p01@x.com", "p03@x.com")
	svc := NewCampaignService(persons, emails, mailer, zap.NewNop())

	result, err := svc.Dispatch(context.Background(), validCampaignCommand())
	require.NoError(t, err)
	assert.Equal(t, 4, result.QueuedCount)

	svc.Drain()

	counts := emails.statusCounts()
	assert.Equal(t, 2, counts[entities.EmailStatusSent])
	assert.Equal(t, 2, counts[entities.EmailStatusFailed])

	emails.mu.Lock()
	defer emails.mu.Unlock()
	for _, rec := range emails.records {
		switch rec.Status {
		case entities.EmailStatusSent:
			assert.NotNil(t, rec.SentAt)
			assert.Nil(t, rec.ErrorMessage)
		case entities.EmailStatusFailed:
			assert.Nil(t, rec.SentAt)
			require.NotNil(t, rec.ErrorMessage)
			assert.Contains(t, *rec.ErrorMessage, "rejected by upstream")
		}
	}
}

func TestCampaignService_RecipientsShareOneCampaignID(t *testing.T) {
	persons := newFakePersonRepo(campaignPersons(3)...)
	emails := newFakeEmailRepo()
	svc := NewCampaignService(persons, emails, newFakeMailer(), zap.NewNop())

	utm := "spring-launch"
	cmd := validCampaignCommand()
	cmd.UTMCampaign = &utm

	result, err := svc.Dispatch(context.Background(), cmd)
	require.NoError(t, err)
	svc.Drain()

	emails.mu.Lock()
	defer emails.mu.Unlock()
	require.Len(t, emails.records, 3)
	for _, rec := range emails.records {
		assert.Equal(t, result.CampaignID, rec.CampaignID)
		require.NotNil(t, rec.UTMCampaign)
		assert.Equal(t, "spring-launch", *rec.UTMCampaign)
	}
}

func TestCampaignService_EmptyAudienceQueuesNothing(t *testing.T) {
	persons := newFakePersonRepo()
	emails := newFakeEmailRepo()
	svc := NewCampaignService(persons, emails, newFakeMailer(), zap.NewNop())

	result, err := svc.Dispatch(context.Background(), validCampaignCommand())
	require.NoError(t, err)

	assert.Equal(t, 0, result.QueuedCount)
	assert.NotEmpty(t, result.CampaignID)
	svc.Drain()
	assert.Empty(t, emails.records)
}

func TestCampaignService_DispatchValidation(t *testing.T) {
	svc := NewCampaignService(newFakePersonRepo(), newFakeEmailRepo(), newFakeMailer(), zap.NewNop())
	ctx := context.Background()

	_, err := svc.Dispatch(ctx, commands.DispatchCampaignCommand{Body: "no subject"})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Dispatch(ctx, commands.DispatchCampaignCommand{Subject: "no body"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestCampaignService_GetAnalyticsDefaultsPageSize(t *testing.T) {
	emails := newFakeEmailRepo()
	svc := NewCampaignService(newFakePersonRepo(), emails, newFakeMailer(), zap.NewNop())

	page, err := svc.GetAnalytics(context.Background(), queries.AnalyticsFilter{}, 0, nil)

	require.NoError(t, err)
	assert.Zero(t, page.Total)
}
