package dynamodb

import (
	"context"
	"fmt"
	"testing"
	"time"

	"communityapp/application/queries"
	"communityapp/domain/core/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestEmailRepo() (*EmailRepository, *fakeDynamoDB) {
	fake := newFakeDynamoDB()
	return NewEmailRepository(fake, "community-test", zap.NewNop()), fake
}

func queuedRecords(campaignID string, n int, createdAt time.Time) []*entities.EmailSendRecord {
	records := make([]*entities.EmailSendRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, &entities.EmailSendRecord{
			ID:         fmt.Sprintf("%s-e%02d", campaignID, i),
			PersonID:   fmt.Sprintf("p%02d", i),
			Email:      fmt.Sprintf("p%02d@x.com", i),
			Subject:    "Hello",
			Status:     entities.EmailStatusQueued,
			CampaignID: campaignID,
			CreatedAt:  createdAt.Add(time.Duration(i) * time.Second),
		})
	}
	return records
}

func TestEmailRepository_CreateQueuedAndAnalytics(t *testing.T) {
	repo, _ := newTestEmailRepo()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateQueued(ctx, queuedRecords("c1", 5, base)))

	page, err := repo.Analytics(ctx, queries.AnalyticsFilter{}, 20, nil)
	require.NoError(t, err)

	assert.Equal(t, 5, page.Count)
	assert.Equal(t, 5, page.Total)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextToken)

	// Newest first.
	for i := 1; i < len(page.Records); i++ {
		assert.False(t, page.Records[i].CreatedAt.After(page.Records[i-1].CreatedAt))
	}
}

func TestEmailRepository_AnalyticsEmptyStore(t *testing.T) {
	repo, _ := newTestEmailRepo()

	page, err := repo.Analytics(context.Background(), queries.AnalyticsFilter{}, 20, nil)
	require.NoError(t, err)

	assert.Empty(t, page.Records)
	assert.Equal(t, 0, page.Count)
	assert.Equal(t, 0, page.Total)
	assert.False(t, page.HasMore)
	assert.Nil(t, page.NextToken)
}

func TestEmailRepository_AnalyticsFiltersByUTMAndStatus(t *testing.T) {
	repo, _ := newTestEmailRepo()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	spring := queuedRecords("spring", 3, base)
	for _, r := range spring {
		r.UTMCampaign = strPtr("spring-launch")
	}
	require.NoError(t, repo.CreateQueued(ctx, spring))
	require.NoError(t, repo.CreateQueued(ctx, queuedRecords("autumn", 2, base.Add(time.Hour))))

	utm := "spring-launch"
	page, err := repo.Analytics(ctx, queries.AnalyticsFilter{UTMCampaign: &utm}, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Count)
	assert.Equal(t, 3, page.Total)

	// Flip one record to sent; status filtering sees it, the rest stay
	// queued.
	sentAt := base.Add(2 * time.Hour)
	require.NoError(t, repo.UpdateStatus(ctx, "spring-e00", entities.EmailStatusSent, &sentAt, nil))

	sent := entities.EmailStatusSent
	page, err = repo.Analytics(ctx, queries.AnalyticsFilter{Status: &sent}, 20, nil)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	assert.Equal(t, "spring-e00", page.Records[0].ID)
	require.NotNil(t, page.Records[0].SentAt)
	assert.True(t, page.Records[0].SentAt.Equal(sentAt.Truncate(time.Second)))

	queued := entities.EmailStatusQueued
	page, err = repo.Analytics(ctx, queries.AnalyticsFilter{Status: &queued}, 20, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, page.Count)
}

func TestEmailRepository_UpdateStatusRecordsFailure(t *testing.T) {
	repo, _ := newTestEmailRepo()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateQueued(ctx, queuedRecords("c1", 1, base)))

	msg := "mailbox full"
	require.NoError(t, repo.UpdateStatus(ctx, "c1-e00", entities.EmailStatusFailed, nil, &msg))

	failed := entities.EmailStatusFailed
	page, err := repo.Analytics(ctx, queries.AnalyticsFilter{Status: &failed}, 20, nil)
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	require.NotNil(t, page.Records[0].ErrorMessage)
	assert.Equal(t, "mailbox full", *page.Records[0].ErrorMessage)
	assert.Nil(t, page.Records[0].SentAt)
}

func TestEmailRepository_AnalyticsDateRangeInclusive(t *testing.T) {
	repo, _ := newTestEmailRepo()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	// Records at base, base+1s, ..., base+4s.
	require.NoError(t, repo.CreateQueued(ctx, queuedRecords("c1", 5, base)))

	start := base.Add(1 * time.Second)
	end := base.Add(3 * time.Second)
	page, err := repo.Analytics(ctx, queries.AnalyticsFilter{StartDate: &start, EndDate: &end}, 20, nil)
	require.NoError(t, err)

	assert.Equal(t, 3, page.Count)
	assert.Equal(t, 3, page.Total)
}

func TestEmailRepository_AnalyticsTruncatesToPageSize(t *testing.T) {
	repo, _ := newTestEmailRepo()
	ctx := context.Background()
	base := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, repo.CreateQueued(ctx, queuedRecords("c1", 30, base)))

	page, err := repo.Analytics(ctx, queries.AnalyticsFilter{}, 4, nil)
	require.NoError(t, err)

	assert.Equal(t, 4, page.Count)
	assert.Len(t, page.Records, 4)
	assert.Equal(t, 30, page.Total)
	assert.True(t, page.HasMore)
	require.NotNil(t, page.NextToken)

	// Newest of the examined window comes first.
	for i := 1; i < len(page.Records); i++ {
		assert.False(t, page.Records[i].CreatedAt.After(page.Records[i-1].CreatedAt))
	}

	// The token resumes the scan without error.
	next, err := repo.Analytics(ctx, queries.AnalyticsFilter{}, 4, page.NextToken)
	require.NoError(t, err)
	assert.NotEmpty(t, next.Records)
}
