package services

import (
	"context"
	"strconv"
	"sync"
	"time"

	"communityapp/application/queries"
	"communityapp/domain/core/entities"
	apperrors "communityapp/pkg/errors"
)

// fakePersonRepo pages through a fixed person list using the numeric
// offset as its continuation token, exercising the same paging loop the
// store adapter drives.
type fakePersonRepo struct {
	persons  []*entities.Person
	pageSize int

	counters map[string]*entities.Person
}

func newFakePersonRepo(persons ...*entities.Person) *fakePersonRepo {
	counters := make(map[string]*entities.Person, len(persons))
	for _, p := range persons {
		counters[p.ID] = p
	}
	return &fakePersonRepo{persons: persons, pageSize: 2, counters: counters}
}

func (f *fakePersonRepo) Create(ctx context.Context, person *entities.Person) error {
	f.persons = append(f.persons, person)
	f.counters[person.ID] = person
	return nil
}

func (f *fakePersonRepo) GetByID(ctx context.Context, id string) (*entities.Person, error) {
	if p, ok := f.counters[id]; ok {
		return p, nil
	}
	return nil, apperrors.NewNotFoundError("person")
}

func (f *fakePersonRepo) Filter(ctx context.Context, filter queries.PersonFilter, pageSize int, token *string) ([]*entities.Person, *string, error) {
	start := 0
	if token != nil {
		start, _ = strconv.Atoi(*token)
	}
	if start >= len(f.persons) {
		return nil, nil, nil
	}

	end := start + f.pageSize
	if end > len(f.persons) {
		end = len(f.persons)
	}

	page := f.persons[start:end]
	if end >= len(f.persons) {
		return page, nil, nil
	}
	next := strconv.Itoa(end)
	return page, &next, nil
}

func (f *fakePersonRepo) IncrementHostedCount(ctx context.Context, personID string) (int, error) {
	p, ok := f.counters[personID]
	if !ok {
		return 0, apperrors.NewNotFoundError("person")
	}
	p.HostedCount++
	return p.HostedCount, nil
}

func (f *fakePersonRepo) IncrementAttendedCount(ctx context.Context, personID string) (int, error) {
	p, ok := f.counters[personID]
	if !ok {
		return 0, apperrors.NewNotFoundError("person")
	}
	p.AttendedCount++
	return p.AttendedCount, nil
}

// fakeGatheringRepo records the last atomic create request.
type fakeGatheringRepo struct {
	created     *entities.Gathering
	hostIDs     []string
	attendeeIDs []string
	createErr   error
}

func (f *fakeGatheringRepo) CreateWithParticipants(ctx context.Context, gathering *entities.Gathering, hostIDs, attendeeIDs []string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = gathering
	f.hostIDs = hostIDs
	f.attendeeIDs = attendeeIDs
	return nil
}

func (f *fakeGatheringRepo) ListParticipants(ctx context.Context, gatheringID string) ([]*entities.Participant, error) {
	return nil, nil
}

// fakeEmailRepo is safe for the concurrent status updates the delivery
// units perform.
type fakeEmailRepo struct {
	mu      sync.Mutex
	records map[string]*entities.EmailSendRecord
}

func newFakeEmailRepo() *fakeEmailRepo {
	return &fakeEmailRepo{records: make(map[string]*entities.EmailSendRecord)}
}

func (f *fakeEmailRepo) CreateQueued(ctx context.Context, records []*entities.EmailSendRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range records {
		clone := *r
		f.records[r.ID] = &clone
	}
	return nil
}

func (f *fakeEmailRepo) UpdateStatus(ctx context.Context, id string, status entities.EmailStatus, sentAt *time.Time, errorMessage *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.records[id]
	if !ok {
		return apperrors.NewNotFoundError("email record")
	}
	r.Status = status
	r.SentAt = sentAt
	r.ErrorMessage = errorMessage
	return nil
}

func (f *fakeEmailRepo) Analytics(ctx context.Context, filter queries.AnalyticsFilter, pageSize int, token *string) (*queries.AnalyticsPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	page := &queries.AnalyticsPage{Total: len(f.records)}
	for _, r := range f.records {
		clone := *r
		page.Records = append(page.Records, &clone)
	}
	page.Count = len(page.Records)
	return page, nil
}

func (f *fakeEmailRepo) statusCounts() map[entities.EmailStatus]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[entities.EmailStatus]int)
	for _, r := range f.records {
		counts[r.Status]++
	}
	return counts
}

// fakeMailer fails for addresses in reject, succeeds otherwise.
type fakeMailer struct {
	mu     sync.Mutex
	sent   []string
	reject map[string]bool
}

func newFakeMailer(reject ...string) *fakeMailer {
	m := &fakeMailer{reject: make(map[string]bool)}
	for _, addr := range reject {
		m.reject[addr] = true
	}
	return m
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reject[to] {
		return apperrors.NewDeliveryError("rejected by upstream")
	}
	f.sent = append(f.sent, to)
	return nil
}
