package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/metrics"
	"github.com/dipherent1/tgwrapper/internal/usecase"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is a minimal in-memory store covering the repositories the
// processor path touches: the join queue, channels and tags.
type fakeStore struct {
	mu       sync.Mutex
	requests []*domain.JoinRequest
	channels []*domain.Channel
	tags     []*domain.Tag
	failNext int
}

type fakeUOW struct{ store *fakeStore }

func (u *fakeUOW) Do(ctx context.Context, fn func(tx *domain.Tx) error) error {
	u.store.mu.Lock()
	defer u.store.mu.Unlock()
	if u.store.failNext > 0 {
		u.store.failNext--
		return errors.New("store unreachable")
	}
	return fn(&domain.Tx{
		Channels:     &fakeChannelRepo{store: u.store},
		Tags:         &fakeTagRepo{store: u.store},
		JoinRequests: &fakeJoinRepo{store: u.store},
	})
}

type fakeJoinRepo struct{ store *fakeStore }

func (r *fakeJoinRepo) Enqueue(identifier domain.Identifier, tags []string, userID uuid.UUID) (*domain.JoinRequest, bool, error) {
	req := &domain.JoinRequest{
		ID:            uuid.New(),
		Identifier:    string(identifier),
		Tags:          pq.StringArray(tags),
		RequestedByID: userID,
		Status:        domain.JoinPending,
	}
	r.store.requests = append(r.store.requests, req)
	return req, true, nil
}

func (r *fakeJoinRepo) ClaimNext() (*domain.JoinRequest, error) {
	for _, req := range r.store.requests {
		if req.Status == domain.JoinPending {
			return req, nil
		}
	}
	return nil, nil
}

func (r *fakeJoinRepo) Complete(id uuid.UUID) error {
	return r.transition(id, domain.JoinSuccess)
}

func (r *fakeJoinRepo) Fail(id uuid.UUID) error {
	return r.transition(id, domain.JoinFailed)
}

func (r *fakeJoinRepo) transition(id uuid.UUID, to domain.JoinRequestStatus) error {
	for _, req := range r.store.requests {
		if req.ID != id {
			continue
		}
		if req.Status != domain.JoinPending {
			return domain.ErrJoinRequestTerminal
		}
		req.Status = to
		return nil
	}
	return domain.ErrJoinRequestNotFound
}

type fakeChannelRepo struct{ store *fakeStore }

func (r *fakeChannelRepo) GetByTelegramID(telegramID int64) (*domain.Channel, error) {
	for _, c := range r.store.channels {
		if c.TelegramID == telegramID {
			return c, nil
		}
	}
	return nil, domain.ErrChannelNotFound
}

func (r *fakeChannelRepo) Create(channel *domain.Channel) error {
	if channel.ID == uuid.Nil {
		channel.ID = uuid.New()
	}
	r.store.channels = append(r.store.channels, channel)
	return nil
}

func (r *fakeChannelRepo) Save(*domain.Channel) error { return nil }

func (r *fakeChannelRepo) AttachTag(channel *domain.Channel, tag *domain.Tag) error {
	for _, t := range channel.Tags {
		if t.ID == tag.ID {
			return nil
		}
	}
	channel.Tags = append(channel.Tags, *tag)
	return nil
}

func (r *fakeChannelRepo) Delete(channel *domain.Channel) error { return nil }

type fakeTagRepo struct{ store *fakeStore }

func (r *fakeTagRepo) GetByName(name string) (*domain.Tag, error) {
	for _, t := range r.store.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, domain.ErrTagNotFound
}

func (r *fakeTagRepo) Create(tag *domain.Tag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	r.store.tags = append(r.store.tags, tag)
	return nil
}

func (r *fakeTagRepo) Save(*domain.Tag) error { return nil }

// mockConnector records calls and answers from the func fields.
type mockConnector struct {
	mu              sync.Mutex
	joinedHandles   []string
	importedHashes  []string
	joinByHandle    func(handle string) (*domain.JoinedChannel, error)
	importInviteFun func(hash string) (*domain.JoinedChannel, error)
}

func (m *mockConnector) JoinByHandle(_ context.Context, handle string) (*domain.JoinedChannel, error) {
	m.mu.Lock()
	m.joinedHandles = append(m.joinedHandles, handle)
	m.mu.Unlock()
	if m.joinByHandle != nil {
		return m.joinByHandle(handle)
	}
	return nil, errors.New("no handler")
}

func (m *mockConnector) ImportInvite(_ context.Context, hash string) (*domain.JoinedChannel, error) {
	m.mu.Lock()
	m.importedHashes = append(m.importedHashes, hash)
	m.mu.Unlock()
	if m.importInviteFun != nil {
		return m.importInviteFun(hash)
	}
	return nil, errors.New("no handler")
}

func newTestProcessor(store *fakeStore, connector domain.Connector, cfg JoinProcessorConfig) *JoinProcessor {
	uow := &fakeUOW{store: store}
	channels := usecase.NewChannels(uow, zerolog.Nop())
	return NewJoinProcessor(uow, connector, channels, cfg, metrics.GetDefaultMetrics(), zerolog.Nop())
}

func pendingRequest(store *fakeStore, identifier string, tags []string) *domain.JoinRequest {
	req := &domain.JoinRequest{
		ID:            uuid.New(),
		Identifier:    identifier,
		Tags:          pq.StringArray(tags),
		RequestedByID: uuid.New(),
		Status:        domain.JoinPending,
	}
	store.requests = append(store.requests, req)
	return req
}

func TestProcessorJoinsByHandle(t *testing.T) {
	store := &fakeStore{}
	req := pendingRequest(store, "@gophers", []string{"tech"})
	connector := &mockConnector{
		joinByHandle: func(handle string) (*domain.JoinedChannel, error) {
			return &domain.JoinedChannel{
				TelegramID: -1001234567890,
				Title:      "Gophers",
				Username:   "gophers",
				Kind:       domain.KindSupergroup,
			}, nil
		},
	}
	p := newTestProcessor(store, connector, JoinProcessorConfig{})

	require.NoError(t, p.iterate())

	assert.Equal(t, []string{"gophers"}, connector.joinedHandles)
	assert.Equal(t, domain.JoinSuccess, req.Status)
	require.Len(t, store.channels, 1)
	assert.Equal(t, "Gophers", store.channels[0].Name)
	require.Len(t, store.channels[0].Tags, 1)
	assert.Equal(t, "tech", store.channels[0].Tags[0].Name)
}

func TestProcessorImportsInvite(t *testing.T) {
	store := &fakeStore{}
	req := pendingRequest(store, "+AbCd123", nil)
	connector := &mockConnector{
		importInviteFun: func(hash string) (*domain.JoinedChannel, error) {
			return &domain.JoinedChannel{TelegramID: -1009999, Title: "Private", Kind: domain.KindChannel}, nil
		},
	}
	p := newTestProcessor(store, connector, JoinProcessorConfig{})

	require.NoError(t, p.iterate())

	assert.Equal(t, []string{"AbCd123"}, connector.importedHashes)
	assert.Empty(t, connector.joinedHandles)
	assert.Equal(t, domain.JoinSuccess, req.Status)
}

func TestProcessorAlreadyMemberIsSuccess(t *testing.T) {
	store := &fakeStore{}
	req := pendingRequest(store, "@gophers", nil)
	connector := &mockConnector{
		joinByHandle: func(string) (*domain.JoinedChannel, error) {
			return &domain.JoinedChannel{TelegramID: -1001234, Title: "Gophers"}, domain.ErrAlreadyMember
		},
	}
	p := newTestProcessor(store, connector, JoinProcessorConfig{})

	require.NoError(t, p.iterate())

	assert.Equal(t, domain.JoinSuccess, req.Status)
	// channel info was available and gets recorded
	assert.Len(t, store.channels, 1)
}

func TestProcessorAlreadyMemberWithoutInfo(t *testing.T) {
	store := &fakeStore{}
	req := pendingRequest(store, "+AbCd123", nil)
	connector := &mockConnector{
		importInviteFun: func(string) (*domain.JoinedChannel, error) {
			return nil, domain.ErrAlreadyMember
		},
	}
	p := newTestProcessor(store, connector, JoinProcessorConfig{})

	require.NoError(t, p.iterate())

	assert.Equal(t, domain.JoinSuccess, req.Status)
	assert.Empty(t, store.channels)
}

func TestProcessorRateLimitKeepsRequestPending(t *testing.T) {
	store := &fakeStore{}
	req := pendingRequest(store, "@gophers", nil)
	connector := &mockConnector{
		joinByHandle: func(string) (*domain.JoinedChannel, error) {
			return nil, &domain.RateLimitedError{RetryAfter: 30 * time.Millisecond}
		},
	}
	p := newTestProcessor(store, connector, JoinProcessorConfig{})

	start := time.Now()
	require.NoError(t, p.iterate())

	// the whole loop waits out the server-specified duration
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Equal(t, domain.JoinPending, req.Status)
}

func TestProcessorFailureIsTerminal(t *testing.T) {
	store := &fakeStore{}
	req := pendingRequest(store, "@gophers", nil)
	connector := &mockConnector{
		joinByHandle: func(string) (*domain.JoinedChannel, error) {
			return nil, errors.New("CHANNEL_PRIVATE")
		},
	}
	p := newTestProcessor(store, connector, JoinProcessorConfig{})

	require.NoError(t, p.iterate())
	assert.Equal(t, domain.JoinFailed, req.Status)
}

func TestProcessorIdleWhenQueueEmpty(t *testing.T) {
	store := &fakeStore{}
	connector := &mockConnector{}
	p := newTestProcessor(store, connector, JoinProcessorConfig{IdleInterval: 5 * time.Millisecond})

	require.NoError(t, p.iterate())

	assert.Empty(t, connector.joinedHandles)
	assert.Empty(t, connector.importedHashes)
}

func TestProcessorStopInterruptsIdleWait(t *testing.T) {
	store := &fakeStore{}
	p := newTestProcessor(store, &mockConnector{}, JoinProcessorConfig{IdleInterval: time.Minute})

	p.Start()
	time.Sleep(10 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		p.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop did not interrupt the idle wait")
	}
}

func TestProcessorLoopSurvivesStoreFailures(t *testing.T) {
	store := &fakeStore{failNext: 2}
	req := pendingRequest(store, "@gophers", nil)
	connector := &mockConnector{
		joinByHandle: func(string) (*domain.JoinedChannel, error) {
			return &domain.JoinedChannel{TelegramID: -1001234, Title: "Gophers"}, nil
		},
	}
	p := newTestProcessor(store, connector, JoinProcessorConfig{
		IdleInterval: 5 * time.Millisecond,
		Cooldown:     5 * time.Millisecond,
	})

	p.Start()
	defer p.Stop()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return req.Status == domain.JoinSuccess
	}, 2*time.Second, 10*time.Millisecond)
}
