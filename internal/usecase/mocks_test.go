package usecase

import (
	"context"
	"sync"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// In-memory unit of work used across the package tests. It binds
// repositories over shared slices and mirrors the guarded transitions
// of the real postgres layer. No rollback: the use cases under test
// validate before writing.

type memDB struct {
	users    []*domain.User
	channels []*domain.Channel
	tags     []*domain.Tag
	subs     []*domain.Subscription
	messages []*domain.Message
	requests []*domain.JoinRequest
}

type memUOW struct {
	mu    sync.Mutex
	db    *memDB
	doErr error
}

func newMemUOW() *memUOW {
	return &memUOW{db: &memDB{}}
}

func (u *memUOW) Do(ctx context.Context, fn func(tx *domain.Tx) error) error {
	if u.doErr != nil {
		return u.doErr
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return fn(&domain.Tx{
		Users:         &memUserRepo{db: u.db},
		Channels:      &memChannelRepo{db: u.db},
		Tags:          &memTagRepo{db: u.db},
		Subscriptions: &memSubRepo{db: u.db},
		Messages:      &memMessageRepo{db: u.db},
		JoinRequests:  &memJoinRepo{db: u.db},
	})
}

type memUserRepo struct{ db *memDB }

func (r *memUserRepo) GetByTelegramID(telegramID int64) (*domain.User, error) {
	for _, u := range r.db.users {
		if u.TelegramID == telegramID {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) GetByID(id uuid.UUID) (*domain.User, error) {
	for _, u := range r.db.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *memUserRepo) Create(user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	r.db.users = append(r.db.users, user)
	return nil
}

func (r *memUserRepo) Save(*domain.User) error { return nil }

type memChannelRepo struct{ db *memDB }

func (r *memChannelRepo) GetByTelegramID(telegramID int64) (*domain.Channel, error) {
	for _, c := range r.db.channels {
		if c.TelegramID == telegramID {
			return c, nil
		}
	}
	return nil, domain.ErrChannelNotFound
}

func (r *memChannelRepo) Create(channel *domain.Channel) error {
	if channel.ID == uuid.Nil {
		channel.ID = uuid.New()
	}
	r.db.channels = append(r.db.channels, channel)
	return nil
}

func (r *memChannelRepo) Save(*domain.Channel) error { return nil }

func (r *memChannelRepo) AttachTag(channel *domain.Channel, tag *domain.Tag) error {
	for _, t := range channel.Tags {
		if t.ID == tag.ID {
			return nil
		}
	}
	channel.Tags = append(channel.Tags, *tag)
	return nil
}

func (r *memChannelRepo) Delete(channel *domain.Channel) error {
	for i, c := range r.db.channels {
		if c.ID == channel.ID {
			r.db.channels = append(r.db.channels[:i], r.db.channels[i+1:]...)
			break
		}
	}
	for _, m := range r.db.messages {
		if m.ChannelID != nil && *m.ChannelID == channel.ID {
			m.ChannelID = nil
		}
	}
	return nil
}

type memTagRepo struct{ db *memDB }

func (r *memTagRepo) GetByName(name string) (*domain.Tag, error) {
	for _, t := range r.db.tags {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, domain.ErrTagNotFound
}

func (r *memTagRepo) Create(tag *domain.Tag) error {
	if tag.ID == uuid.Nil {
		tag.ID = uuid.New()
	}
	r.db.tags = append(r.db.tags, tag)
	return nil
}

func (r *memTagRepo) Save(*domain.Tag) error { return nil }

type memSubRepo struct{ db *memDB }

func (r *memSubRepo) GetByID(id uuid.UUID) (*domain.Subscription, error) {
	for _, s := range r.db.subs {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, domain.ErrSubscriptionNotFound
}

func (r *memSubRepo) Create(sub *domain.Subscription) error {
	if sub.ID == uuid.Nil {
		sub.ID = uuid.New()
	}
	r.db.subs = append(r.db.subs, sub)
	return nil
}

func (r *memSubRepo) Save(*domain.Subscription) error { return nil }

func (r *memSubRepo) AttachTag(sub *domain.Subscription, tag *domain.Tag) error {
	for _, t := range sub.Tags {
		if t.ID == tag.ID {
			return nil
		}
	}
	sub.Tags = append(sub.Tags, *tag)
	return nil
}

func (r *memSubRepo) ListActive() ([]domain.ActiveSubscription, error) {
	var out []domain.ActiveSubscription
	for _, s := range r.db.subs {
		if s.Status != domain.StatusActive {
			continue
		}
		for _, u := range r.db.users {
			if u.ID == s.UserID {
				out = append(out, domain.ActiveSubscription{
					ID:             s.ID,
					QueryText:      s.QueryText,
					UserTelegramID: u.TelegramID,
				})
				break
			}
		}
	}
	return out, nil
}

type memMessageRepo struct{ db *memDB }

func (r *memMessageRepo) Create(msg *domain.Message) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	r.db.messages = append(r.db.messages, msg)
	return nil
}

type memJoinRepo struct{ db *memDB }

func (r *memJoinRepo) Enqueue(identifier domain.Identifier, tags []string, userID uuid.UUID) (*domain.JoinRequest, bool, error) {
	for _, req := range r.db.requests {
		if req.Identifier == string(identifier) && req.Status != domain.JoinFailed {
			return req, false, nil
		}
	}
	req := &domain.JoinRequest{
		ID:            uuid.New(),
		Identifier:    string(identifier),
		Tags:          pq.StringArray(tags),
		RequestedByID: userID,
		Status:        domain.JoinPending,
	}
	r.db.requests = append(r.db.requests, req)
	return req, true, nil
}

func (r *memJoinRepo) ClaimNext() (*domain.JoinRequest, error) {
	for _, req := range r.db.requests {
		if req.Status == domain.JoinPending {
			return req, nil
		}
	}
	return nil, nil
}

func (r *memJoinRepo) Complete(id uuid.UUID) error {
	return r.transition(id, domain.JoinSuccess)
}

func (r *memJoinRepo) Fail(id uuid.UUID) error {
	return r.transition(id, domain.JoinFailed)
}

func (r *memJoinRepo) transition(id uuid.UUID, to domain.JoinRequestStatus) error {
	for _, req := range r.db.requests {
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

// mockNotifier records every dispatch and fails on demand.
type mockNotifier struct {
	sendFunc func(ctx context.Context, userTelegramID int64, htmlText string) error
	sent     []sentNotification
}

type sentNotification struct {
	userTelegramID int64
	text           string
}

func (m *mockNotifier) Send(ctx context.Context, userTelegramID int64, htmlText string) error {
	if m.sendFunc != nil {
		if err := m.sendFunc(ctx, userTelegramID, htmlText); err != nil {
			return err
		}
	}
	m.sent = append(m.sent, sentNotification{userTelegramID: userTelegramID, text: htmlText})
	return nil
}

func seedUser(uow *memUOW, telegramID int64) *domain.User {
	user := &domain.User{
		ID:         uuid.New(),
		TelegramID: telegramID,
		FullName:   "Test User",
		Status:     domain.StatusActive,
	}
	uow.db.users = append(uow.db.users, user)
	return user
}

func seedSubscription(uow *memUOW, user *domain.User, query string, status domain.Status) *domain.Subscription {
	sub := &domain.Subscription{
		ID:        uuid.New(),
		UserID:    user.ID,
		QueryText: query,
		Status:    status,
	}
	uow.db.subs = append(uow.db.subs, sub)
	return sub
}
