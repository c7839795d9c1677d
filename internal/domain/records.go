package domain

import (
	"time"

	"github.com/google/uuid"
)

// Detached value records. Live gorm entities never cross a transaction
// boundary; whatever leaves the Unit of Work is copied into one of these.

// UserRecord is a detached copy of a user row.
type UserRecord struct {
	ID         uuid.UUID
	TelegramID int64
	FullName   string
	Username   string
	Status     Status
}

// NewUserRecord copies a user entity into a detached record.
func NewUserRecord(u *User) UserRecord {
	return UserRecord{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		FullName:   u.FullName,
		Username:   u.Username,
		Status:     u.Status,
	}
}

// ChannelRecord is a detached copy of a channel row.
type ChannelRecord struct {
	ID         uuid.UUID
	TelegramID int64
	Name       string
	Username   string
	Kind       ChannelKind
}

// NewChannelRecord copies a channel entity into a detached record.
func NewChannelRecord(c *Channel) ChannelRecord {
	r := ChannelRecord{
		ID:         c.ID,
		TelegramID: c.TelegramID,
		Name:       c.Name,
		Kind:       c.Kind,
	}
	if c.Username != nil {
		r.Username = *c.Username
	}
	return r
}

// MessageRecord is a detached copy of a message row, carrying the
// precomputed deep link.
type MessageRecord struct {
	ID                uuid.UUID
	TelegramMessageID int64
	ChannelTelegramID int64
	Content           string
	SentAt            time.Time
	Link              string
}

// NewMessageRecord copies a message entity into a detached record.
func NewMessageRecord(m *Message) MessageRecord {
	return MessageRecord{
		ID:                m.ID,
		TelegramMessageID: m.TelegramMessageID,
		ChannelTelegramID: m.ChannelTelegramID,
		Content:           m.Content,
		SentAt:            m.SentAt,
		Link:              m.Link(),
	}
}

// ActiveSubscription is the slice of a subscription the matching pass
// needs: the query text and the owner's external identity.
type ActiveSubscription struct {
	ID             uuid.UUID
	QueryText      string
	UserTelegramID int64
}

// JoinJob is the detached form of a claimed join request, extracted
// before the claiming transaction closes so no row is held locked
// through the connector call.
type JoinJob struct {
	ID         uuid.UUID
	Identifier Identifier
	Tags       []string
}

// JoinRequestRecord is a detached copy of a join request row.
type JoinRequestRecord struct {
	ID            uuid.UUID
	Identifier    Identifier
	Tags          []string
	RequestedByID uuid.UUID
	Status        JoinRequestStatus
	CreatedAt     time.Time
}

// NewJoinRequestRecord copies a join request entity into a detached record.
func NewJoinRequestRecord(j *JoinRequest) JoinRequestRecord {
	tags := make([]string, len(j.Tags))
	copy(tags, j.Tags)
	return JoinRequestRecord{
		ID:            j.ID,
		Identifier:    Identifier(j.Identifier),
		Tags:          tags,
		RequestedByID: j.RequestedByID,
		Status:        j.Status,
		CreatedAt:     j.CreatedAt,
	}
}

// SubscriptionRecord is a detached copy of a subscription row.
type SubscriptionRecord struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	QueryText string
	Status    Status
	Tags      []string
}

// NewSubscriptionRecord copies a subscription entity into a detached record.
func NewSubscriptionRecord(s *Subscription) SubscriptionRecord {
	tags := make([]string, 0, len(s.Tags))
	for _, t := range s.Tags {
		tags = append(tags, t.Name)
	}
	return SubscriptionRecord{
		ID:        s.ID,
		UserID:    s.UserID,
		QueryText: s.QueryText,
		Status:    s.Status,
		Tags:      tags,
	}
}
