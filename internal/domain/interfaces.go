package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MessageEvent is an inbound message pushed by the connector.
type MessageEvent struct {
	TelegramMessageID int64
	ChannelTelegramID int64
	ChannelTitle      string
	ChannelUsername   string
	ChannelKind       ChannelKind
	Text              string
	SentAt            time.Time
}

// TelegramIdentity is the caller identity attached to user-initiated
// operations, resolved to a persisted user by the ensure-user stage.
type TelegramIdentity struct {
	TelegramID int64
	FullName   string
	Username   string
}

// JoinedChannel is what the connector reports after joining a source.
type JoinedChannel struct {
	TelegramID int64
	Title      string
	Username   string
	Kind       ChannelKind
}

// Connector joins Telegram sources on the service account's behalf.
// Both calls may return ErrAlreadyMember (with channel info populated
// when it is known) or a *RateLimitedError.
type Connector interface {
	// JoinByHandle resolves a public handle and joins it
	JoinByHandle(ctx context.Context, handle string) (*JoinedChannel, error)

	// ImportInvite joins via a private invite hash
	ImportInvite(ctx context.Context, hash string) (*JoinedChannel, error)
}

// Notifier delivers a formatted HTML message to a user's Telegram identity.
type Notifier interface {
	Send(ctx context.Context, userTelegramID int64, htmlText string) error
}

// UserRepository provides access to user rows within a transaction.
type UserRepository interface {
	// GetByTelegramID retrieves a user by telegram id
	GetByTelegramID(telegramID int64) (*User, error)

	// GetByID retrieves a user by primary key
	GetByID(id uuid.UUID) (*User, error)

	// Create persists a new user and flushes so the id is available
	Create(user *User) error

	// Save persists changes to an existing user
	Save(user *User) error
}

// ChannelRepository provides access to channel rows within a transaction.
type ChannelRepository interface {
	// GetByTelegramID retrieves a channel with its tags preloaded
	GetByTelegramID(telegramID int64) (*Channel, error)

	// Create persists a new channel and flushes so the id is available
	Create(channel *Channel) error

	// Save persists changes to an existing channel
	Save(channel *Channel) error

	// AttachTag associates a tag with a channel, idempotently
	AttachTag(channel *Channel, tag *Tag) error

	// Delete hard-deletes a channel row; message foreign keys are
	// nulled by the database
	Delete(channel *Channel) error
}

// TagRepository provides access to tag rows within a transaction.
type TagRepository interface {
	// GetByName retrieves a tag by its unique name
	GetByName(name string) (*Tag, error)

	// Create persists a new tag and flushes so the id is available
	Create(tag *Tag) error

	// Save persists changes to an existing tag
	Save(tag *Tag) error
}

// SubscriptionRepository provides access to subscription rows within a
// transaction.
type SubscriptionRepository interface {
	// GetByID retrieves a subscription by primary key
	GetByID(id uuid.UUID) (*Subscription, error)

	// Create persists a new subscription and flushes so the id is available
	Create(sub *Subscription) error

	// Save persists changes to an existing subscription
	Save(sub *Subscription) error

	// AttachTag associates a tag with a subscription, idempotently
	AttachTag(sub *Subscription, tag *Tag) error

	// ListActive returns every ACTIVE subscription as a detached record
	// carrying the owner's telegram id
	ListActive() ([]ActiveSubscription, error)
}

// MessageRepository provides access to message rows within a transaction.
type MessageRepository interface {
	// Create persists a new message and flushes so the id is available
	Create(msg *Message) error
}

// JoinRequestRepository is the typed job queue backing the queue
// processor: enqueue, claimNext, complete, fail. A single active worker
// is assumed; ClaimNext does not lease or lock the returned row.
type JoinRequestRepository interface {
	// Enqueue creates a PENDING request unless a non-FAILED request for
	// the same identifier exists, in which case the existing row is
	// returned with created=false
	Enqueue(identifier Identifier, tags []string, userID uuid.UUID) (req *JoinRequest, created bool, err error)

	// ClaimNext returns the oldest PENDING request, or nil when idle
	ClaimNext() (*JoinRequest, error)

	// Complete transitions a PENDING request to SUCCESS
	Complete(id uuid.UUID) error

	// Fail transitions a PENDING request to FAILED
	Fail(id uuid.UUID) error
}

// Tx is the set of repositories bound to one transactional session.
type Tx struct {
	Users         UserRepository
	Channels      ChannelRepository
	Tags          TagRepository
	Subscriptions SubscriptionRepository
	Messages      MessageRepository
	JoinRequests  JoinRequestRepository
}

// UnitOfWork opens a transaction-scoped session and runs fn against the
// repositories bound to it. fn returning nil commits; any error rolls
// back and is returned. The session is released in both cases.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx *Tx) error) error
}
