package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Status is the lifecycle status shared by users, channels and subscriptions.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusDeleted  Status = "deleted"
)

// ChannelKind is the kind of Telegram source a channel row represents.
type ChannelKind string

const (
	KindChannel    ChannelKind = "channel"
	KindSupergroup ChannelKind = "supergroup"
	KindBasicGroup ChannelKind = "basic_group"
)

// JoinRequestStatus is the state of a queued join request.
// PENDING is the only non-terminal state.
type JoinRequestStatus string

const (
	JoinPending JoinRequestStatus = "pending"
	JoinSuccess JoinRequestStatus = "success"
	JoinFailed  JoinRequestStatus = "failed"
)

// User represents a Telegram user interacting with the service.
// Users are soft-deleted: status goes to deleted, the row stays.
type User struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TelegramID int64     `gorm:"not null;uniqueIndex"`
	FullName   string    `gorm:"not null"`
	Username   string
	Status     Status    `gorm:"not null;default:active"`
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`

	Subscriptions []Subscription `gorm:"foreignKey:UserID"`
	JoinRequests  []JoinRequest  `gorm:"foreignKey:RequestedByID"`
}

// TableName returns the table name for User
func (User) TableName() string {
	return "users"
}

// BeforeCreate assigns a UUID primary key
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Channel represents a Telegram channel or group the account has joined
// or ingested messages from. Created lazily, never eagerly.
type Channel struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	TelegramID int64     `gorm:"not null;uniqueIndex"`
	Name       string
	Username   *string     `gorm:"uniqueIndex"`
	Kind       ChannelKind `gorm:"not null;default:channel"`
	Status     Status      `gorm:"not null;default:active"`
	CreatedAt  time.Time   `gorm:"autoCreateTime"`
	UpdatedAt  time.Time   `gorm:"autoUpdateTime"`

	Tags     []Tag     `gorm:"many2many:channel_tags;constraint:OnDelete:CASCADE"`
	Messages []Message `gorm:"foreignKey:ChannelID"`
}

// TableName returns the table name for Channel
func (Channel) TableName() string {
	return "channels"
}

// BeforeCreate assigns a UUID primary key
func (c *Channel) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// Link returns the public t.me link for the channel, or "" for
// private channels without a username.
func (c *Channel) Link() string {
	if c.Username == nil || *c.Username == "" {
		return ""
	}
	return "https://t.me/" + *c.Username
}

// DefaultTagName is attached to channels that have no tags yet, so
// every channel stays reachable through tag browsing.
const DefaultTagName = "unclassified"

// Tag is a unique label referenced by channels, subscriptions and messages.
// Tags never own anything; deleting a tag only removes associations.
type Tag struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"not null;uniqueIndex"`
	Description string
}

// TableName returns the table name for Tag
func (Tag) TableName() string {
	return "tags"
}

// BeforeCreate assigns a UUID primary key
func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// Subscription is a standing keyword query owned by a user.
// Cancelled subscriptions are soft-deleted and keep their row.
type Subscription struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	QueryText string    `gorm:"not null"`
	Status    Status    `gorm:"not null;default:active"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	User User  `gorm:"foreignKey:UserID"`
	Tags []Tag `gorm:"many2many:subscription_tags;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Subscription
func (Subscription) TableName() string {
	return "subscriptions"
}

// BeforeCreate assigns a UUID primary key
func (s *Subscription) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Message is an ingested channel message. ChannelTelegramID is
// denormalized so the message and its deep link survive channel deletion;
// ChannelID is nulled by the database when the channel row goes away.
type Message struct {
	ID                uuid.UUID  `gorm:"type:uuid;primaryKey"`
	TelegramMessageID int64      `gorm:"not null;index"`
	ChannelID         *uuid.UUID `gorm:"type:uuid;index"`
	ChannelTelegramID int64      `gorm:"not null;index"`
	Content           string
	SentAt            time.Time `gorm:"not null"`
	CreatedAt         time.Time `gorm:"autoCreateTime"`

	Channel *Channel `gorm:"foreignKey:ChannelID;constraint:OnDelete:SET NULL"`
	Tags    []Tag    `gorm:"many2many:message_tags;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for Message
func (Message) TableName() string {
	return "messages"
}

// BeforeCreate assigns a UUID primary key
func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Link returns the t.me deep link for the message, built from the
// denormalized channel id so it stays valid after channel deletion.
func (m *Message) Link() string {
	return MessageLink(m.ChannelTelegramID, m.TelegramMessageID)
}

// JoinRequest is a queued instruction to join a channel on the user's
// behalf. Identifier is stored in normalized form; Tags are kept as raw
// names until the join succeeds and they are resolved to tag rows.
type JoinRequest struct {
	ID            uuid.UUID         `gorm:"type:uuid;primaryKey"`
	Identifier    string            `gorm:"not null;index"`
	Tags          pq.StringArray    `gorm:"type:text[]"`
	RequestedByID uuid.UUID         `gorm:"type:uuid;not null;index"`
	Status        JoinRequestStatus `gorm:"not null;default:pending;index"`
	CreatedAt     time.Time         `gorm:"autoCreateTime"`

	RequestedBy User `gorm:"foreignKey:RequestedByID"`
}

// TableName returns the table name for JoinRequest
func (JoinRequest) TableName() string {
	return "join_requests"
}

// BeforeCreate assigns a UUID primary key
func (j *JoinRequest) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
