package postgres

import (
	"context"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"gorm.io/gorm"
)

// unitOfWork implements domain.UnitOfWork on top of gorm transactions.
type unitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new unit of work bound to the database handle.
func NewUnitOfWork(db *gorm.DB) domain.UnitOfWork {
	return &unitOfWork{db: db}
}

// Do opens one transaction, binds a fresh repository set to it and runs
// fn. gorm commits when fn returns nil and rolls back otherwise; the
// connection goes back to the pool in both cases.
func (u *unitOfWork) Do(ctx context.Context, fn func(tx *domain.Tx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(bindRepositories(tx))
	})
}

// bindRepositories builds the repository set sharing one session.
func bindRepositories(tx *gorm.DB) *domain.Tx {
	return &domain.Tx{
		Users:         NewUserRepository(tx),
		Channels:      NewChannelRepository(tx),
		Tags:          NewTagRepository(tx),
		Subscriptions: NewSubscriptionRepository(tx),
		Messages:      NewMessageRepository(tx),
		JoinRequests:  NewJoinRequestRepository(tx),
	}
}
