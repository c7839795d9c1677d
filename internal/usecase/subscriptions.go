package usecase

import (
	"context"
	"strings"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Subscriptions manages keyword subscriptions. Cancellation is a soft
// delete; the row and its history are kept.
type Subscriptions struct {
	uow    domain.UnitOfWork
	logger zerolog.Logger
}

// NewSubscriptions creates the subscriptions use case.
func NewSubscriptions(uow domain.UnitOfWork, logger zerolog.Logger) *Subscriptions {
	return &Subscriptions{
		uow:    uow,
		logger: logger.With().Str("component", "subscriptions").Logger(),
	}
}

// Create adds an ACTIVE subscription for the user, resolving and
// attaching any tag names.
func (s *Subscriptions) Create(ctx context.Context, userID uuid.UUID, queryText string, tags []string) (domain.SubscriptionRecord, error) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return domain.SubscriptionRecord{}, domain.ErrEmptyQuery
	}

	var record domain.SubscriptionRecord
	err := s.uow.Do(ctx, func(tx *domain.Tx) error {
		sub := &domain.Subscription{
			UserID:    userID,
			QueryText: queryText,
			Status:    domain.StatusActive,
		}
		if err := tx.Subscriptions.Create(sub); err != nil {
			return err
		}
		for _, name := range tags {
			tag, err := ResolveTag(tx, name, "")
			if err != nil {
				return err
			}
			if err := tx.Subscriptions.AttachTag(sub, tag); err != nil {
				return err
			}
		}
		record = domain.NewSubscriptionRecord(sub)
		return nil
	})
	if err != nil {
		return domain.SubscriptionRecord{}, err
	}

	s.logger.Info().
		Str("subscription_id", record.ID.String()).
		Str("query", queryText).
		Msg("subscription created")
	return record, nil
}

// Edit replaces the query text in place. Only ACTIVE subscriptions may
// be edited, and only by their owner.
func (s *Subscriptions) Edit(ctx context.Context, userID, subID uuid.UUID, queryText string) error {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return domain.ErrEmptyQuery
	}

	return s.uow.Do(ctx, func(tx *domain.Tx) error {
		sub, err := tx.Subscriptions.GetByID(subID)
		if err != nil {
			return err
		}
		if sub.UserID != userID {
			return domain.ErrNotSubscriptionOwner
		}
		if sub.Status != domain.StatusActive {
			return domain.ErrSubscriptionNotActive
		}
		sub.QueryText = queryText
		return tx.Subscriptions.Save(sub)
	})
}

// Cancel soft-deletes a subscription. The ownership check runs before
// any write; cancelling someone else's subscription mutates nothing.
func (s *Subscriptions) Cancel(ctx context.Context, userID, subID uuid.UUID) error {
	return s.uow.Do(ctx, func(tx *domain.Tx) error {
		sub, err := tx.Subscriptions.GetByID(subID)
		if err != nil {
			return err
		}
		if sub.UserID != userID {
			return domain.ErrNotSubscriptionOwner
		}
		sub.Status = domain.StatusDeleted
		return tx.Subscriptions.Save(sub)
	})
}
