package usecase

import (
	"context"
	"errors"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/rs/zerolog"
)

// Users is the explicit ensure-user stage: every user-initiated
// operation passes through EnsureUser before touching anything else.
type Users struct {
	uow    domain.UnitOfWork
	logger zerolog.Logger
}

// NewUsers creates the users use case.
func NewUsers(uow domain.UnitOfWork, logger zerolog.Logger) *Users {
	return &Users{
		uow:    uow,
		logger: logger.With().Str("component", "users").Logger(),
	}
}

// EnsureUser resolves a Telegram identity to a persisted user, creating
// it on first interaction. A soft-deleted user coming back is
// reactivated. Profile fields overwrite only when non-empty.
func (u *Users) EnsureUser(ctx context.Context, identity domain.TelegramIdentity) (domain.UserRecord, error) {
	var record domain.UserRecord
	err := u.uow.Do(ctx, func(tx *domain.Tx) error {
		user, err := tx.Users.GetByTelegramID(identity.TelegramID)
		if err != nil {
			if !errors.Is(err, domain.ErrUserNotFound) {
				return err
			}
			user = &domain.User{
				TelegramID: identity.TelegramID,
				FullName:   identity.FullName,
				Username:   identity.Username,
				Status:     domain.StatusActive,
			}
			if err := tx.Users.Create(user); err != nil {
				return err
			}
			u.logger.Info().Int64("telegram_id", identity.TelegramID).Msg("created new user")
			record = domain.NewUserRecord(user)
			return nil
		}

		changed := false
		if identity.FullName != "" && user.FullName != identity.FullName {
			user.FullName = identity.FullName
			changed = true
		}
		if identity.Username != "" && user.Username != identity.Username {
			user.Username = identity.Username
			changed = true
		}
		if user.Status == domain.StatusDeleted {
			user.Status = domain.StatusActive
			changed = true
		}
		if changed {
			if err := tx.Users.Save(user); err != nil {
				return err
			}
		}
		record = domain.NewUserRecord(user)
		return nil
	})
	if err != nil {
		return domain.UserRecord{}, err
	}
	return record, nil
}

// Remove soft-deletes a user. The row is kept.
func (u *Users) Remove(ctx context.Context, telegramID int64) error {
	return u.uow.Do(ctx, func(tx *domain.Tx) error {
		user, err := tx.Users.GetByTelegramID(telegramID)
		if err != nil {
			return err
		}
		user.Status = domain.StatusDeleted
		return tx.Users.Save(user)
	})
}
