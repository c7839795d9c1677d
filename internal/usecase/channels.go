package usecase

import (
	"context"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/rs/zerolog"
)

// Channels owns channel bookkeeping around the join queue: recording a
// successful join and removing channels.
type Channels struct {
	uow    domain.UnitOfWork
	logger zerolog.Logger
}

// NewChannels creates the channels use case.
func NewChannels(uow domain.UnitOfWork, logger zerolog.Logger) *Channels {
	return &Channels{
		uow:    uow,
		logger: logger.With().Str("component", "channels").Logger(),
	}
}

// RecordJoinSuccess persists the outcome of a successful join in one
// transaction: resolve the channel from connector data, attach the
// request's tags, and transition the request to SUCCESS. When the
// connector could not report channel info (already-member on an invite),
// joined is nil and only the status transition happens.
func (c *Channels) RecordJoinSuccess(ctx context.Context, job domain.JoinJob, joined *domain.JoinedChannel) error {
	return c.uow.Do(ctx, func(tx *domain.Tx) error {
		if joined != nil {
			channel, err := ResolveChannel(tx, joined.TelegramID, joined.Title, joined.Username, joined.Kind)
			if err != nil {
				return err
			}
			for _, name := range job.Tags {
				tag, err := ResolveTag(tx, name, "")
				if err != nil {
					return err
				}
				if err := tx.Channels.AttachTag(channel, tag); err != nil {
					return err
				}
			}
		}
		return tx.JoinRequests.Complete(job.ID)
	})
}

// RecordJoinFailure marks the request FAILED. Terminal; the user must
// resubmit to retry.
func (c *Channels) RecordJoinFailure(ctx context.Context, job domain.JoinJob) error {
	return c.uow.Do(ctx, func(tx *domain.Tx) error {
		return tx.JoinRequests.Fail(job.ID)
	})
}

// Delete hard-deletes a channel row. Messages keep their denormalized
// telegram channel id; the database nulls their channel reference.
func (c *Channels) Delete(ctx context.Context, telegramID int64) error {
	err := c.uow.Do(ctx, func(tx *domain.Tx) error {
		channel, err := tx.Channels.GetByTelegramID(telegramID)
		if err != nil {
			return err
		}
		return tx.Channels.Delete(channel)
	})
	if err != nil {
		return err
	}
	c.logger.Info().Int64("channel_telegram_id", telegramID).Msg("channel deleted")
	return nil
}
