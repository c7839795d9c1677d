package usecase

import (
	"context"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// JoinRequests accepts join submissions into the queue the processor
// drains.
type JoinRequests struct {
	uow     domain.UnitOfWork
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewJoinRequests creates the join requests use case.
func NewJoinRequests(uow domain.UnitOfWork, m *metrics.Metrics, logger zerolog.Logger) *JoinRequests {
	return &JoinRequests{
		uow:     uow,
		metrics: m,
		logger:  logger.With().Str("component", "join_requests").Logger(),
	}
}

// Submit normalizes the identifier and enqueues a PENDING request.
// A duplicate submission is not an error: when a PENDING or SUCCESS
// request for the same identifier exists, that request comes back with
// created=false and no new row is written. A FAILED request may be
// retried by submitting again.
func (j *JoinRequests) Submit(ctx context.Context, userID uuid.UUID, rawIdentifier string, tags []string) (domain.JoinRequestRecord, bool, error) {
	identifier, err := domain.NormalizeIdentifier(rawIdentifier)
	if err != nil {
		return domain.JoinRequestRecord{}, false, err
	}

	var (
		record  domain.JoinRequestRecord
		created bool
	)
	err = j.uow.Do(ctx, func(tx *domain.Tx) error {
		req, phys, err := tx.JoinRequests.Enqueue(identifier, tags, userID)
		if err != nil {
			return err
		}
		record = domain.NewJoinRequestRecord(req)
		created = phys
		return nil
	})
	if err != nil {
		return domain.JoinRequestRecord{}, false, err
	}

	if created {
		j.metrics.JoinRequestsEnqueued.Inc()
		j.logger.Info().
			Str("identifier", string(identifier)).
			Strs("tags", tags).
			Msg("join request enqueued")
	} else {
		j.logger.Debug().
			Str("identifier", string(identifier)).
			Str("status", string(record.Status)).
			Msg("duplicate join request, returning existing")
	}
	return record, created, nil
}
