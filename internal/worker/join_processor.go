package worker

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/metrics"
	"github.com/dipherent1/tgwrapper/internal/usecase"
	"github.com/rs/zerolog"
)

// JoinProcessor drains the join-request queue against the rate-limited
// Telegram connector. Exactly one instance runs per deployment: claims
// take no lease, so a second instance would double-process rows.
//
// The loop has three suspension points, all of which also honor Stop:
// the idle wait when the queue is empty, the throttle wait after a
// rate-limit outcome, and the cooldown after a loop-level failure.
type JoinProcessor struct {
	uow       domain.UnitOfWork
	connector domain.Connector
	channels  *usecase.Channels
	metrics   *metrics.Metrics
	logger    zerolog.Logger

	idleInterval time.Duration
	cooldown     time.Duration
	joinTimeout  time.Duration

	done   chan struct{}
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
}

// JoinProcessorConfig holds the loop's timing knobs.
type JoinProcessorConfig struct {
	IdleInterval time.Duration
	Cooldown     time.Duration
	JoinTimeout  time.Duration
}

// NewJoinProcessor creates the queue processor.
func NewJoinProcessor(
	uow domain.UnitOfWork,
	connector domain.Connector,
	channels *usecase.Channels,
	cfg JoinProcessorConfig,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *JoinProcessor {
	ctx, cancel := context.WithCancel(context.Background())

	if cfg.IdleInterval <= 0 {
		cfg.IdleInterval = 10 * time.Second
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 30 * time.Second
	}
	if cfg.JoinTimeout <= 0 {
		cfg.JoinTimeout = time.Minute
	}

	return &JoinProcessor{
		uow:          uow,
		connector:    connector,
		channels:     channels,
		metrics:      m,
		logger:       logger.With().Str("component", "join_processor").Logger(),
		idleInterval: cfg.IdleInterval,
		cooldown:     cfg.Cooldown,
		joinTimeout:  cfg.JoinTimeout,
		done:         make(chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start starts the processor loop.
func (w *JoinProcessor) Start() {
	w.logger.Info().
		Dur("idle_interval", w.idleInterval).
		Dur("cooldown", w.cooldown).
		Msg("starting join request processor")

	w.wg.Add(1)
	go w.run()
}

// Stop gracefully stops the processor loop.
func (w *JoinProcessor) Stop() {
	w.logger.Info().Msg("stopping join request processor")
	w.cancel()
	close(w.done)
	w.wg.Wait()
	w.logger.Info().Msg("join request processor stopped")
}

// run is the perpetual loop. A single bad iteration never terminates
// it; loop-level failures are logged and followed by a cooldown.
func (w *JoinProcessor) run() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		default:
		}

		if err := w.iterate(); err != nil {
			w.logger.Error().Err(err).Msg("processor iteration failed, cooling down")
			if !w.sleep(w.cooldown) {
				return
			}
		}
	}
}

// iterate claims one pending request and processes it. Returning an
// error signals a loop-level failure (store unreachable, outcome not
// recordable), not a per-request one.
func (w *JoinProcessor) iterate() error {
	job, err := w.claimNext()
	if err != nil {
		return err
	}
	if job == nil {
		w.sleep(w.idleInterval)
		return nil
	}

	start := time.Now()
	err = w.process(*job)
	w.metrics.JoinProcessDuration.Observe(time.Since(start).Seconds())
	return err
}

// claimNext pulls the oldest PENDING request and detaches it before the
// transaction closes, so no row stays locked through the connector call.
func (w *JoinProcessor) claimNext() (*domain.JoinJob, error) {
	var job *domain.JoinJob
	err := w.uow.Do(w.ctx, func(tx *domain.Tx) error {
		req, err := tx.JoinRequests.ClaimNext()
		if err != nil {
			return err
		}
		if req == nil {
			return nil
		}
		rec := domain.NewJoinRequestRecord(req)
		job = &domain.JoinJob{
			ID:         rec.ID,
			Identifier: rec.Identifier,
			Tags:       rec.Tags,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return job, nil
}

// process runs one claimed job through the connector and records the
// outcome.
func (w *JoinProcessor) process(job domain.JoinJob) error {
	logger := w.logger.With().
		Str("request_id", job.ID.String()).
		Str("identifier", string(job.Identifier)).
		Logger()
	logger.Info().Msg("processing join request")

	joined, err := w.join(job.Identifier)

	switch {
	case err == nil, errors.Is(err, domain.ErrAlreadyMember):
		// An already-member outcome is an idempotent join.
		if err != nil {
			logger.Info().Msg("already a member, treating as success")
		}
		if err := w.channels.RecordJoinSuccess(w.ctx, job, joined); err != nil {
			return err
		}
		w.metrics.JoinRequestsSucceeded.Inc()
		logger.Info().Msg("join request succeeded")
		return nil

	default:
		if rl, ok := domain.AsRateLimited(err); ok {
			// A throttle, not a failure: the request stays PENDING and
			// the whole loop waits out the server-specified duration.
			w.metrics.JoinRateLimitWaits.Inc()
			logger.Warn().
				Dur("retry_after", rl.RetryAfter).
				Msg("rate limited, pausing queue")
			w.sleep(rl.RetryAfter)
			return nil
		}

		logger.Error().Err(err).Msg("join request failed")
		if err := w.channels.RecordJoinFailure(w.ctx, job); err != nil {
			return err
		}
		w.metrics.JoinRequestsFailed.Inc()
		return nil
	}
}

// join classifies the identifier and invokes the matching connector call.
func (w *JoinProcessor) join(identifier domain.Identifier) (*domain.JoinedChannel, error) {
	ctx, cancel := context.WithTimeout(w.ctx, w.joinTimeout)
	defer cancel()

	if identifier.IsInvite() {
		return w.connector.ImportInvite(ctx, identifier.InviteHash())
	}
	return w.connector.JoinByHandle(ctx, identifier.Handle())
}

// sleep waits for d or until Stop, reporting false when stopped.
func (w *JoinProcessor) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-w.done:
		return false
	}
}
