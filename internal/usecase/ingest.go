package usecase

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/metrics"
	"github.com/rs/zerolog"
)

// excerptLimit caps the quoted message content in notifications.
const excerptLimit = 500

// Ingest is the message ingestion and matching engine. It runs once per
// inbound message event: persist the message, evaluate every active
// subscription against it, and notify each matching user at most once.
type Ingest struct {
	uow      domain.UnitOfWork
	notifier domain.Notifier
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewIngest creates the ingestion engine.
func NewIngest(uow domain.UnitOfWork, notifier domain.Notifier, m *metrics.Metrics, logger zerolog.Logger) *Ingest {
	return &Ingest{
		uow:      uow,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With().Str("component", "ingest").Logger(),
	}
}

// HandleMessageEvent persists the event and runs the matching pass.
// Persistence failure aborts matching for this event only; the error is
// returned so the caller can log it with event context.
func (e *Ingest) HandleMessageEvent(ctx context.Context, ev domain.MessageEvent) error {
	if strings.TrimSpace(ev.Text) == "" {
		e.logger.Debug().
			Int64("channel_telegram_id", ev.ChannelTelegramID).
			Msg("skipping message without text")
		return nil
	}

	var (
		msgRec domain.MessageRecord
		chRec  domain.ChannelRecord
	)
	err := e.uow.Do(ctx, func(tx *domain.Tx) error {
		channel, err := ResolveChannel(tx, ev.ChannelTelegramID, ev.ChannelTitle, ev.ChannelUsername, ev.ChannelKind)
		if err != nil {
			return err
		}
		if len(channel.Tags) == 0 {
			tag, err := ResolveTag(tx, domain.DefaultTagName, "")
			if err != nil {
				return err
			}
			if err := tx.Channels.AttachTag(channel, tag); err != nil {
				return err
			}
		}

		msg := &domain.Message{
			TelegramMessageID: ev.TelegramMessageID,
			ChannelID:         &channel.ID,
			ChannelTelegramID: ev.ChannelTelegramID,
			Content:           ev.Text,
			SentAt:            ev.SentAt,
		}
		if err := tx.Messages.Create(msg); err != nil {
			return err
		}

		msgRec = domain.NewMessageRecord(msg)
		chRec = domain.NewChannelRecord(channel)
		return nil
	})
	if err != nil {
		e.metrics.IngestionErrors.Inc()
		return fmt.Errorf("persist message event: %w", err)
	}
	e.metrics.MessagesIngested.Inc()

	var subs []domain.ActiveSubscription
	err = e.uow.Do(ctx, func(tx *domain.Tx) error {
		var err error
		subs, err = tx.Subscriptions.ListActive()
		return err
	})
	if err != nil {
		return fmt.Errorf("load active subscriptions: %w", err)
	}
	if len(subs) == 0 {
		return nil
	}

	start := time.Now()
	e.runMatchingPass(ctx, msgRec, chRec, subs)
	e.metrics.MatchingPassDuration.Observe(time.Since(start).Seconds())
	return nil
}

// runMatchingPass evaluates subscriptions in order and dispatches at
// most one notification per user. A send failure still consumes the
// user's slot for this pass and never stops the remaining evaluations.
func (e *Ingest) runMatchingPass(ctx context.Context, msg domain.MessageRecord, channel domain.ChannelRecord, subs []domain.ActiveSubscription) {
	content := strings.ToLower(msg.Content)
	notified := make(map[int64]struct{})

	for _, sub := range subs {
		if _, seen := notified[sub.UserTelegramID]; seen {
			continue
		}
		if !queryMatches(content, sub.QueryText) {
			continue
		}
		e.metrics.MatchesFound.Inc()
		notified[sub.UserTelegramID] = struct{}{}

		e.logger.Info().
			Int64("user_telegram_id", sub.UserTelegramID).
			Str("subscription_id", sub.ID.String()).
			Str("message_id", msg.ID.String()).
			Msg("match found")

		text := formatNotification(channel, sub, msg)
		if err := e.notifier.Send(ctx, sub.UserTelegramID, text); err != nil {
			e.metrics.NotificationFailures.Inc()
			e.logger.Warn().Err(err).
				Int64("user_telegram_id", sub.UserTelegramID).
				Msg("failed to send notification")
			continue
		}
		e.metrics.NotificationsSent.Inc()
	}
}

// queryMatches splits the query into lowercase tokens and reports
// whether any token appears in the message content as a substring.
// Substring containment over-matches short tokens; acceptable for the
// keyword heuristic.
func queryMatches(loweredContent, queryText string) bool {
	tokens := strings.Fields(strings.ToLower(queryText))
	for _, token := range tokens {
		if strings.Contains(loweredContent, token) {
			return true
		}
	}
	return false
}

// formatNotification renders the HTML notification body.
func formatNotification(channel domain.ChannelRecord, sub domain.ActiveSubscription, msg domain.MessageRecord) string {
	excerpt := msg.Content
	if runes := []rune(excerpt); len(runes) > excerptLimit {
		excerpt = string(runes[:excerptLimit])
	}

	name := channel.Name
	if name == "" {
		name = fmt.Sprintf("channel %d", channel.TelegramID)
	}

	return fmt.Sprintf(
		"🔥 <b>New Match Found!</b>\n\n"+
			"<b>Channel:</b> %s\n"+
			"<b>Subscription:</b> '%s'\n\n"+
			"<blockquote>%s</blockquote>\n"+
			"<a href=\"%s\">Go to Message</a>",
		html.EscapeString(name),
		html.EscapeString(sub.QueryText),
		html.EscapeString(excerpt),
		msg.Link,
	)
}
