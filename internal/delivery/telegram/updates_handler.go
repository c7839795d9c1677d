// Package telegram receives pushed MTProto updates and hands inbound
// message events to the ingestion engine.
package telegram

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"

	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/dipherent1/tgwrapper/internal/usecase"
)

// UpdatesHandler converts raw channel/group updates into message events.
// Failures are logged and swallowed: an error returned here would only
// disrupt the update stream, and a failed event aborts matching for
// that event alone.
type UpdatesHandler struct {
	ingest *usecase.Ingest
	logger zerolog.Logger

	processedCount atomic.Int64
}

// NewUpdatesHandler creates the updates handler.
func NewUpdatesHandler(ingest *usecase.Ingest, logger zerolog.Logger) *UpdatesHandler {
	return &UpdatesHandler{
		ingest: ingest,
		logger: logger.With().Str("component", "updates_handler").Logger(),
	}
}

// NewDispatcher wires the handler's callbacks into a gotd dispatcher.
func NewDispatcher(h *UpdatesHandler) tg.UpdateDispatcher {
	dispatcher := tg.NewUpdateDispatcher()
	dispatcher.OnNewChannelMessage(h.OnNewChannelMessage)
	dispatcher.OnNewMessage(h.OnNewMessage)
	return dispatcher
}

// OnNewChannelMessage handles messages from channels and supergroups.
func (h *UpdatesHandler) OnNewChannelMessage(ctx context.Context, e tg.Entities, u *tg.UpdateNewChannelMessage) error {
	msg, ok := u.Message.(*tg.Message)
	if !ok {
		return nil
	}
	if msg.Out {
		return nil
	}

	peer, ok := msg.PeerID.(*tg.PeerChannel)
	if !ok {
		return nil
	}

	ev := domain.MessageEvent{
		TelegramMessageID: int64(msg.ID),
		ChannelTelegramID: peer.ChannelID,
		ChannelKind:       domain.KindChannel,
		Text:              msg.Message,
		SentAt:            time.Unix(int64(msg.Date), 0),
	}
	if channel, found := e.Channels[peer.ChannelID]; found {
		ev.ChannelTitle = channel.Title
		ev.ChannelUsername = channel.Username
		if channel.Megagroup {
			ev.ChannelKind = domain.KindSupergroup
		}
	}

	h.handle(ctx, ev)
	return nil
}

// OnNewMessage handles messages from basic groups.
func (h *UpdatesHandler) OnNewMessage(ctx context.Context, e tg.Entities, u *tg.UpdateNewMessage) error {
	msg, ok := u.Message.(*tg.Message)
	if !ok {
		return nil
	}
	if msg.Out {
		return nil
	}

	peer, ok := msg.PeerID.(*tg.PeerChat)
	if !ok {
		// Direct messages are not ingested.
		return nil
	}

	ev := domain.MessageEvent{
		TelegramMessageID: int64(msg.ID),
		ChannelTelegramID: peer.ChatID,
		ChannelKind:       domain.KindBasicGroup,
		Text:              msg.Message,
		SentAt:            time.Unix(int64(msg.Date), 0),
	}
	if chat, found := e.Chats[peer.ChatID]; found {
		ev.ChannelTitle = chat.Title
	}

	h.handle(ctx, ev)
	return nil
}

// handle runs one event through the ingestion engine.
func (h *UpdatesHandler) handle(ctx context.Context, ev domain.MessageEvent) {
	if ev.Text == "" {
		return
	}

	if err := h.ingest.HandleMessageEvent(ctx, ev); err != nil {
		h.logger.Error().Err(err).
			Int64("channel_telegram_id", ev.ChannelTelegramID).
			Int64("message_id", ev.TelegramMessageID).
			Msg("failed to process message event")
		return
	}
	h.processedCount.Add(1)
}

// Processed reports how many events were ingested since start.
func (h *UpdatesHandler) Processed() int64 {
	return h.processedCount.Load()
}
