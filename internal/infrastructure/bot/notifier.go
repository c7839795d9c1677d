// Package bot contains the Telegram bot used as the notification channel.
package bot

import (
	"context"
	"fmt"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// Notifier implements domain.Notifier over the Telegram bot API. It is
// fire-and-forget: a failed send is the caller's to log, never retried
// here.
type Notifier struct {
	bot    *tgbot.Bot
	logger zerolog.Logger
}

// NewNotifier creates a Telegram bot notifier
func NewNotifier(token string, logger zerolog.Logger) (*Notifier, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram bot token is required")
	}

	b, err := tgbot.New(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	logger.Info().Msg("telegram bot created")

	return &Notifier{
		bot:    b,
		logger: logger.With().Str("component", "notifier").Logger(),
	}, nil
}

// Send delivers an HTML-formatted message to the user's chat.
func (n *Notifier) Send(ctx context.Context, userTelegramID int64, htmlText string) error {
	_, err := n.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:    userTelegramID,
		Text:      htmlText,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send notification to %d: %w", userTelegramID, err)
	}

	n.logger.Debug().Int64("user_telegram_id", userTelegramID).Msg("notification sent")
	return nil
}
