package bot

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/dipherent1/tgwrapper/config"
	"github.com/dipherent1/tgwrapper/internal/domain"
)

var Module = fx.Module(
	"bot",
	fx.Provide(func(cfg *config.BotConfig, log zerolog.Logger) (domain.Notifier, error) {
		return NewNotifier(cfg.Token, log)
	}),
)
