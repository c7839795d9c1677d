package app

import (
	"time"

	"go.uber.org/fx"

	"github.com/dipherent1/tgwrapper/config"
	deliverytelegram "github.com/dipherent1/tgwrapper/internal/delivery/telegram"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/bot"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/database"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/http"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/logger"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/metrics"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/telegram"
	"github.com/dipherent1/tgwrapper/internal/repository/postgres"
	"github.com/dipherent1/tgwrapper/internal/usecase"
	"github.com/dipherent1/tgwrapper/internal/worker"
)

// CreateApp assembles the full application graph.
func CreateApp() fx.Option {
	return fx.Options(
		fx.Provide(config.Out),

		// First-time Telegram auth is interactive and slow.
		fx.StartTimeout(10*time.Minute),

		logger.Module,
		metrics.Module,
		database.Module,
		postgres.Module,

		usecase.Module,
		deliverytelegram.Module,

		telegram.Module,
		bot.Module,
		http.Module,

		worker.Module,
	)
}
