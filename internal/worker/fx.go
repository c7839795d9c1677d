package worker

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/dipherent1/tgwrapper/config"
	"github.com/dipherent1/tgwrapper/internal/domain"
	"github.com/dipherent1/tgwrapper/internal/infrastructure/metrics"
	"github.com/dipherent1/tgwrapper/internal/usecase"
)

var Module = fx.Module(
	"worker",
	fx.Provide(func(
		uow domain.UnitOfWork,
		connector domain.Connector,
		channels *usecase.Channels,
		cfg *config.WorkerConfig,
		m *metrics.Metrics,
		log zerolog.Logger,
	) *JoinProcessor {
		return NewJoinProcessor(uow, connector, channels, JoinProcessorConfig{
			IdleInterval: cfg.IdleInterval,
			Cooldown:     cfg.Cooldown,
			JoinTimeout:  cfg.JoinTimeout,
		}, m, log)
	}),
	fx.Invoke(func(lc fx.Lifecycle, processor *JoinProcessor) {
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				processor.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				processor.Stop()
				return nil
			},
		})
	}),
)
