package http

import (
	"context"

	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/dipherent1/tgwrapper/config"
)

var Module = fx.Module(
	"http",
	fx.Invoke(func(lc fx.Lifecycle, cfg *config.HTTPConfig, log zerolog.Logger) {
		server := NewServer(cfg.Port, log)
		lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				server.Start()
				return nil
			},
			OnStop: func(ctx context.Context) error {
				return server.Stop(ctx)
			},
		})
	}),
)
