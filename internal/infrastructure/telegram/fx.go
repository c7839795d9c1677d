package telegram

import (
	"context"
	"time"

	"github.com/gotd/td/tg"
	"github.com/rs/zerolog"
	"go.uber.org/fx"

	"github.com/dipherent1/tgwrapper/config"
	"github.com/dipherent1/tgwrapper/internal/domain"
)

var Module = fx.Module(
	"telegram",
	fx.Provide(NewRegistry),
	fx.Provide(NewConnector),
)

// connectTimeout is generous: first-time authentication waits for the
// verification code typed at the terminal.
const connectTimeout = 5 * time.Minute

// NewConnector builds the MTProto client, owns its lifecycle through
// the registry and exposes it as the domain connector.
func NewConnector(
	lc fx.Lifecycle,
	cfg *config.TelegramConfig,
	dispatcher tg.UpdateDispatcher,
	registry *Registry,
	log zerolog.Logger,
) (domain.Connector, error) {
	client, err := NewMTProtoClient(ClientConfig{
		APIID:         cfg.APIID,
		APIHash:       cfg.APIHash,
		Phone:         cfg.Phone,
		SessionDir:    cfg.SessionDir,
		UpdateHandler: dispatcher,
		Logger:        log,
	})
	if err != nil {
		return nil, err
	}

	if err := registry.Register(cfg.Phone, client); err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
			defer cancel()
			return client.Connect(connectCtx)
		},
		OnStop: func(ctx context.Context) error {
			registry.Shutdown(ctx)
			return nil
		},
	})

	return client, nil
}
