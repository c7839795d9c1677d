package telegram

import "go.uber.org/fx"

var Module = fx.Module(
	"updates",
	fx.Provide(NewUpdatesHandler),
	fx.Provide(NewDispatcher),
)
