package usecase

import "go.uber.org/fx"

var Module = fx.Module(
	"usecase",
	fx.Provide(NewUsers),
	fx.Provide(NewSubscriptions),
	fx.Provide(NewJoinRequests),
	fx.Provide(NewChannels),
	fx.Provide(NewIngest),
)
