package project

import "go.uber.org/fx"

// Module exposes the project manager via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
)
