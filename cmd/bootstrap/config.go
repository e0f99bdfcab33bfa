package bootstrap

import (
	"go.uber.org/fx"

	"lgu-facilities/internal/pkg/config"
)

var ConfigModule = fx.Module("config",
	fx.Provide(
		config.LoadConfig,
		func(cfg config.Config) config.PolicyConfig { return cfg.Policy },
	),
)
