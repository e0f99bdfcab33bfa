package bootstrap

import (
	"go.uber.org/fx"

	"lgu-facilities/internal/pkg/config"
	"lgu-facilities/internal/pkg/jwt"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		NewJWTService,
	),
)

func NewJWTService(cfg config.Config) *jwt.Service {
	return jwt.NewService(cfg.JWT.Secret, cfg.JWT.Duration)
}
