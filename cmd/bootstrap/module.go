package bootstrap

import (
	"go.uber.org/fx"

	"lgu-facilities/cmd/bootstrap/components"
)

var Module = fx.Options(
	ConfigModule,
	DBModule,
	JWTModule,
	MailModule,
	components.PersistenceModule,
	components.UseCaseModule,
	components.HandlerModule,
)
