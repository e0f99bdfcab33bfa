package components

import (
	"go.uber.org/fx"

	"lgu-facilities/internal/handler"
	"lgu-facilities/internal/handler/api"
	"lgu-facilities/internal/handler/middleware"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewFacilityHandler,
		api.NewReservationHandler,
		api.NewAdminReservationHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
