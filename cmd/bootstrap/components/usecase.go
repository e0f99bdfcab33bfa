package components

import (
	"go.uber.org/fx"

	"lgu-facilities/internal/pkg/clock"
	"lgu-facilities/internal/usecase/commands"
	"lgu-facilities/internal/usecase/queries"
)

var UseCaseModule = fx.Module("usecase",
	fx.Provide(
		clock.NewRealClock,

		commands.NewAuthCommands,
		commands.NewReservationCommands,
		commands.NewLifecycleCommands,

		queries.NewUserQueries,
		queries.NewFacilityQueries,
		queries.NewReservationQueries,
	),
)
