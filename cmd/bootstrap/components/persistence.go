package components

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"

	"lgu-facilities/internal/infra/db"
	"lgu-facilities/internal/infra/readstore"
	"lgu-facilities/internal/infra/repository"
	"lgu-facilities/internal/infra/uow"
	"lgu-facilities/internal/usecase/commands"
	"lgu-facilities/internal/usecase/queries"
	"lgu-facilities/internal/usecase/shared"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		fx.Annotate(
			uow.NewPostgresUoW,
			fx.As(new(shared.UnitOfWork)),
		),
		// Read stores serve queries outside the unit of work.
		fx.Annotate(
			readstore.NewUserReadStore,
			fx.As(new(queries.UserReadStore)),
			fx.As(new(commands.UserStore)),
		),
		fx.Annotate(
			readstore.NewFacilityReadStore,
			fx.As(new(queries.FacilityReadStore)),
		),
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationReadStore)),
		),
		// The availability check shares the command-side reads.
		fx.Annotate(
			repository.NewCommandReads,
			fx.As(new(queries.AvailabilityReads)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
