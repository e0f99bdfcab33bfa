package queries

import (
	"context"

	"github.com/google/uuid"

	"lgu-facilities/internal/domain/user"
	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/pkg/errs"
)

var (
	ErrReservationNotFound = errs.New("reservation not found")
	ErrReservationAccess   = errs.New("reservation access denied")
)

type ReservationQueries interface {
	// GetByID returns the reservation if the actor owns it or is staff.
	GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*ReservationView, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*ReservationListItem, error)
	// ReviewQueue lists reviewable reservations in approval order:
	// postponed priority first, oldest postponement next, then FIFO.
	ReviewQueue(ctx context.Context, limit int) ([]*ReviewQueueItem, error)
}

type ReservationReadStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ReservationView, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit int32) ([]*ReservationListItem, error)
	FindReviewQueue(ctx context.Context, limit int32) ([]*ReviewQueueItem, error)
}

type reservationQueriesImpl struct {
	readStore ReservationReadStore
}

func NewReservationQueries(readStore ReservationReadStore) ReservationQueries {
	return &reservationQueriesImpl{readStore: readStore}
}

func (q *reservationQueriesImpl) GetByID(ctx context.Context, actor user.Actor, id uuid.UUID) (*ReservationView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}

	if view.UserID != actor.ID && !actor.IsStaff() {
		return nil, ErrReservationAccess
	}
	return view, nil
}

func (q *reservationQueriesImpl) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*ReservationListItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return q.readStore.FindByUserID(ctx, userID, int32(limit))
}

func (q *reservationQueriesImpl) ReviewQueue(ctx context.Context, limit int) ([]*ReviewQueueItem, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	return q.readStore.FindReviewQueue(ctx, int32(limit))
}
