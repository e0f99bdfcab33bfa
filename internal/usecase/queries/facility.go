package queries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lgu-facilities/internal/domain/conflict"
	"lgu-facilities/internal/domain/facility"
	"lgu-facilities/internal/domain/holiday"
	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/pkg/clock"
	"lgu-facilities/internal/pkg/config"
	"lgu-facilities/internal/pkg/errs"
)

var ErrFacilityNotFound = errs.New("facility not found")

type FacilityQueries interface {
	List(ctx context.Context) ([]*FacilityView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*FacilityView, error)
	// CheckAvailability runs the conflict detector for a prospective
	// slot without persisting anything.
	CheckAvailability(ctx context.Context, facilityID uuid.UUID, date time.Time, slot reservation.TimeSlot) (*AvailabilityView, error)
}

type FacilityReadStore interface {
	List(ctx context.Context) ([]*FacilityView, error)
	FindByID(ctx context.Context, id uuid.UUID) (*FacilityView, error)
}

// AvailabilityReads supplies the detector's inputs.
type AvailabilityReads interface {
	ApprovedBookings(ctx context.Context, facilityID uuid.UUID, date time.Time, exclude *uuid.UUID) ([]conflict.Booking, error)
	PendingBookings(ctx context.Context, facilityID uuid.UUID, date time.Time, now time.Time, exclude *uuid.UUID) ([]conflict.Booking, error)
	HistoricalBookingCount(ctx context.Context, facilityID uuid.UUID, weekday time.Weekday, slot reservation.TimeSlot, since time.Time) (int, error)
}

type facilityQueriesImpl struct {
	readStore FacilityReadStore
	reads     AvailabilityReads
	policy    config.PolicyConfig
	clock     clock.Clock
}

func NewFacilityQueries(readStore FacilityReadStore, reads AvailabilityReads, policy config.PolicyConfig, clk clock.Clock) FacilityQueries {
	return &facilityQueriesImpl{
		readStore: readStore,
		reads:     reads,
		policy:    policy,
		clock:     clk,
	}
}

func (q *facilityQueriesImpl) List(ctx context.Context) ([]*FacilityView, error) {
	return q.readStore.List(ctx)
}

func (q *facilityQueriesImpl) GetByID(ctx context.Context, id uuid.UUID) (*FacilityView, error) {
	view, err := q.readStore.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrFacilityNotFound
		}
		return nil, err
	}
	return view, nil
}

func (q *facilityQueriesImpl) CheckAvailability(ctx context.Context, facilityID uuid.UUID, date time.Time, slot reservation.TimeSlot) (*AvailabilityView, error) {
	fac, err := q.GetByID(ctx, facilityID)
	if err != nil {
		return nil, err
	}

	// A facility under maintenance or offline blocks every slot, no
	// detector pass needed.
	if fac.Status != facility.StatusAvailable.String() {
		return &AvailabilityView{
			HasConflict:  true,
			Message:      fmt.Sprintf("The facility %q is currently %s and not accepting reservations.", fac.Name, fac.Status),
			Alternatives: []AlternativeSlot{},
		}, nil
	}

	now := q.clock.Now()

	approved, err := q.reads.ApprovedBookings(ctx, facilityID, date, nil)
	if err != nil {
		return nil, err
	}
	pending, err := q.reads.PendingBookings(ctx, facilityID, date, now, nil)
	if err != nil {
		return nil, err
	}
	historical, err := q.reads.HistoricalBookingCount(ctx, facilityID, date.Weekday(), slot, now.AddDate(0, -6, 0))
	if err != nil {
		return nil, err
	}

	window, err := reservation.NewTimeSlot(q.policy.OperatingStart, q.policy.OperatingEnd)
	if err != nil {
		return nil, errs.Wrap(err, "invalid operating window config")
	}

	event, isHoliday := holiday.EventOn(date)
	result := conflict.Detect(conflict.Input{
		Requested:       slot,
		Approved:        approved,
		Pending:         pending,
		HistoricalCount: historical,
		Holiday:         isHoliday,
		OperatingWindow: window,
	})

	view := &AvailabilityView{
		HasConflict:      result.HasConflict,
		Message:          result.Message,
		PendingCount:     result.PendingCount,
		RiskScore:        result.RiskScore,
		PendingConflicts: len(result.PendingConflicts),
		Alternatives:     make([]AlternativeSlot, 0, len(result.Alternatives)),
	}
	if isHoliday {
		view.HolidayEvent = &event
	}
	for _, alt := range result.Alternatives {
		view.Alternatives = append(view.Alternatives, AlternativeSlot{
			TimeSlot:  alt.String(),
			Available: true,
		})
	}
	return view, nil
}
