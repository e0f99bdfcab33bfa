package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lgu-facilities/internal/domain/approval"
	"lgu-facilities/internal/domain/conflict"
	"lgu-facilities/internal/domain/holiday"
	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/domain/user"
	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/pkg/clock"
	"lgu-facilities/internal/pkg/config"
	"lgu-facilities/internal/pkg/errs"
	"lgu-facilities/internal/pkg/mail"
	"lgu-facilities/internal/usecase/shared"
)

type CreateReservationInput struct {
	FacilityID        uuid.UUID
	Date              time.Time
	StartTime         string
	EndTime           string
	Purpose           string
	ExpectedAttendees *int32
	Commercial        bool
}

type CreateReservationResult struct {
	ID           uuid.UUID
	Status       reservation.Status
	AutoApproved bool
	Reason       string
	EstimatedFee *decimal.Decimal
	RiskScore    int
	PendingCount int
}

type ReservationCommands interface {
	Create(ctx context.Context, actor user.Actor, in CreateReservationInput) (*CreateReservationResult, error)
}

type reservationCommandsImpl struct {
	uow    shared.UnitOfWork
	policy config.PolicyConfig
	clock  clock.Clock
	mailer mail.Mailer
}

func NewReservationCommands(uow shared.UnitOfWork, policy config.PolicyConfig, clk clock.Clock, mailer mail.Mailer) ReservationCommands {
	return &reservationCommandsImpl{
		uow:    uow,
		policy: policy,
		clock:  clk,
		mailer: mailer,
	}
}

// Create runs the admission pipeline: structural validation, quota
// checks, conflict detection, auto-approval evaluation, then a single
// transaction writing the reservation, its history row, notifications
// and the audit entry. The first violated rule wins.
func (c *reservationCommandsImpl) Create(ctx context.Context, actor user.Actor, in CreateReservationInput) (*CreateReservationResult, error) {
	now := c.clock.Now()

	slot, err := reservation.NewTimeSlot(in.StartTime, in.EndTime)
	if err != nil {
		switch {
		case errors.Is(err, reservation.ErrInvalidTimeSlot):
			return nil, reject(ErrValidation, "End time must be after start time.")
		default:
			return nil, reject(ErrValidation, "Invalid time format. Please use valid time values.")
		}
	}

	if slot.Duration() > time.Duration(c.policy.MaxDurationHours*float64(time.Hour)) {
		return nil, reject(ErrValidation, fmt.Sprintf("Reservation duration cannot exceed %.0f hours.", c.policy.MaxDurationHours))
	}
	if slot.Duration() < time.Duration(c.policy.MinDurationMinutes)*time.Minute {
		return nil, reject(ErrValidation, fmt.Sprintf("Reservation duration must be at least %d minutes.", c.policy.MinDurationMinutes))
	}

	if in.FacilityID == uuid.Nil || in.Date.IsZero() || in.Purpose == "" {
		return nil, reject(ErrValidation, "Please complete all required fields.")
	}

	schedule := reservation.NewSchedule(in.Date, slot)
	daysAhead := schedule.DaysUntil(now)
	if daysAhead < 0 {
		return nil, reject(ErrPastDate, "Cannot book facilities for past dates. Please select today or a future date.")
	}
	if daysAhead > c.policy.MaxAdvanceDays {
		return nil, reject(ErrAdvanceWindow, fmt.Sprintf("Bookings are allowed only up to %d days in advance.", c.policy.MaxAdvanceDays))
	}

	var (
		result    *CreateReservationResult
		requester *shared.UserSnapshot
		mailWhen  string
		mailName  string
	)
	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		reads := tx.Reads()

		today := truncateToDate(now)
		windowEnd := today.AddDate(0, 0, c.policy.RollingWindowDays-1)
		activeCount, err := reads.ActiveCountInWindow(ctx, actor.ID, today, windowEnd)
		if err != nil {
			return err
		}
		if activeCount >= c.policy.ActiveReservationCap {
			return reject(ErrQuotaExceeded, fmt.Sprintf(
				"Limit reached: You can have up to %d active reservations (pending/approved) within the next %d days.",
				c.policy.ActiveReservationCap, c.policy.RollingWindowDays))
		}

		perDayCount, err := reads.ActiveCountOnDate(ctx, actor.ID, schedule.Date())
		if err != nil {
			return err
		}
		if perDayCount >= c.policy.PerDayCap {
			return reject(ErrPerDayLimit, fmt.Sprintf(
				"Limit reached: You can only have %d booking on this date.", c.policy.PerDayCap))
		}

		facility, err := reads.FacilityByID(ctx, in.FacilityID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return reject(ErrFacilityNotFound, "Invalid facility selected. Please select a valid facility.")
			}
			return err
		}
		if !facility.Bookable() {
			return reject(ErrFacilityUnavailable, fmt.Sprintf(
				"This facility is currently %s and cannot be booked at this time. Please select a different facility.",
				facility.Status))
		}

		detection, err := c.detect(ctx, reads, in.FacilityID, schedule, now, nil)
		if err != nil {
			return err
		}
		if detection.HasConflict {
			return reject(ErrConflict, detection.Message)
		}

		requester, err = reads.UserByID(ctx, actor.ID)
		if err != nil {
			return err
		}
		blackout, err := reads.BlackoutReason(ctx, in.FacilityID, schedule.Date())
		if err != nil {
			return err
		}

		decision := approval.Evaluate(approval.Input{
			Requester:         actor,
			Verified:          requester.Verified,
			Commercial:        in.Commercial,
			Slot:              slot,
			DaysAhead:         daysAhead,
			MaxAdvanceDays:    c.policy.MaxAdvanceDays,
			MaxDuration:       time.Duration(c.policy.AutoApproveMaxHours * float64(time.Hour)),
			FacilityMaxHours:  facility.MaxDurationHours,
			ExpectedAttendees: in.ExpectedAttendees,
			CapacityThreshold: facility.CapacityThreshold,
			FacilityAllows:    facility.AutoApprove,
			FacilityAvailable: facility.Bookable(),
			BlackoutReason:    blackout,
			ConflictDetected:  false,
		})

		status := reservation.StatusPending
		var expiresAt *time.Time
		if decision.AutoApprove {
			status = reservation.StatusApproved
		} else {
			at := now.Add(time.Duration(c.policy.PendingTTLHours) * time.Hour)
			expiresAt = &at
		}

		fee := facility.BaseRate.Mul(decimal.NewFromFloat(slot.Duration().Hours()))

		res, err := reservation.NewReservation(
			in.FacilityID, actor.ID, schedule, in.Purpose,
			in.ExpectedAttendees, in.Commercial,
			status, decision.AutoApprove, expiresAt, &fee,
		)
		if err != nil {
			return reject(ErrValidation, err.Error())
		}

		id, err := tx.Reservations().Create(ctx, res)
		if err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return reject(ErrConflict, "This time slot is already booked (approved reservation). Please select an alternative time.")
			}
			return err
		}

		note := "Pending manual review by staff"
		if decision.AutoApprove {
			note = "Automatically approved by system - all conditions met"
		} else if decision.Reason != "" {
			note = note + ": " + decision.Reason
		}
		if err := tx.History().Append(ctx, shared.HistoryEntry{
			ReservationID: id,
			Status:        status.String(),
			Note:          note,
		}); err != nil {
			return err
		}

		when := fmt.Sprintf("%s (%s)", schedule.Date().Format("January 2, 2006"), slot)
		if decision.AutoApprove {
			if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
				UserID:  actor.ID,
				Type:    "booking",
				Title:   "Reservation Approved",
				Message: fmt.Sprintf("Your reservation request for %s on %s has been automatically approved.", facility.Name, when),
				Link:    reservationLink(id),
			}); err != nil {
				return err
			}
		} else {
			if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
				UserID:  actor.ID,
				Type:    "booking",
				Title:   "Reservation Submitted",
				Message: fmt.Sprintf("Your reservation request for %s has been submitted and is pending review.", facility.Name),
				Link:    reservationLink(id),
			}); err != nil {
				return err
			}
			staff, err := reads.StaffRecipients(ctx)
			if err != nil {
				return err
			}
			for _, s := range staff {
				if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
					UserID:  s.ID,
					Type:    "booking",
					Title:   "New Reservation Request",
					Message: fmt.Sprintf("A new reservation request has been submitted for %s on %s.", facility.Name, when),
					Link:    reservationLink(id),
				}); err != nil {
					return err
				}
			}
		}

		auditDetails := fmt.Sprintf("RES-%s - %s (%s)", id, facility.Name, when)
		if decision.AutoApprove {
			auditDetails += " [Auto-approved]"
		}
		if err := tx.Audit().Append(ctx, shared.AuditEntry{
			UserID:  &actor.ID,
			Action:  "Created reservation request",
			Module:  "Reservations",
			Details: auditDetails,
		}); err != nil {
			return err
		}

		result = &CreateReservationResult{
			ID:           id,
			Status:       status,
			AutoApproved: decision.AutoApprove,
			Reason:       decision.Reason,
			EstimatedFee: &fee,
			RiskScore:    detection.RiskScore,
			PendingCount: detection.PendingCount,
		}
		mailWhen = when
		mailName = facility.Name
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Best-effort, after commit. A mail failure never fails the booking.
	c.sendDecisionMail(requester, mailName, mailWhen, result.AutoApproved)
	return result, nil
}

// reservationLink points a notification at the reservation detail view.
func reservationLink(id uuid.UUID) *string {
	link := "/reservations/" + id.String()
	return &link
}

// detect assembles the conflict detector inputs from the read side.
func (c *reservationCommandsImpl) detect(
	ctx context.Context,
	reads shared.CommandReads,
	facilityID uuid.UUID,
	schedule reservation.Schedule,
	now time.Time,
	exclude *uuid.UUID,
) (conflict.Result, error) {
	return detectConflicts(ctx, reads, c.policy, facilityID, schedule, now, exclude)
}

func detectConflicts(
	ctx context.Context,
	reads shared.CommandReads,
	policy config.PolicyConfig,
	facilityID uuid.UUID,
	schedule reservation.Schedule,
	now time.Time,
	exclude *uuid.UUID,
) (conflict.Result, error) {
	approved, err := reads.ApprovedBookings(ctx, facilityID, schedule.Date(), exclude)
	if err != nil {
		return conflict.Result{}, err
	}
	pending, err := reads.PendingBookings(ctx, facilityID, schedule.Date(), now, exclude)
	if err != nil {
		return conflict.Result{}, err
	}
	historical, err := reads.HistoricalBookingCount(ctx, facilityID, schedule.Date().Weekday(), schedule.Slot(), now.AddDate(0, -6, 0))
	if err != nil {
		return conflict.Result{}, err
	}

	window, err := reservation.NewTimeSlot(policy.OperatingStart, policy.OperatingEnd)
	if err != nil {
		return conflict.Result{}, errs.Wrap(err, "invalid operating window config")
	}

	return conflict.Detect(conflict.Input{
		Requested:       schedule.Slot(),
		Approved:        approved,
		Pending:         pending,
		HistoricalCount: historical,
		Holiday:         holiday.IsHoliday(schedule.Date()),
		OperatingWindow: window,
	}), nil
}

func (c *reservationCommandsImpl) sendDecisionMail(requester *shared.UserSnapshot, facilityName, when string, autoApproved bool) {
	if requester == nil {
		return
	}
	subject := "Reservation Submitted"
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your reservation request for <b>%s</b> on %s has been submitted and is pending review.</p>", requester.Name, facilityName, when)
	if autoApproved {
		subject = "Reservation Approved"
		body = fmt.Sprintf("<p>Hi %s,</p><p>Your reservation for <b>%s</b> on %s has been automatically approved.</p>", requester.Name, facilityName, when)
	}
	_ = c.mailer.Send(requester.Email, requester.Name, subject, body)
}

func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
