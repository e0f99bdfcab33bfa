package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"lgu-facilities/internal/domain/conflict"
	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/domain/user"
	"lgu-facilities/internal/infra"
	"lgu-facilities/internal/pkg/clock"
	"lgu-facilities/internal/pkg/config"
	"lgu-facilities/internal/pkg/mail"
	"lgu-facilities/internal/usecase/shared"
)

// ChangeSlotInput carries the new date/slot for modify, postpone and
// reschedule operations.
type ChangeSlotInput struct {
	Date      time.Time
	StartTime string
	EndTime   string
	Reason    string
}

type LifecycleCommands interface {
	Approve(ctx context.Context, actor user.Actor, id uuid.UUID, note string) error
	Deny(ctx context.Context, actor user.Actor, id uuid.UUID, note string) error
	Cancel(ctx context.Context, actor user.Actor, id uuid.UUID, reason string) error
	// Modify moves an approved reservation without dropping approval.
	Modify(ctx context.Context, actor user.Actor, id uuid.UUID, in ChangeSlotInput) error
	// Postpone pushes an approved reservation back into review with
	// queue priority.
	Postpone(ctx context.Context, actor user.Actor, id uuid.UUID, in ChangeSlotInput) error
	// Reschedule is the requester-initiated move; approval is lost.
	Reschedule(ctx context.Context, actor user.Actor, id uuid.UUID, in ChangeSlotInput) error
	// ExpireOverdue denies reviewable reservations whose slot has
	// passed. Safe to run repeatedly.
	ExpireOverdue(ctx context.Context) (int, error)
}

type lifecycleCommandsImpl struct {
	uow    shared.UnitOfWork
	policy config.PolicyConfig
	clock  clock.Clock
	mailer mail.Mailer
}

func NewLifecycleCommands(uow shared.UnitOfWork, policy config.PolicyConfig, clk clock.Clock, mailer mail.Mailer) LifecycleCommands {
	return &lifecycleCommandsImpl{
		uow:    uow,
		policy: policy,
		clock:  clk,
		mailer: mailer,
	}
}

// reservationContext bundles the rows every transition needs for
// messages and guards.
type reservationContext struct {
	res       *reservation.Reservation
	facility  *shared.FacilitySnapshot
	requester *shared.UserSnapshot
}

func loadReservationContext(ctx context.Context, tx shared.Tx, id uuid.UUID) (*reservationContext, error) {
	res, err := tx.Reservations().FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, reject(ErrReservationNotFound, "Reservation not found")
		}
		return nil, err
	}
	facility, err := tx.Reads().FacilityByID(ctx, res.FacilityID())
	if err != nil {
		return nil, err
	}
	requester, err := tx.Reads().UserByID(ctx, res.UserID())
	if err != nil {
		return nil, err
	}
	return &reservationContext{res: res, facility: facility, requester: requester}, nil
}

func (rc *reservationContext) when() string {
	return fmt.Sprintf("%s (%s)", rc.res.Schedule().Date().Format("January 2, 2006"), rc.res.Schedule().Slot())
}

func (c *lifecycleCommandsImpl) Approve(ctx context.Context, actor user.Actor, id uuid.UUID, note string) error {
	var mailCtx *reservationContext
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rc, err := loadReservationContext(ctx, tx, id)
		if err != nil {
			return err
		}

		if !rc.facility.Bookable() {
			return reject(ErrFacilityUnavailable, fmt.Sprintf(
				"Cannot approve reservation: the facility %q is currently %s. Change the facility status to available before approving reservations.",
				rc.facility.Name, rc.facility.Status))
		}

		// Competing pending holds do not block here; they lose the
		// slot when staff approve one of them. Approved overlaps do.
		resID := rc.res.ID()
		detection, err := c.detect(ctx, tx.Reads(), rc.res.FacilityID(), rc.res.Schedule(), c.clock.Now(), &resID)
		if err != nil {
			return err
		}
		if len(detection.HardConflicts) > 0 {
			return reject(ErrConflict, "This time slot is already booked (approved reservation). Please select an alternative time.")
		}

		hadPriority := rc.res.Status() == reservation.StatusPostponed && rc.res.PostponedPriority()

		if err := rc.res.Approve(); err != nil {
			return c.mapDomainErr(err)
		}
		if err := tx.Reservations().Save(ctx, rc.res); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return reject(ErrConflict, "This time slot is already booked (approved reservation).")
			}
			return err
		}

		if err := tx.History().Append(ctx, shared.HistoryEntry{
			ReservationID: id,
			Status:        reservation.StatusApproved.String(),
			Note:          note,
			CreatedBy:     &actor.ID,
		}); err != nil {
			return err
		}

		msg := fmt.Sprintf("Your reservation request for %s on %s has been approved.", rc.facility.Name, rc.when())
		if hadPriority {
			msg += " This reservation had priority due to previous postponement."
		}
		if note != "" {
			msg += " Note: " + note
		}
		if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
			UserID:  rc.res.UserID(),
			Type:    "booking",
			Title:   "Reservation Approved",
			Message: msg,
			Link:    reservationLink(id),
		}); err != nil {
			return err
		}

		if err := c.audit(ctx, tx, actor, "Approved reservation", rc, note); err != nil {
			return err
		}
		mailCtx = rc
		return nil
	})
	if err != nil {
		return err
	}

	c.sendTransitionMail(mailCtx, "Reservation Approved", "approved")
	return nil
}

func (c *lifecycleCommandsImpl) Deny(ctx context.Context, actor user.Actor, id uuid.UUID, note string) error {
	var mailCtx *reservationContext
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rc, err := loadReservationContext(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := rc.res.Deny(); err != nil {
			return c.mapDomainErr(err)
		}
		if err := tx.Reservations().Save(ctx, rc.res); err != nil {
			return err
		}

		if err := tx.History().Append(ctx, shared.HistoryEntry{
			ReservationID: id,
			Status:        reservation.StatusDenied.String(),
			Note:          note,
			CreatedBy:     &actor.ID,
		}); err != nil {
			return err
		}

		msg := fmt.Sprintf("Your reservation request for %s on %s has been denied.", rc.facility.Name, rc.when())
		if note != "" {
			msg += " Note: " + note
		}
		if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
			UserID:  rc.res.UserID(),
			Type:    "booking",
			Title:   "Reservation Denied",
			Message: msg,
			Link:    reservationLink(id),
		}); err != nil {
			return err
		}

		if err := c.audit(ctx, tx, actor, "Denied reservation", rc, note); err != nil {
			return err
		}
		mailCtx = rc
		return nil
	})
	if err != nil {
		return err
	}

	c.sendTransitionMail(mailCtx, "Reservation Denied", "denied")
	return nil
}

func (c *lifecycleCommandsImpl) Cancel(ctx context.Context, actor user.Actor, id uuid.UUID, reason string) error {
	var mailCtx *reservationContext
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rc, err := loadReservationContext(ctx, tx, id)
		if err != nil {
			return err
		}

		if err := rc.res.Cancel(c.clock.Now(), reason); err != nil {
			return c.mapDomainErr(err)
		}
		if err := tx.Reservations().Save(ctx, rc.res); err != nil {
			return err
		}

		note := "Cancelled by admin/staff. Reason: " + reason
		if err := tx.History().Append(ctx, shared.HistoryEntry{
			ReservationID: id,
			Status:        reservation.StatusCancelled.String(),
			Note:          note,
			CreatedBy:     &actor.ID,
		}); err != nil {
			return err
		}

		if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
			UserID:  rc.res.UserID(),
			Type:    "booking",
			Title:   "Reservation Cancelled",
			Message: fmt.Sprintf("Your reservation request for %s on %s has been cancelled. Note: %s", rc.facility.Name, rc.when(), reason),
			Link:    reservationLink(id),
		}); err != nil {
			return err
		}

		if err := c.audit(ctx, tx, actor, "Cancelled reservation", rc, note); err != nil {
			return err
		}
		mailCtx = rc
		return nil
	})
	if err != nil {
		return err
	}

	c.sendTransitionMail(mailCtx, "Reservation Cancelled", "cancelled")
	return nil
}

func (c *lifecycleCommandsImpl) Modify(ctx context.Context, actor user.Actor, id uuid.UUID, in ChangeSlotInput) error {
	var mailCtx *reservationContext
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rc, err := loadReservationContext(ctx, tx, id)
		if err != nil {
			return err
		}

		newSchedule, err := c.parseSchedule(in)
		if err != nil {
			return err
		}

		resID := rc.res.ID()
		detection, err := c.detect(ctx, tx.Reads(), rc.res.FacilityID(), newSchedule, c.clock.Now(), &resID)
		if err != nil {
			return err
		}
		if detection.HasConflict {
			return reject(ErrConflict, detection.Message)
		}

		oldWhen := rc.when()
		if err := rc.res.Modify(c.clock.Now(), newSchedule, in.Reason); err != nil {
			return c.mapDomainErr(err)
		}
		if err := tx.Reservations().Save(ctx, rc.res); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return reject(ErrConflict, "This time slot is already booked (approved reservation).")
			}
			return err
		}

		note := fmt.Sprintf("Modified from %s to %s. Reason: %s", oldWhen, rc.when(), in.Reason)
		if err := tx.History().Append(ctx, shared.HistoryEntry{
			ReservationID: id,
			Status:        reservation.StatusApproved.String(),
			Note:          note,
			CreatedBy:     &actor.ID,
		}); err != nil {
			return err
		}

		if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
			UserID:  rc.res.UserID(),
			Type:    "booking",
			Title:   "Reservation Modified",
			Message: fmt.Sprintf("Your reservation for %s has been moved to %s. Reason: %s. It remains approved.", rc.facility.Name, rc.when(), in.Reason),
			Link:    reservationLink(id),
		}); err != nil {
			return err
		}

		if err := c.audit(ctx, tx, actor, "Modified approved reservation", rc, note); err != nil {
			return err
		}
		mailCtx = rc
		return nil
	})
	if err != nil {
		return err
	}

	c.sendTransitionMail(mailCtx, "Reservation Modified", "moved to a new schedule")
	return nil
}

func (c *lifecycleCommandsImpl) Postpone(ctx context.Context, actor user.Actor, id uuid.UUID, in ChangeSlotInput) error {
	var mailCtx *reservationContext
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rc, err := loadReservationContext(ctx, tx, id)
		if err != nil {
			return err
		}

		newSchedule, err := c.parseSchedule(in)
		if err != nil {
			return err
		}

		resID := rc.res.ID()
		detection, err := c.detect(ctx, tx.Reads(), rc.res.FacilityID(), newSchedule, c.clock.Now(), &resID)
		if err != nil {
			return err
		}
		if detection.HasConflict {
			return reject(ErrConflict, detection.Message)
		}

		oldWhen := rc.when()
		if err := rc.res.Postpone(c.clock.Now(), newSchedule, in.Reason); err != nil {
			return c.mapDomainErr(err)
		}
		if err := tx.Reservations().Save(ctx, rc.res); err != nil {
			return err
		}

		note := fmt.Sprintf("Postponed from %s to %s. Reason: %s", oldWhen, rc.when(), in.Reason)
		if err := tx.History().Append(ctx, shared.HistoryEntry{
			ReservationID: id,
			Status:        reservation.StatusPostponed.String(),
			Note:          note,
			CreatedBy:     &actor.ID,
		}); err != nil {
			return err
		}

		if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
			UserID:  rc.res.UserID(),
			Type:    "booking",
			Title:   "Reservation Postponed",
			Message: fmt.Sprintf("Your reservation for %s has been postponed to %s and is pending re-approval with priority. Reason: %s", rc.facility.Name, rc.when(), in.Reason),
			Link:    reservationLink(id),
		}); err != nil {
			return err
		}

		if err := c.audit(ctx, tx, actor, "Postponed approved reservation", rc, note); err != nil {
			return err
		}
		mailCtx = rc
		return nil
	})
	if err != nil {
		return err
	}

	c.sendTransitionMail(mailCtx, "Reservation Postponed", "postponed and queued for re-approval")
	return nil
}

func (c *lifecycleCommandsImpl) Reschedule(ctx context.Context, actor user.Actor, id uuid.UUID, in ChangeSlotInput) error {
	var mailCtx *reservationContext
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		rc, err := loadReservationContext(ctx, tx, id)
		if err != nil {
			return err
		}

		if rc.res.UserID() != actor.ID && !actor.IsStaff() {
			return reject(ErrNotOwner, "You can only reschedule your own reservations.")
		}

		if !rc.facility.Bookable() {
			return reject(ErrFacilityUnavailable, fmt.Sprintf(
				"Cannot reschedule: the facility %q is currently %s and not accepting bookings.",
				rc.facility.Name, rc.facility.Status))
		}

		newSchedule, err := c.parseSchedule(in)
		if err != nil {
			return err
		}

		daysAhead := newSchedule.DaysUntil(c.clock.Now())
		if daysAhead > c.policy.MaxAdvanceDays {
			return reject(ErrAdvanceWindow, fmt.Sprintf("Bookings are allowed only up to %d days in advance.", c.policy.MaxAdvanceDays))
		}

		resID := rc.res.ID()
		detection, err := c.detect(ctx, tx.Reads(), rc.res.FacilityID(), newSchedule, c.clock.Now(), &resID)
		if err != nil {
			return err
		}
		if detection.HasConflict {
			return reject(ErrConflict, detection.Message)
		}

		oldWhen := rc.when()
		policy := reservation.ReschedulePolicy{
			MinLeadDays: c.policy.RescheduleMinLeadDays,
			MaxPerLife:  c.policy.MaxReschedules,
		}
		if err := rc.res.Reschedule(c.clock.Now(), newSchedule, in.Reason, policy); err != nil {
			return c.mapDomainErr(err)
		}
		if err := tx.Reservations().Save(ctx, rc.res); err != nil {
			if infra.IsKind(err, infra.KindConflict) {
				return reject(ErrConflict, "This time slot is already booked (approved reservation).")
			}
			return err
		}

		note := fmt.Sprintf("Rescheduled from %s to %s. Reason: %s", oldWhen, rc.when(), in.Reason)
		if err := tx.History().Append(ctx, shared.HistoryEntry{
			ReservationID: id,
			Status:        rc.res.Status().String(),
			Note:          note,
			CreatedBy:     &actor.ID,
		}); err != nil {
			return err
		}

		if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
			UserID:  rc.res.UserID(),
			Type:    "booking",
			Title:   "Reservation Rescheduled",
			Message: fmt.Sprintf("Your reservation for %s has been rescheduled to %s and is pending review.", rc.facility.Name, rc.when()),
			Link:    reservationLink(id),
		}); err != nil {
			return err
		}

		if err := c.audit(ctx, tx, actor, "Rescheduled reservation", rc, note); err != nil {
			return err
		}
		mailCtx = rc
		return nil
	})
	if err != nil {
		return err
	}

	c.sendTransitionMail(mailCtx, "Reservation Rescheduled", "rescheduled and is pending review")
	return nil
}

// The sweep note matches what requesters see in their history view.
const expiryNote = "Automatically denied: Reservation date/time has passed without approval."

func (c *lifecycleCommandsImpl) ExpireOverdue(ctx context.Context) (int, error) {
	const batchSize = 100
	now := c.clock.Now()

	expired := 0
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		overdue, err := tx.Reservations().ListOverdue(ctx, now, batchSize)
		if err != nil {
			return err
		}

		for _, res := range overdue {
			if !res.Expire(now) {
				continue
			}
			if err := tx.Reservations().Save(ctx, res); err != nil {
				return err
			}
			if err := tx.History().Append(ctx, shared.HistoryEntry{
				ReservationID: res.ID(),
				Status:        reservation.StatusDenied.String(),
				Note:          expiryNote,
			}); err != nil {
				return err
			}

			facility, err := tx.Reads().FacilityByID(ctx, res.FacilityID())
			if err != nil {
				return err
			}
			when := fmt.Sprintf("%s (%s)", res.Schedule().Date().Format("January 2, 2006"), res.Schedule().Slot())
			if err := tx.Notifications().Create(ctx, shared.NotificationRecord{
				UserID:  res.UserID(),
				Type:    "booking",
				Title:   "Reservation Auto-Declined",
				Message: fmt.Sprintf("Your reservation request for %s on %s has been automatically denied because the reservation time has passed without approval.", facility.Name, when),
				Link:    reservationLink(res.ID()),
			}); err != nil {
				return err
			}
			if err := tx.Audit().Append(ctx, shared.AuditEntry{
				Action:  "Auto-declined expired reservation",
				Module:  "Reservations",
				Details: fmt.Sprintf("RES-%s - %s (%s)", res.ID(), facility.Name, when),
			}); err != nil {
				return err
			}
			expired++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return expired, nil
}

func (c *lifecycleCommandsImpl) parseSchedule(in ChangeSlotInput) (reservation.Schedule, error) {
	slot, err := reservation.NewTimeSlot(in.StartTime, in.EndTime)
	if err != nil {
		if errors.Is(err, reservation.ErrInvalidTimeSlot) {
			return reservation.Schedule{}, reject(ErrValidation, "End time must be after start time.")
		}
		return reservation.Schedule{}, reject(ErrValidation, "Invalid time format. Please use valid time values.")
	}
	if slot.Duration() > time.Duration(c.policy.MaxDurationHours*float64(time.Hour)) {
		return reservation.Schedule{}, reject(ErrValidation, fmt.Sprintf("Reservation duration cannot exceed %.0f hours.", c.policy.MaxDurationHours))
	}
	if slot.Duration() < time.Duration(c.policy.MinDurationMinutes)*time.Minute {
		return reservation.Schedule{}, reject(ErrValidation, fmt.Sprintf("Reservation duration must be at least %d minutes.", c.policy.MinDurationMinutes))
	}
	if in.Date.IsZero() {
		return reservation.Schedule{}, reject(ErrValidation, "Please complete all required fields.")
	}
	return reservation.NewSchedule(in.Date, slot), nil
}

func (c *lifecycleCommandsImpl) detect(
	ctx context.Context,
	reads shared.CommandReads,
	facilityID uuid.UUID,
	schedule reservation.Schedule,
	now time.Time,
	exclude *uuid.UUID,
) (conflict.Result, error) {
	return detectConflicts(ctx, reads, c.policy, facilityID, schedule, now, exclude)
}

func (c *lifecycleCommandsImpl) audit(ctx context.Context, tx shared.Tx, actor user.Actor, action string, rc *reservationContext, note string) error {
	details := fmt.Sprintf("RES-%s - %s (%s)", rc.res.ID(), rc.facility.Name, rc.when())
	if note != "" {
		details += " - Note: " + note
	}
	return tx.Audit().Append(ctx, shared.AuditEntry{
		UserID:  &actor.ID,
		Action:  action,
		Module:  "Reservations",
		Details: details,
	})
}

func (c *lifecycleCommandsImpl) sendTransitionMail(rc *reservationContext, subject, verb string) {
	if rc == nil {
		return
	}
	body := fmt.Sprintf("<p>Hi %s,</p><p>Your reservation for <b>%s</b> on %s has been %s.</p>",
		rc.requester.Name, rc.facility.Name, rc.when(), verb)
	_ = c.mailer.Send(rc.requester.Email, rc.requester.Name, subject, body)
}

func (c *lifecycleCommandsImpl) mapDomainErr(err error) error {
	switch {
	case errors.Is(err, reservation.ErrReasonRequired):
		return reject(ErrValidation, "A reason is required for this action.")
	case errors.Is(err, reservation.ErrAlreadyStarted):
		return reject(ErrTransition, "The reservation has already started.")
	case errors.Is(err, reservation.ErrPastDate):
		return reject(ErrPastDate, "Cannot move a reservation to a past date.")
	case errors.Is(err, reservation.ErrNotAwaitingReview):
		return reject(ErrTransition, "Only pending or postponed reservations can be reviewed.")
	case errors.Is(err, reservation.ErrNotApproved):
		return reject(ErrTransition, "Only approved reservations allow this action.")
	case errors.Is(err, reservation.ErrRescheduleLimit):
		return reject(ErrTransition, "This reservation has already been rescheduled the maximum number of times.")
	case errors.Is(err, reservation.ErrRescheduleTooLate):
		return reject(ErrTransition, fmt.Sprintf("Reschedules must be requested at least %d days before the reservation date.", c.policy.RescheduleMinLeadDays))
	case errors.Is(err, reservation.ErrInvalidTransition):
		return reject(ErrTransition, "This action is not allowed in the reservation's current state.")
	default:
		return err
	}
}
