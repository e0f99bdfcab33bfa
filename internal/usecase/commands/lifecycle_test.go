//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"lgu-facilities/internal/domain/conflict"
	"lgu-facilities/internal/domain/facility"
	"lgu-facilities/internal/domain/reservation"
	"lgu-facilities/internal/domain/user"
	"lgu-facilities/internal/pkg/clock"
	"lgu-facilities/internal/pkg/config"
	"lgu-facilities/internal/usecase/commands"
	"lgu-facilities/internal/usecase/shared"
)

type LifecycleTestSuite struct {
	suite.Suite
	now    time.Time
	staff  user.Actor
	owner  user.Actor
	reads  *fakeReads
	uow    *fakeUoW
	mailer *fakeMailer
	cmd    commands.LifecycleCommands
}

func (s *LifecycleTestSuite) SetupTest() {
	s.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s.staff = user.Actor{ID: uuid.New(), Role: user.RoleStaff}
	s.owner = user.Actor{ID: uuid.New(), Role: user.RoleResident}

	s.reads = &fakeReads{
		facility: &shared.FacilitySnapshot{
			ID:     uuid.New(),
			Name:   "Covered Court",
			Status: facility.StatusAvailable,
		},
		requester: &shared.UserSnapshot{
			ID:     s.owner.ID,
			Name:   "Maria Santos",
			Email:  "maria@example.com",
			Role:   user.RoleResident,
			Active: true,
		},
	}
	s.uow = newFakeUoW(s.reads)
	s.mailer = &fakeMailer{}
	s.cmd = commands.NewLifecycleCommands(s.uow, config.DefaultPolicy(), clock.NewMockClock(s.now), s.mailer)
}

func TestLifecycleSuite(t *testing.T) {
	suite.Run(t, new(LifecycleTestSuite))
}

// seed stores a reservation in the fake repository and returns it.
func (s *LifecycleTestSuite) seed(status reservation.Status, daysAhead int) *reservation.Reservation {
	slot, err := reservation.NewTimeSlot("09:00", "11:00")
	s.Require().NoError(err)
	schedule := reservation.NewSchedule(s.now.AddDate(0, 0, daysAhead), slot)

	var expiresAt *time.Time
	if status == reservation.StatusPending {
		at := s.now.Add(48 * time.Hour)
		expiresAt = &at
	}
	var postponedAt *time.Time
	priority := false
	if status == reservation.StatusPostponed {
		at := s.now.Add(-24 * time.Hour)
		postponedAt = &at
		priority = true
	}

	res := reservation.ReconstructReservation(
		uuid.New(), s.reads.facility.ID, s.owner.ID,
		schedule, "Basketball league", nil, false,
		status, false, 0, priority, postponedAt, expiresAt, nil,
		s.now.Add(-time.Hour), s.now.Add(-time.Hour),
	)
	s.uow.tx.reservations.byID[res.ID()] = res
	return res
}

func (s *LifecycleTestSuite) TestApprovePending() {
	res := s.seed(reservation.StatusPending, 7)

	err := s.cmd.Approve(context.Background(), s.staff, res.ID(), "Looks good")

	s.Require().NoError(err)
	s.Equal(reservation.StatusApproved, res.Status())
	s.Nil(res.ExpiresAt())

	s.Require().Len(s.uow.tx.history.entries, 1)
	entry := s.uow.tx.history.entries[0]
	s.Equal("approved", entry.Status)
	s.Equal("Looks good", entry.Note)
	s.Require().NotNil(entry.CreatedBy)
	s.Equal(s.staff.ID, *entry.CreatedBy)

	s.Equal([]string{"Reservation Approved"}, s.uow.tx.notifs.titles())
	s.Contains(s.uow.tx.notifs.records[0].Message, "Note: Looks good")
	s.Require().NotNil(s.uow.tx.notifs.records[0].Link)
	s.Equal("/reservations/"+res.ID().String(), *s.uow.tx.notifs.records[0].Link)

	s.Require().Len(s.uow.tx.audit.entries, 1)
	s.Equal("Approved reservation", s.uow.tx.audit.entries[0].Action)

	s.Require().Len(s.mailer.sent, 1)
	s.Equal("maria@example.com", s.mailer.sent[0].To)
}

func (s *LifecycleTestSuite) TestApprovePostponedMentionsPriority() {
	res := s.seed(reservation.StatusPostponed, 7)

	err := s.cmd.Approve(context.Background(), s.staff, res.ID(), "")

	s.Require().NoError(err)
	s.Equal(reservation.StatusApproved, res.Status())
	s.Nil(res.PostponedAt())
	s.Contains(s.uow.tx.notifs.records[0].Message, "priority due to previous postponement")
}

func (s *LifecycleTestSuite) TestApproveBlockedByFacilityStatus() {
	s.reads.facility.Status = facility.StatusMaintenance
	res := s.seed(reservation.StatusPending, 7)

	err := s.cmd.Approve(context.Background(), s.staff, res.ID(), "")

	s.Require().ErrorIs(err, commands.ErrFacilityUnavailable)
	s.Contains(commands.RejectionReason(err), "Change the facility status")
	s.Equal(reservation.StatusPending, res.Status())
	s.Empty(s.uow.tx.reservations.saved)
}

func (s *LifecycleTestSuite) TestApproveBlockedByApprovedOverlap() {
	res := s.seed(reservation.StatusPending, 7)
	slot, _ := reservation.NewTimeSlot("10:00", "12:00")
	s.reads.approved = []conflict.Booking{{ID: uuid.New(), Slot: slot}}

	err := s.cmd.Approve(context.Background(), s.staff, res.ID(), "")

	s.Require().ErrorIs(err, commands.ErrConflict)
	s.Equal(reservation.StatusPending, res.Status())
}

func (s *LifecycleTestSuite) TestApproveIgnoresCompetingPendingHolds() {
	res := s.seed(reservation.StatusPending, 7)
	slot, _ := reservation.NewTimeSlot("10:00", "12:00")
	s.reads.pending = []conflict.Booking{{ID: uuid.New(), Slot: slot}}

	// Another pending hold on the same slot loses the race; it must
	// not block this approval.
	err := s.cmd.Approve(context.Background(), s.staff, res.ID(), "")

	s.Require().NoError(err)
	s.Equal(reservation.StatusApproved, res.Status())
}

func (s *LifecycleTestSuite) TestApproveAlreadyApproved() {
	res := s.seed(reservation.StatusApproved, 7)

	err := s.cmd.Approve(context.Background(), s.staff, res.ID(), "")

	s.Require().ErrorIs(err, commands.ErrTransition)
	s.Contains(commands.RejectionReason(err), "pending or postponed")
}

func (s *LifecycleTestSuite) TestApproveUnknownReservation() {
	err := s.cmd.Approve(context.Background(), s.staff, uuid.New(), "")
	s.Require().ErrorIs(err, commands.ErrReservationNotFound)
}

func (s *LifecycleTestSuite) TestDenyPending() {
	res := s.seed(reservation.StatusPending, 7)

	err := s.cmd.Deny(context.Background(), s.staff, res.ID(), "Double-booked event")

	s.Require().NoError(err)
	s.Equal(reservation.StatusDenied, res.Status())
	s.Equal([]string{"Reservation Denied"}, s.uow.tx.notifs.titles())
	s.Contains(s.uow.tx.notifs.records[0].Message, "Note: Double-booked event")
}

func (s *LifecycleTestSuite) TestCancelApproved() {
	res := s.seed(reservation.StatusApproved, 7)

	err := s.cmd.Cancel(context.Background(), s.staff, res.ID(), "Facility repair")

	s.Require().NoError(err)
	s.Equal(reservation.StatusCancelled, res.Status())
	s.Equal("Cancelled by admin/staff. Reason: Facility repair", s.uow.tx.history.entries[0].Note)
	s.Equal([]string{"Reservation Cancelled"}, s.uow.tx.notifs.titles())
}

func (s *LifecycleTestSuite) TestCancelRequiresReason() {
	res := s.seed(reservation.StatusApproved, 7)

	err := s.cmd.Cancel(context.Background(), s.staff, res.ID(), "")

	s.Require().ErrorIs(err, commands.ErrValidation)
	s.Contains(commands.RejectionReason(err), "reason is required")
	s.Equal(reservation.StatusApproved, res.Status())
}

func (s *LifecycleTestSuite) TestCancelPendingNotAllowed() {
	res := s.seed(reservation.StatusPending, 7)

	err := s.cmd.Cancel(context.Background(), s.staff, res.ID(), "No longer needed")

	s.Require().ErrorIs(err, commands.ErrTransition)
	s.Contains(commands.RejectionReason(err), "Only approved reservations")
}

func (s *LifecycleTestSuite) changeInput(daysAhead int) commands.ChangeSlotInput {
	return commands.ChangeSlotInput{
		Date:      s.now.AddDate(0, 0, daysAhead),
		StartTime: "13:00",
		EndTime:   "15:00",
		Reason:    "Schedule adjustment",
	}
}

func (s *LifecycleTestSuite) TestModifyKeepsApproval() {
	res := s.seed(reservation.StatusApproved, 7)

	err := s.cmd.Modify(context.Background(), s.staff, res.ID(), s.changeInput(14))

	s.Require().NoError(err)
	s.Equal(reservation.StatusApproved, res.Status())
	s.Equal("13:00 - 15:00", res.Schedule().Slot().String())
	s.Contains(s.uow.tx.history.entries[0].Note, "Modified from")
	s.Equal([]string{"Reservation Modified"}, s.uow.tx.notifs.titles())
	s.Contains(s.uow.tx.notifs.records[0].Message, "It remains approved.")
}

func (s *LifecycleTestSuite) TestPostponeSetsPriority() {
	res := s.seed(reservation.StatusApproved, 7)

	err := s.cmd.Postpone(context.Background(), s.staff, res.ID(), s.changeInput(14))

	s.Require().NoError(err)
	s.Equal(reservation.StatusPostponed, res.Status())
	s.True(res.PostponedPriority())
	s.Require().NotNil(res.PostponedAt())
	s.Equal(s.now, *res.PostponedAt())
	s.Equal([]string{"Reservation Postponed"}, s.uow.tx.notifs.titles())
	s.Contains(s.uow.tx.notifs.records[0].Message, "pending re-approval with priority")
}

func (s *LifecycleTestSuite) TestPostponeBlockedByOverlap() {
	res := s.seed(reservation.StatusApproved, 7)
	slot, _ := reservation.NewTimeSlot("14:00", "16:00")
	s.reads.approved = []conflict.Booking{{ID: uuid.New(), Slot: slot}}

	err := s.cmd.Postpone(context.Background(), s.staff, res.ID(), s.changeInput(14))

	s.Require().ErrorIs(err, commands.ErrConflict)
	s.Equal(reservation.StatusApproved, res.Status())
	s.Empty(s.uow.tx.reservations.saved)
}

func (s *LifecycleTestSuite) TestRescheduleByOwnerDropsApproval() {
	res := s.seed(reservation.StatusApproved, 7)

	err := s.cmd.Reschedule(context.Background(), s.owner, res.ID(), s.changeInput(14))

	s.Require().NoError(err)
	s.Equal(reservation.StatusPending, res.Status())
	s.Equal(int32(1), res.RescheduleCount())
	s.Equal([]string{"Reservation Rescheduled"}, s.uow.tx.notifs.titles())
}

func (s *LifecycleTestSuite) TestRescheduleByStrangerForbidden() {
	res := s.seed(reservation.StatusApproved, 7)
	stranger := user.Actor{ID: uuid.New(), Role: user.RoleResident}

	err := s.cmd.Reschedule(context.Background(), stranger, res.ID(), s.changeInput(14))

	s.Require().ErrorIs(err, commands.ErrNotOwner)
	s.Equal(reservation.StatusApproved, res.Status())
}

func (s *LifecycleTestSuite) TestRescheduleBlockedByFacilityStatus() {
	s.reads.facility.Status = facility.StatusMaintenance
	res := s.seed(reservation.StatusApproved, 7)

	err := s.cmd.Reschedule(context.Background(), s.owner, res.ID(), s.changeInput(14))

	s.Require().ErrorIs(err, commands.ErrFacilityUnavailable)
	s.Contains(commands.RejectionReason(err), "not accepting bookings")
	s.Equal(reservation.StatusApproved, res.Status())
	s.Empty(s.uow.tx.reservations.saved)
}

func (s *LifecycleTestSuite) TestRescheduleLimitReached() {
	res := s.seed(reservation.StatusApproved, 7)
	s.Require().NoError(s.cmd.Reschedule(context.Background(), s.owner, res.ID(), s.changeInput(14)))

	err := s.cmd.Reschedule(context.Background(), s.owner, res.ID(), s.changeInput(21))

	s.Require().ErrorIs(err, commands.ErrTransition)
	s.Contains(commands.RejectionReason(err), "maximum number of times")
}

func (s *LifecycleTestSuite) TestRescheduleTooCloseToDate() {
	res := s.seed(reservation.StatusApproved, 2)

	err := s.cmd.Reschedule(context.Background(), s.owner, res.ID(), s.changeInput(14))

	s.Require().ErrorIs(err, commands.ErrTransition)
	s.Contains(commands.RejectionReason(err), "at least 3 days before")
}

func (s *LifecycleTestSuite) TestExpireOverdueSweep() {
	first := s.seed(reservation.StatusPending, -2)
	second := s.seed(reservation.StatusPostponed, -1)
	untouched := s.seed(reservation.StatusApproved, -1)
	s.uow.tx.reservations.overdue = []*reservation.Reservation{first, second, untouched}

	count, err := s.cmd.ExpireOverdue(context.Background())

	s.Require().NoError(err)
	s.Equal(2, count)
	s.Equal(reservation.StatusDenied, first.Status())
	s.Equal(reservation.StatusDenied, second.Status())
	s.Equal(reservation.StatusApproved, untouched.Status())

	s.Require().Len(s.uow.tx.history.entries, 2)
	for _, entry := range s.uow.tx.history.entries {
		s.Equal("denied", entry.Status)
		s.Contains(entry.Note, "Automatically denied")
		s.Nil(entry.CreatedBy)
	}
	s.Equal([]string{"Reservation Auto-Declined", "Reservation Auto-Declined"}, s.uow.tx.notifs.titles())
	for _, entry := range s.uow.tx.audit.entries {
		s.Nil(entry.UserID)
		s.Equal("Auto-declined expired reservation", entry.Action)
	}

	// Already denied rows are skipped on the next run.
	count, err = s.cmd.ExpireOverdue(context.Background())
	s.Require().NoError(err)
	s.Zero(count)
}
