//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
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

type CreateReservationTestSuite struct {
	suite.Suite
	now    time.Time
	actor  user.Actor
	reads  *fakeReads
	uow    *fakeUoW
	mailer *fakeMailer
	cmd    commands.ReservationCommands
}

func (s *CreateReservationTestSuite) SetupTest() {
	s.now = time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	s.actor = user.Actor{ID: uuid.New(), Role: user.RoleResident}

	s.reads = &fakeReads{
		facility: &shared.FacilitySnapshot{
			ID:          uuid.New(),
			Name:        "Multi-Purpose Hall",
			Status:      facility.StatusAvailable,
			BaseRate:    decimal.NewFromInt(500),
			AutoApprove: true,
		},
		requester: &shared.UserSnapshot{
			ID:       s.actor.ID,
			Name:     "Juan Dela Cruz",
			Email:    "juan@example.com",
			Role:     user.RoleResident,
			Verified: true,
			Active:   true,
		},
	}
	s.uow = newFakeUoW(s.reads)
	s.mailer = &fakeMailer{}
	s.cmd = commands.NewReservationCommands(s.uow, config.DefaultPolicy(), clock.NewMockClock(s.now), s.mailer)
}

func TestCreateReservationSuite(t *testing.T) {
	suite.Run(t, new(CreateReservationTestSuite))
}

func (s *CreateReservationTestSuite) input() commands.CreateReservationInput {
	return commands.CreateReservationInput{
		FacilityID: s.reads.facility.ID,
		Date:       s.now.AddDate(0, 0, 10),
		StartTime:  "09:00",
		EndTime:    "11:00",
		Purpose:    "Barangay assembly",
	}
}

func (s *CreateReservationTestSuite) TestAutoApprovedBooking() {
	result, err := s.cmd.Create(context.Background(), s.actor, s.input())

	s.Require().NoError(err)
	s.True(result.AutoApproved)
	s.Equal(reservation.StatusApproved, result.Status)
	s.Equal("All conditions met for auto-approval", result.Reason)
	s.NotNil(result.EstimatedFee)
	s.Equal("1000.00", result.EstimatedFee.StringFixed(2))

	s.Require().Len(s.uow.tx.reservations.created, 1)
	created := s.uow.tx.reservations.created[0]
	s.Equal(reservation.StatusApproved, created.Status())
	s.Nil(created.ExpiresAt())

	s.Require().Len(s.uow.tx.history.entries, 1)
	s.Contains(s.uow.tx.history.entries[0].Note, "Automatically approved")

	s.Equal([]string{"Reservation Approved"}, s.uow.tx.notifs.titles())
	s.Require().NotNil(s.uow.tx.notifs.records[0].Link)
	s.Equal("/reservations/"+result.ID.String(), *s.uow.tx.notifs.records[0].Link)
	s.Require().Len(s.uow.tx.audit.entries, 1)
	s.Contains(s.uow.tx.audit.entries[0].Details, "[Auto-approved]")

	s.Require().Len(s.mailer.sent, 1)
	s.Equal("Reservation Approved", s.mailer.sent[0].Subject)
	s.Equal("juan@example.com", s.mailer.sent[0].To)
}

func (s *CreateReservationTestSuite) TestUnverifiedRequesterGoesPending() {
	s.reads.requester.Verified = false
	s.reads.staff = []shared.UserSnapshot{
		{ID: uuid.New(), Role: user.RoleStaff},
		{ID: uuid.New(), Role: user.RoleAdmin},
	}

	result, err := s.cmd.Create(context.Background(), s.actor, s.input())

	s.Require().NoError(err)
	s.False(result.AutoApproved)
	s.Equal(reservation.StatusPending, result.Status)

	created := s.uow.tx.reservations.created[0]
	s.Require().NotNil(created.ExpiresAt())
	s.Equal(s.now.Add(48*time.Hour), *created.ExpiresAt())

	// Requester confirmation plus one notification per staff member.
	s.Equal([]string{
		"Reservation Submitted",
		"New Reservation Request",
		"New Reservation Request",
	}, s.uow.tx.notifs.titles())

	s.Require().Len(s.mailer.sent, 1)
	s.Equal("Reservation Submitted", s.mailer.sent[0].Subject)
}

func (s *CreateReservationTestSuite) TestCommercialUseGoesPending() {
	in := s.input()
	in.Commercial = true

	result, err := s.cmd.Create(context.Background(), s.actor, in)

	s.Require().NoError(err)
	s.False(result.AutoApproved)
	s.Contains(result.Reason, "Commercial")
}

func (s *CreateReservationTestSuite) TestActiveQuotaExceeded() {
	s.reads.activeWindow = 3

	_, err := s.cmd.Create(context.Background(), s.actor, s.input())

	s.Require().ErrorIs(err, commands.ErrQuotaExceeded)
	s.Contains(commands.RejectionReason(err), "up to 3 active reservations")
	s.Empty(s.uow.tx.reservations.created)
}

func (s *CreateReservationTestSuite) TestPerDayLimit() {
	s.reads.activeOnDate = 1

	_, err := s.cmd.Create(context.Background(), s.actor, s.input())

	s.Require().ErrorIs(err, commands.ErrPerDayLimit)
	s.Empty(s.uow.tx.reservations.created)
}

func (s *CreateReservationTestSuite) TestFacilityUnderMaintenance() {
	s.reads.facility.Status = facility.StatusMaintenance

	_, err := s.cmd.Create(context.Background(), s.actor, s.input())

	s.Require().ErrorIs(err, commands.ErrFacilityUnavailable)
	s.Contains(commands.RejectionReason(err), "maintenance")
}

func (s *CreateReservationTestSuite) TestPastDateRejected() {
	in := s.input()
	in.Date = s.now.AddDate(0, 0, -1)

	_, err := s.cmd.Create(context.Background(), s.actor, in)
	s.Require().ErrorIs(err, commands.ErrPastDate)
}

func (s *CreateReservationTestSuite) TestBeyondAdvanceWindow() {
	in := s.input()
	in.Date = s.now.AddDate(0, 0, 61)

	_, err := s.cmd.Create(context.Background(), s.actor, in)
	s.Require().ErrorIs(err, commands.ErrAdvanceWindow)
	s.Contains(commands.RejectionReason(err), "60 days in advance")
}

func (s *CreateReservationTestSuite) TestApprovedOverlapIsHardConflict() {
	slot, _ := reservation.NewTimeSlot("10:00", "12:00")
	s.reads.approved = []conflict.Booking{{ID: uuid.New(), Slot: slot}}

	_, err := s.cmd.Create(context.Background(), s.actor, s.input())

	s.Require().ErrorIs(err, commands.ErrConflict)
	s.Contains(commands.RejectionReason(err), "already booked (approved reservation)")
	s.Empty(s.uow.tx.reservations.created)
}

func (s *CreateReservationTestSuite) TestPendingOverlapIsHardConflict() {
	slot, _ := reservation.NewTimeSlot("10:00", "12:00")
	s.reads.pending = []conflict.Booking{{ID: uuid.New(), Slot: slot}}

	// A pending hold blocks the slot until staff resolve it.
	_, err := s.cmd.Create(context.Background(), s.actor, s.input())

	s.Require().ErrorIs(err, commands.ErrConflict)
	s.Contains(commands.RejectionReason(err), "held by 1 pending reservation(s)")
	s.Empty(s.uow.tx.reservations.created)
}

func (s *CreateReservationTestSuite) TestBlackoutDateGoesPending() {
	reason := "Annual maintenance week"
	s.reads.blackout = &reason

	result, err := s.cmd.Create(context.Background(), s.actor, s.input())

	s.Require().NoError(err)
	s.False(result.AutoApproved)
	s.Contains(result.Reason, "blackout")
}

func (s *CreateReservationTestSuite) TestDurationBounds() {
	in := s.input()
	in.EndTime = "09:15"
	_, err := s.cmd.Create(context.Background(), s.actor, in)
	s.Require().ErrorIs(err, commands.ErrValidation)
	s.Contains(commands.RejectionReason(err), "at least 30 minutes")

	in = s.input()
	in.StartTime = "08:00"
	in.EndTime = "21:00"
	_, err = s.cmd.Create(context.Background(), s.actor, in)
	s.Require().ErrorIs(err, commands.ErrValidation)
	s.Contains(commands.RejectionReason(err), "cannot exceed 12 hours")
}

func (s *CreateReservationTestSuite) TestUniqueIndexRaceMapsToConflict() {
	s.uow.tx.reservations.createErr = conflictRepoErr()

	_, err := s.cmd.Create(context.Background(), s.actor, s.input())
	s.Require().ErrorIs(err, commands.ErrConflict)
}
