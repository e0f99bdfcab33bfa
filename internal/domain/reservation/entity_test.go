//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgu-facilities/internal/domain/reservation"
)

var testNow = time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC)

func mustSchedule(t *testing.T, date time.Time, start, end string) reservation.Schedule {
	t.Helper()
	slot, err := reservation.NewTimeSlot(start, end)
	require.NoError(t, err)
	return reservation.NewSchedule(date, slot)
}

func newPending(t *testing.T, date time.Time) *reservation.Reservation {
	t.Helper()
	r, err := reservation.NewReservation(
		uuid.New(), uuid.New(),
		mustSchedule(t, date, "09:00", "11:00"),
		"Community meeting", nil, false,
		reservation.StatusPending, false, nil, nil,
	)
	require.NoError(t, err)
	return r
}

func newApproved(t *testing.T, date time.Time) *reservation.Reservation {
	t.Helper()
	r := newPending(t, date)
	require.NoError(t, r.Approve())
	return r
}

func TestNewReservation_Validation(t *testing.T) {
	sched := mustSchedule(t, testNow.AddDate(0, 0, 7), "09:00", "11:00")

	_, err := reservation.NewReservation(uuid.New(), uuid.New(), sched, "", nil, false, reservation.StatusPending, false, nil, nil)
	assert.ErrorIs(t, err, reservation.ErrMissingPurpose)

	bad := int32(0)
	_, err = reservation.NewReservation(uuid.New(), uuid.New(), sched, "Meeting", &bad, false, reservation.StatusPending, false, nil, nil)
	assert.ErrorIs(t, err, reservation.ErrInvalidAttendees)

	_, err = reservation.NewReservation(uuid.New(), uuid.New(), sched, "Meeting", nil, false, reservation.StatusDenied, false, nil, nil)
	assert.ErrorIs(t, err, reservation.ErrInvalidTransition)
}

func TestApprove_OnlyReviewableStatuses(t *testing.T) {
	r := newPending(t, testNow.AddDate(0, 0, 7))
	require.NoError(t, r.Approve())
	assert.Equal(t, reservation.StatusApproved, r.Status())

	assert.ErrorIs(t, r.Approve(), reservation.ErrNotAwaitingReview)
}

func TestApprove_ClearsExpiryAndPostponedAtButKeepsPriority(t *testing.T) {
	r := newApproved(t, testNow.AddDate(0, 0, 10))
	require.NoError(t, r.Postpone(testNow, mustSchedule(t, testNow.AddDate(0, 0, 14), "09:00", "11:00"), "Venue repair"))
	require.NotNil(t, r.PostponedAt())
	require.True(t, r.PostponedPriority())

	require.NoError(t, r.Approve())

	assert.Nil(t, r.PostponedAt())
	assert.Nil(t, r.ExpiresAt())
	assert.True(t, r.PostponedPriority())
}

func TestDeny_TerminalAndGuarded(t *testing.T) {
	r := newPending(t, testNow.AddDate(0, 0, 7))
	require.NoError(t, r.Deny())
	assert.Equal(t, reservation.StatusDenied, r.Status())

	assert.ErrorIs(t, r.Deny(), reservation.ErrNotAwaitingReview)
	assert.ErrorIs(t, r.Approve(), reservation.ErrNotAwaitingReview)
}

func TestCancel_Guards(t *testing.T) {
	r := newApproved(t, testNow.AddDate(0, 0, 7))

	assert.ErrorIs(t, r.Cancel(testNow, ""), reservation.ErrReasonRequired)
	require.NoError(t, r.Cancel(testNow, "Event called off"))
	assert.Equal(t, reservation.StatusCancelled, r.Status())

	started := newApproved(t, testNow.AddDate(0, 0, -1))
	assert.ErrorIs(t, started.Cancel(testNow, "too late"), reservation.ErrAlreadyStarted)

	pending := newPending(t, testNow.AddDate(0, 0, 7))
	assert.ErrorIs(t, pending.Cancel(testNow, "reason"), reservation.ErrNotApproved)
}

func TestModify_KeepsApprovedStatus(t *testing.T) {
	r := newApproved(t, testNow.AddDate(0, 0, 7))
	next := mustSchedule(t, testNow.AddDate(0, 0, 9), "13:00", "15:00")

	require.NoError(t, r.Modify(testNow, next, "Requester asked for afternoon"))

	assert.Equal(t, reservation.StatusApproved, r.Status())
	assert.Equal(t, next, r.Schedule())

	past := mustSchedule(t, testNow.AddDate(0, 0, -2), "13:00", "15:00")
	assert.ErrorIs(t, r.Modify(testNow, past, "oops"), reservation.ErrPastDate)
}

func TestPostpone_SetsPriorityAndTimestamp(t *testing.T) {
	r := newApproved(t, testNow.AddDate(0, 0, 7))
	next := mustSchedule(t, testNow.AddDate(0, 0, 21), "09:00", "11:00")

	require.NoError(t, r.Postpone(testNow, next, "Facility repair"))

	assert.Equal(t, reservation.StatusPostponed, r.Status())
	assert.True(t, r.PostponedPriority())
	require.NotNil(t, r.PostponedAt())
	assert.Equal(t, testNow, *r.PostponedAt())
	assert.Equal(t, next, r.Schedule())
}

func TestReschedule_PendingKeepsStatus(t *testing.T) {
	r := newPending(t, testNow.AddDate(0, 0, 7))
	next := mustSchedule(t, testNow.AddDate(0, 0, 9), "09:00", "11:00")
	policy := reservation.ReschedulePolicy{MinLeadDays: 3, MaxPerLife: 1}

	require.NoError(t, r.Reschedule(testNow, next, "Schedule change", policy))

	assert.Equal(t, reservation.StatusPending, r.Status())
	assert.Equal(t, int32(1), r.RescheduleCount())
}

func TestReschedule_ApprovedDropsToPending(t *testing.T) {
	r := newApproved(t, testNow.AddDate(0, 0, 7))
	next := mustSchedule(t, testNow.AddDate(0, 0, 9), "09:00", "11:00")
	policy := reservation.ReschedulePolicy{MinLeadDays: 3, MaxPerLife: 1}

	require.NoError(t, r.Reschedule(testNow, next, "Schedule change", policy))

	assert.Equal(t, reservation.StatusPending, r.Status())
	assert.False(t, r.AutoApproved())
}

func TestReschedule_LimitIsOnePerLifetime(t *testing.T) {
	r := newPending(t, testNow.AddDate(0, 0, 7))
	policy := reservation.ReschedulePolicy{MinLeadDays: 3, MaxPerLife: 1}

	require.NoError(t, r.Reschedule(testNow, mustSchedule(t, testNow.AddDate(0, 0, 9), "09:00", "11:00"), "first", policy))

	err := r.Reschedule(testNow, mustSchedule(t, testNow.AddDate(0, 0, 11), "09:00", "11:00"), "second", policy)
	assert.ErrorIs(t, err, reservation.ErrRescheduleLimit)
}

func TestReschedule_ThreeDayLeadBoundary(t *testing.T) {
	policy := reservation.ReschedulePolicy{MinLeadDays: 3, MaxPerLife: 1}
	next := mustSchedule(t, testNow.AddDate(0, 0, 30), "09:00", "11:00")

	// Jan 1 now, Jan 4 slot: exactly 3 days of lead, allowed.
	ok := newPending(t, time.Date(2026, time.January, 4, 0, 0, 0, 0, time.UTC))
	assert.NoError(t, ok.Reschedule(testNow, next, "move", policy))

	// Jan 1 now, Jan 3 slot: only 2 days of lead, refused.
	late := newPending(t, time.Date(2026, time.January, 3, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, late.Reschedule(testNow, next, "move", policy), reservation.ErrRescheduleTooLate)
}

func TestReschedule_PostponedKeepsPriorityClearsTimestamp(t *testing.T) {
	r := newApproved(t, testNow.AddDate(0, 0, 10))
	require.NoError(t, r.Postpone(testNow, mustSchedule(t, testNow.AddDate(0, 0, 14), "09:00", "11:00"), "Repair"))

	policy := reservation.ReschedulePolicy{MinLeadDays: 3, MaxPerLife: 1}
	require.NoError(t, r.Reschedule(testNow, mustSchedule(t, testNow.AddDate(0, 0, 20), "09:00", "11:00"), "move", policy))

	assert.Equal(t, reservation.StatusPending, r.Status())
	assert.True(t, r.PostponedPriority())
	assert.Nil(t, r.PostponedAt())
}

func TestExpire_OnlyPastReviewableAndIdempotent(t *testing.T) {
	past := newPending(t, testNow.AddDate(0, 0, -2))
	assert.True(t, past.Expire(testNow))
	assert.Equal(t, reservation.StatusDenied, past.Status())

	// second sweep is a no-op
	assert.False(t, past.Expire(testNow))

	future := newPending(t, testNow.AddDate(0, 0, 2))
	assert.False(t, future.Expire(testNow))
	assert.Equal(t, reservation.StatusPending, future.Status())

	approved := newApproved(t, testNow.AddDate(0, 0, -2))
	assert.False(t, approved.Expire(testNow))
	assert.Equal(t, reservation.StatusApproved, approved.Status())
}

func TestStatusPredicates(t *testing.T) {
	assert.True(t, reservation.StatusDenied.IsTerminal())
	assert.True(t, reservation.StatusCancelled.IsTerminal())
	assert.False(t, reservation.StatusPending.IsTerminal())

	assert.True(t, reservation.StatusPending.IsActive())
	assert.True(t, reservation.StatusApproved.IsActive())
	assert.False(t, reservation.StatusPostponed.IsActive())

	assert.True(t, reservation.StatusPending.IsReviewable())
	assert.True(t, reservation.StatusPostponed.IsReviewable())
	assert.False(t, reservation.StatusApproved.IsReviewable())
}
