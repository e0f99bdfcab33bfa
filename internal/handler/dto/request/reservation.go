package request

import (
	"time"

	"github.com/google/uuid"

	"lgu-facilities/internal/usecase/commands"
)

const dateLayout = "2006-01-02"

type CreateReservationRequest struct {
	FacilityID        uuid.UUID `json:"facility_id" binding:"required"`
	Date              string    `json:"date" binding:"required"`
	StartTime         string    `json:"start_time" binding:"required"`
	EndTime           string    `json:"end_time" binding:"required"`
	Purpose           string    `json:"purpose" binding:"required"`
	ExpectedAttendees *int32    `json:"expected_attendees,omitempty"`
	Commercial        bool      `json:"commercial"`
}

func (r CreateReservationRequest) ToInput() (commands.CreateReservationInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return commands.CreateReservationInput{}, err
	}
	return commands.CreateReservationInput{
		FacilityID:        r.FacilityID,
		Date:              date,
		StartTime:         r.StartTime,
		EndTime:           r.EndTime,
		Purpose:           r.Purpose,
		ExpectedAttendees: r.ExpectedAttendees,
		Commercial:        r.Commercial,
	}, nil
}

// ReviewRequest covers approve and deny; the note is optional.
type ReviewRequest struct {
	Note string `json:"note"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ChangeSlotRequest covers modify, postpone and reschedule.
type ChangeSlotRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
	EndTime   string `json:"end_time" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

func (r ChangeSlotRequest) ToInput() (commands.ChangeSlotInput, error) {
	date, err := time.Parse(dateLayout, r.Date)
	if err != nil {
		return commands.ChangeSlotInput{}, err
	}
	return commands.ChangeSlotInput{
		Date:      date,
		StartTime: r.StartTime,
		EndTime:   r.EndTime,
		Reason:    r.Reason,
	}, nil
}
