package reservation

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusDenied    Status = "denied"
	StatusCancelled Status = "cancelled"
	StatusPostponed Status = "postponed"
	StatusOnHold    Status = "on_hold"
)

func (s Status) String() string {
	return string(s)
}

func NewStatus(s string) (Status, error) {
	status := Status(s)
	if !status.IsValid() {
		return "", ErrInvalidStatus
	}
	return status, nil
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusDenied, StatusCancelled, StatusPostponed, StatusOnHold:
		return true
	default:
		return false
	}
}

// Terminal states accept no further transitions.
func (s Status) IsTerminal() bool {
	return s == StatusDenied || s == StatusCancelled
}

// Active reservations are the ones that occupy a slot and count toward
// booking quotas.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

// Awaiting review: pending plus the pending-like postponed state.
func (s Status) IsReviewable() bool {
	return s == StatusPending || s == StatusPostponed
}
