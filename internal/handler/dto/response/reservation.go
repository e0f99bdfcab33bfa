package response

import (
	"github.com/google/uuid"

	"lgu-facilities/internal/usecase/commands"
)

type CreateReservationResponse struct {
	ID           uuid.UUID `json:"id"`
	Status       string    `json:"status"`
	AutoApproved bool      `json:"auto_approved"`
	Reason       string    `json:"reason"`
	EstimatedFee *string   `json:"estimated_fee,omitempty"`
	RiskScore    int       `json:"risk_score"`
	PendingCount int       `json:"pending_count"`
}

func FromCreateResult(r *commands.CreateReservationResult) *CreateReservationResponse {
	resp := &CreateReservationResponse{
		ID:           r.ID,
		Status:       r.Status.String(),
		AutoApproved: r.AutoApproved,
		Reason:       r.Reason,
		RiskScore:    r.RiskScore,
		PendingCount: r.PendingCount,
	}
	if r.EstimatedFee != nil {
		fee := r.EstimatedFee.StringFixed(2)
		resp.EstimatedFee = &fee
	}
	return resp
}

type ExpireSweepResponse struct {
	Expired int `json:"expired"`
}
