package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
)

type OpenDisputeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type ResolveDisputeRequest struct {
	Outcome    string `json:"outcome" binding:"required"`
	Resolution string `json:"resolution" binding:"required"`
}

type DisputeResponse struct {
	ID             uuid.UUID  `json:"id"`
	OrderID        uuid.UUID  `json:"order_id"`
	OpenedByID     uuid.UUID  `json:"opened_by"`
	Reason         string     `json:"reason"`
	Status         string     `json:"status"`
	PreviousStatus string     `json:"previous_order_status"`
	Outcome        string     `json:"outcome,omitempty"`
	Resolution     string     `json:"resolution,omitempty"`
	ResolvedByID   *uuid.UUID `json:"resolved_by"`
	ResolvedAt     *time.Time `json:"resolved_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ResolveDisputeResponse struct {
	Dispute DisputeResponse `json:"dispute"`
	Order   OrderResponse   `json:"order"`
}

func ToDisputeResponse(d *entity.Dispute) DisputeResponse {
	return DisputeResponse{
		ID:             d.ID,
		OrderID:        d.OrderID,
		OpenedByID:     d.OpenedByID,
		Reason:         d.Reason,
		Status:         string(d.Status),
		PreviousStatus: string(d.PreviousStatus),
		Outcome:        string(d.Outcome),
		Resolution:     d.Resolution,
		ResolvedByID:   d.ResolvedByID,
		ResolvedAt:     d.ResolvedAt,
		CreatedAt:      d.CreatedAt,
	}
}

func ToDisputeResponses(items []*entity.Dispute) []DisputeResponse {
	out := make([]DisputeResponse, 0, len(items))
	for _, d := range items {
		out = append(out, ToDisputeResponse(d))
	}
	return out
}
