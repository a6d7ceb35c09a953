package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
)

type ReviewSubmissionRequest struct {
	Decision string `json:"decision" binding:"required"`
	Note     string `json:"note"`
	Rating   *int   `json:"rating"`
}

type AssignmentResponse struct {
	ID        uuid.UUID       `json:"id"`
	OrderID   uuid.UUID       `json:"order_id"`
	WriterID  uuid.UUID       `json:"writer_id"`
	BidID     *uuid.UUID      `json:"bid_id"`
	Status    string          `json:"status"`
	PayoutUSD decimal.Decimal `json:"payout_usd"`
	DueAt     time.Time       `json:"due_at"`
	Notes     string          `json:"notes,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

type AssignmentDetailsResponse struct {
	AssignmentResponse
	OrderTitle    string    `json:"order_title"`
	OrderStatus   string    `json:"order_status"`
	OrderDeadline time.Time `json:"order_deadline"`
	OrderPages    int       `json:"order_pages"`
}

type SubmissionResponse struct {
	ID           uuid.UUID  `json:"id"`
	OrderID      uuid.UUID  `json:"order_id"`
	AssignmentID uuid.UUID  `json:"assignment_id"`
	WriterID     uuid.UUID  `json:"writer_id"`
	Version      int        `json:"version"`
	Files        []string   `json:"files"`
	Message      string     `json:"message"`
	Status       string     `json:"status"`
	IsFinal      bool       `json:"is_final"`
	ReviewNote   string     `json:"review_note,omitempty"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by"`
	ReviewedAt   *time.Time `json:"reviewed_at"`
	CreatedAt    time.Time  `json:"created_at"`
}

type SubmissionWithOrderResponse struct {
	Submission SubmissionResponse `json:"submission"`
	Order      OrderResponse      `json:"order"`
}

func ToAssignmentResponse(a *entity.Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:        a.ID,
		OrderID:   a.OrderID,
		WriterID:  a.WriterID,
		BidID:     a.BidID,
		Status:    string(a.Status),
		PayoutUSD: a.PayoutUSD,
		DueAt:     a.DueAt,
		Notes:     a.Notes,
		CreatedAt: a.CreatedAt,
	}
}

func ToAssignmentDetailsResponses(items []*entity.AssignmentDetails) []AssignmentDetailsResponse {
	out := make([]AssignmentDetailsResponse, 0, len(items))
	for _, d := range items {
		out = append(out, AssignmentDetailsResponse{
			AssignmentResponse: ToAssignmentResponse(&d.Assignment),
			OrderTitle:         d.OrderTitle,
			OrderStatus:        string(d.OrderStatus),
			OrderDeadline:      d.OrderDeadline,
			OrderPages:         d.OrderPages,
		})
	}
	return out
}

func ToSubmissionResponse(s *entity.Submission) SubmissionResponse {
	files := s.Files
	if files == nil {
		files = []string{}
	}
	return SubmissionResponse{
		ID:           s.ID,
		OrderID:      s.OrderID,
		AssignmentID: s.AssignmentID,
		WriterID:     s.WriterID,
		Version:      s.Version,
		Files:        files,
		Message:      s.Message,
		Status:       string(s.Status),
		IsFinal:      s.IsFinal,
		ReviewNote:   s.ReviewNote,
		ReviewedBy:   s.ReviewedBy,
		ReviewedAt:   s.ReviewedAt,
		CreatedAt:    s.CreatedAt,
	}
}

func ToSubmissionResponses(items []*entity.Submission) []SubmissionResponse {
	out := make([]SubmissionResponse, 0, len(items))
	for _, s := range items {
		out = append(out, ToSubmissionResponse(s))
	}
	return out
}
