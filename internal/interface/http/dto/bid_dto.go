package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
)

type CreateBidRequest struct {
	ProposedRate    string `json:"proposed_rate" binding:"required"`
	PricePerPage    string `json:"price_per_page" binding:"required"`
	TimeNeededHours int    `json:"time_needed_hours" binding:"required,gt=0"`
	CoverLetter     string `json:"cover_letter"`
}

type BidResponse struct {
	ID              uuid.UUID       `json:"id"`
	OrderID         uuid.UUID       `json:"order_id"`
	WriterID        uuid.UUID       `json:"writer_id"`
	ProposedRate    decimal.Decimal `json:"proposed_rate"`
	PricePerPage    decimal.Decimal `json:"price_per_page"`
	TimeNeededHours int             `json:"time_needed_hours"`
	CoverLetter     string          `json:"cover_letter"`
	Status          string          `json:"status"`
	ReviewedBy      *uuid.UUID      `json:"reviewed_by"`
	ReviewedAt      *time.Time      `json:"reviewed_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

type BidDetailsResponse struct {
	BidResponse
	OrderTitle         string          `json:"order_title"`
	OrderStatus        string          `json:"order_status"`
	OrderPages         int             `json:"order_pages"`
	WriterName         string          `json:"writer_name"`
	WriterRating       decimal.Decimal `json:"writer_rating"`
	WriterVerification string          `json:"writer_verification"`
	WriterCompleted    int             `json:"writer_completed_orders"`
}

type AcceptBidResponse struct {
	Bid          BidResponse        `json:"bid"`
	Assignment   AssignmentResponse `json:"assignment"`
	Order        OrderResponse      `json:"order"`
	RejectedBids []BidResponse      `json:"rejected_bids"`
}

func ToBidResponse(b *entity.Bid) BidResponse {
	return BidResponse{
		ID:              b.ID,
		OrderID:         b.OrderID,
		WriterID:        b.WriterID,
		ProposedRate:    b.ProposedRate,
		PricePerPage:    b.PricePerPage,
		TimeNeededHours: b.TimeNeededHours,
		CoverLetter:     b.CoverLetter,
		Status:          string(b.Status),
		ReviewedBy:      b.ReviewedBy,
		ReviewedAt:      b.ReviewedAt,
		CreatedAt:       b.CreatedAt,
	}
}

func ToBidResponses(bids []*entity.Bid) []BidResponse {
	out := make([]BidResponse, 0, len(bids))
	for _, b := range bids {
		out = append(out, ToBidResponse(b))
	}
	return out
}

func ToBidDetailsResponses(items []*entity.BidDetails) []BidDetailsResponse {
	out := make([]BidDetailsResponse, 0, len(items))
	for _, d := range items {
		out = append(out, BidDetailsResponse{
			BidResponse:        ToBidResponse(&d.Bid),
			OrderTitle:         d.OrderTitle,
			OrderStatus:        string(d.OrderStatus),
			OrderPages:         d.OrderPages,
			WriterName:         d.WriterName,
			WriterRating:       d.WriterRating,
			WriterVerification: string(d.WriterVerification),
			WriterCompleted:    d.WriterCompleted,
		})
	}
	return out
}
