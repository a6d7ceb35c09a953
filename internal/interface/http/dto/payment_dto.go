package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
)

type SubmitPaymentRequest struct {
	Rail      string `json:"rail" binding:"required"`
	Reference string `json:"reference"`
}

type CancelInvoiceRequest struct {
	Reason string `json:"reason" binding:"required"`
}

type InvoiceResponse struct {
	ID             uuid.UUID       `json:"id"`
	OrderID        uuid.UUID       `json:"order_id"`
	ClientID       uuid.UUID       `json:"client_id"`
	AmountUSD      decimal.Decimal `json:"amount_usd"`
	Currency       string          `json:"currency"`
	PaymentRail    string          `json:"payment_rail,omitempty"`
	PaymentAddress string          `json:"payment_address,omitempty"`
	TxHash         string          `json:"tx_hash,omitempty"`
	Confirmations  int             `json:"confirmations"`
	Status         string          `json:"status"`
	PaidAt         *time.Time      `json:"paid_at"`
	ConfirmedBy    *uuid.UUID      `json:"confirmed_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

type SubmitPaymentResponse struct {
	Invoice InvoiceResponse `json:"invoice"`
	Order   OrderResponse   `json:"order"`
}

func ToInvoiceResponse(i *entity.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:             i.ID,
		OrderID:        i.OrderID,
		ClientID:       i.ClientID,
		AmountUSD:      i.AmountUSD,
		Currency:       i.Currency,
		PaymentRail:    i.PaymentRail,
		PaymentAddress: i.PaymentAddress,
		TxHash:         i.TxHash,
		Confirmations:  i.Confirmations,
		Status:         string(i.Status),
		PaidAt:         i.PaidAt,
		ConfirmedBy:    i.ConfirmedBy,
		CreatedAt:      i.CreatedAt,
	}
}

func ToInvoiceResponses(items []*entity.Invoice) []InvoiceResponse {
	out := make([]InvoiceResponse, 0, len(items))
	for _, i := range items {
		out = append(out, ToInvoiceResponse(i))
	}
	return out
}
