package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

// CreateOrderRequest - JSON-вариант формы заказа. Multipart-форма использует те же имена полей.
type CreateOrderRequest struct {
	Title         string  `json:"title" form:"title" binding:"required"`
	Description   string  `json:"description" form:"description" binding:"required"`
	Category      string  `json:"category" form:"category" binding:"required"`
	AcademicLevel string  `json:"academic_level" form:"academic_level" binding:"required"`
	Words         int     `json:"words" form:"words" binding:"required,gt=0"`
	Deadline      string  `json:"deadline" form:"deadline" binding:"required"`
	BudgetUSD     *string `json:"budget_usd" form:"budget_usd"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason"`
}

type OverrideStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type OrderResponse struct {
	ID            uuid.UUID       `json:"id"`
	ClientID      uuid.UUID       `json:"client_id"`
	WriterID      *uuid.UUID      `json:"writer_id"`
	Title         string          `json:"title"`
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	AcademicLevel string          `json:"academic_level"`
	Words         int             `json:"words"`
	Pages         int             `json:"pages"`
	Deadline      time.Time       `json:"deadline"`
	BudgetUSD     decimal.Decimal `json:"budget_usd"`
	WriterPoolUSD decimal.Decimal `json:"writer_pool_usd"`
	Status        string          `json:"status"`
	Attachments   []string        `json:"attachments"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type CreateOrderResponse struct {
	Order   OrderResponse   `json:"order"`
	Invoice InvoiceResponse `json:"invoice"`
}

type OrderHistoryResponse struct {
	ID         uuid.UUID  `json:"id"`
	ActorID    *uuid.UUID `json:"actor_id"`
	Event      string     `json:"event"`
	FromStatus string     `json:"from_status"`
	ToStatus   string     `json:"to_status"`
	Note       string     `json:"note,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

type QuoteResponse struct {
	Pages         int             `json:"pages"`
	BaseRate      decimal.Decimal `json:"base_rate_usd"`
	Multiplier    decimal.Decimal `json:"urgency_multiplier"`
	BudgetUSD     decimal.Decimal `json:"budget_usd"`
	CommissionPct decimal.Decimal `json:"commission_percent"`
	WriterPoolUSD decimal.Decimal `json:"writer_pool_usd"`
}

// ParseDeadline принимает RFC3339 или дату YYYY-MM-DD (конец дня по UTC).
func ParseDeadline(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	d, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(24*time.Hour - time.Second).UTC(), nil
}

// ParseMoney разбирает необязательную сумму; пустая строка - nil.
func ParseMoney(v *string) (*decimal.Decimal, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(*v)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r CreateOrderRequest) Draft() (entity.OrderDraft, error) {
	deadline, err := ParseDeadline(r.Deadline)
	if err != nil {
		return entity.OrderDraft{}, err
	}
	return entity.OrderDraft{
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		AcademicLevel: r.AcademicLevel,
		Words:         r.Words,
		Deadline:      deadline,
	}, nil
}

func ToOrderResponse(o *entity.Order) OrderResponse {
	attachments := o.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return OrderResponse{
		ID:            o.ID,
		ClientID:      o.ClientID,
		WriterID:      o.WriterID,
		Title:         o.Title,
		Description:   o.Description,
		Category:      o.Category,
		AcademicLevel: string(o.AcademicLevel),
		Words:         o.Words,
		Pages:         o.Pages,
		Deadline:      o.Deadline,
		BudgetUSD:     o.BudgetUSD,
		WriterPoolUSD: o.WriterPoolUSD,
		Status:        string(o.Status),
		Attachments:   attachments,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

func ToOrderResponses(orders []*entity.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		out = append(out, ToOrderResponse(o))
	}
	return out
}

func ToOrderHistoryResponses(items []*entity.OrderHistory) []OrderHistoryResponse {
	out := make([]OrderHistoryResponse, 0, len(items))
	for _, h := range items {
		out = append(out, OrderHistoryResponse{
			ID:         h.ID,
			ActorID:    h.ActorID,
			Event:      string(h.Event),
			FromStatus: string(h.FromStatus),
			ToStatus:   string(h.ToStatus),
			Note:       h.Note,
			CreatedAt:  h.CreatedAt,
		})
	}
	return out
}

func ToQuoteResponse(q valueobject.Quote) QuoteResponse {
	return QuoteResponse{
		Pages:         q.Pages,
		BaseRate:      q.BaseRate,
		Multiplier:    q.Multiplier,
		BudgetUSD:     q.BudgetUSD,
		CommissionPct: q.CommissionPct,
		WriterPoolUSD: q.WriterPoolUSD,
	}
}
