package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Dispute struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	OpenedByID     uuid.UUID
	Reason         string
	Status         valueobject.DisputeStatus
	PreviousStatus valueobject.OrderStatus
	Outcome        valueobject.DisputeOutcome
	Resolution     string
	ResolvedByID   *uuid.UUID
	ResolvedAt     *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func NewDispute(order *Order, openedBy uuid.UUID, reason string, now time.Time) (*Dispute, error) {
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n < 10 || n > 5000 {
		return nil, apperror.Validation("причина спора должна быть от 10 до 5000 символов")
	}
	return &Dispute{
		ID:             uuid.New(),
		OrderID:        order.ID,
		OpenedByID:     openedBy,
		Reason:         reason,
		Status:         valueobject.DisputeStatusOpen,
		PreviousStatus: order.Status,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (d *Dispute) StartReview(now time.Time) error {
	if d.Status != valueobject.DisputeStatusOpen {
		return apperror.Transition("спор уже в статусе %q", d.Status)
	}
	d.Status = valueobject.DisputeStatusInReview
	d.UpdatedAt = now
	return nil
}

func (d *Dispute) Resolve(outcome valueobject.DisputeOutcome, resolution string, admin uuid.UUID, now time.Time) error {
	if !d.Status.IsActive() {
		return apperror.Transition("спор уже закрыт (%q)", d.Status)
	}
	resolution = strings.TrimSpace(resolution)
	if resolution == "" {
		return apperror.Validation("нужно описать решение по спору")
	}
	d.Status = valueobject.DisputeStatusResolved
	d.Outcome = outcome
	d.Resolution = resolution
	d.ResolvedByID = &admin
	d.ResolvedAt = &now
	d.UpdatedAt = now
	return nil
}

// Close закрывает спор без решения: заказ возвращается в прежний статус.
func (d *Dispute) Close(by uuid.UUID, now time.Time) error {
	if !d.Status.IsActive() {
		return apperror.Transition("спор уже закрыт (%q)", d.Status)
	}
	d.Status = valueobject.DisputeStatusClosed
	d.Outcome = valueobject.OutcomeResume
	d.ResolvedByID = &by
	d.ResolvedAt = &now
	d.UpdatedAt = now
	return nil
}
