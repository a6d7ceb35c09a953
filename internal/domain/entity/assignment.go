package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Assignment struct {
	ID                uuid.UUID
	OrderID           uuid.UUID
	WriterID          uuid.UUID
	BidID             *uuid.UUID
	Status            valueobject.AssignmentStatus
	PayoutUSD         decimal.Decimal
	DueAt             time.Time
	Notes             string
	AssignedBy        *uuid.UUID
	OverdueNotifiedAt *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// AssignmentDetails - назначение с краткой сводкой заказа.
type AssignmentDetails struct {
	Assignment
	OrderTitle    string
	OrderStatus   valueobject.OrderStatus
	OrderDeadline time.Time
	OrderPages    int
}

// NewAssignmentFromBid создаёт назначение по принятой ставке.
// Срок - раньший из дедлайна заказа и времени, которое запросил автор.
func NewAssignmentFromBid(order *Order, bid *Bid, assignedBy uuid.UUID, now time.Time) *Assignment {
	due := now.Add(time.Duration(bid.TimeNeededHours) * time.Hour)
	if order.Deadline.Before(due) {
		due = order.Deadline
	}
	bidID := bid.ID
	return &Assignment{
		ID:         uuid.New(),
		OrderID:    order.ID,
		WriterID:   bid.WriterID,
		BidID:      &bidID,
		Status:     valueobject.AssignmentStatusActive,
		PayoutUSD:  bid.ProposedRate,
		DueAt:      due,
		AssignedBy: &assignedBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func (a *Assignment) IsActive() bool {
	return a.Status == valueobject.AssignmentStatusActive
}

func (a *Assignment) IsOverdue(now time.Time) bool {
	return a.IsActive() && now.After(a.DueAt)
}

func (a *Assignment) finish(status valueobject.AssignmentStatus, now time.Time) error {
	if !a.IsActive() {
		return apperror.Transition("назначение уже в статусе %q", a.Status)
	}
	a.Status = status
	a.UpdatedAt = now
	return nil
}

func (a *Assignment) Complete(now time.Time) error {
	return a.finish(valueobject.AssignmentStatusCompleted, now)
}

func (a *Assignment) Cancel(now time.Time) error {
	return a.finish(valueobject.AssignmentStatusCancelled, now)
}
