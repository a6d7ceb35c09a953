package usecasetest

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

// Commission - комиссия платформы в тестах.
var Commission = decimal.NewFromInt(30)

// Actor берёт роль из сохранённого профиля.
func (s *Store) Actor(id uuid.UUID) policy.Actor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return policy.Actor{UserID: id, Role: s.profiles[id].Role}
}

// SeedOrder создаёт заказ клиента в нужном статусе вместе с подходящим счётом.
// Если передан автор, создаётся и назначение.
func (s *Store) SeedOrder(clientID uuid.UUID, status valueobject.OrderStatus, writerID *uuid.UUID) *entity.Order {
	now := time.Now().UTC()
	deadline := now.Add(10 * 24 * time.Hour)
	quote, err := valueobject.NewQuote(valueobject.LevelUndergraduate, 1100, now, deadline, Commission)
	if err != nil {
		panic(err)
	}
	order, err := entity.NewOrder(clientID, entity.OrderDraft{
		Title:         "Эссе по истории",
		Description:   "Эссе о причинах промышленной революции",
		Category:      "history",
		AcademicLevel: string(valueobject.LevelUndergraduate),
		Words:         1100,
		Deadline:      deadline,
	}, quote, now)
	if err != nil {
		panic(err)
	}
	order.Status = status
	order.WriterID = writerID

	invoice := entity.NewInvoice(order, now)
	switch status {
	case valueobject.OrderStatusPendingPayment:
	case valueobject.OrderStatusAvailable:
		invoice.Status = valueobject.InvoiceStatusPending
		invoice.PaymentRail = "bank_transfer"
		invoice.TxHash = "REF-1"
	default:
		invoice.Status = valueobject.InvoiceStatusPaid
		invoice.PaidAt = &now
		invoice.Confirmations = 1
	}

	s.mu.Lock()
	s.orders[order.ID] = *copyOrder(*order)
	s.invoices[invoice.ID] = *invoice
	s.mu.Unlock()

	if writerID != nil {
		a := &entity.Assignment{
			ID:        uuid.New(),
			OrderID:   order.ID,
			WriterID:  *writerID,
			Status:    valueobject.AssignmentStatusActive,
			PayoutUSD: quote.WriterPoolUSD,
			DueAt:     deadline,
			CreatedAt: now,
			UpdatedAt: now,
		}
		switch status {
		case valueobject.OrderStatusCompleted:
			a.Status = valueobject.AssignmentStatusCompleted
		case valueobject.OrderStatusCancelled:
			a.Status = valueobject.AssignmentStatusCancelled
		}
		s.PutAssignment(a)
	}
	return order
}
