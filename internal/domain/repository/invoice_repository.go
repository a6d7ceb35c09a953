package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error)
	// FindOpenByOrder - последний счёт заказа в статусе unpaid, pending или paid.
	FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, filter InvoiceFilter) ([]*entity.Invoice, int, error)
	// Update - compare-and-set по предыдущему статусу.
	Update(ctx context.Context, inv *entity.Invoice, from valueobject.InvoiceStatus) error
}

type InvoiceFilter struct {
	OrderID  *uuid.UUID
	ClientID *uuid.UUID
	Status   valueobject.InvoiceStatus
	Limit    int
	Offset   int
}

type MessageRepository interface {
	Create(ctx context.Context, m *entity.Message) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error)
	// ListByOrder; если viewer задан, возвращаются только его входящие и исходящие.
	ListByOrder(ctx context.Context, orderID uuid.UUID, viewer *uuid.UUID, limit, offset int) ([]*entity.Message, error)
	// MarkRead меняет is_read только с false на true.
	MarkRead(ctx context.Context, m *entity.Message) (bool, error)
	CountUnread(ctx context.Context, userID uuid.UUID, includeAdminInbox bool) (int, error)
}

type DisputeRepository interface {
	Create(ctx context.Context, d *entity.Dispute) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Dispute, error)
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Dispute, error)
	List(ctx context.Context, filter DisputeFilter) ([]*entity.Dispute, int, error)
	Update(ctx context.Context, d *entity.Dispute, from valueobject.DisputeStatus) error
}

type DisputeFilter struct {
	// ParticipantID ограничивает выборку спорами по заказам пользователя.
	ParticipantID *uuid.UUID
	Status        valueobject.DisputeStatus
	Limit         int
	Offset        int
}
