package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	// FindByIDForUpdate блокирует строку заказа до конца транзакции.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]*entity.Order, int, error)
	// UpdateStatus - compare-and-set: обновляет только если текущий статус равен from.
	UpdateStatus(ctx context.Context, order *entity.Order, from valueobject.OrderStatus) error
	AppendAttachments(ctx context.Context, id uuid.UUID, paths []string) error
	ListStale(ctx context.Context, status valueobject.OrderStatus, updatedBefore time.Time, limit int) ([]*entity.Order, error)
	// ReferencesFile проверяет, что путь принадлежит заказу, его работам или переписке.
	// Вложения сообщений учитываются, только если viewer их отправитель или адресат (nil - без ограничения).
	ReferencesFile(ctx context.Context, orderID uuid.UUID, path string, viewer *uuid.UUID) (bool, error)
}

type OrderFilter struct {
	ClientID      *uuid.UUID
	WriterID      *uuid.UUID
	Statuses      []valueobject.OrderStatus
	Category      string
	AcademicLevel string
	Search        string
	Limit         int
	Offset        int
}

type OrderHistoryRepository interface {
	Add(ctx context.Context, entry *entity.OrderHistory) error
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.OrderHistory, error)
}
