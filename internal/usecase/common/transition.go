package common

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

// Transitioner - единственная точка записи статуса заказа.
// Каждое изменение проверяется таблицей переходов, сохраняется через compare-and-set
// и попадает в историю заказа.
type Transitioner struct {
	orders  repository.OrderRepository
	history repository.OrderHistoryRepository
}

func NewTransitioner(orders repository.OrderRepository, history repository.OrderHistoryRepository) *Transitioner {
	return &Transitioner{orders: orders, history: history}
}

// Apply переводит заказ по событию.
func (t *Transitioner) Apply(ctx context.Context, order *entity.Order, event valueobject.OrderEvent, actor policy.Actor, note string) error {
	from := order.Status
	if err := order.Apply(event, now()); err != nil {
		return err
	}
	return t.persist(ctx, order, from, event, actor, note)
}

// AssignWriter переводит заказ в assigned вместе с привязкой автора.
func (t *Transitioner) AssignWriter(ctx context.Context, order *entity.Order, writerID uuid.UUID, actor policy.Actor) error {
	from := order.Status
	if err := order.AssignWriter(writerID, now()); err != nil {
		return err
	}
	return t.persist(ctx, order, from, valueobject.EventWriterAssigned, actor, "")
}

// Resume возвращает заказ из спора в статус до спора.
func (t *Transitioner) Resume(ctx context.Context, order *entity.Order, previous valueobject.OrderStatus, actor policy.Actor, note string) error {
	from := order.Status
	if err := order.ResumeFrom(previous, now()); err != nil {
		return err
	}
	return t.persist(ctx, order, from, valueobject.EventDisputeClosed, actor, note)
}

// Override - ручная установка статуса администратором, причина обязательна.
func (t *Transitioner) Override(ctx context.Context, order *entity.Order, target valueobject.OrderStatus, actor policy.Actor, reason string) error {
	from := order.Status
	if err := order.Override(target, now()); err != nil {
		return err
	}
	return t.persist(ctx, order, from, valueobject.EventAdminOverride, actor, reason)
}

func (t *Transitioner) persist(ctx context.Context, order *entity.Order, from valueobject.OrderStatus, event valueobject.OrderEvent, actor policy.Actor, note string) error {
	if err := t.orders.UpdateStatus(ctx, order, from); err != nil {
		return err
	}
	return t.history.Add(ctx, &entity.OrderHistory{
		ID:         uuid.New(),
		OrderID:    order.ID,
		ActorID:    actor.ID(),
		Event:      event,
		FromStatus: from,
		ToStatus:   order.Status,
		Note:       note,
		CreatedAt:  order.UpdatedAt,
	})
}

func now() time.Time {
	return time.Now().UTC()
}
