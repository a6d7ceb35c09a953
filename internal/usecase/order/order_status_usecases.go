package order

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/logger"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

type CancelOrderUseCase struct {
	tx           repository.Transactor
	orderRepo    repository.OrderRepository
	transitioner *common.Transitioner
	cascade      *common.Cascade
	notifier     repository.Notifier
}

func NewCancelOrderUseCase(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	transitioner *common.Transitioner,
	cascade *common.Cascade,
	notifier repository.Notifier,
) *CancelOrderUseCase {
	return &CancelOrderUseCase{
		tx:           tx,
		orderRepo:    orderRepo,
		transitioner: transitioner,
		cascade:      cascade,
		notifier:     notifier,
	}
}

// Execute: клиент отменяет свой заказ, пока автор не назначен; администратор - в любом допустимом статусе.
func (uc *CancelOrderUseCase) Execute(ctx context.Context, actor policy.Actor, orderID uuid.UUID, reason string) (*entity.Order, error) {
	var (
		order   *entity.Order
		from    valueobject.OrderStatus
		closed  *common.CancelledResult
		settled *entity.Dispute
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = uc.orderRepo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := policy.RequireViewOrder(actor, order); err != nil {
			return err
		}
		if !actor.IsAdmin() {
			if !policy.IsOrderOwner(actor, order) {
				return apperror.ErrForbidden
			}
			if order.Status != valueobject.OrderStatusPendingPayment && order.Status != valueobject.OrderStatusAvailable {
				return apperror.Transition("клиент может отменить заказ только до назначения автора")
			}
		}

		from = order.Status
		reason = strings.TrimSpace(reason)
		if err := uc.transitioner.Apply(ctx, order, valueobject.EventCancel, actor, reason); err != nil {
			return err
		}
		if from == valueobject.OrderStatusDisputed {
			if reason == "" {
				reason = "заказ отменён администратором"
			}
			if settled, err = uc.cascade.SettleDispute(ctx, order, actor, valueobject.OutcomeCancel, reason); err != nil {
				return err
			}
		}
		closed, err = uc.cascade.OrderCancelled(ctx, order, actor)
		return err
	})
	if err != nil {
		return nil, err
	}

	common.NotifyStatusChanged(ctx, uc.notifier, order, from)
	notifyRejectedBids(ctx, uc.notifier, closed.RejectedBids)
	notifyDisputeSettled(ctx, uc.notifier, order, settled)
	return order, nil
}

func notifyDisputeSettled(ctx context.Context, n repository.Notifier, order *entity.Order, d *entity.Dispute) {
	if d == nil {
		return
	}
	data := map[string]any{"dispute_id": d.ID, "order_id": d.OrderID, "outcome": d.Outcome}
	n.NotifyUser(ctx, order.ClientID, common.EventDisputeResolved, data)
	if order.WriterID != nil {
		n.NotifyUser(ctx, *order.WriterID, common.EventDisputeResolved, data)
	}
}

func notifyRejectedBids(ctx context.Context, n repository.Notifier, bids []*entity.Bid) {
	for _, b := range bids {
		n.NotifyUser(ctx, b.WriterID, common.EventBidRejected, map[string]any{
			"bid_id":   b.ID,
			"order_id": b.OrderID,
		})
	}
}

type OverrideStatusInput struct {
	Actor   policy.Actor
	OrderID uuid.UUID
	Target  string
	Reason  string
}

// OverrideStatusUseCase - ручная смена статуса администратором.
type OverrideStatusUseCase struct {
	tx           repository.Transactor
	orderRepo    repository.OrderRepository
	transitioner *common.Transitioner
	cascade      *common.Cascade
	notifier     repository.Notifier
}

func NewOverrideStatusUseCase(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	transitioner *common.Transitioner,
	cascade *common.Cascade,
	notifier repository.Notifier,
) *OverrideStatusUseCase {
	return &OverrideStatusUseCase{
		tx:           tx,
		orderRepo:    orderRepo,
		transitioner: transitioner,
		cascade:      cascade,
		notifier:     notifier,
	}
}

func (uc *OverrideStatusUseCase) Execute(ctx context.Context, input OverrideStatusInput) (*entity.Order, error) {
	if err := policy.RequireRole(input.Actor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	target, err := valueobject.NewOrderStatus(input.Target)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, apperror.Validation("укажите причину смены статуса")
	}
	if target == valueobject.OrderStatusDisputed {
		return nil, apperror.Transition("спор открывается только участником заказа")
	}

	var (
		order    *entity.Order
		from     valueobject.OrderStatus
		released *entity.Assignment
		settled  *entity.Dispute
	)
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = uc.orderRepo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		from = order.Status
		if err := order.Status.CanOverrideTo(target); err != nil {
			return err
		}

		// writer_id должен соответствовать целевому статусу до записи статуса
		switch {
		case target == valueobject.OrderStatusPendingPayment || target == valueobject.OrderStatusAvailable:
			if released, err = uc.cascade.ReleaseWriter(ctx, order); err != nil {
				return err
			}
		case target.HasWriter() || target == valueobject.OrderStatusCompleted:
			if err := uc.cascade.RequireAssignment(ctx, order); err != nil {
				return err
			}
		}

		if err := uc.transitioner.Override(ctx, order, target, input.Actor, reason); err != nil {
			return err
		}
		if from == valueobject.OrderStatusDisputed {
			if settled, err = uc.cascade.SettleDispute(ctx, order, input.Actor, overrideOutcome(target), reason); err != nil {
				return err
			}
		}
		switch target {
		case valueobject.OrderStatusCancelled:
			_, err = uc.cascade.OrderCancelled(ctx, order, input.Actor)
		case valueobject.OrderStatusCompleted:
			_, err = uc.cascade.OrderCompleted(ctx, order)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Log.WithFields(logrus.Fields{
		"order_id": order.ID,
		"admin_id": input.Actor.UserID,
		"from":     from,
		"to":       order.Status,
	}).Warn("order: статус изменён вручную")

	common.NotifyStatusChanged(ctx, uc.notifier, order, from)
	if released != nil {
		uc.notifier.NotifyUser(ctx, released.WriterID, common.EventOrderStatusChanged, map[string]any{
			"order_id": order.ID,
			"from":     from,
			"to":       order.Status,
		})
	}
	notifyDisputeSettled(ctx, uc.notifier, order, settled)
	return order, nil
}

// overrideOutcome - чем считать спор, если заказ вывели из disputed вручную.
func overrideOutcome(target valueobject.OrderStatus) valueobject.DisputeOutcome {
	switch target {
	case valueobject.OrderStatusCancelled:
		return valueobject.OutcomeCancel
	case valueobject.OrderStatusCompleted:
		return valueobject.OutcomeComplete
	}
	return valueobject.OutcomeResume
}
