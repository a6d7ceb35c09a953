package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

type ConfirmInvoiceUseCase struct {
	tx          repository.Transactor
	invoiceRepo repository.InvoiceRepository
	notifier    repository.Notifier
}

func NewConfirmInvoiceUseCase(tx repository.Transactor, invoiceRepo repository.InvoiceRepository, notifier repository.Notifier) *ConfirmInvoiceUseCase {
	return &ConfirmInvoiceUseCase{tx: tx, invoiceRepo: invoiceRepo, notifier: notifier}
}

// Execute идемпотентен: для уже оплаченного счёта возвращается сохранённая запись.
func (uc *ConfirmInvoiceUseCase) Execute(ctx context.Context, actor policy.Actor, invoiceID uuid.UUID) (*entity.Invoice, error) {
	if err := policy.RequireRole(actor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		invoice *entity.Invoice
		changed bool
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = uc.invoiceRepo.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		from := invoice.Status
		if changed, err = invoice.Confirm(actor.UserID, time.Now().UTC()); err != nil || !changed {
			return err
		}
		return uc.invoiceRepo.Update(ctx, invoice, from)
	})
	if err != nil {
		return nil, err
	}
	if !changed {
		return invoice, nil
	}

	uc.notifier.NotifyUser(ctx, invoice.ClientID, common.EventInvoiceConfirmed, map[string]any{
		"invoice_id": invoice.ID,
		"order_id":   invoice.OrderID,
	})
	return invoice, nil
}

// CancelInvoiceUseCase - администратор отклоняет неподтверждённую оплату.
// Если автор ещё не назначен, заказ возвращается в ожидание оплаты.
type CancelInvoiceUseCase struct {
	tx           repository.Transactor
	invoiceRepo  repository.InvoiceRepository
	orderRepo    repository.OrderRepository
	transitioner *common.Transitioner
	notifier     repository.Notifier
}

func NewCancelInvoiceUseCase(
	tx repository.Transactor,
	invoiceRepo repository.InvoiceRepository,
	orderRepo repository.OrderRepository,
	transitioner *common.Transitioner,
	notifier repository.Notifier,
) *CancelInvoiceUseCase {
	return &CancelInvoiceUseCase{
		tx:           tx,
		invoiceRepo:  invoiceRepo,
		orderRepo:    orderRepo,
		transitioner: transitioner,
		notifier:     notifier,
	}
}

func (uc *CancelInvoiceUseCase) Execute(ctx context.Context, actor policy.Actor, invoiceID uuid.UUID, reason string) (*entity.Invoice, error) {
	if err := policy.RequireRole(actor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}

	var (
		invoice    *entity.Invoice
		order      *entity.Order
		orderMoved bool
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = uc.invoiceRepo.FindByID(ctx, invoiceID)
		if err != nil {
			return err
		}
		order, err = uc.orderRepo.FindByIDForUpdate(ctx, invoice.OrderID)
		if err != nil {
			return err
		}
		if invoice, err = uc.invoiceRepo.FindByIDForUpdate(ctx, invoiceID); err != nil {
			return err
		}

		from := invoice.Status
		if err := invoice.Cancel(time.Now().UTC()); err != nil {
			return err
		}
		if err := uc.invoiceRepo.Update(ctx, invoice, from); err != nil {
			return err
		}

		if order.Status == valueobject.OrderStatusAvailable {
			if err := uc.transitioner.Apply(ctx, order, valueobject.EventPaymentRejected, actor, reason); err != nil {
				return err
			}
			orderMoved = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.NotifyUser(ctx, invoice.ClientID, common.EventInvoiceCancelled, map[string]any{
		"invoice_id": invoice.ID,
		"order_id":   invoice.OrderID,
		"reason":     reason,
	})
	if orderMoved {
		common.NotifyStatusChanged(ctx, uc.notifier, order, valueobject.OrderStatusAvailable)
	}
	return invoice, nil
}

type RefundInvoiceUseCase struct {
	tx          repository.Transactor
	invoiceRepo repository.InvoiceRepository
	orderRepo   repository.OrderRepository
}

func NewRefundInvoiceUseCase(tx repository.Transactor, invoiceRepo repository.InvoiceRepository, orderRepo repository.OrderRepository) *RefundInvoiceUseCase {
	return &RefundInvoiceUseCase{tx: tx, invoiceRepo: invoiceRepo, orderRepo: orderRepo}
}

// Execute: вернуть деньги можно только по отменённому заказу.
func (uc *RefundInvoiceUseCase) Execute(ctx context.Context, actor policy.Actor, invoiceID uuid.UUID) (*entity.Invoice, error) {
	if err := policy.RequireRole(actor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	var invoice *entity.Invoice
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		invoice, err = uc.invoiceRepo.FindByIDForUpdate(ctx, invoiceID)
		if err != nil {
			return err
		}
		order, err := uc.orderRepo.FindByIDForUpdate(ctx, invoice.OrderID)
		if err != nil {
			return err
		}
		if order.Status != valueobject.OrderStatusCancelled {
			return apperror.Transition("возврат возможен только по отменённому заказу")
		}
		from := invoice.Status
		if err := invoice.Refund(time.Now().UTC()); err != nil {
			return err
		}
		return uc.invoiceRepo.Update(ctx, invoice, from)
	})
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

type ListInvoicesInput struct {
	Actor   policy.Actor
	OrderID *uuid.UUID
	Status  string
	Limit   int
	Offset  int
}

type ListInvoicesUseCase struct {
	invoiceRepo repository.InvoiceRepository
}

func NewListInvoicesUseCase(invoiceRepo repository.InvoiceRepository) *ListInvoicesUseCase {
	return &ListInvoicesUseCase{invoiceRepo: invoiceRepo}
}

func (uc *ListInvoicesUseCase) Execute(ctx context.Context, input ListInvoicesInput) ([]*entity.Invoice, int, error) {
	filter := repository.InvoiceFilter{OrderID: input.OrderID, Limit: input.Limit, Offset: input.Offset}
	if input.Status != "" {
		status := valueobject.InvoiceStatus(input.Status)
		if !status.IsValid() {
			return nil, 0, apperror.Validation("некорректный статус счёта")
		}
		filter.Status = status
	}
	switch input.Actor.Role {
	case valueobject.RoleAdmin:
	case valueobject.RoleClient:
		filter.ClientID = &input.Actor.UserID
	default:
		return nil, 0, apperror.ErrForbidden
	}
	return uc.invoiceRepo.List(ctx, filter)
}
