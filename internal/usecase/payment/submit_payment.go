package payment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	rail "github.com/ignatzorin/paperdesk-backend/internal/payment"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

// Rails - справочник способов оплаты.
type Rails interface {
	List() []rail.Rail
	Get(id string) (rail.Rail, error)
}

type ListRailsUseCase struct {
	rails Rails
}

func NewListRailsUseCase(rails Rails) *ListRailsUseCase {
	return &ListRailsUseCase{rails: rails}
}

func (uc *ListRailsUseCase) Execute(ctx context.Context) []rail.Rail {
	return uc.rails.List()
}

type SubmitPaymentInput struct {
	Actor     policy.Actor
	OrderID   uuid.UUID
	Rail      string
	Reference string
}

type SubmitPaymentResult struct {
	Invoice *entity.Invoice
	Order   *entity.Order
}

// SubmitPaymentUseCase - клиент сообщает об оплате. Подтверждает её администратор,
// но заказ сразу становится доступен авторам.
type SubmitPaymentUseCase struct {
	tx           repository.Transactor
	orderRepo    repository.OrderRepository
	invoiceRepo  repository.InvoiceRepository
	transitioner *common.Transitioner
	rails        Rails
	notifier     repository.Notifier
}

func NewSubmitPaymentUseCase(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
	transitioner *common.Transitioner,
	rails Rails,
	notifier repository.Notifier,
) *SubmitPaymentUseCase {
	return &SubmitPaymentUseCase{
		tx:           tx,
		orderRepo:    orderRepo,
		invoiceRepo:  invoiceRepo,
		transitioner: transitioner,
		rails:        rails,
		notifier:     notifier,
	}
}

func (uc *SubmitPaymentUseCase) Execute(ctx context.Context, input SubmitPaymentInput) (*SubmitPaymentResult, error) {
	selected, err := uc.rails.Get(input.Rail)
	if err != nil {
		return nil, err
	}
	reference, err := rail.ValidateReference(selected, input.Reference)
	if err != nil {
		return nil, err
	}

	res := &SubmitPaymentResult{}
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		order, err := uc.orderRepo.FindByIDForUpdate(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := policy.RequireViewOrder(input.Actor, order); err != nil {
			return err
		}
		if !policy.IsOrderOwner(input.Actor, order) {
			return apperror.ErrForbidden
		}
		if order.Status != valueobject.OrderStatusPendingPayment {
			return apperror.Transition("заказ не ожидает оплаты (статус %q)", order.Status)
		}

		now := time.Now().UTC()
		invoice, err := uc.invoiceRepo.FindOpenByOrder(ctx, order.ID)
		switch {
		case apperror.IsNotFound(err):
			// предыдущий счёт отменён: выставляем новый сразу с заявленной оплатой
			invoice = entity.NewInvoice(order, now)
			if err := invoice.Claim(selected.ID, selected.Address, reference, now); err != nil {
				return err
			}
			if err := uc.invoiceRepo.Create(ctx, invoice); err != nil {
				return err
			}
		case err != nil:
			return err
		default:
			from := invoice.Status
			if err := invoice.Claim(selected.ID, selected.Address, reference, now); err != nil {
				return err
			}
			if err := uc.invoiceRepo.Update(ctx, invoice, from); err != nil {
				return err
			}
		}

		if err := uc.transitioner.Apply(ctx, order, valueobject.EventPaymentSubmitted, input.Actor, selected.ID); err != nil {
			return err
		}
		res.Invoice, res.Order = invoice, order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.NotifyAdmins(ctx, common.EventInvoicePending, map[string]any{
		"invoice_id": res.Invoice.ID,
		"order_id":   res.Order.ID,
		"rail":       res.Invoice.PaymentRail,
		"amount_usd": res.Invoice.AmountUSD,
	})
	common.NotifyStatusChanged(ctx, uc.notifier, res.Order, valueobject.OrderStatusPendingPayment)
	return res, nil
}
