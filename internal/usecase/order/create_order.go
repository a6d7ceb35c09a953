package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

type QuoteInput struct {
	AcademicLevel string
	Words         int
	Deadline      time.Time
}

// QuoteUseCase - предварительный расчёт цены без создания заказа.
type QuoteUseCase struct {
	commission decimal.Decimal
}

func NewQuoteUseCase(commissionPct decimal.Decimal) *QuoteUseCase {
	return &QuoteUseCase{commission: commissionPct}
}

func (uc *QuoteUseCase) Execute(ctx context.Context, input QuoteInput) (valueobject.Quote, error) {
	level, err := valueobject.NewAcademicLevel(input.AcademicLevel)
	if err != nil {
		return valueobject.Quote{}, err
	}
	return valueobject.NewQuote(level, input.Words, time.Now().UTC(), input.Deadline, uc.commission)
}

type CreateOrderInput struct {
	Actor policy.Actor
	Draft entity.OrderDraft
	// BudgetUSD - цена, которую видел клиент; если передана, должна совпасть с расчётом.
	BudgetUSD *decimal.Decimal
	Files     []common.Upload
}

type CreateOrderResult struct {
	Order   *entity.Order
	Invoice *entity.Invoice
	Quote   valueobject.Quote
}

type CreateOrderUseCase struct {
	tx          repository.Transactor
	orderRepo   repository.OrderRepository
	invoiceRepo repository.InvoiceRepository
	files       repository.FileStore
	commission  decimal.Decimal
}

func NewCreateOrderUseCase(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	invoiceRepo repository.InvoiceRepository,
	files repository.FileStore,
	commissionPct decimal.Decimal,
) *CreateOrderUseCase {
	return &CreateOrderUseCase{
		tx:          tx,
		orderRepo:   orderRepo,
		invoiceRepo: invoiceRepo,
		files:       files,
		commission:  commissionPct,
	}
}

// Execute создаёт заказ в статусе pending_payment и неоплаченный счёт одной транзакцией.
func (uc *CreateOrderUseCase) Execute(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := policy.RequireRole(input.Actor, valueobject.RoleClient); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	level, err := valueobject.NewAcademicLevel(input.Draft.AcademicLevel)
	if err != nil {
		return nil, err
	}
	quote, err := valueobject.NewQuote(level, input.Draft.Words, now, input.Draft.Deadline, uc.commission)
	if err != nil {
		return nil, err
	}
	if input.BudgetUSD != nil && !input.BudgetUSD.Equal(quote.BudgetUSD) {
		return nil, apperror.ErrPriceMismatch
	}

	order, err := entity.NewOrder(input.Actor.UserID, input.Draft, quote, now)
	if err != nil {
		return nil, err
	}

	paths, err := common.StoreAll(ctx, uc.files, valueobject.BucketOrderAttachments, input.Actor.UserID, input.Files)
	if err != nil {
		return nil, err
	}
	order.Attachments = append(order.Attachments, paths...)

	invoice := entity.NewInvoice(order, now)
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.orderRepo.Create(ctx, order); err != nil {
			return err
		}
		return uc.invoiceRepo.Create(ctx, invoice)
	})
	if err != nil {
		common.Discard(ctx, uc.files, paths)
		return nil, err
	}

	return &CreateOrderResult{Order: order, Invoice: invoice, Quote: quote}, nil
}
