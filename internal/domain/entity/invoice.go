package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Invoice struct {
	ID             uuid.UUID
	OrderID        uuid.UUID
	ClientID       uuid.UUID
	AmountUSD      decimal.Decimal
	Currency       string
	PaymentRail    string
	PaymentAddress string
	TxHash         string
	Confirmations  int
	Status         valueobject.InvoiceStatus
	PaidAt         *time.Time
	ConfirmedBy    *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewInvoice выставляет неоплаченный счёт на бюджет заказа.
func NewInvoice(order *Order, now time.Time) *Invoice {
	return &Invoice{
		ID:        uuid.New(),
		OrderID:   order.ID,
		ClientID:  order.ClientID,
		AmountUSD: order.BudgetUSD,
		Currency:  "USD",
		Status:    valueobject.InvoiceStatusUnpaid,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Claim - клиент сообщил об оплате, подтверждения пока нет.
func (i *Invoice) Claim(rail, address, reference string, now time.Time) error {
	if i.Status != valueobject.InvoiceStatusUnpaid {
		return apperror.Transition("оплата по счёту уже заявлена (%q)", i.Status)
	}
	i.PaymentRail = rail
	i.PaymentAddress = address
	i.TxHash = reference
	i.Status = valueobject.InvoiceStatusPending
	i.UpdatedAt = now
	return nil
}

// Confirm идемпотентен: повторное подтверждение оплаченного счёта ничего не меняет.
func (i *Invoice) Confirm(admin uuid.UUID, now time.Time) (changed bool, err error) {
	switch i.Status {
	case valueobject.InvoiceStatusPaid:
		return false, nil
	case valueobject.InvoiceStatusPending:
	default:
		return false, apperror.Transition("нельзя подтвердить счёт в статусе %q", i.Status)
	}
	i.Status = valueobject.InvoiceStatusPaid
	i.PaidAt = &now
	i.Confirmations = 1
	i.ConfirmedBy = &admin
	i.UpdatedAt = now
	return true, nil
}

func (i *Invoice) Cancel(now time.Time) error {
	if i.Status != valueobject.InvoiceStatusUnpaid && i.Status != valueobject.InvoiceStatusPending {
		return apperror.Transition("нельзя отменить счёт в статусе %q", i.Status)
	}
	i.Status = valueobject.InvoiceStatusCancelled
	i.UpdatedAt = now
	return nil
}

func (i *Invoice) Refund(now time.Time) error {
	if i.Status != valueobject.InvoiceStatusPaid {
		return apperror.Transition("вернуть можно только оплаченный счёт, текущий статус %q", i.Status)
	}
	i.Status = valueobject.InvoiceStatusRefunded
	i.UpdatedAt = now
	return nil
}
