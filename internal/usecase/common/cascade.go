package common

import (
	"context"
	"time"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// Cascade приводит связанные записи в соответствие с завершённым заказом.
// Вызывается внутри той же транзакции, что и смена статуса.
type Cascade struct {
	bids        repository.BidRepository
	assignments repository.AssignmentRepository
	invoices    repository.InvoiceRepository
	disputes    repository.DisputeRepository
}

func NewCascade(
	bids repository.BidRepository,
	assignments repository.AssignmentRepository,
	invoices repository.InvoiceRepository,
	disputes repository.DisputeRepository,
) *Cascade {
	return &Cascade{bids: bids, assignments: assignments, invoices: invoices, disputes: disputes}
}

// CancelledResult - что было закрыто при отмене заказа.
type CancelledResult struct {
	RejectedBids []*entity.Bid
	Assignment   *entity.Assignment
	Invoice      *entity.Invoice
}

// OrderCancelled отклоняет ожидающие ставки, отменяет активное назначение и неоплаченный счёт.
// Оплаченный счёт не трогаем: возврат делает администратор.
func (c *Cascade) OrderCancelled(ctx context.Context, order *entity.Order, actor policy.Actor) (*CancelledResult, error) {
	at := time.Now().UTC()
	res := &CancelledResult{}

	rejected, err := c.bids.RejectPending(ctx, order.ID, nil, actor.ID(), at)
	if err != nil {
		return nil, err
	}
	res.RejectedBids = rejected

	assignment, err := c.assignments.FindActiveByOrder(ctx, order.ID)
	switch {
	case err == nil:
		if err := assignment.Cancel(at); err != nil {
			return nil, err
		}
		if err := c.assignments.UpdateStatus(ctx, assignment, valueobject.AssignmentStatusActive); err != nil {
			return nil, err
		}
		res.Assignment = assignment
	case !apperror.IsNotFound(err):
		return nil, err
	}

	invoice, err := c.invoices.FindOpenByOrder(ctx, order.ID)
	switch {
	case err == nil:
		if invoice.Status == valueobject.InvoiceStatusPaid {
			break
		}
		from := invoice.Status
		if err := invoice.Cancel(at); err != nil {
			return nil, err
		}
		if err := c.invoices.Update(ctx, invoice, from); err != nil {
			return nil, err
		}
		res.Invoice = invoice
	case !apperror.IsNotFound(err):
		return nil, err
	}

	return res, nil
}

// OrderCompleted закрывает активное назначение, если оно есть.
func (c *Cascade) OrderCompleted(ctx context.Context, order *entity.Order) (*entity.Assignment, error) {
	assignment, err := c.assignments.FindActiveByOrder(ctx, order.ID)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := assignment.Complete(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := c.assignments.UpdateStatus(ctx, assignment, valueobject.AssignmentStatusActive); err != nil {
		return nil, err
	}
	return assignment, nil
}

// ReleaseWriter отменяет активное назначение и отвязывает автора от заказа.
// Вызывается до смены статуса, чтобы writer_id записался вместе с ним.
func (c *Cascade) ReleaseWriter(ctx context.Context, order *entity.Order) (*entity.Assignment, error) {
	order.WriterID = nil
	assignment, err := c.assignments.FindActiveByOrder(ctx, order.ID)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := assignment.Cancel(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := c.assignments.UpdateStatus(ctx, assignment, valueobject.AssignmentStatusActive); err != nil {
		return nil, err
	}
	return assignment, nil
}

// RequireAssignment проверяет, что у заказа есть активное назначение, и синхронизирует writer_id.
func (c *Cascade) RequireAssignment(ctx context.Context, order *entity.Order) error {
	assignment, err := c.assignments.FindActiveByOrder(ctx, order.ID)
	if apperror.IsNotFound(err) {
		return apperror.Transition("у заказа нет активного назначения, статус %q недоступен", order.Status)
	}
	if err != nil {
		return err
	}
	writerID := assignment.WriterID
	order.WriterID = &writerID
	return nil
}

// SettleDispute закрывает активный спор, когда заказ покидает disputed в обход решения по спору.
func (c *Cascade) SettleDispute(ctx context.Context, order *entity.Order, actor policy.Actor, outcome valueobject.DisputeOutcome, note string) (*entity.Dispute, error) {
	active, err := c.disputes.FindActiveByOrder(ctx, order.ID)
	if apperror.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d, err := c.disputes.FindByIDForUpdate(ctx, active.ID)
	if err != nil {
		return nil, err
	}
	from := d.Status
	if err := d.Resolve(outcome, note, actor.UserID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := c.disputes.Update(ctx, d, from); err != nil {
		return nil, err
	}
	return d, nil
}
