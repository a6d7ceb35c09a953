package usecasetest

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type InvoiceRepository struct{ s *Store }

func (s *Store) Invoices() *InvoiceRepository { return &InvoiceRepository{s: s} }

var _ repository.InvoiceRepository = (*InvoiceRepository)(nil)

// InvoicesOf возвращает все счета заказа.
func (s *Store) InvoicesOf(orderID uuid.UUID) []entity.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Invoice
	for _, inv := range s.invoices {
		if inv.OrderID == orderID {
			out = append(out, inv)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *InvoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("invoices.create"); err != nil {
		return err
	}
	for _, cur := range r.s.invoices {
		if cur.OrderID == inv.OrderID && cur.Status.IsOpen() {
			return conflict("invoices")
		}
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	inv, ok := r.s.invoices[id]
	if !ok {
		return nil, apperror.ErrInvoiceNotFound
	}
	return &inv, nil
}

func (r *InvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r *InvoiceRepository) FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, inv := range r.s.invoices {
		if inv.OrderID == orderID && inv.Status.IsOpen() {
			return &inv, nil
		}
	}
	return nil, apperror.ErrInvoiceNotFound
}

func (r *InvoiceRepository) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Invoice
	for _, inv := range r.s.invoices {
		if f.OrderID != nil && inv.OrderID != *f.OrderID {
			continue
		}
		if f.ClientID != nil && inv.ClientID != *f.ClientID {
			continue
		}
		if f.Status != "" && inv.Status != f.Status {
			continue
		}
		inv := inv
		out = append(out, &inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *InvoiceRepository) Update(ctx context.Context, inv *entity.Invoice, from valueobject.InvoiceStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("invoices.update"); err != nil {
		return err
	}
	cur, ok := r.s.invoices[inv.ID]
	if !ok {
		return apperror.ErrInvoiceNotFound
	}
	if cur.Status != from {
		return apperror.ErrConcurrentUpdate
	}
	r.s.invoices[inv.ID] = *inv
	return nil
}
