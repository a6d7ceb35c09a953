package usecasetest

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type OrderRepository struct{ s *Store }

func (s *Store) Orders() *OrderRepository { return &OrderRepository{s: s} }

var _ repository.OrderRepository = (*OrderRepository)(nil)

func copyOrder(o entity.Order) *entity.Order {
	o.Attachments = cloneStrings(o.Attachments)
	if o.WriterID != nil {
		id := *o.WriterID
		o.WriterID = &id
	}
	return &o
}

// PutOrder кладёт заказ напрямую, минуя use case.
func (s *Store) PutOrder(o *entity.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = *copyOrder(*o)
}

// Order возвращает текущее состояние заказа или nil.
func (s *Store) Order(id uuid.UUID) *entity.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil
	}
	return copyOrder(o)
}

func (r *OrderRepository) Create(ctx context.Context, order *entity.Order) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("orders.create"); err != nil {
		return err
	}
	if _, ok := r.s.orders[order.ID]; ok {
		return conflict("orders")
	}
	r.s.orders[order.ID] = *copyOrder(*order)
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[id]
	if !ok {
		return nil, apperror.ErrOrderNotFound
	}
	return copyOrder(o), nil
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.FindByID(ctx, id)
}

func (r *OrderRepository) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.s.orders {
		if f.ClientID != nil && o.ClientID != *f.ClientID {
			continue
		}
		if f.WriterID != nil && (o.WriterID == nil || *o.WriterID != *f.WriterID) {
			continue
		}
		if len(f.Statuses) > 0 && !containsStatus(f.Statuses, o.Status) {
			continue
		}
		if f.Category != "" && o.Category != f.Category {
			continue
		}
		if f.AcademicLevel != "" && string(o.AcademicLevel) != f.AcademicLevel {
			continue
		}
		if f.Search != "" {
			q := strings.ToLower(f.Search)
			if !strings.Contains(strings.ToLower(o.Title), q) && !strings.Contains(strings.ToLower(o.Description), q) {
				continue
			}
		}
		out = append(out, copyOrder(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func containsStatus(list []valueobject.OrderStatus, s valueobject.OrderStatus) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, order *entity.Order, from valueobject.OrderStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("orders.update_status"); err != nil {
		return err
	}
	cur, ok := r.s.orders[order.ID]
	if !ok {
		return apperror.ErrOrderNotFound
	}
	if cur.Status != from {
		return apperror.ErrConcurrentUpdate
	}
	cur.Status = order.Status
	cur.UpdatedAt = order.UpdatedAt
	cur.WriterID = nil
	if order.WriterID != nil {
		id := *order.WriterID
		cur.WriterID = &id
	}
	r.s.orders[order.ID] = cur
	return nil
}

func (r *OrderRepository) AppendAttachments(ctx context.Context, id uuid.UUID, paths []string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.orders[id]
	if !ok {
		return apperror.ErrOrderNotFound
	}
	cur.Attachments = append(cloneStrings(cur.Attachments), paths...)
	cur.UpdatedAt = time.Now().UTC()
	r.s.orders[id] = cur
	return nil
}

func (r *OrderRepository) ListStale(ctx context.Context, status valueobject.OrderStatus, updatedBefore time.Time, limit int) ([]*entity.Order, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Order
	for _, o := range r.s.orders {
		if o.Status == status && o.UpdatedAt.Before(updatedBefore) {
			out = append(out, copyOrder(o))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.Before(out[j].UpdatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *OrderRepository) ReferencesFile(ctx context.Context, orderID uuid.UUID, path string, viewer *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orders[orderID]
	if !ok {
		return false, nil
	}
	if contains(o.Attachments, path) {
		return true, nil
	}
	for _, sub := range r.s.submissions {
		if sub.OrderID == orderID && contains(sub.Files, path) {
			return true, nil
		}
	}
	for _, m := range r.s.messages {
		if m.OrderID != orderID || !contains(m.Attachments, path) {
			continue
		}
		if viewer == nil || m.FromUserID == *viewer || (m.ToUserID != nil && *m.ToUserID == *viewer) {
			return true, nil
		}
	}
	return false, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

type OrderHistoryRepository struct{ s *Store }

func (s *Store) History() *OrderHistoryRepository { return &OrderHistoryRepository{s: s} }

var _ repository.OrderHistoryRepository = (*OrderHistoryRepository)(nil)

func (r *OrderHistoryRepository) Add(ctx context.Context, entry *entity.OrderHistory) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("history.add"); err != nil {
		return err
	}
	r.s.history = append(r.s.history, *entry)
	return nil
}

func (r *OrderHistoryRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.OrderHistory, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.OrderHistory{}
	for _, h := range r.s.history {
		if h.OrderID == orderID {
			h := h
			out = append(out, &h)
		}
	}
	return out, nil
}
