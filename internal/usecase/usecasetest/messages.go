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

type MessageRepository struct{ s *Store }

func (s *Store) Messages() *MessageRepository { return &MessageRepository{s: s} }

var _ repository.MessageRepository = (*MessageRepository)(nil)

func copyMessage(m entity.Message) *entity.Message {
	m.Attachments = cloneStrings(m.Attachments)
	return &m
}

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("messages.create"); err != nil {
		return err
	}
	r.s.messages[m.ID] = *copyMessage(*m)
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.messages[id]
	if !ok {
		return nil, apperror.ErrMessageNotFound
	}
	return copyMessage(m), nil
}

func (r *MessageRepository) ListByOrder(ctx context.Context, orderID uuid.UUID, viewer *uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.s.messages {
		if m.OrderID != orderID {
			continue
		}
		if viewer != nil && m.FromUserID != *viewer && !m.IsAddressedTo(*viewer) {
			continue
		}
		out = append(out, copyMessage(m))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, limit, offset), nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, m *entity.Message) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.messages[m.ID]
	if !ok {
		return false, apperror.ErrMessageNotFound
	}
	if cur.IsRead {
		return false, nil
	}
	cur.IsRead = true
	cur.ReadAt = m.ReadAt
	r.s.messages[m.ID] = cur
	return true, nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, userID uuid.UUID, includeAdminInbox bool) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := 0
	for _, m := range r.s.messages {
		if m.IsRead {
			continue
		}
		if m.IsAddressedTo(userID) || (includeAdminInbox && m.IsForAdmins()) {
			n++
		}
	}
	return n, nil
}

type DisputeRepository struct{ s *Store }

func (s *Store) Disputes() *DisputeRepository { return &DisputeRepository{s: s} }

var _ repository.DisputeRepository = (*DisputeRepository)(nil)

func (r *DisputeRepository) Create(ctx context.Context, d *entity.Dispute) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("disputes.create"); err != nil {
		return err
	}
	for _, cur := range r.s.disputes {
		if cur.OrderID == d.OrderID && cur.Status.IsActive() {
			return conflict("disputes")
		}
	}
	r.s.disputes[d.ID] = *d
	return nil
}

func (r *DisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.disputes[id]
	if !ok {
		return nil, apperror.ErrDisputeNotFound
	}
	return &d, nil
}

func (r *DisputeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Dispute, error) {
	return r.FindByID(ctx, id)
}

func (r *DisputeRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Dispute, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, d := range r.s.disputes {
		if d.OrderID == orderID && d.Status.IsActive() {
			return &d, nil
		}
	}
	return nil, apperror.ErrDisputeNotFound
}

func (r *DisputeRepository) List(ctx context.Context, f repository.DisputeFilter) ([]*entity.Dispute, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Dispute
	for _, d := range r.s.disputes {
		if f.Status != "" && d.Status != f.Status {
			continue
		}
		if f.ParticipantID != nil {
			o, ok := r.s.orders[d.OrderID]
			if !ok || (o.ClientID != *f.ParticipantID && (o.WriterID == nil || *o.WriterID != *f.ParticipantID)) {
				continue
			}
		}
		d := d
		out = append(out, &d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *DisputeRepository) Update(ctx context.Context, d *entity.Dispute, from valueobject.DisputeStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.disputes[d.ID]
	if !ok {
		return apperror.ErrDisputeNotFound
	}
	if cur.Status != from {
		return apperror.ErrConcurrentUpdate
	}
	r.s.disputes[d.ID] = *d
	return nil
}
