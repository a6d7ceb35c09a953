package usecasetest

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type BidRepository struct{ s *Store }

func (s *Store) Bids() *BidRepository { return &BidRepository{s: s} }

var _ repository.BidRepository = (*BidRepository)(nil)

// Bid возвращает текущее состояние ставки или nil.
func (s *Store) Bid(id uuid.UUID) *entity.Bid {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bids[id]
	if !ok {
		return nil
	}
	return &b
}

func (r *BidRepository) Create(ctx context.Context, bid *entity.Bid) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("bids.create"); err != nil {
		return err
	}
	for _, b := range r.s.bids {
		if b.OrderID == bid.OrderID && b.WriterID == bid.WriterID && b.Status != valueobject.BidStatusWithdrawn {
			return conflict("bids")
		}
	}
	r.s.bids[bid.ID] = *bid
	return nil
}

func (r *BidRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bids[id]
	if !ok {
		return nil, apperror.ErrBidNotFound
	}
	return &b, nil
}

func (r *BidRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.FindByID(ctx, id)
}

func (r *BidRepository) FindActiveByOrderAndWriter(ctx context.Context, orderID, writerID uuid.UUID) (*entity.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, b := range r.s.bids {
		if b.OrderID == orderID && b.WriterID == writerID && b.Status != valueobject.BidStatusWithdrawn {
			return &b, nil
		}
	}
	return nil, apperror.ErrBidNotFound
}

func (r *BidRepository) List(ctx context.Context, f repository.BidFilter) ([]*entity.BidDetails, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.BidDetails
	for _, b := range r.s.bids {
		if f.OrderID != nil && b.OrderID != *f.OrderID {
			continue
		}
		if f.WriterID != nil && b.WriterID != *f.WriterID {
			continue
		}
		if f.Status != "" && b.Status != f.Status {
			continue
		}
		d := &entity.BidDetails{Bid: b}
		if o, ok := r.s.orders[b.OrderID]; ok {
			d.OrderTitle, d.OrderStatus, d.OrderPages = o.Title, o.Status, o.Pages
		}
		if p, ok := r.s.profiles[b.WriterID]; ok {
			d.WriterName = p.Name
		}
		if w, ok := r.s.writers[b.WriterID]; ok {
			d.WriterRating, d.WriterVerification, d.WriterCompleted = w.Rating, w.VerificationStatus, w.CompletedOrders
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, f.Limit, f.Offset), len(out), nil
}

func (r *BidRepository) UpdateStatus(ctx context.Context, bid *entity.Bid, from valueobject.BidStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("bids.update_status"); err != nil {
		return err
	}
	cur, ok := r.s.bids[bid.ID]
	if !ok {
		return apperror.ErrBidNotFound
	}
	if cur.Status != from {
		return apperror.ErrConcurrentUpdate
	}
	r.s.bids[bid.ID] = *bid
	return nil
}

func (r *BidRepository) RejectPending(ctx context.Context, orderID uuid.UUID, exceptID *uuid.UUID, reviewer *uuid.UUID, at time.Time) ([]*entity.Bid, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Bid{}
	for id, b := range r.s.bids {
		if b.OrderID != orderID || b.Status != valueobject.BidStatusPending {
			continue
		}
		if exceptID != nil && id == *exceptID {
			continue
		}
		b.Status = valueobject.BidStatusRejected
		b.ReviewedBy = reviewer
		t := at
		b.ReviewedAt = &t
		b.UpdatedAt = at
		r.s.bids[id] = b
		b := b
		out = append(out, &b)
	}
	return out, nil
}
