package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

type BidRepository interface {
	Create(ctx context.Context, bid *entity.Bid) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bid, error)
	FindActiveByOrderAndWriter(ctx context.Context, orderID, writerID uuid.UUID) (*entity.Bid, error)
	List(ctx context.Context, filter BidFilter) ([]*entity.BidDetails, int, error)
	// UpdateStatus - compare-and-set по статусу pending.
	UpdateStatus(ctx context.Context, bid *entity.Bid, from valueobject.BidStatus) error
	// RejectPending отклоняет все ожидающие ставки заказа, кроме exceptID.
	RejectPending(ctx context.Context, orderID uuid.UUID, exceptID *uuid.UUID, reviewer *uuid.UUID, at time.Time) ([]*entity.Bid, error)
}

type BidFilter struct {
	OrderID  *uuid.UUID
	WriterID *uuid.UUID
	Status   valueobject.BidStatus
	Limit    int
	Offset   int
}

type AssignmentRepository interface {
	Create(ctx context.Context, a *entity.Assignment) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error)
	FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Assignment, error)
	ListByWriter(ctx context.Context, writerID uuid.UUID, status valueobject.AssignmentStatus) ([]*entity.AssignmentDetails, error)
	UpdateStatus(ctx context.Context, a *entity.Assignment, from valueobject.AssignmentStatus) error
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Assignment, error)
	MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

type SubmissionRepository interface {
	Create(ctx context.Context, s *entity.Submission) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Submission, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.Submission, error)
	MaxVersion(ctx context.Context, orderID uuid.UUID) (int, error)
	// SaveReview сохраняет решение и, если работа финальная, снимает флаг с остальных версий.
	SaveReview(ctx context.Context, s *entity.Submission) error
}
