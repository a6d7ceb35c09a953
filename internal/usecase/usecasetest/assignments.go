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

type AssignmentRepository struct{ s *Store }

func (s *Store) Assignments() *AssignmentRepository { return &AssignmentRepository{s: s} }

var _ repository.AssignmentRepository = (*AssignmentRepository)(nil)

// AssignmentsOf возвращает все назначения заказа.
func (s *Store) AssignmentsOf(orderID uuid.UUID) []entity.Assignment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Assignment
	for _, a := range s.assignments {
		if a.OrderID == orderID {
			out = append(out, a)
		}
	}
	return out
}

// PutAssignment кладёт назначение напрямую, минуя use case.
func (s *Store) PutAssignment(a *entity.Assignment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assignments[a.ID] = *a
}

func (r *AssignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("assignments.create"); err != nil {
		return err
	}
	for _, cur := range r.s.assignments {
		if cur.OrderID == a.OrderID && cur.IsActive() {
			return conflict("assignments")
		}
	}
	r.s.assignments[a.ID] = *a
	return nil
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.assignments[id]
	if !ok {
		return nil, apperror.ErrAssignmentNotFound
	}
	return &a, nil
}

func (r *AssignmentRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, a := range r.s.assignments {
		if a.OrderID == orderID && a.IsActive() {
			return &a, nil
		}
	}
	return nil, apperror.ErrAssignmentNotFound
}

func (r *AssignmentRepository) ListByWriter(ctx context.Context, writerID uuid.UUID, status valueobject.AssignmentStatus) ([]*entity.AssignmentDetails, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.AssignmentDetails{}
	for _, a := range r.s.assignments {
		if a.WriterID != writerID || (status != "" && a.Status != status) {
			continue
		}
		d := &entity.AssignmentDetails{Assignment: a}
		if o, ok := r.s.orders[a.OrderID]; ok {
			d.OrderTitle, d.OrderStatus, d.OrderDeadline, d.OrderPages = o.Title, o.Status, o.Deadline, o.Pages
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	return out, nil
}

func (r *AssignmentRepository) UpdateStatus(ctx context.Context, a *entity.Assignment, from valueobject.AssignmentStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.assignments[a.ID]
	if !ok {
		return apperror.ErrAssignmentNotFound
	}
	if cur.Status != from {
		return apperror.ErrConcurrentUpdate
	}
	r.s.assignments[a.ID] = *a
	return nil
}

func (r *AssignmentRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Assignment{}
	for _, a := range r.s.assignments {
		if a.IsOverdue(now) && a.OverdueNotifiedAt == nil {
			a := a
			out = append(out, &a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DueAt.Before(out[j].DueAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *AssignmentRepository) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.assignments[id]
	if !ok {
		return apperror.ErrAssignmentNotFound
	}
	t := at
	cur.OverdueNotifiedAt = &t
	r.s.assignments[id] = cur
	return nil
}

type SubmissionRepository struct{ s *Store }

func (s *Store) Submissions() *SubmissionRepository { return &SubmissionRepository{s: s} }

var _ repository.SubmissionRepository = (*SubmissionRepository)(nil)

func copySubmission(sub entity.Submission) *entity.Submission {
	sub.Files = cloneStrings(sub.Files)
	return &sub
}

func (r *SubmissionRepository) Create(ctx context.Context, sub *entity.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("submissions.create"); err != nil {
		return err
	}
	for _, cur := range r.s.submissions {
		if cur.OrderID == sub.OrderID && cur.Version == sub.Version {
			return conflict("submissions")
		}
	}
	r.s.submissions[sub.ID] = *copySubmission(*sub)
	return nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sub, ok := r.s.submissions[id]
	if !ok {
		return nil, apperror.ErrSubmissionNotFound
	}
	return copySubmission(sub), nil
}

func (r *SubmissionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	return r.FindByID(ctx, id)
}

func (r *SubmissionRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.Submission, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*entity.Submission{}
	for _, sub := range r.s.submissions {
		if sub.OrderID == orderID {
			out = append(out, copySubmission(sub))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}

func (r *SubmissionRepository) MaxVersion(ctx context.Context, orderID uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	max := 0
	for _, sub := range r.s.submissions {
		if sub.OrderID == orderID && sub.Version > max {
			max = sub.Version
		}
	}
	return max, nil
}

func (r *SubmissionRepository) SaveReview(ctx context.Context, sub *entity.Submission) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.submissions[sub.ID]; !ok {
		return apperror.ErrSubmissionNotFound
	}
	if sub.IsFinal {
		for id, other := range r.s.submissions {
			if other.OrderID == sub.OrderID && other.IsFinal {
				other.IsFinal = false
				r.s.submissions[id] = other
			}
		}
	}
	r.s.submissions[sub.ID] = *copySubmission(*sub)
	return nil
}
