package assignment

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

type ReviewSubmissionInput struct {
	Actor        policy.Actor
	SubmissionID uuid.UUID
	Decision     string
	Note         string
	// Rating 1..5, учитывается только при approve.
	Rating *int
}

type ReviewSubmissionResult struct {
	Submission *entity.Submission
	Order      *entity.Order
}

type ReviewSubmissionUseCase struct {
	tx             repository.Transactor
	submissionRepo repository.SubmissionRepository
	orderRepo      repository.OrderRepository
	writerRepo     repository.WriterProfileRepository
	transitioner   *common.Transitioner
	cascade        *common.Cascade
	notifier       repository.Notifier
}

func NewReviewSubmissionUseCase(
	tx repository.Transactor,
	submissionRepo repository.SubmissionRepository,
	orderRepo repository.OrderRepository,
	writerRepo repository.WriterProfileRepository,
	transitioner *common.Transitioner,
	cascade *common.Cascade,
	notifier repository.Notifier,
) *ReviewSubmissionUseCase {
	return &ReviewSubmissionUseCase{
		tx:             tx,
		submissionRepo: submissionRepo,
		orderRepo:      orderRepo,
		writerRepo:     writerRepo,
		transitioner:   transitioner,
		cascade:        cascade,
		notifier:       notifier,
	}
}

// Execute: approve завершает заказ и назначение, остальные решения возвращают работу на доработку.
func (uc *ReviewSubmissionUseCase) Execute(ctx context.Context, input ReviewSubmissionInput) (*ReviewSubmissionResult, error) {
	decision, err := valueobject.NewReviewDecision(input.Decision)
	if err != nil {
		return nil, err
	}
	if input.Rating != nil && (*input.Rating < 1 || *input.Rating > 5) {
		return nil, apperror.Validation("оценка должна быть от 1 до 5")
	}

	res := &ReviewSubmissionResult{}
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, err := uc.submissionRepo.FindByID(ctx, input.SubmissionID)
		if err != nil {
			return err
		}
		order, err := uc.orderRepo.FindByIDForUpdate(ctx, sub.OrderID)
		if err != nil {
			return err
		}
		if err := policy.RequireViewOrder(input.Actor, order); err != nil {
			return err
		}
		if !policy.CanReviewSubmission(input.Actor, order, decision) {
			return apperror.ErrForbidden
		}
		if sub, err = uc.submissionRepo.FindByIDForUpdate(ctx, input.SubmissionID); err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := sub.Review(decision, input.Actor.UserID, input.Note, now); err != nil {
			return err
		}
		if err := uc.submissionRepo.SaveReview(ctx, sub); err != nil {
			return err
		}

		if decision == valueobject.DecisionApprove {
			if err := uc.transitioner.Apply(ctx, order, valueobject.EventWorkApproved, input.Actor, sub.ReviewNote); err != nil {
				return err
			}
			if _, err := uc.cascade.OrderCompleted(ctx, order); err != nil {
				return err
			}
			if err := uc.recordCompletion(ctx, sub.WriterID, input.Rating, now); err != nil {
				return err
			}
		} else {
			if err := uc.transitioner.Apply(ctx, order, valueobject.EventRevisionRequested, input.Actor, sub.ReviewNote); err != nil {
				return err
			}
		}

		res.Submission, res.Order = sub, order
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.NotifyUser(ctx, res.Submission.WriterID, common.EventSubmissionReviewed, map[string]any{
		"submission_id": res.Submission.ID,
		"order_id":      res.Order.ID,
		"decision":      decision,
		"note":          res.Submission.ReviewNote,
	})
	common.NotifyStatusChanged(ctx, uc.notifier, res.Order, valueobject.OrderStatusSubmitted)
	return res, nil
}

func (uc *ReviewSubmissionUseCase) recordCompletion(ctx context.Context, writerID uuid.UUID, rating *int, now time.Time) error {
	w, err := uc.writerRepo.FindByUserIDForUpdate(ctx, writerID)
	if apperror.IsNotFound(err) {
		w = entity.NewWriterProfile(writerID, now)
	} else if err != nil {
		return err
	}
	if err := w.RecordCompletion(rating, now); err != nil {
		return err
	}
	return uc.writerRepo.Upsert(ctx, w)
}

type ListSubmissionsUseCase struct {
	submissionRepo repository.SubmissionRepository
	orderRepo      repository.OrderRepository
}

func NewListSubmissionsUseCase(submissionRepo repository.SubmissionRepository, orderRepo repository.OrderRepository) *ListSubmissionsUseCase {
	return &ListSubmissionsUseCase{submissionRepo: submissionRepo, orderRepo: orderRepo}
}

func (uc *ListSubmissionsUseCase) Execute(ctx context.Context, actor policy.Actor, orderID uuid.UUID) ([]*entity.Submission, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireViewOrder(actor, order); err != nil {
		return nil, err
	}
	if err := policy.RequireParticipant(actor, order); err != nil {
		return nil, err
	}
	return uc.submissionRepo.ListByOrder(ctx, orderID)
}
