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

type SubmitWorkInput struct {
	Actor        policy.Actor
	AssignmentID uuid.UUID
	Message      string
	Files        []common.Upload
}

type SubmitWorkResult struct {
	Submission *entity.Submission
	Order      *entity.Order
}

// SubmitWorkUseCase - сдача работы по назначению.
// Файлы сохраняются до транзакции и удаляются, если она не прошла.
type SubmitWorkUseCase struct {
	tx             repository.Transactor
	assignmentRepo repository.AssignmentRepository
	orderRepo      repository.OrderRepository
	submissionRepo repository.SubmissionRepository
	transitioner   *common.Transitioner
	files          repository.FileStore
	notifier       repository.Notifier
}

func NewSubmitWorkUseCase(
	tx repository.Transactor,
	assignmentRepo repository.AssignmentRepository,
	orderRepo repository.OrderRepository,
	submissionRepo repository.SubmissionRepository,
	transitioner *common.Transitioner,
	files repository.FileStore,
	notifier repository.Notifier,
) *SubmitWorkUseCase {
	return &SubmitWorkUseCase{
		tx:             tx,
		assignmentRepo: assignmentRepo,
		orderRepo:      orderRepo,
		submissionRepo: submissionRepo,
		transitioner:   transitioner,
		files:          files,
		notifier:       notifier,
	}
}

func (uc *SubmitWorkUseCase) Execute(ctx context.Context, input SubmitWorkInput) (*SubmitWorkResult, error) {
	// проверка прав до загрузки файлов, чтобы не хранить чужие файлы
	a, err := uc.assignmentRepo.FindByID(ctx, input.AssignmentID)
	if err != nil {
		return nil, err
	}
	if a.WriterID != input.Actor.UserID || input.Actor.Role != valueobject.RoleWriter {
		return nil, apperror.ErrAssignmentNotFound
	}

	paths, err := common.StoreAll(ctx, uc.files, valueobject.BucketSubmissionFiles, input.Actor.UserID, input.Files)
	if err != nil {
		return nil, err
	}

	var (
		res  = &SubmitWorkResult{}
		from valueobject.OrderStatus
	)
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		a, order, err := lockActive(ctx, uc.assignmentRepo, uc.orderRepo, input.Actor, input.AssignmentID)
		if err != nil {
			return err
		}
		from = order.Status
		if order.Status == valueobject.OrderStatusAssigned {
			if err := uc.transitioner.Apply(ctx, order, valueobject.EventWorkStarted, input.Actor, "начато автоматически при сдаче"); err != nil {
				return err
			}
		}

		// версия считается под блокировкой заказа
		last, err := uc.submissionRepo.MaxVersion(ctx, order.ID)
		if err != nil {
			return err
		}
		sub, err := entity.NewSubmission(a, last+1, paths, input.Message, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := uc.submissionRepo.Create(ctx, sub); err != nil {
			return err
		}
		if err := uc.transitioner.Apply(ctx, order, valueobject.EventWorkSubmitted, input.Actor, ""); err != nil {
			return err
		}
		res.Submission, res.Order = sub, order
		return nil
	})
	if err != nil {
		common.Discard(ctx, uc.files, paths)
		return nil, err
	}

	data := map[string]any{
		"submission_id": res.Submission.ID,
		"order_id":      res.Order.ID,
		"version":       res.Submission.Version,
	}
	uc.notifier.NotifyUser(ctx, res.Order.ClientID, common.EventSubmissionCreated, data)
	uc.notifier.NotifyAdmins(ctx, common.EventSubmissionCreated, data)
	common.NotifyStatusChanged(ctx, uc.notifier, res.Order, from)
	return res, nil
}
