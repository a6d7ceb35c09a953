package assignment

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

type ListMyAssignmentsUseCase struct {
	assignmentRepo repository.AssignmentRepository
}

func NewListMyAssignmentsUseCase(assignmentRepo repository.AssignmentRepository) *ListMyAssignmentsUseCase {
	return &ListMyAssignmentsUseCase{assignmentRepo: assignmentRepo}
}

func (uc *ListMyAssignmentsUseCase) Execute(ctx context.Context, actor policy.Actor, status string) ([]*entity.AssignmentDetails, error) {
	if err := policy.RequireRole(actor, valueobject.RoleWriter); err != nil {
		return nil, err
	}
	s := valueobject.AssignmentStatus(status)
	switch s {
	case "", valueobject.AssignmentStatusActive, valueobject.AssignmentStatusCompleted, valueobject.AssignmentStatusCancelled:
	default:
		return nil, apperror.Validation("некорректный статус назначения")
	}
	return uc.assignmentRepo.ListByWriter(ctx, actor.UserID, s)
}

// StartWorkUseCase - автор берёт назначенный заказ в работу.
type StartWorkUseCase struct {
	tx             repository.Transactor
	assignmentRepo repository.AssignmentRepository
	orderRepo      repository.OrderRepository
	transitioner   *common.Transitioner
	notifier       repository.Notifier
}

func NewStartWorkUseCase(
	tx repository.Transactor,
	assignmentRepo repository.AssignmentRepository,
	orderRepo repository.OrderRepository,
	transitioner *common.Transitioner,
	notifier repository.Notifier,
) *StartWorkUseCase {
	return &StartWorkUseCase{
		tx:             tx,
		assignmentRepo: assignmentRepo,
		orderRepo:      orderRepo,
		transitioner:   transitioner,
		notifier:       notifier,
	}
}

func (uc *StartWorkUseCase) Execute(ctx context.Context, actor policy.Actor, assignmentID uuid.UUID) (*entity.Order, error) {
	var order *entity.Order
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		_, order, err = lockActive(ctx, uc.assignmentRepo, uc.orderRepo, actor, assignmentID)
		if err != nil {
			return err
		}
		return uc.transitioner.Apply(ctx, order, valueobject.EventWorkStarted, actor, "")
	})
	if err != nil {
		return nil, err
	}
	common.NotifyStatusChanged(ctx, uc.notifier, order, valueobject.OrderStatusAssigned)
	return order, nil
}

// lockActive блокирует заказ назначения и проверяет, что действует сам назначенный автор.
func lockActive(ctx context.Context, assignments repository.AssignmentRepository, orders repository.OrderRepository, actor policy.Actor, assignmentID uuid.UUID) (*entity.Assignment, *entity.Order, error) {
	a, err := assignments.FindByID(ctx, assignmentID)
	if err != nil {
		return nil, nil, err
	}
	if a.WriterID != actor.UserID || actor.Role != valueobject.RoleWriter {
		return nil, nil, apperror.ErrAssignmentNotFound
	}
	order, err := orders.FindByIDForUpdate(ctx, a.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if !a.IsActive() || !policy.IsWriterAssignedToOrder(actor, order) {
		return nil, nil, apperror.Transition("назначение больше не активно")
	}
	return a, order, nil
}
