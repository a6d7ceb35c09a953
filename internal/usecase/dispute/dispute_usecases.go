package dispute

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

type OpenDisputeUseCase struct {
	tx           repository.Transactor
	orderRepo    repository.OrderRepository
	disputeRepo  repository.DisputeRepository
	transitioner *common.Transitioner
	notifier     repository.Notifier
}

func NewOpenDisputeUseCase(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	disputeRepo repository.DisputeRepository,
	transitioner *common.Transitioner,
	notifier repository.Notifier,
) *OpenDisputeUseCase {
	return &OpenDisputeUseCase{
		tx:           tx,
		orderRepo:    orderRepo,
		disputeRepo:  disputeRepo,
		transitioner: transitioner,
		notifier:     notifier,
	}
}

// Execute: спор открывает клиент-владелец или назначенный автор; заказ переходит в disputed.
func (uc *OpenDisputeUseCase) Execute(ctx context.Context, actor policy.Actor, orderID uuid.UUID, reason string) (*entity.Dispute, error) {
	var (
		d     *entity.Dispute
		order *entity.Order
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		order, err = uc.orderRepo.FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := policy.RequireViewOrder(actor, order); err != nil {
			return err
		}
		if !policy.IsOrderOwner(actor, order) && !policy.IsWriterAssignedToOrder(actor, order) {
			return apperror.ErrForbidden
		}
		if _, err := uc.disputeRepo.FindActiveByOrder(ctx, order.ID); err == nil {
			return apperror.New(apperror.ErrCodeConflict, "по заказу уже открыт спор")
		} else if !apperror.IsNotFound(err) {
			return err
		}

		d, err = entity.NewDispute(order, actor.UserID, reason, time.Now().UTC())
		if err != nil {
			return err
		}
		if err := uc.transitioner.Apply(ctx, order, valueobject.EventDisputeOpened, actor, d.Reason); err != nil {
			return err
		}
		return uc.disputeRepo.Create(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	data := map[string]any{"dispute_id": d.ID, "order_id": d.OrderID}
	uc.notifier.NotifyAdmins(ctx, common.EventDisputeOpened, data)
	for _, id := range counterparts(order, actor.UserID) {
		uc.notifier.NotifyUser(ctx, id, common.EventDisputeOpened, data)
	}
	common.NotifyStatusChanged(ctx, uc.notifier, order, d.PreviousStatus)
	return d, nil
}

type ReviewDisputeUseCase struct {
	disputeRepo repository.DisputeRepository
}

func NewReviewDisputeUseCase(disputeRepo repository.DisputeRepository) *ReviewDisputeUseCase {
	return &ReviewDisputeUseCase{disputeRepo: disputeRepo}
}

func (uc *ReviewDisputeUseCase) Execute(ctx context.Context, actor policy.Actor, disputeID uuid.UUID) (*entity.Dispute, error) {
	if err := policy.RequireRole(actor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	d, err := uc.disputeRepo.FindByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	if err := d.StartReview(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.disputeRepo.Update(ctx, d, valueobject.DisputeStatusOpen); err != nil {
		return nil, err
	}
	return d, nil
}

type ResolveDisputeInput struct {
	Actor      policy.Actor
	DisputeID  uuid.UUID
	Outcome    string
	Resolution string
}

type ResolveDisputeResult struct {
	Dispute *entity.Dispute
	Order   *entity.Order
}

type ResolveDisputeUseCase struct {
	tx           repository.Transactor
	orderRepo    repository.OrderRepository
	disputeRepo  repository.DisputeRepository
	transitioner *common.Transitioner
	cascade      *common.Cascade
	notifier     repository.Notifier
}

func NewResolveDisputeUseCase(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	disputeRepo repository.DisputeRepository,
	transitioner *common.Transitioner,
	cascade *common.Cascade,
	notifier repository.Notifier,
) *ResolveDisputeUseCase {
	return &ResolveDisputeUseCase{
		tx:           tx,
		orderRepo:    orderRepo,
		disputeRepo:  disputeRepo,
		transitioner: transitioner,
		cascade:      cascade,
		notifier:     notifier,
	}
}

// Execute: complete завершает заказ, cancel отменяет, resume возвращает в статус до спора.
func (uc *ResolveDisputeUseCase) Execute(ctx context.Context, input ResolveDisputeInput) (*ResolveDisputeResult, error) {
	if err := policy.RequireRole(input.Actor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	outcome, err := valueobject.NewDisputeOutcome(input.Outcome)
	if err != nil {
		return nil, err
	}

	res := &ResolveDisputeResult{}
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		d, order, err := lockDispute(ctx, uc.disputeRepo, uc.orderRepo, input.DisputeID)
		if err != nil {
			return err
		}
		from := d.Status
		if err := d.Resolve(outcome, input.Resolution, input.Actor.UserID, time.Now().UTC()); err != nil {
			return err
		}
		if err := uc.disputeRepo.Update(ctx, d, from); err != nil {
			return err
		}

		switch outcome {
		case valueobject.OutcomeComplete:
			if err := uc.transitioner.Apply(ctx, order, valueobject.EventDisputeResolvedComplete, input.Actor, d.Resolution); err != nil {
				return err
			}
			_, err = uc.cascade.OrderCompleted(ctx, order)
		case valueobject.OutcomeCancel:
			if err := uc.transitioner.Apply(ctx, order, valueobject.EventDisputeResolvedCancel, input.Actor, d.Resolution); err != nil {
				return err
			}
			_, err = uc.cascade.OrderCancelled(ctx, order, input.Actor)
		case valueobject.OutcomeResume:
			err = uc.transitioner.Resume(ctx, order, d.PreviousStatus, input.Actor, d.Resolution)
		}
		if err != nil {
			return err
		}
		res.Dispute, res.Order = d, order
		return nil
	})
	if err != nil {
		return nil, err
	}

	data := map[string]any{
		"dispute_id": res.Dispute.ID,
		"order_id":   res.Order.ID,
		"outcome":    res.Dispute.Outcome,
	}
	for _, id := range counterparts(res.Order, uuid.Nil) {
		uc.notifier.NotifyUser(ctx, id, common.EventDisputeResolved, data)
	}
	common.NotifyStatusChanged(ctx, uc.notifier, res.Order, valueobject.OrderStatusDisputed)
	return res, nil
}

type CloseDisputeUseCase struct {
	tx           repository.Transactor
	orderRepo    repository.OrderRepository
	disputeRepo  repository.DisputeRepository
	transitioner *common.Transitioner
	notifier     repository.Notifier
}

func NewCloseDisputeUseCase(
	tx repository.Transactor,
	orderRepo repository.OrderRepository,
	disputeRepo repository.DisputeRepository,
	transitioner *common.Transitioner,
	notifier repository.Notifier,
) *CloseDisputeUseCase {
	return &CloseDisputeUseCase{
		tx:           tx,
		orderRepo:    orderRepo,
		disputeRepo:  disputeRepo,
		transitioner: transitioner,
		notifier:     notifier,
	}
}

// Execute: спор закрывает тот, кто его открыл, или администратор; заказ возвращается в прежний статус.
func (uc *CloseDisputeUseCase) Execute(ctx context.Context, actor policy.Actor, disputeID uuid.UUID) (*entity.Dispute, error) {
	var (
		d     *entity.Dispute
		order *entity.Order
	)
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		d, order, err = lockDispute(ctx, uc.disputeRepo, uc.orderRepo, disputeID)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() && d.OpenedByID != actor.UserID {
			if policy.IsParticipant(actor, order) {
				return apperror.ErrForbidden
			}
			return apperror.ErrDisputeNotFound
		}
		from := d.Status
		if err := d.Close(actor.UserID, time.Now().UTC()); err != nil {
			return err
		}
		if err := uc.disputeRepo.Update(ctx, d, from); err != nil {
			return err
		}
		return uc.transitioner.Resume(ctx, order, d.PreviousStatus, actor, "спор закрыт")
	})
	if err != nil {
		return nil, err
	}

	common.NotifyStatusChanged(ctx, uc.notifier, order, valueobject.OrderStatusDisputed)
	return d, nil
}

type ListDisputesInput struct {
	Actor  policy.Actor
	Status string
	Limit  int
	Offset int
}

type ListDisputesUseCase struct {
	disputeRepo repository.DisputeRepository
}

func NewListDisputesUseCase(disputeRepo repository.DisputeRepository) *ListDisputesUseCase {
	return &ListDisputesUseCase{disputeRepo: disputeRepo}
}

func (uc *ListDisputesUseCase) Execute(ctx context.Context, input ListDisputesInput) ([]*entity.Dispute, int, error) {
	filter := repository.DisputeFilter{Limit: input.Limit, Offset: input.Offset}
	if input.Status != "" {
		status := valueobject.DisputeStatus(input.Status)
		switch status {
		case valueobject.DisputeStatusOpen, valueobject.DisputeStatusInReview, valueobject.DisputeStatusResolved, valueobject.DisputeStatusClosed:
		default:
			return nil, 0, apperror.Validation("некорректный статус спора")
		}
		filter.Status = status
	}
	if !input.Actor.IsAdmin() {
		filter.ParticipantID = &input.Actor.UserID
	}
	return uc.disputeRepo.List(ctx, filter)
}

// lockDispute блокирует заказ, затем сам спор, в том же порядке, что и остальные сценарии.
func lockDispute(ctx context.Context, disputes repository.DisputeRepository, orders repository.OrderRepository, disputeID uuid.UUID) (*entity.Dispute, *entity.Order, error) {
	d, err := disputes.FindByID(ctx, disputeID)
	if err != nil {
		return nil, nil, err
	}
	order, err := orders.FindByIDForUpdate(ctx, d.OrderID)
	if err != nil {
		return nil, nil, err
	}
	if d, err = disputes.FindByIDForUpdate(ctx, disputeID); err != nil {
		return nil, nil, err
	}
	return d, order, nil
}

// counterparts - клиент и автор заказа, кроме except.
func counterparts(order *entity.Order, except uuid.UUID) []uuid.UUID {
	ids := make([]uuid.UUID, 0, 2)
	if order.ClientID != except {
		ids = append(ids, order.ClientID)
	}
	if order.WriterID != nil && *order.WriterID != except {
		ids = append(ids, *order.WriterID)
	}
	return ids
}
