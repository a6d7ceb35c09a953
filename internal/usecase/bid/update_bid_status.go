package bid

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

type AcceptBidResult struct {
	Bid          *entity.Bid
	Assignment   *entity.Assignment
	Order        *entity.Order
	RejectedBids []*entity.Bid
}

// AcceptBidUseCase - принятие ставки и назначение автора одной транзакцией.
type AcceptBidUseCase struct {
	tx             repository.Transactor
	bidRepo        repository.BidRepository
	orderRepo      repository.OrderRepository
	assignmentRepo repository.AssignmentRepository
	transitioner   *common.Transitioner
	notifier       repository.Notifier
}

func NewAcceptBidUseCase(
	tx repository.Transactor,
	bidRepo repository.BidRepository,
	orderRepo repository.OrderRepository,
	assignmentRepo repository.AssignmentRepository,
	transitioner *common.Transitioner,
	notifier repository.Notifier,
) *AcceptBidUseCase {
	return &AcceptBidUseCase{
		tx:             tx,
		bidRepo:        bidRepo,
		orderRepo:      orderRepo,
		assignmentRepo: assignmentRepo,
		transitioner:   transitioner,
		notifier:       notifier,
	}
}

func (uc *AcceptBidUseCase) Execute(ctx context.Context, actor policy.Actor, bidID uuid.UUID) (*AcceptBidResult, error) {
	res := &AcceptBidResult{}
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		bid, err := uc.bidRepo.FindByID(ctx, bidID)
		if err != nil {
			return err
		}
		// сначала заказ: все решения по ставкам заказа упорядочены его блокировкой
		order, err := uc.orderRepo.FindByIDForUpdate(ctx, bid.OrderID)
		if err != nil {
			return err
		}
		if !policy.CanDecideBid(actor, order) {
			return apperror.ErrForbidden
		}
		if bid, err = uc.bidRepo.FindByIDForUpdate(ctx, bidID); err != nil {
			return err
		}
		if order.Status != valueobject.OrderStatusAvailable {
			return apperror.Transition("нельзя назначить автора на заказ в статусе %q", order.Status)
		}

		now := time.Now().UTC()
		if err := bid.Accept(actor.UserID, now); err != nil {
			return err
		}
		if err := uc.bidRepo.UpdateStatus(ctx, bid, valueobject.BidStatusPending); err != nil {
			return err
		}
		rejected, err := uc.bidRepo.RejectPending(ctx, order.ID, &bid.ID, actor.ID(), now)
		if err != nil {
			return err
		}

		assignment := entity.NewAssignmentFromBid(order, bid, actor.UserID, now)
		if err := uc.assignmentRepo.Create(ctx, assignment); err != nil {
			return err
		}
		if err := uc.transitioner.AssignWriter(ctx, order, bid.WriterID, actor); err != nil {
			return err
		}

		res.Bid, res.Assignment, res.Order, res.RejectedBids = bid, assignment, order, rejected
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.NotifyUser(ctx, res.Bid.WriterID, common.EventBidAccepted, map[string]any{
		"bid_id":        res.Bid.ID,
		"order_id":      res.Order.ID,
		"assignment_id": res.Assignment.ID,
		"due_at":        res.Assignment.DueAt,
	})
	for _, b := range res.RejectedBids {
		uc.notifier.NotifyUser(ctx, b.WriterID, common.EventBidRejected, map[string]any{
			"bid_id":   b.ID,
			"order_id": b.OrderID,
		})
	}
	common.NotifyStatusChanged(ctx, uc.notifier, res.Order, valueobject.OrderStatusAvailable)
	return res, nil
}

type RejectBidUseCase struct {
	bidRepo   repository.BidRepository
	orderRepo repository.OrderRepository
	notifier  repository.Notifier
}

func NewRejectBidUseCase(bidRepo repository.BidRepository, orderRepo repository.OrderRepository, notifier repository.Notifier) *RejectBidUseCase {
	return &RejectBidUseCase{bidRepo: bidRepo, orderRepo: orderRepo, notifier: notifier}
}

func (uc *RejectBidUseCase) Execute(ctx context.Context, actor policy.Actor, bidID uuid.UUID) (*entity.Bid, error) {
	bid, err := uc.bidRepo.FindByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	order, err := uc.orderRepo.FindByID(ctx, bid.OrderID)
	if err != nil {
		return nil, err
	}
	if !policy.CanDecideBid(actor, order) {
		return nil, apperror.ErrForbidden
	}

	if err := bid.Reject(actor.UserID, time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.bidRepo.UpdateStatus(ctx, bid, valueobject.BidStatusPending); err != nil {
		return nil, err
	}

	uc.notifier.NotifyUser(ctx, bid.WriterID, common.EventBidRejected, map[string]any{
		"bid_id":   bid.ID,
		"order_id": bid.OrderID,
	})
	return bid, nil
}

type WithdrawBidUseCase struct {
	bidRepo repository.BidRepository
}

func NewWithdrawBidUseCase(bidRepo repository.BidRepository) *WithdrawBidUseCase {
	return &WithdrawBidUseCase{bidRepo: bidRepo}
}

// Execute: отозвать можно только свою ожидающую ставку; из конечных статусов переходов нет.
func (uc *WithdrawBidUseCase) Execute(ctx context.Context, actor policy.Actor, bidID uuid.UUID) (*entity.Bid, error) {
	bid, err := uc.bidRepo.FindByID(ctx, bidID)
	if err != nil {
		return nil, err
	}
	if !bid.IsOwnedBy(actor.UserID) {
		return nil, apperror.ErrBidNotFound
	}
	if err := bid.Withdraw(time.Now().UTC()); err != nil {
		return nil, err
	}
	if err := uc.bidRepo.UpdateStatus(ctx, bid, valueobject.BidStatusPending); err != nil {
		return nil, err
	}
	return bid, nil
}
