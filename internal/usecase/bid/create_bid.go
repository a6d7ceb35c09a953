package bid

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

type CreateBidInput struct {
	Actor           policy.Actor
	OrderID         uuid.UUID
	ProposedRate    decimal.Decimal
	PricePerPage    decimal.Decimal
	TimeNeededHours int
	CoverLetter     string
}

type CreateBidUseCase struct {
	bidRepo    repository.BidRepository
	orderRepo  repository.OrderRepository
	writerRepo repository.WriterProfileRepository
	notifier   repository.Notifier
}

func NewCreateBidUseCase(
	bidRepo repository.BidRepository,
	orderRepo repository.OrderRepository,
	writerRepo repository.WriterProfileRepository,
	notifier repository.Notifier,
) *CreateBidUseCase {
	return &CreateBidUseCase{
		bidRepo:    bidRepo,
		orderRepo:  orderRepo,
		writerRepo: writerRepo,
		notifier:   notifier,
	}
}

func (uc *CreateBidUseCase) Execute(ctx context.Context, input CreateBidInput) (*entity.Bid, error) {
	if err := policy.RequireRole(input.Actor, valueobject.RoleWriter); err != nil {
		return nil, err
	}

	writer, err := uc.writerRepo.FindByUserID(ctx, input.Actor.UserID)
	if apperror.IsNotFound(err) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "заполните анкету автора перед подачей ставок")
	}
	if err != nil {
		return nil, err
	}
	if !writer.IsVerified() {
		return nil, apperror.New(apperror.ErrCodeForbidden, "ставки доступны только верифицированным авторам")
	}

	order, err := uc.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireViewOrder(input.Actor, order); err != nil {
		return nil, err
	}
	if order.Status != valueobject.OrderStatusAvailable {
		return nil, apperror.Transition("заказ не принимает ставки в статусе %q", order.Status)
	}

	bid, err := entity.NewBid(order.ID, input.Actor.UserID, input.ProposedRate, input.PricePerPage, input.TimeNeededHours, input.CoverLetter, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if bid.ProposedRate.GreaterThan(order.WriterPoolUSD) {
		return nil, apperror.Validation("ставка превышает бюджет, доступный автору (" + order.WriterPoolUSD.StringFixed(2) + " USD)")
	}

	if _, err := uc.bidRepo.FindActiveByOrderAndWriter(ctx, order.ID, input.Actor.UserID); err == nil {
		return nil, apperror.New(apperror.ErrCodeConflict, "вы уже сделали ставку на этот заказ")
	} else if !apperror.IsNotFound(err) {
		return nil, err
	}

	if err := uc.bidRepo.Create(ctx, bid); err != nil {
		return nil, err
	}

	uc.notifier.NotifyUser(ctx, order.ClientID, common.EventBidCreated, map[string]any{
		"bid_id":   bid.ID,
		"order_id": order.ID,
	})
	uc.notifier.NotifyAdmins(ctx, common.EventBidCreated, map[string]any{
		"bid_id":   bid.ID,
		"order_id": order.ID,
	})
	return bid, nil
}
