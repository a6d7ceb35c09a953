package bid

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type ListBidsInput struct {
	Actor   policy.Actor
	OrderID *uuid.UUID
	Status  string
	Limit   int
	Offset  int
}

type ListBidsUseCase struct {
	bidRepo   repository.BidRepository
	orderRepo repository.OrderRepository
}

func NewListBidsUseCase(bidRepo repository.BidRepository, orderRepo repository.OrderRepository) *ListBidsUseCase {
	return &ListBidsUseCase{bidRepo: bidRepo, orderRepo: orderRepo}
}

// Execute: администратор видит все ставки, клиент - ставки на свой заказ, автор - свои.
func (uc *ListBidsUseCase) Execute(ctx context.Context, input ListBidsInput) ([]*entity.BidDetails, int, error) {
	filter := repository.BidFilter{
		OrderID: input.OrderID,
		Limit:   input.Limit,
		Offset:  input.Offset,
	}
	if input.Status != "" {
		status, err := valueobject.NewBidStatus(input.Status)
		if err != nil {
			return nil, 0, err
		}
		filter.Status = status
	}

	actor := input.Actor
	switch actor.Role {
	case valueobject.RoleAdmin:
	case valueobject.RoleWriter:
		filter.WriterID = &actor.UserID
	case valueobject.RoleClient:
		if input.OrderID == nil {
			return nil, 0, apperror.Validation("укажите заказ")
		}
		order, err := uc.orderRepo.FindByID(ctx, *input.OrderID)
		if err != nil {
			return nil, 0, err
		}
		if !policy.IsOrderOwner(actor, order) {
			return nil, 0, apperror.ErrOrderNotFound
		}
	default:
		return nil, 0, apperror.ErrForbidden
	}

	return uc.bidRepo.List(ctx, filter)
}
