package order

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type GetOrderUseCase struct {
	orderRepo repository.OrderRepository
}

func NewGetOrderUseCase(orderRepo repository.OrderRepository) *GetOrderUseCase {
	return &GetOrderUseCase{orderRepo: orderRepo}
}

func (uc *GetOrderUseCase) Execute(ctx context.Context, actor policy.Actor, orderID uuid.UUID) (*entity.Order, error) {
	order, err := uc.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireViewOrder(actor, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Scope для авторов: лента открытых заказов или свои назначенные.
const (
	ScopeAvailable = "available"
	ScopeMine      = "mine"
)

type ListOrdersInput struct {
	Actor         policy.Actor
	Scope         string
	Statuses      []valueobject.OrderStatus
	Category      string
	AcademicLevel string
	Search        string
	Limit         int
	Offset        int
}

type ListOrdersUseCase struct {
	orderRepo repository.OrderRepository
}

func NewListOrdersUseCase(orderRepo repository.OrderRepository) *ListOrdersUseCase {
	return &ListOrdersUseCase{orderRepo: orderRepo}
}

// Execute сужает фильтр по роли: клиент видит свои заказы, автор - открытые или свои, администратор - все.
func (uc *ListOrdersUseCase) Execute(ctx context.Context, input ListOrdersInput) ([]*entity.Order, int, error) {
	filter := repository.OrderFilter{
		Statuses:      input.Statuses,
		Category:      input.Category,
		AcademicLevel: input.AcademicLevel,
		Search:        input.Search,
		Limit:         input.Limit,
		Offset:        input.Offset,
	}

	actor := input.Actor
	switch actor.Role {
	case valueobject.RoleClient:
		filter.ClientID = &actor.UserID
	case valueobject.RoleWriter:
		if input.Scope == ScopeMine {
			filter.WriterID = &actor.UserID
		} else {
			filter.Statuses = []valueobject.OrderStatus{valueobject.OrderStatusAvailable}
		}
	case valueobject.RoleAdmin:
	default:
		return nil, 0, apperror.ErrForbidden
	}

	return uc.orderRepo.List(ctx, filter)
}

type GetOrderHistoryUseCase struct {
	orderRepo   repository.OrderRepository
	historyRepo repository.OrderHistoryRepository
}

func NewGetOrderHistoryUseCase(orderRepo repository.OrderRepository, historyRepo repository.OrderHistoryRepository) *GetOrderHistoryUseCase {
	return &GetOrderHistoryUseCase{orderRepo: orderRepo, historyRepo: historyRepo}
}

func (uc *GetOrderHistoryUseCase) Execute(ctx context.Context, actor policy.Actor, orderID uuid.UUID) ([]*entity.OrderHistory, error) {
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
	return uc.historyRepo.ListByOrder(ctx, orderID)
}
