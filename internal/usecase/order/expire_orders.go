package order

import (
	"context"
	"time"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/logger"
)

const expireBatch = 100

// ExpireUnpaidOrdersUseCase отменяет заказы, которые слишком долго ждут оплаты.
type ExpireUnpaidOrdersUseCase struct {
	orderRepo repository.OrderRepository
	cancel    *CancelOrderUseCase
	ttl       time.Duration
}

func NewExpireUnpaidOrdersUseCase(orderRepo repository.OrderRepository, cancel *CancelOrderUseCase, ttl time.Duration) *ExpireUnpaidOrdersUseCase {
	return &ExpireUnpaidOrdersUseCase{orderRepo: orderRepo, cancel: cancel, ttl: ttl}
}

// Execute возвращает число отменённых заказов. Заказ, оплаченный между выборкой и отменой,
// отклоняется автоматом статусов и пропускается.
func (uc *ExpireUnpaidOrdersUseCase) Execute(ctx context.Context, now time.Time) (int, error) {
	stale, err := uc.orderRepo.ListStale(ctx, valueobject.OrderStatusPendingPayment, now.Add(-uc.ttl), expireBatch)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, o := range stale {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		if _, err := uc.cancel.Execute(ctx, policy.System(), o.ID, "заказ не оплачен вовремя"); err != nil {
			logger.Log.WithError(err).WithField("order_id", o.ID).Warn("expire: не удалось отменить заказ")
			continue
		}
		expired++
	}
	return expired, nil
}
