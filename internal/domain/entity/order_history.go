package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

// OrderHistory - запись журнала смены статусов.
type OrderHistory struct {
	ID         uuid.UUID
	OrderID    uuid.UUID
	ActorID    *uuid.UUID
	Event      valueobject.OrderEvent
	FromStatus valueobject.OrderStatus
	ToStatus   valueobject.OrderStatus
	Note       string
	CreatedAt  time.Time
}
