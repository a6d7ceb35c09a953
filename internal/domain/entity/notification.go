package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Notification - сохранённое событие для пользователя, дублирует push через WebSocket.
type Notification struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Payload   json.RawMessage
	IsRead    bool
	CreatedAt time.Time
}
