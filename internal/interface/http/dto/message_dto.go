package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
)

// SendMessageRequest - поля сообщения; файлы приходят в multipart-форме.
type SendMessageRequest struct {
	ToUserID string `json:"to_user_id" form:"to_user_id"`
	Subject  string `json:"subject" form:"subject"`
	Body     string `json:"body" form:"body" binding:"required"`
}

type MessageResponse struct {
	ID          uuid.UUID  `json:"id"`
	OrderID     uuid.UUID  `json:"order_id"`
	FromUserID  uuid.UUID  `json:"from_user_id"`
	ToUserID    *uuid.UUID `json:"to_user_id"`
	Subject     string     `json:"subject,omitempty"`
	Body        string     `json:"body"`
	Attachments []string   `json:"attachments"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

func ToMessageResponse(m *entity.Message) MessageResponse {
	attachments := m.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return MessageResponse{
		ID:          m.ID,
		OrderID:     m.OrderID,
		FromUserID:  m.FromUserID,
		ToUserID:    m.ToUserID,
		Subject:     m.Subject,
		Body:        m.Body,
		Attachments: attachments,
		IsRead:      m.IsRead,
		ReadAt:      m.ReadAt,
		CreatedAt:   m.CreatedAt,
	}
}

func ToMessageResponses(items []*entity.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(items))
	for _, m := range items {
		out = append(out, ToMessageResponse(m))
	}
	return out
}
