package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Message struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	FromUserID  uuid.UUID
	ToUserID    *uuid.UUID // nil - сообщение для администрации
	Subject     string
	Body        string
	Attachments []string
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

func NewMessage(orderID, from uuid.UUID, to *uuid.UUID, subject, body string, attachments []string, now time.Time) (*Message, error) {
	body = strings.TrimSpace(body)
	if body == "" && len(attachments) == 0 {
		return nil, apperror.Validation("сообщение не может быть пустым")
	}
	if utf8.RuneCountInString(body) > 5000 {
		return nil, apperror.Validation("сообщение не должно превышать 5000 символов")
	}
	subject = strings.TrimSpace(subject)
	if utf8.RuneCountInString(subject) > 200 {
		return nil, apperror.Validation("тема не должна превышать 200 символов")
	}
	if to != nil && *to == from {
		return nil, apperror.Validation("нельзя отправить сообщение самому себе")
	}
	if attachments == nil {
		attachments = []string{}
	}

	return &Message{
		ID:          uuid.New(),
		OrderID:     orderID,
		FromUserID:  from,
		ToUserID:    to,
		Subject:     subject,
		Body:        body,
		Attachments: attachments,
		CreatedAt:   now,
	}, nil
}

// IsForAdmins - адресовано поддержке, а не конкретному пользователю.
func (m *Message) IsForAdmins() bool {
	return m.ToUserID == nil
}

func (m *Message) IsAddressedTo(userID uuid.UUID) bool {
	return m.ToUserID != nil && *m.ToUserID == userID
}

// MarkRead переводит is_read только из false в true.
func (m *Message) MarkRead(now time.Time) (changed bool) {
	if m.IsRead {
		return false
	}
	m.IsRead = true
	m.ReadAt = &now
	return true
}
