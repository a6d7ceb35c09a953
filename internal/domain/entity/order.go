package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Order struct {
	ID            uuid.UUID
	ClientID      uuid.UUID
	WriterID      *uuid.UUID
	Title         string
	Description   string
	Category      string
	AcademicLevel valueobject.AcademicLevel
	Words         int
	Pages         int
	Deadline      time.Time
	BudgetUSD     decimal.Decimal
	WriterPoolUSD decimal.Decimal
	Status        valueobject.OrderStatus
	Attachments   []string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderDraft - поля, которые присылает клиент.
type OrderDraft struct {
	Title         string
	Description   string
	Category      string
	AcademicLevel string
	Words         int
	Deadline      time.Time
}

// NewOrder валидирует черновик и применяет серверный расчёт цены.
func NewOrder(clientID uuid.UUID, draft OrderDraft, quote valueobject.Quote, now time.Time) (*Order, error) {
	title := strings.TrimSpace(draft.Title)
	if n := utf8.RuneCountInString(title); n < 3 || n > 200 {
		return nil, apperror.Validation("название заказа должно быть от 3 до 200 символов")
	}
	description := strings.TrimSpace(draft.Description)
	if n := utf8.RuneCountInString(description); n < 10 || n > 5000 {
		return nil, apperror.Validation("описание заказа должно быть от 10 до 5000 символов")
	}
	category := strings.TrimSpace(draft.Category)
	if category == "" || utf8.RuneCountInString(category) > 100 {
		return nil, apperror.Validation("категория заказа обязательна")
	}
	level, err := valueobject.NewAcademicLevel(draft.AcademicLevel)
	if err != nil {
		return nil, err
	}
	if draft.Words <= 0 || draft.Words > valueobject.MaxWords {
		return nil, apperror.Validation("количество слов должно быть от 1 до 100000")
	}
	if !draft.Deadline.After(now) {
		return nil, apperror.Validation("дедлайн должен быть в будущем")
	}

	return &Order{
		ID:            uuid.New(),
		ClientID:      clientID,
		Title:         title,
		Description:   description,
		Category:      category,
		AcademicLevel: level,
		Words:         draft.Words,
		Pages:         quote.Pages,
		Deadline:      draft.Deadline.UTC(),
		BudgetUSD:     quote.BudgetUSD,
		WriterPoolUSD: quote.WriterPoolUSD,
		Status:        valueobject.OrderStatusPendingPayment,
		Attachments:   []string{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// Apply двигает заказ по таблице переходов.
func (o *Order) Apply(event valueobject.OrderEvent, now time.Time) error {
	next, err := o.Status.Next(event)
	if err != nil {
		return err
	}
	o.Status = next
	o.UpdatedAt = now
	return nil
}

// AssignWriter фиксирует автора вместе с переходом в assigned.
func (o *Order) AssignWriter(writerID uuid.UUID, now time.Time) error {
	if err := o.Apply(valueobject.EventWriterAssigned, now); err != nil {
		return err
	}
	o.WriterID = &writerID
	return nil
}

// ResumeFrom возвращает заказ из спора в статус, который был до него.
func (o *Order) ResumeFrom(previous valueobject.OrderStatus, now time.Time) error {
	if !o.Status.CanResumeTo(previous) {
		return apperror.Transition("нельзя вернуть заказ из статуса %q в %q", o.Status, previous)
	}
	o.Status = previous
	o.UpdatedAt = now
	return nil
}

// Override - ручная установка статуса администратором.
func (o *Order) Override(target valueobject.OrderStatus, now time.Time) error {
	if err := o.Status.CanOverrideTo(target); err != nil {
		return err
	}
	o.Status = target
	o.UpdatedAt = now
	return nil
}

func (o *Order) IsOwnedBy(userID uuid.UUID) bool {
	return o.ClientID == userID
}

func (o *Order) IsAssignedTo(userID uuid.UUID) bool {
	return o.WriterID != nil && *o.WriterID == userID
}

// References сообщает, прикреплён ли файл к самому заказу.
func (o *Order) References(path string) bool {
	for _, p := range o.Attachments {
		if p == path {
			return true
		}
	}
	return false
}
