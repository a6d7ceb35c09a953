package message

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

type SendMessageInput struct {
	Actor   policy.Actor
	OrderID uuid.UUID
	// ToUserID nil - сообщение в поддержку.
	ToUserID *uuid.UUID
	Subject  string
	Body     string
	Files    []common.Upload
}

type SendMessageUseCase struct {
	orderRepo   repository.OrderRepository
	messageRepo repository.MessageRepository
	files       repository.FileStore
	notifier    repository.Notifier
}

func NewSendMessageUseCase(
	orderRepo repository.OrderRepository,
	messageRepo repository.MessageRepository,
	files repository.FileStore,
	notifier repository.Notifier,
) *SendMessageUseCase {
	return &SendMessageUseCase{
		orderRepo:   orderRepo,
		messageRepo: messageRepo,
		files:       files,
		notifier:    notifier,
	}
}

func (uc *SendMessageUseCase) Execute(ctx context.Context, input SendMessageInput) (*entity.Message, error) {
	order, err := uc.orderRepo.FindByID(ctx, input.OrderID)
	if err != nil {
		return nil, err
	}
	if err := policy.RequireViewOrder(input.Actor, order); err != nil {
		return nil, err
	}
	if err := policy.RequireParticipant(input.Actor, order); err != nil {
		return nil, err
	}
	if err := checkRecipient(input.Actor, order, input.ToUserID); err != nil {
		return nil, err
	}

	// проверяем поля до загрузки файлов
	if _, err := entity.NewMessage(order.ID, input.Actor.UserID, input.ToUserID, input.Subject, input.Body, fileNames(input.Files), time.Now().UTC()); err != nil {
		return nil, err
	}

	paths, err := common.StoreAll(ctx, uc.files, valueobject.BucketMessageAttachments, input.Actor.UserID, input.Files)
	if err != nil {
		return nil, err
	}
	msg, err := entity.NewMessage(order.ID, input.Actor.UserID, input.ToUserID, input.Subject, input.Body, paths, time.Now().UTC())
	if err != nil {
		common.Discard(ctx, uc.files, paths)
		return nil, err
	}
	if err := uc.messageRepo.Create(ctx, msg); err != nil {
		common.Discard(ctx, uc.files, paths)
		return nil, err
	}

	data := map[string]any{
		"message_id": msg.ID,
		"order_id":   msg.OrderID,
		"from":       msg.FromUserID,
		"subject":    msg.Subject,
	}
	if msg.IsForAdmins() {
		uc.notifier.NotifyAdmins(ctx, common.EventMessageNew, data)
	} else {
		uc.notifier.NotifyUser(ctx, *msg.ToUserID, common.EventMessageNew, data)
	}
	return msg, nil
}

// checkRecipient: адресат - другой участник заказа; администратор всегда пишет конкретному пользователю.
func checkRecipient(actor policy.Actor, order *entity.Order, to *uuid.UUID) error {
	if to == nil {
		if actor.IsAdmin() {
			return apperror.Validation("администратор должен указать получателя")
		}
		return nil
	}
	if *to == actor.UserID {
		return apperror.Validation("нельзя отправить сообщение самому себе")
	}
	if *to == order.ClientID || order.IsAssignedTo(*to) {
		return nil
	}
	if actor.IsAdmin() {
		return apperror.Validation("получатель не участвует в заказе")
	}
	// писать конкретному администратору не нужно: для поддержки есть to = null
	return apperror.Validation("получатель не участвует в заказе, для связи с поддержкой оставьте получателя пустым")
}

func fileNames(files []common.Upload) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.Name
	}
	return out
}

type ListMessagesUseCase struct {
	orderRepo   repository.OrderRepository
	messageRepo repository.MessageRepository
}

func NewListMessagesUseCase(orderRepo repository.OrderRepository, messageRepo repository.MessageRepository) *ListMessagesUseCase {
	return &ListMessagesUseCase{orderRepo: orderRepo, messageRepo: messageRepo}
}

// Execute: администратор видит всю переписку, остальные - только свои входящие и исходящие.
func (uc *ListMessagesUseCase) Execute(ctx context.Context, actor policy.Actor, orderID uuid.UUID, limit, offset int) ([]*entity.Message, error) {
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
	var viewer *uuid.UUID
	if !actor.IsAdmin() {
		viewer = &actor.UserID
	}
	return uc.messageRepo.ListByOrder(ctx, orderID, viewer, limit, offset)
}

type MarkReadUseCase struct {
	messageRepo repository.MessageRepository
}

func NewMarkReadUseCase(messageRepo repository.MessageRepository) *MarkReadUseCase {
	return &MarkReadUseCase{messageRepo: messageRepo}
}

// Execute отмечает сообщение прочитанным; повторный вызов ничего не меняет.
func (uc *MarkReadUseCase) Execute(ctx context.Context, actor policy.Actor, messageID uuid.UUID) (*entity.Message, error) {
	msg, err := uc.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if !policy.CanReadMessage(actor, msg) {
		return nil, apperror.ErrMessageNotFound
	}
	if !policy.IsIntendedReader(actor, msg) {
		return nil, apperror.New(apperror.ErrCodeForbidden, "отметить прочитанным может только получатель")
	}
	if !msg.MarkRead(time.Now().UTC()) {
		return msg, nil
	}
	if _, err := uc.messageRepo.MarkRead(ctx, msg); err != nil {
		return nil, err
	}
	return msg, nil
}

type UnreadCountUseCase struct {
	messageRepo repository.MessageRepository
}

func NewUnreadCountUseCase(messageRepo repository.MessageRepository) *UnreadCountUseCase {
	return &UnreadCountUseCase{messageRepo: messageRepo}
}

func (uc *UnreadCountUseCase) Execute(ctx context.Context, actor policy.Actor) (int, error) {
	return uc.messageRepo.CountUnread(ctx, actor.UserID, actor.IsAdmin())
}
