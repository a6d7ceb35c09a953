package message_test

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/message"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/usecasetest"
)

type env struct {
	store  *usecasetest.Store
	send   *message.SendMessageUseCase
	list   *message.ListMessagesUseCase
	read   *message.MarkReadUseCase
	unread *message.UnreadCountUseCase

	client, writer, admin uuid.UUID
	order                 *entity.Order
}

func newEnv() *env {
	s := usecasetest.NewStore()
	e := &env{
		store:  s,
		send:   message.NewSendMessageUseCase(s.Orders(), s.Messages(), s.Files, s.Notifier),
		list:   message.NewListMessagesUseCase(s.Orders(), s.Messages()),
		read:   message.NewMarkReadUseCase(s.Messages()),
		unread: message.NewUnreadCountUseCase(s.Messages()),
		client: s.AddUser(valueobject.RoleClient),
		writer: s.AddUser(valueobject.RoleWriter),
		admin:  s.AddUser(valueobject.RoleAdmin),
	}
	e.order = s.SeedOrder(e.client, valueobject.OrderStatusInProgress, &e.writer)
	return e
}

func (e *env) sendTo(t *testing.T, from uuid.UUID, to *uuid.UUID, body string) *entity.Message {
	t.Helper()
	msg, err := e.send.Execute(context.Background(), message.SendMessageInput{
		Actor: e.store.Actor(from), OrderID: e.order.ID, ToUserID: to, Body: body,
	})
	require.NoError(t, err)
	return msg
}

func TestSendMessage(t *testing.T) {
	ctx := context.Background()

	t.Run("клиент пишет автору", func(t *testing.T) {
		e := newEnv()
		msg := e.sendTo(t, e.client, &e.writer, "Добавьте список литературы")
		assert.False(t, msg.IsRead)
		assert.Equal(t, 1, e.store.Notifier.Received(e.writer, common.EventMessageNew))
	})

	t.Run("сообщение в поддержку", func(t *testing.T) {
		e := newEnv()
		msg := e.sendTo(t, e.writer, nil, "Клиент не отвечает")
		assert.True(t, msg.IsForAdmins())
		assert.Equal(t, 1, e.store.Notifier.Received(uuid.Nil, common.EventMessageNew))
	})

	t.Run("администратор обязан указать получателя", func(t *testing.T) {
		e := newEnv()
		_, err := e.send.Execute(ctx, message.SendMessageInput{Actor: e.store.Actor(e.admin), OrderID: e.order.ID, Body: "x"})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("получатель вне заказа", func(t *testing.T) {
		e := newEnv()
		stranger := e.store.AddUser(valueobject.RoleWriter)
		_, err := e.send.Execute(ctx, message.SendMessageInput{Actor: e.store.Actor(e.client), OrderID: e.order.ID, ToUserID: &stranger, Body: "x"})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("посторонний не может писать", func(t *testing.T) {
		e := newEnv()
		stranger := e.store.AddUser(valueobject.RoleClient)
		_, err := e.send.Execute(ctx, message.SendMessageInput{Actor: e.store.Actor(stranger), OrderID: e.order.ID, ToUserID: &e.client, Body: "x"})
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("вложения удаляются, если запись не удалась", func(t *testing.T) {
		e := newEnv()
		e.store.FailNext("messages.create", apperror.New(apperror.ErrCodeDatabaseError, "boom"))
		_, err := e.send.Execute(ctx, message.SendMessageInput{
			Actor: e.store.Actor(e.client), OrderID: e.order.ID, ToUserID: &e.writer,
			Files: []common.Upload{
				{Name: "a.pdf", Reader: strings.NewReader("a")},
				{Name: "b.pdf", Reader: strings.NewReader("b")},
			},
		})
		require.Error(t, err)
		assert.Zero(t, e.store.Files.Count())
		assert.Len(t, e.store.Files.Deleted(), 2)
	})

	t.Run("ошибка загрузки второго файла удаляет первый", func(t *testing.T) {
		e := newEnv()
		e.store.Files.FailOn = "b.pdf"
		_, err := e.send.Execute(ctx, message.SendMessageInput{
			Actor: e.store.Actor(e.client), OrderID: e.order.ID, ToUserID: &e.writer,
			Files: []common.Upload{
				{Name: "a.pdf", Reader: strings.NewReader("a")},
				{Name: "b.pdf", Reader: strings.NewReader("b")},
			},
		})
		require.Error(t, err)
		assert.Zero(t, e.store.Files.Count())
	})
}

func TestListMessagesVisibility(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	e.sendTo(t, e.client, &e.writer, "вопрос автору")
	e.sendTo(t, e.client, nil, "вопрос поддержке")
	e.sendTo(t, e.admin, &e.client, "ответ клиенту")

	all, err := e.list.Execute(ctx, e.store.Actor(e.admin), e.order.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	forWriter, err := e.list.Execute(ctx, e.store.Actor(e.writer), e.order.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, forWriter, 1)

	forClient, err := e.list.Execute(ctx, e.store.Actor(e.client), e.order.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, forClient, 3)
}

func TestMarkReadOnlyByIntendedReader(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	toWriter := e.sendTo(t, e.client, &e.writer, "вопрос автору")
	toSupport := e.sendTo(t, e.client, nil, "вопрос поддержке")

	count, err := e.unread.Execute(ctx, e.store.Actor(e.writer))
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = e.read.Execute(ctx, e.store.Actor(e.client), toWriter.ID)
	assert.True(t, apperror.IsForbidden(err), "отправитель не может отметить прочитанным")
	_, err = e.read.Execute(ctx, e.store.Actor(e.admin), toWriter.ID)
	assert.True(t, apperror.IsForbidden(err))

	got, err := e.read.Execute(ctx, e.store.Actor(e.writer), toWriter.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRead)
	readAt := *got.ReadAt

	again, err := e.read.Execute(ctx, e.store.Actor(e.writer), toWriter.ID)
	require.NoError(t, err)
	assert.True(t, again.IsRead)
	assert.True(t, readAt.Equal(*again.ReadAt))

	_, err = e.read.Execute(ctx, e.store.Actor(e.writer), toSupport.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = e.read.Execute(ctx, e.store.Actor(e.admin), toSupport.ID)
	assert.NoError(t, err)

	count, err = e.unread.Execute(ctx, e.store.Actor(e.writer))
	require.NoError(t, err)
	assert.Zero(t, count)
}
