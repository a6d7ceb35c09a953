package order_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/bid"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/order"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/usecasetest"
)

type env struct {
	store    *usecasetest.Store
	create   *order.CreateOrderUseCase
	get      *order.GetOrderUseCase
	list     *order.ListOrdersUseCase
	history  *order.GetOrderHistoryUseCase
	cancel   *order.CancelOrderUseCase
	override *order.OverrideStatusUseCase
	attach   *order.AddAttachmentsUseCase
	open     *order.OpenFileUseCase
}

func newEnv() *env {
	s := usecasetest.NewStore()
	tr := common.NewTransitioner(s.Orders(), s.History())
	cascade := common.NewCascade(s.Bids(), s.Assignments(), s.Invoices(), s.Disputes())
	return &env{
		store:    s,
		create:   order.NewCreateOrderUseCase(s.Transactor(), s.Orders(), s.Invoices(), s.Files, usecasetest.Commission),
		get:      order.NewGetOrderUseCase(s.Orders()),
		list:     order.NewListOrdersUseCase(s.Orders()),
		history:  order.NewGetOrderHistoryUseCase(s.Orders(), s.History()),
		cancel:   order.NewCancelOrderUseCase(s.Transactor(), s.Orders(), tr, cascade, s.Notifier),
		override: order.NewOverrideStatusUseCase(s.Transactor(), s.Orders(), tr, cascade, s.Notifier),
		attach:   order.NewAddAttachmentsUseCase(s.Orders(), s.Files),
		open:     order.NewOpenFileUseCase(s.Orders(), s.Files),
	}
}

func draft(words int, deadline time.Duration) entity.OrderDraft {
	return entity.OrderDraft{
		Title:         "Курсовая по экономике",
		Description:   "Анализ рынка труда за последние десять лет",
		Category:      "economics",
		AcademicLevel: "undergraduate",
		Words:         words,
		Deadline:      time.Now().Add(deadline),
	}
}

func TestQuoteUseCase(t *testing.T) {
	uc := order.NewQuoteUseCase(usecasetest.Commission)

	q, err := uc.Execute(context.Background(), order.QuoteInput{
		AcademicLevel: "undergraduate",
		Words:         1100,
		Deadline:      time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, q.Pages)
	assert.True(t, q.BudgetUSD.Equal(decimal.NewFromInt(160)), q.BudgetUSD.String())
	assert.True(t, q.WriterPoolUSD.Equal(decimal.NewFromInt(112)), q.WriterPoolUSD.String())

	_, err = uc.Execute(context.Background(), order.QuoteInput{AcademicLevel: "kindergarten", Words: 10, Deadline: time.Now().Add(time.Hour)})
	assert.True(t, apperror.IsValidation(err))
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("создаёт заказ и неоплаченный счёт", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)

		res, err := e.create.Execute(ctx, order.CreateOrderInput{
			Actor: e.store.Actor(client),
			Draft: draft(550, 5*24*time.Hour),
		})
		require.NoError(t, err)

		assert.Equal(t, valueobject.OrderStatusPendingPayment, res.Order.Status)
		assert.Equal(t, 2, res.Order.Pages)
		assert.True(t, res.Order.BudgetUSD.Equal(decimal.NewFromInt(60)))

		invoices := e.store.InvoicesOf(res.Order.ID)
		require.Len(t, invoices, 1)
		assert.Equal(t, valueobject.InvoiceStatusUnpaid, invoices[0].Status)
		assert.True(t, invoices[0].AmountUSD.Equal(res.Order.BudgetUSD))
	})

	t.Run("цена клиента не совпадает с расчётом", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		wrong := decimal.NewFromInt(10)

		_, err := e.create.Execute(ctx, order.CreateOrderInput{
			Actor:     e.store.Actor(client),
			Draft:     draft(550, 5*24*time.Hour),
			BudgetUSD: &wrong,
		})
		assert.Equal(t, apperror.ErrCodePriceMismatch, apperror.CodeOf(err))
	})

	t.Run("автор не может создать заказ", func(t *testing.T) {
		e := newEnv()
		writer := e.store.AddUser(valueobject.RoleWriter)

		_, err := e.create.Execute(ctx, order.CreateOrderInput{Actor: e.store.Actor(writer), Draft: draft(550, 48*time.Hour)})
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("дедлайн в прошлом", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)

		_, err := e.create.Execute(ctx, order.CreateOrderInput{Actor: e.store.Actor(client), Draft: draft(550, -time.Hour)})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("файлы удаляются, если транзакция не прошла", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		e.store.FailNext("invoices.create", apperror.New(apperror.ErrCodeDatabaseError, "boom"))

		_, err := e.create.Execute(ctx, order.CreateOrderInput{
			Actor: e.store.Actor(client),
			Draft: draft(550, 5*24*time.Hour),
			Files: []common.Upload{{Name: "brief.pdf", Reader: strings.NewReader("%PDF")}},
		})
		require.Error(t, err)

		assert.Equal(t, 0, e.store.Files.Count())
		assert.Len(t, e.store.Files.Deleted(), 1)
		orders, total, err := e.list.Execute(ctx, order.ListOrdersInput{Actor: e.store.Actor(client)})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, orders)
	})
}

func TestGetOrderVisibility(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	client := e.store.AddUser(valueobject.RoleClient)
	other := e.store.AddUser(valueobject.RoleClient)
	writer := e.store.AddUser(valueobject.RoleWriter)
	admin := e.store.AddUser(valueobject.RoleAdmin)

	pending := e.store.SeedOrder(client, valueobject.OrderStatusPendingPayment, nil)
	available := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

	_, err := e.get.Execute(ctx, e.store.Actor(client), pending.ID)
	assert.NoError(t, err)
	_, err = e.get.Execute(ctx, e.store.Actor(admin), pending.ID)
	assert.NoError(t, err)

	_, err = e.get.Execute(ctx, e.store.Actor(other), pending.ID)
	assert.True(t, apperror.IsNotFound(err))
	_, err = e.get.Execute(ctx, e.store.Actor(writer), pending.ID)
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.get.Execute(ctx, e.store.Actor(writer), available.ID)
	assert.NoError(t, err)
	_, err = e.history.Execute(ctx, e.store.Actor(writer), available.ID)
	assert.True(t, apperror.IsForbidden(err))
}

func TestListOrdersIsScopedByRole(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	client := e.store.AddUser(valueobject.RoleClient)
	other := e.store.AddUser(valueobject.RoleClient)
	writer := e.store.AddUser(valueobject.RoleWriter)
	admin := e.store.AddUser(valueobject.RoleAdmin)

	e.store.SeedOrder(client, valueobject.OrderStatusPendingPayment, nil)
	e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)
	e.store.SeedOrder(other, valueobject.OrderStatusAvailable, nil)
	e.store.SeedOrder(other, valueobject.OrderStatusInProgress, &writer)

	_, total, err := e.list.Execute(ctx, order.ListOrdersInput{Actor: e.store.Actor(client)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, total, err = e.list.Execute(ctx, order.ListOrdersInput{
		Actor:    e.store.Actor(writer),
		Statuses: []valueobject.OrderStatus{valueobject.OrderStatusPendingPayment},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, total, "лента автора всегда ограничена открытыми заказами")

	_, total, err = e.list.Execute(ctx, order.ListOrdersInput{Actor: e.store.Actor(writer), Scope: order.ScopeMine})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = e.list.Execute(ctx, order.ListOrdersInput{Actor: e.store.Actor(admin)})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("клиент отменяет открытый заказ, ставки и счёт закрываются", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

		bid, err := entity.NewBid(o.ID, writer, decimal.NewFromInt(100), decimal.NewFromInt(25), 48, "Готов выполнить в срок", time.Now())
		require.NoError(t, err)
		require.NoError(t, e.store.Bids().Create(ctx, bid))

		got, err := e.cancel.Execute(ctx, e.store.Actor(client), o.ID, "передумал")
		require.NoError(t, err)
		assert.Equal(t, valueobject.OrderStatusCancelled, got.Status)

		assert.Equal(t, valueobject.BidStatusRejected, e.store.Bid(bid.ID).Status)
		invoices := e.store.InvoicesOf(o.ID)
		require.Len(t, invoices, 1)
		assert.Equal(t, valueobject.InvoiceStatusCancelled, invoices[0].Status)
		assert.Equal(t, 1, e.store.Notifier.Received(writer, common.EventBidRejected))

		history, err := e.history.Execute(ctx, e.store.Actor(client), o.ID)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.Equal(t, valueobject.EventCancel, history[0].Event)
		assert.Equal(t, "передумал", history[0].Note)
	})

	t.Run("клиент не может отменить заказ в работе", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusInProgress, &writer)

		_, err := e.cancel.Execute(ctx, e.store.Actor(client), o.ID, "")
		assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
		assert.Equal(t, valueobject.OrderStatusInProgress, e.store.Order(o.ID).Status)
	})

	t.Run("администратор отменяет заказ в работе, назначение отменяется", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		admin := e.store.AddUser(valueobject.RoleAdmin)
		o := e.store.SeedOrder(client, valueobject.OrderStatusInProgress, &writer)

		_, err := e.cancel.Execute(ctx, e.store.Actor(admin), o.ID, "нарушение правил")
		require.NoError(t, err)

		assignments := e.store.AssignmentsOf(o.ID)
		require.Len(t, assignments, 1)
		assert.Equal(t, valueobject.AssignmentStatusCancelled, assignments[0].Status)
		invoices := e.store.InvoicesOf(o.ID)
		assert.Equal(t, valueobject.InvoiceStatusPaid, invoices[0].Status, "оплаченный счёт возвращает только администратор")
		assert.Equal(t, 1, e.store.Notifier.Received(writer, common.EventOrderStatusChanged))
	})

	t.Run("повторная отмена", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		o := e.store.SeedOrder(client, valueobject.OrderStatusCancelled, nil)

		_, err := e.cancel.Execute(ctx, e.store.Actor(client), o.ID, "")
		assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	})
}

func TestOverrideStatus(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	client := e.store.AddUser(valueobject.RoleClient)
	admin := e.store.AddUser(valueobject.RoleAdmin)
	o := e.store.SeedOrder(client, valueobject.OrderStatusPendingPayment, nil)

	_, err := e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(client), OrderID: o.ID, Target: "available", Reason: "x"})
	assert.True(t, apperror.IsForbidden(err))

	_, err = e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(admin), OrderID: o.ID, Target: "archived", Reason: "x"})
	assert.True(t, apperror.IsValidation(err), "неизвестный статус записать нельзя")

	_, err = e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(admin), OrderID: o.ID, Target: "available"})
	assert.True(t, apperror.IsValidation(err), "причина обязательна")

	_, err = e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(admin), OrderID: o.ID, Target: "pending_payment", Reason: "x"})
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))

	got, err := e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(admin), OrderID: o.ID, Target: "available", Reason: "оплата получена вне системы"})
	require.NoError(t, err)
	assert.Equal(t, valueobject.OrderStatusAvailable, got.Status)

	history, err := e.history.Execute(ctx, e.store.Actor(admin), o.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, valueobject.EventAdminOverride, history[0].Event)
	assert.Equal(t, admin, *history[0].ActorID)
}

func TestOverrideStatusKeepsWriterConsistent(t *testing.T) {
	ctx := context.Background()

	t.Run("возврат в available освобождает автора, заказ можно назначить заново", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		first := e.store.AddUser(valueobject.RoleWriter)
		second := e.store.AddUser(valueobject.RoleWriter)
		admin := e.store.AddUser(valueobject.RoleAdmin)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAssigned, &first)

		got, err := e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(admin), OrderID: o.ID, Target: "available", Reason: "автор отказался"})
		require.NoError(t, err)
		assert.Nil(t, got.WriterID)
		assert.Nil(t, e.store.Order(o.ID).WriterID)
		assignments := e.store.AssignmentsOf(o.ID)
		require.Len(t, assignments, 1)
		assert.Equal(t, valueobject.AssignmentStatusCancelled, assignments[0].Status)
		assert.Equal(t, 1, e.store.Notifier.Received(first, common.EventOrderStatusChanged))

		b, err := entity.NewBid(o.ID, second, decimal.NewFromInt(100), decimal.NewFromInt(25), 48, "Возьму заказ, опыт есть", time.Now())
		require.NoError(t, err)
		require.NoError(t, e.store.Bids().Create(ctx, b))

		tr := common.NewTransitioner(e.store.Orders(), e.store.History())
		accept := bid.NewAcceptBidUseCase(e.store.Transactor(), e.store.Bids(), e.store.Orders(), e.store.Assignments(), tr, e.store.Notifier)
		_, err = accept.Execute(ctx, e.store.Actor(client), b.ID)
		require.NoError(t, err)

		current := e.store.Order(o.ID)
		assert.Equal(t, valueobject.OrderStatusAssigned, current.Status)
		require.NotNil(t, current.WriterID)
		assert.Equal(t, second, *current.WriterID)
	})

	t.Run("статус с автором без активного назначения недоступен", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		admin := e.store.AddUser(valueobject.RoleAdmin)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

		for _, target := range []string{"assigned", "in_progress", "completed"} {
			_, err := e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(admin), OrderID: o.ID, Target: target, Reason: "ручная правка"})
			assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err), target)
		}
		assert.Equal(t, valueobject.OrderStatusAvailable, e.store.Order(o.ID).Status)
		history, err := e.history.Execute(ctx, e.store.Actor(admin), o.ID)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("назначенный автор сохраняется при переводе в работу", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		admin := e.store.AddUser(valueobject.RoleAdmin)
		o := e.store.SeedOrder(client, valueobject.OrderStatusSubmitted, &writer)

		got, err := e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(admin), OrderID: o.ID, Target: "in_progress", Reason: "файл битый"})
		require.NoError(t, err)
		require.NotNil(t, got.WriterID)
		assert.Equal(t, writer, *got.WriterID)
		assert.Equal(t, valueobject.AssignmentStatusActive, e.store.AssignmentsOf(o.ID)[0].Status)
	})

	t.Run("спор вручную не открывается", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		admin := e.store.AddUser(valueobject.RoleAdmin)
		o := e.store.SeedOrder(client, valueobject.OrderStatusInProgress, &writer)

		_, err := e.override.Execute(ctx, order.OverrideStatusInput{Actor: e.store.Actor(admin), OrderID: o.ID, Target: "disputed", Reason: "x"})
		assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	})
}

func TestAttachmentsAndDownload(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	client := e.store.AddUser(valueobject.RoleClient)
	stranger := e.store.AddUser(valueobject.RoleClient)
	o := e.store.SeedOrder(client, valueobject.OrderStatusPendingPayment, nil)

	got, err := e.attach.Execute(ctx, e.store.Actor(client), o.ID, []common.Upload{
		{Name: "plan.pdf", Reader: strings.NewReader("plan")},
	})
	require.NoError(t, err)
	require.Len(t, got.Attachments, 1)
	path := got.Attachments[0]

	rc, err := e.open.Execute(ctx, e.store.Actor(client), o.ID, path)
	require.NoError(t, err)
	body, _ := io.ReadAll(rc)
	_ = rc.Close()
	assert.Equal(t, "plan", string(body))

	_, err = e.open.Execute(ctx, e.store.Actor(stranger), o.ID, path)
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.open.Execute(ctx, e.store.Actor(client), o.ID, "order-attachments/"+uuid.NewString()+"/x.pdf")
	assert.True(t, apperror.IsNotFound(err))

	_, err = e.attach.Execute(ctx, e.store.Actor(stranger), o.ID, []common.Upload{{Name: "a.pdf", Reader: strings.NewReader("a")}})
	assert.True(t, apperror.IsNotFound(err))
}
