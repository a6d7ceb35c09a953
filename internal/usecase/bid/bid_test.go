package bid_test

import (
	"context"
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
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/usecasetest"
)

type env struct {
	store    *usecasetest.Store
	create   *bid.CreateBidUseCase
	accept   *bid.AcceptBidUseCase
	reject   *bid.RejectBidUseCase
	withdraw *bid.WithdrawBidUseCase
	list     *bid.ListBidsUseCase
}

func newEnv() *env {
	s := usecasetest.NewStore()
	tr := common.NewTransitioner(s.Orders(), s.History())
	return &env{
		store:    s,
		create:   bid.NewCreateBidUseCase(s.Bids(), s.Orders(), s.Writers(), s.Notifier),
		accept:   bid.NewAcceptBidUseCase(s.Transactor(), s.Bids(), s.Orders(), s.Assignments(), tr, s.Notifier),
		reject:   bid.NewRejectBidUseCase(s.Bids(), s.Orders(), s.Notifier),
		withdraw: bid.NewWithdrawBidUseCase(s.Bids()),
		list:     bid.NewListBidsUseCase(s.Bids(), s.Orders()),
	}
}

func input(e *env, writer, orderID uuid.UUID, rate int64, hours int) bid.CreateBidInput {
	return bid.CreateBidInput{
		Actor:           e.store.Actor(writer),
		OrderID:         orderID,
		ProposedRate:    decimal.NewFromInt(rate),
		PricePerPage:    decimal.NewFromInt(20),
		TimeNeededHours: hours,
		CoverLetter:     "Пишу по экономике пять лет",
	}
}

func TestCreateBid(t *testing.T) {
	ctx := context.Background()

	t.Run("успешная ставка", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

		b, err := e.create.Execute(ctx, input(e, writer, o.ID, 100, 48))
		require.NoError(t, err)
		assert.Equal(t, valueobject.BidStatusPending, b.Status)
		assert.Equal(t, 1, e.store.Notifier.Received(client, common.EventBidCreated))
	})

	t.Run("ставка выше бюджета автора", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

		// бюджет 160, автору доступно 112
		_, err := e.create.Execute(ctx, input(e, writer, o.ID, 113, 48))
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("повторная ставка", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

		_, err := e.create.Execute(ctx, input(e, writer, o.ID, 100, 48))
		require.NoError(t, err)
		_, err = e.create.Execute(ctx, input(e, writer, o.ID, 90, 48))
		assert.Equal(t, apperror.ErrCodeConflict, apperror.CodeOf(err))
	})

	t.Run("заказ ещё не оплачен", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusPendingPayment, nil)

		_, err := e.create.Execute(ctx, input(e, writer, o.ID, 100, 48))
		assert.True(t, apperror.IsNotFound(err))
	})

	t.Run("неверифицированный автор", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)
		require.NoError(t, e.store.Writers().Upsert(ctx, entity.NewWriterProfile(writer, time.Now())))

		_, err := e.create.Execute(ctx, input(e, writer, o.ID, 100, 48))
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("клиент не может ставить", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

		_, err := e.create.Execute(ctx, input(e, client, o.ID, 100, 48))
		assert.True(t, apperror.IsForbidden(err))
	})
}

func TestAcceptBid(t *testing.T) {
	ctx := context.Background()

	t.Run("назначает автора и отклоняет остальные ставки", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		admin := e.store.AddUser(valueobject.RoleAdmin)
		w1 := e.store.AddUser(valueobject.RoleWriter)
		w2 := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

		b1, err := e.create.Execute(ctx, input(e, w1, o.ID, 100, 24))
		require.NoError(t, err)
		b2, err := e.create.Execute(ctx, input(e, w2, o.ID, 90, 48))
		require.NoError(t, err)

		res, err := e.accept.Execute(ctx, e.store.Actor(admin), b1.ID)
		require.NoError(t, err)

		assert.Equal(t, valueobject.BidStatusAccepted, e.store.Bid(b1.ID).Status)
		assert.Equal(t, valueobject.BidStatusRejected, e.store.Bid(b2.ID).Status)

		got := e.store.Order(o.ID)
		assert.Equal(t, valueobject.OrderStatusAssigned, got.Status)
		require.NotNil(t, got.WriterID)
		assert.Equal(t, w1, *got.WriterID)

		assert.Equal(t, w1, res.Assignment.WriterID)
		assert.True(t, res.Assignment.PayoutUSD.Equal(decimal.NewFromInt(100)))
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), res.Assignment.DueAt, time.Minute)
		require.Len(t, e.store.AssignmentsOf(o.ID), 1)

		assert.Equal(t, 1, e.store.Notifier.Received(w1, common.EventBidAccepted))
		assert.Equal(t, 1, e.store.Notifier.Received(w2, common.EventBidRejected))
		assert.Equal(t, 1, e.store.Notifier.Received(client, common.EventOrderStatusChanged))
	})

	t.Run("срок не позже дедлайна заказа", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

		b, err := e.create.Execute(ctx, input(e, writer, o.ID, 100, 24*30))
		require.NoError(t, err)
		res, err := e.accept.Execute(ctx, e.store.Actor(client), b.ID)
		require.NoError(t, err)
		assert.True(t, res.Assignment.DueAt.Equal(o.Deadline))
	})

	t.Run("ошибка создания назначения откатывает всё", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		w1 := e.store.AddUser(valueobject.RoleWriter)
		w2 := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)
		b1, err := e.create.Execute(ctx, input(e, w1, o.ID, 100, 24))
		require.NoError(t, err)
		b2, err := e.create.Execute(ctx, input(e, w2, o.ID, 90, 24))
		require.NoError(t, err)

		e.store.FailNext("assignments.create", apperror.New(apperror.ErrCodeDatabaseError, "boom"))
		_, err = e.accept.Execute(ctx, e.store.Actor(client), b1.ID)
		require.Error(t, err)

		assert.Equal(t, valueobject.BidStatusPending, e.store.Bid(b1.ID).Status)
		assert.Equal(t, valueobject.BidStatusPending, e.store.Bid(b2.ID).Status)
		assert.Equal(t, valueobject.OrderStatusAvailable, e.store.Order(o.ID).Status)
		assert.Empty(t, e.store.AssignmentsOf(o.ID))
	})

	t.Run("чужой клиент и автор не могут принять", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		other := e.store.AddUser(valueobject.RoleClient)
		writer := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)
		b, err := e.create.Execute(ctx, input(e, writer, o.ID, 100, 24))
		require.NoError(t, err)

		_, err = e.accept.Execute(ctx, e.store.Actor(other), b.ID)
		assert.True(t, apperror.IsForbidden(err))
		_, err = e.accept.Execute(ctx, e.store.Actor(writer), b.ID)
		assert.True(t, apperror.IsForbidden(err))
	})

	t.Run("вторую ставку на назначенный заказ принять нельзя", func(t *testing.T) {
		e := newEnv()
		client := e.store.AddUser(valueobject.RoleClient)
		w1 := e.store.AddUser(valueobject.RoleWriter)
		w2 := e.store.AddUser(valueobject.RoleWriter)
		o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)
		b1, err := e.create.Execute(ctx, input(e, w1, o.ID, 100, 24))
		require.NoError(t, err)
		b2, err := e.create.Execute(ctx, input(e, w2, o.ID, 100, 24))
		require.NoError(t, err)

		_, err = e.accept.Execute(ctx, e.store.Actor(client), b1.ID)
		require.NoError(t, err)
		_, err = e.accept.Execute(ctx, e.store.Actor(client), b2.ID)
		assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	})
}

func TestTerminalBidsNeverTransition(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	client := e.store.AddUser(valueobject.RoleClient)
	writer := e.store.AddUser(valueobject.RoleWriter)
	o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

	b, err := e.create.Execute(ctx, input(e, writer, o.ID, 100, 24))
	require.NoError(t, err)
	_, err = e.reject.Execute(ctx, e.store.Actor(client), b.ID)
	require.NoError(t, err)

	_, err = e.withdraw.Execute(ctx, e.store.Actor(writer), b.ID)
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	_, err = e.accept.Execute(ctx, e.store.Actor(client), b.ID)
	assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	assert.Equal(t, valueobject.BidStatusRejected, e.store.Bid(b.ID).Status)
}

func TestWithdrawBid(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	client := e.store.AddUser(valueobject.RoleClient)
	writer := e.store.AddUser(valueobject.RoleWriter)
	other := e.store.AddUser(valueobject.RoleWriter)
	o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

	b, err := e.create.Execute(ctx, input(e, writer, o.ID, 100, 24))
	require.NoError(t, err)

	_, err = e.withdraw.Execute(ctx, e.store.Actor(other), b.ID)
	assert.True(t, apperror.IsNotFound(err))

	got, err := e.withdraw.Execute(ctx, e.store.Actor(writer), b.ID)
	require.NoError(t, err)
	assert.Equal(t, valueobject.BidStatusWithdrawn, got.Status)

	// после отзыва можно сделать новую ставку
	_, err = e.create.Execute(ctx, input(e, writer, o.ID, 80, 24))
	assert.NoError(t, err)
}

func TestListBids(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	client := e.store.AddUser(valueobject.RoleClient)
	other := e.store.AddUser(valueobject.RoleClient)
	admin := e.store.AddUser(valueobject.RoleAdmin)
	w1 := e.store.AddUser(valueobject.RoleWriter)
	w2 := e.store.AddUser(valueobject.RoleWriter)
	o := e.store.SeedOrder(client, valueobject.OrderStatusAvailable, nil)

	_, err := e.create.Execute(ctx, input(e, w1, o.ID, 100, 24))
	require.NoError(t, err)
	_, err = e.create.Execute(ctx, input(e, w2, o.ID, 100, 24))
	require.NoError(t, err)

	items, total, err := e.list.Execute(ctx, bid.ListBidsInput{Actor: e.store.Actor(admin)})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, o.Title, items[0].OrderTitle)
	assert.Equal(t, valueobject.VerificationVerified, items[0].WriterVerification)

	_, total, err = e.list.Execute(ctx, bid.ListBidsInput{Actor: e.store.Actor(w1)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = e.list.Execute(ctx, bid.ListBidsInput{Actor: e.store.Actor(client), OrderID: &o.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	_, _, err = e.list.Execute(ctx, bid.ListBidsInput{Actor: e.store.Actor(other), OrderID: &o.ID})
	assert.True(t, apperror.IsNotFound(err))
}
