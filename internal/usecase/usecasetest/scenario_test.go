package usecasetest_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	rail "github.com/ignatzorin/paperdesk-backend/internal/payment"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/assignment"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/bid"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/order"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/payment"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/usecasetest"
)

// Полный путь заказа: создание, оплата, ставка, назначение, сдача и приёмка.
func TestOrderLifecycle(t *testing.T) {
	ctx := context.Background()
	s := usecasetest.NewStore()
	registry, err := rail.Load("")
	require.NoError(t, err)

	tr := common.NewTransitioner(s.Orders(), s.History())
	cascade := common.NewCascade(s.Bids(), s.Assignments(), s.Invoices(), s.Disputes())

	client := s.AddUser(valueobject.RoleClient)
	writer := s.AddUser(valueobject.RoleWriter)
	admin := s.AddUser(valueobject.RoleAdmin)

	// 550 слов, бакалавриат, 5 дней: 2 страницы по 20 USD с коэффициентом 1.5
	created, err := order.NewCreateOrderUseCase(s.Transactor(), s.Orders(), s.Invoices(), s.Files, usecasetest.Commission).
		Execute(ctx, order.CreateOrderInput{
			Actor: s.Actor(client),
			Draft: entity.OrderDraft{
				Title:         "Реферат по социологии",
				Description:   "Обзор теорий социальной стратификации",
				Category:      "sociology",
				AcademicLevel: "undergraduate",
				Words:         550,
				Deadline:      time.Now().Add(5 * 24 * time.Hour),
			},
		})
	require.NoError(t, err)
	assert.Equal(t, 2, created.Order.Pages)
	assert.Equal(t, "60", created.Order.BudgetUSD.String())
	assert.Equal(t, "42", created.Order.WriterPoolUSD.String())
	assert.Equal(t, valueobject.OrderStatusPendingPayment, created.Order.Status)
	assert.Equal(t, valueobject.InvoiceStatusUnpaid, created.Invoice.Status)

	paid, err := payment.NewSubmitPaymentUseCase(s.Transactor(), s.Orders(), s.Invoices(), tr, registry, s.Notifier).
		Execute(ctx, payment.SubmitPaymentInput{
			Actor:     s.Actor(client),
			OrderID:   created.Order.ID,
			Rail:      "btc",
			Reference: "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b",
		})
	require.NoError(t, err)
	assert.Equal(t, valueobject.InvoiceStatusPending, paid.Invoice.Status)
	assert.Equal(t, valueobject.OrderStatusAvailable, s.Order(created.Order.ID).Status)

	_, err = payment.NewConfirmInvoiceUseCase(s.Transactor(), s.Invoices(), s.Notifier).Execute(ctx, s.Actor(admin), paid.Invoice.ID)
	require.NoError(t, err)

	placed, err := bid.NewCreateBidUseCase(s.Bids(), s.Orders(), s.Writers(), s.Notifier).
		Execute(ctx, bid.CreateBidInput{
			Actor:           s.Actor(writer),
			OrderID:         created.Order.ID,
			ProposedRate:    decimal.NewFromInt(40),
			PricePerPage:    decimal.NewFromInt(20),
			TimeNeededHours: 72,
			CoverLetter:     "Пишу по социологии пятый год",
		})
	require.NoError(t, err)
	assert.Equal(t, valueobject.BidStatusPending, placed.Status)

	accepted, err := bid.NewAcceptBidUseCase(s.Transactor(), s.Bids(), s.Orders(), s.Assignments(), tr, s.Notifier).
		Execute(ctx, s.Actor(client), placed.ID)
	require.NoError(t, err)
	require.NotNil(t, accepted.Assignment)
	assert.Equal(t, writer, accepted.Assignment.WriterID)
	assert.Equal(t, valueobject.OrderStatusAssigned, s.Order(created.Order.ID).Status)
	assert.Equal(t, 1, s.Notifier.Received(writer, common.EventBidAccepted))

	submitted, err := assignment.NewSubmitWorkUseCase(s.Transactor(), s.Assignments(), s.Orders(), s.Submissions(), tr, s.Files, s.Notifier).
		Execute(ctx, assignment.SubmitWorkInput{
			Actor:        s.Actor(writer),
			AssignmentID: accepted.Assignment.ID,
			Message:      "Готово",
			Files:        []common.Upload{{Name: "essay.docx", Reader: strings.NewReader("text")}},
		})
	require.NoError(t, err)
	assert.Equal(t, 1, submitted.Submission.Version)
	assert.Equal(t, valueobject.OrderStatusSubmitted, submitted.Order.Status)

	rating := 5
	_, err = assignment.NewReviewSubmissionUseCase(s.Transactor(), s.Submissions(), s.Orders(), s.Writers(), tr, cascade, s.Notifier).
		Execute(ctx, assignment.ReviewSubmissionInput{
			Actor:        s.Actor(client),
			SubmissionID: submitted.Submission.ID,
			Decision:     "approve",
			Rating:       &rating,
		})
	require.NoError(t, err)
	assert.Equal(t, valueobject.OrderStatusCompleted, s.Order(created.Order.ID).Status)
	assert.Equal(t, valueobject.AssignmentStatusCompleted, s.AssignmentsOf(created.Order.ID)[0].Status)
	assert.Equal(t, 1, s.Writer(writer).CompletedOrders)

	history, err := order.NewGetOrderHistoryUseCase(s.Orders(), s.History()).Execute(ctx, s.Actor(client), created.Order.ID)
	require.NoError(t, err)
	var to []valueobject.OrderStatus
	for _, h := range history {
		to = append(to, h.ToStatus)
	}
	assert.Equal(t, []valueobject.OrderStatus{
		valueobject.OrderStatusAvailable,
		valueobject.OrderStatusAssigned,
		valueobject.OrderStatusInProgress,
		valueobject.OrderStatusSubmitted,
		valueobject.OrderStatusCompleted,
	}, to)
}
