// Package app собирает use case'ы и обработчики из репозиториев и адаптеров.
package app

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/http/middleware"
	"github.com/ignatzorin/paperdesk-backend/internal/http/router"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/handler"
	"github.com/ignatzorin/paperdesk-backend/internal/service"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/assignment"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/bid"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/dispute"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/message"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/order"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/payment"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/profile"
	"github.com/ignatzorin/paperdesk-backend/internal/ws"
)

type Repositories struct {
	Tx          repository.Transactor
	Profiles    repository.ProfileRepository
	Writers     repository.WriterProfileRepository
	Orders      repository.OrderRepository
	History     repository.OrderHistoryRepository
	Bids        repository.BidRepository
	Assignments repository.AssignmentRepository
	Submissions repository.SubmissionRepository
	Invoices    repository.InvoiceRepository
	Messages    repository.MessageRepository
	Disputes    repository.DisputeRepository
}

type Deps struct {
	Repos         Repositories
	Files         repository.FileStore
	Notifier      repository.Notifier
	Notifications *service.NotificationService
	Rails         payment.Rails
	Hub           *ws.Hub
	Tokens        *service.TokenManager
	DB            handler.DBProbe

	CommissionPct  decimal.Decimal
	UnpaidOrderTTL time.Duration
	AllowedOrigins []string
}

// Container - собранное приложение: обработчики HTTP и фоновые задачи.
type Container struct {
	Handlers    router.Handlers
	Profiles    middleware.ProfileFinder
	ExpireOrder *order.ExpireUnpaidOrdersUseCase
	FlagOverdue *assignment.FlagOverdueAssignmentsUseCase
}

func Build(d Deps) *Container {
	r := d.Repos
	tr := common.NewTransitioner(r.Orders, r.History)
	cascade := common.NewCascade(r.Bids, r.Assignments, r.Invoices, r.Disputes)

	cancelOrder := order.NewCancelOrderUseCase(r.Tx, r.Orders, tr, cascade, d.Notifier)

	return &Container{
		Profiles:    r.Profiles,
		ExpireOrder: order.NewExpireUnpaidOrdersUseCase(r.Orders, cancelOrder, d.UnpaidOrderTTL),
		FlagOverdue: assignment.NewFlagOverdueAssignmentsUseCase(r.Assignments, d.Notifier),
		Handlers: router.Handlers{
			Health: handler.NewHealthHandler(d.DB),
			Profile: handler.NewProfileHandler(
				profile.NewEnsureProfileUseCase(r.Tx, r.Profiles, r.Writers),
				profile.NewGetMeUseCase(r.Profiles, r.Writers),
				profile.NewUpdateMeUseCase(r.Profiles),
				profile.NewUpsertWriterProfileUseCase(r.Tx, r.Writers),
				profile.NewListProfilesUseCase(r.Profiles),
				profile.NewSetProfileStatusUseCase(r.Profiles),
				profile.NewVerifyWriterUseCase(r.Tx, r.Writers, d.Notifier),
				profile.NewListWritersUseCase(r.Writers),
			),
			Order: handler.NewOrderHandler(
				order.NewQuoteUseCase(d.CommissionPct),
				order.NewCreateOrderUseCase(r.Tx, r.Orders, r.Invoices, d.Files, d.CommissionPct),
				order.NewGetOrderUseCase(r.Orders),
				order.NewListOrdersUseCase(r.Orders),
				order.NewGetOrderHistoryUseCase(r.Orders, r.History),
				cancelOrder,
				order.NewOverrideStatusUseCase(r.Tx, r.Orders, tr, cascade, d.Notifier),
				order.NewAddAttachmentsUseCase(r.Orders, d.Files),
				order.NewOpenFileUseCase(r.Orders, d.Files),
			),
			Bid: handler.NewBidHandler(
				bid.NewCreateBidUseCase(r.Bids, r.Orders, r.Writers, d.Notifier),
				bid.NewListBidsUseCase(r.Bids, r.Orders),
				bid.NewAcceptBidUseCase(r.Tx, r.Bids, r.Orders, r.Assignments, tr, d.Notifier),
				bid.NewRejectBidUseCase(r.Bids, r.Orders, d.Notifier),
				bid.NewWithdrawBidUseCase(r.Bids),
			),
			Work: handler.NewWorkHandler(
				assignment.NewListMyAssignmentsUseCase(r.Assignments),
				assignment.NewStartWorkUseCase(r.Tx, r.Assignments, r.Orders, tr, d.Notifier),
				assignment.NewSubmitWorkUseCase(r.Tx, r.Assignments, r.Orders, r.Submissions, tr, d.Files, d.Notifier),
				assignment.NewListSubmissionsUseCase(r.Submissions, r.Orders),
				assignment.NewReviewSubmissionUseCase(r.Tx, r.Submissions, r.Orders, r.Writers, tr, cascade, d.Notifier),
			),
			Payment: handler.NewPaymentHandler(
				payment.NewListRailsUseCase(d.Rails),
				payment.NewSubmitPaymentUseCase(r.Tx, r.Orders, r.Invoices, tr, d.Rails, d.Notifier),
				payment.NewListInvoicesUseCase(r.Invoices),
				payment.NewConfirmInvoiceUseCase(r.Tx, r.Invoices, d.Notifier),
				payment.NewCancelInvoiceUseCase(r.Tx, r.Invoices, r.Orders, tr, d.Notifier),
				payment.NewRefundInvoiceUseCase(r.Tx, r.Invoices, r.Orders),
			),
			Message: handler.NewMessageHandler(
				message.NewSendMessageUseCase(r.Orders, r.Messages, d.Files, d.Notifier),
				message.NewListMessagesUseCase(r.Orders, r.Messages),
				message.NewMarkReadUseCase(r.Messages),
				message.NewUnreadCountUseCase(r.Messages),
			),
			Dispute: handler.NewDisputeHandler(
				dispute.NewOpenDisputeUseCase(r.Tx, r.Orders, r.Disputes, tr, d.Notifier),
				dispute.NewListDisputesUseCase(r.Disputes),
				dispute.NewCloseDisputeUseCase(r.Tx, r.Orders, r.Disputes, tr, d.Notifier),
				dispute.NewReviewDisputeUseCase(r.Disputes),
				dispute.NewResolveDisputeUseCase(r.Tx, r.Orders, r.Disputes, tr, cascade, d.Notifier),
			),
			Notification: handler.NewNotificationHandler(d.Notifications),
			WS:           handler.NewWSHandler(d.Hub, d.Tokens, r.Profiles, d.AllowedOrigins),
		},
	}
}
