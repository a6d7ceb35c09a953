package common

import (
	"context"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

const (
	EventOrderStatusChanged = "order.status_changed"
	EventBidCreated         = "bid.created"
	EventBidAccepted        = "bid.accepted"
	EventBidRejected        = "bid.rejected"
	EventSubmissionCreated  = "submission.created"
	EventSubmissionReviewed = "submission.reviewed"
	EventMessageNew         = "message.new"
	EventInvoicePending     = "invoice.pending"
	EventInvoiceConfirmed   = "invoice.confirmed"
	EventInvoiceCancelled   = "invoice.cancelled"
	EventDisputeOpened      = "dispute.opened"
	EventDisputeResolved    = "dispute.resolved"
	EventAssignmentOverdue  = "assignment.overdue"
	EventWriterVerification = "writer.verification_changed"
)

// NotifyStatusChanged сообщает клиенту и назначенному автору о новом статусе заказа.
func NotifyStatusChanged(ctx context.Context, n repository.Notifier, order *entity.Order, from valueobject.OrderStatus) {
	if n == nil {
		return
	}
	data := map[string]any{
		"order_id": order.ID,
		"from":     from,
		"to":       order.Status,
	}
	n.NotifyUser(ctx, order.ClientID, EventOrderStatusChanged, data)
	if order.WriterID != nil {
		n.NotifyUser(ctx, *order.WriterID, EventOrderStatusChanged, data)
	}
}
