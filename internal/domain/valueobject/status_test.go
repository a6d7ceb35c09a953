package valueobject

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

func TestOrderStatus_HappyPath(t *testing.T) {
	steps := []struct {
		event OrderEvent
		want  OrderStatus
	}{
		{EventPaymentSubmitted, OrderStatusAvailable},
		{EventWriterAssigned, OrderStatusAssigned},
		{EventWorkStarted, OrderStatusInProgress},
		{EventWorkSubmitted, OrderStatusSubmitted},
		{EventRevisionRequested, OrderStatusRevisionRequested},
		{EventWorkSubmitted, OrderStatusSubmitted},
		{EventWorkApproved, OrderStatusCompleted},
	}

	status := OrderStatusPendingPayment
	for _, step := range steps {
		next, err := status.Next(step.event)
		require.NoError(t, err, "event %s from %s", step.event, status)
		assert.Equal(t, step.want, next)
		status = next
	}
}

func TestOrderStatus_RejectsIllegalEdges(t *testing.T) {
	cases := []struct {
		from  OrderStatus
		event OrderEvent
	}{
		{OrderStatusPendingPayment, EventWriterAssigned},
		{OrderStatusAvailable, EventWorkApproved},
		{OrderStatusAssigned, EventWorkSubmitted},
		{OrderStatusCompleted, EventCancel},
		{OrderStatusCancelled, EventPaymentSubmitted},
		{OrderStatusCancelled, EventDisputeOpened},
		{OrderStatusPendingPayment, EventDisputeOpened},
	}

	for _, tc := range cases {
		_, err := tc.from.Next(tc.event)
		require.Error(t, err, "%s -> %s", tc.from, tc.event)
		assert.Equal(t, apperror.ErrCodeInvalidTransition, apperror.CodeOf(err))
	}
}

func TestOrderStatus_EveryTransitionLandsOnDefinedStatus(t *testing.T) {
	events := []OrderEvent{
		EventPaymentSubmitted, EventPaymentRejected, EventWriterAssigned, EventWorkStarted,
		EventWorkSubmitted, EventRevisionRequested, EventWorkApproved, EventDisputeOpened,
		EventDisputeResolvedComplete, EventDisputeResolvedCancel, EventCancel,
		EventDisputeClosed, EventAdminOverride, OrderEvent("teleport"),
	}

	for _, from := range AllOrderStatuses {
		for _, ev := range events {
			next, err := from.Next(ev)
			if err != nil {
				continue
			}
			assert.True(t, next.IsValid(), "%s -(%s)-> %q", from, ev, next)
		}
	}
}

func TestOrderStatus_UnknownStatus(t *testing.T) {
	_, err := OrderStatus("archived").Next(EventCancel)
	assert.True(t, apperror.IsValidation(err))

	_, err = NewOrderStatus("archived")
	assert.Error(t, err)
}

func TestOrderStatus_CanOverrideTo(t *testing.T) {
	assert.NoError(t, OrderStatusAvailable.CanOverrideTo(OrderStatusCancelled))
	assert.True(t, apperror.IsValidation(OrderStatusAvailable.CanOverrideTo("paid")))
	assert.True(t, apperror.IsConflict(OrderStatusAvailable.CanOverrideTo(OrderStatusAvailable)))
}

func TestOrderStatus_CanResumeTo(t *testing.T) {
	assert.True(t, OrderStatusDisputed.CanResumeTo(OrderStatusInProgress))
	assert.True(t, OrderStatusDisputed.CanResumeTo(OrderStatusCompleted))
	assert.False(t, OrderStatusDisputed.CanResumeTo(OrderStatusCancelled))
	assert.False(t, OrderStatusDisputed.CanResumeTo(OrderStatusDisputed))
	assert.False(t, OrderStatusAssigned.CanResumeTo(OrderStatusInProgress))
}

func TestBidStatus_Terminal(t *testing.T) {
	assert.False(t, BidStatusPending.IsTerminal())
	assert.True(t, BidStatusAccepted.IsTerminal())
	assert.True(t, BidStatusRejected.IsTerminal())
	assert.True(t, BidStatusWithdrawn.IsTerminal())
}
