package valueobject

import "github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"

type OrderStatus string

const (
	OrderStatusPendingPayment    OrderStatus = "pending_payment"
	OrderStatusAvailable         OrderStatus = "available"
	OrderStatusAssigned          OrderStatus = "assigned"
	OrderStatusInProgress        OrderStatus = "in_progress"
	OrderStatusSubmitted         OrderStatus = "submitted"
	OrderStatusRevisionRequested OrderStatus = "revision_requested"
	OrderStatusCompleted         OrderStatus = "completed"
	OrderStatusDisputed          OrderStatus = "disputed"
	OrderStatusCancelled         OrderStatus = "cancelled"
)

// AllOrderStatuses перечисляет статусы в порядке жизненного цикла.
var AllOrderStatuses = []OrderStatus{
	OrderStatusPendingPayment,
	OrderStatusAvailable,
	OrderStatusAssigned,
	OrderStatusInProgress,
	OrderStatusSubmitted,
	OrderStatusRevisionRequested,
	OrderStatusCompleted,
	OrderStatusDisputed,
	OrderStatusCancelled,
}

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPendingPayment, OrderStatusAvailable, OrderStatusAssigned, OrderStatusInProgress,
		OrderStatusSubmitted, OrderStatusRevisionRequested, OrderStatusCompleted, OrderStatusDisputed,
		OrderStatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCancelled
}

// HasWriter - статусы, в которых к заказу привязан автор.
func (s OrderStatus) HasWriter() bool {
	switch s {
	case OrderStatusAssigned, OrderStatusInProgress, OrderStatusSubmitted, OrderStatusRevisionRequested:
		return true
	}
	return false
}

func NewOrderStatus(status string) (OrderStatus, error) {
	s := OrderStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус заказа")
	}
	return s, nil
}

// OrderEvent - событие, которое двигает заказ по жизненному циклу.
type OrderEvent string

const (
	EventPaymentSubmitted        OrderEvent = "payment_submitted"
	EventPaymentRejected         OrderEvent = "payment_rejected"
	EventWriterAssigned          OrderEvent = "writer_assigned"
	EventWorkStarted             OrderEvent = "work_started"
	EventWorkSubmitted           OrderEvent = "work_submitted"
	EventRevisionRequested       OrderEvent = "revision_requested"
	EventWorkApproved            OrderEvent = "work_approved"
	EventDisputeOpened           OrderEvent = "dispute_opened"
	EventDisputeResolvedComplete OrderEvent = "dispute_resolved_complete"
	EventDisputeResolvedCancel   OrderEvent = "dispute_resolved_cancel"
	EventCancel                  OrderEvent = "cancel"

	// События без строки в таблице: цель задаётся явно и проверяется отдельно.
	EventDisputeClosed OrderEvent = "dispute_closed"
	EventAdminOverride OrderEvent = "admin_override"
)

var orderTransitions = map[OrderStatus]map[OrderEvent]OrderStatus{
	OrderStatusPendingPayment: {
		EventPaymentSubmitted: OrderStatusAvailable,
		EventCancel:           OrderStatusCancelled,
	},
	OrderStatusAvailable: {
		EventPaymentRejected: OrderStatusPendingPayment,
		EventWriterAssigned:  OrderStatusAssigned,
		EventDisputeOpened:   OrderStatusDisputed,
		EventCancel:          OrderStatusCancelled,
	},
	OrderStatusAssigned: {
		EventWorkStarted:   OrderStatusInProgress,
		EventDisputeOpened: OrderStatusDisputed,
		EventCancel:        OrderStatusCancelled,
	},
	OrderStatusInProgress: {
		EventWorkSubmitted: OrderStatusSubmitted,
		EventDisputeOpened: OrderStatusDisputed,
		EventCancel:        OrderStatusCancelled,
	},
	OrderStatusSubmitted: {
		EventRevisionRequested: OrderStatusRevisionRequested,
		EventWorkApproved:      OrderStatusCompleted,
		EventDisputeOpened:     OrderStatusDisputed,
		EventCancel:            OrderStatusCancelled,
	},
	OrderStatusRevisionRequested: {
		EventWorkSubmitted: OrderStatusSubmitted,
		EventDisputeOpened: OrderStatusDisputed,
		EventCancel:        OrderStatusCancelled,
	},
	OrderStatusCompleted: {
		EventDisputeOpened: OrderStatusDisputed,
	},
	OrderStatusDisputed: {
		EventDisputeResolvedComplete: OrderStatusCompleted,
		EventDisputeResolvedCancel:   OrderStatusCancelled,
		EventCancel:                  OrderStatusCancelled,
	},
	OrderStatusCancelled: {},
}

// Next - единственная функция переходов заказа. Любое изменение статуса проходит через неё.
func (s OrderStatus) Next(event OrderEvent) (OrderStatus, error) {
	events, ok := orderTransitions[s]
	if !ok {
		return "", apperror.Validation("некорректный статус заказа")
	}
	next, ok := events[event]
	if !ok {
		return "", apperror.Transition("переход %q недопустим из статуса %q", event, s)
	}
	return next, nil
}

// CanResumeTo проверяет, можно ли вернуть заказ из спора в статус до спора.
func (s OrderStatus) CanResumeTo(previous OrderStatus) bool {
	if s != OrderStatusDisputed || !previous.IsValid() {
		return false
	}
	return previous != OrderStatusDisputed && previous != OrderStatusCancelled &&
		previous != OrderStatusPendingPayment
}

// CanOverrideTo - ручная установка статуса администратором: только известные значения.
func (s OrderStatus) CanOverrideTo(target OrderStatus) error {
	if !target.IsValid() {
		return apperror.Validation("некорректный статус заказа")
	}
	if target == s {
		return apperror.Transition("заказ уже в статусе %q", s)
	}
	return nil
}

type BidStatus string

const (
	BidStatusPending   BidStatus = "pending"
	BidStatusAccepted  BidStatus = "accepted"
	BidStatusRejected  BidStatus = "rejected"
	BidStatusWithdrawn BidStatus = "withdrawn"
)

func (s BidStatus) IsValid() bool {
	switch s {
	case BidStatusPending, BidStatusAccepted, BidStatusRejected, BidStatusWithdrawn:
		return true
	}
	return false
}

// IsTerminal - из принятой, отклонённой или отозванной ставки переходов нет.
func (s BidStatus) IsTerminal() bool {
	return s == BidStatusAccepted || s == BidStatusRejected || s == BidStatusWithdrawn
}

func NewBidStatus(status string) (BidStatus, error) {
	s := BidStatus(status)
	if !s.IsValid() {
		return "", apperror.Validation("некорректный статус ставки")
	}
	return s, nil
}

type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusCompleted AssignmentStatus = "completed"
	AssignmentStatusCancelled AssignmentStatus = "cancelled"
)

type SubmissionStatus string

const (
	SubmissionStatusPending          SubmissionStatus = "pending"
	SubmissionStatusApproved         SubmissionStatus = "approved"
	SubmissionStatusRejected         SubmissionStatus = "rejected"
	SubmissionStatusRevisionRequired SubmissionStatus = "revision_required"
)

// ReviewDecision - решение по сданной работе.
type ReviewDecision string

const (
	DecisionApprove          ReviewDecision = "approve"
	DecisionRevisionRequired ReviewDecision = "revision_required"
	DecisionReject           ReviewDecision = "reject"
)

func NewReviewDecision(v string) (ReviewDecision, error) {
	d := ReviewDecision(v)
	switch d {
	case DecisionApprove, DecisionRevisionRequired, DecisionReject:
		return d, nil
	}
	return "", apperror.Validation("некорректное решение по работе")
}

type InvoiceStatus string

const (
	InvoiceStatusUnpaid    InvoiceStatus = "unpaid"
	InvoiceStatusPending   InvoiceStatus = "pending"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusRefunded  InvoiceStatus = "refunded"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPending, InvoiceStatusPaid, InvoiceStatusRefunded, InvoiceStatusCancelled:
		return true
	}
	return false
}

// IsOpen - счёт ещё участвует в оплате заказа.
func (s InvoiceStatus) IsOpen() bool {
	return s == InvoiceStatusUnpaid || s == InvoiceStatusPending || s == InvoiceStatusPaid
}

type DisputeStatus string

const (
	DisputeStatusOpen     DisputeStatus = "open"
	DisputeStatusInReview DisputeStatus = "in_review"
	DisputeStatusResolved DisputeStatus = "resolved"
	DisputeStatusClosed   DisputeStatus = "closed"
)

func (s DisputeStatus) IsActive() bool {
	return s == DisputeStatusOpen || s == DisputeStatusInReview
}

// DisputeOutcome - чем закончился спор для заказа.
type DisputeOutcome string

const (
	OutcomeComplete DisputeOutcome = "complete"
	OutcomeCancel   DisputeOutcome = "cancel"
	OutcomeResume   DisputeOutcome = "resume"
)

func NewDisputeOutcome(v string) (DisputeOutcome, error) {
	o := DisputeOutcome(v)
	switch o {
	case OutcomeComplete, OutcomeCancel, OutcomeResume:
		return o, nil
	}
	return "", apperror.Validation("некорректный исход спора")
}

type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

func NewVerificationStatus(v string) (VerificationStatus, error) {
	s := VerificationStatus(v)
	switch s {
	case VerificationPending, VerificationVerified, VerificationRejected:
		return s, nil
	}
	return "", apperror.Validation("некорректный статус верификации")
}

type ProfileStatus string

const (
	ProfileStatusActive    ProfileStatus = "active"
	ProfileStatusSuspended ProfileStatus = "suspended"
)

func NewProfileStatus(v string) (ProfileStatus, error) {
	s := ProfileStatus(v)
	if s != ProfileStatusActive && s != ProfileStatusSuspended {
		return "", apperror.Validation("некорректный статус профиля")
	}
	return s, nil
}
