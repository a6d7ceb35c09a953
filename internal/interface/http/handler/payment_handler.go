package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/dto"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/payment"
)

type PaymentHandler struct {
	listRailsUC     *payment.ListRailsUseCase
	submitPaymentUC *payment.SubmitPaymentUseCase
	listInvoicesUC  *payment.ListInvoicesUseCase
	confirmUC       *payment.ConfirmInvoiceUseCase
	cancelUC        *payment.CancelInvoiceUseCase
	refundUC        *payment.RefundInvoiceUseCase
}

func NewPaymentHandler(
	listRailsUC *payment.ListRailsUseCase,
	submitPaymentUC *payment.SubmitPaymentUseCase,
	listInvoicesUC *payment.ListInvoicesUseCase,
	confirmUC *payment.ConfirmInvoiceUseCase,
	cancelUC *payment.CancelInvoiceUseCase,
	refundUC *payment.RefundInvoiceUseCase,
) *PaymentHandler {
	return &PaymentHandler{
		listRailsUC:     listRailsUC,
		submitPaymentUC: submitPaymentUC,
		listInvoicesUC:  listInvoicesUC,
		confirmUC:       confirmUC,
		cancelUC:        cancelUC,
		refundUC:        refundUC,
	}
}

func (h *PaymentHandler) ListRails(c *gin.Context) {
	response.Success(c, h.listRailsUC.Execute(c.Request.Context()))
}

func (h *PaymentHandler) SubmitPayment(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	var req dto.SubmitPaymentRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.submitPaymentUC.Execute(c.Request.Context(), payment.SubmitPaymentInput{
		Actor:     actor,
		OrderID:   orderID,
		Rail:      req.Rail,
		Reference: req.Reference,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.SubmitPaymentResponse{
		Invoice: dto.ToInvoiceResponse(result.Invoice),
		Order:   dto.ToOrderResponse(result.Order),
	})
}

// ListInvoices: ?order_id=&status=
func (h *PaymentHandler) ListInvoices(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var orderID *uuid.UUID
	if raw := c.Query("order_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "некорректный ID заказа")
			return
		}
		orderID = &id
	}

	limit, offset := pageQuery(c)
	items, total, err := h.listInvoicesUC.Execute(c.Request.Context(), payment.ListInvoicesInput{
		Actor:   actor,
		OrderID: orderID,
		Status:  c.Query("status"),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToInvoiceResponses(items), total, limit, offset)
}

func (h *PaymentHandler) ConfirmInvoice(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(c, "id", "некорректный ID счёта")
	if !ok {
		return
	}

	inv, err := h.confirmUC.Execute(c.Request.Context(), actor, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToInvoiceResponse(inv))
}

func (h *PaymentHandler) CancelInvoice(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(c, "id", "некорректный ID счёта")
	if !ok {
		return
	}

	var req dto.CancelInvoiceRequest
	if !bind(c, &req) {
		return
	}

	inv, err := h.cancelUC.Execute(c.Request.Context(), actor, invoiceID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToInvoiceResponse(inv))
}

func (h *PaymentHandler) RefundInvoice(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	invoiceID, ok := parseIDParam(c, "id", "некорректный ID счёта")
	if !ok {
		return
	}

	inv, err := h.refundUC.Execute(c.Request.Context(), actor, invoiceID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToInvoiceResponse(inv))
}
