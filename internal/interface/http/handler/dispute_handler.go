package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/dto"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/dispute"
)

type DisputeHandler struct {
	openUC    *dispute.OpenDisputeUseCase
	listUC    *dispute.ListDisputesUseCase
	closeUC   *dispute.CloseDisputeUseCase
	reviewUC  *dispute.ReviewDisputeUseCase
	resolveUC *dispute.ResolveDisputeUseCase
}

func NewDisputeHandler(
	openUC *dispute.OpenDisputeUseCase,
	listUC *dispute.ListDisputesUseCase,
	closeUC *dispute.CloseDisputeUseCase,
	reviewUC *dispute.ReviewDisputeUseCase,
	resolveUC *dispute.ResolveDisputeUseCase,
) *DisputeHandler {
	return &DisputeHandler{
		openUC:    openUC,
		listUC:    listUC,
		closeUC:   closeUC,
		reviewUC:  reviewUC,
		resolveUC: resolveUC,
	}
}

func (h *DisputeHandler) OpenDispute(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	var req dto.OpenDisputeRequest
	if !bind(c, &req) {
		return
	}

	d, err := h.openUC.Execute(c.Request.Context(), actor, orderID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToDisputeResponse(d))
}

func (h *DisputeHandler) ListDisputes(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	limit, offset := pageQuery(c)
	items, total, err := h.listUC.Execute(c.Request.Context(), dispute.ListDisputesInput{
		Actor:  actor,
		Status: c.Query("status"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToDisputeResponses(items), total, limit, offset)
}

func (h *DisputeHandler) CloseDispute(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	disputeID, ok := parseIDParam(c, "id", "некорректный ID спора")
	if !ok {
		return
	}

	d, err := h.closeUC.Execute(c.Request.Context(), actor, disputeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDisputeResponse(d))
}

func (h *DisputeHandler) ReviewDispute(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	disputeID, ok := parseIDParam(c, "id", "некорректный ID спора")
	if !ok {
		return
	}

	d, err := h.reviewUC.Execute(c.Request.Context(), actor, disputeID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToDisputeResponse(d))
}

func (h *DisputeHandler) ResolveDispute(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	disputeID, ok := parseIDParam(c, "id", "некорректный ID спора")
	if !ok {
		return
	}

	var req dto.ResolveDisputeRequest
	if !bind(c, &req) {
		return
	}

	result, err := h.resolveUC.Execute(c.Request.Context(), dispute.ResolveDisputeInput{
		Actor:      actor,
		DisputeID:  disputeID,
		Outcome:    req.Outcome,
		Resolution: req.Resolution,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ResolveDisputeResponse{
		Dispute: dto.ToDisputeResponse(result.Dispute),
		Order:   dto.ToOrderResponse(result.Order),
	})
}
