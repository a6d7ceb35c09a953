package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/dto"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/bid"
)

type BidHandler struct {
	createBidUC   *bid.CreateBidUseCase
	listBidsUC    *bid.ListBidsUseCase
	acceptBidUC   *bid.AcceptBidUseCase
	rejectBidUC   *bid.RejectBidUseCase
	withdrawBidUC *bid.WithdrawBidUseCase
}

func NewBidHandler(
	createBidUC *bid.CreateBidUseCase,
	listBidsUC *bid.ListBidsUseCase,
	acceptBidUC *bid.AcceptBidUseCase,
	rejectBidUC *bid.RejectBidUseCase,
	withdrawBidUC *bid.WithdrawBidUseCase,
) *BidHandler {
	return &BidHandler{
		createBidUC:   createBidUC,
		listBidsUC:    listBidsUC,
		acceptBidUC:   acceptBidUC,
		rejectBidUC:   rejectBidUC,
		withdrawBidUC: withdrawBidUC,
	}
}

func (h *BidHandler) CreateBid(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	var req dto.CreateBidRequest
	if !bind(c, &req) {
		return
	}
	rate, err := decimal.NewFromString(req.ProposedRate)
	if err != nil {
		response.BadRequest(c, "некорректная ставка")
		return
	}
	perPage, err := decimal.NewFromString(req.PricePerPage)
	if err != nil {
		response.BadRequest(c, "некорректная цена за страницу")
		return
	}

	b, err := h.createBidUC.Execute(c.Request.Context(), bid.CreateBidInput{
		Actor:           actor,
		OrderID:         orderID,
		ProposedRate:    rate,
		PricePerPage:    perPage,
		TimeNeededHours: req.TimeNeededHours,
		CoverLetter:     req.CoverLetter,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToBidResponse(b))
}

// ListBids: ?order_id=&status=
func (h *BidHandler) ListBids(c *gin.Context) {
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
	items, total, err := h.listBidsUC.Execute(c.Request.Context(), bid.ListBidsInput{
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

	response.Paginated(c, dto.ToBidDetailsResponses(items), total, limit, offset)
}

func (h *BidHandler) AcceptBid(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	bidID, ok := parseIDParam(c, "id", "некорректный ID ставки")
	if !ok {
		return
	}

	result, err := h.acceptBidUC.Execute(c.Request.Context(), actor, bidID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.AcceptBidResponse{
		Bid:          dto.ToBidResponse(result.Bid),
		Assignment:   dto.ToAssignmentResponse(result.Assignment),
		Order:        dto.ToOrderResponse(result.Order),
		RejectedBids: dto.ToBidResponses(result.RejectedBids),
	})
}

func (h *BidHandler) RejectBid(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	bidID, ok := parseIDParam(c, "id", "некорректный ID ставки")
	if !ok {
		return
	}

	b, err := h.rejectBidUC.Execute(c.Request.Context(), actor, bidID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidResponse(b))
}

func (h *BidHandler) WithdrawBid(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	bidID, ok := parseIDParam(c, "id", "некорректный ID ставки")
	if !ok {
		return
	}

	b, err := h.withdrawBidUC.Execute(c.Request.Context(), actor, bidID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToBidResponse(b))
}
