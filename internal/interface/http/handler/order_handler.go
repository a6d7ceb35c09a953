package handler

import (
	"mime"
	"net/http"
	"path"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/dto"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/order"
)

type OrderHandler struct {
	quoteUC          *order.QuoteUseCase
	createOrderUC    *order.CreateOrderUseCase
	getOrderUC       *order.GetOrderUseCase
	listOrdersUC     *order.ListOrdersUseCase
	historyUC        *order.GetOrderHistoryUseCase
	cancelOrderUC    *order.CancelOrderUseCase
	overrideStatusUC *order.OverrideStatusUseCase
	addAttachmentsUC *order.AddAttachmentsUseCase
	openFileUC       *order.OpenFileUseCase
}

func NewOrderHandler(
	quoteUC *order.QuoteUseCase,
	createOrderUC *order.CreateOrderUseCase,
	getOrderUC *order.GetOrderUseCase,
	listOrdersUC *order.ListOrdersUseCase,
	historyUC *order.GetOrderHistoryUseCase,
	cancelOrderUC *order.CancelOrderUseCase,
	overrideStatusUC *order.OverrideStatusUseCase,
	addAttachmentsUC *order.AddAttachmentsUseCase,
	openFileUC *order.OpenFileUseCase,
) *OrderHandler {
	return &OrderHandler{
		quoteUC:          quoteUC,
		createOrderUC:    createOrderUC,
		getOrderUC:       getOrderUC,
		listOrdersUC:     listOrdersUC,
		historyUC:        historyUC,
		cancelOrderUC:    cancelOrderUC,
		overrideStatusUC: overrideStatusUC,
		addAttachmentsUC: addAttachmentsUC,
		openFileUC:       openFileUC,
	}
}

// Quote - публичный расчёт цены: ?academic_level=&words=&deadline=
func (h *OrderHandler) Quote(c *gin.Context) {
	words, err := strconv.Atoi(c.Query("words"))
	if err != nil {
		response.BadRequest(c, "параметр words должен быть числом")
		return
	}
	deadline, err := dto.ParseDeadline(c.Query("deadline"))
	if err != nil {
		response.BadRequest(c, "некорректный формат дедлайна")
		return
	}

	quote, err := h.quoteUC.Execute(c.Request.Context(), order.QuoteInput{
		AcademicLevel: c.Query("academic_level"),
		Words:         words,
		Deadline:      deadline,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToQuoteResponse(quote))
}

// CreateOrder принимает JSON или multipart-форму с файлами в поле files.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.CreateOrderRequest
	if !bind(c, &req) {
		return
	}
	draft, err := req.Draft()
	if err != nil {
		response.BadRequest(c, "некорректный формат дедлайна")
		return
	}
	budget, err := dto.ParseMoney(req.BudgetUSD)
	if err != nil {
		response.BadRequest(c, "некорректная сумма бюджета")
		return
	}

	uploads, release, err := formUploads(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer release()

	result, err := h.createOrderUC.Execute(c.Request.Context(), order.CreateOrderInput{
		Actor:     actor,
		Draft:     draft,
		BudgetUSD: budget,
		Files:     uploads,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.CreateOrderResponse{
		Order:   dto.ToOrderResponse(result.Order),
		Invoice: dto.ToInvoiceResponse(result.Invoice),
	})
}

// ListOrders: ?scope=mine|available&status=a,b&category=&academic_level=&search=
func (h *OrderHandler) ListOrders(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var statuses []valueobject.OrderStatus
	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			status, err := valueobject.NewOrderStatus(strings.TrimSpace(s))
			if err != nil {
				response.Error(c, err)
				return
			}
			statuses = append(statuses, status)
		}
	}

	limit, offset := pageQuery(c)
	orders, total, err := h.listOrdersUC.Execute(c.Request.Context(), order.ListOrdersInput{
		Actor:         actor,
		Scope:         c.Query("scope"),
		Statuses:      statuses,
		Category:      c.Query("category"),
		AcademicLevel: c.Query("academic_level"),
		Search:        c.Query("search"),
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToOrderResponses(orders), total, limit, offset)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	o, err := h.getOrderUC.Execute(c.Request.Context(), actor, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponse(o))
}

func (h *OrderHandler) GetHistory(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	items, err := h.historyUC.Execute(c.Request.Context(), actor, orderID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderHistoryResponses(items))
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	var req dto.CancelOrderRequest
	if c.Request.ContentLength > 0 && !bind(c, &req) {
		return
	}

	o, err := h.cancelOrderUC.Execute(c.Request.Context(), actor, orderID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponse(o))
}

func (h *OrderHandler) OverrideStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	var req dto.OverrideStatusRequest
	if !bind(c, &req) {
		return
	}

	o, err := h.overrideStatusUC.Execute(c.Request.Context(), order.OverrideStatusInput{
		Actor:   actor,
		OrderID: orderID,
		Target:  req.Status,
		Reason:  req.Reason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponse(o))
}

func (h *OrderHandler) AddAttachments(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	uploads, release, err := formUploads(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer release()

	o, err := h.addAttachmentsUC.Execute(c.Request.Context(), actor, orderID, uploads)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToOrderResponse(o))
}

// DownloadFile отдаёт вложение заказа, сообщения или сдачи: ?path=bucket/user/name.ext
func (h *OrderHandler) DownloadFile(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}
	filePath := c.Query("path")
	if filePath == "" {
		response.Error(c, apperror.ErrFileNotFound)
		return
	}

	rc, err := h.openFileUC.Execute(c.Request.Context(), actor, orderID, filePath)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer rc.Close()

	name := path.Base(filePath)
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, map[string]string{
		"Content-Disposition": mime.FormatMediaType("attachment", map[string]string{"filename": name}),
	})
}
