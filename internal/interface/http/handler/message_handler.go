package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/dto"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/message"
)

type MessageHandler struct {
	sendUC        *message.SendMessageUseCase
	listUC        *message.ListMessagesUseCase
	markReadUC    *message.MarkReadUseCase
	unreadCountUC *message.UnreadCountUseCase
}

func NewMessageHandler(
	sendUC *message.SendMessageUseCase,
	listUC *message.ListMessagesUseCase,
	markReadUC *message.MarkReadUseCase,
	unreadCountUC *message.UnreadCountUseCase,
) *MessageHandler {
	return &MessageHandler{
		sendUC:        sendUC,
		listUC:        listUC,
		markReadUC:    markReadUC,
		unreadCountUC: unreadCountUC,
	}
}

// SendMessage: без to_user_id сообщение уходит администрации.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !bind(c, &req) {
		return
	}
	var to *uuid.UUID
	if req.ToUserID != "" {
		id, err := uuid.Parse(req.ToUserID)
		if err != nil {
			response.BadRequest(c, "некорректный ID получателя")
			return
		}
		to = &id
	}

	uploads, release, err := formUploads(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer release()

	m, err := h.sendUC.Execute(c.Request.Context(), message.SendMessageInput{
		Actor:    actor,
		OrderID:  orderID,
		ToUserID: to,
		Subject:  req.Subject,
		Body:     req.Body,
		Files:    uploads,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.ToMessageResponse(m))
}

func (h *MessageHandler) ListMessages(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	orderID, ok := parseIDParam(c, "id", "некорректный ID заказа")
	if !ok {
		return
	}

	limit, offset := pageQuery(c)
	items, err := h.listUC.Execute(c.Request.Context(), actor, orderID, limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMessageResponses(items))
}

func (h *MessageHandler) MarkRead(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	messageID, ok := parseIDParam(c, "id", "некорректный ID сообщения")
	if !ok {
		return
	}

	m, err := h.markReadUC.Execute(c.Request.Context(), actor, messageID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMessageResponse(m))
}

func (h *MessageHandler) UnreadCount(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	count, err := h.unreadCountUC.Execute(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}
