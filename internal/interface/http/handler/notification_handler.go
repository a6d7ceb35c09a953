package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/dto"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/service"
)

// NotificationHandler обслуживает маршруты уведомлений.
type NotificationHandler struct {
	notifications *service.NotificationService
}

func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications обрабатывает GET /notifications?unread_only=true
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	limit, offset := pageQuery(c)
	items, err := h.notifications.ListNotifications(c.Request.Context(), actor.UserID, limit, offset, c.Query("unread_only") == "true")
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToNotificationResponses(items))
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	count, err := h.notifications.CountUnread(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id", "неверный идентификатор уведомления")
	if !ok {
		return
	}

	if err := h.notifications.MarkAsRead(c.Request.Context(), id, actor.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"id": id, "is_read": true})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	if err := h.notifications.MarkAllAsRead(c.Request.Context(), actor.UserID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"ok": true})
}
