package handler

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/http/middleware"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/logger"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/service"
	"github.com/ignatzorin/paperdesk-backend/internal/ws"
)

// WSHandler отвечает за установку WebSocket соединений.
type WSHandler struct {
	hub      *ws.Hub
	tokens   *service.TokenManager
	profiles middleware.ProfileFinder
	upgrader websocket.Upgrader
}

// NewWSHandler: браузерные подключения принимаются только с allowedOrigins,
// запросы без Origin (не из браузера) пропускаются.
func NewWSHandler(hub *ws.Hub, tokens *service.TokenManager, profiles middleware.ProfileFinder, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		hub:      hub,
		tokens:   tokens,
		profiles: profiles,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Handle обслуживает GET /api/ws?token=... Браузер не умеет ставить заголовок
// Authorization при upgrade, поэтому токен идёт в query.
func (h *WSHandler) Handle(c *gin.Context) {
	rawToken := c.Query("token")
	if rawToken == "" {
		response.Unauthorized(c, "access токен обязателен")
		return
	}

	claims, err := h.tokens.ParseAccess(rawToken)
	if err != nil {
		response.Unauthorized(c, "невалидный access токен")
		return
	}

	profile, err := h.profiles.FindByID(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	if profile.Status == valueobject.ProfileStatusSuspended {
		response.Error(c, apperror.ErrProfileSuspended)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade уже ответил клиенту.
		logger.Log.WithFields(logrus.Fields{"user_id": claims.UserID}).WithError(err).Debug("ws: upgrade не удался")
		return
	}

	ws.NewClient(conn, h.hub, claims.UserID).Run(c.Request.Context())
}
