package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/service"
)

// Context ключи для gin.Context.
const (
	ContextUserIDKey = "userID"
	ContextClaimsKey = "claims"
	ContextActorKey  = "actor"
)

var errInvalidToken = apperror.New(apperror.ErrCodeUnauthorized, "токен невалиден")

// ProfileFinder - источник профиля для RequireProfile.
type ProfileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
}

// AuthMiddleware проверяет JWT access токен.
func AuthMiddleware(tokens *service.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			response.Abort(c, apperror.ErrUnauthorized)
			return
		}

		claims, err := tokens.ParseAccess(strings.TrimPrefix(auth, "Bearer "))
		if err != nil {
			response.Abort(c, errInvalidToken)
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// RequireProfile подгружает профиль и кладёт в контекст Actor.
// Роль берётся из профиля, а не из токена.
func RequireProfile(profiles ProfileFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := UserID(c)
		if !ok {
			response.Abort(c, apperror.ErrUnauthorized)
			return
		}

		profile, err := profiles.FindByID(c.Request.Context(), userID)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if profile.Status == valueobject.ProfileStatusSuspended {
			response.Abort(c, apperror.ErrProfileSuspended)
			return
		}

		c.Set(ContextActorKey, policy.Actor{UserID: profile.ID, Role: profile.Role})
		c.Next()
	}
}

// RequireRole пропускает только перечисленные роли. Ставится после RequireProfile.
func RequireRole(roles ...valueobject.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := Actor(c)
		if !ok {
			response.Abort(c, apperror.ErrUnauthorized)
			return
		}
		if err := policy.RequireRole(actor, roles...); err != nil {
			response.Abort(c, err)
			return
		}
		c.Next()
	}
}

func UserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(ContextUserIDKey)
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

func Claims(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(ContextClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok
}

func Actor(c *gin.Context) (policy.Actor, bool) {
	v, ok := c.Get(ContextActorKey)
	if !ok {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	return actor, ok
}
