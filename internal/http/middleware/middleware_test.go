package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/service"
)

type profilesStub map[uuid.UUID]*entity.Profile

func (p profilesStub) FindByID(_ context.Context, id uuid.UUID) (*entity.Profile, error) {
	if profile, ok := p[id]; ok {
		return profile, nil
	}
	return nil, apperror.ErrProfileNotFound
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(t *testing.T, tokens *service.TokenManager, userID uuid.UUID) string {
	t.Helper()
	tok, err := tokens.Issue(service.Claims{UserID: userID}, time.Minute)
	require.NoError(t, err)
	return "Bearer " + tok
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenManager("secret-secret-secret-secret-secret")
	userID := uuid.New()

	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		id, ok := UserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String())
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, service.NewTokenManager("another-secret-another-secret-xx"), userID))
	w = serve(r, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", bearer(t, tokens, userID))
	w = serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, userID.String(), w.Body.String())
}

func TestRequireProfileAndRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tokens := service.NewTokenManager("secret-secret-secret-secret-secret")
	client := &entity.Profile{ID: uuid.New(), Role: valueobject.RoleClient, Status: valueobject.ProfileStatusActive}
	suspended := &entity.Profile{ID: uuid.New(), Role: valueobject.RoleWriter, Status: valueobject.ProfileStatusSuspended}
	profiles := profilesStub{client.ID: client, suspended.ID: suspended}

	r := gin.New()
	g := r.Group("", AuthMiddleware(tokens), RequireProfile(profiles))
	g.GET("/any", func(c *gin.Context) {
		actor, ok := Actor(c)
		require.True(t, ok)
		assert.Equal(t, policy.Actor{UserID: client.ID, Role: valueobject.RoleClient}, actor)
		c.Status(http.StatusNoContent)
	})
	g.GET("/admin", RequireRole(valueobject.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	cases := []struct {
		name   string
		path   string
		userID uuid.UUID
		want   int
	}{
		{"active client", "/any", client.ID, http.StatusNoContent},
		{"suspended", "/any", suspended.ID, http.StatusForbidden},
		{"no profile", "/any", uuid.New(), http.StatusNotFound},
		{"wrong role", "/admin", client.ID, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tc.path, nil)
			req.Header.Set("Authorization", bearer(t, tokens, tc.userID))
			assert.Equal(t, tc.want, serve(r, req).Code)
		})
	}
}

func TestUUIDValidator(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/orders/:id", UUIDValidator("id"), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/orders/123", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "BAD_REQUEST")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/orders/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/quote", RateLimitMiddleware(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/quote", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/quote", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestErrorHandlerHidesInternalErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/db", func(c *gin.Context) {
		response.Error(c, apperror.Wrap(errors.New("pq: relation \"orders\" does not exist"), apperror.ErrCodeDatabaseError, "не удалось получить заказ"))
	})
	r.GET("/silent", func(c *gin.Context) {
		_ = c.Error(apperror.ErrOrderNotFound)
	})

	w := serve(r, httptest.NewRequest(http.MethodGet, "/db", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "DATABASE_ERROR")
	assert.NotContains(t, w.Body.String(), "relation")

	w = serve(r, httptest.NewRequest(http.MethodGet, "/silent", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "NOT_FOUND")
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Recovery())
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := serve(r, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_ERROR")
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:3000"}))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := serve(r, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = serve(r, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
