package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/http/middleware"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/dto"
	"github.com/ignatzorin/paperdesk-backend/internal/interface/http/response"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/profile"
)

type ProfileHandler struct {
	ensureUC       *profile.EnsureProfileUseCase
	getMeUC        *profile.GetMeUseCase
	updateMeUC     *profile.UpdateMeUseCase
	upsertWriterUC *profile.UpsertWriterProfileUseCase
	listProfilesUC *profile.ListProfilesUseCase
	setStatusUC    *profile.SetProfileStatusUseCase
	verifyWriterUC *profile.VerifyWriterUseCase
	listWritersUC  *profile.ListWritersUseCase
}

func NewProfileHandler(
	ensureUC *profile.EnsureProfileUseCase,
	getMeUC *profile.GetMeUseCase,
	updateMeUC *profile.UpdateMeUseCase,
	upsertWriterUC *profile.UpsertWriterProfileUseCase,
	listProfilesUC *profile.ListProfilesUseCase,
	setStatusUC *profile.SetProfileStatusUseCase,
	verifyWriterUC *profile.VerifyWriterUseCase,
	listWritersUC *profile.ListWritersUseCase,
) *ProfileHandler {
	return &ProfileHandler{
		ensureUC:       ensureUC,
		getMeUC:        getMeUC,
		updateMeUC:     updateMeUC,
		upsertWriterUC: upsertWriterUC,
		listProfilesUC: listProfilesUC,
		setStatusUC:    setStatusUC,
		verifyWriterUC: verifyWriterUC,
		listWritersUC:  listWritersUC,
	}
}

// EnsureProfile создаёт профиль при первом входе. Работает без RequireProfile:
// профиля ещё может не быть.
func (h *ProfileHandler) EnsureProfile(c *gin.Context) {
	claims, ok := middleware.Claims(c)
	if !ok {
		response.Error(c, apperror.ErrUnauthorized)
		return
	}

	var req dto.EnsureProfileRequest
	if !bind(c, &req) {
		return
	}
	email, name := req.Email, req.Name
	if email == "" {
		email = claims.Email
	}
	if name == "" {
		name = claims.Name
	}

	me, created, err := h.ensureUC.Execute(c.Request.Context(), profile.EnsureProfileInput{
		UserID: claims.UserID,
		Role:   req.Role,
		Email:  email,
		Name:   name,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	if created {
		response.Created(c, dto.ToMeResponse(me))
		return
	}
	response.Success(c, dto.ToMeResponse(me))
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	me, err := h.getMeUC.Execute(c.Request.Context(), actor.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToMeResponse(me))
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bind(c, &req) {
		return
	}

	p, err := h.updateMeUC.Execute(c.Request.Context(), actor.UserID, req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProfileResponse(p))
}

func (h *ProfileHandler) UpsertWriterProfile(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	var req dto.UpsertWriterProfileRequest
	if !bind(c, &req) {
		return
	}
	rate, err := decimal.NewFromString(req.RatePerPageUSD)
	if err != nil {
		response.BadRequest(c, "некорректная ставка за страницу")
		return
	}

	w, err := h.upsertWriterUC.Execute(c.Request.Context(), profile.UpsertWriterProfileInput{
		Actor:          actor,
		Bio:            req.Bio,
		Skills:         req.Skills,
		RatePerPageUSD: rate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWriterProfileResponse(w))
}

// ListWriters: ?status=verified|pending|rejected (кроме verified - только администратор).
func (h *ProfileHandler) ListWriters(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	limit, offset := pageQuery(c)
	items, total, err := h.listWritersUC.Execute(c.Request.Context(), actor, c.Query("status"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToWriterProfileResponses(items), total, limit, offset)
}

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}

	limit, offset := pageQuery(c)
	items, total, err := h.listProfilesUC.Execute(c.Request.Context(), actor, c.Query("role"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, dto.ToProfileResponses(items), total, limit, offset)
}

func (h *ProfileHandler) SetProfileStatus(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	userID, ok := parseIDParam(c, "id", "некорректный ID пользователя")
	if !ok {
		return
	}

	var req dto.StatusRequest
	if !bind(c, &req) {
		return
	}

	p, err := h.setStatusUC.Execute(c.Request.Context(), actor, userID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToProfileResponse(p))
}

func (h *ProfileHandler) VerifyWriter(c *gin.Context) {
	actor, ok := getActor(c)
	if !ok {
		return
	}
	writerID, ok := parseIDParam(c, "id", "некорректный ID автора")
	if !ok {
		return
	}

	var req dto.StatusRequest
	if !bind(c, &req) {
		return
	}

	w, err := h.verifyWriterUC.Execute(c.Request.Context(), actor, writerID, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, dto.ToWriterProfileResponse(w))
}
