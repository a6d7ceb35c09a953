package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/profile"
)

// EnsureProfileRequest - роль при первом входе. Email и имя по умолчанию берутся из токена.
type EnsureProfileRequest struct {
	Role  string `json:"role" binding:"required"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

type UpsertWriterProfileRequest struct {
	Bio            string   `json:"bio"`
	Skills         []string `json:"skills"`
	RatePerPageUSD string   `json:"rate_per_page_usd" binding:"required"`
}

type StatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type WriterProfileResponse struct {
	UserID             uuid.UUID       `json:"user_id"`
	Bio                string          `json:"bio"`
	Skills             []string        `json:"skills"`
	RatePerPageUSD     decimal.Decimal `json:"rate_per_page_usd"`
	VerificationStatus string          `json:"verification_status"`
	VerifiedAt         *time.Time      `json:"verified_at"`
	Rating             decimal.Decimal `json:"rating"`
	CompletedOrders    int             `json:"completed_orders"`
}

type MeResponse struct {
	Profile ProfileResponse        `json:"profile"`
	Writer  *WriterProfileResponse `json:"writer,omitempty"`
}

type NotificationResponse struct {
	ID        uuid.UUID       `json:"id"`
	Payload   json.RawMessage `json:"payload"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
}

func ToProfileResponse(p *entity.Profile) ProfileResponse {
	return ProfileResponse{
		ID:        p.ID,
		Role:      string(p.Role),
		Email:     p.Email,
		Name:      p.Name,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	}
}

func ToProfileResponses(items []*entity.Profile) []ProfileResponse {
	out := make([]ProfileResponse, 0, len(items))
	for _, p := range items {
		out = append(out, ToProfileResponse(p))
	}
	return out
}

func ToWriterProfileResponse(w *entity.WriterProfile) WriterProfileResponse {
	skills := w.Skills
	if skills == nil {
		skills = []string{}
	}
	return WriterProfileResponse{
		UserID:             w.UserID,
		Bio:                w.Bio,
		Skills:             skills,
		RatePerPageUSD:     w.RatePerPageUSD,
		VerificationStatus: string(w.VerificationStatus),
		VerifiedAt:         w.VerifiedAt,
		Rating:             w.Rating,
		CompletedOrders:    w.CompletedOrders,
	}
}

func ToWriterProfileResponses(items []*entity.WriterProfile) []WriterProfileResponse {
	out := make([]WriterProfileResponse, 0, len(items))
	for _, w := range items {
		out = append(out, ToWriterProfileResponse(w))
	}
	return out
}

func ToMeResponse(me *profile.Me) MeResponse {
	resp := MeResponse{Profile: ToProfileResponse(me.Profile)}
	if me.Writer != nil {
		w := ToWriterProfileResponse(me.Writer)
		resp.Writer = &w
	}
	return resp
}

func ToNotificationResponses(items []*entity.Notification) []NotificationResponse {
	out := make([]NotificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, NotificationResponse{
			ID:        n.ID,
			Payload:   n.Payload,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	return out
}
