package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Profile struct {
	ID        uuid.UUID
	Role      valueobject.Role
	Email     string
	Name      string
	Status    valueobject.ProfileStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewProfile(id uuid.UUID, role valueobject.Role, email, name string, now time.Time) (*Profile, error) {
	if id == uuid.Nil {
		return nil, apperror.Validation("некорректный идентификатор пользователя")
	}
	if !role.IsValid() {
		return nil, apperror.Validation("некорректная роль")
	}
	name = strings.TrimSpace(name)
	if utf8.RuneCountInString(name) > 100 {
		return nil, apperror.Validation("имя не должно превышать 100 символов")
	}
	return &Profile{
		ID:        id,
		Role:      role,
		Email:     strings.TrimSpace(strings.ToLower(email)),
		Name:      name,
		Status:    valueobject.ProfileStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Profile) IsSuspended() bool {
	return p.Status == valueobject.ProfileStatusSuspended
}

type WriterProfile struct {
	UserID             uuid.UUID
	Bio                string
	Skills             []string
	RatePerPageUSD     decimal.Decimal
	VerificationStatus valueobject.VerificationStatus
	VerifiedBy         *uuid.UUID
	VerifiedAt         *time.Time
	Rating             decimal.Decimal
	CompletedOrders    int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func NewWriterProfile(userID uuid.UUID, now time.Time) *WriterProfile {
	return &WriterProfile{
		UserID:             userID,
		Skills:             []string{},
		RatePerPageUSD:     decimal.Zero,
		VerificationStatus: valueobject.VerificationPending,
		Rating:             decimal.Zero,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

// UpdateDetails меняет анкету автора; статус верификации здесь не трогается.
func (w *WriterProfile) UpdateDetails(bio string, skills []string, rate decimal.Decimal, now time.Time) error {
	bio = strings.TrimSpace(bio)
	if utf8.RuneCountInString(bio) > 2000 {
		return apperror.Validation("описание не должно превышать 2000 символов")
	}
	if len(skills) > 30 {
		return apperror.Validation("слишком много навыков")
	}
	if rate.IsNegative() || rate.GreaterThan(valueobject.MaxAmountUSD) {
		return apperror.Validation("некорректная ставка за страницу")
	}
	cleaned := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	w.Bio = bio
	w.Skills = cleaned
	w.RatePerPageUSD = rate.Truncate(2)
	w.UpdatedAt = now
	return nil
}

func (w *WriterProfile) IsVerified() bool {
	return w.VerificationStatus == valueobject.VerificationVerified
}

func (w *WriterProfile) SetVerification(status valueobject.VerificationStatus, admin uuid.UUID, now time.Time) {
	w.VerificationStatus = status
	w.VerifiedBy = &admin
	w.VerifiedAt = &now
	w.UpdatedAt = now
}

// RecordCompletion увеличивает счётчик и пересчитывает средний рейтинг, если оценка есть.
func (w *WriterProfile) RecordCompletion(rating *int, now time.Time) error {
	if rating != nil {
		if *rating < 1 || *rating > 5 {
			return apperror.Validation("оценка должна быть от 1 до 5")
		}
		done := decimal.NewFromInt(int64(w.CompletedOrders))
		total := w.Rating.Mul(done).Add(decimal.NewFromInt(int64(*rating)))
		w.Rating = total.Div(done.Add(decimal.NewFromInt(1))).Round(2)
	}
	w.CompletedOrders++
	w.UpdatedAt = now
	return nil
}
