package profile

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/policy"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

// Me - профиль пользователя вместе с анкетой автора, если она есть.
type Me struct {
	Profile *entity.Profile
	Writer  *entity.WriterProfile
}

type EnsureProfileInput struct {
	UserID uuid.UUID
	Role   string
	Email  string
	Name   string
}

type EnsureProfileUseCase struct {
	tx          repository.Transactor
	profileRepo repository.ProfileRepository
	writerRepo  repository.WriterProfileRepository
}

func NewEnsureProfileUseCase(
	tx repository.Transactor,
	profileRepo repository.ProfileRepository,
	writerRepo repository.WriterProfileRepository,
) *EnsureProfileUseCase {
	return &EnsureProfileUseCase{tx: tx, profileRepo: profileRepo, writerRepo: writerRepo}
}

// Execute создаёт профиль по данным токена. Повторный вызов возвращает существующий профиль.
func (uc *EnsureProfileUseCase) Execute(ctx context.Context, input EnsureProfileInput) (*Me, bool, error) {
	if existing, err := uc.profileRepo.FindByID(ctx, input.UserID); err == nil {
		me, err := loadMe(ctx, uc.writerRepo, existing)
		return me, false, err
	} else if !apperror.IsNotFound(err) {
		return nil, false, err
	}

	role, err := valueobject.NewRole(input.Role)
	if err != nil {
		return nil, false, err
	}
	if role == valueobject.RoleAdmin {
		return nil, false, apperror.New(apperror.ErrCodeForbidden, "профиль администратора создаётся только администратором")
	}

	now := time.Now().UTC()
	p, err := entity.NewProfile(input.UserID, role, input.Email, input.Name, now)
	if err != nil {
		return nil, false, err
	}
	me := &Me{Profile: p}
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := uc.profileRepo.Create(ctx, p); err != nil {
			return err
		}
		if role == valueobject.RoleWriter {
			me.Writer = entity.NewWriterProfile(p.ID, now)
			return uc.writerRepo.Upsert(ctx, me.Writer)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return me, true, nil
}

type GetMeUseCase struct {
	profileRepo repository.ProfileRepository
	writerRepo  repository.WriterProfileRepository
}

func NewGetMeUseCase(profileRepo repository.ProfileRepository, writerRepo repository.WriterProfileRepository) *GetMeUseCase {
	return &GetMeUseCase{profileRepo: profileRepo, writerRepo: writerRepo}
}

func (uc *GetMeUseCase) Execute(ctx context.Context, userID uuid.UUID) (*Me, error) {
	p, err := uc.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return loadMe(ctx, uc.writerRepo, p)
}

type UpdateMeUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewUpdateMeUseCase(profileRepo repository.ProfileRepository) *UpdateMeUseCase {
	return &UpdateMeUseCase{profileRepo: profileRepo}
}

func (uc *UpdateMeUseCase) Execute(ctx context.Context, userID uuid.UUID, name string) (*entity.Profile, error) {
	p, err := uc.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	// NewProfile валидирует имя теми же правилами
	checked, err := entity.NewProfile(p.ID, p.Role, p.Email, name, p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Name = checked.Name
	p.UpdatedAt = time.Now().UTC()
	if err := uc.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type UpsertWriterProfileInput struct {
	Actor          policy.Actor
	Bio            string
	Skills         []string
	RatePerPageUSD decimal.Decimal
}

type UpsertWriterProfileUseCase struct {
	tx         repository.Transactor
	writerRepo repository.WriterProfileRepository
}

func NewUpsertWriterProfileUseCase(tx repository.Transactor, writerRepo repository.WriterProfileRepository) *UpsertWriterProfileUseCase {
	return &UpsertWriterProfileUseCase{tx: tx, writerRepo: writerRepo}
}

func (uc *UpsertWriterProfileUseCase) Execute(ctx context.Context, input UpsertWriterProfileInput) (*entity.WriterProfile, error) {
	if err := policy.RequireRole(input.Actor, valueobject.RoleWriter); err != nil {
		return nil, err
	}
	var w *entity.WriterProfile
	err := uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		var err error
		w, err = uc.writerRepo.FindByUserIDForUpdate(ctx, input.Actor.UserID)
		if apperror.IsNotFound(err) {
			w = entity.NewWriterProfile(input.Actor.UserID, now)
		} else if err != nil {
			return err
		}
		if err := w.UpdateDetails(input.Bio, input.Skills, input.RatePerPageUSD, now); err != nil {
			return err
		}
		return uc.writerRepo.Upsert(ctx, w)
	})
	if err != nil {
		return nil, err
	}
	return w, nil
}

type ListProfilesUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewListProfilesUseCase(profileRepo repository.ProfileRepository) *ListProfilesUseCase {
	return &ListProfilesUseCase{profileRepo: profileRepo}
}

func (uc *ListProfilesUseCase) Execute(ctx context.Context, actor policy.Actor, role string, limit, offset int) ([]*entity.Profile, int, error) {
	if err := policy.RequireRole(actor, valueobject.RoleAdmin); err != nil {
		return nil, 0, err
	}
	var r valueobject.Role
	if role != "" {
		var err error
		if r, err = valueobject.NewRole(role); err != nil {
			return nil, 0, err
		}
	}
	return uc.profileRepo.List(ctx, r, limit, offset)
}

type SetProfileStatusUseCase struct {
	profileRepo repository.ProfileRepository
}

func NewSetProfileStatusUseCase(profileRepo repository.ProfileRepository) *SetProfileStatusUseCase {
	return &SetProfileStatusUseCase{profileRepo: profileRepo}
}

func (uc *SetProfileStatusUseCase) Execute(ctx context.Context, actor policy.Actor, userID uuid.UUID, status string) (*entity.Profile, error) {
	if err := policy.RequireRole(actor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	s, err := valueobject.NewProfileStatus(status)
	if err != nil {
		return nil, err
	}
	if userID == actor.UserID && s == valueobject.ProfileStatusSuspended {
		return nil, apperror.New(apperror.ErrCodeBadRequest, "нельзя заблокировать собственный профиль")
	}
	p, err := uc.profileRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p.Status == s {
		return p, nil
	}
	p.Status = s
	p.UpdatedAt = time.Now().UTC()
	if err := uc.profileRepo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

type VerifyWriterUseCase struct {
	tx         repository.Transactor
	writerRepo repository.WriterProfileRepository
	notifier   repository.Notifier
}

func NewVerifyWriterUseCase(tx repository.Transactor, writerRepo repository.WriterProfileRepository, notifier repository.Notifier) *VerifyWriterUseCase {
	return &VerifyWriterUseCase{tx: tx, writerRepo: writerRepo, notifier: notifier}
}

// Execute выставляет автору verified или rejected; только верифицированный автор может делать ставки.
func (uc *VerifyWriterUseCase) Execute(ctx context.Context, actor policy.Actor, writerID uuid.UUID, status string) (*entity.WriterProfile, error) {
	if err := policy.RequireRole(actor, valueobject.RoleAdmin); err != nil {
		return nil, err
	}
	s, err := valueobject.NewVerificationStatus(status)
	if err != nil {
		return nil, err
	}
	if s == valueobject.VerificationPending {
		return nil, apperror.Validation("решение должно быть verified или rejected")
	}

	var w *entity.WriterProfile
	err = uc.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if w, err = uc.writerRepo.FindByUserIDForUpdate(ctx, writerID); err != nil {
			return err
		}
		w.SetVerification(s, actor.UserID, time.Now().UTC())
		return uc.writerRepo.Upsert(ctx, w)
	})
	if err != nil {
		return nil, err
	}

	uc.notifier.NotifyUser(ctx, writerID, common.EventWriterVerification, map[string]any{
		"status": w.VerificationStatus,
	})
	return w, nil
}

type ListWritersUseCase struct {
	writerRepo repository.WriterProfileRepository
}

func NewListWritersUseCase(writerRepo repository.WriterProfileRepository) *ListWritersUseCase {
	return &ListWritersUseCase{writerRepo: writerRepo}
}

// Execute: администратор видит анкеты в любом статусе, остальные - только верифицированные.
func (uc *ListWritersUseCase) Execute(ctx context.Context, actor policy.Actor, status string, limit, offset int) ([]*entity.WriterProfile, int, error) {
	var s valueobject.VerificationStatus
	if status != "" {
		var err error
		if s, err = valueobject.NewVerificationStatus(status); err != nil {
			return nil, 0, err
		}
	}
	if !actor.IsAdmin() {
		if s != "" && s != valueobject.VerificationVerified {
			return nil, 0, apperror.ErrForbidden
		}
		s = valueobject.VerificationVerified
	}
	return uc.writerRepo.List(ctx, s, limit, offset)
}

func loadMe(ctx context.Context, writers repository.WriterProfileRepository, p *entity.Profile) (*Me, error) {
	me := &Me{Profile: p}
	if p.Role != valueobject.RoleWriter {
		return me, nil
	}
	w, err := writers.FindByUserID(ctx, p.ID)
	if err != nil && !apperror.IsNotFound(err) {
		return nil, err
	}
	me.Writer = w
	return me, nil
}
