package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

type ProfileRepository interface {
	Create(ctx context.Context, p *entity.Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error)
	List(ctx context.Context, role valueobject.Role, limit, offset int) ([]*entity.Profile, int, error)
	Update(ctx context.Context, p *entity.Profile) error
	ListIDsByRole(ctx context.Context, role valueobject.Role) ([]uuid.UUID, error)
}

type WriterProfileRepository interface {
	Upsert(ctx context.Context, w *entity.WriterProfile) error
	FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.WriterProfile, error)
	FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.WriterProfile, error)
	List(ctx context.Context, status valueobject.VerificationStatus, limit, offset int) ([]*entity.WriterProfile, int, error)
}
