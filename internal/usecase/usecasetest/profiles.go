package usecasetest

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type ProfileRepository struct{ s *Store }

func (s *Store) Profiles() *ProfileRepository { return &ProfileRepository{s: s} }

var _ repository.ProfileRepository = (*ProfileRepository)(nil)

// AddUser создаёт профиль с ролью; для автора - сразу верифицированную анкету.
func (s *Store) AddUser(role valueobject.Role) uuid.UUID {
	now := time.Now().UTC()
	id := uuid.New()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[id] = entity.Profile{
		ID:        id,
		Role:      role,
		Email:     id.String()[:8] + "@example.com",
		Name:      string(role) + "-" + id.String()[:4],
		Status:    valueobject.ProfileStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if role == valueobject.RoleWriter {
		w := entity.NewWriterProfile(id, now)
		w.VerificationStatus = valueobject.VerificationVerified
		w.RatePerPageUSD = decimal.NewFromInt(10)
		s.writers[id] = *w
	}
	return id
}

// Writer возвращает анкету автора или nil.
func (s *Store) Writer(id uuid.UUID) *entity.WriterProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.writers[id]
	if !ok {
		return nil
	}
	return &w
}

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; ok {
		return conflict("profiles")
	}
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.profiles[id]
	if !ok {
		return nil, apperror.ErrProfileNotFound
	}
	return &p, nil
}

func (r *ProfileRepository) List(ctx context.Context, role valueobject.Role, limit, offset int) ([]*entity.Profile, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.Profile
	for _, p := range r.s.profiles {
		if role != "" && p.Role != role {
			continue
		}
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, limit, offset), len(out), nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.profiles[p.ID]; !ok {
		return apperror.ErrProfileNotFound
	}
	r.s.profiles[p.ID] = *p
	return nil
}

func (r *ProfileRepository) ListIDsByRole(ctx context.Context, role valueobject.Role) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []uuid.UUID{}
	for id, p := range r.s.profiles {
		if p.Role == role && !p.IsSuspended() {
			out = append(out, id)
		}
	}
	return out, nil
}

type WriterProfileRepository struct{ s *Store }

func (s *Store) Writers() *WriterProfileRepository { return &WriterProfileRepository{s: s} }

var _ repository.WriterProfileRepository = (*WriterProfileRepository)(nil)

func copyWriter(w entity.WriterProfile) *entity.WriterProfile {
	w.Skills = cloneStrings(w.Skills)
	return &w
}

func (r *WriterProfileRepository) Upsert(ctx context.Context, w *entity.WriterProfile) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("writers.upsert"); err != nil {
		return err
	}
	r.s.writers[w.UserID] = *copyWriter(*w)
	return nil
}

func (r *WriterProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.WriterProfile, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	w, ok := r.s.writers[userID]
	if !ok {
		return nil, apperror.ErrWriterNotFound
	}
	return copyWriter(w), nil
}

func (r *WriterProfileRepository) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.WriterProfile, error) {
	return r.FindByUserID(ctx, userID)
}

func (r *WriterProfileRepository) List(ctx context.Context, status valueobject.VerificationStatus, limit, offset int) ([]*entity.WriterProfile, int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.WriterProfile
	for _, w := range r.s.writers {
		if status != "" && w.VerificationStatus != status {
			continue
		}
		out = append(out, copyWriter(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return paginate(out, limit, offset), len(out), nil
}
