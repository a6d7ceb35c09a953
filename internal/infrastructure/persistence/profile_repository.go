package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type profileRow struct {
	ID        uuid.UUID `db:"id"`
	Role      string    `db:"role"`
	Email     string    `db:"email"`
	Name      string    `db:"name"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r profileRow) toEntity() *entity.Profile {
	return &entity.Profile{
		ID:        r.ID,
		Role:      valueobject.Role(r.Role),
		Email:     r.Email,
		Name:      r.Name,
		Status:    valueobject.ProfileStatus(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type ProfileRepository struct {
	db *sqlx.DB
}

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

var _ repository.ProfileRepository = (*ProfileRepository)(nil)

func (r *ProfileRepository) Create(ctx context.Context, p *entity.Profile) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO profiles (id, role, email, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		p.ID, string(p.Role), p.Email, p.Name, string(p.Status), p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return dbError(err, nil, "не удалось создать профиль")
	}
	return nil
}

func (r *ProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	var row profileRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, `
		SELECT id, role, email, name, status, created_at, updated_at FROM profiles WHERE id = $1`, id); err != nil {
		return nil, dbError(err, apperror.ErrProfileNotFound, "не удалось получить профиль")
	}
	return row.toEntity(), nil
}

func (r *ProfileRepository) List(ctx context.Context, role valueobject.Role, limit, offset int) ([]*entity.Profile, int, error) {
	var w where
	if role != "" {
		w.add("role = ?", string(role))
	}
	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM profiles`+w.sql(), w.args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось посчитать профили")
	}

	limit, offset = normalizePage(limit, offset)
	pageSQL, args := w.page(limit, offset)
	var rows []profileRow
	if err := q.SelectContext(ctx, &rows, `
		SELECT id, role, email, name, status, created_at, updated_at FROM profiles`+
		w.sql()+` ORDER BY created_at DESC`+pageSQL, args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось получить список профилей")
	}
	out := make([]*entity.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, total, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *entity.Profile) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE profiles SET name = $2, status = $3, updated_at = $4 WHERE id = $1`,
		p.ID, p.Name, string(p.Status), p.UpdatedAt)
	if err != nil {
		return dbError(err, nil, "не удалось обновить профиль")
	}
	return expectAffected(res, apperror.ErrProfileNotFound, "не удалось обновить профиль")
}

func (r *ProfileRepository) ListIDsByRole(ctx context.Context, role valueobject.Role) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := conn(ctx, r.db).SelectContext(ctx, &ids,
		`SELECT id FROM profiles WHERE role = $1 AND status = 'active'`, string(role)); err != nil {
		return nil, dbError(err, nil, "не удалось получить пользователей роли")
	}
	return ids, nil
}

const writerProfileColumns = `user_id, bio, skills, rate_per_page_usd, verification_status, verified_by, verified_at,
	rating, completed_orders, created_at, updated_at`

type writerProfileRow struct {
	UserID             uuid.UUID       `db:"user_id"`
	Bio                string          `db:"bio"`
	Skills             pq.StringArray  `db:"skills"`
	RatePerPageUSD     decimal.Decimal `db:"rate_per_page_usd"`
	VerificationStatus string          `db:"verification_status"`
	VerifiedBy         uuid.NullUUID   `db:"verified_by"`
	VerifiedAt         sql.NullTime    `db:"verified_at"`
	Rating             decimal.Decimal `db:"rating"`
	CompletedOrders    int             `db:"completed_orders"`
	CreatedAt          time.Time       `db:"created_at"`
	UpdatedAt          time.Time       `db:"updated_at"`
}

func (r writerProfileRow) toEntity() *entity.WriterProfile {
	return &entity.WriterProfile{
		UserID:             r.UserID,
		Bio:                r.Bio,
		Skills:             []string(r.Skills),
		RatePerPageUSD:     r.RatePerPageUSD,
		VerificationStatus: valueobject.VerificationStatus(r.VerificationStatus),
		VerifiedBy:         nullUUID(r.VerifiedBy),
		VerifiedAt:         nullTime(r.VerifiedAt),
		Rating:             r.Rating,
		CompletedOrders:    r.CompletedOrders,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}
}

type WriterProfileRepository struct {
	db *sqlx.DB
}

func NewWriterProfileRepository(db *sqlx.DB) *WriterProfileRepository {
	return &WriterProfileRepository{db: db}
}

var _ repository.WriterProfileRepository = (*WriterProfileRepository)(nil)

func (r *WriterProfileRepository) Upsert(ctx context.Context, w *entity.WriterProfile) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO writer_profiles (`+writerProfileColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (user_id) DO UPDATE SET
			bio = EXCLUDED.bio,
			skills = EXCLUDED.skills,
			rate_per_page_usd = EXCLUDED.rate_per_page_usd,
			verification_status = EXCLUDED.verification_status,
			verified_by = EXCLUDED.verified_by,
			verified_at = EXCLUDED.verified_at,
			rating = EXCLUDED.rating,
			completed_orders = EXCLUDED.completed_orders,
			updated_at = EXCLUDED.updated_at`,
		w.UserID, w.Bio, pq.StringArray(w.Skills), w.RatePerPageUSD, string(w.VerificationStatus),
		w.VerifiedBy, w.VerifiedAt, w.Rating, w.CompletedOrders, w.CreatedAt, w.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось сохранить профиль автора")
	}
	return nil
}

func (r *WriterProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*entity.WriterProfile, error) {
	return r.findOne(ctx, `SELECT `+writerProfileColumns+` FROM writer_profiles WHERE user_id = $1`, userID)
}

func (r *WriterProfileRepository) FindByUserIDForUpdate(ctx context.Context, userID uuid.UUID) (*entity.WriterProfile, error) {
	return r.findOne(ctx, `SELECT `+writerProfileColumns+` FROM writer_profiles WHERE user_id = $1 FOR UPDATE`, userID)
}

func (r *WriterProfileRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.WriterProfile, error) {
	var row writerProfileRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, dbError(err, apperror.ErrWriterNotFound, "не удалось получить профиль автора")
	}
	return row.toEntity(), nil
}

func (r *WriterProfileRepository) List(ctx context.Context, status valueobject.VerificationStatus, limit, offset int) ([]*entity.WriterProfile, int, error) {
	var w where
	if status != "" {
		w.add("verification_status = ?", string(status))
	}
	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM writer_profiles`+w.sql(), w.args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось посчитать авторов")
	}

	limit, offset = normalizePage(limit, offset)
	pageSQL, args := w.page(limit, offset)
	var rows []writerProfileRow
	if err := q.SelectContext(ctx, &rows, `SELECT `+writerProfileColumns+` FROM writer_profiles`+
		w.sql()+` ORDER BY created_at`+pageSQL, args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось получить список авторов")
	}
	out := make([]*entity.WriterProfile, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, total, nil
}
