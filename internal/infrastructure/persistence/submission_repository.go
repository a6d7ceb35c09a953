package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

const submissionColumns = `id, order_id, assignment_id, writer_id, version, files, message, status, is_final,
	review_note, reviewed_by, reviewed_at, created_at`

type submissionRow struct {
	ID           uuid.UUID      `db:"id"`
	OrderID      uuid.UUID      `db:"order_id"`
	AssignmentID uuid.UUID      `db:"assignment_id"`
	WriterID     uuid.UUID      `db:"writer_id"`
	Version      int            `db:"version"`
	Files        pq.StringArray `db:"files"`
	Message      string         `db:"message"`
	Status       string         `db:"status"`
	IsFinal      bool           `db:"is_final"`
	ReviewNote   string         `db:"review_note"`
	ReviewedBy   uuid.NullUUID  `db:"reviewed_by"`
	ReviewedAt   sql.NullTime   `db:"reviewed_at"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r submissionRow) toEntity() *entity.Submission {
	return &entity.Submission{
		ID:           r.ID,
		OrderID:      r.OrderID,
		AssignmentID: r.AssignmentID,
		WriterID:     r.WriterID,
		Version:      r.Version,
		Files:        []string(r.Files),
		Message:      r.Message,
		Status:       valueobject.SubmissionStatus(r.Status),
		IsFinal:      r.IsFinal,
		ReviewNote:   r.ReviewNote,
		ReviewedBy:   nullUUID(r.ReviewedBy),
		ReviewedAt:   nullTime(r.ReviewedAt),
		CreatedAt:    r.CreatedAt,
	}
}

type SubmissionRepository struct {
	db *sqlx.DB
}

func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

var _ repository.SubmissionRepository = (*SubmissionRepository)(nil)

func (r *SubmissionRepository) Create(ctx context.Context, s *entity.Submission) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO submissions (`+submissionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		s.ID, s.OrderID, s.AssignmentID, s.WriterID, s.Version, pq.StringArray(s.Files), s.Message,
		string(s.Status), s.IsFinal, s.ReviewNote, s.ReviewedBy, s.ReviewedAt, s.CreatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось сохранить работу")
	}
	return nil
}

func (r *SubmissionRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	return r.findOne(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1`, id)
}

func (r *SubmissionRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Submission, error) {
	return r.findOne(ctx, `SELECT `+submissionColumns+` FROM submissions WHERE id = $1 FOR UPDATE`, id)
}

func (r *SubmissionRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Submission, error) {
	var row submissionRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, dbError(err, apperror.ErrSubmissionNotFound, "не удалось получить работу")
	}
	return row.toEntity(), nil
}

func (r *SubmissionRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.Submission, error) {
	var rows []submissionRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows,
		`SELECT `+submissionColumns+` FROM submissions WHERE order_id = $1 ORDER BY version`, orderID); err != nil {
		return nil, dbError(err, nil, "не удалось получить работы заказа")
	}
	out := make([]*entity.Submission, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *SubmissionRepository) MaxVersion(ctx context.Context, orderID uuid.UUID) (int, error) {
	var version int
	if err := conn(ctx, r.db).GetContext(ctx, &version,
		`SELECT COALESCE(MAX(version), 0) FROM submissions WHERE order_id = $1`, orderID); err != nil {
		return 0, dbError(err, nil, "не удалось получить версию работы")
	}
	return version, nil
}

func (r *SubmissionRepository) SaveReview(ctx context.Context, s *entity.Submission) error {
	q := conn(ctx, r.db)
	if s.IsFinal {
		if _, err := q.ExecContext(ctx,
			`UPDATE submissions SET is_final = FALSE WHERE order_id = $1 AND id <> $2 AND is_final`,
			s.OrderID, s.ID); err != nil {
			return dbError(err, nil, "не удалось снять отметку финальной версии")
		}
	}

	res, err := q.ExecContext(ctx, `
		UPDATE submissions
		SET status = $2, is_final = $3, review_note = $4, reviewed_by = $5, reviewed_at = $6
		WHERE id = $1 AND status = 'pending'`,
		s.ID, string(s.Status), s.IsFinal, s.ReviewNote, s.ReviewedBy, s.ReviewedAt)
	if err != nil {
		return dbError(err, nil, "не удалось сохранить решение по работе")
	}
	return expectAffected(res, apperror.ErrConcurrentUpdate, "не удалось сохранить решение по работе")
}
