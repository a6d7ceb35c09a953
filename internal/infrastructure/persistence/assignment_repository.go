package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

const assignmentColumns = `id, order_id, writer_id, bid_id, status, payout_usd, due_at, notes, assigned_by,
	overdue_notified_at, created_at, updated_at`

type assignmentRow struct {
	ID                uuid.UUID       `db:"id"`
	OrderID           uuid.UUID       `db:"order_id"`
	WriterID          uuid.UUID       `db:"writer_id"`
	BidID             uuid.NullUUID   `db:"bid_id"`
	Status            string          `db:"status"`
	PayoutUSD         decimal.Decimal `db:"payout_usd"`
	DueAt             time.Time       `db:"due_at"`
	Notes             string          `db:"notes"`
	AssignedBy        uuid.NullUUID   `db:"assigned_by"`
	OverdueNotifiedAt sql.NullTime    `db:"overdue_notified_at"`
	CreatedAt         time.Time       `db:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at"`
}

func (r assignmentRow) toEntity() *entity.Assignment {
	return &entity.Assignment{
		ID:                r.ID,
		OrderID:           r.OrderID,
		WriterID:          r.WriterID,
		BidID:             nullUUID(r.BidID),
		Status:            valueobject.AssignmentStatus(r.Status),
		PayoutUSD:         r.PayoutUSD,
		DueAt:             r.DueAt,
		Notes:             r.Notes,
		AssignedBy:        nullUUID(r.AssignedBy),
		OverdueNotifiedAt: nullTime(r.OverdueNotifiedAt),
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

type assignmentDetailsRow struct {
	assignmentRow
	OrderTitle    string    `db:"order_title"`
	OrderStatus   string    `db:"order_status"`
	OrderDeadline time.Time `db:"order_deadline"`
	OrderPages    int       `db:"order_pages"`
}

type AssignmentRepository struct {
	db *sqlx.DB
}

func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

var _ repository.AssignmentRepository = (*AssignmentRepository)(nil)

func (r *AssignmentRepository) Create(ctx context.Context, a *entity.Assignment) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO assignments (`+assignmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		a.ID, a.OrderID, a.WriterID, a.BidID, string(a.Status), a.PayoutUSD, a.DueAt, a.Notes,
		a.AssignedBy, a.OverdueNotifiedAt, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось создать назначение")
	}
	return nil
}

func (r *AssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Assignment, error) {
	return r.findOne(ctx, `SELECT `+assignmentColumns+` FROM assignments WHERE id = $1`, id)
}

func (r *AssignmentRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Assignment, error) {
	return r.findOne(ctx, `SELECT `+assignmentColumns+` FROM assignments
		WHERE order_id = $1 AND status = 'active'`, orderID)
}

func (r *AssignmentRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Assignment, error) {
	var row assignmentRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return nil, dbError(err, apperror.ErrAssignmentNotFound, "не удалось получить назначение")
	}
	return row.toEntity(), nil
}

func (r *AssignmentRepository) ListByWriter(ctx context.Context, writerID uuid.UUID, status valueobject.AssignmentStatus) ([]*entity.AssignmentDetails, error) {
	var rows []assignmentDetailsRow
	err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT a.id, a.order_id, a.writer_id, a.bid_id, a.status, a.payout_usd, a.due_at, a.notes,
		       a.assigned_by, a.overdue_notified_at, a.created_at, a.updated_at,
		       o.title AS order_title, o.status AS order_status, o.deadline AS order_deadline,
		       o.pages AS order_pages
		FROM assignments a
		JOIN orders o ON o.id = a.order_id
		WHERE a.writer_id = $1 AND ($2 = '' OR a.status = $2)
		ORDER BY a.due_at`, writerID, string(status))
	if err != nil {
		return nil, dbError(err, nil, "не удалось получить назначения автора")
	}

	out := make([]*entity.AssignmentDetails, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.AssignmentDetails{
			Assignment:    *row.assignmentRow.toEntity(),
			OrderTitle:    row.OrderTitle,
			OrderStatus:   valueobject.OrderStatus(row.OrderStatus),
			OrderDeadline: row.OrderDeadline,
			OrderPages:    row.OrderPages,
		})
	}
	return out, nil
}

func (r *AssignmentRepository) UpdateStatus(ctx context.Context, a *entity.Assignment, from valueobject.AssignmentStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE assignments SET status = $3, updated_at = $4 WHERE id = $1 AND status = $2`,
		a.ID, string(from), string(a.Status), a.UpdatedAt)
	if err != nil {
		return dbError(err, nil, "не удалось обновить назначение")
	}
	return expectAffected(res, apperror.ErrConcurrentUpdate, "не удалось обновить назначение")
}

func (r *AssignmentRepository) ListOverdue(ctx context.Context, now time.Time, limit int) ([]*entity.Assignment, error) {
	var rows []assignmentRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT `+assignmentColumns+` FROM assignments
		WHERE status = 'active' AND due_at < $1 AND overdue_notified_at IS NULL
		ORDER BY due_at
		LIMIT $2`, now, limit); err != nil {
		return nil, dbError(err, nil, "не удалось получить просроченные назначения")
	}
	out := make([]*entity.Assignment, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *AssignmentRepository) MarkOverdueNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE assignments SET overdue_notified_at = $2 WHERE id = $1 AND overdue_notified_at IS NULL`, id, at)
	if err != nil {
		return dbError(err, nil, "не удалось отметить просрочку")
	}
	return nil
}
