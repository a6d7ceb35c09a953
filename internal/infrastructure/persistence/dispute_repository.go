package persistence

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

const disputeColumns = `id, order_id, opened_by_id, reason, status, previous_status, outcome, resolution,
	resolved_by_id, resolved_at, created_at, updated_at`

type disputeRow struct {
	ID             uuid.UUID     `db:"id"`
	OrderID        uuid.UUID     `db:"order_id"`
	OpenedByID     uuid.UUID     `db:"opened_by_id"`
	Reason         string        `db:"reason"`
	Status         string        `db:"status"`
	PreviousStatus string        `db:"previous_status"`
	Outcome        string        `db:"outcome"`
	Resolution     string        `db:"resolution"`
	ResolvedByID   uuid.NullUUID `db:"resolved_by_id"`
	ResolvedAt     sql.NullTime  `db:"resolved_at"`
	CreatedAt      time.Time     `db:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at"`
}

func (r disputeRow) toEntity() *entity.Dispute {
	return &entity.Dispute{
		ID:             r.ID,
		OrderID:        r.OrderID,
		OpenedByID:     r.OpenedByID,
		Reason:         r.Reason,
		Status:         valueobject.DisputeStatus(r.Status),
		PreviousStatus: valueobject.OrderStatus(r.PreviousStatus),
		Outcome:        valueobject.DisputeOutcome(r.Outcome),
		Resolution:     r.Resolution,
		ResolvedByID:   nullUUID(r.ResolvedByID),
		ResolvedAt:     nullTime(r.ResolvedAt),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

var _ repository.DisputeRepository = (*DisputeRepository)(nil)

func (r *DisputeRepository) Create(ctx context.Context, d *entity.Dispute) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO disputes (`+disputeColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		d.ID, d.OrderID, d.OpenedByID, d.Reason, string(d.Status), string(d.PreviousStatus),
		string(d.Outcome), d.Resolution, d.ResolvedByID, d.ResolvedAt, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось открыть спор")
	}
	return nil
}

func (r *DisputeRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Dispute, error) {
	return r.findOne(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1`, id)
}

func (r *DisputeRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Dispute, error) {
	return r.findOne(ctx, `SELECT `+disputeColumns+` FROM disputes WHERE id = $1 FOR UPDATE`, id)
}

func (r *DisputeRepository) FindActiveByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Dispute, error) {
	return r.findOne(ctx, `SELECT `+disputeColumns+` FROM disputes
		WHERE order_id = $1 AND status IN ('open', 'in_review')`, orderID)
}

func (r *DisputeRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Dispute, error) {
	var row disputeRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, dbError(err, apperror.ErrDisputeNotFound, "не удалось получить спор")
	}
	return row.toEntity(), nil
}

func (r *DisputeRepository) List(ctx context.Context, f repository.DisputeFilter) ([]*entity.Dispute, int, error) {
	var w where
	if f.ParticipantID != nil {
		w.add("(o.client_id = ? OR o.writer_id = ? OR d.opened_by_id = ?)", *f.ParticipantID)
	}
	if f.Status != "" {
		w.add("d.status = ?", string(f.Status))
	}

	const from = ` FROM disputes d JOIN orders o ON o.id = d.order_id`
	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*)`+from+w.sql(), w.args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось посчитать споры")
	}

	limit, offset := normalizePage(f.Limit, f.Offset)
	pageSQL, args := w.page(limit, offset)
	var rows []disputeRow
	if err := q.SelectContext(ctx, &rows, `
		SELECT d.id, d.order_id, d.opened_by_id, d.reason, d.status, d.previous_status, d.outcome,
		       d.resolution, d.resolved_by_id, d.resolved_at, d.created_at, d.updated_at`+
		from+w.sql()+` ORDER BY d.created_at DESC`+pageSQL, args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось получить список споров")
	}
	out := make([]*entity.Dispute, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, total, nil
}

func (r *DisputeRepository) Update(ctx context.Context, d *entity.Dispute, from valueobject.DisputeStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE disputes
		SET status = $3, outcome = $4, resolution = $5, resolved_by_id = $6, resolved_at = $7, updated_at = $8
		WHERE id = $1 AND status = $2`,
		d.ID, string(from), string(d.Status), string(d.Outcome), d.Resolution, d.ResolvedByID,
		d.ResolvedAt, d.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось обновить спор")
	}
	return expectAffected(res, apperror.ErrConcurrentUpdate, "не удалось обновить спор")
}
