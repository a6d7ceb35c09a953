package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

const bidColumns = `id, order_id, writer_id, proposed_rate, price_per_page, time_needed_hours, cover_letter,
	status, reviewed_by, reviewed_at, created_at, updated_at`

type bidRow struct {
	ID              uuid.UUID       `db:"id"`
	OrderID         uuid.UUID       `db:"order_id"`
	WriterID        uuid.UUID       `db:"writer_id"`
	ProposedRate    decimal.Decimal `db:"proposed_rate"`
	PricePerPage    decimal.Decimal `db:"price_per_page"`
	TimeNeededHours int             `db:"time_needed_hours"`
	CoverLetter     string          `db:"cover_letter"`
	Status          string          `db:"status"`
	ReviewedBy      uuid.NullUUID   `db:"reviewed_by"`
	ReviewedAt      sql.NullTime    `db:"reviewed_at"`
	CreatedAt       time.Time       `db:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at"`
}

func (r bidRow) toEntity() *entity.Bid {
	return &entity.Bid{
		ID:              r.ID,
		OrderID:         r.OrderID,
		WriterID:        r.WriterID,
		ProposedRate:    r.ProposedRate,
		PricePerPage:    r.PricePerPage,
		TimeNeededHours: r.TimeNeededHours,
		CoverLetter:     r.CoverLetter,
		Status:          valueobject.BidStatus(r.Status),
		ReviewedBy:      nullUUID(r.ReviewedBy),
		ReviewedAt:      nullTime(r.ReviewedAt),
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

type bidDetailsRow struct {
	bidRow
	OrderTitle         string          `db:"order_title"`
	OrderStatus        string          `db:"order_status"`
	OrderPages         int             `db:"order_pages"`
	WriterName         string          `db:"writer_name"`
	WriterRating       decimal.Decimal `db:"writer_rating"`
	WriterVerification string          `db:"writer_verification"`
	WriterCompleted    int             `db:"writer_completed"`
}

func nullTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

type BidRepository struct {
	db *sqlx.DB
}

func NewBidRepository(db *sqlx.DB) *BidRepository {
	return &BidRepository{db: db}
}

var _ repository.BidRepository = (*BidRepository)(nil)

func (r *BidRepository) Create(ctx context.Context, b *entity.Bid) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO bids (`+bidColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		b.ID, b.OrderID, b.WriterID, b.ProposedRate, b.PricePerPage, b.TimeNeededHours, b.CoverLetter,
		string(b.Status), b.ReviewedBy, b.ReviewedAt, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось создать ставку")
	}
	return nil
}

func (r *BidRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.findOne(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, id)
}

func (r *BidRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Bid, error) {
	return r.findOne(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1 FOR UPDATE`, id)
}

func (r *BidRepository) FindActiveByOrderAndWriter(ctx context.Context, orderID, writerID uuid.UUID) (*entity.Bid, error) {
	return r.findOne(ctx, `SELECT `+bidColumns+` FROM bids
		WHERE order_id = $1 AND writer_id = $2 AND status <> 'withdrawn'`, orderID, writerID)
}

func (r *BidRepository) findOne(ctx context.Context, query string, args ...interface{}) (*entity.Bid, error) {
	var row bidRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, args...); err != nil {
		return nil, dbError(err, apperror.ErrBidNotFound, "не удалось получить ставку")
	}
	return row.toEntity(), nil
}

func (r *BidRepository) List(ctx context.Context, f repository.BidFilter) ([]*entity.BidDetails, int, error) {
	var w where
	if f.OrderID != nil {
		w.add("b.order_id = ?", *f.OrderID)
	}
	if f.WriterID != nil {
		w.add("b.writer_id = ?", *f.WriterID)
	}
	if f.Status != "" {
		w.add("b.status = ?", string(f.Status))
	}

	const from = ` FROM bids b
		JOIN orders o ON o.id = b.order_id
		JOIN profiles p ON p.id = b.writer_id
		LEFT JOIN writer_profiles wp ON wp.user_id = b.writer_id`

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*)`+from+w.sql(), w.args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось посчитать ставки")
	}

	limit, offset := normalizePage(f.Limit, f.Offset)
	pageSQL, args := w.page(limit, offset)
	var rows []bidDetailsRow
	if err := q.SelectContext(ctx, &rows, `
		SELECT b.id, b.order_id, b.writer_id, b.proposed_rate, b.price_per_page, b.time_needed_hours,
		       b.cover_letter, b.status, b.reviewed_by, b.reviewed_at, b.created_at, b.updated_at,
		       o.title AS order_title, o.status AS order_status, o.pages AS order_pages,
		       p.name AS writer_name,
		       COALESCE(wp.rating, 0) AS writer_rating,
		       COALESCE(wp.verification_status, 'pending') AS writer_verification,
		       COALESCE(wp.completed_orders, 0) AS writer_completed`+
		from+w.sql()+` ORDER BY b.created_at DESC`+pageSQL, args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось получить список ставок")
	}

	out := make([]*entity.BidDetails, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.BidDetails{
			Bid:                *row.bidRow.toEntity(),
			OrderTitle:         row.OrderTitle,
			OrderStatus:        valueobject.OrderStatus(row.OrderStatus),
			OrderPages:         row.OrderPages,
			WriterName:         row.WriterName,
			WriterRating:       row.WriterRating,
			WriterVerification: valueobject.VerificationStatus(row.WriterVerification),
			WriterCompleted:    row.WriterCompleted,
		})
	}
	return out, total, nil
}

func (r *BidRepository) UpdateStatus(ctx context.Context, b *entity.Bid, from valueobject.BidStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE bids SET status = $3, reviewed_by = $4, reviewed_at = $5, updated_at = $6
		WHERE id = $1 AND status = $2`,
		b.ID, string(from), string(b.Status), b.ReviewedBy, b.ReviewedAt, b.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось обновить ставку")
	}
	return expectAffected(res, apperror.ErrConcurrentUpdate, "не удалось обновить ставку")
}

func (r *BidRepository) RejectPending(ctx context.Context, orderID uuid.UUID, exceptID *uuid.UUID, reviewer *uuid.UUID, at time.Time) ([]*entity.Bid, error) {
	var rows []bidRow
	err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		UPDATE bids SET status = 'rejected', reviewed_by = $3, reviewed_at = $4, updated_at = $4
		WHERE order_id = $1 AND status = 'pending' AND ($2::uuid IS NULL OR id <> $2)
		RETURNING `+bidColumns, orderID, exceptID, reviewer, at)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, dbError(err, nil, "не удалось отклонить ставки заказа")
	}
	out := make([]*entity.Bid, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}
