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

const invoiceColumns = `id, order_id, client_id, amount_usd, currency, payment_rail, payment_address, tx_hash,
	confirmations, status, paid_at, confirmed_by, created_at, updated_at`

type invoiceRow struct {
	ID             uuid.UUID       `db:"id"`
	OrderID        uuid.UUID       `db:"order_id"`
	ClientID       uuid.UUID       `db:"client_id"`
	AmountUSD      decimal.Decimal `db:"amount_usd"`
	Currency       string          `db:"currency"`
	PaymentRail    string          `db:"payment_rail"`
	PaymentAddress string          `db:"payment_address"`
	TxHash         string          `db:"tx_hash"`
	Confirmations  int             `db:"confirmations"`
	Status         string          `db:"status"`
	PaidAt         sql.NullTime    `db:"paid_at"`
	ConfirmedBy    uuid.NullUUID   `db:"confirmed_by"`
	CreatedAt      time.Time       `db:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at"`
}

func (r invoiceRow) toEntity() *entity.Invoice {
	return &entity.Invoice{
		ID:             r.ID,
		OrderID:        r.OrderID,
		ClientID:       r.ClientID,
		AmountUSD:      r.AmountUSD,
		Currency:       r.Currency,
		PaymentRail:    r.PaymentRail,
		PaymentAddress: r.PaymentAddress,
		TxHash:         r.TxHash,
		Confirmations:  r.Confirmations,
		Status:         valueobject.InvoiceStatus(r.Status),
		PaidAt:         nullTime(r.PaidAt),
		ConfirmedBy:    nullUUID(r.ConfirmedBy),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type InvoiceRepository struct {
	db *sqlx.DB
}

func NewInvoiceRepository(db *sqlx.DB) *InvoiceRepository {
	return &InvoiceRepository{db: db}
}

var _ repository.InvoiceRepository = (*InvoiceRepository)(nil)

func (r *InvoiceRepository) Create(ctx context.Context, i *entity.Invoice) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		i.ID, i.OrderID, i.ClientID, i.AmountUSD, i.Currency, i.PaymentRail, i.PaymentAddress, i.TxHash,
		i.Confirmations, string(i.Status), i.PaidAt, i.ConfirmedBy, i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось создать счёт")
	}
	return nil
}

func (r *InvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.findOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1`, id)
}

func (r *InvoiceRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Invoice, error) {
	return r.findOne(ctx, `SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 FOR UPDATE`, id)
}

func (r *InvoiceRepository) FindOpenByOrder(ctx context.Context, orderID uuid.UUID) (*entity.Invoice, error) {
	return r.findOne(ctx, `SELECT `+invoiceColumns+` FROM invoices
		WHERE order_id = $1 AND status IN ('unpaid', 'pending', 'paid')
		ORDER BY created_at DESC
		LIMIT 1`, orderID)
}

func (r *InvoiceRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Invoice, error) {
	var row invoiceRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, dbError(err, apperror.ErrInvoiceNotFound, "не удалось получить счёт")
	}
	return row.toEntity(), nil
}

func (r *InvoiceRepository) List(ctx context.Context, f repository.InvoiceFilter) ([]*entity.Invoice, int, error) {
	var w where
	if f.OrderID != nil {
		w.add("order_id = ?", *f.OrderID)
	}
	if f.ClientID != nil {
		w.add("client_id = ?", *f.ClientID)
	}
	if f.Status != "" {
		w.add("status = ?", string(f.Status))
	}

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM invoices`+w.sql(), w.args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось посчитать счета")
	}

	limit, offset := normalizePage(f.Limit, f.Offset)
	pageSQL, args := w.page(limit, offset)
	var rows []invoiceRow
	if err := q.SelectContext(ctx, &rows,
		`SELECT `+invoiceColumns+` FROM invoices`+w.sql()+` ORDER BY created_at DESC`+pageSQL, args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось получить список счетов")
	}
	out := make([]*entity.Invoice, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, total, nil
}

func (r *InvoiceRepository) Update(ctx context.Context, i *entity.Invoice, from valueobject.InvoiceStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE invoices
		SET payment_rail = $3, payment_address = $4, tx_hash = $5, confirmations = $6,
		    status = $7, paid_at = $8, confirmed_by = $9, updated_at = $10
		WHERE id = $1 AND status = $2`,
		i.ID, string(from), i.PaymentRail, i.PaymentAddress, i.TxHash, i.Confirmations,
		string(i.Status), i.PaidAt, i.ConfirmedBy, i.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось обновить счёт")
	}
	return expectAffected(res, apperror.ErrConcurrentUpdate, "не удалось обновить счёт")
}
