package persistence

import (
	"context"
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

const orderColumns = `id, client_id, writer_id, title, description, category, academic_level, words, pages,
	deadline, budget_usd, writer_pool_usd, status, attachments, created_at, updated_at`

type orderRow struct {
	ID            uuid.UUID       `db:"id"`
	ClientID      uuid.UUID       `db:"client_id"`
	WriterID      uuid.NullUUID   `db:"writer_id"`
	Title         string          `db:"title"`
	Description   string          `db:"description"`
	Category      string          `db:"category"`
	AcademicLevel string          `db:"academic_level"`
	Words         int             `db:"words"`
	Pages         int             `db:"pages"`
	Deadline      time.Time       `db:"deadline"`
	BudgetUSD     decimal.Decimal `db:"budget_usd"`
	WriterPoolUSD decimal.Decimal `db:"writer_pool_usd"`
	Status        string          `db:"status"`
	Attachments   pq.StringArray  `db:"attachments"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r orderRow) toEntity() *entity.Order {
	return &entity.Order{
		ID:            r.ID,
		ClientID:      r.ClientID,
		WriterID:      nullUUID(r.WriterID),
		Title:         r.Title,
		Description:   r.Description,
		Category:      r.Category,
		AcademicLevel: valueobject.AcademicLevel(r.AcademicLevel),
		Words:         r.Words,
		Pages:         r.Pages,
		Deadline:      r.Deadline,
		BudgetUSD:     r.BudgetUSD,
		WriterPoolUSD: r.WriterPoolUSD,
		Status:        valueobject.OrderStatus(r.Status),
		Attachments:   []string(r.Attachments),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func nullUUID(v uuid.NullUUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := v.UUID
	return &id
}

type OrderRepository struct {
	db *sqlx.DB
}

func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

var _ repository.OrderRepository = (*OrderRepository)(nil)

func (r *OrderRepository) Create(ctx context.Context, o *entity.Order) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO orders (`+orderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		o.ID, o.ClientID, o.WriterID, o.Title, o.Description, o.Category, string(o.AcademicLevel),
		o.Words, o.Pages, o.Deadline, o.BudgetUSD, o.WriterPoolUSD, string(o.Status),
		pq.StringArray(o.Attachments), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось создать заказ")
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
}

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*entity.Order, error) {
	return r.findOne(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1 FOR UPDATE`, id)
}

func (r *OrderRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*entity.Order, error) {
	var row orderRow
	if err := conn(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		return nil, dbError(err, apperror.ErrOrderNotFound, "не удалось получить заказ")
	}
	return row.toEntity(), nil
}

func (r *OrderRepository) List(ctx context.Context, f repository.OrderFilter) ([]*entity.Order, int, error) {
	var w where
	if f.ClientID != nil {
		w.add("client_id = ?", *f.ClientID)
	}
	if f.WriterID != nil {
		w.add("writer_id = ?", *f.WriterID)
	}
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		w.add("status = ANY(?)", pq.StringArray(statuses))
	}
	if f.Category != "" {
		w.add("category = ?", f.Category)
	}
	if f.AcademicLevel != "" {
		w.add("academic_level = ?", f.AcademicLevel)
	}
	if f.Search != "" {
		w.add(`(title ILIKE ? ESCAPE '\' OR description ILIKE ? ESCAPE '\')`, containsPattern(f.Search))
	}

	q := conn(ctx, r.db)
	var total int
	if err := q.GetContext(ctx, &total, `SELECT COUNT(*) FROM orders`+w.sql(), w.args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось посчитать заказы")
	}

	limit, offset := normalizePage(f.Limit, f.Offset)
	pageSQL, args := w.page(limit, offset)
	var rows []orderRow
	if err := q.SelectContext(ctx, &rows,
		`SELECT `+orderColumns+` FROM orders`+w.sql()+` ORDER BY created_at DESC`+pageSQL, args...); err != nil {
		return nil, 0, dbError(err, nil, "не удалось получить список заказов")
	}

	orders := make([]*entity.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toEntity())
	}
	return orders, total, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, o *entity.Order, from valueobject.OrderStatus) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE orders SET status = $3, writer_id = $4, updated_at = $5
		WHERE id = $1 AND status = $2`,
		o.ID, string(from), string(o.Status), o.WriterID, o.UpdatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось обновить статус заказа")
	}
	return expectAffected(res, apperror.ErrConcurrentUpdate, "не удалось обновить статус заказа")
}

func (r *OrderRepository) AppendAttachments(ctx context.Context, id uuid.UUID, paths []string) error {
	res, err := conn(ctx, r.db).ExecContext(ctx, `
		UPDATE orders SET attachments = attachments || $2::text[], updated_at = NOW()
		WHERE id = $1`, id, pq.StringArray(paths))
	if err != nil {
		return dbError(err, nil, "не удалось прикрепить файлы к заказу")
	}
	return expectAffected(res, apperror.ErrOrderNotFound, "не удалось прикрепить файлы к заказу")
}

func (r *OrderRepository) ListStale(ctx context.Context, status valueobject.OrderStatus, updatedBefore time.Time, limit int) ([]*entity.Order, error) {
	var rows []orderRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT `+orderColumns+` FROM orders
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at
		LIMIT $3`, string(status), updatedBefore, limit); err != nil {
		return nil, dbError(err, nil, "не удалось получить устаревшие заказы")
	}
	orders := make([]*entity.Order, 0, len(rows))
	for _, row := range rows {
		orders = append(orders, row.toEntity())
	}
	return orders, nil
}

func (r *OrderRepository) ReferencesFile(ctx context.Context, orderID uuid.UUID, path string, viewer *uuid.UUID) (bool, error) {
	var found bool
	err := conn(ctx, r.db).GetContext(ctx, &found, `
		SELECT EXISTS (
			SELECT 1 FROM orders WHERE id = $1 AND $2 = ANY(attachments)
			UNION ALL
			SELECT 1 FROM submissions WHERE order_id = $1 AND $2 = ANY(files)
			UNION ALL
			SELECT 1 FROM messages
			WHERE order_id = $1 AND $2 = ANY(attachments)
			  AND ($3::uuid IS NULL OR from_user_id = $3 OR to_user_id = $3)
		)`, orderID, path, viewer)
	if err != nil {
		return false, dbError(err, nil, "не удалось проверить файл заказа")
	}
	return found, nil
}

type historyRow struct {
	ID         uuid.UUID     `db:"id"`
	OrderID    uuid.UUID     `db:"order_id"`
	ActorID    uuid.NullUUID `db:"actor_id"`
	Event      string        `db:"event"`
	FromStatus string        `db:"from_status"`
	ToStatus   string        `db:"to_status"`
	Note       string        `db:"note"`
	CreatedAt  time.Time     `db:"created_at"`
}

type OrderHistoryRepository struct {
	db *sqlx.DB
}

func NewOrderHistoryRepository(db *sqlx.DB) *OrderHistoryRepository {
	return &OrderHistoryRepository{db: db}
}

var _ repository.OrderHistoryRepository = (*OrderHistoryRepository)(nil)

func (r *OrderHistoryRepository) Add(ctx context.Context, h *entity.OrderHistory) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO order_history (id, order_id, actor_id, event, from_status, to_status, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.OrderID, h.ActorID, string(h.Event), string(h.FromStatus), string(h.ToStatus), h.Note, h.CreatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось записать историю заказа")
	}
	return nil
}

func (r *OrderHistoryRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]*entity.OrderHistory, error) {
	var rows []historyRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT id, order_id, actor_id, event, from_status, to_status, note, created_at
		FROM order_history WHERE order_id = $1 ORDER BY created_at, id`, orderID); err != nil {
		return nil, dbError(err, nil, "не удалось получить историю заказа")
	}
	out := make([]*entity.OrderHistory, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.OrderHistory{
			ID:         row.ID,
			OrderID:    row.OrderID,
			ActorID:    nullUUID(row.ActorID),
			Event:      valueobject.OrderEvent(row.Event),
			FromStatus: valueobject.OrderStatus(row.FromStatus),
			ToStatus:   valueobject.OrderStatus(row.ToStatus),
			Note:       row.Note,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}
