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
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

const messageColumns = `id, order_id, from_user_id, to_user_id, subject, body, attachments, is_read, read_at, created_at`

type messageRow struct {
	ID          uuid.UUID      `db:"id"`
	OrderID     uuid.UUID      `db:"order_id"`
	FromUserID  uuid.UUID      `db:"from_user_id"`
	ToUserID    uuid.NullUUID  `db:"to_user_id"`
	Subject     string         `db:"subject"`
	Body        string         `db:"body"`
	Attachments pq.StringArray `db:"attachments"`
	IsRead      bool           `db:"is_read"`
	ReadAt      sql.NullTime   `db:"read_at"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r messageRow) toEntity() *entity.Message {
	return &entity.Message{
		ID:          r.ID,
		OrderID:     r.OrderID,
		FromUserID:  r.FromUserID,
		ToUserID:    nullUUID(r.ToUserID),
		Subject:     r.Subject,
		Body:        r.Body,
		Attachments: []string(r.Attachments),
		IsRead:      r.IsRead,
		ReadAt:      nullTime(r.ReadAt),
		CreatedAt:   r.CreatedAt,
	}
}

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

var _ repository.MessageRepository = (*MessageRepository)(nil)

func (r *MessageRepository) Create(ctx context.Context, m *entity.Message) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO messages (`+messageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.OrderID, m.FromUserID, m.ToUserID, m.Subject, m.Body, pq.StringArray(m.Attachments),
		m.IsRead, m.ReadAt, m.CreatedAt,
	)
	if err != nil {
		return dbError(err, nil, "не удалось сохранить сообщение")
	}
	return nil
}

func (r *MessageRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Message, error) {
	var row messageRow
	if err := conn(ctx, r.db).GetContext(ctx, &row,
		`SELECT `+messageColumns+` FROM messages WHERE id = $1`, id); err != nil {
		return nil, dbError(err, apperror.ErrMessageNotFound, "не удалось получить сообщение")
	}
	return row.toEntity(), nil
}

func (r *MessageRepository) ListByOrder(ctx context.Context, orderID uuid.UUID, viewer *uuid.UUID, limit, offset int) ([]*entity.Message, error) {
	limit, offset = normalizePage(limit, offset)
	var rows []messageRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT `+messageColumns+` FROM messages
		WHERE order_id = $1 AND ($2::uuid IS NULL OR from_user_id = $2 OR to_user_id = $2)
		ORDER BY created_at, id
		LIMIT $3 OFFSET $4`, orderID, viewer, limit, offset); err != nil {
		return nil, dbError(err, nil, "не удалось получить сообщения заказа")
	}
	out := make([]*entity.Message, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *MessageRepository) MarkRead(ctx context.Context, m *entity.Message) (bool, error) {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE messages SET is_read = TRUE, read_at = $2 WHERE id = $1 AND NOT is_read`, m.ID, m.ReadAt)
	if err != nil {
		return false, dbError(err, nil, "не удалось отметить сообщение прочитанным")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, dbError(err, nil, "не удалось отметить сообщение прочитанным")
	}
	return rows > 0, nil
}

func (r *MessageRepository) CountUnread(ctx context.Context, userID uuid.UUID, includeAdminInbox bool) (int, error) {
	var count int
	if err := conn(ctx, r.db).GetContext(ctx, &count, `
		SELECT COUNT(*) FROM messages
		WHERE NOT is_read AND (to_user_id = $1 OR ($2 AND to_user_id IS NULL))`,
		userID, includeAdminInbox); err != nil {
		return 0, dbError(err, nil, "не удалось посчитать непрочитанные сообщения")
	}
	return count, nil
}
