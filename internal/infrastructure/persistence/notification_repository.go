package persistence

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

var ErrNotificationNotFound = apperror.New(apperror.ErrCodeNotFound, "уведомление не найдено")

type notificationRow struct {
	ID        uuid.UUID       `db:"id"`
	UserID    uuid.UUID       `db:"user_id"`
	Payload   json.RawMessage `db:"payload"`
	IsRead    bool            `db:"is_read"`
	CreatedAt time.Time       `db:"created_at"`
}

// NotificationRepository отвечает за работу с уведомлениями.
type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *entity.Notification) error {
	_, err := conn(ctx, r.db).ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, payload, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		n.ID, n.UserID, string(n.Payload), n.IsRead, n.CreatedAt)
	if err != nil {
		return dbError(err, nil, "не удалось сохранить уведомление")
	}
	return nil
}

// List возвращает уведомления пользователя, новые сверху.
func (r *NotificationRepository) List(ctx context.Context, userID uuid.UUID, limit, offset int, unreadOnly bool) ([]*entity.Notification, error) {
	limit, offset = normalizePage(limit, offset)
	var rows []notificationRow
	if err := conn(ctx, r.db).SelectContext(ctx, &rows, `
		SELECT id, user_id, payload, is_read, created_at FROM notifications
		WHERE user_id = $1 AND (NOT $2 OR NOT is_read)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`, userID, unreadOnly, limit, offset); err != nil {
		return nil, dbError(err, nil, "не удалось получить уведомления")
	}
	out := make([]*entity.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.Notification{
			ID: row.ID, UserID: row.UserID, Payload: row.Payload, IsRead: row.IsRead, CreatedAt: row.CreatedAt,
		})
	}
	return out, nil
}

// MarkAsRead отмечает уведомление пользователя прочитанным.
func (r *NotificationRepository) MarkAsRead(ctx context.Context, id, userID uuid.UUID) error {
	res, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return dbError(err, nil, "не удалось отметить уведомление")
	}
	return expectAffected(res, ErrNotificationNotFound, "не удалось отметить уведомление")
}

func (r *NotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	_, err := conn(ctx, r.db).ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND NOT is_read`, userID)
	if err != nil {
		return dbError(err, nil, "не удалось отметить уведомления")
	}
	return nil
}

func (r *NotificationRepository) CountUnread(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	if err := conn(ctx, r.db).GetContext(ctx, &count,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND NOT is_read`, userID); err != nil {
		return 0, dbError(err, nil, "не удалось посчитать уведомления")
	}
	return count, nil
}
