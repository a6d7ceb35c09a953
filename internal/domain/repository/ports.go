package repository

import (
	"context"
	"io"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
)

// Transactor выполняет fn в одной транзакции БД. Вложенные вызовы используют внешнюю.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier доставляет события пользователям. Ошибки доставки не возвращаются.
type Notifier interface {
	NotifyUser(ctx context.Context, userID uuid.UUID, event string, data any)
	NotifyAdmins(ctx context.Context, event string, data any)
}

// FileStore - хранилище вложений, разбитое на бакеты.
type FileStore interface {
	Save(ctx context.Context, bucket valueobject.Bucket, userID uuid.UUID, originalName string, r io.Reader) (path string, size int64, err error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}
