package common

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/logger"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// MaxFilesPerUpload - сколько файлов можно приложить за один запрос.
const MaxFilesPerUpload = 10

// Upload - файл из запроса, уже прошедший проверку типа.
type Upload struct {
	Name   string
	Reader io.Reader
}

// StoreAll сохраняет файлы по очереди; при ошибке удаляет уже сохранённые.
func StoreAll(ctx context.Context, store repository.FileStore, bucket valueobject.Bucket, userID uuid.UUID, files []Upload) ([]string, error) {
	if len(files) > MaxFilesPerUpload {
		return nil, apperror.Validation("слишком много файлов в одном запросе")
	}
	paths := make([]string, 0, len(files))
	for _, f := range files {
		path, _, err := store.Save(ctx, bucket, userID, f.Name, f.Reader)
		if err != nil {
			Discard(ctx, store, paths)
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// Discard - компенсация: удаляет файлы, на которые так и не сослалась ни одна запись.
// Ошибки удаления только логируются.
func Discard(ctx context.Context, store repository.FileStore, paths []string) {
	ctx = context.WithoutCancel(ctx)
	for _, p := range paths {
		if err := store.Delete(ctx, p); err != nil {
			logger.Log.WithFields(logrus.Fields{"path": p}).WithError(err).
				Warn("files: не удалось удалить файл после неудачной записи")
		}
	}
}
