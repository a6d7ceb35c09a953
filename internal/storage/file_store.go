package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// headerSize - сколько байт filetype нужно для определения типа.
const headerSize = 261

// Разрешённые типы по расширению, которое вернул filetype.
var allowedKinds = map[string]bool{
	"pdf":  true,
	"doc":  true,
	"docx": true,
	"odt":  true,
	"rtf":  true,
	"xls":  true,
	"xlsx": true,
	"ppt":  true,
	"pptx": true,
	"zip":  true,
	"jpg":  true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

// FileStore хранит вложения в локальном каталоге: {bucket}/{user}/{unix_ms}-{random}.{ext}.
type FileStore struct {
	rootPath       string
	maxUploadBytes int64
}

func NewFileStore(rootPath string, maxUploadMB int64) (*FileStore, error) {
	for _, b := range []valueobject.Bucket{
		valueobject.BucketOrderAttachments,
		valueobject.BucketMessageAttachments,
		valueobject.BucketSubmissionFiles,
	} {
		if err := os.MkdirAll(filepath.Join(rootPath, string(b)), 0o755); err != nil {
			return nil, fmt.Errorf("storage: не удалось создать каталог %s: %w", b, err)
		}
	}
	return &FileStore{
		rootPath:       rootPath,
		maxUploadBytes: maxUploadMB * 1024 * 1024,
	}, nil
}

// Save проверяет реальный тип файла по сигнатуре и сохраняет его. Возвращает относительный путь.
func (s *FileStore) Save(ctx context.Context, bucket valueobject.Bucket, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}
	if !bucket.IsValid() {
		return "", 0, apperror.Validation("неизвестное хранилище файлов")
	}

	head := make([]byte, headerSize)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", 0, fmt.Errorf("storage: ошибка чтения файла: %w", err)
	}
	head = head[:n]
	if n == 0 {
		return "", 0, apperror.Validation(fmt.Sprintf("файл %q пустой", originalName))
	}
	ext, err := detectExtension(head, originalName)
	if err != nil {
		return "", 0, err
	}

	fileName := fmt.Sprintf("%d-%s.%s", time.Now().UnixMilli(), randomSuffix(), ext)
	relative := filepath.ToSlash(filepath.Join(string(bucket), userID.String(), fileName))

	userDir := filepath.Join(s.rootPath, string(bucket), userID.String())
	if err := os.MkdirAll(userDir, 0o755); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать каталог пользователя: %w", err)
	}

	targetPath := filepath.Join(s.rootPath, relative)
	tempPath := targetPath + ".tmp"

	f, err := os.Create(tempPath)
	if err != nil {
		return "", 0, fmt.Errorf("storage: не удалось создать файл: %w", err)
	}
	defer f.Close()

	limited := io.LimitedReader{R: io.MultiReader(bytes.NewReader(head), r), N: s.maxUploadBytes + 1}
	written, err := io.Copy(f, &limited)
	if err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка записи файла: %w", err)
	}
	if written > s.maxUploadBytes {
		_ = os.Remove(tempPath)
		return "", 0, apperror.Validation(fmt.Sprintf("размер файла превышает %d МБ", s.maxUploadBytes/1024/1024))
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tempPath)
		return "", 0, fmt.Errorf("storage: ошибка закрытия файла: %w", err)
	}
	if err := os.Rename(tempPath, targetPath); err != nil {
		return "", 0, fmt.Errorf("storage: не удалось переименовать файл: %w", err)
	}
	return relative, written, nil
}

func (s *FileStore) Open(ctx context.Context, relativePath string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	target, err := s.resolve(relativePath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperror.ErrFileNotFound
		}
		return nil, fmt.Errorf("storage: не удалось открыть файл: %w", err)
	}
	return f, nil
}

// Delete удаляет файл; отсутствующий файл ошибкой не считается.
func (s *FileStore) Delete(ctx context.Context, relativePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target, err := s.resolve(relativePath)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: не удалось удалить файл: %w", err)
	}
	return nil
}

// resolve не выпускает путь за пределы корня хранилища.
func (s *FileStore) resolve(relativePath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relativePath))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", apperror.ErrFileNotFound
	}
	bucket := strings.SplitN(filepath.ToSlash(clean), "/", 2)[0]
	if !valueobject.Bucket(bucket).IsValid() {
		return "", apperror.ErrFileNotFound
	}
	return filepath.Join(s.rootPath, clean), nil
}

// detectExtension определяет тип по сигнатуре; текстовые .txt сигнатуры не имеют и проверяются на UTF-8.
func detectExtension(head []byte, originalName string) (string, error) {
	kind, err := filetype.Match(head)
	if err == nil && kind != filetype.Unknown {
		ext := kind.Extension
		if ext == "jpeg" {
			ext = "jpg"
		}
		if !allowedKinds[ext] {
			return "", apperror.Validation(fmt.Sprintf("неподдерживаемый тип файла (%s)", kind.MIME.Value))
		}
		// docx, xlsx и pptx - это zip; если сигнатура общая, доверяем расширению из имени
		if ext == "zip" {
			if named := strings.TrimPrefix(strings.ToLower(filepath.Ext(originalName)), "."); named == "docx" || named == "xlsx" || named == "pptx" || named == "odt" {
				return named, nil
			}
		}
		return ext, nil
	}
	if strings.EqualFold(filepath.Ext(originalName), ".txt") && utf8.Valid(head) {
		return "txt", nil
	}
	return "", apperror.Validation(fmt.Sprintf("не удалось определить тип файла %q", originalName))
}

func randomSuffix() string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return uuid.NewString()[:12]
	}
	return hex.EncodeToString(b)
}
