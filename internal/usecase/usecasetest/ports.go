package usecasetest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// Event - доставленное уведомление. UserID == uuid.Nil означает рассылку администраторам.
type Event struct {
	UserID uuid.UUID
	Name   string
	Data   any
}

// Notifier запоминает события вместо отправки.
type Notifier struct {
	mu     sync.Mutex
	events []Event
}

var _ repository.Notifier = (*Notifier)(nil)

func (n *Notifier) NotifyUser(ctx context.Context, userID uuid.UUID, event string, data any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, Event{UserID: userID, Name: event, Data: data})
}

func (n *Notifier) NotifyAdmins(ctx context.Context, event string, data any) {
	n.NotifyUser(ctx, uuid.Nil, event, data)
}

func (n *Notifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

// Received - события конкретного пользователя с указанным именем.
func (n *Notifier) Received(userID uuid.UUID, name string) int {
	count := 0
	for _, e := range n.Events() {
		if e.UserID == userID && e.Name == name {
			count++
		}
	}
	return count
}

// Files - файловое хранилище в памяти.
type Files struct {
	mu      sync.Mutex
	seq     int
	data    map[string][]byte
	FailOn  string // имя файла, сохранение которого вернёт ошибку
	deleted []string
}

var _ repository.FileStore = (*Files)(nil)

func NewFiles() *Files {
	return &Files{data: make(map[string][]byte)}
}

func (f *Files) Save(ctx context.Context, bucket valueobject.Bucket, userID uuid.UUID, originalName string, r io.Reader) (string, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailOn != "" && f.FailOn == originalName {
		return "", 0, apperror.New(apperror.ErrCodeInternal, "не удалось сохранить файл")
	}
	body, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	f.seq++
	path := fmt.Sprintf("%s/%s/%d-%s", bucket, userID, f.seq, originalName)
	f.data[path] = body
	return path, int64(len(body)), nil
}

func (f *Files) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	body, ok := f.data[path]
	if !ok {
		return nil, apperror.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}

func (f *Files) Delete(ctx context.Context, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, path)
	f.deleted = append(f.deleted, path)
	return nil
}

func (f *Files) Exists(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.data[path]
	return ok
}

func (f *Files) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

func (f *Files) Deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}
