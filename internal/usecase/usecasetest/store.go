// Package usecasetest - хранилище в памяти для тестов use case'ов.
// Повторяет поведение PostgreSQL-адаптеров: compare-and-set по статусу,
// частичные уникальные индексы и откат транзакции целиком.
package usecasetest

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

type Store struct {
	mu sync.Mutex
	// txMu выполняет транзакции по одной: так в памяти моделируется SELECT ... FOR UPDATE.
	txMu sync.Mutex

	orders      map[uuid.UUID]entity.Order
	history     []entity.OrderHistory
	bids        map[uuid.UUID]entity.Bid
	assignments map[uuid.UUID]entity.Assignment
	submissions map[uuid.UUID]entity.Submission
	invoices    map[uuid.UUID]entity.Invoice
	messages    map[uuid.UUID]entity.Message
	disputes    map[uuid.UUID]entity.Dispute
	profiles    map[uuid.UUID]entity.Profile
	writers     map[uuid.UUID]entity.WriterProfile

	// failures - ошибки, которые вернёт следующий вызов операции ("assignments.create" и т.п.).
	failures map[string]error

	Notifier *Notifier
	Files    *Files
}

func NewStore() *Store {
	return &Store{
		orders:      make(map[uuid.UUID]entity.Order),
		bids:        make(map[uuid.UUID]entity.Bid),
		assignments: make(map[uuid.UUID]entity.Assignment),
		submissions: make(map[uuid.UUID]entity.Submission),
		invoices:    make(map[uuid.UUID]entity.Invoice),
		messages:    make(map[uuid.UUID]entity.Message),
		disputes:    make(map[uuid.UUID]entity.Dispute),
		profiles:    make(map[uuid.UUID]entity.Profile),
		writers:     make(map[uuid.UUID]entity.WriterProfile),
		failures:    make(map[string]error),
		Notifier:    &Notifier{},
		Files:       NewFiles(),
	}
}

// FailNext заставляет следующий вызов op вернуть err.
func (s *Store) FailNext(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

// fail вызывается под s.mu.
func (s *Store) fail(op string) error {
	if err, ok := s.failures[op]; ok {
		delete(s.failures, op)
		return err
	}
	return nil
}

type txKey struct{}

type snapshot struct {
	orders      map[uuid.UUID]entity.Order
	history     []entity.OrderHistory
	bids        map[uuid.UUID]entity.Bid
	assignments map[uuid.UUID]entity.Assignment
	submissions map[uuid.UUID]entity.Submission
	invoices    map[uuid.UUID]entity.Invoice
	messages    map[uuid.UUID]entity.Message
	disputes    map[uuid.UUID]entity.Dispute
	profiles    map[uuid.UUID]entity.Profile
	writers     map[uuid.UUID]entity.WriterProfile
}

func cloneMap[V any](m map[uuid.UUID]V) map[uuid.UUID]V {
	out := make(map[uuid.UUID]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot{
		orders:      cloneMap(s.orders),
		history:     append([]entity.OrderHistory(nil), s.history...),
		bids:        cloneMap(s.bids),
		assignments: cloneMap(s.assignments),
		submissions: cloneMap(s.submissions),
		invoices:    cloneMap(s.invoices),
		messages:    cloneMap(s.messages),
		disputes:    cloneMap(s.disputes),
		profiles:    cloneMap(s.profiles),
		writers:     cloneMap(s.writers),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders = snap.orders
	s.history = snap.history
	s.bids = snap.bids
	s.assignments = snap.assignments
	s.submissions = snap.submissions
	s.invoices = snap.invoices
	s.messages = snap.messages
	s.disputes = snap.disputes
	s.profiles = snap.profiles
	s.writers = snap.writers
}

// Transactor откатывает все изменения в памяти, если fn вернула ошибку.
type Transactor struct {
	s *Store
}

func (s *Store) Transactor() *Transactor { return &Transactor{s: s} }

func (t *Transactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(txKey{}) != nil {
		return fn(ctx)
	}
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	snap := t.s.snapshot()
	if err := fn(context.WithValue(ctx, txKey{}, true)); err != nil {
		t.s.restore(snap)
		return err
	}
	return nil
}

func conflict(what string) error {
	return apperror.New(apperror.ErrCodeConflict, fmt.Sprintf("%s: нарушено ограничение уникальности", what))
}

func paginate[T any](items []T, limit, offset int) []T {
	if limit <= 0 {
		limit = 20
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func cloneStrings(in []string) []string {
	return append([]string{}, in...)
}
