package goroutine

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// Logger интерфейс для логирования ошибок
type Logger interface {
	Errorf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
}

// Pool - ограниченный пул горутин для фоновых задач (уведомления, сохранения).
// Паника в задаче логируется и не роняет процесс.
type Pool struct {
	pool   *ants.Pool
	logger Logger
}

// NewPool создаёт пул; maxQueued ограничивает число задач, ожидающих свободного воркера.
func NewPool(size, maxQueued int, logger Logger) (*Pool, error) {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	p, err := ants.NewPool(size,
		ants.WithMaxBlockingTasks(maxQueued),
		ants.WithPanicHandler(func(r interface{}) {
			logger.Errorf("Panic in pooled goroutine: %v\nStack trace:\n%s", r, debug.Stack())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("goroutine: не удалось создать пул: %w", err)
	}
	return &Pool{pool: p, logger: logger}, nil
}

// Go ставит задачу в пул. Если пул переполнен или закрыт, задача отбрасывается с предупреждением.
func (p *Pool) Go(fn func()) {
	if err := p.pool.Submit(fn); err != nil {
		p.logger.Warnf("goroutine: задача отброшена: %v", err)
	}
}

// Running - число занятых воркеров.
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release дожидается завершения задач не дольше timeout.
func (p *Pool) Release(timeout time.Duration) {
	if timeout <= 0 {
		p.pool.Release()
		return
	}
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		p.logger.Warnf("goroutine: пул остановлен с незавершёнными задачами: %v", err)
	}
}

// SafeGo запускает отдельную горутину с обработкой panic (для долгоживущих циклов вне пула).
func SafeGo(logger Logger, fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("Panic in goroutine: %v\nStack trace:\n%s", r, debug.Stack())
			}
		}()
		fn()
	}()
}
