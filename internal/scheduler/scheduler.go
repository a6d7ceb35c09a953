// Package scheduler запускает фоновые задачи по расписанию через gocron.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/paperdesk-backend/internal/logger"
)

// Job - задача, которая обрабатывает пачку записей и возвращает их число.
type Job interface {
	Execute(ctx context.Context, now time.Time) (int, error)
}

// Manager держит планировщик и общий контекст задач.
type Manager struct {
	scheduler gocron.Scheduler
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewManager(interval time.Duration) (*Manager, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("scheduler: не удалось создать планировщик: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{scheduler: s, interval: interval, ctx: ctx, cancel: cancel}, nil
}

// Register добавляет задачу; одновременно выполняется не больше одного запуска каждой.
func (m *Manager) Register(name string, job Job) error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(m.interval),
		gocron.NewTask(m.run, name, job),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("scheduler: не удалось зарегистрировать %s: %w", name, err)
	}
	return nil
}

func (m *Manager) run(name string, job Job) {
	started := time.Now()
	fields := logrus.Fields{"job": name}
	n, err := job.Execute(m.ctx, started.UTC())
	if err != nil {
		logger.Log.WithError(err).WithFields(fields).Error("scheduler: задача завершилась с ошибкой")
		return
	}
	fields["processed"] = n
	fields["took"] = time.Since(started).String()
	if n > 0 {
		logger.Log.WithFields(fields).Info("scheduler: задача выполнена")
		return
	}
	logger.Log.WithFields(fields).Debug("scheduler: задача выполнена")
}

func (m *Manager) Start() {
	m.scheduler.Start()
	logger.Log.WithField("interval", m.interval.String()).Info("scheduler: запущен")
}

// Stop отменяет контекст текущих запусков и дожидается их завершения.
func (m *Manager) Stop() {
	m.cancel()
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Log.WithError(err).Error("scheduler: ошибка остановки")
	}
	logger.Log.Info("scheduler: остановлен")
}
