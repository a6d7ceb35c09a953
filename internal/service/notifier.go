package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/logger"
)

// Pusher отправляет событие в открытые WebSocket-соединения пользователя.
type Pusher interface {
	Send(userID uuid.UUID, event string, data any) error
}

// AdminDirectory отдаёт идентификаторы активных администраторов.
type AdminDirectory interface {
	ListIDsByRole(ctx context.Context, role valueobject.Role) ([]uuid.UUID, error)
}

// TaskRunner - пул горутин, в котором выполняется доставка.
type TaskRunner interface {
	Go(fn func())
}

// Notifier сохраняет уведомление и пушит его через WebSocket. Доставка идёт в пуле
// уже после ответа клиенту, поэтому ошибки только логируются.
type Notifier struct {
	notifications *NotificationService
	pusher        Pusher
	admins        AdminDirectory
	pool          TaskRunner
}

var _ repository.Notifier = (*Notifier)(nil)

func NewNotifier(notifications *NotificationService, pusher Pusher, admins AdminDirectory, pool TaskRunner) *Notifier {
	return &Notifier{
		notifications: notifications,
		pusher:        pusher,
		admins:        admins,
		pool:          pool,
	}
}

func (n *Notifier) NotifyUser(ctx context.Context, userID uuid.UUID, event string, data any) {
	ctx = context.WithoutCancel(ctx)
	n.pool.Go(func() {
		n.deliver(ctx, userID, event, data)
	})
}

func (n *Notifier) NotifyAdmins(ctx context.Context, event string, data any) {
	ctx = context.WithoutCancel(ctx)
	n.pool.Go(func() {
		ids, err := n.admins.ListIDsByRole(ctx, valueobject.RoleAdmin)
		if err != nil {
			logger.Log.WithError(err).WithField("event", event).Error("notifier: не удалось получить администраторов")
			return
		}
		for _, id := range ids {
			n.deliver(ctx, id, event, data)
		}
	})
}

func (n *Notifier) deliver(ctx context.Context, userID uuid.UUID, event string, data any) {
	fields := logrus.Fields{"event": event, "user_id": userID}
	if _, err := n.notifications.CreateNotification(ctx, userID, event, data); err != nil {
		logger.Log.WithError(err).WithFields(fields).Error("notifier: не удалось сохранить уведомление")
	}
	if err := n.pusher.Send(userID, event, data); err != nil {
		logger.Log.WithError(err).WithFields(fields).Warn("notifier: не удалось отправить событие")
	}
}
