package assignment

import (
	"context"
	"time"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/repository"
	"github.com/ignatzorin/paperdesk-backend/internal/logger"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

const overdueBatch = 100

// FlagOverdueAssignmentsUseCase один раз уведомляет автора и администраторов о просроченном назначении.
type FlagOverdueAssignmentsUseCase struct {
	assignmentRepo repository.AssignmentRepository
	notifier       repository.Notifier
}

func NewFlagOverdueAssignmentsUseCase(assignmentRepo repository.AssignmentRepository, notifier repository.Notifier) *FlagOverdueAssignmentsUseCase {
	return &FlagOverdueAssignmentsUseCase{assignmentRepo: assignmentRepo, notifier: notifier}
}

func (uc *FlagOverdueAssignmentsUseCase) Execute(ctx context.Context, now time.Time) (int, error) {
	overdue, err := uc.assignmentRepo.ListOverdue(ctx, now, overdueBatch)
	if err != nil {
		return 0, err
	}
	flagged := 0
	for _, a := range overdue {
		// сначала отметка: повторный запуск не пришлёт уведомление второй раз
		if err := uc.assignmentRepo.MarkOverdueNotified(ctx, a.ID, now); err != nil {
			logger.Log.WithError(err).WithField("assignment_id", a.ID).Warn("overdue: не удалось отметить назначение")
			continue
		}
		data := map[string]any{
			"assignment_id": a.ID,
			"order_id":      a.OrderID,
			"due_at":        a.DueAt,
		}
		uc.notifier.NotifyUser(ctx, a.WriterID, common.EventAssignmentOverdue, data)
		uc.notifier.NotifyAdmins(ctx, common.EventAssignmentOverdue, data)
		flagged++
	}
	return flagged, nil
}
