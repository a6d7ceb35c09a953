package assignment_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/assignment"
	"github.com/ignatzorin/paperdesk-backend/internal/usecase/common"
)

func TestFlagOverdueAssignments(t *testing.T) {
	ctx := context.Background()
	e := newEnv()
	_, active := e.seed(t, valueobject.OrderStatusInProgress)
	e.store.SeedOrder(e.client, valueobject.OrderStatusCompleted, &e.writer)

	uc := assignment.NewFlagOverdueAssignmentsUseCase(e.store.Assignments(), e.store.Notifier)

	n, err := uc.Execute(ctx, time.Now())
	require.NoError(t, err)
	assert.Zero(t, n)

	later := active.DueAt.Add(time.Hour)
	n, err = uc.Execute(ctx, later)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 1, e.store.Notifier.Received(e.writer, common.EventAssignmentOverdue))
	assert.Equal(t, 1, e.store.Notifier.Received(uuid.Nil, common.EventAssignmentOverdue))

	// второй прогон не дублирует уведомления
	n, err = uc.Execute(ctx, later.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, 1, e.store.Notifier.Received(e.writer, common.EventAssignmentOverdue))
}
