//go:build integration

package persistence_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ignatzorin/paperdesk-backend/internal/db"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/entity"
	"github.com/ignatzorin/paperdesk-backend/internal/domain/valueobject"
	"github.com/ignatzorin/paperdesk-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/paperdesk-backend/internal/pkg/apperror"
)

// Запуск: go test -tags integration ./internal/infrastructure/persistence/...
// Нужен доступный Docker daemon.

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "paperdesk",
				"POSTGRES_PASSWORD": "paperdesk",
				"POSTGRES_DB":       "paperdesk",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "не удалось запустить контейнер postgres")
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://paperdesk:paperdesk@%s:%s/paperdesk?sslmode=disable", host, port.Port())
}

func newOrder(t *testing.T, clientID uuid.UUID) *entity.Order {
	t.Helper()
	now := time.Now().UTC()
	deadline := now.Add(7 * 24 * time.Hour)
	quote, err := valueobject.NewQuote(valueobject.LevelUndergraduate, 1100, now, deadline, decimal.NewFromInt(30))
	require.NoError(t, err)
	order, err := entity.NewOrder(clientID, entity.OrderDraft{
		Title:         "Курсовая по экономике",
		Description:   "Анализ инфляции за последние десять лет",
		Category:      "economics",
		AcademicLevel: string(valueobject.LevelUndergraduate),
		Words:         1100,
		Deadline:      deadline,
	}, quote, now)
	require.NoError(t, err)
	return order
}

func TestRepositories_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("интеграционный тест")
	}
	ctx := context.Background()

	conn, err := db.NewPostgres(ctx, startPostgres(t), db.DefaultPoolOptions)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.RunMigrations(ctx, conn, "../../../migrations"))
	// повторный прогон не должен ничего ломать
	require.NoError(t, db.RunMigrations(ctx, conn, "../../../migrations"))

	profiles := persistence.NewProfileRepository(conn)
	orders := persistence.NewOrderRepository(conn)
	history := persistence.NewOrderHistoryRepository(conn)
	invoices := persistence.NewInvoiceRepository(conn)
	tx := persistence.NewTransactor(conn)

	now := time.Now().UTC()
	client, err := entity.NewProfile(uuid.New(), valueobject.RoleClient, "Client@Example.com", "Клиент", now)
	require.NoError(t, err)
	require.NoError(t, profiles.Create(ctx, client))

	t.Run("profile round trip", func(t *testing.T) {
		got, err := profiles.FindByID(ctx, client.ID)
		require.NoError(t, err)
		assert.Equal(t, "client@example.com", got.Email)
		assert.Equal(t, valueobject.ProfileStatusActive, got.Status)

		_, err = profiles.FindByID(ctx, uuid.New())
		require.Error(t, err)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.ErrCodeNotFound, appErr.Code)
	})

	order := newOrder(t, client.ID)
	invoice := entity.NewInvoice(order, now)
	require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := orders.Create(ctx, order); err != nil {
			return err
		}
		return invoices.Create(ctx, invoice)
	}))

	t.Run("order status compare and set", func(t *testing.T) {
		stored, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.True(t, order.BudgetUSD.Equal(stored.BudgetUSD))
		assert.Equal(t, valueobject.OrderStatusPendingPayment, stored.Status)

		from := stored.Status
		require.NoError(t, stored.Apply(valueobject.EventPaymentSubmitted, time.Now().UTC()))
		require.NoError(t, orders.UpdateStatus(ctx, stored, from))

		// второй писатель со старым статусом должен проиграть
		stale, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		stale.Status = valueobject.OrderStatusCancelled
		err = orders.UpdateStatus(ctx, stale, valueobject.OrderStatusPendingPayment)
		require.Error(t, err)
		var appErr *apperror.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apperror.ErrCodeConflict, appErr.Code)

		current, err := orders.FindByID(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, valueobject.OrderStatusAvailable, current.Status)
	})

	t.Run("rollback discards writes", func(t *testing.T) {
		boom := errors.New("boom")
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			if err := history.Add(ctx, &entity.OrderHistory{
				ID:         uuid.New(),
				OrderID:    order.ID,
				ActorID:    &client.ID,
				Event:      valueobject.EventPaymentSubmitted,
				FromStatus: valueobject.OrderStatusPendingPayment,
				ToStatus:   valueobject.OrderStatusAvailable,
				CreatedAt:  time.Now().UTC(),
			}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		entries, err := history.ListByOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("open invoice lookup", func(t *testing.T) {
		open, err := invoices.FindOpenByOrder(ctx, order.ID)
		require.NoError(t, err)
		assert.Equal(t, invoice.ID, open.ID)
		assert.Equal(t, valueobject.InvoiceStatusUnpaid, open.Status)
	})
}
