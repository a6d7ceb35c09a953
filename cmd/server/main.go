package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/paperdesk-backend/internal/app"
	"github.com/ignatzorin/paperdesk-backend/internal/config"
	"github.com/ignatzorin/paperdesk-backend/internal/db"
	"github.com/ignatzorin/paperdesk-backend/internal/goroutine"
	httpRouter "github.com/ignatzorin/paperdesk-backend/internal/http/router"
	"github.com/ignatzorin/paperdesk-backend/internal/infrastructure/persistence"
	"github.com/ignatzorin/paperdesk-backend/internal/logger"
	rail "github.com/ignatzorin/paperdesk-backend/internal/payment"
	"github.com/ignatzorin/paperdesk-backend/internal/scheduler"
	"github.com/ignatzorin/paperdesk-backend/internal/service"
	"github.com/ignatzorin/paperdesk-backend/internal/storage"
	"github.com/ignatzorin/paperdesk-backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel)
	if !cfg.IsProduction() {
		logger.SetTextFormatter()
	}
	if closer := logger.EnableFileOutput(logger.FileOptions{
		Path:       cfg.LogFile,
		MaxSizeMB:  cfg.LogMaxSizeMB,
		MaxBackups: cfg.LogMaxBackups,
	}); closer != nil {
		defer closer.Close()
	}

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL, db.DefaultPoolOptions)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка подключения к базе")
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка миграций")
	}

	rails, err := rail.Load(cfg.PaymentRailsFile)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: ошибка загрузки способов оплаты")
	}

	files, err := storage.NewFileStore(cfg.MediaStoragePath, cfg.MaxUploadSizeMB)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось подготовить файловое хранилище")
	}

	pool, err := goroutine.NewPool(cfg.NotifyPoolSize, cfg.NotifyPoolSize*64, logger.Log)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось создать пул уведомлений")
	}
	defer pool.Release(5 * time.Second)

	hub := ws.NewHub()
	goroutine.SafeGo(logger.Log, func() { hub.Run(ctx) })

	profileRepo := persistence.NewProfileRepository(dbConn)
	notificationService := service.NewNotificationService(persistence.NewNotificationRepository(dbConn))
	notifier := service.NewNotifier(notificationService, hub, profileRepo, pool)
	tokenManager := service.NewTokenManager(cfg.JWTSecret)

	container := app.Build(app.Deps{
		Repos: app.Repositories{
			Tx:          persistence.NewTransactor(dbConn),
			Profiles:    profileRepo,
			Writers:     persistence.NewWriterProfileRepository(dbConn),
			Orders:      persistence.NewOrderRepository(dbConn),
			History:     persistence.NewOrderHistoryRepository(dbConn),
			Bids:        persistence.NewBidRepository(dbConn),
			Assignments: persistence.NewAssignmentRepository(dbConn),
			Submissions: persistence.NewSubmissionRepository(dbConn),
			Invoices:    persistence.NewInvoiceRepository(dbConn),
			Messages:    persistence.NewMessageRepository(dbConn),
			Disputes:    persistence.NewDisputeRepository(dbConn),
		},
		Files:          files,
		Notifier:       notifier,
		Notifications:  notificationService,
		Rails:          rails,
		Hub:            hub,
		Tokens:         tokenManager,
		DB:             dbConn,
		CommissionPct:  cfg.CommissionPercent,
		UnpaidOrderTTL: cfg.UnpaidOrderTTL,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	jobs, err := scheduler.NewManager(cfg.SchedulerInterval)
	if err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось создать планировщик")
	}
	if err := jobs.Register("expire_unpaid_orders", container.ExpireOrder); err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось зарегистрировать задачу")
	}
	if err := jobs.Register("flag_overdue_assignments", container.FlagOverdue); err != nil {
		logger.Log.WithError(err).Fatal("main: не удалось зарегистрировать задачу")
	}
	jobs.Start()
	defer jobs.Stop()

	engine := httpRouter.SetupRouter(cfg, container.Handlers, tokenManager, container.Profiles)

	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Log.WithError(err).Error("main: ошибка остановки http сервера")
		}
	}()

	logger.Log.WithFields(logrus.Fields{"port": cfg.HTTPPort, "env": cfg.Env}).Info("main: HTTP сервер запущен")

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.WithError(err).Error("main: сервер завершился с ошибкой")
	}
}

func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		logger.Log.WithError(err).Warn("main: ошибка закрытия базы")
	}
}
