// Точка входа Inquiry API — сервис учёта заявок клиентов.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт репозитории, сервисный слой и API handlers, запускает
// topologymetrics и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/skyhigh-intl/inquiry-api/internal/api/handlers"
	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/config"
	"github.com/skyhigh-intl/inquiry-api/internal/database"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
	"github.com/skyhigh-intl/inquiry-api/internal/server"
	"github.com/skyhigh-intl/inquiry-api/internal/service"
	"github.com/skyhigh-intl/inquiry-api/internal/storage"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Inquiry API запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("IQ_DEPHEALTH_GROUP") == "" {
		logger.Warn("IQ_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Хранилище вложений на диске
	store, err := storage.NewDiskStore(cfg.UploadDir, cfg.MaxUploadSize)
	if err != nil {
		logger.Error("Ошибка инициализации хранилища вложений",
			slog.String("dir", cfg.UploadDir), slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("Хранилище вложений готово", slog.String("dir", store.Dir()))

	// 6. Repositories
	auditRunner := repository.NewAuditRunner(pool)
	inquiryRepo := repository.NewInquiryRepository(pool)
	attachmentRepo := repository.NewAttachmentRepository(pool)
	customerRepo := repository.NewCustomerRepository(pool)
	materialRepo := repository.NewMaterialRepository(pool)
	assigneeRepo := repository.NewAssigneeRepository(pool)
	lookupRepo := repository.NewLookupRepository(pool)
	userRepo := repository.NewUserRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	dashboardRepo := repository.NewDashboardRepository(pool)

	// 7. Services
	authSvc := service.NewAuthService(userRepo, auditRunner, cfg.JWTSecret, cfg.JWTExpires, logger)
	inquirySvc := service.NewInquiryService(inquiryRepo, attachmentRepo, auditRunner, store, logger)
	notificationSvc := service.NewNotificationService(notificationRepo, logger)
	dashboardSvc := service.NewDashboardService(dashboardRepo, logger)
	attachmentSvc := service.NewAttachmentService(attachmentRepo, auditRunner, store, logger)
	masterDataSvc := service.NewMasterDataService(
		customerRepo, materialRepo, assigneeRepo, lookupRepo, auditRunner, logger,
	)

	// 8. JWT middleware
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, logger)

	// 9. Readiness checker и API handler
	pgChecker := database.NewReadinessChecker(pool)
	healthHandler := handlers.NewHealthHandler(pgChecker)

	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		authSvc,
		inquirySvc,
		notificationSvc,
		dashboardSvc,
		attachmentSvc,
		masterDataSvc,
		jwtAuth,
		logger,
	)

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"inquiry-api",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 11. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, jwtAuth)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 12. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("Inquiry API остановлен")
}
