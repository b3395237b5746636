// Пакет server — HTTP-сервер Inquiry API с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на API Gateway.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skyhigh-intl/inquiry-api/internal/api/handlers"
	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/config"
)

// Server — HTTP-сервер Inquiry API.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// jwtAuth — JWT middleware (может быть nil для тестирования без auth).
func New(cfg *config.Config, logger *slog.Logger, h *handlers.APIHandler, jwtAuth *middleware.JWTAuth) *Server {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// JWT middleware с исключениями для публичных endpoints.
	// Health и metrics проверяются Kubernetes напрямую, без API Gateway.
	if jwtAuth != nil {
		router.Use(jwtAuthWithExclusions(jwtAuth))
	}

	registerRoutes(router, h)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// registerRoutes регистрирует все маршруты API.
func registerRoutes(router chi.Router, h *handlers.APIHandler) {
	// Health и метрики
	router.Get("/health/live", h.HealthLive)
	router.Get("/health/ready", h.HealthReady)
	router.Get("/metrics", h.GetMetrics)

	router.Route("/api", func(r chi.Router) {
		// Аутентификация
		r.Post("/auth/login", h.Login)
		r.Get("/auth/verify", h.VerifyToken)
		r.Post("/auth/change-password", h.ChangePassword)

		// Заявки
		r.Route("/inquiries", func(r chi.Router) {
			r.Get("/", h.ListInquiries)
			r.Post("/", h.CreateInquiry)
			r.Get("/{id}", h.GetInquiry)
			r.Put("/{id}", h.UpdateInquiry)
			r.Delete("/{id}", h.DeleteInquiry)
			r.Put("/{inquiryId}/details/{detailId}", h.UpdateInquiryDetail)
		})

		// Вложения
		r.Route("/attachments", func(r chi.Router) {
			r.Post("/header/{inquiryId}", h.UploadHeaderAttachments)
			r.Post("/detail/{detailId}", h.UploadDetailAttachments)
			r.Get("/header/{inquiryId}", h.ListHeaderAttachments)
			r.Get("/detail/{detailId}", h.ListDetailAttachments)
			r.Get("/{id}/download", h.DownloadAttachment)
			r.Get("/{id}/view", h.ViewAttachment)
			r.Delete("/{id}", h.DeleteAttachment)
		})

		// Клиенты
		r.Route("/customers", func(r chi.Router) {
			r.Get("/", h.ListCustomers)
			r.Post("/", h.CreateCustomer)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}", h.UpdateCustomer)
			r.Delete("/{id}", h.DeleteCustomer)
		})

		// Материалы
		r.Route("/materials", func(r chi.Router) {
			r.Get("/", h.ListMaterials)
			r.Post("/", h.CreateMaterial)
			r.Get("/{id}", h.GetMaterial)
			r.Put("/{id}", h.UpdateMaterial)
			r.Delete("/{id}", h.DeleteMaterial)
		})

		// Исполнители
		r.Route("/assignees", func(r chi.Router) {
			r.Get("/", h.ListAssignees)
			r.Post("/", h.CreateAssignee)
			r.Get("/{id}", h.GetAssignee)
			r.Put("/{id}", h.UpdateAssignee)
			r.Delete("/{id}", h.DeleteAssignee)
		})

		// Справочники
		r.Route("/master", func(r chi.Router) {
			r.Get("/tasks", h.ListTasks)
			r.Post("/tasks", h.CreateTask)
			r.Get("/tasks/{id}", h.GetTask)
			r.Put("/tasks/{id}", h.UpdateTask)
			r.Delete("/tasks/{id}", h.DeleteTask)

			r.Get("/categories", h.ListProductCategories)
			r.Post("/categories", h.CreateProductCategory)
			r.Get("/categories/{id}", h.GetProductCategory)
			r.Put("/categories/{id}", h.UpdateProductCategory)
			r.Delete("/categories/{id}", h.DeleteProductCategory)

			r.Get("/customer-types", h.ListCustomerTypes)
			r.Post("/customer-types", h.CreateCustomerType)
			r.Get("/customer-types/{id}", h.GetCustomerType)
			r.Put("/customer-types/{id}", h.UpdateCustomerType)
			r.Delete("/customer-types/{id}", h.DeleteCustomerType)

			r.Get("/material-types", h.ListMaterialTypes)
			r.Post("/material-types", h.CreateMaterialType)
			r.Get("/material-types/{id}", h.GetMaterialType)
			r.Put("/material-types/{id}", h.UpdateMaterialType)
			r.Delete("/material-types/{id}", h.DeleteMaterialType)
		})

		// Страны
		r.Route("/countries", func(r chi.Router) {
			r.Get("/", h.ListCountries)
			r.Post("/", h.CreateCountry)
			r.Get("/{id}", h.GetCountry)
			r.Put("/{id}", h.UpdateCountry)
			r.Delete("/{id}", h.DeleteCountry)
		})

		// Дашборд
		r.Route("/dashboard", func(r chi.Router) {
			r.Get("/stats", h.DashboardStats)
			r.Get("/recent", h.DashboardRecent)
			r.Get("/by-status", h.DashboardByStatus)
			r.Get("/by-country", h.DashboardByCountry)
			r.Get("/monthly-trend", h.DashboardMonthlyTrend)
		})

		// Уведомления
		r.Get("/notifications", h.ListNotifications)
		r.Get("/notifications/count", h.NotificationCounts)
	})
}

// isPublicPath сообщает, доступен ли путь без JWT.
// Просмотр вложений проверяет токен сам: браузер запрашивает
// изображения через <img src> с токеном в query-параметре.
func isPublicPath(path string) bool {
	if strings.HasPrefix(path, "/health/") || path == "/metrics" {
		return true
	}
	if path == "/api/auth/login" {
		return true
	}
	if strings.HasPrefix(path, "/api/attachments/") && strings.HasSuffix(path, "/view") {
		return true
	}
	return false
}

// jwtAuthWithExclusions оборачивает JWTAuth.Middleware(), пропуская публичные пути.
func jwtAuthWithExclusions(jwtAuth *middleware.JWTAuth) func(http.Handler) http.Handler {
	jwtMiddleware := jwtAuth.Middleware()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isPublicPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			jwtMiddleware(next).ServeHTTP(w, r)
		})
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
