// handler.go — основной обработчик API.
// Объединяет все доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "github.com/skyhigh-intl/inquiry-api/internal/api/errors"
	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/service"
)

// APIHandler — основной обработчик Inquiry API.
// Делегирует запросы в сервисный слой.
type APIHandler struct {
	health        *HealthHandler
	auth          *service.AuthService
	inquiries     *service.InquiryService
	notifications *service.NotificationService
	dashboard     *service.DashboardService
	attachments   *service.AttachmentService
	masterData    *service.MasterDataService
	jwtAuth       *middleware.JWTAuth
	logger        *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	auth *service.AuthService,
	inquiries *service.InquiryService,
	notifications *service.NotificationService,
	dashboard *service.DashboardService,
	attachments *service.AttachmentService,
	masterData *service.MasterDataService,
	jwtAuth *middleware.JWTAuth,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:        health,
		auth:          auth,
		inquiries:     inquiries,
		notifications: notifications,
		dashboard:     dashboard,
		attachments:   attachments,
		masterData:    masterData,
		jwtAuth:       jwtAuth,
		logger:        logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// urlID извлекает числовой параметр из URL.
// При некорректном значении пишет 400 и возвращает false.
func urlID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		apierrors.ValidationError(w, "Некорректный идентификатор в URL")
		return 0, false
	}
	return id, true
}

// decodeJSON разбирает тело запроса в dst.
// При ошибке пишет 400 и возвращает false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return false
	}
	return true
}

// handleServiceError маппит ошибки сервисного слоя в HTTP-ответы.
// Неизвестные ошибки логируются и отдаются как 500 с общим сообщением.
func (h *APIHandler) handleServiceError(w http.ResponseWriter, err error, internalMsg string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		apierrors.ValidationError(w, err.Error())
	case errors.Is(err, service.ErrNotFound):
		apierrors.NotFound(w, err.Error())
	case errors.Is(err, service.ErrConflict):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrNumberExhausted):
		apierrors.Conflict(w, err.Error())
	case errors.Is(err, service.ErrInvalidCredentials):
		apierrors.Unauthorized(w, "Неверные учётные данные")
	default:
		h.logger.Error(internalMsg, slog.Any("error", err))
		apierrors.InternalError(w, internalMsg)
	}
}

// dateLayout — формат бизнес-дат в JSON (без времени).
const dateLayout = "2006-01-02"

// parseDate разбирает дату из строки "YYYY-MM-DD" или RFC3339.
// nil и пустая строка дают nil.
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	if t, err := time.Parse(dateLayout, *s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// formatDate формирует строку "YYYY-MM-DD" из даты.
func formatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// formatDatePtr — formatDate для опциональной даты.
func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatDate(*t)
	return &s
}
