// notifications.go — обработчики уведомлений.
// GET /api/notifications — список уведомлений со сводкой
// GET /api/notifications/count — только счётчики (для badge)
package handlers

import "net/http"

// ListNotifications обрабатывает GET /api/notifications.
func (h *APIHandler) ListNotifications(w http.ResponseWriter, r *http.Request) {
	list, err := h.notifications.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения уведомлений")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// NotificationCounts обрабатывает GET /api/notifications/count.
func (h *APIHandler) NotificationCounts(w http.ResponseWriter, r *http.Request) {
	summary, err := h.notifications.Counts(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения счётчиков уведомлений")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
