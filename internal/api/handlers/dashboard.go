// dashboard.go — обработчики дашборда.
// GET /api/dashboard/stats — сводные счётчики
// GET /api/dashboard/recent?limit=N — последние заявки
// GET /api/dashboard/by-status — распределение по статусам
// GET /api/dashboard/by-country — топ стран
// GET /api/dashboard/monthly-trend — помесячная динамика за год
package handlers

import (
	"net/http"
	"strconv"
)

// DashboardStats обрабатывает GET /api/dashboard/stats.
func (h *APIHandler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Stats(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения статистики")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// DashboardRecent обрабатывает GET /api/dashboard/recent.
// Параметр limit опционален; некорректное значение игнорируется.
func (h *APIHandler) DashboardRecent(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	headers, err := h.dashboard.Recent(r.Context(), limit)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения последних заявок")
		return
	}

	out := make([]headerResponse, 0, len(headers))
	for _, hdr := range headers {
		out = append(out, toHeaderResponse(hdr))
	}
	writeJSON(w, http.StatusOK, out)
}

// DashboardByStatus обрабатывает GET /api/dashboard/by-status.
func (h *APIHandler) DashboardByStatus(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboard.ByStatus(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка распределения по статусам")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// DashboardByCountry обрабатывает GET /api/dashboard/by-country.
func (h *APIHandler) DashboardByCountry(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboard.ByCountry(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка распределения по странам")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}

// DashboardMonthlyTrend обрабатывает GET /api/dashboard/monthly-trend.
func (h *APIHandler) DashboardMonthlyTrend(w http.ResponseWriter, r *http.Request) {
	counts, err := h.dashboard.MonthlyTrend(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения помесячной динамики")
		return
	}
	writeJSON(w, http.StatusOK, counts)
}
