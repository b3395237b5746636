// assignees.go — обработчики исполнителей.
// Полный CRUD: /api/assignees[/{id}]
package handlers

import (
	"net/http"
	"time"

	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// assigneeRequest — тело запросов создания и обновления исполнителя.
type assigneeRequest struct {
	AssigneeName string  `json:"assigneeName"`
	Title        *string `json:"title"`
	Department   *string `json:"department"`
	Email        *string `json:"email"`
	Phone        *string `json:"phone"`
	Specialty    *string `json:"specialty"`
}

// assigneeResponse — исполнитель в ответе.
type assigneeResponse struct {
	AssigneeID   int64     `json:"assignee_id"`
	AssigneeName string    `json:"assignee_name"`
	Title        *string   `json:"title"`
	Department   *string   `json:"department"`
	Email        *string   `json:"email"`
	Phone        *string   `json:"phone"`
	Specialty    *string   `json:"specialty"`
	CreatedBy    string    `json:"created_by"`
	CreatedAt    time.Time `json:"created_at"`
	ModifiedBy   string    `json:"modified_by"`
	ModifiedAt   time.Time `json:"modified_at"`
}

func toAssigneeResponse(a *model.Assignee) assigneeResponse {
	return assigneeResponse{
		AssigneeID:   a.ID,
		AssigneeName: a.Name,
		Title:        a.Title,
		Department:   a.Department,
		Email:        a.Email,
		Phone:        a.Phone,
		Specialty:    a.Specialty,
		CreatedBy:    a.CreatedBy,
		CreatedAt:    a.CreatedAt,
		ModifiedBy:   a.ModifiedBy,
		ModifiedAt:   a.ModifiedAt,
	}
}

func (r assigneeRequest) toModel(id int64) *model.Assignee {
	return &model.Assignee{
		ID:         id,
		Name:       r.AssigneeName,
		Title:      r.Title,
		Department: r.Department,
		Email:      r.Email,
		Phone:      r.Phone,
		Specialty:  r.Specialty,
	}
}

// ListAssignees обрабатывает GET /api/assignees.
func (h *APIHandler) ListAssignees(w http.ResponseWriter, r *http.Request) {
	assignees, err := h.masterData.ListAssignees(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения списка исполнителей")
		return
	}

	out := make([]assigneeResponse, 0, len(assignees))
	for _, a := range assignees {
		out = append(out, toAssigneeResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetAssignee обрабатывает GET /api/assignees/{id}.
func (h *APIHandler) GetAssignee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.masterData.GetAssignee(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения исполнителя")
		return
	}
	writeJSON(w, http.StatusOK, toAssigneeResponse(a))
}

// CreateAssignee обрабатывает POST /api/assignees.
func (h *APIHandler) CreateAssignee(w http.ResponseWriter, r *http.Request) {
	var req assigneeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	a := req.toModel(0)
	if err := h.masterData.CreateAssignee(r.Context(), middleware.Username(r.Context()), a); err != nil {
		h.handleServiceError(w, err, "Ошибка создания исполнителя")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Assignee created successfully",
		"assigneeId": a.ID,
	})
}

// UpdateAssignee обрабатывает PUT /api/assignees/{id}.
func (h *APIHandler) UpdateAssignee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req assigneeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.masterData.UpdateAssignee(r.Context(), middleware.Username(r.Context()), req.toModel(id)); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления исполнителя")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Assignee updated successfully",
		"assigneeId": id,
	})
}

// DeleteAssignee обрабатывает DELETE /api/assignees/{id}.
func (h *APIHandler) DeleteAssignee(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.masterData.DeleteAssignee(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления исполнителя")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Assignee deleted successfully"})
}
