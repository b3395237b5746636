// materials.go — обработчики материалов.
// Полный CRUD: /api/materials[/{id}]
package handlers

import (
	"net/http"
	"time"

	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// materialRequest — тело запросов создания и обновления материала.
type materialRequest struct {
	MaterialName        string   `json:"materialName"`
	MaterialDescription *string  `json:"materialDescription"`
	MaterialTypeID      *int64   `json:"materialTypeId"`
	MaterialCategory    *string  `json:"materialCategory"`
	UnitOfMeasure       *string  `json:"unitOfMeasure"`
	StandardCost        *float64 `json:"standardCost"`
}

// materialResponse — материал в ответе.
type materialResponse struct {
	MaterialID              int64     `json:"material_id"`
	MaterialName            string    `json:"material_name"`
	MaterialDescription     *string   `json:"material_description"`
	MaterialTypeID          *int64    `json:"material_type_id"`
	MaterialTypeDescription *string   `json:"material_type_description"`
	MaterialCategory        *string   `json:"material_category"`
	UnitOfMeasure           *string   `json:"unit_of_measure"`
	StandardCost            *float64  `json:"standard_cost"`
	CreatedBy               string    `json:"created_by"`
	CreatedAt               time.Time `json:"created_at"`
	ModifiedBy              string    `json:"modified_by"`
	ModifiedAt              time.Time `json:"modified_at"`
}

func toMaterialResponse(m *model.Material) materialResponse {
	return materialResponse{
		MaterialID:              m.ID,
		MaterialName:            m.Name,
		MaterialDescription:     m.Description,
		MaterialTypeID:          m.MaterialTypeID,
		MaterialTypeDescription: m.MaterialTypeName,
		MaterialCategory:        m.Category,
		UnitOfMeasure:           m.UnitOfMeasure,
		StandardCost:            m.StandardCost,
		CreatedBy:               m.CreatedBy,
		CreatedAt:               m.CreatedAt,
		ModifiedBy:              m.ModifiedBy,
		ModifiedAt:              m.ModifiedAt,
	}
}

func (r materialRequest) toModel(id int64) *model.Material {
	return &model.Material{
		ID:             id,
		Name:           r.MaterialName,
		Description:    r.MaterialDescription,
		MaterialTypeID: r.MaterialTypeID,
		Category:       r.MaterialCategory,
		UnitOfMeasure:  r.UnitOfMeasure,
		StandardCost:   r.StandardCost,
	}
}

// ListMaterials обрабатывает GET /api/materials.
func (h *APIHandler) ListMaterials(w http.ResponseWriter, r *http.Request) {
	materials, err := h.masterData.ListMaterials(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения списка материалов")
		return
	}

	out := make([]materialResponse, 0, len(materials))
	for _, m := range materials {
		out = append(out, toMaterialResponse(m))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetMaterial обрабатывает GET /api/materials/{id}.
func (h *APIHandler) GetMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	m, err := h.masterData.GetMaterial(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения материала")
		return
	}
	writeJSON(w, http.StatusOK, toMaterialResponse(m))
}

// CreateMaterial обрабатывает POST /api/materials.
func (h *APIHandler) CreateMaterial(w http.ResponseWriter, r *http.Request) {
	var req materialRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	m := req.toModel(0)
	if err := h.masterData.CreateMaterial(r.Context(), middleware.Username(r.Context()), m); err != nil {
		h.handleServiceError(w, err, "Ошибка создания материала")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Material created successfully",
		"materialId": m.ID,
	})
}

// UpdateMaterial обрабатывает PUT /api/materials/{id}.
func (h *APIHandler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req materialRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.masterData.UpdateMaterial(r.Context(), middleware.Username(r.Context()), req.toModel(id)); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления материала")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Material updated successfully",
		"materialId": id,
	})
}

// DeleteMaterial обрабатывает DELETE /api/materials/{id}.
func (h *APIHandler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.masterData.DeleteMaterial(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления материала")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Material deleted successfully"})
}
