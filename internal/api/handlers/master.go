// master.go — обработчики простых справочников.
// /api/master/tasks, /api/master/categories, /api/master/customer-types,
// /api/master/material-types и /api/countries. Полный CRUD для каждого.
package handlers

import (
	"net/http"
	"time"

	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// --- Задачи ---

type taskRequest struct {
	TaskName            string  `json:"taskName"`
	TaskDescription     *string `json:"taskDescription"`
	DefaultDurationDays *int    `json:"defaultDurationDays"`
}

type taskResponse struct {
	TaskID              int64     `json:"task_id"`
	TaskName            string    `json:"task_name"`
	TaskDescription     *string   `json:"task_description"`
	DefaultDurationDays int       `json:"default_duration_days"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	ModifiedBy          string    `json:"modified_by"`
	ModifiedAt          time.Time `json:"modified_at"`
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		TaskID:              t.ID,
		TaskName:            t.Name,
		TaskDescription:     t.Description,
		DefaultDurationDays: t.DefaultDurationDays,
		CreatedBy:           t.CreatedBy,
		CreatedAt:           t.CreatedAt,
		ModifiedBy:          t.ModifiedBy,
		ModifiedAt:          t.ModifiedAt,
	}
}

func (r taskRequest) toModel(id int64) *model.Task {
	t := &model.Task{
		ID:                  id,
		Name:                r.TaskName,
		Description:         r.TaskDescription,
		DefaultDurationDays: 7,
	}
	if r.DefaultDurationDays != nil {
		t.DefaultDurationDays = *r.DefaultDurationDays
	}
	return t
}

// ListTasks обрабатывает GET /api/master/tasks.
func (h *APIHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.masterData.ListTasks(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения списка задач")
		return
	}
	out := make([]taskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, toTaskResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetTask обрабатывает GET /api/master/tasks/{id}.
func (h *APIHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.masterData.GetTask(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения задачи")
		return
	}
	writeJSON(w, http.StatusOK, toTaskResponse(t))
}

// CreateTask обрабатывает POST /api/master/tasks.
func (h *APIHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t := req.toModel(0)
	if err := h.masterData.CreateTask(r.Context(), middleware.Username(r.Context()), t); err != nil {
		h.handleServiceError(w, err, "Ошибка создания задачи")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Task created successfully",
		"taskId":  t.ID,
	})
}

// UpdateTask обрабатывает PUT /api/master/tasks/{id}.
func (h *APIHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req taskRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.masterData.UpdateTask(r.Context(), middleware.Username(r.Context()), req.toModel(id)); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления задачи")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Task updated successfully",
		"taskId":  id,
	})
}

// DeleteTask обрабатывает DELETE /api/master/tasks/{id}.
func (h *APIHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.masterData.DeleteTask(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления задачи")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Task deleted successfully"})
}

// --- Категории продукции ---

type categoryRequest struct {
	CategoryName        string  `json:"categoryName"`
	CategoryDescription *string `json:"categoryDescription"`
}

type categoryResponse struct {
	ProductCategoryID   int64     `json:"product_category_id"`
	CategoryName        string    `json:"category_name"`
	CategoryDescription *string   `json:"category_description"`
	CreatedBy           string    `json:"created_by"`
	CreatedAt           time.Time `json:"created_at"`
	ModifiedBy          string    `json:"modified_by"`
	ModifiedAt          time.Time `json:"modified_at"`
}

func toCategoryResponse(c *model.ProductCategory) categoryResponse {
	return categoryResponse{
		ProductCategoryID:   c.ID,
		CategoryName:        c.Name,
		CategoryDescription: c.Description,
		CreatedBy:           c.CreatedBy,
		CreatedAt:           c.CreatedAt,
		ModifiedBy:          c.ModifiedBy,
		ModifiedAt:          c.ModifiedAt,
	}
}

// ListProductCategories обрабатывает GET /api/master/categories.
func (h *APIHandler) ListProductCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.masterData.ListProductCategories(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения списка категорий")
		return
	}
	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetProductCategory обрабатывает GET /api/master/categories/{id}.
func (h *APIHandler) GetProductCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.masterData.GetProductCategory(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения категории")
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

// CreateProductCategory обрабатывает POST /api/master/categories.
func (h *APIHandler) CreateProductCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := &model.ProductCategory{Name: req.CategoryName, Description: req.CategoryDescription}
	if err := h.masterData.CreateProductCategory(r.Context(), middleware.Username(r.Context()), c); err != nil {
		h.handleServiceError(w, err, "Ошибка создания категории")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Category created successfully",
		"categoryId": c.ID,
	})
}

// UpdateProductCategory обрабатывает PUT /api/master/categories/{id}.
func (h *APIHandler) UpdateProductCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req categoryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := &model.ProductCategory{ID: id, Name: req.CategoryName, Description: req.CategoryDescription}
	if err := h.masterData.UpdateProductCategory(r.Context(), middleware.Username(r.Context()), c); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления категории")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Category updated successfully",
		"categoryId": id,
	})
}

// DeleteProductCategory обрабатывает DELETE /api/master/categories/{id}.
func (h *APIHandler) DeleteProductCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.masterData.DeleteProductCategory(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления категории")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Category deleted successfully"})
}

// --- Типы клиентов ---

type customerTypeRequest struct {
	CustomerTypeDescription string `json:"customerTypeDescription"`
}

type customerTypeResponse struct {
	CustomerTypeID          int64     `json:"customer_type_id"`
	CustomerTypeDescription string    `json:"customer_type_description"`
	CreatedBy               string    `json:"created_by"`
	CreatedAt               time.Time `json:"created_at"`
	ModifiedBy              string    `json:"modified_by"`
	ModifiedAt              time.Time `json:"modified_at"`
}

func toCustomerTypeResponse(t *model.CustomerType) customerTypeResponse {
	return customerTypeResponse{
		CustomerTypeID:          t.ID,
		CustomerTypeDescription: t.Description,
		CreatedBy:               t.CreatedBy,
		CreatedAt:               t.CreatedAt,
		ModifiedBy:              t.ModifiedBy,
		ModifiedAt:              t.ModifiedAt,
	}
}

// ListCustomerTypes обрабатывает GET /api/master/customer-types.
func (h *APIHandler) ListCustomerTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.masterData.ListCustomerTypes(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения типов клиентов")
		return
	}
	out := make([]customerTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, toCustomerTypeResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCustomerType обрабатывает GET /api/master/customer-types/{id}.
func (h *APIHandler) GetCustomerType(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.masterData.GetCustomerType(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения типа клиента")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerTypeResponse(t))
}

// CreateCustomerType обрабатывает POST /api/master/customer-types.
func (h *APIHandler) CreateCustomerType(w http.ResponseWriter, r *http.Request) {
	var req customerTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t := &model.CustomerType{Description: req.CustomerTypeDescription}
	if err := h.masterData.CreateCustomerType(r.Context(), middleware.Username(r.Context()), t); err != nil {
		h.handleServiceError(w, err, "Ошибка создания типа клиента")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Customer type created successfully",
		"customerTypeId": t.ID,
	})
}

// UpdateCustomerType обрабатывает PUT /api/master/customer-types/{id}.
func (h *APIHandler) UpdateCustomerType(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req customerTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t := &model.CustomerType{ID: id, Description: req.CustomerTypeDescription}
	if err := h.masterData.UpdateCustomerType(r.Context(), middleware.Username(r.Context()), t); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления типа клиента")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Customer type updated successfully",
		"customerTypeId": id,
	})
}

// DeleteCustomerType обрабатывает DELETE /api/master/customer-types/{id}.
func (h *APIHandler) DeleteCustomerType(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.masterData.DeleteCustomerType(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления типа клиента")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Customer type deleted successfully"})
}

// --- Типы материалов ---

type materialTypeRequest struct {
	MaterialTypeDescription string `json:"materialTypeDescription"`
}

type materialTypeResponse struct {
	MaterialTypeID          int64     `json:"material_type_id"`
	MaterialTypeDescription string    `json:"material_type_description"`
	CreatedBy               string    `json:"created_by"`
	CreatedAt               time.Time `json:"created_at"`
	ModifiedBy              string    `json:"modified_by"`
	ModifiedAt              time.Time `json:"modified_at"`
}

func toMaterialTypeResponse(t *model.MaterialType) materialTypeResponse {
	return materialTypeResponse{
		MaterialTypeID:          t.ID,
		MaterialTypeDescription: t.Description,
		CreatedBy:               t.CreatedBy,
		CreatedAt:               t.CreatedAt,
		ModifiedBy:              t.ModifiedBy,
		ModifiedAt:              t.ModifiedAt,
	}
}

// ListMaterialTypes обрабатывает GET /api/master/material-types.
func (h *APIHandler) ListMaterialTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.masterData.ListMaterialTypes(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения типов материалов")
		return
	}
	out := make([]materialTypeResponse, 0, len(types))
	for _, t := range types {
		out = append(out, toMaterialTypeResponse(t))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetMaterialType обрабатывает GET /api/master/material-types/{id}.
func (h *APIHandler) GetMaterialType(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	t, err := h.masterData.GetMaterialType(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения типа материала")
		return
	}
	writeJSON(w, http.StatusOK, toMaterialTypeResponse(t))
}

// CreateMaterialType обрабатывает POST /api/master/material-types.
func (h *APIHandler) CreateMaterialType(w http.ResponseWriter, r *http.Request) {
	var req materialTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t := &model.MaterialType{Description: req.MaterialTypeDescription}
	if err := h.masterData.CreateMaterialType(r.Context(), middleware.Username(r.Context()), t); err != nil {
		h.handleServiceError(w, err, "Ошибка создания типа материала")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":        "Material type created successfully",
		"materialTypeId": t.ID,
	})
}

// UpdateMaterialType обрабатывает PUT /api/master/material-types/{id}.
func (h *APIHandler) UpdateMaterialType(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req materialTypeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t := &model.MaterialType{ID: id, Description: req.MaterialTypeDescription}
	if err := h.masterData.UpdateMaterialType(r.Context(), middleware.Username(r.Context()), t); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления типа материала")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Material type updated successfully",
		"materialTypeId": id,
	})
}

// DeleteMaterialType обрабатывает DELETE /api/master/material-types/{id}.
func (h *APIHandler) DeleteMaterialType(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.masterData.DeleteMaterialType(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления типа материала")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Material type deleted successfully"})
}

// --- Страны ---

type countryRequest struct {
	CountryName string  `json:"countryName"`
	CountryCode *string `json:"countryCode"`
}

type countryResponse struct {
	CountryID   int64     `json:"country_id"`
	CountryName string    `json:"country_name"`
	CountryCode *string   `json:"country_code"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	ModifiedBy  string    `json:"modified_by"`
	ModifiedAt  time.Time `json:"modified_at"`
}

func toCountryResponse(c *model.Country) countryResponse {
	return countryResponse{
		CountryID:   c.ID,
		CountryName: c.Name,
		CountryCode: c.Code,
		CreatedBy:   c.CreatedBy,
		CreatedAt:   c.CreatedAt,
		ModifiedBy:  c.ModifiedBy,
		ModifiedAt:  c.ModifiedAt,
	}
}

// ListCountries обрабатывает GET /api/countries.
func (h *APIHandler) ListCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := h.masterData.ListCountries(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения списка стран")
		return
	}
	out := make([]countryResponse, 0, len(countries))
	for _, c := range countries {
		out = append(out, toCountryResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCountry обрабатывает GET /api/countries/{id}.
func (h *APIHandler) GetCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	c, err := h.masterData.GetCountry(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения страны")
		return
	}
	writeJSON(w, http.StatusOK, toCountryResponse(c))
}

// CreateCountry обрабатывает POST /api/countries.
func (h *APIHandler) CreateCountry(w http.ResponseWriter, r *http.Request) {
	var req countryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := &model.Country{Name: req.CountryName, Code: req.CountryCode}
	if err := h.masterData.CreateCountry(r.Context(), middleware.Username(r.Context()), c); err != nil {
		h.handleServiceError(w, err, "Ошибка создания страны")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Country created successfully",
		"countryId": c.ID,
	})
}

// UpdateCountry обрабатывает PUT /api/countries/{id}.
func (h *APIHandler) UpdateCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	var req countryRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	c := &model.Country{ID: id, Name: req.CountryName, Code: req.CountryCode}
	if err := h.masterData.UpdateCountry(r.Context(), middleware.Username(r.Context()), c); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления страны")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Country updated successfully",
		"countryId": id,
	})
}

// DeleteCountry обрабатывает DELETE /api/countries/{id}.
func (h *APIHandler) DeleteCountry(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}
	if err := h.masterData.DeleteCountry(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления страны")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Country deleted successfully"})
}
