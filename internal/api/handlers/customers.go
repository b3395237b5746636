// customers.go — обработчики клиентов.
// Полный CRUD: /api/customers[/{id}]
package handlers

import (
	"net/http"
	"time"

	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// customerRequest — тело запросов создания и обновления клиента.
type customerRequest struct {
	CustomerName   string  `json:"customerName"`
	CustomerTypeID *int64  `json:"customerTypeId"`
	ContactPerson  *string `json:"contactPerson"`
	ContactEmail   *string `json:"contactEmail"`
	ContactPhone   *string `json:"contactPhone"`
	CountryID      *int64  `json:"countryId"`
	Address        *string `json:"address"`
}

// customerResponse — клиент в ответе.
type customerResponse struct {
	CustomerID     int64     `json:"customer_id"`
	CustomerName   string    `json:"customer_name"`
	CustomerTypeID *int64    `json:"customer_type_id"`
	CustomerType   *string   `json:"customer_type"`
	ContactPerson  *string   `json:"contact_person"`
	ContactEmail   *string   `json:"contact_email"`
	ContactPhone   *string   `json:"contact_phone"`
	CountryID      *int64    `json:"country_id"`
	CountryName    *string   `json:"country_name"`
	Address        *string   `json:"address"`
	CreatedBy      string    `json:"created_by"`
	CreatedAt      time.Time `json:"created_at"`
	ModifiedBy     string    `json:"modified_by"`
	ModifiedAt     time.Time `json:"modified_at"`
}

func toCustomerResponse(c *model.Customer) customerResponse {
	return customerResponse{
		CustomerID:     c.ID,
		CustomerName:   c.Name,
		CustomerTypeID: c.CustomerTypeID,
		CustomerType:   c.CustomerTypeName,
		ContactPerson:  c.ContactPerson,
		ContactEmail:   c.ContactEmail,
		ContactPhone:   c.ContactPhone,
		CountryID:      c.CountryID,
		CountryName:    c.CountryName,
		Address:        c.Address,
		CreatedBy:      c.CreatedBy,
		CreatedAt:      c.CreatedAt,
		ModifiedBy:     c.ModifiedBy,
		ModifiedAt:     c.ModifiedAt,
	}
}

func (r customerRequest) toModel(id int64) *model.Customer {
	return &model.Customer{
		ID:             id,
		Name:           r.CustomerName,
		CustomerTypeID: r.CustomerTypeID,
		ContactPerson:  r.ContactPerson,
		ContactEmail:   r.ContactEmail,
		ContactPhone:   r.ContactPhone,
		CountryID:      r.CountryID,
		Address:        r.Address,
	}
}

// ListCustomers обрабатывает GET /api/customers.
func (h *APIHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.masterData.ListCustomers(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения списка клиентов")
		return
	}

	out := make([]customerResponse, 0, len(customers))
	for _, c := range customers {
		out = append(out, toCustomerResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetCustomer обрабатывает GET /api/customers/{id}.
func (h *APIHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.masterData.GetCustomer(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения клиента")
		return
	}
	writeJSON(w, http.StatusOK, toCustomerResponse(c))
}

// CreateCustomer обрабатывает POST /api/customers.
func (h *APIHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	c := req.toModel(0)
	if err := h.masterData.CreateCustomer(r.Context(), middleware.Username(r.Context()), c); err != nil {
		h.handleServiceError(w, err, "Ошибка создания клиента")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Customer created successfully",
		"customerId": c.ID,
	})
}

// UpdateCustomer обрабатывает PUT /api/customers/{id}.
func (h *APIHandler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req customerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.masterData.UpdateCustomer(r.Context(), middleware.Username(r.Context()), req.toModel(id)); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления клиента")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Customer updated successfully",
		"customerId": id,
	})
}

// DeleteCustomer обрабатывает DELETE /api/customers/{id}.
func (h *APIHandler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.masterData.DeleteCustomer(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления клиента")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Customer deleted successfully"})
}
