// inquiries.go — обработчики заявок.
// GET    /api/inquiries — список заголовков
// GET    /api/inquiries/{id} — заявка целиком (заголовок, строки, вложения)
// POST   /api/inquiries — создание заявки со строками
// PUT    /api/inquiries/{id} — обновление заголовка и замена строк
// DELETE /api/inquiries/{id} — удаление заявки
// PUT    /api/inquiries/{inquiryId}/details/{detailId} — обновление строки
package handlers

import (
	"net/http"
	"time"

	apierrors "github.com/skyhigh-intl/inquiry-api/internal/api/errors"
	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/service"
)

// detailRequest — строка заявки во входном JSON.
type detailRequest struct {
	MaterialID       *int64   `json:"materialId"`
	TaskID           *int64   `json:"taskId"`
	AssigneeID       *int64   `json:"assigneeId"`
	Status           *string  `json:"status"`
	Progress         *int     `json:"progress"`
	StartDate        *string  `json:"startDate"`
	DueDate          *string  `json:"dueDate"`
	EstimatedCost    *float64 `json:"estimatedCost"`
	ActualCost       *float64 `json:"actualCost"`
	CustomerApproved *string  `json:"customerApproved"`
	Remarks          *string  `json:"remarks"`
}

func (d detailRequest) toInput() (service.DetailInput, error) {
	startDate, err := parseDate(d.StartDate)
	if err != nil {
		return service.DetailInput{}, err
	}
	dueDate, err := parseDate(d.DueDate)
	if err != nil {
		return service.DetailInput{}, err
	}
	return service.DetailInput{
		MaterialID:       d.MaterialID,
		TaskID:           d.TaskID,
		AssigneeID:       d.AssigneeID,
		Status:           d.Status,
		Progress:         d.Progress,
		StartDate:        startDate,
		DueDate:          dueDate,
		EstimatedCost:    d.EstimatedCost,
		ActualCost:       d.ActualCost,
		CustomerApproved: d.CustomerApproved,
		Remarks:          d.Remarks,
	}, nil
}

// createInquiryRequest — тело запроса создания заявки.
type createInquiryRequest struct {
	InquiryDate        *string         `json:"inquiryDate"`
	InquiryDescription string          `json:"inquiryDescription"`
	CustomerID         int64           `json:"customerId"`
	ProductCategoryID  *int64          `json:"productCategoryId"`
	Status             *string         `json:"status"`
	InquiryGroup       *string         `json:"inquiryGroup"`
	Remarks            *string         `json:"remarks"`
	Conclusion         *string         `json:"conclusion"`
	Details            []detailRequest `json:"details"`
}

// updateInquiryRequest — тело запроса обновления заявки.
// details: поле отсутствует — строки не трогаются,
// присутствует (в том числе пустой список) — полная замена строк.
type updateInquiryRequest struct {
	InquiryDate        *string          `json:"inquiryDate"`
	InquiryDescription *string          `json:"inquiryDescription"`
	CustomerID         *int64           `json:"customerId"`
	ProductCategoryID  *int64           `json:"productCategoryId"`
	Status             *string          `json:"status"`
	InquiryGroup       *string          `json:"inquiryGroup"`
	Remarks            *string          `json:"remarks"`
	Conclusion         *string          `json:"conclusion"`
	Details            *[]detailRequest `json:"details"`
}

// headerResponse — заголовок заявки в ответе.
type headerResponse struct {
	InquiryID                  int64     `json:"inquiry_id"`
	InquiryNumber              string    `json:"inquiry_number"`
	InquiryDate                string    `json:"inquiry_date"`
	InquiryDescription         string    `json:"inquiry_description"`
	CustomerID                 int64     `json:"customer_id"`
	CustomerName               *string   `json:"customer_name"`
	ContactPerson              *string   `json:"contact_person"`
	ContactEmail               *string   `json:"contact_email"`
	ContactPhone               *string   `json:"contact_phone"`
	CountryName                *string   `json:"country_name"`
	ProductCategoryID          *int64    `json:"product_category_id"`
	ProductCategoryDescription *string   `json:"product_category_description"`
	Status                     string    `json:"status"`
	InquiryGroup               *string   `json:"inquiry_group"`
	Remarks                    *string   `json:"remarks"`
	Conclusion                 *string   `json:"conclusion"`
	CreatedAt                  time.Time `json:"created_at"`
	CreatedBy                  string    `json:"created_by"`
}

func toHeaderResponse(h *model.InquiryHeader) headerResponse {
	return headerResponse{
		InquiryID:                  h.ID,
		InquiryNumber:              h.InquiryNumber,
		InquiryDate:                formatDate(h.InquiryDate),
		InquiryDescription:         h.Description,
		CustomerID:                 h.CustomerID,
		CustomerName:               h.CustomerName,
		ContactPerson:              h.ContactPerson,
		ContactEmail:               h.ContactEmail,
		ContactPhone:               h.ContactPhone,
		CountryName:                h.CountryName,
		ProductCategoryID:          h.ProductCategoryID,
		ProductCategoryDescription: h.ProductCategoryName,
		Status:                     h.Status,
		InquiryGroup:               h.InquiryGroup,
		Remarks:                    h.Remarks,
		Conclusion:                 h.Conclusion,
		CreatedAt:                  h.CreatedAt,
		CreatedBy:                  h.CreatedBy,
	}
}

// attachmentResponse — вложение в ответе.
type attachmentResponse struct {
	AttachmentID     int64     `json:"attachment_id"`
	InquiryID        *int64    `json:"inquiry_id,omitempty"`
	DetailID         *int64    `json:"detail_id,omitempty"`
	OriginalFilename string    `json:"original_filename"`
	StoredFilename   string    `json:"stored_filename"`
	FileSize         int64     `json:"file_size"`
	MimeType         string    `json:"mime_type"`
	IsImage          bool      `json:"isImage"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedBy        string    `json:"created_by"`
}

func toAttachmentResponse(a *model.Attachment) attachmentResponse {
	return attachmentResponse{
		AttachmentID:     a.ID,
		InquiryID:        a.InquiryID,
		DetailID:         a.DetailID,
		OriginalFilename: a.OriginalFilename,
		StoredFilename:   a.StoredFilename,
		FileSize:         a.Size,
		MimeType:         a.MimeType,
		IsImage:          a.IsImage(),
		CreatedAt:        a.CreatedAt,
		CreatedBy:        a.CreatedBy,
	}
}

func toAttachmentResponses(atts []*model.Attachment) []attachmentResponse {
	out := make([]attachmentResponse, 0, len(atts))
	for _, a := range atts {
		out = append(out, toAttachmentResponse(a))
	}
	return out
}

// detailResponse — строка заявки в ответе.
// Статус и примечания под алиасами detail_status/detail_remarks,
// чтобы не конфликтовать с полями заголовка на клиенте.
type detailResponse struct {
	DetailID                int64                `json:"detail_id"`
	InquiryID               int64                `json:"inquiry_id"`
	MaterialID              *int64               `json:"material_id"`
	MaterialName            *string              `json:"material_name"`
	MaterialTypeDescription *string              `json:"material_type_description"`
	TaskID                  *int64               `json:"task_id"`
	TaskName                *string              `json:"task_name"`
	AssigneeID              *int64               `json:"assignee_id"`
	AssigneeName            *string              `json:"assignee_name"`
	DetailStatus            string               `json:"detail_status"`
	Progress                int                  `json:"progress"`
	StartDate               *string              `json:"start_date"`
	DueDate                 *string              `json:"due_date"`
	EstimatedCost           float64              `json:"estimated_cost"`
	ActualCost              float64              `json:"actual_cost"`
	CustomerApproved        string               `json:"customer_approved"`
	DetailRemarks           *string              `json:"detail_remarks"`
	CreatedAt               time.Time            `json:"created_at"`
	CreatedBy               string               `json:"created_by"`
	Attachments             []attachmentResponse `json:"attachments"`
}

func toDetailResponse(d *model.InquiryDetail) detailResponse {
	return detailResponse{
		DetailID:                d.ID,
		InquiryID:               d.InquiryID,
		MaterialID:              d.MaterialID,
		MaterialName:            d.MaterialName,
		MaterialTypeDescription: d.MaterialTypeName,
		TaskID:                  d.TaskID,
		TaskName:                d.TaskName,
		AssigneeID:              d.AssigneeID,
		AssigneeName:            d.AssigneeName,
		DetailStatus:            d.Status,
		Progress:                d.Progress,
		StartDate:               formatDatePtr(d.StartDate),
		DueDate:                 formatDatePtr(d.DueDate),
		EstimatedCost:           d.EstimatedCost,
		ActualCost:              d.ActualCost,
		CustomerApproved:        d.CustomerApproved,
		DetailRemarks:           d.Remarks,
		CreatedAt:               d.CreatedAt,
		CreatedBy:               d.CreatedBy,
		Attachments:             toAttachmentResponses(d.Attachments),
	}
}

// inquiryResponse — заявка целиком.
type inquiryResponse struct {
	Header            headerResponse       `json:"header"`
	Details           []detailResponse     `json:"details"`
	HeaderAttachments []attachmentResponse `json:"headerAttachments"`
}

// ListInquiries обрабатывает GET /api/inquiries.
func (h *APIHandler) ListInquiries(w http.ResponseWriter, r *http.Request) {
	headers, err := h.inquiries.List(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения списка заявок")
		return
	}

	out := make([]headerResponse, 0, len(headers))
	for _, hdr := range headers {
		out = append(out, toHeaderResponse(hdr))
	}
	writeJSON(w, http.StatusOK, out)
}

// GetInquiry обрабатывает GET /api/inquiries/{id}.
func (h *APIHandler) GetInquiry(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	agg, err := h.inquiries.Get(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения заявки")
		return
	}

	resp := inquiryResponse{
		Header:            toHeaderResponse(agg.Header),
		Details:           make([]detailResponse, 0, len(agg.Details)),
		HeaderAttachments: toAttachmentResponses(agg.HeaderAttachments),
	}
	for _, d := range agg.Details {
		resp.Details = append(resp.Details, toDetailResponse(d))
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateInquiry обрабатывает POST /api/inquiries.
func (h *APIHandler) CreateInquiry(w http.ResponseWriter, r *http.Request) {
	var req createInquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inquiryDate, err := parseDate(req.InquiryDate)
	if err != nil {
		apierrors.ValidationError(w, "Некорректная дата заявки: "+*req.InquiryDate)
		return
	}

	in := service.CreateInquiryInput{
		InquiryDate:       inquiryDate,
		Description:       req.InquiryDescription,
		CustomerID:        req.CustomerID,
		ProductCategoryID: req.ProductCategoryID,
		Status:            req.Status,
		InquiryGroup:      req.InquiryGroup,
		Remarks:           req.Remarks,
		Conclusion:        req.Conclusion,
	}
	for _, d := range req.Details {
		di, err := d.toInput()
		if err != nil {
			apierrors.ValidationError(w, "Некорректная дата в строке заявки")
			return
		}
		in.Details = append(in.Details, di)
	}

	header, err := h.inquiries.Create(r.Context(), middleware.Username(r.Context()), in)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка создания заявки")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":       "Inquiry created successfully",
		"inquiryId":     header.ID,
		"inquiryNumber": header.InquiryNumber,
	})
}

// UpdateInquiry обрабатывает PUT /api/inquiries/{id}.
func (h *APIHandler) UpdateInquiry(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	var req updateInquiryRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	inquiryDate, err := parseDate(req.InquiryDate)
	if err != nil {
		apierrors.ValidationError(w, "Некорректная дата заявки: "+*req.InquiryDate)
		return
	}

	in := service.UpdateInquiryInput{
		InquiryDate:       inquiryDate,
		Description:       req.InquiryDescription,
		CustomerID:        req.CustomerID,
		ProductCategoryID: req.ProductCategoryID,
		Status:            req.Status,
		InquiryGroup:      req.InquiryGroup,
		Remarks:           req.Remarks,
		Conclusion:        req.Conclusion,
	}
	if req.Details != nil {
		in.Details = make([]service.DetailInput, 0, len(*req.Details))
		for _, d := range *req.Details {
			di, err := d.toInput()
			if err != nil {
				apierrors.ValidationError(w, "Некорректная дата в строке заявки")
				return
			}
			in.Details = append(in.Details, di)
		}
	}

	if err := h.inquiries.Update(r.Context(), middleware.Username(r.Context()), id, in); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления заявки")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":   "Inquiry updated successfully",
		"inquiryId": id,
	})
}

// DeleteInquiry обрабатывает DELETE /api/inquiries/{id}.
func (h *APIHandler) DeleteInquiry(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.inquiries.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления заявки")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Inquiry deleted successfully"})
}

// UpdateInquiryDetail обрабатывает PUT /api/inquiries/{inquiryId}/details/{detailId}.
func (h *APIHandler) UpdateInquiryDetail(w http.ResponseWriter, r *http.Request) {
	inquiryID, ok := urlID(w, r, "inquiryId")
	if !ok {
		return
	}
	detailID, ok := urlID(w, r, "detailId")
	if !ok {
		return
	}

	var req detailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	in, err := req.toInput()
	if err != nil {
		apierrors.ValidationError(w, "Некорректная дата в строке заявки")
		return
	}

	if err := h.inquiries.UpdateDetail(r.Context(), middleware.Username(r.Context()), inquiryID, detailID, in); err != nil {
		h.handleServiceError(w, err, "Ошибка обновления строки заявки")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Detail updated successfully"})
}
