// attachments.go — обработчики вложений.
// POST   /api/attachments/header/{inquiryId} — загрузка к заголовку
// POST   /api/attachments/detail/{detailId} — загрузка к строке
// GET    /api/attachments/header/{inquiryId} — вложения заголовка
// GET    /api/attachments/detail/{detailId} — вложения строки
// GET    /api/attachments/{id}/download — скачивание
// GET    /api/attachments/{id}/view — просмотр (токен в query-параметре)
// DELETE /api/attachments/{id} — удаление
package handlers

import (
	"fmt"
	"net/http"
	"strings"

	apierrors "github.com/skyhigh-intl/inquiry-api/internal/api/errors"
	"github.com/skyhigh-intl/inquiry-api/internal/api/middleware"
	"github.com/skyhigh-intl/inquiry-api/internal/service"
)

const (
	// maxUploadFiles — максимум файлов в одном запросе.
	maxUploadFiles = 10
	// multipartMemoryLimit — объём формы, удерживаемый в памяти.
	multipartMemoryLimit = 32 << 20
)

// readUploadFiles извлекает файлы из multipart-поля "files".
// Возвращённая функция закрывает все открытые файлы.
func readUploadFiles(w http.ResponseWriter, r *http.Request) ([]service.UploadFile, func(), bool) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		apierrors.ValidationError(w, "Некорректная multipart-форма: "+err.Error())
		return nil, nil, false
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		apierrors.ValidationError(w, "No files uploaded")
		return nil, nil, false
	}
	if len(headers) > maxUploadFiles {
		apierrors.ValidationError(w, fmt.Sprintf("Не более %d файлов за один запрос", maxUploadFiles))
		return nil, nil, false
	}

	var files []service.UploadFile
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			apierrors.ValidationError(w, "Не удалось прочитать файл "+fh.Filename)
			return nil, nil, false
		}
		closers = append(closers, func() { _ = f.Close() })
		files = append(files, service.UploadFile{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Content:  f,
		})
	}
	return files, closeAll, true
}

// UploadHeaderAttachments обрабатывает POST /api/attachments/header/{inquiryId}.
func (h *APIHandler) UploadHeaderAttachments(w http.ResponseWriter, r *http.Request) {
	inquiryID, ok := urlID(w, r, "inquiryId")
	if !ok {
		return
	}

	files, closeFiles, ok := readUploadFiles(w, r)
	if !ok {
		return
	}
	defer closeFiles()

	uploaded, err := h.attachments.UploadToInquiry(r.Context(), middleware.Username(r.Context()), inquiryID, files)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка загрузки файлов")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Files uploaded successfully",
		"attachments": toAttachmentResponses(uploaded),
	})
}

// UploadDetailAttachments обрабатывает POST /api/attachments/detail/{detailId}.
func (h *APIHandler) UploadDetailAttachments(w http.ResponseWriter, r *http.Request) {
	detailID, ok := urlID(w, r, "detailId")
	if !ok {
		return
	}

	files, closeFiles, ok := readUploadFiles(w, r)
	if !ok {
		return
	}
	defer closeFiles()

	uploaded, err := h.attachments.UploadToDetail(r.Context(), middleware.Username(r.Context()), detailID, files)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка загрузки файлов")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":     "Files uploaded successfully",
		"attachments": toAttachmentResponses(uploaded),
	})
}

// ListHeaderAttachments обрабатывает GET /api/attachments/header/{inquiryId}.
func (h *APIHandler) ListHeaderAttachments(w http.ResponseWriter, r *http.Request) {
	inquiryID, ok := urlID(w, r, "inquiryId")
	if !ok {
		return
	}

	attachments, err := h.attachments.ListForInquiry(r.Context(), inquiryID)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения вложений")
		return
	}
	writeJSON(w, http.StatusOK, toAttachmentResponses(attachments))
}

// ListDetailAttachments обрабатывает GET /api/attachments/detail/{detailId}.
func (h *APIHandler) ListDetailAttachments(w http.ResponseWriter, r *http.Request) {
	detailID, ok := urlID(w, r, "detailId")
	if !ok {
		return
	}

	attachments, err := h.attachments.ListForDetail(r.Context(), detailID)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка получения вложений")
		return
	}
	writeJSON(w, http.StatusOK, toAttachmentResponses(attachments))
}

// serveAttachment отдаёт содержимое вложения с заданным disposition.
func (h *APIHandler) serveAttachment(w http.ResponseWriter, r *http.Request, disposition string) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	a, f, err := h.attachments.Open(r.Context(), id)
	if err != nil {
		h.handleServiceError(w, err, "Ошибка выдачи вложения")
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", a.MimeType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`%s; filename="%s"`, disposition, a.OriginalFilename))
	http.ServeContent(w, r, a.OriginalFilename, a.ModifiedAt, f)
}

// DownloadAttachment обрабатывает GET /api/attachments/{id}/download.
func (h *APIHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	h.serveAttachment(w, r, "attachment")
}

// ViewAttachment обрабатывает GET /api/attachments/{id}/view.
// Маршрут не закрыт JWT middleware: браузер вставляет вложения через
// <img src>, где заголовок Authorization недоступен, поэтому токен
// принимается и в query-параметре.
func (h *APIHandler) ViewAttachment(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	if token == "" {
		apierrors.Unauthorized(w, "Access token required")
		return
	}
	if _, err := h.jwtAuth.Parse(token); err != nil {
		apierrors.Forbidden(w, "Invalid or expired token")
		return
	}

	h.serveAttachment(w, r, "inline")
}

// DeleteAttachment обрабатывает DELETE /api/attachments/{id}.
func (h *APIHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r, "id")
	if !ok {
		return
	}

	if err := h.attachments.Delete(r.Context(), id); err != nil {
		h.handleServiceError(w, err, "Ошибка удаления вложения")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Attachment deleted successfully"})
}
