package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/skyhigh-intl/inquiry-api/internal/service"
)

// TestHandleServiceError проверяет маппинг ошибок сервисного слоя в HTTP-ответы.
func TestHandleServiceError(t *testing.T) {
	h := &APIHandler{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"валидация", fmt.Errorf("%w: пустое поле", service.ErrValidation), http.StatusBadRequest, "VALIDATION_ERROR"},
		{"не найдено", service.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{"конфликт", service.ErrConflict, http.StatusConflict, "CONFLICT"},
		{"исчерпание номеров", service.ErrNumberExhausted, http.StatusConflict, "CONFLICT"},
		{"неверные учётные данные", service.ErrInvalidCredentials, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"неизвестная ошибка", errors.New("сбой"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.handleServiceError(rec, tt.err, "внутренняя ошибка")

			if rec.Code != tt.wantStatus {
				t.Errorf("статус = %d, ожидается %d", rec.Code, tt.wantStatus)
			}

			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("разбор тела ответа: %v", err)
			}
			if body.Error.Code != tt.wantCode {
				t.Errorf("код ошибки = %q, ожидается %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

// TestParseDate проверяет разбор бизнес-дат из строк запроса.
func TestParseDate(t *testing.T) {
	date := "2026-09-01"
	if got, err := parseDate(&date); err != nil || got == nil {
		t.Fatalf("parseDate(%q) = %v, %v", date, got, err)
	} else if formatDate(*got) != date {
		t.Errorf("дата = %q, ожидается %q", formatDate(*got), date)
	}

	rfc := "2026-09-01T12:30:00Z"
	if got, err := parseDate(&rfc); err != nil || got == nil {
		t.Fatalf("parseDate(%q) = %v, %v", rfc, got, err)
	}

	empty := ""
	if got, err := parseDate(&empty); err != nil || got != nil {
		t.Errorf("parseDate(\"\") = %v, %v, ожидается nil, nil", got, err)
	}
	if got, err := parseDate(nil); err != nil || got != nil {
		t.Errorf("parseDate(nil) = %v, %v, ожидается nil, nil", got, err)
	}

	bad := "01.09.2026"
	if _, err := parseDate(&bad); err == nil {
		t.Errorf("parseDate(%q) не вернул ошибку", bad)
	}
}
