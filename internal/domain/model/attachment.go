package model

import (
	"strings"
	"time"
)

// Attachment — файл, привязанный ровно к одному из двух владельцев:
// заголовку заявки (InquiryID) или строке (DetailID).
// Взаимоисключение владельцев обеспечивается CHECK-ограничением в БД.
type Attachment struct {
	// ID — первичный ключ
	ID int64
	// InquiryID — владеющий заголовок (nil для вложений строк)
	InquiryID *int64
	// DetailID — владеющая строка (nil для вложений заголовка)
	DetailID *int64
	// OriginalFilename — имя файла при загрузке
	OriginalFilename string
	// StoredFilename — сгенерированное имя в хранилище (UUID + расширение)
	StoredFilename string
	// Size — размер файла в байтах
	Size int64
	// MimeType — MIME-тип файла
	MimeType string

	// Аудит-поля, заполняются триггерами БД
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// IsImage сообщает, является ли вложение изображением.
func (a *Attachment) IsImage() bool {
	return strings.HasPrefix(a.MimeType, "image/")
}
