package model

import "time"

// Статусы заявки и её строк.
// Заголовок использует первые четыре, строки дополнительно допускают Abandoned.
const (
	StatusNotStarted = "Not Started"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
	StatusAbandoned  = "Abandoned"
)

// Значения подтверждения клиентом для строки заявки.
const (
	ApprovalYes = "Yes"
	ApprovalNo  = "No"
	ApprovalNA  = "NA"
)

// InquiryHeader — заголовок заявки клиента.
// Хранится в таблице inquiry_headers; поля Customer*/Country*/ProductCategory*
// заполняются из JOIN при чтении.
type InquiryHeader struct {
	// ID — первичный ключ
	ID int64
	// InquiryNumber — человекочитаемый номер формата INQ-YYYYMM-NNNNNN
	InquiryNumber string
	// InquiryDate — бизнес-дата заявки
	InquiryDate time.Time
	// Description — описание заявки
	Description string
	// CustomerID — ссылка на клиента (обязательная)
	CustomerID int64
	// CustomerName — имя клиента (JOIN)
	CustomerName *string
	// ContactPerson — контактное лицо клиента (JOIN)
	ContactPerson *string
	// ContactEmail — email контакта (JOIN)
	ContactEmail *string
	// ContactPhone — телефон контакта (JOIN)
	ContactPhone *string
	// CountryName — страна клиента (JOIN)
	CountryName *string
	// ProductCategoryID — категория продукции (опционально)
	ProductCategoryID *int64
	// ProductCategoryName — название категории (JOIN)
	ProductCategoryName *string
	// Status — статус заголовка
	Status string
	// InquiryGroup — свободный групповой тег
	InquiryGroup *string
	// Remarks — примечания
	Remarks *string
	// Conclusion — заключение
	Conclusion *string

	// Аудит-поля, заполняются триггерами БД
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// InquiryDetail — строка заявки: отслеживаемая позиция
// (материал, задача, исполнитель, сроки, стоимость, прогресс).
type InquiryDetail struct {
	// ID — первичный ключ
	ID int64
	// InquiryID — владеющий заголовок
	InquiryID int64
	// MaterialID — материал (опционально)
	MaterialID *int64
	// MaterialName — название материала (JOIN)
	MaterialName *string
	// MaterialTypeName — тип материала (JOIN)
	MaterialTypeName *string
	// TaskID — задача (опционально)
	TaskID *int64
	// TaskName — название задачи (JOIN)
	TaskName *string
	// AssigneeID — исполнитель (опционально)
	AssigneeID *int64
	// AssigneeName — имя исполнителя (JOIN)
	AssigneeName *string
	// Status — статус строки
	Status string
	// Progress — прогресс 0-100
	Progress int
	// StartDate — дата начала (опционально)
	StartDate *time.Time
	// DueDate — срок выполнения (опционально)
	DueDate *time.Time
	// EstimatedCost — оценочная стоимость
	EstimatedCost float64
	// ActualCost — фактическая стоимость
	ActualCost float64
	// CustomerApproved — подтверждение клиентом (Yes, No, NA)
	CustomerApproved string
	// Remarks — примечания
	Remarks *string

	// Аудит-поля, заполняются триггерами БД
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time

	// Attachments — вложения строки (заполняется при чтении агрегата)
	Attachments []*Attachment
}

// IsValidHeaderStatus проверяет допустимость статуса заголовка.
func IsValidHeaderStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsValidDetailStatus проверяет допустимость статуса строки.
func IsValidDetailStatus(s string) bool {
	return IsValidHeaderStatus(s) || s == StatusAbandoned
}

// IsValidApproval проверяет допустимость значения customer_approved.
func IsValidApproval(s string) bool {
	switch s {
	case ApprovalYes, ApprovalNo, ApprovalNA:
		return true
	}
	return false
}
