package model

import "time"

// Справочники: задачи, категории продукции, типы клиентов,
// типы материалов, страны. Все с аудит-полями от триггеров БД.

// Task — типовая задача для строк заявок.
type Task struct {
	ID int64
	// Name — название задачи
	Name string
	// Description — описание
	Description *string
	// DefaultDurationDays — типовая длительность в днях
	DefaultDurationDays int

	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// ProductCategory — категория продукции для заголовка заявки.
type ProductCategory struct {
	ID int64
	// Name — название категории
	Name string
	// Description — описание
	Description *string

	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// CustomerType — тип клиента.
type CustomerType struct {
	ID int64
	// Description — описание типа
	Description string

	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// MaterialType — тип материала.
type MaterialType struct {
	ID int64
	// Description — описание типа
	Description string

	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// Country — страна клиента.
type Country struct {
	ID int64
	// Name — название страны
	Name string
	// Code — ISO-код (опционально)
	Code *string

	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}
