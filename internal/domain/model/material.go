package model

import "time"

// Material — материал, отслеживаемый в строках заявок.
type Material struct {
	// ID — первичный ключ
	ID int64
	// Name — название материала
	Name string
	// Description — описание
	Description *string
	// MaterialTypeID — тип материала (опционально)
	MaterialTypeID *int64
	// MaterialTypeName — описание типа (JOIN)
	MaterialTypeName *string
	// Category — свободная категория
	Category *string
	// UnitOfMeasure — единица измерения
	UnitOfMeasure *string
	// StandardCost — нормативная стоимость
	StandardCost *float64

	// Аудит-поля, заполняются триггерами БД
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}

// Assignee — исполнитель, на которого назначаются строки заявок.
type Assignee struct {
	// ID — первичный ключ
	ID int64
	// Name — имя исполнителя
	Name string
	// Title — должность
	Title *string
	// Department — отдел
	Department *string
	// Email — электронная почта
	Email *string
	// Phone — телефон
	Phone *string
	// Specialty — специализация
	Specialty *string

	// Аудит-поля, заполняются триггерами БД
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}
