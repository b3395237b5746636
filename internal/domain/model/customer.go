package model

import "time"

// Customer — клиент компании.
// Хранится в таблице customers; CustomerTypeName и CountryName — из JOIN.
type Customer struct {
	// ID — первичный ключ
	ID int64
	// Name — название клиента
	Name string
	// CustomerTypeID — тип клиента (опционально)
	CustomerTypeID *int64
	// CustomerTypeName — описание типа клиента (JOIN)
	CustomerTypeName *string
	// ContactPerson — контактное лицо
	ContactPerson *string
	// ContactEmail — электронная почта контакта
	ContactEmail *string
	// ContactPhone — телефон контакта
	ContactPhone *string
	// CountryID — страна (опционально)
	CountryID *int64
	// CountryName — название страны (JOIN)
	CountryName *string
	// Address — адрес
	Address *string

	// Аудит-поля, заполняются триггерами БД
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}
