package model

import "time"

// User — локальная учётная запись пользователя системы.
// Пароль хранится как bcrypt-хэш, права — как массив строк
// (специальное значение "all" даёт полный доступ).
type User struct {
	// ID — первичный ключ
	ID int64
	// Username — уникальное имя для входа; используется как acting user
	// при записи аудит-полей
	Username string
	// PasswordHash — bcrypt-хэш пароля
	PasswordHash string
	// FullName — полное имя
	FullName string
	// Email — электронная почта
	Email *string
	// Role — роль (например Admin, Managing Director, Operations Manager)
	Role string
	// Department — отдел
	Department *string
	// Permissions — права доступа
	Permissions []string
	// IsActive — активна ли учётная запись
	IsActive bool
	// LastLogin — время последнего входа
	LastLogin *time.Time

	// Аудит-поля, заполняются триггерами БД
	CreatedBy  string
	CreatedAt  time.Time
	ModifiedBy string
	ModifiedAt time.Time
}
