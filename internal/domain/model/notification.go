package model

import "time"

// Типы уведомлений, вычисляемых по текущему состоянию БД.
const (
	NotificationOverdue  = "overdue"
	NotificationDueToday = "due_today"
	NotificationStale    = "stale"
	NotificationRecent   = "recent_update"
)

// Приоритеты уведомлений в порядке убывания важности.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
	PriorityInfo   = "info"
)

// Notification — вычисляемое уведомление. Не персистится:
// каждый запрос пересчитывает список от живого состояния БД.
type Notification struct {
	// ID — синтетический идентификатор (тип + id источника)
	ID string `json:"id"`
	// Type — класс уведомления (overdue, due_today, stale, recent_update)
	Type string `json:"type"`
	// Title — заголовок для отображения
	Title string `json:"title"`
	// Message — текст уведомления
	Message string `json:"message"`
	// InquiryID — заявка-источник
	InquiryID int64 `json:"inquiry_id"`
	// InquiryNumber — номер заявки
	InquiryNumber string `json:"inquiry_number"`
	// DetailID — строка-источник (0 для уведомлений уровня заголовка)
	DetailID int64 `json:"detail_id,omitempty"`
	// CustomerName — клиент заявки
	CustomerName string `json:"customer_name"`
	// AssigneeName — исполнитель строки (если есть)
	AssigneeName *string `json:"assignee_name,omitempty"`
	// DueDate — срок (для overdue и due_today)
	DueDate *time.Time `json:"due_date,omitempty"`
	// DaysOverdue — дней просрочки (для overdue)
	DaysOverdue int `json:"days_overdue,omitempty"`
	// DaysSinceCreated — дней без движения (для stale)
	DaysSinceCreated int `json:"days_since_created,omitempty"`
	// ModifiedBy — кто изменил (для recent_update)
	ModifiedBy string `json:"modified_by,omitempty"`
	// Priority — приоритет (high, medium, low, info)
	Priority string `json:"priority"`
	// OccurredAt — момент события для сортировки по свежести
	OccurredAt time.Time `json:"created_at"`
}

// NotificationSummary — счётчики по классам уведомлений (для badge).
type NotificationSummary struct {
	Total         int `json:"total"`
	Overdue       int `json:"overdue"`
	DueToday      int `json:"due_today"`
	Stale         int `json:"stale"`
	RecentUpdates int `json:"recent_updates"`
}
