// notification.go — вычисляемые уведомления по состоянию заявок.
// Ничего не персистится: каждый запрос собирает список заново.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
)

// NotificationList — уведомления со сводкой по классам.
type NotificationList struct {
	Notifications []*model.Notification     `json:"notifications"`
	Summary       model.NotificationSummary `json:"summary"`
}

// NotificationService — сборка уведомлений из четырёх классов.
type NotificationService struct {
	repo   repository.NotificationRepository
	logger *slog.Logger
}

// NewNotificationService создаёт сервис уведомлений.
func NewNotificationService(repo repository.NotificationRepository, logger *slog.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger.With(slog.String("component", "notification_service")),
	}
}

// priorityRank — порядок приоритетов для сортировки.
var priorityRank = map[string]int{
	model.PriorityHigh:   0,
	model.PriorityMedium: 1,
	model.PriorityLow:    2,
	model.PriorityInfo:   3,
}

// subject выбирает название предмета строки: задача, материал или заглушка.
func subject(a *repository.DetailAlert) string {
	if a.TaskName != nil {
		return *a.TaskName
	}
	if a.MaterialName != nil {
		return *a.MaterialName
	}
	return "Task"
}

// List собирает все классы уведомлений и сортирует их:
// приоритет по убыванию важности, внутри приоритета — свежие первыми.
func (s *NotificationService) List(ctx context.Context) (*NotificationList, error) {
	var notifications []*model.Notification

	overdue, err := s.repo.OverdueDetails(ctx)
	if err != nil {
		return nil, fmt.Errorf("просроченные строки: %w", err)
	}
	for _, a := range overdue {
		dueDate := a.DueDate
		notifications = append(notifications, &model.Notification{
			ID:            fmt.Sprintf("overdue-%d", a.DetailID),
			Type:          model.NotificationOverdue,
			Title:         "Overdue Task",
			Message:       fmt.Sprintf("%s is %d day(s) overdue", subject(a), a.DaysOverdue),
			InquiryID:     a.InquiryID,
			InquiryNumber: a.InquiryNumber,
			DetailID:      a.DetailID,
			CustomerName:  a.CustomerName,
			AssigneeName:  a.AssigneeName,
			DueDate:       &dueDate,
			DaysOverdue:   a.DaysOverdue,
			Priority:      model.PriorityHigh,
			OccurredAt:    a.DueDate,
		})
	}

	dueToday, err := s.repo.DetailsDueToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("строки со сроком сегодня: %w", err)
	}
	for _, a := range dueToday {
		dueDate := a.DueDate
		notifications = append(notifications, &model.Notification{
			ID:            fmt.Sprintf("due-today-%d", a.DetailID),
			Type:          model.NotificationDueToday,
			Title:         "Due Today",
			Message:       fmt.Sprintf("%s is due today", subject(a)),
			InquiryID:     a.InquiryID,
			InquiryNumber: a.InquiryNumber,
			DetailID:      a.DetailID,
			CustomerName:  a.CustomerName,
			AssigneeName:  a.AssigneeName,
			DueDate:       &dueDate,
			Priority:      model.PriorityMedium,
			OccurredAt:    a.DueDate,
		})
	}

	stale, err := s.repo.StaleInquiries(ctx)
	if err != nil {
		return nil, fmt.Errorf("застоявшиеся заявки: %w", err)
	}
	for _, a := range stale {
		notifications = append(notifications, &model.Notification{
			ID:               fmt.Sprintf("stale-%d", a.InquiryID),
			Type:             model.NotificationStale,
			Title:            "Inquiry Needs Attention",
			Message:          fmt.Sprintf("%s has not started for %d days", a.InquiryNumber, a.DaysSinceCreated),
			InquiryID:        a.InquiryID,
			InquiryNumber:    a.InquiryNumber,
			CustomerName:     a.CustomerName,
			DaysSinceCreated: a.DaysSinceCreated,
			Priority:         model.PriorityLow,
			OccurredAt:       a.InquiryDate,
		})
	}

	recent, err := s.repo.RecentlyModified(ctx)
	if err != nil {
		return nil, fmt.Errorf("недавно изменённые заявки: %w", err)
	}
	for _, a := range recent {
		notifications = append(notifications, &model.Notification{
			ID:            fmt.Sprintf("recent-%d-%d", a.InquiryID, a.ModifiedAt.UnixNano()),
			Type:          model.NotificationRecent,
			Title:         "Recently Updated",
			Message:       fmt.Sprintf("%s was updated by %s", a.InquiryNumber, a.ModifiedBy),
			InquiryID:     a.InquiryID,
			InquiryNumber: a.InquiryNumber,
			CustomerName:  a.CustomerName,
			ModifiedBy:    a.ModifiedBy,
			Priority:      model.PriorityInfo,
			OccurredAt:    a.ModifiedAt,
		})
	}

	SortNotifications(notifications)

	list := &NotificationList{Notifications: notifications}
	for _, n := range notifications {
		switch n.Type {
		case model.NotificationOverdue:
			list.Summary.Overdue++
		case model.NotificationDueToday:
			list.Summary.DueToday++
		case model.NotificationStale:
			list.Summary.Stale++
		case model.NotificationRecent:
			list.Summary.RecentUpdates++
		}
	}
	list.Summary.Total = len(notifications)
	return list, nil
}

// SortNotifications упорядочивает уведомления: сначала по приоритету,
// внутри приоритета — свежие первыми. Сортировка устойчивая.
func SortNotifications(notifications []*model.Notification) {
	sort.SliceStable(notifications, func(i, j int) bool {
		ri, rj := priorityRank[notifications[i].Priority], priorityRank[notifications[j].Priority]
		if ri != rj {
			return ri < rj
		}
		return notifications[i].OccurredAt.After(notifications[j].OccurredAt)
	})
}

// Counts возвращает счётчики классов без полного списка (для badge).
func (s *NotificationService) Counts(ctx context.Context) (*model.NotificationSummary, error) {
	summary, err := s.repo.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("счётчики уведомлений: %w", err)
	}
	return summary, nil
}
