package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
)

// fakeNotificationRepo — заглушка репозитория уведомлений для unit-тестов.
type fakeNotificationRepo struct {
	overdue  []*repository.DetailAlert
	dueToday []*repository.DetailAlert
	stale    []*repository.HeaderAlert
	recent   []*repository.HeaderAlert
}

func (f *fakeNotificationRepo) OverdueDetails(ctx context.Context) ([]*repository.DetailAlert, error) {
	return f.overdue, nil
}

func (f *fakeNotificationRepo) DetailsDueToday(ctx context.Context) ([]*repository.DetailAlert, error) {
	return f.dueToday, nil
}

func (f *fakeNotificationRepo) StaleInquiries(ctx context.Context) ([]*repository.HeaderAlert, error) {
	return f.stale, nil
}

func (f *fakeNotificationRepo) RecentlyModified(ctx context.Context) ([]*repository.HeaderAlert, error) {
	return f.recent, nil
}

func (f *fakeNotificationRepo) Counts(ctx context.Context) (*model.NotificationSummary, error) {
	s := &model.NotificationSummary{
		Overdue:       len(f.overdue),
		DueToday:      len(f.dueToday),
		Stale:         len(f.stale),
		RecentUpdates: len(f.recent),
	}
	s.Total = s.Overdue + s.DueToday + s.Stale + s.RecentUpdates
	return s, nil
}

func strPtr(s string) *string { return &s }

func TestNotificationList(t *testing.T) {
	today := time.Now().Truncate(24 * time.Hour)
	repo := &fakeNotificationRepo{
		overdue: []*repository.DetailAlert{
			{
				DetailID:      11,
				InquiryID:     1,
				InquiryNumber: "INQ-202609-000001",
				TaskName:      strPtr("Sample Preparation"),
				CustomerName:  "Acme Corp",
				DueDate:       today.AddDate(0, 0, -3),
				DaysOverdue:   3,
			},
		},
		dueToday: []*repository.DetailAlert{
			{
				DetailID:      12,
				InquiryID:     1,
				InquiryNumber: "INQ-202609-000001",
				MaterialName:  strPtr("Granite Slab"),
				CustomerName:  "Acme Corp",
				DueDate:       today,
			},
		},
		stale: []*repository.HeaderAlert{
			{
				InquiryID:        2,
				InquiryNumber:    "INQ-202608-000002",
				CustomerName:     "Globex",
				InquiryDate:      today.AddDate(0, 0, -10),
				DaysSinceCreated: 10,
			},
		},
		recent: []*repository.HeaderAlert{
			{
				InquiryID:     3,
				InquiryNumber: "INQ-202609-000003",
				CustomerName:  "Initech",
				ModifiedBy:    "petrov",
				ModifiedAt:    time.Now().Add(-time.Hour),
			},
		},
	}

	svc := NewNotificationService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}

	if len(list.Notifications) != 4 {
		t.Fatalf("len(Notifications) = %d, ожидается 4", len(list.Notifications))
	}

	// Порядок по приоритету: overdue, due-today, stale, recent
	wantTypes := []string{
		model.NotificationOverdue,
		model.NotificationDueToday,
		model.NotificationStale,
		model.NotificationRecent,
	}
	for i, want := range wantTypes {
		if got := list.Notifications[i].Type; got != want {
			t.Errorf("Notifications[%d].Type = %q, ожидается %q", i, got, want)
		}
	}

	// Идентификаторы детерминированы
	if got := list.Notifications[0].ID; got != "overdue-11" {
		t.Errorf("ID = %q, ожидается overdue-11", got)
	}
	if got := list.Notifications[1].ID; got != "due-today-12" {
		t.Errorf("ID = %q, ожидается due-today-12", got)
	}

	// Сообщения
	if got := list.Notifications[0].Message; got != "Sample Preparation is 3 day(s) overdue" {
		t.Errorf("Message = %q, ожидается %q", got, "Sample Preparation is 3 day(s) overdue")
	}
	if got := list.Notifications[1].Message; got != "Granite Slab is due today" {
		t.Errorf("Message = %q, ожидается %q", got, "Granite Slab is due today")
	}
	if got := list.Notifications[2].Message; got != "INQ-202608-000002 has not started for 10 days" {
		t.Errorf("Message = %q, ожидается %q", got, "INQ-202608-000002 has not started for 10 days")
	}
	if got := list.Notifications[3].Message; got != "INQ-202609-000003 was updated by petrov" {
		t.Errorf("Message = %q, ожидается %q", got, "INQ-202609-000003 was updated by petrov")
	}

	// Сводка
	sum := list.Summary
	if sum.Overdue != 1 || sum.DueToday != 1 || sum.Stale != 1 || sum.RecentUpdates != 1 {
		t.Errorf("Summary = %+v, ожидается по 1 в каждом классе", sum)
	}
	if sum.Total != 4 {
		t.Errorf("Summary.Total = %d, ожидается 4", sum.Total)
	}
}

func TestNotificationSubjectFallback(t *testing.T) {
	// Строка без задачи и материала получает заглушку "Task"
	repo := &fakeNotificationRepo{
		overdue: []*repository.DetailAlert{
			{
				DetailID:      21,
				InquiryID:     1,
				InquiryNumber: "INQ-202609-000001",
				CustomerName:  "Acme Corp",
				DueDate:       time.Now().AddDate(0, 0, -1),
				DaysOverdue:   1,
			},
		},
	}

	svc := NewNotificationService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	list, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List() вернул ошибку: %v", err)
	}
	if got := list.Notifications[0].Message; got != "Task is 1 day(s) overdue" {
		t.Errorf("Message = %q, ожидается %q", got, "Task is 1 day(s) overdue")
	}
}

func TestSortNotifications(t *testing.T) {
	now := time.Now()
	notifications := []*model.Notification{
		{ID: "recent-1", Priority: model.PriorityInfo, OccurredAt: now},
		{ID: "overdue-old", Priority: model.PriorityHigh, OccurredAt: now.AddDate(0, 0, -5)},
		{ID: "stale-1", Priority: model.PriorityLow, OccurredAt: now.AddDate(0, 0, -10)},
		{ID: "overdue-new", Priority: model.PriorityHigh, OccurredAt: now.AddDate(0, 0, -1)},
		{ID: "due-1", Priority: model.PriorityMedium, OccurredAt: now},
	}

	SortNotifications(notifications)

	wantOrder := []string{"overdue-new", "overdue-old", "due-1", "stale-1", "recent-1"}
	for i, want := range wantOrder {
		if got := notifications[i].ID; got != want {
			t.Errorf("позиция %d: ID = %q, ожидается %q", i, got, want)
		}
	}
}

func TestNotificationCounts(t *testing.T) {
	repo := &fakeNotificationRepo{
		overdue:  make([]*repository.DetailAlert, 2),
		dueToday: make([]*repository.DetailAlert, 1),
	}

	svc := NewNotificationService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	sum, err := svc.Counts(context.Background())
	if err != nil {
		t.Fatalf("Counts() вернул ошибку: %v", err)
	}
	if sum.Overdue != 2 {
		t.Errorf("Overdue = %d, ожидается 2", sum.Overdue)
	}
	if sum.DueToday != 1 {
		t.Errorf("DueToday = %d, ожидается 1", sum.DueToday)
	}
	if sum.Total != 3 {
		t.Errorf("Total = %d, ожидается 3", sum.Total)
	}
}
