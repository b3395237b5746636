package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// DetailAlert — строка заявки, попавшая в выборку уведомлений
// (просрочена или истекает сегодня).
type DetailAlert struct {
	DetailID      int64
	InquiryID     int64
	InquiryNumber string
	TaskName      *string
	MaterialName  *string
	AssigneeName  *string
	CustomerName  string
	DueDate       time.Time
	DaysOverdue   int
}

// HeaderAlert — заголовок заявки, попавший в выборку уведомлений
// (застоявшийся или недавно изменённый).
type HeaderAlert struct {
	InquiryID        int64
	InquiryNumber    string
	CustomerName     string
	InquiryDate      time.Time
	DaysSinceCreated int
	ModifiedBy       string
	ModifiedAt       time.Time
}

// NotificationRepository — выборки для вычисляемых уведомлений.
// Все методы читают живое состояние БД, ничего не персистится.
type NotificationRepository interface {
	// OverdueDetails — незакрытые строки с истёкшим сроком, самые старые первыми.
	OverdueDetails(ctx context.Context) ([]*DetailAlert, error)
	// DetailsDueToday — незакрытые строки со сроком сегодня.
	DetailsDueToday(ctx context.Context) ([]*DetailAlert, error)
	// StaleInquiries — заявки Not Started старше семи дней.
	StaleInquiries(ctx context.Context) ([]*HeaderAlert, error)
	// RecentlyModified — заявки, изменённые за последние сутки.
	// Самая первая запись (modified_at == created_at) не считается изменением.
	RecentlyModified(ctx context.Context) ([]*HeaderAlert, error)
	// Counts — счётчики четырёх классов одним запросом.
	Counts(ctx context.Context) (*model.NotificationSummary, error)
}

type notificationRepo struct {
	db DBTX
}

// NewNotificationRepository создаёт репозиторий уведомлений.
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepo{db: db}
}

// activeDetailStatuses — условие «строка ещё в работе».
const activeDetailStatuses = `status NOT IN ('Completed', 'Cancelled', 'Abandoned')`

func (r *notificationRepo) queryDetailAlerts(ctx context.Context, where, order string, limit int) ([]*DetailAlert, error) {
	query := fmt.Sprintf(`
		SELECT
			d.detail_id, d.inquiry_id, h.inquiry_number,
			t.task_name, m.material_name, a.assignee_name, c.customer_name,
			d.due_date, CURRENT_DATE - d.due_date
		FROM inquiry_details d
		JOIN inquiry_headers h ON d.inquiry_id = h.inquiry_id
		JOIN customers c ON h.customer_id = c.customer_id
		LEFT JOIN tasks t ON d.task_id = t.task_id
		LEFT JOIN assignees a ON d.assignee_id = a.assignee_id
		LEFT JOIN materials m ON d.material_id = m.material_id
		WHERE %s AND d.%s
		ORDER BY %s
		LIMIT %d`, where, activeDetailStatuses, order, limit)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки строк для уведомлений: %w", err)
	}
	defer rows.Close()

	var alerts []*DetailAlert
	for rows.Next() {
		a := &DetailAlert{}
		err := rows.Scan(
			&a.DetailID, &a.InquiryID, &a.InquiryNumber,
			&a.TaskName, &a.MaterialName, &a.AssigneeName, &a.CustomerName,
			&a.DueDate, &a.DaysOverdue,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения строки уведомления: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *notificationRepo) OverdueDetails(ctx context.Context) ([]*DetailAlert, error) {
	return r.queryDetailAlerts(ctx, "d.due_date < CURRENT_DATE", "d.due_date ASC", 20)
}

func (r *notificationRepo) DetailsDueToday(ctx context.Context) ([]*DetailAlert, error) {
	return r.queryDetailAlerts(ctx, "d.due_date = CURRENT_DATE", "h.inquiry_number", 10)
}

func (r *notificationRepo) StaleInquiries(ctx context.Context) ([]*HeaderAlert, error) {
	query := `
		SELECT
			h.inquiry_id, h.inquiry_number, c.customer_name,
			h.inquiry_date, CURRENT_DATE - h.inquiry_date
		FROM inquiry_headers h
		JOIN customers c ON h.customer_id = c.customer_id
		WHERE h.status = 'Not Started'
			AND h.inquiry_date < CURRENT_DATE - INTERVAL '7 days'
		ORDER BY h.inquiry_date ASC
		LIMIT 10`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки застоявшихся заявок: %w", err)
	}
	defer rows.Close()

	var alerts []*HeaderAlert
	for rows.Next() {
		a := &HeaderAlert{}
		err := rows.Scan(&a.InquiryID, &a.InquiryNumber, &a.CustomerName,
			&a.InquiryDate, &a.DaysSinceCreated)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения застоявшейся заявки: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *notificationRepo) RecentlyModified(ctx context.Context) ([]*HeaderAlert, error) {
	query := `
		SELECT
			h.inquiry_id, h.inquiry_number, c.customer_name,
			h.inquiry_date, h.modified_by, h.modified_at
		FROM inquiry_headers h
		JOIN customers c ON h.customer_id = c.customer_id
		WHERE h.modified_at > now() - INTERVAL '24 hours'
			AND h.modified_at != h.created_at
		ORDER BY h.modified_at DESC
		LIMIT 5`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки недавно изменённых заявок: %w", err)
	}
	defer rows.Close()

	var alerts []*HeaderAlert
	for rows.Next() {
		a := &HeaderAlert{}
		err := rows.Scan(&a.InquiryID, &a.InquiryNumber, &a.CustomerName,
			&a.InquiryDate, &a.ModifiedBy, &a.ModifiedAt)
		if err != nil {
			return nil, fmt.Errorf("ошибка чтения изменённой заявки: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (r *notificationRepo) Counts(ctx context.Context) (*model.NotificationSummary, error) {
	query := `
		SELECT
			(SELECT count(*) FROM inquiry_details
				WHERE due_date < CURRENT_DATE AND ` + activeDetailStatuses + `),
			(SELECT count(*) FROM inquiry_details
				WHERE due_date = CURRENT_DATE AND ` + activeDetailStatuses + `),
			(SELECT count(*) FROM inquiry_headers
				WHERE status = 'Not Started'
					AND inquiry_date < CURRENT_DATE - INTERVAL '7 days'),
			(SELECT count(*) FROM inquiry_headers
				WHERE modified_at > now() - INTERVAL '24 hours'
					AND modified_at != created_at)`

	s := &model.NotificationSummary{}
	err := r.db.QueryRow(ctx, query).Scan(&s.Overdue, &s.DueToday, &s.Stale, &s.RecentUpdates)
	if err != nil {
		return nil, fmt.Errorf("ошибка подсчёта уведомлений: %w", err)
	}
	s.Total = s.Overdue + s.DueToday + s.Stale + s.RecentUpdates
	return s, nil
}
