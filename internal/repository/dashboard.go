package repository

import (
	"context"
	"fmt"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
)

// DashboardStats — сводные счётчики заявок.
type DashboardStats struct {
	TotalInquiries int `json:"total_inquiries"`
	NotStarted     int `json:"not_started"`
	InProgress     int `json:"in_progress"`
	Completed      int `json:"completed"`
	Overdue        int `json:"overdue"`
}

// StatusCount — количество заявок в одном статусе.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// CountryCount — количество заявок по стране клиента.
// Country == nil для клиентов без страны.
type CountryCount struct {
	Country *string `json:"country_name"`
	Count   int     `json:"count"`
}

// MonthCount — количество заявок за календарный месяц (YYYY-MM).
type MonthCount struct {
	Month string `json:"month"`
	Count int    `json:"count"`
}

// DashboardRepository — агрегирующие выборки для дашборда.
type DashboardRepository interface {
	// Stats возвращает сводные счётчики заявок и просроченных строк.
	Stats(ctx context.Context) (*DashboardStats, error)
	// Recent возвращает последние созданные заявки.
	Recent(ctx context.Context, limit int) ([]*model.InquiryHeader, error)
	// ByStatus возвращает распределение заявок по статусам.
	ByStatus(ctx context.Context) ([]*StatusCount, error)
	// ByCountry возвращает топ-10 стран по количеству заявок.
	ByCountry(ctx context.Context) ([]*CountryCount, error)
	// MonthlyTrend возвращает помесячное количество заявок за год.
	MonthlyTrend(ctx context.Context) ([]*MonthCount, error)
}

type dashboardRepo struct {
	db DBTX
}

// NewDashboardRepository создаёт репозиторий дашборда.
func NewDashboardRepository(db DBTX) DashboardRepository {
	return &dashboardRepo{db: db}
}

func (r *dashboardRepo) Stats(ctx context.Context) (*DashboardStats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM inquiry_headers),
			(SELECT count(*) FROM inquiry_headers WHERE status = 'Not Started'),
			(SELECT count(*) FROM inquiry_headers WHERE status = 'In Progress'),
			(SELECT count(*) FROM inquiry_headers WHERE status = 'Completed'),
			(SELECT count(*) FROM inquiry_details
				WHERE due_date < CURRENT_DATE
					AND status NOT IN ('Completed', 'Cancelled'))`

	s := &DashboardStats{}
	err := r.db.QueryRow(ctx, query).Scan(
		&s.TotalInquiries, &s.NotStarted, &s.InProgress, &s.Completed, &s.Overdue)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения статистики: %w", err)
	}
	return s, nil
}

func (r *dashboardRepo) Recent(ctx context.Context, limit int) ([]*model.InquiryHeader, error) {
	query := `
		SELECT` + headerColumns + `
		FROM inquiry_headers h
		LEFT JOIN customers c ON h.customer_id = c.customer_id
		LEFT JOIN countries co ON c.country_id = co.country_id
		LEFT JOIN product_categories pc ON h.product_category_id = pc.product_category_id
		ORDER BY h.created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения последних заявок: %w", err)
	}
	defer rows.Close()

	var headers []*model.InquiryHeader
	for rows.Next() {
		h := &model.InquiryHeader{}
		if err := scanHeader(rows, h); err != nil {
			return nil, fmt.Errorf("ошибка чтения заголовка заявки: %w", err)
		}
		headers = append(headers, h)
	}
	return headers, rows.Err()
}

func (r *dashboardRepo) ByStatus(ctx context.Context) ([]*StatusCount, error) {
	query := `
		SELECT status, count(*)
		FROM inquiry_headers
		GROUP BY status
		ORDER BY count(*) DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка распределения по статусам: %w", err)
	}
	defer rows.Close()

	var counts []*StatusCount
	for rows.Next() {
		c := &StatusCount{}
		if err := rows.Scan(&c.Status, &c.Count); err != nil {
			return nil, fmt.Errorf("ошибка чтения счётчика статуса: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *dashboardRepo) ByCountry(ctx context.Context) ([]*CountryCount, error) {
	query := `
		SELECT co.country_name, count(*)
		FROM inquiry_headers h
		JOIN customers c ON h.customer_id = c.customer_id
		LEFT JOIN countries co ON c.country_id = co.country_id
		GROUP BY co.country_name
		ORDER BY count(*) DESC
		LIMIT 10`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка распределения по странам: %w", err)
	}
	defer rows.Close()

	var counts []*CountryCount
	for rows.Next() {
		c := &CountryCount{}
		if err := rows.Scan(&c.Country, &c.Count); err != nil {
			return nil, fmt.Errorf("ошибка чтения счётчика страны: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

func (r *dashboardRepo) MonthlyTrend(ctx context.Context) ([]*MonthCount, error) {
	query := `
		SELECT to_char(inquiry_date, 'YYYY-MM'), count(*)
		FROM inquiry_headers
		WHERE inquiry_date >= CURRENT_DATE - INTERVAL '12 months'
		GROUP BY to_char(inquiry_date, 'YYYY-MM')
		ORDER BY 1`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ошибка помесячной статистики: %w", err)
	}
	defer rows.Close()

	var counts []*MonthCount
	for rows.Next() {
		c := &MonthCount{}
		if err := rows.Scan(&c.Month, &c.Count); err != nil {
			return nil, fmt.Errorf("ошибка чтения месячного счётчика: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}
