// dashboard.go — сводные выборки для дашборда. Только чтение.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/skyhigh-intl/inquiry-api/internal/domain/model"
	"github.com/skyhigh-intl/inquiry-api/internal/repository"
)

// recentDefaultLimit — количество последних заявок по умолчанию.
const recentDefaultLimit = 10

// DashboardService — статистика по заявкам.
type DashboardService struct {
	repo   repository.DashboardRepository
	logger *slog.Logger
}

// NewDashboardService создаёт сервис дашборда.
func NewDashboardService(repo repository.DashboardRepository, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		repo:   repo,
		logger: logger.With(slog.String("component", "dashboard_service")),
	}
}

// Stats возвращает сводные счётчики заявок.
func (s *DashboardService) Stats(ctx context.Context) (*repository.DashboardStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("статистика: %w", err)
	}
	return stats, nil
}

// Recent возвращает последние созданные заявки.
func (s *DashboardService) Recent(ctx context.Context, limit int) ([]*model.InquiryHeader, error) {
	if limit <= 0 {
		limit = recentDefaultLimit
	}
	headers, err := s.repo.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("последние заявки: %w", err)
	}
	return headers, nil
}

// ByStatus возвращает распределение заявок по статусам.
func (s *DashboardService) ByStatus(ctx context.Context) ([]*repository.StatusCount, error) {
	counts, err := s.repo.ByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("распределение по статусам: %w", err)
	}
	return counts, nil
}

// ByCountry возвращает распределение заявок по странам клиентов.
func (s *DashboardService) ByCountry(ctx context.Context) ([]*repository.CountryCount, error) {
	counts, err := s.repo.ByCountry(ctx)
	if err != nil {
		return nil, fmt.Errorf("распределение по странам: %w", err)
	}
	return counts, nil
}

// MonthlyTrend возвращает помесячную динамику заявок за год.
func (s *DashboardService) MonthlyTrend(ctx context.Context) ([]*repository.MonthCount, error) {
	counts, err := s.repo.MonthlyTrend(ctx)
	if err != nil {
		return nil, fmt.Errorf("помесячная динамика: %w", err)
	}
	return counts, nil
}
