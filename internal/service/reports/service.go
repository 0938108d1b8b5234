package reports

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// Лимиты групп отчётов, как в исходной системе.
const (
	topCustomersLimit = 10
	topSellersLimit   = 5
)

// Service — отчётные агрегации по завершённым заказам. Каждый вызов
// считается заново, кэширования нет.
type Service struct {
	reports domain.ReportsRepository
	logger  *log.Entry
}

// NewService конструирует сервис отчётов.
func NewService(reports domain.ReportsRepository, logger *log.Entry) *Service {
	if logger == nil {
		logger = log.New().WithField("component", "reports")
	}
	return &Service{reports: reports, logger: logger}
}

// TopCustomers возвращает до 10 клиентов по убыванию суммы завершённых заказов.
func (s *Service) TopCustomers(ctx context.Context) ([]domain.CustomerSales, error) {
	result, err := s.reports.TopCustomers(ctx, topCustomersLimit)
	if err != nil {
		s.logger.WithError(err).Error("top customers aggregation failed")
		return nil, err
	}
	return result, nil
}

// TopSellers возвращает до 5 продавцов по убыванию суммы завершённых заказов.
func (s *Service) TopSellers(ctx context.Context) ([]domain.SellerSales, error) {
	result, err := s.reports.TopSellers(ctx, topSellersLimit)
	if err != nil {
		s.logger.WithError(err).Error("top sellers aggregation failed")
		return nil, err
	}
	return result, nil
}
