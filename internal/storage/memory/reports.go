package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// reportsInMemory считает отчётные агрегации поверх остальных репозиториев.
// Результат вычисляется заново на каждый вызов; стоимость пропорциональна
// числу завершённых заказов.
type reportsInMemory struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	users     domain.UserRepository
}

// NewReports возвращает in-memory реализацию отчётных агрегаций.
func NewReports(orders domain.OrderRepository, customers domain.CustomerRepository, users domain.UserRepository) domain.ReportsRepository {
	return &reportsInMemory{
		orders:    orders,
		customers: customers,
		users:     users,
	}
}

// TopCustomers группирует завершённые заказы по клиенту и суммирует Total.
func (r *reportsInMemory) TopCustomers(ctx context.Context, limit int) ([]domain.CustomerSales, error) {
	totals, order, err := r.groupCompleted(ctx, func(o domain.Order) string { return o.CustomerID })
	if err != nil {
		return nil, err
	}

	result := make([]domain.CustomerSales, 0, len(order))
	for _, id := range order {
		customer, err := r.customers.Get(ctx, id)
		if err != nil {
			// Клиент мог быть удалён после завершения заказов; группа пропускается,
			// как и при пустом $lookup.
			continue
		}
		result = append(result, domain.CustomerSales{Customer: customer, Total: totals[id]})
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// TopSellers группирует завершённые заказы по продавцу и суммирует Total.
func (r *reportsInMemory) TopSellers(ctx context.Context, limit int) ([]domain.SellerSales, error) {
	totals, order, err := r.groupCompleted(ctx, func(o domain.Order) string { return o.SellerID })
	if err != nil {
		return nil, err
	}

	result := make([]domain.SellerSales, 0, len(order))
	for _, id := range order {
		seller, err := r.users.Get(ctx, id)
		if err != nil {
			continue
		}
		result = append(result, domain.SellerSales{Seller: seller, Total: totals[id]})
	}

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// groupCompleted суммирует Total завершённых заказов по ключу и возвращает
// ключи, отсортированные по убыванию суммы (стабильно по ключу при равенстве).
func (r *reportsInMemory) groupCompleted(ctx context.Context, key func(domain.Order) string) (map[string]float64, []string, error) {
	orders, err := r.orders.List(ctx)
	if err != nil {
		return nil, nil, err
	}

	totals := make(map[string]float64)
	keys := make([]string, 0)
	for _, order := range orders {
		if order.Status != domain.OrderStatusCompleted {
			continue
		}
		k := key(order)
		if _, seen := totals[k]; !seen {
			keys = append(keys, k)
		}
		totals[k] += order.Total
	}

	sort.SliceStable(keys, func(i, j int) bool {
		return totals[keys[i]] > totals[keys[j]]
	})
	return totals, keys, nil
}

var _ domain.ReportsRepository = (*reportsInMemory)(nil)
