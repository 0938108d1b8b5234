package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Order
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository() domain.OrderRepository {
	return &orderRepositoryInMemory{
		items: make(map[string]domain.Order),
	}
}

// Create сохраняет заказ, присваивая идентификатор и отметки времени.
func (r *orderRepositoryInMemory) Create(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	order.UpdatedAt = now
	// Копируем позиции, чтобы избежать мутаций извне.
	order.Items = append([]domain.LineItem(nil), order.Items...)
	r.items[order.ID] = order
	return order, nil
}

// Get возвращает заказ или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(_ context.Context, id string) (domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	order, ok := r.items[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// List возвращает все заказы.
func (r *orderRepositoryInMemory) List(_ context.Context) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(domain.Order) bool { return true }), nil
}

// ListBySeller возвращает заказы продавца.
func (r *orderRepositoryInMemory) ListBySeller(_ context.Context, sellerID string) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(o domain.Order) bool { return o.SellerID == sellerID }), nil
}

// ListBySellerAndStatus возвращает заказы продавца в заданном статусе.
func (r *orderRepositoryInMemory) ListBySellerAndStatus(_ context.Context, sellerID string, status domain.OrderStatus) ([]domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.collect(func(o domain.Order) bool {
		return o.SellerID == sellerID && o.Status == status
	}), nil
}

// Update перезаписывает заказ, сохраняя владельца и время создания.
func (r *orderRepositoryInMemory) Update(_ context.Context, order domain.Order) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[order.ID]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	order.SellerID = current.SellerID
	order.CreatedAt = current.CreatedAt
	order.UpdatedAt = time.Now().UTC()
	order.Items = append([]domain.LineItem(nil), order.Items...)
	r.items[order.ID] = order
	return order, nil
}

// Delete удаляет заказ или возвращает ErrOrderNotFound.
func (r *orderRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrOrderNotFound
	}
	delete(r.items, id)
	return nil
}

// collect выбирает заказы по предикату под уже взятой блокировкой.
func (r *orderRepositoryInMemory) collect(keep func(domain.Order) bool) []domain.Order {
	result := make([]domain.Order, 0, len(r.items))
	for _, order := range r.items {
		if keep(order) {
			result = append(result, order)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
