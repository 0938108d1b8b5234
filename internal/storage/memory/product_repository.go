package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// productRepositoryInMemory — in-memory реализация ProductRepository.
type productRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Product
}

// NewProductRepository возвращает in-memory репозиторий каталога.
func NewProductRepository() domain.ProductRepository {
	return &productRepositoryInMemory{
		items: make(map[string]domain.Product),
	}
}

// Create сохраняет товар, присваивая идентификатор и время создания.
func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now().UTC()
	}
	r.items[product.ID] = product
	return product, nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) Get(_ context.Context, id string) (domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// List возвращает весь каталог, упорядоченный по времени создания.
func (r *productRepositoryInMemory) List(_ context.Context) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Product, 0, len(r.items))
	for _, product := range r.items {
		result = append(result, product)
	}
	sortProducts(result)
	return result, nil
}

// Search ищет товары по подстроке в имени без учёта регистра, не более limit штук.
func (r *productRepositoryInMemory) Search(_ context.Context, text string, limit int) ([]domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	needle := strings.ToLower(text)
	result := make([]domain.Product, 0)
	for _, product := range r.items {
		if strings.Contains(strings.ToLower(product.Name), needle) {
			result = append(result, product)
		}
	}
	sortProducts(result)

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Update перезаписывает товар или возвращает ErrProductNotFound.
func (r *productRepositoryInMemory) Update(_ context.Context, product domain.Product) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[product.ID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	product.CreatedAt = current.CreatedAt
	r.items[product.ID] = product
	return product, nil
}

// Delete удаляет товар или возвращает ErrProductNotFound.
func (r *productRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(r.items, id)
	return nil
}

// DecrementStock выполняет условное списание под мьютексом: проверка остатка
// и уменьшение — одна критическая секция, остаток не уходит в минус.
func (r *productRepositoryInMemory) DecrementStock(_ context.Context, id string, qty int32) (domain.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.items[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if product.Available < qty {
		return domain.Product{}, domain.ErrInsufficientStock
	}
	product.Available -= qty
	r.items[id] = product
	return product, nil
}

func sortProducts(products []domain.Product) {
	sort.Slice(products, func(i, j int) bool {
		if !products[i].CreatedAt.Equal(products[j].CreatedAt) {
			return products[i].CreatedAt.Before(products[j].CreatedAt)
		}
		return products[i].ID < products[j].ID
	})
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
