package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// customerRepositoryInMemory — in-memory реализация CustomerRepository.
type customerRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.Customer
}

// NewCustomerRepository возвращает in-memory репозиторий клиентов.
func NewCustomerRepository() domain.CustomerRepository {
	return &customerRepositoryInMemory{
		items: make(map[string]domain.Customer),
	}
}

// Create сохраняет клиента, присваивая идентификатор и время создания.
func (r *customerRepositoryInMemory) Create(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = time.Now().UTC()
	}
	r.items[customer.ID] = customer
	return customer, nil
}

// Get возвращает клиента или ErrCustomerNotFound.
func (r *customerRepositoryInMemory) Get(_ context.Context, id string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customer, ok := r.items[id]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	return customer, nil
}

// GetByEmail возвращает клиента по email или ErrCustomerNotFound.
func (r *customerRepositoryInMemory) GetByEmail(_ context.Context, email string) (domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, customer := range r.items {
		if customer.Email == email {
			return customer, nil
		}
	}
	return domain.Customer{}, domain.ErrCustomerNotFound
}

// List возвращает всех клиентов.
func (r *customerRepositoryInMemory) List(_ context.Context) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0, len(r.items))
	for _, customer := range r.items {
		result = append(result, customer)
	}
	sortCustomers(result)
	return result, nil
}

// ListBySeller возвращает клиентов, принадлежащих продавцу.
func (r *customerRepositoryInMemory) ListBySeller(_ context.Context, sellerID string) ([]domain.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]domain.Customer, 0)
	for _, customer := range r.items {
		if customer.SellerID == sellerID {
			result = append(result, customer)
		}
	}
	sortCustomers(result)
	return result, nil
}

// Update перезаписывает клиента, сохраняя владельца и время создания.
func (r *customerRepositoryInMemory) Update(_ context.Context, customer domain.Customer) (domain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.items[customer.ID]
	if !ok {
		return domain.Customer{}, domain.ErrCustomerNotFound
	}
	// Владелец не переназначается.
	customer.SellerID = current.SellerID
	customer.CreatedAt = current.CreatedAt
	r.items[customer.ID] = customer
	return customer, nil
}

// Delete удаляет клиента или возвращает ErrCustomerNotFound.
func (r *customerRepositoryInMemory) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return domain.ErrCustomerNotFound
	}
	delete(r.items, id)
	return nil
}

func sortCustomers(customers []domain.Customer) {
	sort.Slice(customers, func(i, j int) bool {
		if !customers[i].CreatedAt.Equal(customers[j].CreatedAt) {
			return customers[i].CreatedAt.Before(customers[j].CreatedAt)
		}
		return customers[i].ID < customers[j].ID
	})
}

var _ domain.CustomerRepository = (*customerRepositoryInMemory)(nil)
