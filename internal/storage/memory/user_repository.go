package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// userRepositoryInMemory — простая in-memory реализация UserRepository.
type userRepositoryInMemory struct {
	mu    sync.RWMutex
	items map[string]domain.User
}

// NewUserRepository возвращает in-memory репозиторий для локальной разработки и тестов.
func NewUserRepository() domain.UserRepository {
	return &userRepositoryInMemory{
		items: make(map[string]domain.User),
	}
}

// Create сохраняет пользователя, присваивая идентификатор и время создания.
func (r *userRepositoryInMemory) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	r.items[user.ID] = user
	return user, nil
}

// Get возвращает пользователя или ErrUserNotFound.
func (r *userRepositoryInMemory) Get(_ context.Context, id string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.items[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

// GetByEmail возвращает пользователя по email или ErrUserNotFound.
func (r *userRepositoryInMemory) GetByEmail(_ context.Context, email string) (domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.items {
		if user.Email == email {
			return user, nil
		}
	}
	return domain.User{}, domain.ErrUserNotFound
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
