package domain

import "context"

// UserRepository описывает требования к хранилищу пользователей.
type UserRepository interface {
	// Create сохраняет нового пользователя и возвращает запись с присвоенным ID.
	Create(ctx context.Context, user User) (User, error)
	// Get возвращает пользователя по идентификатору или ErrUserNotFound.
	Get(ctx context.Context, id string) (User, error)
	// GetByEmail возвращает пользователя по email или ErrUserNotFound.
	GetByEmail(ctx context.Context, email string) (User, error)
}

// ProductRepository описывает требования к хранилищу каталога.
type ProductRepository interface {
	Create(ctx context.Context, product Product) (Product, error)
	Get(ctx context.Context, id string) (Product, error)
	List(ctx context.Context) ([]Product, error)
	// Search возвращает товары по текстовому запросу, не более limit штук.
	Search(ctx context.Context, text string, limit int) ([]Product, error)
	Update(ctx context.Context, product Product) (Product, error)
	Delete(ctx context.Context, id string) error
	// DecrementStock атомарно уменьшает остаток товара на qty при условии,
	// что остатка хватает. Возвращает обновлённый товар, ErrProductNotFound
	// или ErrInsufficientStock. Условное списание закрывает гонку
	// check-then-act между конкурентными заказами.
	DecrementStock(ctx context.Context, id string, qty int32) (Product, error)
}

// CustomerRepository описывает требования к хранилищу клиентов.
type CustomerRepository interface {
	Create(ctx context.Context, customer Customer) (Customer, error)
	Get(ctx context.Context, id string) (Customer, error)
	// GetByEmail нужен для best-effort проверки уникальности email при создании.
	GetByEmail(ctx context.Context, email string) (Customer, error)
	List(ctx context.Context) ([]Customer, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Customer, error)
	Update(ctx context.Context, customer Customer) (Customer, error)
	Delete(ctx context.Context, id string) error
}

// OrderRepository описывает требования к хранилищу заказов.
type OrderRepository interface {
	Create(ctx context.Context, order Order) (Order, error)
	Get(ctx context.Context, id string) (Order, error)
	List(ctx context.Context) ([]Order, error)
	ListBySeller(ctx context.Context, sellerID string) ([]Order, error)
	ListBySellerAndStatus(ctx context.Context, sellerID string, status OrderStatus) ([]Order, error)
	Update(ctx context.Context, order Order) (Order, error)
	Delete(ctx context.Context, id string) error
}

// CustomerSales — строка отчёта по лучшим клиентам.
type CustomerSales struct {
	Customer Customer
	Total    float64
}

// SellerSales — строка отчёта по лучшим продавцам.
type SellerSales struct {
	Seller User
	Total  float64
}

// ReportsRepository выполняет отчётные агрегации по завершённым заказам.
// Результаты считаются заново на каждый вызов, кэширования нет.
type ReportsRepository interface {
	// TopCustomers группирует завершённые заказы по клиенту, суммирует Total
	// и возвращает не более limit групп по убыванию суммы.
	TopCustomers(ctx context.Context, limit int) ([]CustomerSales, error)
	// TopSellers — то же самое по продавцам.
	TopSellers(ctx context.Context, limit int) ([]SellerSales, error)
}
