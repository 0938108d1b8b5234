package graphql

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/auth"
	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/service/accounts"
	"github.com/vladislavdragonenkov/crm/internal/service/catalog"
	"github.com/vladislavdragonenkov/crm/internal/service/customers"
	"github.com/vladislavdragonenkov/crm/internal/service/orders"
	"github.com/vladislavdragonenkov/crm/internal/service/reports"
)

// ErrNotAuthenticated возвращается резолверами, которым нужен вызывающий,
// когда запрос пришёл без валидного токена.
var ErrNotAuthenticated = errors.New("not authenticated")

// Resolver связывает GraphQL-поля с сервисным слоем. Резолверы не содержат
// бизнес-логики: декодируют аргументы, достают identity из контекста и
// делегируют сервисам.
type Resolver struct {
	accounts  *accounts.Service
	catalog   *catalog.Service
	customers *customers.Service
	orders    *orders.Workflow
	reports   *reports.Service
	// customerLookup используется вложенным полем Order.customer: владение
	// уже проверено на уровне заказа, повторная проверка не нужна.
	customerLookup domain.CustomerRepository
	logger         *log.Entry
}

// NewResolver создаёт резолвер поверх собранных сервисов.
func NewResolver(
	accountsSvc *accounts.Service,
	catalogSvc *catalog.Service,
	customersSvc *customers.Service,
	ordersSvc *orders.Workflow,
	reportsSvc *reports.Service,
	customerLookup domain.CustomerRepository,
	logger *log.Entry,
) *Resolver {
	if logger == nil {
		logger = log.NewEntry(log.New())
	}
	return &Resolver{
		accounts:       accountsSvc,
		catalog:        catalogSvc,
		customers:      customersSvc,
		orders:         ordersSvc,
		reports:        reportsSvc,
		customerLookup: customerLookup,
		logger:         logger,
	}
}

// identity достаёт аутентифицированного вызывающего из контекста запроса.
func identity(ctx context.Context) (auth.Identity, error) {
	id, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return auth.Identity{}, ErrNotAuthenticated
	}
	return id, nil
}
