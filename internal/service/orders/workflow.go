package orders

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/metrics"
)

// Причины провалов workflow для метрик.
const (
	reasonNotFound          = "not_found"
	reasonPermissionDenied  = "permission_denied"
	reasonInsufficientStock = "insufficient_stock"
	reasonInvalidInput      = "invalid_input"
)

// PlaceOrderInput — запрос на размещение заказа.
type PlaceOrderInput struct {
	CustomerID string
	Items      []domain.LineItem
	Total      float64
	// Status опционален; пустое значение означает pending.
	Status domain.OrderStatus
}

// UpdateOrderInput — частичное обновление заказа. Nil-поля не применяются;
// Items == nil означает «позиции не меняются».
type UpdateOrderInput struct {
	CustomerID string
	Items      []domain.LineItem
	Total      *float64
	Status     *domain.OrderStatus
}

// Workflow реализует резервирование остатков при создании и обновлении
// заказов: проверка владения, проверка доступности каждой позиции,
// списание. Списания применяются по одной позиции и сразу персистятся;
// при провале поздней позиции ранние списания НЕ откатываются — вызывающий
// обязан трактовать InsufficientStock как «часть остатка уже списана».
type Workflow struct {
	orders    domain.OrderRepository
	customers domain.CustomerRepository
	products  domain.ProductRepository
	logger    *log.Entry
	metrics   *metrics.WorkflowMetrics
}

// NewWorkflow создаёт рабочий экземпляр workflow с метриками.
func NewWorkflow(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	logger *log.Entry,
) *Workflow {
	w := newWorkflow(orders, customers, products, logger)
	w.metrics = metrics.NewWorkflowMetrics()
	return w
}

// NewWorkflowWithoutMetrics создаёт workflow без метрик (для тестов).
func NewWorkflowWithoutMetrics(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	logger *log.Entry,
) *Workflow {
	return newWorkflow(orders, customers, products, logger)
}

func newWorkflow(
	orders domain.OrderRepository,
	customers domain.CustomerRepository,
	products domain.ProductRepository,
	logger *log.Entry,
) *Workflow {
	if logger == nil {
		logger = log.New().WithField("component", "orders")
	}
	return &Workflow{
		orders:    orders,
		customers: customers,
		products:  products,
		logger:    logger,
	}
}

// PlaceOrder размещает заказ: клиент должен существовать и принадлежать
// вызывающему, каждая позиция проверяется и списывается в порядке ввода,
// затем создаётся запись заказа с seller = callerID.
func (w *Workflow) PlaceOrder(ctx context.Context, input PlaceOrderInput, callerID string) (domain.Order, error) {
	start := time.Now()
	defer func() {
		if w.metrics != nil {
			w.metrics.RecordPlaceDuration(time.Since(start))
		}
	}()

	customer, err := w.customers.Get(ctx, input.CustomerID)
	if err != nil {
		w.recordFailure(reasonNotFound)
		return domain.Order{}, err
	}
	if err := domain.Authorize(customer.SellerID, callerID); err != nil {
		w.recordFailure(reasonPermissionDenied)
		w.logger.WithFields(log.Fields{
			"customer_id": customer.ID,
			"caller_id":   callerID,
		}).Warn("place order rejected: customer belongs to another seller")
		return domain.Order{}, err
	}

	status := input.Status
	if status == "" {
		status = domain.OrderStatusPending
	}
	order := domain.Order{
		CustomerID: customer.ID,
		SellerID:   callerID,
		Status:     status,
		Total:      input.Total,
		Items:      input.Items,
	}
	// Инварианты проверяются до первого списания, чтобы некорректный ввод
	// не оставлял частичных эффектов.
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		w.recordFailure(reasonInvalidInput)
		return domain.Order{}, errors.Join(errs...)
	}

	if err := w.reserveItems(ctx, input.Items); err != nil {
		return domain.Order{}, err
	}

	created, err := w.orders.Create(ctx, order)
	if err != nil {
		w.logger.WithError(err).Error("failed to persist order")
		return domain.Order{}, err
	}

	if w.metrics != nil {
		w.metrics.RecordOrderPlaced()
	}
	w.logger.WithFields(log.Fields{
		"order_id":    created.ID,
		"customer_id": created.CustomerID,
		"items":       len(created.Items),
	}).Info("order placed")
	return created, nil
}

// UpdateOrder повторяет валидационную последовательность размещения: заказ
// должен существовать, клиент из запроса должен существовать, владение
// проверяется по продавцу КЛИЕНТА. Цикл списания выполняется только если
// передан новый список позиций; повторный вызов с теми же позициями спишет
// остаток ещё раз.
func (w *Workflow) UpdateOrder(ctx context.Context, orderID string, input UpdateOrderInput, callerID string) (domain.Order, error) {
	order, err := w.orders.Get(ctx, orderID)
	if err != nil {
		w.recordFailure(reasonNotFound)
		return domain.Order{}, err
	}

	customer, err := w.customers.Get(ctx, input.CustomerID)
	if err != nil {
		w.recordFailure(reasonNotFound)
		return domain.Order{}, err
	}
	if err := domain.Authorize(customer.SellerID, callerID); err != nil {
		w.recordFailure(reasonPermissionDenied)
		return domain.Order{}, err
	}

	order.CustomerID = customer.ID
	if input.Total != nil {
		order.Total = *input.Total
	}
	if input.Status != nil {
		order.Status = *input.Status
	}
	if input.Items != nil {
		order.Items = input.Items
	}
	if errs := order.ValidateInvariants(); len(errs) > 0 {
		w.recordFailure(reasonInvalidInput)
		return domain.Order{}, errors.Join(errs...)
	}

	if input.Items != nil {
		if err := w.reserveItems(ctx, input.Items); err != nil {
			return domain.Order{}, err
		}
	}

	updated, err := w.orders.Update(ctx, order)
	if err != nil {
		w.logger.WithError(err).WithField("order_id", orderID).Error("failed to persist order update")
		return domain.Order{}, err
	}

	if w.metrics != nil {
		w.metrics.RecordOrderUpdated()
	}
	return updated, nil
}

// DeleteOrder удаляет заказ после проверки владения по продавцу самого
// заказа. Списанный под заказ остаток не возвращается.
func (w *Workflow) DeleteOrder(ctx context.Context, orderID, callerID string) error {
	order, err := w.orders.Get(ctx, orderID)
	if err != nil {
		w.recordFailure(reasonNotFound)
		return err
	}
	if err := domain.Authorize(order.SellerID, callerID); err != nil {
		w.recordFailure(reasonPermissionDenied)
		return err
	}

	if err := w.orders.Delete(ctx, orderID); err != nil {
		return err
	}
	if w.metrics != nil {
		w.metrics.RecordOrderDeleted()
	}
	w.logger.WithField("order_id", orderID).Info("order deleted")
	return nil
}

// Get возвращает заказ; видеть его может только владеющий продавец.
func (w *Workflow) Get(ctx context.Context, orderID, callerID string) (domain.Order, error) {
	order, err := w.orders.Get(ctx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := domain.Authorize(order.SellerID, callerID); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// List возвращает все заказы.
func (w *Workflow) List(ctx context.Context) ([]domain.Order, error) {
	return w.orders.List(ctx)
}

// ListMine возвращает заказы вызывающего продавца.
func (w *Workflow) ListMine(ctx context.Context, callerID string) ([]domain.Order, error) {
	return w.orders.ListBySeller(ctx, callerID)
}

// ListMineByStatus возвращает заказы вызывающего продавца в заданном статусе.
func (w *Workflow) ListMineByStatus(ctx context.Context, callerID string, status domain.OrderStatus) ([]domain.Order, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrStatusInvalid
	}
	return w.orders.ListBySellerAndStatus(ctx, callerID, status)
}

// reserveItems проверяет и списывает позиции в порядке ввода. Каждое
// списание персистится сразу, поэтому частичное состояние видно
// конкурентным читателям до появления заказа. Само списание атомарно
// на уровне репозитория и не опускает остаток ниже нуля.
func (w *Workflow) reserveItems(ctx context.Context, items []domain.LineItem) error {
	for _, item := range items {
		product, err := w.products.Get(ctx, item.ProductID)
		if err != nil {
			w.recordFailure(reasonNotFound)
			return err
		}
		if item.Quantity > product.Available {
			w.recordFailure(reasonInsufficientStock)
			return &domain.InsufficientStockError{
				ProductName: product.Name,
				Requested:   item.Quantity,
				Available:   product.Available,
			}
		}

		updated, err := w.products.DecrementStock(ctx, product.ID, item.Quantity)
		if err != nil {
			if errors.Is(err, domain.ErrInsufficientStock) {
				// Остаток успел уйти между чтением и условным списанием.
				w.recordFailure(reasonInsufficientStock)
				available := product.Available
				if fresh, ferr := w.products.Get(ctx, product.ID); ferr == nil {
					available = fresh.Available
				}
				return &domain.InsufficientStockError{
					ProductName: product.Name,
					Requested:   item.Quantity,
					Available:   available,
				}
			}
			w.logger.WithError(err).WithField("product_id", product.ID).Error("stock decrement failed")
			return err
		}

		if w.metrics != nil {
			w.metrics.RecordUnitsReserved(item.Quantity)
		}
		w.logger.WithFields(log.Fields{
			"product_id": product.ID,
			"qty":        item.Quantity,
			"remaining":  updated.Available,
		}).Debug("stock reserved")
	}
	return nil
}

func (w *Workflow) recordFailure(reason string) {
	if w.metrics != nil {
		w.metrics.RecordWorkflowFailed(reason)
	}
}
