package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — заказ создан и ожидает завершения.
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusCompleted — терминальный статус; только такие заказы
	// попадают в отчётные агрегации.
	OrderStatusCompleted OrderStatus = "completed"
	// OrderStatusCancelled — заказ отменён. Списанный остаток не возвращается.
	OrderStatusCancelled OrderStatus = "cancelled"
)

// ValidStatus сообщает, входит ли статус в допустимое множество.
func ValidStatus(s OrderStatus) bool {
	switch s {
	case OrderStatusPending, OrderStatusCompleted, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// LineItem — одна позиция заказа: ссылка на товар и запрошенное количество.
type LineItem struct {
	ProductID string
	Quantity  int32
}

// Order агрегирует позиции, клиента и владеющего продавца.
// Инвариант: SellerID заказа равен SellerID его клиента на момент создания;
// это обеспечивает проверка владения в workflow, а не хранилище.
type Order struct {
	ID         string
	CustomerID string
	SellerID   string
	Status     OrderStatus
	Total      float64
	Items      []LineItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ValidateInvariants проверяет базовые инварианты заказа.
func (o *Order) ValidateInvariants() []error {
	var errs []error

	if o.CustomerID == "" {
		errs = append(errs, ErrCustomerRequired)
	}
	if len(o.Items) == 0 {
		errs = append(errs, ErrItemsRequired)
	}
	if o.Total < 0 {
		errs = append(errs, ErrTotalNegative)
	}
	if !ValidStatus(o.Status) {
		errs = append(errs, ErrStatusInvalid)
	}

	for _, item := range o.Items {
		if item.Quantity <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
	}

	return errs
}
