package domain

import (
	"errors"
	"fmt"
)

var (
	// Ошибка отсутствующего пользователя.
	ErrUserNotFound = errors.New("user not found")
	// Ошибка отсутствующего товара.
	ErrProductNotFound = errors.New("product not found")
	// Ошибка отсутствующего клиента.
	ErrCustomerNotFound = errors.New("customer not found")
	// Ошибка отсутствующего заказа.
	ErrOrderNotFound = errors.New("order not found")
	// ErrPermissionDenied возвращается, когда запись принадлежит другому продавцу.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUserAlreadyExists — email пользователя уже зарегистрирован.
	ErrUserAlreadyExists = errors.New("user already registered")
	// ErrCustomerAlreadyExists — email клиента уже зарегистрирован.
	ErrCustomerAlreadyExists = errors.New("customer already registered")
	// ErrAuthenticationFailed — неверные учётные данные.
	ErrAuthenticationFailed = errors.New("invalid credentials")
	// ErrInsufficientStock — запрошенное количество превышает остаток.
	// Репозитории возвращают его как есть; workflow оборачивает в
	// InsufficientStockError с именем товара.
	ErrInsufficientStock = errors.New("insufficient stock")

	// Ошибка отсутствующего имени.
	ErrNameRequired = errors.New("name is required")
	// Ошибка отсутствующего email.
	ErrEmailRequired = errors.New("email is required")
	// Ошибка отрицательной цены товара.
	ErrPriceNegative = errors.New("price must be non-negative")
	// Ошибка отрицательного остатка товара.
	ErrStockNegative = errors.New("available quantity must be non-negative")
	// Ошибка отсутствующего идентификатора клиента в заказе.
	ErrCustomerRequired = errors.New("customer_id is required")
	// Ошибка отсутствия хотя бы одной позиции в заказе.
	ErrItemsRequired = errors.New("order must contain at least one line item")
	// Ошибка при некорректном количестве позиции (<= 0).
	ErrItemQtyInvalid = errors.New("line item quantity must be greater than zero")
	// Ошибка отрицательной суммы заказа.
	ErrTotalNegative = errors.New("order total must be non-negative")
	// Ошибка неизвестного статуса заказа.
	ErrStatusInvalid = errors.New("unknown order status")
)

// InsufficientStockError несёт имя товара, остатка которого не хватило.
type InsufficientStockError struct {
	ProductName string
	Requested   int32
	Available   int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("product %q exceeds available quantity: requested %d, available %d",
		e.ProductName, e.Requested, e.Available)
}

// Is позволяет ловить обёрнутую ошибку через errors.Is(err, ErrInsufficientStock).
func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}

// IsNotFound проверяет, является ли ошибка отсутствием какой-либо сущности.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrProductNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrOrderNotFound)
}

// IsInsufficientStock проверяет, является ли ошибка нехваткой остатка.
func IsInsufficientStock(err error) bool {
	return errors.Is(err, ErrInsufficientStock)
}

// Authorize реализует предикат владения: действовать с записью может только
// её продавец. Проверка выполняется до любых побочных эффектов.
func Authorize(sellerID, callerID string) error {
	if sellerID != callerID {
		return ErrPermissionDenied
	}
	return nil
}
