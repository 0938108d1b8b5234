package orders_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/service/orders"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

type fixture struct {
	ctx       context.Context
	users     domain.UserRepository
	customers domain.CustomerRepository
	products  domain.ProductRepository
	orders    domain.OrderRepository
	workflow  *orders.Workflow
}

func newFixture() *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := memory.NewUserRepository()
	customers := memory.NewCustomerRepository()
	products := memory.NewProductRepository()
	orderRepo := memory.NewOrderRepository()

	return &fixture{
		ctx:       context.Background(),
		users:     users,
		customers: customers,
		products:  products,
		orders:    orderRepo,
		workflow:  orders.NewWorkflowWithoutMetrics(orderRepo, customers, products, logger.WithField("component", "orders")),
	}
}

func (f *fixture) seedSeller(t *testing.T, email string) domain.User {
	t.Helper()
	seller, err := f.users.Create(f.ctx, domain.User{Name: "Seller", Email: email})
	if err != nil {
		t.Fatalf("seed seller: %v", err)
	}
	return seller
}

func (f *fixture) seedCustomer(t *testing.T, sellerID, email string) domain.Customer {
	t.Helper()
	customer, err := f.customers.Create(f.ctx, domain.Customer{Name: "Customer", Email: email, SellerID: sellerID})
	if err != nil {
		t.Fatalf("seed customer: %v", err)
	}
	return customer
}

func (f *fixture) seedProduct(t *testing.T, name string, available int32) domain.Product {
	t.Helper()
	product, err := f.products.Create(f.ctx, domain.Product{Name: name, Price: 100, Available: available})
	if err != nil {
		t.Fatalf("seed product: %v", err)
	}
	return product
}

func (f *fixture) available(t *testing.T, productID string) int32 {
	t.Helper()
	product, err := f.products.Get(f.ctx, productID)
	if err != nil {
		t.Fatalf("load product: %v", err)
	}
	return product.Available
}

func TestPlaceOrder_Success(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	product := f.seedProduct(t, "Monitor", 5)

	order, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 3}},
		Total:      300,
	}, seller.ID)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if order.SellerID != seller.ID {
		t.Fatalf("order seller must equal caller, got %q", order.SellerID)
	}
	if order.Status != domain.OrderStatusPending {
		t.Fatalf("default status must be pending, got %q", order.Status)
	}
	if got := f.available(t, product.ID); got != 2 {
		t.Fatalf("expected available=2 after reservation, got %d", got)
	}

	// Повторный заказ на 3 единицы при остатке 2 — нехватка, остаток не меняется.
	_, err = f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 3}},
		Total:      300,
	}, seller.ID)
	var insufficient *domain.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.ProductName != "Monitor" {
		t.Fatalf("error must carry the product name, got %q", insufficient.ProductName)
	}
	if got := f.available(t, product.ID); got != 2 {
		t.Fatalf("failed order must not change stock, got %d", got)
	}
}

func TestPlaceOrder_PermissionDenied(t *testing.T) {
	f := newFixture()
	owner := f.seedSeller(t, "owner@example.com")
	intruder := f.seedSeller(t, "intruder@example.com")
	customer := f.seedCustomer(t, owner.ID, "c@example.com")
	product := f.seedProduct(t, "Monitor", 5)

	_, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 3}},
		Total:      300,
	}, intruder.ID)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	// Проверка владения идёт до любых списаний.
	if got := f.available(t, product.ID); got != 5 {
		t.Fatalf("denied order must leave stock unchanged, got %d", got)
	}
}

func TestPlaceOrder_CustomerNotFound(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	product := f.seedProduct(t, "Monitor", 5)

	_, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: "missing",
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 1}},
		Total:      100,
	}, seller.ID)
	if !errors.Is(err, domain.ErrCustomerNotFound) {
		t.Fatalf("expected ErrCustomerNotFound, got %v", err)
	}
}

func TestPlaceOrder_PartialDecrementRemains(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	first := f.seedProduct(t, "Monitor", 5)
	second := f.seedProduct(t, "Keyboard", 1)

	_, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items: []domain.LineItem{
			{ProductID: first.ID, Quantity: 2},
			{ProductID: second.ID, Quantity: 3},
		},
		Total: 500,
	}, seller.ID)
	if !domain.IsInsufficientStock(err) {
		t.Fatalf("expected insufficient stock, got %v", err)
	}

	// Ранняя позиция уже списана и не откатывается; заказ не создан.
	if got := f.available(t, first.ID); got != 3 {
		t.Fatalf("expected first product decremented to 3, got %d", got)
	}
	if got := f.available(t, second.ID); got != 1 {
		t.Fatalf("failing item must not be decremented, got %d", got)
	}
	all, err := f.orders.List(f.ctx)
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("aborted workflow must not create the order, got %d orders", len(all))
	}
}

func TestPlaceOrder_ProductNotFoundMidLoop(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	first := f.seedProduct(t, "Monitor", 5)

	_, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items: []domain.LineItem{
			{ProductID: first.ID, Quantity: 2},
			{ProductID: "missing", Quantity: 1},
		},
		Total: 100,
	}, seller.ID)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if got := f.available(t, first.ID); got != 3 {
		t.Fatalf("earlier item stays decremented, got %d", got)
	}
}

func TestPlaceOrder_InvalidInputBeforeReservation(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	product := f.seedProduct(t, "Monitor", 5)

	_, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 0}},
		Total:      100,
	}, seller.ID)
	if !errors.Is(err, domain.ErrItemQtyInvalid) {
		t.Fatalf("expected ErrItemQtyInvalid, got %v", err)
	}
	if got := f.available(t, product.ID); got != 5 {
		t.Fatalf("invalid input must not touch stock, got %d", got)
	}
}

func TestUpdateOrder_RepeatedItemsDoubleDecrement(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	product := f.seedProduct(t, "Monitor", 10)

	items := []domain.LineItem{{ProductID: product.ID, Quantity: 3}}
	order, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      items,
		Total:      300,
	}, seller.ID)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	// Обновление с тем же списком позиций списывает остаток ещё раз:
	// наблюдаемое поведение исходной системы, закреплённое тестом.
	if _, err := f.workflow.UpdateOrder(f.ctx, order.ID, orders.UpdateOrderInput{
		CustomerID: customer.ID,
		Items:      items,
	}, seller.ID); err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	if got := f.available(t, product.ID); got != 4 {
		t.Fatalf("expected double decrement to 4, got %d", got)
	}
}

func TestUpdateOrder_ScalarOnlySkipsReservation(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	product := f.seedProduct(t, "Monitor", 10)

	order, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 3}},
		Total:      300,
	}, seller.ID)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	completed := domain.OrderStatusCompleted
	updated, err := f.workflow.UpdateOrder(f.ctx, order.ID, orders.UpdateOrderInput{
		CustomerID: customer.ID,
		Status:     &completed,
	}, seller.ID)
	if err != nil {
		t.Fatalf("update order failed: %v", err)
	}
	if updated.Status != domain.OrderStatusCompleted {
		t.Fatalf("status not applied: %+v", updated)
	}
	if got := f.available(t, product.ID); got != 7 {
		t.Fatalf("scalar update must not touch stock, got %d", got)
	}
}

func TestUpdateOrder_AuthorizedAgainstCustomerSeller(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	other := f.seedSeller(t, "other@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	foreign := f.seedCustomer(t, other.ID, "f@example.com")
	product := f.seedProduct(t, "Monitor", 10)

	order, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 1}},
		Total:      100,
	}, seller.ID)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	// Перенос заказа на чужого клиента: проверка идёт по продавцу клиента.
	_, err = f.workflow.UpdateOrder(f.ctx, order.ID, orders.UpdateOrderInput{
		CustomerID: foreign.ID,
	}, seller.ID)
	if !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	intruder := f.seedSeller(t, "intruder@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	product := f.seedProduct(t, "Monitor", 5)

	order, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 2}},
		Total:      200,
	}, seller.ID)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if err := f.workflow.DeleteOrder(f.ctx, order.ID, intruder.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied for foreign caller, got %v", err)
	}
	if err := f.workflow.DeleteOrder(f.ctx, order.ID, seller.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := f.workflow.DeleteOrder(f.ctx, order.ID, seller.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
	// Удаление заказа не возвращает списанный остаток.
	if got := f.available(t, product.ID); got != 3 {
		t.Fatalf("delete must not restore stock, got %d", got)
	}
}

func TestGetOrder_Ownership(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	intruder := f.seedSeller(t, "intruder@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	product := f.seedProduct(t, "Monitor", 5)

	order, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 1}},
		Total:      100,
	}, seller.ID)
	if err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	if _, err := f.workflow.Get(f.ctx, order.ID, seller.ID); err != nil {
		t.Fatalf("owner must read the order: %v", err)
	}
	if _, err := f.workflow.Get(f.ctx, order.ID, intruder.ID); !errors.Is(err, domain.ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
}

func TestListMineByStatus(t *testing.T) {
	f := newFixture()
	seller := f.seedSeller(t, "s@example.com")
	customer := f.seedCustomer(t, seller.ID, "c@example.com")
	product := f.seedProduct(t, "Monitor", 10)

	if _, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 1}},
		Total:      100,
		Status:     domain.OrderStatusCompleted,
	}, seller.ID); err != nil {
		t.Fatalf("place order failed: %v", err)
	}
	if _, err := f.workflow.PlaceOrder(f.ctx, orders.PlaceOrderInput{
		CustomerID: customer.ID,
		Items:      []domain.LineItem{{ProductID: product.ID, Quantity: 1}},
		Total:      100,
	}, seller.ID); err != nil {
		t.Fatalf("place order failed: %v", err)
	}

	completed, err := f.workflow.ListMineByStatus(f.ctx, seller.ID, domain.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if len(completed) != 1 {
		t.Fatalf("expected 1 completed order, got %d", len(completed))
	}

	if _, err := f.workflow.ListMineByStatus(f.ctx, seller.ID, "shipped"); !errors.Is(err, domain.ErrStatusInvalid) {
		t.Fatalf("expected ErrStatusInvalid, got %v", err)
	}
}
