package domain_test

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/crm/internal/domain"
)

// helper для создания базового заказа с одной позицией.
func makeOrder() domain.Order {
	now := time.Now().UTC()
	return domain.Order{
		ID:         "order-1",
		CustomerID: "customer-1",
		SellerID:   "seller-1",
		Status:     domain.OrderStatusPending,
		Total:      500,
		Items: []domain.LineItem{
			{ProductID: "product-1", Quantity: 5},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestOrderValidateInvariants_Ok(t *testing.T) {
	order := makeOrder()
	if errs := order.ValidateInvariants(); len(errs) != 0 {
		t.Fatalf("expected no validation errors, got %v", errs)
	}
}

func TestOrderValidateInvariants_Errors(t *testing.T) {
	cases := []struct {
		name string
		mut  func(o *domain.Order)
	}{
		{
			name: "no customer",
			mut: func(o *domain.Order) {
				o.CustomerID = ""
			},
		},
		{
			name: "no items",
			mut: func(o *domain.Order) {
				o.Items = nil
			},
		},
		{
			name: "negative total",
			mut: func(o *domain.Order) {
				o.Total = -1
			},
		},
		{
			name: "qty invalid",
			mut: func(o *domain.Order) {
				o.Items[0].Quantity = 0
			},
		},
		{
			name: "unknown status",
			mut: func(o *domain.Order) {
				o.Status = "shipped"
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			order := makeOrder()
			// Изменяем состояние согласно сценарию.
			tc.mut(&order)

			if len(order.ValidateInvariants()) == 0 {
				t.Fatalf("expected validation errors for case %s", tc.name)
			}
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, status := range []domain.OrderStatus{
		domain.OrderStatusPending,
		domain.OrderStatusCompleted,
		domain.OrderStatusCancelled,
	} {
		if !domain.ValidStatus(status) {
			t.Fatalf("status %q should be valid", status)
		}
	}
	if domain.ValidStatus("delivered") {
		t.Fatal("unknown status should be invalid")
	}
}
