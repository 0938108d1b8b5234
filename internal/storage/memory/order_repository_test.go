package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

func seedOrder(t *testing.T, repo domain.OrderRepository, sellerID string, status domain.OrderStatus, total float64) domain.Order {
	t.Helper()

	order, err := repo.Create(context.Background(), domain.Order{
		CustomerID: "customer-1",
		SellerID:   sellerID,
		Status:     status,
		Total:      total,
		Items:      []domain.LineItem{{ProductID: "product-1", Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("seed order failed: %v", err)
	}
	return order
}

func TestOrderRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	order := seedOrder(t, repo, "seller-1", domain.OrderStatusPending, 100)
	if order.ID == "" {
		t.Fatal("create must assign an id")
	}

	loaded, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.SellerID != "seller-1" || loaded.Total != 100 {
		t.Fatalf("unexpected order: %+v", loaded)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListFilters(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	seedOrder(t, repo, "seller-1", domain.OrderStatusPending, 10)
	seedOrder(t, repo, "seller-1", domain.OrderStatusCompleted, 20)
	seedOrder(t, repo, "seller-2", domain.OrderStatusCompleted, 30)

	all, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 orders, got %d", len(all))
	}

	mine, err := repo.ListBySeller(ctx, "seller-1")
	if err != nil {
		t.Fatalf("list by seller failed: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 orders for seller-1, got %d", len(mine))
	}

	completed, err := repo.ListBySellerAndStatus(ctx, "seller-1", domain.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("list by status failed: %v", err)
	}
	if len(completed) != 1 || completed[0].Total != 20 {
		t.Fatalf("unexpected status filter result: %+v", completed)
	}
}

func TestOrderRepository_UpdateKeepsOwner(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	order := seedOrder(t, repo, "seller-1", domain.OrderStatusPending, 10)

	order.SellerID = "seller-2"
	order.Status = domain.OrderStatusCompleted
	updated, err := repo.Update(ctx, order)
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.SellerID != "seller-1" {
		t.Fatal("update must not reassign the owning seller")
	}
	if updated.Status != domain.OrderStatusCompleted {
		t.Fatalf("status change lost: %+v", updated)
	}
}

func TestOrderRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOrderRepository()

	order := seedOrder(t, repo, "seller-1", domain.OrderStatusPending, 10)
	if err := repo.Delete(ctx, order.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.Delete(ctx, order.ID); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}
