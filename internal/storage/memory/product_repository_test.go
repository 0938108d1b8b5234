package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/vladislavdragonenkov/crm/internal/domain"
	"github.com/vladislavdragonenkov/crm/internal/storage/memory"
)

func TestProductRepository_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	created, err := repo.Create(ctx, domain.Product{Name: "Monitor", Price: 299.99, Available: 10})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("create must assign an id")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("create must assign a creation timestamp")
	}

	loaded, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.Name != "Monitor" {
		t.Fatalf("unexpected product: %+v", loaded)
	}

	loaded.Price = 249.99
	if _, err := repo.Update(ctx, loaded); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if err := repo.Delete(ctx, created.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := repo.Get(ctx, created.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
}

func TestProductRepository_NotFound(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
	if _, err := repo.Update(ctx, domain.Product{ID: "missing", Name: "x"}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on update, got %v", err)
	}
	if err := repo.Delete(ctx, "missing"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on delete, got %v", err)
	}
	if _, err := repo.DecrementStock(ctx, "missing", 1); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on decrement, got %v", err)
	}
}

func TestProductRepository_DecrementStock(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	created, err := repo.Create(ctx, domain.Product{Name: "Keyboard", Price: 50, Available: 5})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := repo.DecrementStock(ctx, created.ID, 3)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if updated.Available != 2 {
		t.Fatalf("expected available=2, got %d", updated.Available)
	}

	// Списание сверх остатка отклоняется и ничего не меняет.
	if _, err := repo.DecrementStock(ctx, created.ID, 3); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	loaded, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.Available != 2 {
		t.Fatalf("failed decrement must not change stock, got %d", loaded.Available)
	}
}

func TestProductRepository_DecrementStockConcurrent(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	created, err := repo.Create(ctx, domain.Product{Name: "Mouse", Price: 20, Available: 10})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// 20 конкурентных списаний по 1 при остатке 10: ровно 10 должны пройти.
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.DecrementStock(ctx, created.ID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Fatalf("expected exactly 10 successful decrements, got %d", succeeded)
	}
	loaded, err := repo.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if loaded.Available != 0 {
		t.Fatalf("expected available=0, got %d", loaded.Available)
	}
}

func TestProductRepository_Search(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository()

	for _, name := range []string{"Gaming Monitor", "Office Monitor", "Keyboard"} {
		if _, err := repo.Create(ctx, domain.Product{Name: name, Price: 10, Available: 1}); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}

	found, err := repo.Search(ctx, "monitor", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(found) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(found))
	}

	limited, err := repo.Search(ctx, "monitor", 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("expected search limit to apply, got %d results", len(limited))
	}
}
