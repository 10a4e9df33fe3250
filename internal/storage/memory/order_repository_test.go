package memory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func TestOrderRepository_CreateGet(t *testing.T) {
	db := memory.NewDB()
	repo := memory.NewOrderRepository(db)
	ctx := context.Background()

	order, err := repo.Create(ctx, 1, domain.OrderStatusRejected)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if order.ID == 0 {
		t.Fatal("expected assigned order id")
	}
	if order.Status != domain.OrderStatusRejected {
		t.Fatalf("expected REJECTED, got %s", order.Status)
	}

	stored, err := repo.Get(ctx, order.ID)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if stored.StoreID != 1 {
		t.Fatalf("expected store 1, got %d", stored.StoreID)
	}
}

func TestOrderRepository_GetMissing(t *testing.T) {
	repo := memory.NewOrderRepository(memory.NewDB())

	if _, err := repo.Get(context.Background(), 42); !errors.Is(err, domain.ErrOrderNotFound) {
		t.Fatalf("expected ErrOrderNotFound, got %v", err)
	}
}

func TestOrderRepository_ListByStore(t *testing.T) {
	db := memory.NewDB()
	repo := memory.NewOrderRepository(db)
	ctx := context.Background()

	first, err := repo.Create(ctx, 1, domain.OrderStatusRejected)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := repo.Create(ctx, 1, domain.OrderStatusRejected)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := repo.Create(ctx, 2, domain.OrderStatusRejected); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	summaries, err := repo.ListByStore(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(summaries))
	}
	// От новых к старым.
	if summaries[0].ID != second.ID || summaries[1].ID != first.ID {
		t.Fatalf("unexpected order: got %d, %d", summaries[0].ID, summaries[1].ID)
	}
	for _, s := range summaries {
		if s.TotalItems != 0 {
			t.Fatalf("rejected order must have 0 items, got %d", s.TotalItems)
		}
	}
}

func TestOrderRepository_ListIdempotent(t *testing.T) {
	db := memory.NewDB()
	repo := memory.NewOrderRepository(db)
	ctx := context.Background()

	if _, err := repo.Create(ctx, 1, domain.OrderStatusRejected); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	first, err := repo.ListByStore(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	second, err := repo.ListByStore(ctx, 1)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("repeated reads differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("repeated reads differ at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
