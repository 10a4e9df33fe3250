package memory_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

func seedInventory(t *testing.T, db *memory.DB, storeID, productID int64, qty int32) {
	t.Helper()
	seeder := memory.NewCatalogSeeder(db)
	if _, err := seeder.PutInventory(context.Background(), domain.Inventory{
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  qty,
	}); err != nil {
		t.Fatalf("put inventory failed: %v", err)
	}
}

func TestPlacementTx_LockDeductCommit(t *testing.T) {
	db := memory.NewDB()
	seedInventory(t, db, 1, 10, 7)
	store := memory.NewPlacementStore(db, time.Second)

	ctx := context.Background()
	tx, err := store.Begin(ctx)
	if err != nil {
		t.Fatalf("begin failed: %v", err)
	}

	inv, err := tx.LockInventory(ctx, 1, 10)
	if err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if inv.Quantity != 7 {
		t.Fatalf("expected quantity 7, got %d", inv.Quantity)
	}

	if err := tx.DeductInventory(ctx, 1, 10, 5); err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	qty, err := memory.NewInventoryReader(db).GetQuantity(ctx, 1, 10)
	if err != nil {
		t.Fatalf("get quantity failed: %v", err)
	}
	if qty != 5 {
		t.Fatalf("expected quantity 5 after commit, got %d", qty)
	}
}

func TestPlacementTx_RollbackDiscardsDeductions(t *testing.T) {
	db := memory.NewDB()
	seedInventory(t, db, 1, 10, 7)
	store := memory.NewPlacementStore(db, time.Second)

	ctx := context.Background()
	tx, _ := store.Begin(ctx)
	if _, err := tx.LockInventory(ctx, 1, 10); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if err := tx.DeductInventory(ctx, 1, 10, 7); err != nil {
		t.Fatalf("deduct failed: %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback failed: %v", err)
	}

	qty, _ := memory.NewInventoryReader(db).GetQuantity(ctx, 1, 10)
	if qty != 7 {
		t.Fatalf("expected quantity 7 after rollback, got %d", qty)
	}
}

func TestPlacementTx_LockMissingRow(t *testing.T) {
	db := memory.NewDB()
	store := memory.NewPlacementStore(db, time.Second)

	tx, _ := store.Begin(context.Background())
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.LockInventory(context.Background(), 1, 99); !errors.Is(err, domain.ErrInventoryNotFound) {
		t.Fatalf("expected ErrInventoryNotFound, got %v", err)
	}
}

func TestPlacementTx_DeductWithoutLock(t *testing.T) {
	db := memory.NewDB()
	seedInventory(t, db, 1, 10, 7)
	store := memory.NewPlacementStore(db, time.Second)

	tx, _ := store.Begin(context.Background())
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeductInventory(context.Background(), 1, 10, 1); !errors.Is(err, domain.ErrLockNotHeld) {
		t.Fatalf("expected ErrLockNotHeld, got %v", err)
	}
}

func TestPlacementTx_DeductExceedsStock(t *testing.T) {
	db := memory.NewDB()
	seedInventory(t, db, 1, 10, 3)
	store := memory.NewPlacementStore(db, time.Second)

	ctx := context.Background()
	tx, _ := store.Begin(ctx)
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.LockInventory(ctx, 1, 10); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	if err := tx.DeductInventory(ctx, 1, 10, 4); !errors.Is(err, domain.ErrDeductExceedsStock) {
		t.Fatalf("expected ErrDeductExceedsStock, got %v", err)
	}
}

func TestPlacementTx_LockWaitTimeout(t *testing.T) {
	db := memory.NewDB()
	seedInventory(t, db, 1, 10, 7)
	store := memory.NewPlacementStore(db, 50*time.Millisecond)

	ctx := context.Background()
	holder, _ := store.Begin(ctx)
	if _, err := holder.LockInventory(ctx, 1, 10); err != nil {
		t.Fatalf("holder lock failed: %v", err)
	}

	waiter, _ := store.Begin(ctx)
	if _, err := waiter.LockInventory(ctx, 1, 10); !errors.Is(err, domain.ErrLockWaitTimeout) {
		t.Fatalf("expected ErrLockWaitTimeout, got %v", err)
	}

	if err := holder.Rollback(); err != nil {
		t.Fatalf("holder rollback failed: %v", err)
	}
	_ = waiter.Rollback()
}

func TestPlacementTx_LockReleasedOnCommit(t *testing.T) {
	db := memory.NewDB()
	seedInventory(t, db, 1, 10, 7)
	store := memory.NewPlacementStore(db, time.Second)

	ctx := context.Background()
	first, _ := store.Begin(ctx)
	if _, err := first.LockInventory(ctx, 1, 10); err != nil {
		t.Fatalf("first lock failed: %v", err)
	}
	if err := first.DeductInventory(ctx, 1, 10, 2); err != nil {
		t.Fatalf("first deduct failed: %v", err)
	}

	done := make(chan error, 1)
	var second domain.PlacementTx
	var secondOnce sync.Once
	go func() {
		tx, err := store.Begin(ctx)
		if err != nil {
			done <- err
			return
		}
		secondOnce.Do(func() { second = tx })
		inv, err := tx.LockInventory(ctx, 1, 10)
		if err != nil {
			done <- err
			return
		}
		// Ожидающая транзакция обязана увидеть уже списанное количество.
		if inv.Quantity != 5 {
			done <- errors.New("waiter observed stale quantity")
			return
		}
		done <- tx.Rollback()
	}()

	// Даём ожидающей горутине встать в очередь за блокировкой.
	time.Sleep(20 * time.Millisecond)
	if err := first.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("waiter failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("waiter blocked after lock release")
	}
	_ = second
}

func TestPlacementTx_RepeatedLockSameRow(t *testing.T) {
	db := memory.NewDB()
	seedInventory(t, db, 1, 10, 7)
	store := memory.NewPlacementStore(db, 50*time.Millisecond)

	ctx := context.Background()
	tx, _ := store.Begin(ctx)
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.LockInventory(ctx, 1, 10); err != nil {
		t.Fatalf("first lock failed: %v", err)
	}
	if err := tx.DeductInventory(ctx, 1, 10, 3); err != nil {
		t.Fatalf("deduct failed: %v", err)
	}

	// Повторный захват той же строки той же транзакцией не блокируется
	// и отражает собственные незафиксированные списания.
	inv, err := tx.LockInventory(ctx, 1, 10)
	if err != nil {
		t.Fatalf("repeated lock failed: %v", err)
	}
	if inv.Quantity != 4 {
		t.Fatalf("expected staged quantity 4, got %d", inv.Quantity)
	}
}

func TestPlacementTx_FinishedTx(t *testing.T) {
	db := memory.NewDB()
	seedInventory(t, db, 1, 10, 7)
	store := memory.NewPlacementStore(db, time.Second)

	ctx := context.Background()
	tx, _ := store.Begin(ctx)
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit failed: %v", err)
	}

	if _, err := tx.LockInventory(ctx, 1, 10); !errors.Is(err, domain.ErrTxFinished) {
		t.Fatalf("expected ErrTxFinished, got %v", err)
	}
	if err := tx.Commit(); !errors.Is(err, domain.ErrTxFinished) {
		t.Fatalf("expected ErrTxFinished on double commit, got %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("rollback after commit must be a no-op, got %v", err)
	}
}

func TestPlacementStore_ConcurrentDeductions(t *testing.T) {
	db := memory.NewDB()
	const initial = int32(100)
	seedInventory(t, db, 1, 10, initial)
	store := memory.NewPlacementStore(db, 5*time.Second)

	ctx := context.Background()
	const workers = 30
	var wg sync.WaitGroup
	var committed int32
	var mu sync.Mutex

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tx, err := store.Begin(ctx)
			if err != nil {
				return
			}
			inv, err := tx.LockInventory(ctx, 1, 10)
			if err != nil {
				_ = tx.Rollback()
				return
			}
			const want = int32(7)
			if inv.Quantity < want {
				_ = tx.Rollback()
				return
			}
			if err := tx.DeductInventory(ctx, 1, 10, want); err != nil {
				_ = tx.Rollback()
				return
			}
			if err := tx.Commit(); err != nil {
				return
			}
			mu.Lock()
			committed += want
			mu.Unlock()
		}()
	}
	wg.Wait()

	final, _ := memory.NewInventoryReader(db).GetQuantity(ctx, 1, 10)
	if final < 0 {
		t.Fatalf("quantity went negative: %d", final)
	}
	if final != initial-committed {
		t.Fatalf("lost update: initial=%d committed=%d final=%d", initial, committed, final)
	}
}
