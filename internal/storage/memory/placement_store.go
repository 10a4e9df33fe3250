package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const defaultLockTimeout = 5 * time.Second

// placementStore открывает in-memory транзакции размещения с честными
// блокировками строк остатков.
type placementStore struct {
	db          *DB
	lockTimeout time.Duration
}

// NewPlacementStore создаёт in-memory реализацию PlacementStore.
// lockTimeout <= 0 заменяется значением по умолчанию.
func NewPlacementStore(db *DB, lockTimeout time.Duration) domain.PlacementStore {
	if lockTimeout <= 0 {
		lockTimeout = defaultLockTimeout
	}
	return &placementStore{db: db, lockTimeout: lockTimeout}
}

func (s *placementStore) Begin(_ context.Context) (domain.PlacementTx, error) {
	return &placementTx{
		db:          s.db,
		lockTimeout: s.lockTimeout,
		owned:       make(map[invKey]*invRow),
		deductions:  make(map[invKey]int32),
	}, nil
}

// placementTx — одна транзакция размещения. Списания и вставки
// накапливаются локально и применяются к хранилищу только на Commit;
// Rollback освобождает блокировки, не меняя данных.
// Экземпляр не предназначен для использования из нескольких горутин,
// как и *sql.Tx.
type placementTx struct {
	db          *DB
	lockTimeout time.Duration

	owned       map[invKey]*invRow
	deductions  map[invKey]int32
	stagedOrder *domain.Order
	stagedItems []domain.OrderItem
	finished    bool
}

func (tx *placementTx) LockInventory(ctx context.Context, storeID, productID int64) (domain.Inventory, error) {
	if tx.finished {
		return domain.Inventory{}, domain.ErrTxFinished
	}

	key := invKey{storeID: storeID, productID: productID}
	row, ok := tx.db.findRow(storeID, productID)
	if !ok {
		return domain.Inventory{}, domain.ErrInventoryNotFound
	}

	if _, held := tx.owned[key]; !held {
		timer := time.NewTimer(tx.lockTimeout)
		defer timer.Stop()

		select {
		case row.lock <- struct{}{}:
			tx.owned[key] = row
		case <-timer.C:
			return domain.Inventory{}, domain.ErrLockWaitTimeout
		case <-ctx.Done():
			return domain.Inventory{}, ctx.Err()
		}
	}

	// Свежее чтение после захвата: видим количество с учётом всех
	// зафиксированных конкурентных транзакций и собственных списаний.
	tx.db.mu.RLock()
	qty := row.qty
	tx.db.mu.RUnlock()

	return domain.Inventory{
		ID:        row.id,
		StoreID:   storeID,
		ProductID: productID,
		Quantity:  qty - tx.deductions[key],
	}, nil
}

func (tx *placementTx) DeductInventory(_ context.Context, storeID, productID int64, qty int32) error {
	if tx.finished {
		return domain.ErrTxFinished
	}

	key := invKey{storeID: storeID, productID: productID}
	row, held := tx.owned[key]
	if !held {
		return domain.ErrLockNotHeld
	}

	tx.db.mu.RLock()
	available := row.qty - tx.deductions[key]
	tx.db.mu.RUnlock()

	if qty > available {
		return domain.ErrDeductExceedsStock
	}
	tx.deductions[key] += qty
	return nil
}

func (tx *placementTx) InsertOrder(_ context.Context, order domain.Order) (domain.Order, error) {
	if tx.finished {
		return domain.Order{}, domain.ErrTxFinished
	}

	tx.db.mu.Lock()
	tx.db.nextOrderID++
	order.ID = tx.db.nextOrderID
	tx.db.mu.Unlock()

	tx.stagedOrder = &order
	return order, nil
}

func (tx *placementTx) InsertOrderItems(_ context.Context, orderID int64, items []domain.OrderItem) error {
	if tx.finished {
		return domain.ErrTxFinished
	}

	tx.db.mu.Lock()
	for _, item := range items {
		tx.db.nextItemID++
		item.ID = tx.db.nextItemID
		item.OrderID = orderID
		tx.stagedItems = append(tx.stagedItems, item)
	}
	tx.db.mu.Unlock()
	return nil
}

func (tx *placementTx) Commit() error {
	if tx.finished {
		return domain.ErrTxFinished
	}

	tx.db.mu.Lock()
	for key, amount := range tx.deductions {
		row := tx.owned[key]
		if row.qty < amount {
			// Недостижимо при соблюдении протокола: списание проверяется
			// под блокировкой строки.
			tx.db.mu.Unlock()
			tx.release()
			tx.finished = true
			return fmt.Errorf("commit would drive quantity negative for store=%d product=%d", key.storeID, key.productID)
		}
		row.qty -= amount
	}
	if tx.stagedOrder != nil {
		tx.db.orders[tx.stagedOrder.ID] = *tx.stagedOrder
	}
	for _, item := range tx.stagedItems {
		tx.db.orderItems[item.OrderID] = append(tx.db.orderItems[item.OrderID], item)
	}
	tx.db.mu.Unlock()

	tx.release()
	tx.finished = true
	return nil
}

func (tx *placementTx) Rollback() error {
	if tx.finished {
		return nil
	}
	tx.release()
	tx.finished = true
	return nil
}

func (tx *placementTx) release() {
	for _, row := range tx.owned {
		<-row.lock
	}
	tx.owned = make(map[invKey]*invRow)
}

var _ domain.PlacementStore = (*placementStore)(nil)
var _ domain.PlacementTx = (*placementTx)(nil)
