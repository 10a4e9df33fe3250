package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// SQLSTATE 55P03: lock_not_available, истёк lock_timeout при FOR UPDATE.
const sqlstateLockNotAvailable = "55P03"

type placementStore struct {
	db          *sql.DB
	lockTimeout time.Duration
}

// NewPlacementStore создаёт PostgreSQL-реализацию PlacementStore.
// Ожидание строчных блокировок ограничивается lockTimeout через
// SET LOCAL lock_timeout внутри каждой транзакции.
func NewPlacementStore(store *Store, lockTimeout time.Duration) domain.PlacementStore {
	if lockTimeout <= 0 {
		lockTimeout = 5 * time.Second
	}
	return &placementStore{db: store.DB(), lockTimeout: lockTimeout}
}

var _ domain.PlacementStore = (*placementStore)(nil)

func (s *placementStore) Begin(ctx context.Context) (domain.PlacementTx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin placement tx: %w", err)
	}

	// lock_timeout задаётся в миллисекундах и действует до конца транзакции.
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("SET LOCAL lock_timeout = %d", s.lockTimeout.Milliseconds())); err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("set lock timeout: %w", err)
	}

	return &placementTx{tx: tx}, nil
}

type placementTx struct {
	tx       *sql.Tx
	finished bool
}

func (t *placementTx) LockInventory(ctx context.Context, storeID, productID int64) (domain.Inventory, error) {
	if t.finished {
		return domain.Inventory{}, domain.ErrTxFinished
	}

	var inv domain.Inventory
	err := t.tx.QueryRowContext(ctx, `
		SELECT id, store_id, product_id, quantity
		FROM inventory
		WHERE store_id = $1 AND product_id = $2
		FOR UPDATE
	`, storeID, productID).Scan(&inv.ID, &inv.StoreID, &inv.ProductID, &inv.Quantity)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Inventory{}, domain.ErrInventoryNotFound
		}
		if isLockNotAvailable(err) {
			return domain.Inventory{}, domain.ErrLockWaitTimeout
		}
		return domain.Inventory{}, fmt.Errorf("lock inventory row: %w", err)
	}

	return inv, nil
}

func (t *placementTx) DeductInventory(ctx context.Context, storeID, productID int64, qty int32) error {
	if t.finished {
		return domain.ErrTxFinished
	}

	// Условие quantity >= $3 страхует инвариант неотрицательности даже
	// при ошибке вызывающего: строка уже под FOR UPDATE этой транзакции.
	res, err := t.tx.ExecContext(ctx, `
		UPDATE inventory
		SET quantity = quantity - $3
		WHERE store_id = $1 AND product_id = $2 AND quantity >= $3
	`, storeID, productID, qty)
	if err != nil {
		return fmt.Errorf("deduct inventory: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deduct inventory rows affected: %w", err)
	}
	if affected == 0 {
		return domain.ErrDeductExceedsStock
	}
	return nil
}

func (t *placementTx) InsertOrder(ctx context.Context, order domain.Order) (domain.Order, error) {
	if t.finished {
		return domain.Order{}, domain.ErrTxFinished
	}

	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO orders (store_id, status, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`, order.StoreID, string(order.Status)).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

func (t *placementTx) InsertOrderItems(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	if t.finished {
		return domain.ErrTxFinished
	}

	for _, item := range items {
		if _, err := t.tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity_requested)
			VALUES ($1, $2, $3)
		`, orderID, item.ProductID, item.QuantityRequested); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}
	return nil
}

func (t *placementTx) Commit() error {
	if t.finished {
		return domain.ErrTxFinished
	}
	t.finished = true
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit placement tx: %w", err)
	}
	return nil
}

func (t *placementTx) Rollback() error {
	if t.finished {
		return nil
	}
	t.finished = true
	if err := t.tx.Rollback(); err != nil {
		return fmt.Errorf("rollback placement tx: %w", err)
	}
	return nil
}

func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == sqlstateLockNotAvailable
}
