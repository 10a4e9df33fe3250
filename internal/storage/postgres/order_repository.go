package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const opTimeout = 5 * time.Second

type orderRepository struct {
	db *sql.DB
}

// NewOrderRepository создаёт PostgreSQL-реализацию OrderRepository.
func NewOrderRepository(store *Store) domain.OrderRepository {
	return &orderRepository{db: store.DB()}
}

var _ domain.OrderRepository = (*orderRepository)(nil)

// Create фиксирует заказ без позиций в собственной транзакции,
// независимой от транзакций размещения.
func (r *orderRepository) Create(ctx context.Context, storeID int64, status domain.OrderStatus) (domain.Order, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	order := domain.Order{StoreID: storeID, Status: status}
	err := r.db.QueryRowContext(opCtx, `
		INSERT INTO orders (store_id, status, created_at)
		VALUES ($1, $2, NOW())
		RETURNING id, created_at
	`, storeID, string(status)).Scan(&order.ID, &order.CreatedAt)
	if err != nil {
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	return order, nil
}

func (r *orderRepository) Get(ctx context.Context, id int64) (domain.Order, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var (
		order  domain.Order
		status string
	)
	err := r.db.QueryRowContext(opCtx, `
		SELECT id, store_id, status, created_at
		FROM orders
		WHERE id = $1
	`, id).Scan(&order.ID, &order.StoreID, &status, &order.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Order{}, domain.ErrOrderNotFound
		}
		return domain.Order{}, fmt.Errorf("select order: %w", err)
	}
	order.Status = domain.OrderStatus(status)

	return order, nil
}

func (r *orderRepository) ListItems(ctx context.Context, orderID int64) ([]domain.OrderItem, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(opCtx, `
		SELECT id, order_id, product_id, quantity_requested
		FROM order_items
		WHERE order_id = $1
		ORDER BY id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("select order items: %w", err)
	}
	defer rows.Close()

	items := make([]domain.OrderItem, 0)
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.QuantityRequested); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}

// ListByStore возвращает заказы магазина от новых к старым.
// TotalItems считается из сохранённых позиций: у отклонённых заказов
// позиций нет, поэтому для них значение всегда ноль.
func (r *orderRepository) ListByStore(ctx context.Context, storeID int64) ([]domain.OrderSummary, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(opCtx, `
		SELECT o.id, o.status, o.created_at, COUNT(i.id)
		FROM orders o
		LEFT JOIN order_items i ON i.order_id = o.id
		WHERE o.store_id = $1
		GROUP BY o.id, o.status, o.created_at
		ORDER BY o.created_at DESC, o.id DESC
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("select store orders: %w", err)
	}
	defer rows.Close()

	summaries := make([]domain.OrderSummary, 0)
	for rows.Next() {
		var (
			summary domain.OrderSummary
			status  string
		)
		if err := rows.Scan(&summary.ID, &status, &summary.CreatedAt, &summary.TotalItems); err != nil {
			return nil, fmt.Errorf("scan store order: %w", err)
		}
		summary.Status = domain.OrderStatus(status)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate store orders: %w", err)
	}
	return summaries, nil
}
