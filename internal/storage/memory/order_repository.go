package memory

import (
	"context"
	"sort"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// orderRepositoryInMemory — in-memory реализация OrderRepository.
type orderRepositoryInMemory struct {
	db *DB
}

// NewOrderRepository возвращает in-memory репозиторий заказов.
func NewOrderRepository(db *DB) domain.OrderRepository {
	return &orderRepositoryInMemory{db: db}
}

// Create сохраняет заказ без позиций в собственной независимой "транзакции".
func (r *orderRepositoryInMemory) Create(_ context.Context, storeID int64, status domain.OrderStatus) (domain.Order, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.nextOrderID++
	order := domain.Order{
		ID:        r.db.nextOrderID,
		StoreID:   storeID,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	r.db.orders[order.ID] = order
	return order, nil
}

// Get возвращает заказ или ErrOrderNotFound.
func (r *orderRepositoryInMemory) Get(_ context.Context, id int64) (domain.Order, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	order, ok := r.db.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return order, nil
}

// ListItems возвращает сохранённые позиции заказа.
func (r *orderRepositoryInMemory) ListItems(_ context.Context, orderID int64) ([]domain.OrderItem, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	items := make([]domain.OrderItem, len(r.db.orderItems[orderID]))
	copy(items, r.db.orderItems[orderID])
	return items, nil
}

// ListByStore возвращает заказы магазина от новых к старым.
// TotalItems вычисляется из сохранённых позиций: для REJECTED всегда 0.
func (r *orderRepositoryInMemory) ListByStore(_ context.Context, storeID int64) ([]domain.OrderSummary, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	result := make([]domain.OrderSummary, 0)
	for _, order := range r.db.orders {
		if order.StoreID != storeID {
			continue
		}
		result = append(result, domain.OrderSummary{
			ID:         order.ID,
			Status:     order.Status,
			CreatedAt:  order.CreatedAt,
			TotalItems: len(r.db.orderItems[order.ID]),
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].ID > result[j].ID
	})

	return result, nil
}

var _ domain.OrderRepository = (*orderRepositoryInMemory)(nil)
