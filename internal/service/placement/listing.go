package placement

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ListStoreOrders возвращает историю заказов магазина от новых к старым.
// Неизвестный магазин — ErrStoreNotFound.
func (c *Coordinator) ListStoreOrders(ctx context.Context, storeID int64) ([]domain.OrderSummary, error) {
	if _, err := c.stores.Get(ctx, storeID); err != nil {
		return nil, err
	}

	summaries, err := c.orders.ListByStore(ctx, storeID)
	if err != nil {
		return nil, fmt.Errorf("list store orders: %w", err)
	}
	return summaries, nil
}
