package placement

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Coordinator проводит одну попытку размещения заказа: проверяет магазин
// и позиции, захватывает блокировки строк остатков, принимает решение
// CONFIRMED/REJECTED и фиксирует результат.
type Coordinator struct {
	stores     domain.StoreRepository
	catalog    domain.ProductCatalog
	placements domain.PlacementStore
	orders     domain.OrderRepository
	notifier   domain.NotificationDispatcher
	logger     *log.Entry
	metrics    *metrics.PlacementMetrics
}

// NewCoordinator создаёт рабочий экземпляр координатора.
func NewCoordinator(
	stores domain.StoreRepository,
	catalog domain.ProductCatalog,
	placements domain.PlacementStore,
	orders domain.OrderRepository,
	notifier domain.NotificationDispatcher,
	logger *log.Entry,
) *Coordinator {
	if logger == nil {
		logger = log.New().WithField("component", "placement")
	}
	return &Coordinator{
		stores:     stores,
		catalog:    catalog,
		placements: placements,
		orders:     orders,
		notifier:   notifier,
		logger:     logger,
		metrics:    metrics.NewPlacementMetrics(),
	}
}

// NewCoordinatorWithoutMetrics создаёт координатор без метрик (для тестов).
func NewCoordinatorWithoutMetrics(
	stores domain.StoreRepository,
	catalog domain.ProductCatalog,
	placements domain.PlacementStore,
	orders domain.OrderRepository,
	notifier domain.NotificationDispatcher,
	logger *log.Entry,
) *Coordinator {
	c := NewCoordinator(stores, catalog, placements, orders, notifier, logger)
	c.metrics = nil
	return c
}

// PlaceOrder размещает заказ магазина storeID по списку позиций.
//
// Исходы:
//   - заказ со статусом CONFIRMED: все позиции списаны и сохранены атомарно;
//   - заказ со статусом REJECTED: ни одного списания, позиции не сохранены;
//   - ErrStoreNotFound: ошибка запроса, никаких побочных эффектов;
//   - временная ошибка (domain.IsTransient): попытка безопасна для повтора.
func (c *Coordinator) PlaceOrder(ctx context.Context, storeID int64, items []domain.ItemRequest) (domain.Order, error) {
	start := time.Now()
	if c.metrics != nil {
		c.metrics.RecordAttemptStarted()
		defer func() {
			c.metrics.RecordAttemptFinished()
			c.metrics.RecordPlacementDuration(time.Since(start))
		}()
	}

	// Магазин проверяется до открытия транзакции: неизвестный магазин —
	// ошибка запроса, а не отклонённый заказ.
	store, err := c.stores.Get(ctx, storeID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			if c.metrics != nil {
				c.metrics.RecordStoreNotFound()
			}
			return domain.Order{}, domain.ErrStoreNotFound
		}
		return domain.Order{}, fmt.Errorf("resolve store %d: %w", storeID, err)
	}

	if errs := domain.ValidateItemRequests(items); len(errs) > 0 {
		return domain.Order{}, errs[0]
	}

	order, err := c.runAttempt(ctx, store, items)
	if err != nil {
		if domain.IsTransient(err) && c.metrics != nil {
			c.metrics.RecordTransientFailure()
		}
		return domain.Order{}, err
	}

	switch order.Status {
	case domain.OrderStatusConfirmed:
		if c.metrics != nil {
			c.metrics.RecordConfirmed()
			c.metrics.RecordNotificationDispatched()
		}
		// Сигнал best-effort после коммита: сбой доставки не влияет
		// на уже зафиксированный заказ.
		if c.notifier != nil {
			c.notifier.DispatchConfirmation(order.ID)
		}
	case domain.OrderStatusRejected:
		if c.metrics != nil {
			c.metrics.RecordRejected()
		}
	}

	return order, nil
}

// runAttempt выполняет транзакционную часть попытки: блокировки, списания
// и решение. Возвращает финализированный заказ либо временную ошибку.
func (c *Coordinator) runAttempt(ctx context.Context, store domain.Store, items []domain.ItemRequest) (domain.Order, error) {
	// Заказ существует как значение в статусе PENDING только внутри
	// попытки и финализируется до возврата вызывающему.
	pending := domain.Order{
		StoreID:   store.ID,
		Status:    domain.OrderStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	tx, err := c.placements.Begin(ctx)
	if err != nil {
		return domain.Order{}, fmt.Errorf("begin placement tx: %w", err)
	}

	// Фиксированный порядок обхода по возрастанию product_id ограничивает
	// порядок захвата блокировок и исключает циклическое ожидание между
	// конкурентными многопозиционными заказами.
	ordered := make([]domain.ItemRequest, len(items))
	copy(ordered, items)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ProductID < ordered[j].ProductID })

	insufficient := false
	staged := make([]domain.OrderItem, 0, len(ordered))

	for _, item := range ordered {
		if _, err := c.catalog.Get(ctx, item.ProductID); err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				c.logInsufficient(store.ID, item.ProductID, "product does not exist")
				insufficient = true
				break
			}
			_ = tx.Rollback()
			return domain.Order{}, fmt.Errorf("resolve product %d: %w", item.ProductID, err)
		}

		lockStart := time.Now()
		inv, err := tx.LockInventory(ctx, store.ID, item.ProductID)
		if c.metrics != nil {
			c.metrics.RecordLockWait(time.Since(lockStart))
		}
		if err != nil {
			if errors.Is(err, domain.ErrInventoryNotFound) {
				c.logInsufficient(store.ID, item.ProductID, "no inventory row")
				insufficient = true
				break
			}
			_ = tx.Rollback()
			return domain.Order{}, fmt.Errorf("lock inventory store=%d product=%d: %w", store.ID, item.ProductID, err)
		}

		if inv.Quantity < item.QuantityRequested {
			c.logInsufficient(store.ID, item.ProductID, "quantity below requested")
			insufficient = true
			break
		}

		if err := tx.DeductInventory(ctx, store.ID, item.ProductID, item.QuantityRequested); err != nil {
			_ = tx.Rollback()
			return domain.Order{}, fmt.Errorf("deduct inventory store=%d product=%d: %w", store.ID, item.ProductID, err)
		}
		staged = append(staged, domain.OrderItem{
			ProductID:         item.ProductID,
			QuantityRequested: item.QuantityRequested,
		})
	}

	if insufficient {
		// Откат отбрасывает все списания, включая уже достаточные позиции:
		// попытка аннулируется целиком. Запись REJECTED идёт отдельной
		// независимой транзакцией вне области блокировок этой попытки.
		if err := tx.Rollback(); err != nil {
			return domain.Order{}, fmt.Errorf("rollback placement tx: %w", err)
		}
		rejected, err := c.orders.Create(ctx, store.ID, domain.OrderStatusRejected)
		if err != nil {
			return domain.Order{}, fmt.Errorf("persist rejected order: %w", err)
		}
		c.logger.WithFields(log.Fields{
			"order_id": rejected.ID,
			"store_id": store.ID,
		}).Info("order rejected: insufficient stock")
		return rejected, nil
	}

	pending.Status = domain.OrderStatusConfirmed
	order, err := tx.InsertOrder(ctx, pending)
	if err != nil {
		_ = tx.Rollback()
		return domain.Order{}, fmt.Errorf("insert order: %w", err)
	}
	if err := tx.InsertOrderItems(ctx, order.ID, staged); err != nil {
		_ = tx.Rollback()
		return domain.Order{}, fmt.Errorf("insert order items: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Order{}, fmt.Errorf("commit placement tx: %w", err)
	}

	c.logger.WithFields(log.Fields{
		"order_id": order.ID,
		"store_id": store.ID,
		"items":    len(staged),
	}).Info("order confirmed")
	return order, nil
}

// logInsufficient оставляет диагностику о первой неудавшейся позиции.
// Наружу причины не различаются: вызывающий видит единый исход REJECTED.
func (c *Coordinator) logInsufficient(storeID, productID int64, reason string) {
	c.logger.WithFields(log.Fields{
		"store_id":   storeID,
		"product_id": productID,
		"reason":     reason,
	}).Debug("placement item unavailable")
}
