package domain

import "context"

// StoreRepository описывает доступ к справочнику магазинов.
type StoreRepository interface {
	// Get возвращает магазин или ErrStoreNotFound.
	Get(ctx context.Context, id int64) (Store, error)
	// List возвращает все магазины.
	List(ctx context.Context) ([]Store, error)
}

// ProductCatalog — читающая граница каталожной подсистемы.
type ProductCatalog interface {
	// Get возвращает товар или ErrProductNotFound.
	Get(ctx context.Context, id int64) (Product, error)
	// Search выполняет поиск с фильтрами и сортировкой.
	Search(ctx context.Context, query ProductQuery) ([]ProductHit, error)
	// SuggestTitles возвращает до limit названий: сначала совпадения
	// по префиксу, затем по подстроке.
	SuggestTitles(ctx context.Context, prefix string, limit int) ([]string, error)
}

// CatalogSeeder — пишущая граница каталога. Используется только
// инструментами наполнения данными, ядро размещения каталог не мутирует.
type CatalogSeeder interface {
	CreateCategory(ctx context.Context, category Category) (Category, error)
	CreateProduct(ctx context.Context, product Product) (Product, error)
	CreateStore(ctx context.Context, store Store) (Store, error)
	PutInventory(ctx context.Context, inv Inventory) (Inventory, error)
}

// PlacementTx — одна транзакция размещения заказа. Все изменения видны
// снаружи только после Commit; Rollback отбрасывает их целиком вместе
// с захваченными блокировками строк.
type PlacementTx interface {
	// LockInventory захватывает эксклюзивную блокировку строки остатков
	// (блокируясь до освобождения конфликтующей транзакцией) и возвращает
	// её текущее количество. ErrInventoryNotFound — строки нет,
	// ErrLockWaitTimeout — ожидание превысило настроенный таймаут.
	LockInventory(ctx context.Context, storeID, productID int64) (Inventory, error)
	// DeductInventory уменьшает остаток уже заблокированной строки.
	// Требует предварительного LockInventory в этой же транзакции.
	DeductInventory(ctx context.Context, storeID, productID int64, qty int32) error
	// InsertOrder сохраняет заказ и возвращает его с присвоенным ID.
	InsertOrder(ctx context.Context, order Order) (Order, error)
	// InsertOrderItems сохраняет позиции заказа.
	InsertOrderItems(ctx context.Context, orderID int64, items []OrderItem) error
	Commit() error
	Rollback() error
}

// PlacementStore открывает транзакции размещения.
type PlacementStore interface {
	Begin(ctx context.Context) (PlacementTx, error)
}

// OrderRepository описывает хранилище заказов вне транзакции размещения.
type OrderRepository interface {
	// Create сохраняет заказ без позиций в собственной независимой
	// транзакции. Используется для фиксации отклонённых попыток,
	// чтобы запись не конкурировала с блокировками неудавшейся попытки.
	Create(ctx context.Context, storeID int64, status OrderStatus) (Order, error)
	// Get возвращает заказ или ErrOrderNotFound.
	Get(ctx context.Context, id int64) (Order, error)
	// ListItems возвращает сохранённые позиции заказа.
	ListItems(ctx context.Context, orderID int64) ([]OrderItem, error)
	// ListByStore возвращает заказы магазина от новых к старым
	// с вычисленным TotalItems.
	ListByStore(ctx context.Context, storeID int64) ([]OrderSummary, error)
}

// InventoryReader отдаёт остатки магазина для внешней выдачи.
type InventoryReader interface {
	// ListByStore возвращает строки остатков, упорядоченные по названию товара.
	ListByStore(ctx context.Context, storeID int64) ([]InventoryView, error)
	// GetQuantity возвращает остаток товара в магазине (0, если строки нет).
	GetQuantity(ctx context.Context, storeID, productID int64) (int32, error)
}

// NotificationDispatcher принимает сигнал о подтверждённом заказе.
// Доставка асинхронная и best-effort: сбой или задержка не влияют
// на уже зафиксированный заказ.
type NotificationDispatcher interface {
	DispatchConfirmation(orderID int64)
}

// InventoryViewCache кэширует внешнюю выдачу остатков магазина.
type InventoryViewCache interface {
	Get(ctx context.Context, storeID int64) ([]InventoryView, bool)
	Set(ctx context.Context, storeID int64, rows []InventoryView)
}
