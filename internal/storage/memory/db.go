package memory

import (
	"sync"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// invKey идентифицирует строку остатков: одна на пару (магазин, товар).
type invKey struct {
	storeID   int64
	productID int64
}

// invRow хранит остаток и эксклюзивную блокировку строки.
// Канал ёмкостью 1 работает как мьютекс с поддержкой таймаута захвата.
type invRow struct {
	id   int64
	qty  int32
	lock chan struct{}
}

// DB — общее in-memory хранилище для локальной разработки и тестов.
// Все репозитории пакета работают поверх одного экземпляра.
type DB struct {
	mu sync.RWMutex

	stores     map[int64]domain.Store
	categories map[int64]domain.Category
	products   map[int64]domain.Product
	inventory  map[invKey]*invRow
	orders     map[int64]domain.Order
	orderItems map[int64][]domain.OrderItem

	nextStoreID     int64
	nextCategoryID  int64
	nextProductID   int64
	nextInventoryID int64
	nextOrderID     int64
	nextItemID      int64
}

// NewDB создаёт пустое хранилище.
func NewDB() *DB {
	return &DB{
		stores:     make(map[int64]domain.Store),
		categories: make(map[int64]domain.Category),
		products:   make(map[int64]domain.Product),
		inventory:  make(map[invKey]*invRow),
		orders:     make(map[int64]domain.Order),
		orderItems: make(map[int64][]domain.OrderItem),
	}
}

func newInvRow(id int64, qty int32) *invRow {
	return &invRow{
		id:   id,
		qty:  qty,
		lock: make(chan struct{}, 1),
	}
}

// findRow возвращает строку остатков, не захватывая её блокировку.
func (db *DB) findRow(storeID, productID int64) (*invRow, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	row, ok := db.inventory[invKey{storeID: storeID, productID: productID}]
	return row, ok
}

func (db *DB) categoryName(id int64) string {
	if cat, ok := db.categories[id]; ok {
		return cat.Name
	}
	return ""
}
