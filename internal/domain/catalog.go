package domain

// Store — торговая точка со своим независимым остатком товаров.
type Store struct {
	ID       int64
	Name     string
	Location string
}

// Category — категория каталога.
type Category struct {
	ID   int64
	Name string
}

// Product — товар каталога. Цена хранится в минорных единицах валюты.
type Product struct {
	ID          int64
	Title       string
	Description string
	PriceMinor  int64
	CategoryID  int64
}

// Inventory — строка остатков: количество товара в конкретном магазине.
// Пара (StoreID, ProductID) уникальна.
type Inventory struct {
	ID        int64
	StoreID   int64
	ProductID int64
	Quantity  int32
}

// InventoryView — строка внешней выдачи остатков магазина.
type InventoryView struct {
	ID           int64
	ProductTitle string
	PriceMinor   int64
	CategoryName string
	Quantity     int32
}

// ProductSort — порядок выдачи результатов поиска.
type ProductSort string

const (
	// ProductSortNewest — от новых товаров к старым. Значение по умолчанию.
	ProductSortNewest ProductSort = "newest"
	// ProductSortPriceLow — по возрастанию цены.
	ProductSortPriceLow ProductSort = "price_low"
	// ProductSortPriceHigh — по убыванию цены.
	ProductSortPriceHigh ProductSort = "price_high"
)

// ParseProductSort приводит пользовательское значение к известному
// порядку сортировки; неизвестные значения трактуются как newest.
func ParseProductSort(raw string) ProductSort {
	switch ProductSort(raw) {
	case ProductSortPriceLow:
		return ProductSortPriceLow
	case ProductSortPriceHigh:
		return ProductSortPriceHigh
	default:
		return ProductSortNewest
	}
}

// ProductQuery — параметры поиска по каталогу. Нулевые значения
// означают отсутствие фильтра; границы цены <= 0 не применяются.
type ProductQuery struct {
	Text          string
	Category      string
	MinPriceMinor int64
	MaxPriceMinor int64
	StoreID       int64
	InStockOnly   bool
	Sort          ProductSort
}

// ProductHit — один результат поиска. InventoryQuantity заполняется
// только при поиске в рамках магазина.
type ProductHit struct {
	Product           Product
	CategoryName      string
	InventoryQuantity int32
}
