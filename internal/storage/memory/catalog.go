package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// storeRepositoryInMemory — in-memory реализация StoreRepository.
type storeRepositoryInMemory struct {
	db *DB
}

// NewStoreRepository возвращает in-memory справочник магазинов.
func NewStoreRepository(db *DB) domain.StoreRepository {
	return &storeRepositoryInMemory{db: db}
}

func (r *storeRepositoryInMemory) Get(_ context.Context, id int64) (domain.Store, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	store, ok := r.db.stores[id]
	if !ok {
		return domain.Store{}, domain.ErrStoreNotFound
	}
	return store, nil
}

func (r *storeRepositoryInMemory) List(_ context.Context) ([]domain.Store, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	result := make([]domain.Store, 0, len(r.db.stores))
	for _, store := range r.db.stores {
		result = append(result, store)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// catalogInMemory — in-memory реализация ProductCatalog.
type catalogInMemory struct {
	db *DB
}

// NewProductCatalog возвращает in-memory каталог товаров.
func NewProductCatalog(db *DB) domain.ProductCatalog {
	return &catalogInMemory{db: db}
}

func (c *catalogInMemory) Get(_ context.Context, id int64) (domain.Product, error) {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()

	product, ok := c.db.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// Search фильтрует каталог по запросу. Семантика повторяет SQL-реализацию:
// подстрочный поиск без учёта регистра, точное имя категории, границы цены,
// опциональная привязка к остаткам магазина.
func (c *catalogInMemory) Search(_ context.Context, query domain.ProductQuery) ([]domain.ProductHit, error) {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()

	text := strings.ToLower(query.Text)
	category := strings.ToLower(query.Category)

	hits := make([]domain.ProductHit, 0)
	for _, product := range c.db.products {
		catName := c.db.categoryName(product.CategoryID)

		if text != "" &&
			!strings.Contains(strings.ToLower(product.Title), text) &&
			!strings.Contains(strings.ToLower(product.Description), text) &&
			!strings.Contains(strings.ToLower(catName), text) {
			continue
		}
		if category != "" && strings.ToLower(catName) != category {
			continue
		}
		if query.MinPriceMinor > 0 && product.PriceMinor < query.MinPriceMinor {
			continue
		}
		if query.MaxPriceMinor > 0 && product.PriceMinor > query.MaxPriceMinor {
			continue
		}

		var invQty int32
		if query.StoreID > 0 {
			row, ok := c.db.inventory[invKey{storeID: query.StoreID, productID: product.ID}]
			if !ok {
				continue
			}
			if query.InStockOnly && row.qty <= 0 {
				continue
			}
			invQty = row.qty
		}

		hits = append(hits, domain.ProductHit{
			Product:           product,
			CategoryName:      catName,
			InventoryQuantity: invQty,
		})
	}

	sortHits(hits, query.Sort)
	return hits, nil
}

func sortHits(hits []domain.ProductHit, order domain.ProductSort) {
	switch order {
	case domain.ProductSortPriceLow:
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].Product.PriceMinor != hits[j].Product.PriceMinor {
				return hits[i].Product.PriceMinor < hits[j].Product.PriceMinor
			}
			return hits[i].Product.ID < hits[j].Product.ID
		})
	case domain.ProductSortPriceHigh:
		sort.Slice(hits, func(i, j int) bool {
			if hits[i].Product.PriceMinor != hits[j].Product.PriceMinor {
				return hits[i].Product.PriceMinor > hits[j].Product.PriceMinor
			}
			return hits[i].Product.ID < hits[j].Product.ID
		})
	default:
		// newest: от новых к старым по идентификатору.
		sort.Slice(hits, func(i, j int) bool {
			return hits[i].Product.ID > hits[j].Product.ID
		})
	}
}

// SuggestTitles возвращает до limit названий: сначала совпадения
// по префиксу, затем по подстроке.
func (c *catalogInMemory) SuggestTitles(_ context.Context, prefix string, limit int) ([]string, error) {
	c.db.mu.RLock()
	defer c.db.mu.RUnlock()

	lowered := strings.ToLower(prefix)
	var prefixMatches, otherMatches []string
	for _, product := range c.db.products {
		title := strings.ToLower(product.Title)
		switch {
		case strings.HasPrefix(title, lowered):
			prefixMatches = append(prefixMatches, product.Title)
		case strings.Contains(title, lowered):
			otherMatches = append(otherMatches, product.Title)
		}
	}
	sort.Strings(prefixMatches)
	sort.Strings(otherMatches)

	titles := append(prefixMatches, otherMatches...)
	if len(titles) > limit {
		titles = titles[:limit]
	}
	return titles, nil
}

// inventoryReaderInMemory — in-memory реализация InventoryReader.
type inventoryReaderInMemory struct {
	db *DB
}

// NewInventoryReader возвращает in-memory читатель остатков.
func NewInventoryReader(db *DB) domain.InventoryReader {
	return &inventoryReaderInMemory{db: db}
}

func (r *inventoryReaderInMemory) ListByStore(_ context.Context, storeID int64) ([]domain.InventoryView, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	views := make([]domain.InventoryView, 0)
	for key, row := range r.db.inventory {
		if key.storeID != storeID {
			continue
		}
		product, ok := r.db.products[key.productID]
		if !ok {
			continue
		}
		views = append(views, domain.InventoryView{
			ID:           row.id,
			ProductTitle: product.Title,
			PriceMinor:   product.PriceMinor,
			CategoryName: r.db.categoryName(product.CategoryID),
			Quantity:     row.qty,
		})
	}

	sort.Slice(views, func(i, j int) bool {
		if views[i].ProductTitle != views[j].ProductTitle {
			return views[i].ProductTitle < views[j].ProductTitle
		}
		return views[i].ID < views[j].ID
	})
	return views, nil
}

func (r *inventoryReaderInMemory) GetQuantity(_ context.Context, storeID, productID int64) (int32, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	row, ok := r.db.inventory[invKey{storeID: storeID, productID: productID}]
	if !ok {
		return 0, nil
	}
	return row.qty, nil
}

// seederInMemory — пишущая граница каталога для наполнения данными.
type seederInMemory struct {
	db *DB
}

// NewCatalogSeeder возвращает in-memory реализацию CatalogSeeder.
func NewCatalogSeeder(db *DB) domain.CatalogSeeder {
	return &seederInMemory{db: db}
}

func (s *seederInMemory) CreateCategory(_ context.Context, category domain.Category) (domain.Category, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.nextCategoryID++
	category.ID = s.db.nextCategoryID
	s.db.categories[category.ID] = category
	return category, nil
}

func (s *seederInMemory) CreateProduct(_ context.Context, product domain.Product) (domain.Product, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.nextProductID++
	product.ID = s.db.nextProductID
	s.db.products[product.ID] = product
	return product, nil
}

func (s *seederInMemory) CreateStore(_ context.Context, store domain.Store) (domain.Store, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	s.db.nextStoreID++
	store.ID = s.db.nextStoreID
	s.db.stores[store.ID] = store
	return store, nil
}

// PutInventory создаёт строку остатков либо обновляет количество
// существующей: инвариант уникальности (магазин, товар) сохраняется.
func (s *seederInMemory) PutInventory(_ context.Context, inv domain.Inventory) (domain.Inventory, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()

	key := invKey{storeID: inv.StoreID, productID: inv.ProductID}
	if row, ok := s.db.inventory[key]; ok {
		row.qty = inv.Quantity
		inv.ID = row.id
		return inv, nil
	}

	s.db.nextInventoryID++
	inv.ID = s.db.nextInventoryID
	s.db.inventory[key] = newInvRow(inv.ID, inv.Quantity)
	return inv, nil
}

var (
	_ domain.StoreRepository = (*storeRepositoryInMemory)(nil)
	_ domain.ProductCatalog  = (*catalogInMemory)(nil)
	_ domain.InventoryReader = (*inventoryReaderInMemory)(nil)
	_ domain.CatalogSeeder   = (*seederInMemory)(nil)
)
