package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type storeRepository struct {
	db *sql.DB
}

// NewStoreRepository создаёт PostgreSQL-реализацию StoreRepository.
func NewStoreRepository(store *Store) domain.StoreRepository {
	return &storeRepository{db: store.DB()}
}

func (r *storeRepository) Get(ctx context.Context, id int64) (domain.Store, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var st domain.Store
	err := r.db.QueryRowContext(opCtx, `
		SELECT id, name, location
		FROM stores
		WHERE id = $1
	`, id).Scan(&st.ID, &st.Name, &st.Location)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Store{}, domain.ErrStoreNotFound
		}
		return domain.Store{}, fmt.Errorf("select store: %w", err)
	}
	return st, nil
}

func (r *storeRepository) List(ctx context.Context) ([]domain.Store, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(opCtx, `
		SELECT id, name, location
		FROM stores
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("select stores: %w", err)
	}
	defer rows.Close()

	stores := make([]domain.Store, 0)
	for rows.Next() {
		var st domain.Store
		if err := rows.Scan(&st.ID, &st.Name, &st.Location); err != nil {
			return nil, fmt.Errorf("scan store: %w", err)
		}
		stores = append(stores, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate stores: %w", err)
	}
	return stores, nil
}

type productCatalog struct {
	db *sql.DB
}

// NewProductCatalog создаёт PostgreSQL-реализацию ProductCatalog.
func NewProductCatalog(store *Store) domain.ProductCatalog {
	return &productCatalog{db: store.DB()}
}

func (c *productCatalog) Get(ctx context.Context, id int64) (domain.Product, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var p domain.Product
	err := c.db.QueryRowContext(opCtx, `
		SELECT id, title, description, price_minor, category_id
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Title, &p.Description, &p.PriceMinor, &p.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrProductNotFound
		}
		return domain.Product{}, fmt.Errorf("select product: %w", err)
	}
	return p, nil
}

// Search собирает WHERE из ненулевых фильтров запроса. При заданном
// StoreID выдача сужается до товаров, у которых есть строка остатков
// в этом магазине, и подтягивается её количество.
func (c *productCatalog) Search(ctx context.Context, query domain.ProductQuery) ([]domain.ProductHit, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var sb strings.Builder
	sb.WriteString(`
		SELECT p.id, p.title, p.description, p.price_minor, p.category_id, c.name`)
	args := make([]any, 0, 6)

	if query.StoreID > 0 {
		sb.WriteString(`, i.quantity
		FROM products p
		JOIN categories c ON c.id = p.category_id
		JOIN inventory i ON i.product_id = p.id AND i.store_id = $1`)
		args = append(args, query.StoreID)
	} else {
		sb.WriteString(`, 0
		FROM products p
		JOIN categories c ON c.id = p.category_id`)
	}

	conds := make([]string, 0, 5)
	addArg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if text := strings.TrimSpace(query.Text); text != "" {
		ph := addArg("%" + strings.ToLower(text) + "%")
		conds = append(conds, fmt.Sprintf(
			"(LOWER(p.title) LIKE %[1]s OR LOWER(p.description) LIKE %[1]s OR LOWER(c.name) LIKE %[1]s)", ph))
	}
	if category := strings.TrimSpace(query.Category); category != "" {
		conds = append(conds, "LOWER(c.name) = "+addArg(strings.ToLower(category)))
	}
	if query.MinPriceMinor > 0 {
		conds = append(conds, "p.price_minor >= "+addArg(query.MinPriceMinor))
	}
	if query.MaxPriceMinor > 0 {
		conds = append(conds, "p.price_minor <= "+addArg(query.MaxPriceMinor))
	}
	if query.StoreID > 0 && query.InStockOnly {
		conds = append(conds, "i.quantity > 0")
	}
	if len(conds) > 0 {
		sb.WriteString("\n\t\tWHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	switch query.Sort {
	case domain.ProductSortPriceLow:
		sb.WriteString("\n\t\tORDER BY p.price_minor ASC, p.id ASC")
	case domain.ProductSortPriceHigh:
		sb.WriteString("\n\t\tORDER BY p.price_minor DESC, p.id ASC")
	default:
		sb.WriteString("\n\t\tORDER BY p.id DESC")
	}

	rows, err := c.db.QueryContext(opCtx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}
	defer rows.Close()

	hits := make([]domain.ProductHit, 0)
	for rows.Next() {
		var hit domain.ProductHit
		if err := rows.Scan(
			&hit.Product.ID, &hit.Product.Title, &hit.Product.Description,
			&hit.Product.PriceMinor, &hit.Product.CategoryID,
			&hit.CategoryName, &hit.InventoryQuantity,
		); err != nil {
			return nil, fmt.Errorf("scan product hit: %w", err)
		}
		hits = append(hits, hit)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product hits: %w", err)
	}
	return hits, nil
}

// SuggestTitles возвращает до limit названий, совпадения по префиксу
// раньше совпадений по подстроке.
func (c *productCatalog) SuggestTitles(ctx context.Context, prefix string, limit int) ([]string, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	lowered := strings.ToLower(strings.TrimSpace(prefix))
	rows, err := c.db.QueryContext(opCtx, `
		SELECT title
		FROM products
		WHERE LOWER(title) LIKE '%' || $1 || '%'
		ORDER BY (CASE WHEN LOWER(title) LIKE $1 || '%' THEN 0 ELSE 1 END), title
		LIMIT $2
	`, lowered, limit)
	if err != nil {
		return nil, fmt.Errorf("suggest titles: %w", err)
	}
	defer rows.Close()

	titles := make([]string, 0, limit)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan suggested title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate suggested titles: %w", err)
	}
	return titles, nil
}

type inventoryReader struct {
	db *sql.DB
}

// NewInventoryReader создаёт PostgreSQL-реализацию InventoryReader.
func NewInventoryReader(store *Store) domain.InventoryReader {
	return &inventoryReader{db: store.DB()}
}

func (r *inventoryReader) ListByStore(ctx context.Context, storeID int64) ([]domain.InventoryView, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(opCtx, `
		SELECT i.id, p.title, p.price_minor, c.name, i.quantity
		FROM inventory i
		JOIN products p ON p.id = i.product_id
		JOIN categories c ON c.id = p.category_id
		WHERE i.store_id = $1
		ORDER BY p.title, i.id
	`, storeID)
	if err != nil {
		return nil, fmt.Errorf("select store inventory: %w", err)
	}
	defer rows.Close()

	views := make([]domain.InventoryView, 0)
	for rows.Next() {
		var view domain.InventoryView
		if err := rows.Scan(&view.ID, &view.ProductTitle, &view.PriceMinor, &view.CategoryName, &view.Quantity); err != nil {
			return nil, fmt.Errorf("scan inventory view: %w", err)
		}
		views = append(views, view)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inventory views: %w", err)
	}
	return views, nil
}

func (r *inventoryReader) GetQuantity(ctx context.Context, storeID, productID int64) (int32, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var qty int32
	err := r.db.QueryRowContext(opCtx, `
		SELECT quantity
		FROM inventory
		WHERE store_id = $1 AND product_id = $2
	`, storeID, productID).Scan(&qty)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("select inventory quantity: %w", err)
	}
	return qty, nil
}

type catalogSeeder struct {
	db *sql.DB
}

// NewCatalogSeeder создаёт PostgreSQL-реализацию CatalogSeeder.
func NewCatalogSeeder(store *Store) domain.CatalogSeeder {
	return &catalogSeeder{db: store.DB()}
}

func (s *catalogSeeder) CreateCategory(ctx context.Context, category domain.Category) (domain.Category, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := s.db.QueryRowContext(opCtx, `
		INSERT INTO categories (name)
		VALUES ($1)
		ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		RETURNING id
	`, category.Name).Scan(&category.ID)
	if err != nil {
		return domain.Category{}, fmt.Errorf("insert category: %w", err)
	}
	return category, nil
}

func (s *catalogSeeder) CreateProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := s.db.QueryRowContext(opCtx, `
		INSERT INTO products (title, description, price_minor, category_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, product.Title, product.Description, product.PriceMinor, product.CategoryID).Scan(&product.ID)
	if err != nil {
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

func (s *catalogSeeder) CreateStore(ctx context.Context, st domain.Store) (domain.Store, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := s.db.QueryRowContext(opCtx, `
		INSERT INTO stores (name, location)
		VALUES ($1, $2)
		RETURNING id
	`, st.Name, st.Location).Scan(&st.ID)
	if err != nil {
		return domain.Store{}, fmt.Errorf("insert store: %w", err)
	}
	return st, nil
}

// PutInventory сохраняет строку остатков, обновляя количество при
// повторной записи той же пары (store_id, product_id).
func (s *catalogSeeder) PutInventory(ctx context.Context, inv domain.Inventory) (domain.Inventory, error) {
	opCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	err := s.db.QueryRowContext(opCtx, `
		INSERT INTO inventory (store_id, product_id, quantity)
		VALUES ($1, $2, $3)
		ON CONFLICT (store_id, product_id) DO UPDATE SET quantity = EXCLUDED.quantity
		RETURNING id
	`, inv.StoreID, inv.ProductID, inv.Quantity).Scan(&inv.ID)
	if err != nil {
		return domain.Inventory{}, fmt.Errorf("upsert inventory: %w", err)
	}
	return inv, nil
}

var (
	_ domain.StoreRepository = (*storeRepository)(nil)
	_ domain.ProductCatalog  = (*productCatalog)(nil)
	_ domain.InventoryReader = (*inventoryReader)(nil)
	_ domain.CatalogSeeder   = (*catalogSeeder)(nil)
)
