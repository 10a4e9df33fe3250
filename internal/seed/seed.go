package seed

import (
	"context"
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Фиксированный набор категорий витрины.
var categoryNames = []string{
	"Electronics",
	"Grocery",
	"Clothing",
	"Home & Garden",
	"Sports",
	"Toys",
	"Books",
	"Beauty",
	"Automotive",
	"Pet Supplies",
	"Office",
	"Health",
}

// Params задаёт объём генерируемых данных.
type Params struct {
	Products        int
	Stores          int
	MinRowsPerStore int
	MaxRowsPerStore int
	MaxQuantity     int32
	// Seed генератора: при одинаковом значении выборка воспроизводима.
	Seed uint64
}

// DefaultParams — объём демо-набора: каталог на ~1050 товаров
// и 25 магазинов с частично пересекающимся ассортиментом.
func DefaultParams() Params {
	return Params{
		Products:        1050,
		Stores:          25,
		MinRowsPerStore: 300,
		MaxRowsPerStore: 500,
		MaxQuantity:     100,
		Seed:            0,
	}
}

// Summary — фактический объём записанных данных.
type Summary struct {
	Categories    int
	Products      int
	Stores        int
	InventoryRows int
}

// Run наполняет хранилище сгенерированным каталогом.
func Run(ctx context.Context, seeder domain.CatalogSeeder, params Params, logger *log.Entry) (Summary, error) {
	if logger == nil {
		logger = log.New().WithField("component", "seed")
	}
	if params.Products <= 0 || params.Stores <= 0 {
		return Summary{}, fmt.Errorf("invalid seed params: products=%d stores=%d", params.Products, params.Stores)
	}
	if params.MinRowsPerStore <= 0 || params.MaxRowsPerStore < params.MinRowsPerStore {
		return Summary{}, fmt.Errorf("invalid rows per store range: %d..%d", params.MinRowsPerStore, params.MaxRowsPerStore)
	}

	faker := gofakeit.New(params.Seed)
	var summary Summary

	categories := make([]domain.Category, 0, len(categoryNames))
	for _, name := range categoryNames {
		category, err := seeder.CreateCategory(ctx, domain.Category{Name: name})
		if err != nil {
			return summary, fmt.Errorf("create category %q: %w", name, err)
		}
		categories = append(categories, category)
		summary.Categories++
	}

	products := make([]domain.Product, 0, params.Products)
	for i := 0; i < params.Products; i++ {
		category := categories[faker.IntRange(0, len(categories)-1)]
		product, err := seeder.CreateProduct(ctx, domain.Product{
			Title:       faker.ProductName(),
			Description: faker.Sentence(12),
			PriceMinor:  int64(faker.IntRange(99, 500_000)),
			CategoryID:  category.ID,
		})
		if err != nil {
			return summary, fmt.Errorf("create product: %w", err)
		}
		products = append(products, product)
		summary.Products++
	}

	rowsPerStore := params.MaxRowsPerStore
	if rowsPerStore > len(products) {
		rowsPerStore = len(products)
	}

	for i := 0; i < params.Stores; i++ {
		store, err := seeder.CreateStore(ctx, domain.Store{
			Name:     faker.Company(),
			Location: faker.City(),
		})
		if err != nil {
			return summary, fmt.Errorf("create store: %w", err)
		}
		summary.Stores++

		// Ассортимент магазина: случайная выборка товаров без повторов.
		count := faker.IntRange(params.MinRowsPerStore, rowsPerStore)
		if count > len(products) {
			count = len(products)
		}
		picked := productIndexes(len(products))
		faker.ShuffleInts(picked)
		for _, idx := range picked[:count] {
			if _, err := seeder.PutInventory(ctx, domain.Inventory{
				StoreID:   store.ID,
				ProductID: products[idx].ID,
				Quantity:  int32(faker.IntRange(0, int(params.MaxQuantity))),
			}); err != nil {
				return summary, fmt.Errorf("put inventory: %w", err)
			}
			summary.InventoryRows++
		}
	}

	logger.WithFields(log.Fields{
		"categories": summary.Categories,
		"products":   summary.Products,
		"stores":     summary.Stores,
		"inventory":  summary.InventoryRows,
	}).Info("seed completed")
	return summary, nil
}

func productIndexes(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
