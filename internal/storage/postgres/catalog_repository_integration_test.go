package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

func TestStoreRepositoryIntegration(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	st, _ := seedMinimalCatalog(t, store)

	ctx := context.Background()
	repo := NewStoreRepository(store)

	got, err := repo.Get(ctx, st.ID)
	if err != nil {
		t.Fatalf("get store: %v", err)
	}
	if got.Name != "Tech Store" || got.Location != "New York" {
		t.Fatalf("unexpected store: %+v", got)
	}

	if _, err := repo.Get(ctx, 999_999); !errors.Is(err, domain.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}

	stores, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list stores: %v", err)
	}
	if len(stores) != 1 {
		t.Fatalf("expected 1 store, got %d", len(stores))
	}
}

func TestProductCatalogSearchIntegration(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	st, products := seedMinimalCatalog(t, store)

	ctx := context.Background()
	catalog := NewProductCatalog(store)

	hits, err := catalog.Search(ctx, domain.ProductQuery{Text: "laptop"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(hits) != 1 || hits[0].Product.ID != products[0].ID {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if hits[0].CategoryName != "Electronics" {
		t.Fatalf("unexpected category name: %s", hits[0].CategoryName)
	}

	hits, err = catalog.Search(ctx, domain.ProductQuery{
		StoreID:     st.ID,
		InStockOnly: true,
		Sort:        domain.ProductSortPriceLow,
	})
	if err != nil {
		t.Fatalf("search in store: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	if hits[0].Product.PriceMinor > hits[1].Product.PriceMinor {
		t.Fatal("hits are not sorted by ascending price")
	}
	if hits[0].InventoryQuantity == 0 {
		t.Fatal("inventory quantity must be populated for store-scoped search")
	}

	hits, err = catalog.Search(ctx, domain.ProductQuery{MinPriceMinor: 100_000})
	if err != nil {
		t.Fatalf("search by price: %v", err)
	}
	if len(hits) != 1 || hits[0].Product.ID != products[0].ID {
		t.Fatalf("unexpected price-filtered hits: %+v", hits)
	}
}

func TestProductCatalogSuggestTitlesIntegration(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	seedMinimalCatalog(t, store)

	titles, err := NewProductCatalog(store).SuggestTitles(context.Background(), "lap", 10)
	if err != nil {
		t.Fatalf("suggest: %v", err)
	}
	if len(titles) != 1 || titles[0] != "Laptop Pro" {
		t.Fatalf("unexpected titles: %v", titles)
	}
}

func TestInventoryReaderIntegration(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	st, _ := seedMinimalCatalog(t, store)

	ctx := context.Background()
	reader := NewInventoryReader(store)

	views, err := reader.ListByStore(ctx, st.ID)
	if err != nil {
		t.Fatalf("list by store: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 inventory rows, got %d", len(views))
	}
	// Упорядочено по названию товара.
	if views[0].ProductTitle != "Laptop Pro" || views[1].ProductTitle != "Wireless Mouse" {
		t.Fatalf("unexpected order: %+v", views)
	}

	qty, err := reader.GetQuantity(ctx, st.ID, 999_999)
	if err != nil {
		t.Fatalf("get quantity: %v", err)
	}
	if qty != 0 {
		t.Fatalf("missing row must read as zero, got %d", qty)
	}
}

func TestCatalogSeederUpsertIntegration(t *testing.T) {
	store := openStoreForIntegrationTest(t)
	st, products := seedMinimalCatalog(t, store)

	ctx := context.Background()
	seeder := NewCatalogSeeder(store)

	first, err := seeder.PutInventory(ctx, domain.Inventory{StoreID: st.ID, ProductID: products[0].ID, Quantity: 7})
	if err != nil {
		t.Fatalf("upsert inventory: %v", err)
	}

	qty, err := NewInventoryReader(store).GetQuantity(ctx, st.ID, products[0].ID)
	if err != nil {
		t.Fatalf("get quantity: %v", err)
	}
	if qty != 7 {
		t.Fatalf("expected upserted quantity 7, got %d", qty)
	}
	if first.ID == 0 {
		t.Fatal("inventory id was not returned")
	}
}
