package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	catalogsvc "github.com/vladislavdragonenkov/storefront/internal/service/catalog"
	"github.com/vladislavdragonenkov/storefront/internal/service/placement"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type testEnv struct {
	router  http.Handler
	store   domain.Store
	laptop  domain.Product
	mouse   domain.Product
	orderID func() int64
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := memory.NewDB()
	seeder := memory.NewCatalogSeeder(db)
	ctx := context.Background()

	category, err := seeder.CreateCategory(ctx, domain.Category{Name: "Electronics"})
	require.NoError(t, err)

	laptop, err := seeder.CreateProduct(ctx, domain.Product{
		Title:      "Laptop Pro",
		PriceMinor: 120_000,
		CategoryID: category.ID,
	})
	require.NoError(t, err)
	mouse, err := seeder.CreateProduct(ctx, domain.Product{
		Title:      "Wireless Mouse",
		PriceMinor: 3_500,
		CategoryID: category.ID,
	})
	require.NoError(t, err)

	store, err := seeder.CreateStore(ctx, domain.Store{Name: "Tech Store", Location: "New York"})
	require.NoError(t, err)
	_, err = seeder.PutInventory(ctx, domain.Inventory{StoreID: store.ID, ProductID: laptop.ID, Quantity: 10})
	require.NoError(t, err)
	_, err = seeder.PutInventory(ctx, domain.Inventory{StoreID: store.ID, ProductID: mouse.ID, Quantity: 2})
	require.NoError(t, err)

	coordinator := placement.NewCoordinatorWithoutMetrics(
		memory.NewStoreRepository(db),
		memory.NewProductCatalog(db),
		memory.NewPlacementStore(db, time.Second),
		memory.NewOrderRepository(db),
		nil,
		nil,
	)
	reader := catalogsvc.NewService(
		memory.NewProductCatalog(db),
		memory.NewStoreRepository(db),
		memory.NewInventoryReader(db),
		nil,
		nil,
	)

	router := NewRouter(NewHandler(coordinator, reader, nil))
	return &testEnv{router: router, store: store, laptop: laptop, mouse: mouse}
}

func (e *testEnv) placeOrder(t *testing.T, storeID int64, items []map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(map[string]any{"store_id": storeID, "items": items})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	return payload
}

func TestPlaceOrderConfirmed(t *testing.T) {
	env := newTestEnv(t)

	rec := env.placeOrder(t, env.store.ID, []map[string]any{
		{"product_id": env.laptop.ID, "quantity": 3},
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	payload := decodeJSON(t, rec)
	assert.Equal(t, "CONFIRMED", payload["status"])
	assert.NotZero(t, payload["order_id"])
}

func TestPlaceOrderRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.placeOrder(t, env.store.ID, []map[string]any{
		{"product_id": env.mouse.ID, "quantity": 5},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	payload := decodeJSON(t, rec)
	assert.Equal(t, "REJECTED", payload["status"])
}

func TestPlaceOrderStoreNotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.placeOrder(t, 999, []map[string]any{
		{"product_id": env.laptop.ID, "quantity": 1},
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
	payload := decodeJSON(t, rec)
	assert.Equal(t, "Store not found", payload["error"])
}

func TestPlaceOrderInvalidBody(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/orders/", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlaceOrderInvalidItem(t *testing.T) {
	env := newTestEnv(t)

	rec := env.placeOrder(t, env.store.ID, []map[string]any{
		{"product_id": env.laptop.ID, "quantity": 0},
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListStoreOrders(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.placeOrder(t, env.store.ID, []map[string]any{
		{"product_id": env.laptop.ID, "quantity": 1},
		{"product_id": env.mouse.ID, "quantity": 1},
	}).Code)
	require.Equal(t, http.StatusOK, env.placeOrder(t, env.store.ID, []map[string]any{
		{"product_id": env.mouse.ID, "quantity": 50},
	}).Code)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/stores/%d/orders/", env.store.ID), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Orders []orderSummaryResponse `json:"orders"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Orders, 2)
	// От новых к старым: отклонённый заказ размещался последним.
	assert.Equal(t, "REJECTED", payload.Orders[0].Status)
	assert.Equal(t, 0, payload.Orders[0].TotalItems)
	assert.Equal(t, "CONFIRMED", payload.Orders[1].Status)
	assert.Equal(t, 2, payload.Orders[1].TotalItems)
}

func TestListStoreOrdersUnknownStore(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/stores/999/orders/", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStoreInventory(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/stores/%d/inventory/", env.store.ID), nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Inventory []inventoryRowResponse `json:"inventory"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Inventory, 2)
	assert.Equal(t, "Laptop Pro", payload.Inventory[0].ProductTitle)
	assert.EqualValues(t, 10, payload.Inventory[0].Quantity)
}

func TestSearchProducts(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search/products/?q=laptop&sort=price_low", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Results []productHitResponse `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Results, 1)
	assert.Equal(t, "Laptop Pro", payload.Results[0].Title)
}

func TestSearchProductsInStoreFilters(t *testing.T) {
	env := newTestEnv(t)

	url := fmt.Sprintf("/api/search/products/?store_id=%d&in_stock=true&max_price=10000", env.store.ID)
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Results []productHitResponse `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Results, 1)
	assert.Equal(t, "Wireless Mouse", payload.Results[0].Title)
	assert.EqualValues(t, 2, payload.Results[0].Quantity)
}

func TestSuggestTitles(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search/suggest/?q=lap", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var payload struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Equal(t, []string{"Laptop Pro"}, payload.Suggestions)
}

func TestSuggestTitlesTooShort(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/api/search/suggest/?q=la", nil)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
