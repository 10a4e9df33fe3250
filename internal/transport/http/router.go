package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// OrderPlacer — операции размещения и истории заказов.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, storeID int64, items []domain.ItemRequest) (domain.Order, error)
	ListStoreOrders(ctx context.Context, storeID int64) ([]domain.OrderSummary, error)
}

// CatalogReader — читающие операции витрины.
type CatalogReader interface {
	Search(ctx context.Context, query domain.ProductQuery) ([]domain.ProductHit, error)
	Suggest(ctx context.Context, prefix string) ([]string, error)
	StoreInventory(ctx context.Context, storeID int64) ([]domain.InventoryView, error)
}

// Handler собирает HTTP-обработчики витрины.
type Handler struct {
	orders  OrderPlacer
	catalog CatalogReader
	logger  *log.Entry
}

// NewHandler создаёт HTTP-обработчик.
func NewHandler(orders OrderPlacer, catalog CatalogReader, logger *log.Entry) *Handler {
	if logger == nil {
		logger = log.New().WithField("component", "http")
	}
	return &Handler{orders: orders, catalog: catalog, logger: logger}
}

// NewRouter настраивает маршруты API.
func NewRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	api := router.Group("/api")
	{
		api.POST("/orders/", h.placeOrder)
		api.GET("/stores/:store_id/orders/", h.listStoreOrders)
		api.GET("/stores/:store_id/inventory/", h.storeInventory)
		api.GET("/search/products/", h.searchProducts)
		api.GET("/search/suggest/", h.suggestTitles)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}
