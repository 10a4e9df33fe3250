package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// storeInventory обрабатывает GET /api/stores/:store_id/inventory/.
func (h *Handler) storeInventory(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	rows, err := h.catalog.StoreInventory(c.Request.Context(), storeID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
			return
		}
		h.logger.WithError(err).Error("store inventory failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"inventory": toInventoryRowResponses(rows)})
}

// searchProducts обрабатывает GET /api/search/products/.
//
// Параметры: q, category, min_price, max_price, store_id, in_stock, sort.
// Цены задаются в минорных единицах; sort — newest|price_low|price_high.
func (h *Handler) searchProducts(c *gin.Context) {
	query := domain.ProductQuery{
		Text:     c.Query("q"),
		Category: c.Query("category"),
		Sort:     domain.ParseProductSort(c.Query("sort")),
	}
	query.MinPriceMinor, _ = strconv.ParseInt(c.Query("min_price"), 10, 64)
	query.MaxPriceMinor, _ = strconv.ParseInt(c.Query("max_price"), 10, 64)
	query.StoreID, _ = strconv.ParseInt(c.Query("store_id"), 10, 64)
	query.InStockOnly = c.Query("in_stock") == "true"

	hits, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		h.logger.WithError(err).Error("product search failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": toProductHitResponses(hits)})
}

// suggestTitles обрабатывает GET /api/search/suggest/.
func (h *Handler) suggestTitles(c *gin.Context) {
	titles, err := h.catalog.Suggest(c.Request.Context(), c.Query("q"))
	if err != nil {
		if errors.Is(err, domain.ErrQueryTooShort) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Minimum 3 characters required"})
			return
		}
		h.logger.WithError(err).Error("title suggest failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": titles})
}
