package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// placeOrder обрабатывает POST /api/orders/.
//
// Коды ответа:
//   - 201 — заказ подтверждён;
//   - 200 — попытка зафиксирована, заказ отклонён;
//   - 404 — магазин не найден;
//   - 400 — некорректное тело запроса;
//   - 503 — временная ошибка, запрос безопасно повторить.
func (h *Handler) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	items := make([]domain.ItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, domain.ItemRequest{
			ProductID:         item.ProductID,
			QuantityRequested: item.Quantity,
		})
	}

	order, err := h.orders.PlaceOrder(c.Request.Context(), req.StoreID, items)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStoreNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	case errors.Is(err, domain.ErrItemProductInvalid), errors.Is(err, domain.ErrItemQtyInvalid):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case domain.IsTransient(err):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Temporary failure, retry the request"})
		return
	default:
		h.logger.WithError(err).Error("place order failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	status := http.StatusOK
	if order.Status == domain.OrderStatusConfirmed {
		status = http.StatusCreated
	}
	c.JSON(status, toOrderResponse(order))
}

// listStoreOrders обрабатывает GET /api/stores/:store_id/orders/.
func (h *Handler) listStoreOrders(c *gin.Context) {
	storeID, ok := parseStoreID(c)
	if !ok {
		return
	}

	summaries, err := h.orders.ListStoreOrders(c.Request.Context(), storeID)
	if err != nil {
		if errors.Is(err, domain.ErrStoreNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
			return
		}
		h.logger.WithError(err).Error("list store orders failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": toOrderSummaryResponses(summaries)})
}

func parseStoreID(c *gin.Context) (int64, bool) {
	storeID, err := strconv.ParseInt(c.Param("store_id"), 10, 64)
	if err != nil || storeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid store id"})
		return 0, false
	}
	return storeID, true
}
