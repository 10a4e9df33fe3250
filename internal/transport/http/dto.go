package http

import (
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type placeOrderRequest struct {
	StoreID int64             `json:"store_id" binding:"required"`
	Items   []itemRequestBody `json:"items"`
}

type itemRequestBody struct {
	ProductID int64 `json:"product_id"`
	Quantity  int32 `json:"quantity"`
}

type orderResponse struct {
	OrderID   int64     `json:"order_id"`
	StoreID   int64     `json:"store_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type orderSummaryResponse struct {
	ID         int64     `json:"id"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	TotalItems int       `json:"total_items"`
}

type inventoryRowResponse struct {
	ID           int64  `json:"id"`
	ProductTitle string `json:"product_title"`
	PriceMinor   int64  `json:"price_minor"`
	CategoryName string `json:"category_name"`
	Quantity     int32  `json:"quantity"`
}

type productHitResponse struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	PriceMinor   int64  `json:"price_minor"`
	CategoryName string `json:"category_name"`
	Quantity     int32  `json:"quantity,omitempty"`
}

func toOrderResponse(order domain.Order) orderResponse {
	return orderResponse{
		OrderID:   order.ID,
		StoreID:   order.StoreID,
		Status:    string(order.Status),
		CreatedAt: order.CreatedAt,
	}
}

func toOrderSummaryResponses(summaries []domain.OrderSummary) []orderSummaryResponse {
	out := make([]orderSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, orderSummaryResponse{
			ID:         s.ID,
			Status:     string(s.Status),
			CreatedAt:  s.CreatedAt,
			TotalItems: s.TotalItems,
		})
	}
	return out
}

func toInventoryRowResponses(rows []domain.InventoryView) []inventoryRowResponse {
	out := make([]inventoryRowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, inventoryRowResponse{
			ID:           row.ID,
			ProductTitle: row.ProductTitle,
			PriceMinor:   row.PriceMinor,
			CategoryName: row.CategoryName,
			Quantity:     row.Quantity,
		})
	}
	return out
}

func toProductHitResponses(hits []domain.ProductHit) []productHitResponse {
	out := make([]productHitResponse, 0, len(hits))
	for _, hit := range hits {
		out = append(out, productHitResponse{
			ID:           hit.Product.ID,
			Title:        hit.Product.Title,
			Description:  hit.Product.Description,
			PriceMinor:   hit.Product.PriceMinor,
			CategoryName: hit.CategoryName,
			Quantity:     hit.InventoryQuantity,
		})
	}
	return out
}
