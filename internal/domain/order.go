package domain

import "time"

// OrderStatus описывает жизненный цикл заказа.
type OrderStatus string

const (
	// OrderStatusPending — внутренняя стадия попытки размещения.
	// Никогда не сохраняется и не видна снаружи: заказ возвращается
	// вызывающему только в одном из финальных статусов.
	OrderStatusPending OrderStatus = "PENDING"
	// OrderStatusConfirmed — все позиции были доступны, остатки списаны.
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	// OrderStatusRejected — попытка зафиксирована, но не исполнена:
	// ни позиций, ни списаний.
	OrderStatusRejected OrderStatus = "REJECTED"
)

// Order — результат одной попытки размещения.
type Order struct {
	ID        int64
	StoreID   int64
	Status    OrderStatus
	CreatedAt time.Time
}

// OrderItem — одна позиция подтверждённого заказа.
// Для отклонённых заказов позиции не сохраняются.
type OrderItem struct {
	ID                int64
	OrderID           int64
	ProductID         int64
	QuantityRequested int32
}

// OrderSummary — строка внешнего списка заказов магазина.
// TotalItems вычисляется из сохранённых позиций, не хранится.
type OrderSummary struct {
	ID         int64
	Status     OrderStatus
	CreatedAt  time.Time
	TotalItems int
}

// ItemRequest — запрошенная позиция в заявке на размещение заказа.
type ItemRequest struct {
	ProductID         int64
	QuantityRequested int32
}

// ValidateItemRequests проверяет базовые инварианты заявки и возвращает
// список замечаний. Пустой список позиций допускается по соглашению.
func ValidateItemRequests(items []ItemRequest) []error {
	var errs []error
	for _, item := range items {
		if item.ProductID <= 0 {
			errs = append(errs, ErrItemProductInvalid)
		}
		if item.QuantityRequested <= 0 {
			errs = append(errs, ErrItemQtyInvalid)
		}
	}
	return errs
}
