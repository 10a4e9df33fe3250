package kafka

import "time"

// EventType определяет тип события сервиса.
type EventType string

const (
	// EventTypeOrderConfirmed — заказ подтверждён, остатки списаны.
	EventTypeOrderConfirmed EventType = "order.confirmed"
)

// Topics сервиса.
const (
	// TopicOrderEvents — события жизненного цикла заказов.
	TopicOrderEvents = "storefront.order.events"
)

// OrderConfirmedEvent — сигнал для асинхронной доставки подтверждения.
// EventID уникален на каждую публикацию и позволяет получателям
// дедуплицировать повторную доставку.
type OrderConfirmedEvent struct {
	EventID   string    `json:"event_id"`
	EventType EventType `json:"event_type"`
	OrderID   int64     `json:"order_id"`
	Timestamp time.Time `json:"timestamp"`
}
