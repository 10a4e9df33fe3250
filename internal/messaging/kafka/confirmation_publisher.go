package kafka

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/vladislavdragonenkov/storefront/internal/service/notify"
)

// ConfirmationPublisher публикует подтверждения заказов в Kafka topic.
// Ключ сообщения — идентификатор заказа, чтобы события одного заказа
// попадали в одну партицию.
type ConfirmationPublisher struct {
	producer *Producer
	topic    string
}

// NewConfirmationPublisher создаёт Kafka-паблишер подтверждений.
func NewConfirmationPublisher(producer *Producer, topic string) *ConfirmationPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &ConfirmationPublisher{
		producer: producer,
		topic:    topic,
	}
}

// PublishConfirmation отправляет событие order.confirmed.
func (p *ConfirmationPublisher) PublishConfirmation(orderID int64) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka confirmation publisher is not initialized")
	}

	event := OrderConfirmedEvent{
		EventID:   uuid.NewString(),
		EventType: EventTypeOrderConfirmed,
		OrderID:   orderID,
		Timestamp: time.Now().UTC(),
	}
	return p.producer.Publish(p.topic, strconv.FormatInt(orderID, 10), event)
}

var _ notify.Publisher = (*ConfirmationPublisher)(nil)
