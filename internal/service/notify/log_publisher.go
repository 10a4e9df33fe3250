package notify

import (
	log "github.com/sirupsen/logrus"
)

// logPublisher пишет подтверждение в лог. Используется, когда брокер
// сообщений не сконфигурирован (локальная разработка, тесты).
type logPublisher struct {
	logger *log.Entry
}

// NewLogPublisher возвращает publisher, доставляющий подтверждения в лог.
func NewLogPublisher(logger *log.Entry) Publisher {
	if logger == nil {
		logger = log.WithField("component", "notify-log")
	}
	return &logPublisher{logger: logger}
}

func (p *logPublisher) PublishConfirmation(orderID int64) error {
	p.logger.WithField("order_id", orderID).Info("order confirmation sent")
	return nil
}

var _ Publisher = (*logPublisher)(nil)
