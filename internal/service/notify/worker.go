package notify

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

const (
	defaultQueueSize      = 256
	defaultMaxAttempts    = 3
	defaultRetryBaseDelay = 50 * time.Millisecond
)

// Publisher доставляет сигнал подтверждения внешнему получателю.
type Publisher interface {
	PublishConfirmation(orderID int64) error
}

// WorkerOptions задаёт параметры воркера доставки уведомлений.
type WorkerOptions struct {
	Logger         *log.Entry
	QueueSize      int
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Option настраивает Worker.
type Option func(*WorkerOptions)

// WithLogger задаёт logger для воркера.
func WithLogger(logger *log.Entry) Option {
	return func(opts *WorkerOptions) {
		opts.Logger = logger
	}
}

// WithQueueSize задаёт ёмкость очереди сигналов.
func WithQueueSize(size int) Option {
	return func(opts *WorkerOptions) {
		opts.QueueSize = size
	}
}

// WithMaxAttempts задаёт число попыток публикации.
func WithMaxAttempts(maxAttempts int) Option {
	return func(opts *WorkerOptions) {
		opts.MaxAttempts = maxAttempts
	}
}

// WithRetryBaseDelay задаёт базовый delay для exponential backoff.
func WithRetryBaseDelay(delay time.Duration) Option {
	return func(opts *WorkerOptions) {
		opts.RetryBaseDelay = delay
	}
}

// Worker асинхронно доставляет подтверждения заказов. Контракт best-effort:
// постановка в очередь никогда не блокирует размещение заказа, переполнение
// очереди и исчерпание повторов теряют сигнал с записью в лог.
type Worker struct {
	publisher      Publisher
	logger         *log.Entry
	queue          chan int64
	maxAttempts    int
	retryBaseDelay time.Duration
}

// NewWorker создаёт воркер доставки уведомлений.
func NewWorker(publisher Publisher, options ...Option) *Worker {
	opts := WorkerOptions{
		QueueSize:      defaultQueueSize,
		MaxAttempts:    defaultMaxAttempts,
		RetryBaseDelay: defaultRetryBaseDelay,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "notify-worker")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryBaseDelay < 0 {
		opts.RetryBaseDelay = 0
	}

	return &Worker{
		publisher:      publisher,
		logger:         logger,
		queue:          make(chan int64, opts.QueueSize),
		maxAttempts:    opts.MaxAttempts,
		retryBaseDelay: opts.RetryBaseDelay,
	}
}

// DispatchConfirmation ставит сигнал в очередь, не блокируясь.
func (w *Worker) DispatchConfirmation(orderID int64) {
	select {
	case w.queue <- orderID:
	default:
		w.logger.WithField("order_id", orderID).Warn("notification queue full, signal dropped")
	}
}

// Run доставляет сигналы из очереди до отмены ctx.
func (w *Worker) Run(ctx context.Context) {
	if w.publisher == nil {
		w.logger.Warn("notify worker is disabled: publisher is nil")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case orderID := <-w.queue:
			w.deliver(ctx, orderID)
		}
	}
}

func (w *Worker) deliver(ctx context.Context, orderID int64) {
	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		if err := w.publisher.PublishConfirmation(orderID); err == nil {
			if attempt > 1 {
				w.logger.WithFields(log.Fields{
					"order_id": orderID,
					"attempt":  attempt,
				}).Info("confirmation delivered after retry")
			}
			return
		} else {
			lastErr = err
		}

		if attempt >= w.maxAttempts {
			break
		}
		delay := w.retryBackoff(attempt)
		if delay <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(delay):
		}
	}

	w.logger.WithError(lastErr).WithFields(log.Fields{
		"order_id":     orderID,
		"max_attempts": w.maxAttempts,
	}).Error("confirmation delivery failed after all attempts")
}

func (w *Worker) retryBackoff(attempt int) time.Duration {
	if w.retryBaseDelay <= 0 {
		return 0
	}
	delay := w.retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

var _ domain.NotificationDispatcher = (*Worker)(nil)
