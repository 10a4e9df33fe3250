package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlacementMetrics содержит метрики транзакций размещения заказов.
type PlacementMetrics struct {
	// Счётчики исходов попыток размещения
	attemptsStarted   prometheus.Counter
	ordersConfirmed   prometheus.Counter
	ordersRejected    prometheus.Counter
	storeNotFound     prometheus.Counter
	transientFailures prometheus.Counter

	// Гистограммы времени выполнения
	placementDuration prometheus.Histogram
	lockWaitDuration  prometheus.Histogram

	// Счётчик отправленных уведомлений
	notificationsSent prometheus.Counter

	// Gauge активных попыток
	activePlacements prometheus.Gauge
}

// NewPlacementMetrics создаёт новый экземпляр метрик размещения.
func NewPlacementMetrics() *PlacementMetrics {
	return newPlacementMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newPlacementMetricsWithRegisterer(registerer prometheus.Registerer) *PlacementMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &PlacementMetrics{
		attemptsStarted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_placement_attempts_total",
			Help: "Total number of order placement attempts started",
		}),
		ordersConfirmed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_confirmed_total",
			Help: "Total number of orders confirmed",
		}),
		ordersRejected: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_rejected_total",
			Help: "Total number of orders rejected for insufficient stock",
		}),
		storeNotFound: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_placement_store_not_found_total",
			Help: "Total number of placement attempts against an unknown store",
		}),
		transientFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_placement_transient_failures_total",
			Help: "Total number of placement attempts aborted by transient failures",
		}),
		placementDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_placement_duration_seconds",
			Help:    "Duration of order placement attempts in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		lockWaitDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_inventory_lock_wait_seconds",
			Help:    "Time spent acquiring inventory row locks in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}),
		notificationsSent: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_notifications_dispatched_total",
			Help: "Total number of order confirmation notifications dispatched",
		}),
		activePlacements: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_active_placements",
			Help: "Number of placement attempts currently in flight",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

// RecordAttemptStarted увеличивает счётчик начатых попыток.
func (m *PlacementMetrics) RecordAttemptStarted() {
	m.attemptsStarted.Inc()
	m.activePlacements.Inc()
}

// RecordAttemptFinished уменьшает количество активных попыток.
func (m *PlacementMetrics) RecordAttemptFinished() {
	m.activePlacements.Dec()
}

// RecordConfirmed увеличивает счётчик подтверждённых заказов.
func (m *PlacementMetrics) RecordConfirmed() {
	m.ordersConfirmed.Inc()
}

// RecordRejected увеличивает счётчик отклонённых заказов.
func (m *PlacementMetrics) RecordRejected() {
	m.ordersRejected.Inc()
}

// RecordStoreNotFound увеличивает счётчик попыток к неизвестному магазину.
func (m *PlacementMetrics) RecordStoreNotFound() {
	m.storeNotFound.Inc()
}

// RecordTransientFailure увеличивает счётчик временных сбоев.
func (m *PlacementMetrics) RecordTransientFailure() {
	m.transientFailures.Inc()
}

// RecordPlacementDuration записывает длительность попытки размещения.
func (m *PlacementMetrics) RecordPlacementDuration(duration time.Duration) {
	m.placementDuration.Observe(duration.Seconds())
}

// RecordLockWait записывает время ожидания блокировки строки остатков.
func (m *PlacementMetrics) RecordLockWait(duration time.Duration) {
	m.lockWaitDuration.Observe(duration.Seconds())
}

// RecordNotificationDispatched увеличивает счётчик отправленных уведомлений.
func (m *PlacementMetrics) RecordNotificationDispatched() {
	m.notificationsSent.Inc()
}
