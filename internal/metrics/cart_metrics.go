package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vladislavdragonenkov/carrinho/internal/domain"
)

// CartMetrics содержит метрики операций корзины и перерисовки виджета.
type CartMetrics struct {
	// Счётчики операций
	mutations     *prometheus.CounterVec
	storageErrors *prometheus.CounterVec
	notifyErrors  prometheus.Counter

	// Перерисовка
	refreshes       prometheus.Counter
	refreshFailures prometheus.Counter
	refreshDuration prometheus.Histogram

	// События от страницы
	events *prometheus.CounterVec
}

// NewCartMetrics создаёт метрики в DefaultRegisterer.
func NewCartMetrics() *CartMetrics {
	return NewCartMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCartMetricsWithRegisterer создаёт метрики в заданном реестре.
func NewCartMetricsWithRegisterer(registerer prometheus.Registerer) *CartMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &CartMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "carrinho_cart_mutations_total",
			Help: "Total number of saved cart mutations",
		}, []string{"op"}),
		storageErrors: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "carrinho_storage_errors_total",
			Help: "Total number of cart load/save failures",
		}, []string{"op"}),
		notifyErrors: registerCounter(registerer, prometheus.CounterOpts{
			Name: "carrinho_notify_failures_total",
			Help: "Total number of failed cart change notifications",
		}),
		refreshes: registerCounter(registerer, prometheus.CounterOpts{
			Name: "carrinho_refresh_total",
			Help: "Total number of widget refreshes",
		}),
		refreshFailures: registerCounter(registerer, prometheus.CounterOpts{
			Name: "carrinho_refresh_failures_total",
			Help: "Total number of widget refreshes aborted by an error",
		}),
		refreshDuration: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "carrinho_refresh_duration_seconds",
			Help:    "Duration of widget refreshes in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		}),
		events: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "carrinho_ui_events_total",
			Help: "Total number of UI events dispatched to the widget",
		}, []string{"event", "handled"}),
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

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
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

// RecordMutation увеличивает счётчик сохранённых изменений.
func (m *CartMetrics) RecordMutation(op domain.CartOp) {
	m.mutations.WithLabelValues(string(op)).Inc()
}

// RecordStorageError увеличивает счётчик ошибок хранилища.
func (m *CartMetrics) RecordStorageError(op domain.CartOp) {
	m.storageErrors.WithLabelValues(string(op)).Inc()
}

// RecordNotifyFailure увеличивает счётчик неудачных уведомлений.
func (m *CartMetrics) RecordNotifyFailure() {
	m.notifyErrors.Inc()
}

// RecordRefresh записывает перерисовку и её длительность.
func (m *CartMetrics) RecordRefresh(duration time.Duration, err error) {
	m.refreshes.Inc()
	m.refreshDuration.Observe(duration.Seconds())
	if err != nil {
		m.refreshFailures.Inc()
	}
}

// RecordEvent считает событие страницы; handled=false: цель не подошла слушателю.
func (m *CartMetrics) RecordEvent(event string, handled bool) {
	m.events.WithLabelValues(event, fmt.Sprint(handled)).Inc()
}
