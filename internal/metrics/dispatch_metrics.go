package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics метрики фоновой доставки изменений корзины в Kafka.
type DispatchMetrics struct {
	publishes  *prometheus.CounterVec
	queueDepth prometheus.Gauge
}

func NewDispatchMetrics() *DispatchMetrics {
	return NewDispatchMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewDispatchMetricsWithRegisterer(registerer prometheus.Registerer) *DispatchMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &DispatchMetrics{
		publishes: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "carrinho_event_publish_attempts_total",
			Help: "Total number of cart event publish attempts grouped by result",
		}, []string{"result"}),
		queueDepth: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "carrinho_event_queue_depth",
			Help: "Current number of cart events waiting to be published",
		}),
	}
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

func (m *DispatchMetrics) RecordPublish(result string) {
	m.publishes.WithLabelValues(result).Inc()
}

func (m *DispatchMetrics) SetQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}
