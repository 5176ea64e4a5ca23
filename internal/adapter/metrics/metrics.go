package metrics

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

var (
	// metricsOnce ensures metrics are registered only once
	metricsOnce sync.Once

	// registry holds only notifier metrics, so a push carries no Go runtime series
	registry *prometheus.Registry

	// eventsTotal tracks fail2ban actions handled, by action type
	eventsTotal *prometheus.CounterVec

	// enrichmentTotal tracks geolocation lookups by outcome
	enrichmentTotal *prometheus.CounterVec

	// deliveryTotal tracks webhook posts by outcome
	deliveryTotal *prometheus.CounterVec

	// deliveryDuration tracks webhook latency
	deliveryDuration prometheus.Histogram
)

// InitMetrics registers all Prometheus metrics for the notifier
// This should be called once at startup
func InitMetrics() {
	metricsOnce.Do(func() {
		registry = prometheus.NewRegistry()
		factory := promauto.With(registry)

		eventsTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "f2b_notifier_events_total",
				Help: "Total number of fail2ban actions handled by action type",
			},
			[]string{"action"},
		)

		enrichmentTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "f2b_notifier_enrichment_total",
				Help: "Total number of IP geolocation lookups by outcome",
			},
			[]string{"outcome"},
		)

		deliveryTotal = factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "f2b_notifier_delivery_total",
				Help: "Total number of webhook deliveries by outcome",
			},
			[]string{"outcome"},
		)

		deliveryDuration = factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "f2b_notifier_delivery_duration_seconds",
				Help:    "Duration of webhook deliveries in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
			},
		)
	})
}

// Registry returns the notifier registry, or nil before InitMetrics.
func Registry() *prometheus.Registry {
	return registry
}

// RecordEvent records one handled action
func RecordEvent(action string) {
	if eventsTotal != nil {
		eventsTotal.WithLabelValues(action).Inc()
	}
}

// RecordEnrichment records a lookup outcome: "enriched" or "unenriched"
func RecordEnrichment(outcome string) {
	if enrichmentTotal != nil {
		enrichmentTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordDelivery records a webhook outcome: "sent", "failed" or "skipped"
func RecordDelivery(outcome string) {
	if deliveryTotal != nil {
		deliveryTotal.WithLabelValues(outcome).Inc()
	}
}

// RecordDeliveryDuration records how long a webhook post took
func RecordDeliveryDuration(duration time.Duration) {
	if deliveryDuration != nil {
		deliveryDuration.Observe(duration.Seconds())
	}
}

// DeliveryTimer is a helper for timing webhook posts
type DeliveryTimer struct {
	start time.Time
}

// StartTimer creates a new timer for measuring delivery duration
func StartTimer() *DeliveryTimer {
	return &DeliveryTimer{start: time.Now()}
}

// ObserveDuration records the elapsed time since the timer started
func (t *DeliveryTimer) ObserveDuration() {
	if t != nil {
		RecordDeliveryDuration(time.Since(t.start))
	}
}

// Push sends the registry to a Prometheus Pushgateway once. fail2ban runs us as a
// short-lived process, so there is nothing to scrape.
func Push(ctx context.Context, gatewayURL, job string) error {
	if registry == nil {
		return fmt.Errorf("metrics not initialised")
	}
	if err := push.New(gatewayURL, job).Gatherer(registry).AddContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", gatewayURL, err)
	}
	return nil
}
