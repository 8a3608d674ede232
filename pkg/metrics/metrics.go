package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart operation outcomes and render latency.
type CartMetrics struct {
	opDuration     *prometheus.HistogramVec
	operations     *prometheus.CounterVec
	expirations    prometheus.Counter
	renderDuration prometheus.Histogram
}

// NewCartMetrics registers the cart metrics on the provided registerer.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_cart_operations_total",
		Help: "Cart mutations by operation and result.",
	}, []string{"op", "result"})
	opDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quote_cart_operation_duration_seconds",
		Help:    "Duration of cart operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	expirations := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quote_cart_expirations_total",
		Help: "Carts discarded because the envelope TTL elapsed.",
	})
	renderDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "quote_cart_render_duration_seconds",
		Help:    "Duration of modal render passes in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(operations, opDuration, expirations, renderDuration)
	return &CartMetrics{
		operations:     operations,
		opDuration:     opDuration,
		expirations:    expirations,
		renderDuration: renderDuration,
	}
}

// IncOperation increments the counter for the named operation and result.
func (c *CartMetrics) IncOperation(op, result string) {
	if c == nil || c.operations == nil {
		return
	}
	c.operations.WithLabelValues(normalizeLabel(op), normalizeLabel(result)).Inc()
}

// ObserveOperation records the duration for the named operation.
func (c *CartMetrics) ObserveOperation(op string, duration time.Duration) {
	if c == nil || c.opDuration == nil {
		return
	}
	c.opDuration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncExpiration counts a discarded cart envelope.
func (c *CartMetrics) IncExpiration() {
	if c == nil || c.expirations == nil {
		return
	}
	c.expirations.Inc()
}

// ObserveRender records the duration of a render pass.
func (c *CartMetrics) ObserveRender(duration time.Duration) {
	if c == nil || c.renderDuration == nil {
		return
	}
	c.renderDuration.Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
