package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer, service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// CheckoutMetrics は注文確定の結果ごとの件数と所要時間
type CheckoutMetrics struct {
	Outcomes  *prometheus.CounterVec
	LatencyMS prometheus.Histogram
}

func NewCheckoutMetrics(reg prometheus.Registerer, service string) *CheckoutMetrics {
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "checkouts_total",
		Help:      "Checkout attempts by outcome.",
	}, []string{"outcome"})
	latency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: service,
		Name:      "checkout_duration_ms",
		Help:      "Checkout transaction latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	reg.MustRegister(outcomes, latency)
	return &CheckoutMetrics{Outcomes: outcomes, LatencyMS: latency}
}

// nilでも呼べる（テストやメトリクス無しの構成用）
func (m *CheckoutMetrics) Observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(outcome).Inc()
	m.LatencyMS.Observe(float64(elapsed.Milliseconds()))
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
