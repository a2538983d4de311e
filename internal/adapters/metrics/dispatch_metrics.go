package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StatusSuccess labels dispatches that returned no error
const StatusSuccess = "success"

// StatusUnclassified labels failures outside the dispatch taxonomy
const StatusUnclassified = "unclassified"

// DispatchMetricsCollector handles all request dispatch metrics
type DispatchMetricsCollector struct {
	dispatchDuration *prometheus.HistogramVec
	dispatchesTotal  *prometheus.CounterVec
	inFlight         *prometheus.GaugeVec
}

// NewDispatchMetricsCollector creates a new dispatch metrics collector
func NewDispatchMetricsCollector() *DispatchMetricsCollector {
	return &DispatchMetricsCollector{
		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "Request handling duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
			},
			[]string{"request", "status"},
		),

		dispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "requests_total",
				Help:      "Total number of requests dispatched by type and status",
			},
			[]string{"request", "status"},
		),

		inFlight: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "in_flight",
				Help:      "Requests currently inside their handler chain",
			},
			[]string{"request"},
		),
	}
}

// Register registers all dispatch metrics with reg
func (c *DispatchMetricsCollector) Register(reg prometheus.Registerer) error {
	metrics := []prometheus.Collector{
		c.dispatchDuration,
		c.dispatchesTotal,
		c.inFlight,
	}

	for _, metric := range metrics {
		if err := reg.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordDispatch records one finished dispatch
func (c *DispatchMetricsCollector) RecordDispatch(request, status string, durationSeconds float64) {
	c.dispatchDuration.WithLabelValues(request, status).Observe(durationSeconds)
	c.dispatchesTotal.WithLabelValues(request, status).Inc()
}

func (c *DispatchMetricsCollector) started(request string) {
	c.inFlight.WithLabelValues(request).Inc()
}

func (c *DispatchMetricsCollector) finished(request string) {
	c.inFlight.WithLabelValues(request).Dec()
}
