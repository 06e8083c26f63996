package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// QueueStats exposes the fallback queue state to the collector
type QueueStats interface {
	Depth() int
	Capacity() int
}

// CustomCollector reports values read at scrape time rather than pushed
type CustomCollector struct {
	queue QueueStats

	fallbackQueueDepth    *prometheus.Desc
	fallbackQueueCapacity *prometheus.Desc
}

// NewCustomCollector creates a collector reading the given queue
func NewCustomCollector(queue QueueStats) *CustomCollector {
	return &CustomCollector{
		queue: queue,

		fallbackQueueDepth: prometheus.NewDesc(
			"savewise_fallback_queue_depth",
			"Fallback writes waiting for the drain goroutine",
			nil, nil,
		),
		fallbackQueueCapacity: prometheus.NewDesc(
			"savewise_fallback_queue_capacity",
			"Maximum number of pending fallback writes",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *CustomCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.fallbackQueueDepth
	ch <- c.fallbackQueueCapacity
}

// Collect implements prometheus.Collector
func (c *CustomCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.fallbackQueueDepth, prometheus.GaugeValue, float64(c.queue.Depth()))
	ch <- prometheus.MustNewConstMetric(c.fallbackQueueCapacity, prometheus.GaugeValue, float64(c.queue.Capacity()))
}

// RegisterCustomCollector registers the custom collector
func RegisterCustomCollector(collector *CustomCollector) {
	prometheus.MustRegister(collector)
}
