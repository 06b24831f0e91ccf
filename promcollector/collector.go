// Package promcollector exports pax reader and writer metrics to Prometheus.
package promcollector

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	pax "github.com/zhangyue-hashdata/cloudberrydb-sub002"
)

var _ pax.MetricsCollector = (*Collector)(nil)

// Collector implements pax.MetricsCollector with Prometheus metrics.
type Collector struct {
	stripeLatency *prometheus.HistogramVec
	stripes       *prometheus.CounterVec
	rows          *prometheus.CounterVec
	bytes         *prometheus.CounterVec
	tuples        prometheus.Counter
}

// New creates a Collector and registers its metrics with reg.
// namespace prefixes every metric name; it defaults to "pax".
func New(reg prometheus.Registerer, namespace string) (*Collector, error) {
	if namespace == "" {
		namespace = "pax"
	}
	c := &Collector{
		stripeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stripe_latency_seconds",
			Help:      "Latency of stripe writes and reads",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op", "status"}),
		stripes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stripes_total",
			Help:      "Stripes written or read",
		}, []string{"op", "status"}),
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stripe_rows_total",
			Help:      "Rows in successfully written or read stripes",
		}, []string{"op"}),
		bytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stripe_bytes_total",
			Help:      "Bytes of successfully written or read stripes",
		}, []string{"op"}),
		tuples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tuples_read_total",
			Help:      "Tuples returned by readers",
		}),
	}

	for _, m := range []prometheus.Collector{c.stripeLatency, c.stripes, c.rows, c.bytes, c.tuples} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) record(op string, rows int, bytes int64, d time.Duration, err error) {
	st := status(err)
	c.stripeLatency.WithLabelValues(op, st).Observe(d.Seconds())
	c.stripes.WithLabelValues(op, st).Inc()
	if err == nil {
		c.rows.WithLabelValues(op).Add(float64(rows))
		c.bytes.WithLabelValues(op).Add(float64(bytes))
	}
}

// RecordStripeWrite implements pax.MetricsCollector.
func (c *Collector) RecordStripeWrite(rows int, bytes int64, d time.Duration, err error) {
	c.record("write", rows, bytes, d, err)
}

// RecordStripeRead implements pax.MetricsCollector.
func (c *Collector) RecordStripeRead(rows int, bytes int64, d time.Duration, err error) {
	c.record("read", rows, bytes, d, err)
}

// RecordTupleRead implements pax.MetricsCollector.
func (c *Collector) RecordTupleRead(n int) {
	c.tuples.Add(float64(n))
}
