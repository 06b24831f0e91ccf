package pax

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus
// (see the promcollector package).
type MetricsCollector interface {
	// RecordStripeWrite is called after each stripe is written.
	// bytes is the encoded stripe size including its footer.
	RecordStripeWrite(rows int, bytes int64, duration time.Duration, err error)

	// RecordStripeRead is called after each stripe is loaded.
	// bytes is the amount read from the source.
	RecordStripeRead(rows int, bytes int64, duration time.Duration, err error)

	// RecordTupleRead is called with the number of tuples returned by a reader
	// when it is closed.
	RecordTupleRead(n int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordStripeWrite(int, int64, time.Duration, error) {}
func (NoopMetricsCollector) RecordStripeRead(int, int64, time.Duration, error)  {}
func (NoopMetricsCollector) RecordTupleRead(int)                                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
type BasicMetricsCollector struct {
	StripeWriteCount      atomic.Int64
	StripeWriteErrors     atomic.Int64
	StripeWriteRows       atomic.Int64
	StripeWriteBytes      atomic.Int64
	StripeWriteTotalNanos atomic.Int64
	StripeReadCount       atomic.Int64
	StripeReadErrors      atomic.Int64
	StripeReadRows        atomic.Int64
	StripeReadBytes       atomic.Int64
	StripeReadTotalNanos  atomic.Int64
	TupleReadCount        atomic.Int64
}

// RecordStripeWrite implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStripeWrite(rows int, bytes int64, duration time.Duration, err error) {
	b.StripeWriteCount.Add(1)
	b.StripeWriteTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.StripeWriteErrors.Add(1)
		return
	}
	b.StripeWriteRows.Add(int64(rows))
	b.StripeWriteBytes.Add(bytes)
}

// RecordStripeRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordStripeRead(rows int, bytes int64, duration time.Duration, err error) {
	b.StripeReadCount.Add(1)
	b.StripeReadTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.StripeReadErrors.Add(1)
		return
	}
	b.StripeReadRows.Add(int64(rows))
	b.StripeReadBytes.Add(bytes)
}

// RecordTupleRead implements MetricsCollector.
func (b *BasicMetricsCollector) RecordTupleRead(n int) {
	b.TupleReadCount.Add(int64(n))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		StripeWriteCount:    b.StripeWriteCount.Load(),
		StripeWriteErrors:   b.StripeWriteErrors.Load(),
		StripeWriteRows:     b.StripeWriteRows.Load(),
		StripeWriteBytes:    b.StripeWriteBytes.Load(),
		StripeWriteAvgNanos: avg(b.StripeWriteTotalNanos.Load(), b.StripeWriteCount.Load()),
		StripeReadCount:     b.StripeReadCount.Load(),
		StripeReadErrors:    b.StripeReadErrors.Load(),
		StripeReadRows:      b.StripeReadRows.Load(),
		StripeReadBytes:     b.StripeReadBytes.Load(),
		StripeReadAvgNanos:  avg(b.StripeReadTotalNanos.Load(), b.StripeReadCount.Load()),
		TupleReadCount:      b.TupleReadCount.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	StripeWriteCount    int64
	StripeWriteErrors   int64
	StripeWriteRows     int64
	StripeWriteBytes    int64
	StripeWriteAvgNanos int64
	StripeReadCount     int64
	StripeReadErrors    int64
	StripeReadRows      int64
	StripeReadBytes     int64
	StripeReadAvgNanos  int64
	TupleReadCount      int64
}
