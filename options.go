package pax

import (
	"log/slog"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/zhangyue-hashdata/cloudberrydb-sub002/internal/buffer"
)

// DefaultStripeRows is the row count at which a writer cuts a stripe.
const DefaultStripeRows = 16384

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger

	// writer
	stripeRows int

	// reader
	schema     Schema
	missing    map[int]Value
	projection []bool
	scratch    *buffer.Owned
	deleted    *roaring.Bitmap
}

// Option configures writers and readers. Options that only apply to one side
// are ignored by the other.
type Option func(*options)

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &pax.BasicMetricsCollector{}
//	w, _ := pax.NewWriter(f, schema, pax.WithMetricsCollector(metrics))
//	// ... write ...
//	stats := metrics.GetStats()
//	fmt.Printf("Stripes: %d, Bytes: %d\n", stats.StripeWriteCount, stats.StripeWriteBytes)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pax.NewJSONLogger(slog.LevelDebug)
//	w, _ := pax.NewWriter(f, schema, pax.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel is a shortcut for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithStripeRows sets the number of buffered rows after which the writer
// flushes a stripe on its own. n <= 0 disables automatic flushing.
func WithStripeRows(n int) Option {
	return func(o *options) {
		o.stripeRows = n
	}
}

// WithSchema sets the schema the reader is expected to produce. A file with
// more columns fails to open with ErrSchemaNotMatch. A file with fewer
// columns is padded on the right with missing values.
func WithSchema(schema Schema) Option {
	return func(o *options) {
		o.schema = schema
	}
}

// WithMissingValue sets the value returned for column col when the file does
// not store it. Without it, missing columns read as null.
func WithMissingValue(col int, v Value) Option {
	return func(o *options) {
		if o.missing == nil {
			o.missing = make(map[int]Value)
		}
		o.missing[col] = v
	}
}

// WithProjection restricts reads to the columns whose entry is true.
// Other columns come back null and are not read from the source.
func WithProjection(wanted []bool) Option {
	return func(o *options) {
		o.projection = wanted
	}
}

// WithReusableBuffer makes the reader load streamed stripes into buf,
// growing it as needed, instead of allocating per stripe.
func WithReusableBuffer(buf *buffer.Owned) Option {
	return func(o *options) {
		o.scratch = buf
	}
}

// WithVisibility sets the rows, by file row number, that ReadTuple skips.
func WithVisibility(deleted *roaring.Bitmap) Option {
	return func(o *options) {
		o.deleted = deleted
	}
}

func applyOptions(opts []Option) options {
	o := options{
		stripeRows: DefaultStripeRows,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	return o
}
