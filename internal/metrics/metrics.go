// Package metrics exposes the engine's Prometheus collector and its
// OpenTelemetry meter, using cached label sets and counters keyed by
// operation.
package metrics

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	// FileIDKey annotates a measurement with the uuid of the open file
	// handle it concerns (see internal/recio.FileState.ID).
	FileIDKey = "file_id"

	// OutcomeKey annotates a cache lookup with "hit" or "miss".
	OutcomeKey = "outcome"
)

// Collector is the engine's Prometheus collector. One Collector is meant
// to be registered per process; recio.Engine holds a pointer to it.
type Collector struct {
	Hits            prometheus.Counter
	Misses          prometheus.Counter
	Evictions       prometheus.Counter
	FlushBytes      prometheus.Counter
	SparseFillBytes prometheus.Counter
	OpenFiles       prometheus.Gauge
	TooManyFiles    prometheus.Counter
}

// NewCollector builds a fresh, unregistered Collector.
func NewCollector() *Collector {
	return &Collector{
		Hits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitsrec_pool_hits_total",
			Help: "Number of load_record calls satisfied by an already-resident slot.",
		}),
		Misses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitsrec_pool_misses_total",
			Help: "Number of load_record calls that required a victim slot.",
		}),
		Evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitsrec_pool_evictions_total",
			Help: "Number of slots that were flushed and rebound to a different record.",
		}),
		FlushBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitsrec_flush_bytes_total",
			Help: "Total bytes written back to storage by the flush engine.",
		}),
		SparseFillBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitsrec_sparse_fill_bytes_total",
			Help: "Total fill bytes synthesized to bridge sparse EOF gaps.",
		}),
		OpenFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fitsrec_open_files",
			Help: "Number of files currently registered with the engine.",
		}),
		TooManyFiles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "fitsrec_too_many_files_total",
			Help: "Number of load_record calls that degraded to TOO_MANY_FILES.",
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, m := range []prometheus.Metric{c.Hits, c.Misses, c.Evictions, c.FlushBytes, c.SparseFillBytes, c.OpenFiles, c.TooManyFiles} {
		ch <- m
	}
}

var (
	recioMeter = otel.Meter("recio")

	attrSets sync.Map
)

func attributeOption(key, value string) metric.MeasurementOption {
	cacheKey := key + "=" + value
	if v, ok := attrSets.Load(cacheKey); ok {
		return v.(metric.MeasurementOption)
	}
	opt := metric.WithAttributeSet(attribute.NewSet(attribute.String(key, value)))
	v, _ := attrSets.LoadOrStore(cacheKey, opt)
	return v.(metric.MeasurementOption)
}

// OutcomeAttribute returns a cached MeasurementOption tagging a
// measurement with whether a cache lookup hit or missed.
func OutcomeAttribute(hit bool) metric.MeasurementOption {
	if hit {
		return attributeOption(OutcomeKey, "hit")
	}
	return attributeOption(OutcomeKey, "miss")
}

// FileIDAttribute returns a cached MeasurementOption tagging a
// measurement with the originating file handle's id.
func FileIDAttribute(id string) metric.MeasurementOption {
	return attributeOption(FileIDKey, id)
}

// OtelInstruments holds the otel meter instruments the engine records to.
// Built lazily; a zero-value OtelInstruments is safe to use (methods are
// no-ops until Init is called), so engines constructed without telemetry
// configured never observe a nil-pointer panic.
type OtelInstruments struct {
	flushDuration    metric.Float64Histogram
	sparseExtensions metric.Int64Counter
	lookups          metric.Int64Counter
}

// Init creates the otel instruments. Safe to call multiple times; only
// the first call takes effect.
func (o *OtelInstruments) Init() error {
	if o.flushDuration != nil {
		return nil
	}

	fd, err := recioMeter.Float64Histogram(
		"recio.flush.duration",
		metric.WithDescription("Duration of flush_slot/flush_file calls, in seconds."),
		metric.WithUnit("s"),
	)
	if err != nil {
		return err
	}

	se, err := recioMeter.Int64Counter(
		"recio.sparse.extensions",
		metric.WithDescription("Number of fill records synthesized by the sparse-flush algorithm."),
	)
	if err != nil {
		return err
	}

	lk, err := recioMeter.Int64Counter(
		"recio.cache.lookups",
		metric.WithDescription("Number of load_record calls, tagged by hit/miss outcome and file id."),
	)
	if err != nil {
		return err
	}

	o.flushDuration = fd
	o.sparseExtensions = se
	o.lookups = lk
	return nil
}

// RecordLookup records one load_record call's hit/miss outcome, tagged
// with OutcomeAttribute and usually FileIDAttribute.
func (o *OtelInstruments) RecordLookup(ctx context.Context, opts ...metric.AddOption) {
	if o.lookups == nil {
		return
	}
	o.lookups.Add(ctx, 1, opts...)
}

// RecordFlushDuration records one flush's wall-clock duration in seconds.
func (o *OtelInstruments) RecordFlushDuration(ctx context.Context, seconds float64, opts ...metric.RecordOption) {
	if o.flushDuration == nil {
		return
	}
	o.flushDuration.Record(ctx, seconds, opts...)
}

// AddSparseExtensions records n additional sparse fill records synthesized.
func (o *OtelInstruments) AddSparseExtensions(ctx context.Context, n int64, opts ...metric.AddOption) {
	if o.sparseExtensions == nil {
		return
	}
	o.sparseExtensions.Add(ctx, n, opts...)
}
