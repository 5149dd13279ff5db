package metric

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/turbine-go/internal/storage"
)

// StatsSource is the slice of storage.KVEngine the collector reads.
type StatsSource interface {
	Stats(ctx context.Context) (*storage.KVStats, error)
}

// StorageCollector reports KV engine statistics at gather time.
type StorageCollector struct {
	source  StatsSource
	timeout time.Duration

	size       *prometheus.Desc
	keys       *prometheus.Desc
	lastGC     *prometheus.Desc
	reclaimed  *prometheus.Desc
	scrapeErrs *prometheus.Desc
}

// NewStorageCollector creates a collector over source.
func NewStorageCollector(source StatsSource) *StorageCollector {
	labels := []string{"engine"}
	return &StorageCollector{
		source:  source,
		timeout: 5 * time.Second,
		size: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "size_bytes"),
			"History storage size on disk.", labels, nil),
		keys: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "keys"),
			"Keys in history storage, 0 when the engine cannot count them.", labels, nil),
		lastGC: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "last_gc_timestamp_seconds"),
			"Unix time of the last storage GC.", labels, nil),
		reclaimed: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "gc_reclaimed_bytes_total"),
			"Bytes reclaimed by storage GC.", labels, nil),
		scrapeErrs: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "storage", "stats_error"),
			"1 if reading storage statistics failed.", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *StorageCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.size
	ch <- c.keys
	ch <- c.lastGC
	ch <- c.reclaimed
	ch <- c.scrapeErrs
}

// Collect implements prometheus.Collector.
func (c *StorageCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.source.Stats(ctx)
	if err != nil {
		ch <- prometheus.MustNewConstMetric(c.scrapeErrs, prometheus.GaugeValue, 1)
		return
	}
	ch <- prometheus.MustNewConstMetric(c.scrapeErrs, prometheus.GaugeValue, 0)

	engine := stats.Engine
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(stats.TotalSize), engine)
	ch <- prometheus.MustNewConstMetric(c.keys, prometheus.GaugeValue, float64(stats.TotalKeys), engine)
	ch <- prometheus.MustNewConstMetric(c.lastGC, prometheus.GaugeValue, float64(stats.LastGCTime)/1000, engine)
	ch <- prometheus.MustNewConstMetric(c.reclaimed, prometheus.CounterValue, float64(stats.GCBytesReclaimed), engine)
}
