// Package metrics records run statistics in a dedicated Prometheus registry.
// A batch run has no scrape endpoint, so the registry is written to a
// node-exporter textfile and/or pushed to a Pushgateway at the end.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/smacmullan/nws-property-ownership-analysis/internal/types"
)

const namespace = "ownership"

// Registry holds every collector in this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	Downloads = factory.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "downloads_total", Help: "Open data portal requests."},
		[]string{"dataset", "status"},
	)
	DownloadLatency = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "download_duration_seconds",
			Help:    "Open data portal request duration seconds.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"dataset"},
	)
	CacheEvents = factory.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "cache_events_total", Help: "Cache hits/misses/sets."},
		[]string{"cache", "event"}, // event: hit|miss|set|error
	)
	RowsLoaded = factory.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rows_loaded_total", Help: "Input rows read per table."},
		[]string{"table"},
	)
	RowsDropped = factory.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rows_dropped_total", Help: "Input rows or cells discarded."},
		[]string{"table", "reason"},
	)
	Parcels = factory.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "parcels_total", Help: "Classified parcels by label."},
		[]string{"label"},
	)
	StageDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace, Name: "stage_duration_seconds",
			Help:    "Pipeline stage duration seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"stage"},
	)
	Landlords = factory.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "landlords", Help: "Taxpayer address groups in the last run."},
	)
	LastRun = factory.NewGauge(
		prometheus.GaugeOpts{Namespace: namespace, Name: "last_run_timestamp_seconds", Help: "Unix time the last run finished."},
	)
)

func ObserveDownload(dataset string, status int, dur time.Duration) {
	Downloads.WithLabelValues(dataset, statusLabel(status)).Inc()
	DownloadLatency.WithLabelValues(dataset).Observe(dur.Seconds())
}

func ObserveCache(cache, event string) {
	CacheEvents.WithLabelValues(cache, event).Inc()
}

func ObserveStage(stage string, dur time.Duration) {
	StageDuration.WithLabelValues(stage).Observe(dur.Seconds())
}

func AddRows(table string, n int) {
	RowsLoaded.WithLabelValues(table).Add(float64(n))
}

func AddDropped(table, reason string, n int) {
	if n > 0 {
		RowsDropped.WithLabelValues(table, reason).Add(float64(n))
	}
}

// ObserveClassification counts parcels per verdict label.
func ObserveClassification(parcels []types.ClassifiedParcel) {
	counts := map[string]int{}
	for _, p := range parcels {
		counts["total"]++
		if p.IsHousing {
			counts["housing"]++
		}
		if p.IsApartment {
			counts["apartment"]++
		}
		if p.IsCorporateOwned {
			counts["corporate"]++
		}
		if p.IsOwnerOccupied {
			counts["owner_occupied"]++
		}
		if p.HasTenants {
			counts["has_tenants"]++
		}
	}
	for label, n := range counts {
		Parcels.WithLabelValues(label).Add(float64(n))
	}
}

// statusLabel is the HTTP status, or "error" when no response arrived.
func statusLabel(status int) string {
	if status == 0 {
		return "error"
	}
	return strconv.Itoa(status)
}

// Flush stamps LastRun and writes the registry to textfile and pushURL. Empty
// destinations are skipped.
func Flush(ctx context.Context, textfile, pushURL string) error {
	LastRun.SetToCurrentTime()

	var errs []error
	if textfile != "" {
		if err := prometheus.WriteToTextfile(textfile, Registry); err != nil {
			errs = append(errs, fmt.Errorf("write metrics textfile: %w", err))
		}
	}
	if pushURL != "" {
		if err := push.New(pushURL, "ownership_analysis").Gatherer(Registry).PushContext(ctx); err != nil {
			errs = append(errs, fmt.Errorf("push metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}
