// Package observability holds the Prometheus metrics for a pipeline run.
package observability

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sustainability_etl"

// Metrics holds the Prometheus counters, histograms, and gauges for a pipeline run.
type Metrics struct {
	// Fetch metrics.
	FetchRequests   *prometheus.CounterVec // labels: outcome={success,error}
	FetchDuration   prometheus.Histogram
	SchemaErrors    prometheus.Counter
	ReadingsFetched prometheus.Counter
	ReadingsDropped prometheus.Counter

	// Load metrics.
	RecordsExported *prometheus.CounterVec // labels: sink={xlsx,csv,parquet,kafka}
	LoadErrors      *prometheus.CounterVec // labels: sink

	// Run outcome.
	RunSuccess       prometheus.Gauge
	RunDuration      prometheus.Gauge
	LastRunTimestamp prometheus.Gauge

	// Dataset totals of the last successful run.
	NetEnergyUsage   prometheus.Gauge
	Scope2Emissions  prometheus.Gauge
	AvoidedEmissions prometheus.Gauge
}

func newMetrics() *Metrics {
	return &Metrics{
		FetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Weather archive requests by outcome.",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Weather archive request duration in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SchemaErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_errors_total",
			Help:      "Archive payloads rejected because of an unexpected shape.",
		}),
		ReadingsFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_fetched_total",
			Help:      "Hourly weather readings accepted from the source.",
		}),
		ReadingsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readings_dropped_total",
			Help:      "Hourly readings skipped because the archive had no value yet.",
		}),
		RecordsExported: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_exported_total",
			Help:      "Records written by sink.",
		}, []string{"sink"}),
		LoadErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "load_errors_total",
			Help:      "Sink write failures.",
		}, []string{"sink"}),
		RunSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_success",
			Help:      "1 when the last run exported its dataset, 0 otherwise.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		LastRunTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
		NetEnergyUsage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "net_energy_usage_kwh",
			Help:      "Total net energy usage of the exported dataset.",
		}),
		Scope2Emissions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "scope2_emissions_kgco2",
			Help:      "Total Scope 2 emissions of the exported dataset.",
		}),
		AvoidedEmissions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "avoided_emissions_kgco2",
			Help:      "Total emissions avoided by on-site solar in the exported dataset.",
		}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FetchRequests,
		m.FetchDuration,
		m.SchemaErrors,
		m.ReadingsFetched,
		m.ReadingsDropped,
		m.RecordsExported,
		m.LoadErrors,
		m.RunSuccess,
		m.RunDuration,
		m.LastRunTimestamp,
		m.NetEnergyUsage,
		m.Scope2Emissions,
		m.AvoidedEmissions,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

// WriteTextfile writes the default registry in the Prometheus text format to
// path, for the node exporter textfile collector. The file is replaced
// atomically.
func WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
