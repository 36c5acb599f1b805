// Package metrics provides Prometheus metrics for a launcher run, exported
// as a node_exporter textfile.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder owns a private registry. A nil *Recorder is valid and drops
// every observation.
type Recorder struct {
	registry *prometheus.Registry

	configLoads     *prometheus.CounterVec
	filesTotal      *prometheus.CounterVec
	bytesDownloaded prometheus.Counter
	fileDuration    *prometheus.HistogramVec
	launches        *prometheus.CounterVec
	lastRun         prometheus.Gauge
}

// NewRecorder creates a Recorder with all launcher metrics registered.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		configLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_launcher_config_loads_total",
				Help: "Total number of remote config loads",
			},
			[]string{"status"},
		),
		filesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_launcher_files_total",
				Help: "Manifest files processed, by action",
			},
			[]string{"action"},
		),
		bytesDownloaded: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "client_launcher_bytes_written_total",
				Help: "Total decompressed bytes written to the cache",
			},
		),
		fileDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "client_launcher_file_sync_duration_seconds",
				Help:    "Time to synchronize one manifest file",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"action"},
		),
		launches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "client_launcher_launches_total",
				Help: "Client launch attempts",
			},
			[]string{"status"},
		),
		lastRun: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "client_launcher_last_run_timestamp_seconds",
				Help: "Unix time of the last completed run",
			},
		),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// ConfigLoaded records a config load outcome.
func (r *Recorder) ConfigLoaded(err error) {
	if r == nil {
		return
	}
	r.configLoads.WithLabelValues(status(err)).Inc()
}

// FileSynced records one manifest file; action is skipped, updated,
// downloaded or failed.
func (r *Recorder) FileSynced(action string, written int64, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.filesTotal.WithLabelValues(action).Inc()
	r.fileDuration.WithLabelValues(action).Observe(elapsed.Seconds())
	if written > 0 {
		r.bytesDownloaded.Add(float64(written))
	}
}

// Launched records a launch attempt.
func (r *Recorder) Launched(err error) {
	if r == nil {
		return
	}
	r.launches.WithLabelValues(status(err)).Inc()
}

// RunCompleted stamps the last run time.
func (r *Recorder) RunCompleted(at time.Time) {
	if r == nil {
		return
	}
	r.lastRun.Set(float64(at.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// WriteTextfile writes all metrics in text exposition format to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
