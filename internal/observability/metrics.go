package observability

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Lewis310/lewishealthapplication/internal/errors"
)

// Surfaces that run the pipeline.
const (
	SurfaceCLI = "cli"
	SurfaceWeb = "web"
	SurfaceMCP = "mcp"
)

var (
	pipelineRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "healthreport",
		Subsystem: "pipeline",
		Name:      "runs_total",
		Help:      "Report pipeline runs by surface and outcome (ok or lower-case error code).",
	}, []string{"surface", "outcome"})

	pipelineDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "healthreport",
		Subsystem: "pipeline",
		Name:      "duration_seconds",
		Help:      "Wall time of a report pipeline run.",
		Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
	}, []string{"surface"})

	pipelineRows = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "healthreport",
		Subsystem: "pipeline",
		Name:      "rows",
		Help:      "Rows in the merged table of a successful run.",
		Buckets:   []float64{1, 7, 31, 90, 365, 1000, 10000, 100000},
	}, []string{"surface"})

	artifactsStored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthreport",
		Name:      "artifacts_stored",
		Help:      "Reports currently held in the session store.",
	})

	lastReportGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "healthreport",
		Subsystem: "pipeline",
		Name:      "last_report_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful report.",
	})
)

func init() {
	prometheus.MustRegister(pipelineRuns, pipelineDuration, pipelineRows, artifactsStored, lastReportGauge)
}

// RecordRun records one pipeline run. rows is ignored when err is not nil.
func RecordRun(surface string, started time.Time, rows int, err error) {
	pipelineDuration.WithLabelValues(surface).Observe(time.Since(started).Seconds())
	pipelineRuns.WithLabelValues(surface, Outcome(err)).Inc()
	if err != nil {
		return
	}
	pipelineRows.WithLabelValues(surface).Observe(float64(rows))
	lastReportGauge.Set(float64(time.Now().Unix()))
}

// SetArtifactsStored updates the store size gauge.
func SetArtifactsStored(n int) {
	artifactsStored.Set(float64(n))
}

// Outcome maps an error to the outcome label.
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	return strings.ToLower(string(errors.As(err).Code))
}
