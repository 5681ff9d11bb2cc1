package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_pipeline_runs_total",
		Help: "Pipeline runs by outcome",
	}, []string{"outcome"})

	PipelineDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "studio_pipeline_duration_seconds",
		Help:    "Wall time of a full pipeline run",
		Buckets: prometheus.DefBuckets,
	})

	PipelineProgress = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "studio_pipeline_progress_percent",
		Help: "Last reported progress of the running pipeline",
	})

	InputRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_input_rows_total",
		Help: "Rows read per input role",
	}, []string{"role"})

	ClientsExcluded = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studio_clients_excluded_total",
		Help: "New visitors left out by the exclusion rule",
	})

	ClientsUnlinked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studio_clients_unlinked_total",
		Help: "New visitors whose first visit matched no booking",
	})

	GroupsComputed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studio_groups_computed_total",
		Help: "Teacher x location x period groups with results",
	})

	GroupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "studio_group_failures_total",
		Help: "Groups skipped after a computation failure",
	})

	RemoteFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "studio_remote_fetch_total",
		Help: "Remote CSV export fetches by outcome",
	}, []string{"outcome"})
)
