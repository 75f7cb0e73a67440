package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Uploads           *prometheus.CounterVec
	RejectedRecords   *prometheus.CounterVec
	Allocations       *prometheus.CounterVec
	AllocationSeconds prometheus.Histogram
	Exports           *prometheus.CounterVec
	ActiveWorkspaces  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Uploads: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "examalloc_uploads_total",
			Help: "Total number of roster uploads by file kind and outcome.",
		}, []string{"kind", "status"}),
		RejectedRecords: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "examalloc_rejected_records_total",
			Help: "Total number of roster rows rejected for a malformed pincode.",
		}, []string{"kind"}),
		Allocations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "examalloc_allocations_total",
			Help: "Total number of allocation runs by mode and outcome.",
		}, []string{"mode", "status"}),
		AllocationSeconds: promauto.With(reg).NewHistogram(prometheus.HistogramOpts{
			Name:    "examalloc_allocation_duration_seconds",
			Help:    "Duration of allocation runs.",
			Buckets: prometheus.DefBuckets,
		}),
		Exports: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "examalloc_exports_total",
			Help: "Total number of exported files by format.",
		}, []string{"format"}),
		ActiveWorkspaces: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name: "examalloc_active_workspaces",
			Help: "Current number of workspaces held in memory.",
		}),
	}
}
