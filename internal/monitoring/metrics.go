package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	BillsGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bills_generated_total",
			Help: "Total number of bills created by the monthly cycle",
		},
	)
	BillsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bills_skipped_total",
			Help: "Total number of leases skipped during generation by reason",
		},
		[]string{"reason"},
	)
	LateFeesApplied = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "late_fees_applied_total",
			Help: "Total number of late-fee line items appended",
		},
	)
	PaymentsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_recorded_total",
			Help: "Total number of payment attempts recorded by submitter role",
		},
		[]string{"role"},
	)
	CycleFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "billing_cycle_failures_total",
			Help: "Total number of billing cycles that failed outright",
		},
	)
	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "billing_cycle_duration_seconds",
			Help:    "Duration of a monthly billing cycle in seconds",
			Buckets: prometheus.LinearBuckets(0, 1, 10),
		},
	)
)

func InitMetrics() {
	collectors := []prometheus.Collector{
		BillsGenerated, BillsSkipped, LateFeesApplied, PaymentsRecorded,
		CycleFailures, CycleDuration,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			log.Error().Err(err).Msg("Failed to register metric")
		}
	}
}
