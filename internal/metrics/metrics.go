package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	CyclesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmo_reconcile_cycles_total",
			Help: "Total number of reconciliation cycles started",
		},
	)

	CycleFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmo_reconcile_cycle_failures_total",
			Help: "Total number of cycles aborted because the pending snapshot could not be fetched",
		},
	)

	CyclesSkippedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmo_reconcile_cycles_skipped_total",
			Help: "Total number of ticks or triggers skipped because a cycle was still running",
		},
	)

	CycleDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cosmo_reconcile_cycle_duration_seconds",
			Help:    "Duration of reconciliation cycles",
			Buckets: prometheus.DefBuckets,
		},
	)

	OrdersDeliveredTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cosmo_orders_delivered_total",
			Help: "Total number of orders reported as delivered",
		},
	)

	ActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmo_actions_total",
			Help: "Total number of processed actions by outcome",
		},
		[]string{"outcome"},
	)

	ReportFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cosmo_store_report_failures_total",
			Help: "Total number of failed delivery, completion or expiry reports",
		},
		[]string{"report"},
	)
)

const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeExpired   = "expired"

	ReportDelivered = "delivered"
	ReportCompleted = "completed"
	ReportExpired   = "expired"
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(CyclesTotal)
	prometheus.MustRegister(CycleFailuresTotal)
	prometheus.MustRegister(CyclesSkippedTotal)
	prometheus.MustRegister(CycleDuration)
	prometheus.MustRegister(OrdersDeliveredTotal)
	prometheus.MustRegister(ActionsTotal)
	prometheus.MustRegister(ReportFailuresTotal)
}
