// Package metrics is the pipeline's side-effect sink. Workers record into
// an injected Metrics value; nothing registers against a global registry.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the pipeline's instruments on one registry.
type Metrics struct {
	Registry *prometheus.Registry

	TxsSubmittedTotal     prometheus.Counter
	TxsConfirmedTotal     *prometheus.CounterVec
	WorkerJobsPending     *prometheus.GaugeVec
	ReconcilerRetries     prometheus.Counter
	DeadLetteredTotal     prometheus.Counter
	RoundResolutionsTotal prometheus.Counter
	RoundResolutionErrors prometheus.Counter
}

// New creates and registers the pipeline metrics.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		TxsSubmittedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txs_submitted_total",
			Help: "Total payout transactions submitted to the chain.",
		}),
		TxsConfirmedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "txs_confirmed_total",
			Help: "Total payout transactions reaching a terminal status, by status.",
		}, []string{"status"}),
		WorkerJobsPending: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "worker_jobs_pending",
			Help: "Pending transactions seen by the last worker batch, by job type.",
		}, []string{"job_type"}),
		ReconcilerRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reconciler_retries_total",
			Help: "Confirmation deliveries rescheduled because the chain still reported pending.",
		}),
		DeadLetteredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "txs_dead_lettered_total",
			Help: "Transactions dead-lettered after exhausting confirmation attempts.",
		}),
		RoundResolutionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "round_resolutions_total",
			Help: "Total round resolutions.",
		}),
		RoundResolutionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "round_resolution_errors_total",
			Help: "Total failed round resolutions.",
		}),
	}

	m.Registry.MustRegister(
		m.TxsSubmittedTotal,
		m.TxsConfirmedTotal,
		m.WorkerJobsPending,
		m.ReconcilerRetries,
		m.DeadLetteredTotal,
		m.RoundResolutionsTotal,
		m.RoundResolutionErrors,
	)
	return m
}
