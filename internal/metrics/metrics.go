// Package metrics exposes ledger state and operation outcomes to Prometheus.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledger/internal/core"
	"ledger/internal/ledger"
)

// Outcome label values of ledger_operations_total.
const (
	OutcomeSuccess    = "success"
	OutcomeValidation = "validation_error"
	OutcomeDuplicate  = "duplicate"
	OutcomeNotFound   = "not_found"
	OutcomeError      = "error"
)

// Recorder is a ledger.Observer backed by its own registry.
type Recorder struct {
	registry *prometheus.Registry

	operations   *prometheus.CounterVec
	balance      prometheus.Gauge
	transactions prometheus.Gauge
	categories   prometheus.Gauge

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

var _ ledger.Observer = (*Recorder)(nil)

// NewRecorder registers the ledger collectors, plus the Go and process
// collectors when withRuntime is set.
func NewRecorder(withRuntime bool) *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_operations_total",
			Help: "Ledger operation attempts by operation and outcome.",
		}, []string{"op", "outcome"}),
		balance: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_balance_cents",
			Help: "Current balance in cents.",
		}),
		transactions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_transactions",
			Help: "Number of recorded transactions.",
		}),
		categories: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ledger_categories",
			Help: "Number of categories offered.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
	r.registry.MustRegister(r.operations, r.balance, r.transactions, r.categories, r.httpRequests, r.httpDuration)
	if withRuntime {
		r.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return r
}

// LedgerChanged counts the attempt and refreshes the state gauges.
func (r *Recorder) LedgerChanged(_ context.Context, ev ledger.Event) {
	r.operations.WithLabelValues(string(ev.Op), Outcome(ev.Err)).Inc()
	r.SetState(ev.State)
}

// SetState sets the gauges from a snapshot, e.g. right after restore.
func (r *Recorder) SetState(snap ledger.Snapshot) {
	r.balance.Set(float64(snap.Balance.Cents))
	r.transactions.Set(float64(len(snap.Transactions)))
	r.categories.Set(float64(len(snap.Categories)))
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Outcome classifies an operation error for the outcome label.
func Outcome(err error) string {
	var nf *core.NotFoundError
	switch {
	case err == nil:
		return OutcomeSuccess
	case core.IsValidation(err):
		return OutcomeValidation
	case core.IsDuplicate(err):
		return OutcomeDuplicate
	case errors.As(err, &nf):
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
