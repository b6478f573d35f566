package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ScopeOverall  = "overall"
	ScopeCategory = "category"
)

var (
	// RequestsTotal counts total requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_ledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// RequestDuration measures request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "budget_ledger_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "route"},
	)

	// TransactionEventsTotal counts ledger changes by event type.
	TransactionEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_ledger_transaction_events_total",
			Help: "Ledger changes observed by event type",
		},
		[]string{"event_type"},
	)

	// BudgetAnalysesTotal counts analysis runs by trigger (request, watcher).
	BudgetAnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_ledger_budget_analyses_total",
			Help: "Spending-vs-budget analyses computed",
		},
		[]string{"trigger"},
	)

	// BudgetExceededTotal counts allocations found over their cap.
	BudgetExceededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "budget_exceeded_total",
			Help: "Allocations found exceeded after a ledger change",
		},
		[]string{"scope"},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Instrument records request count and latency labelled by the matched chi
// route pattern, so ids in paths do not explode label cardinality.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		RequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		RequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
