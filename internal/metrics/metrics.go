// Package metrics exposes game and HTTP counters for Prometheus.
//
// Each Metrics owns its registry, so several servers (tests) can coexist
// in one process.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	reg *prometheus.Registry

	gamesCreated  prometheus.Counter
	attempts      *prometheus.CounterVec
	gamesFinished *prometheus.CounterVec

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		gamesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wordle_games_created_total",
			Help: "Games created.",
		}),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordle_attempts_total",
			Help: "Guesses recorded, by whether they solved the game.",
		}, []string{"solved"}),
		gamesFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wordle_games_finished_total",
			Help: "Games that reached a terminal state, by outcome.",
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
		}, []string{"method", "route"}),
	}
	m.reg.MustRegister(
		m.gamesCreated, m.attempts, m.gamesFinished, m.requests, m.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// GameCreated, AttemptRecorded and GameFinished satisfy service.Observer.
func (m *Metrics) GameCreated() { m.gamesCreated.Inc() }

func (m *Metrics) AttemptRecorded(solved bool) {
	m.attempts.WithLabelValues(strconv.FormatBool(solved)).Inc()
}

func (m *Metrics) GameFinished(won bool) {
	outcome := "lost"
	if won {
		outcome = "won"
	}
	m.gamesFinished.WithLabelValues(outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// Middleware records request count and latency per chi route pattern.
// Unmatched paths are grouped under "unmatched" to bound label cardinality.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.requests.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.duration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
