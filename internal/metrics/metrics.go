// Package metrics records run, autosave and watcher activity in Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/debemdeboas/texpad/internal/compile"
)

// PrometheusRecorder implements compile.Recorder and observes autosaves and watcher events.
type PrometheusRecorder struct {
	gatherer prometheus.Gatherer

	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	runsInFlight  *prometheus.GaugeVec
	autosaveTotal *prometheus.CounterVec
	watchTotal    *prometheus.CounterVec
}

// NewPrometheusRecorder registers its collectors with reg. Passing nil uses a fresh registry,
// which keeps tests and multiple instances independent.
func NewPrometheusRecorder(reg *prometheus.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &PrometheusRecorder{
		gatherer: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "texpad_runs_total",
				Help: "Compile and export runs by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "texpad_run_duration_seconds",
				Help:    "Time from request to applied outcome",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"action"},
		),
		runsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "texpad_runs_in_flight",
				Help: "Runs waiting on the typesetting service",
			},
			[]string{"action"},
		),
		autosaveTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "texpad_autosaves_total",
				Help: "Draft writes by result",
			},
			[]string{"result"},
		),
		watchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "texpad_watch_events_total",
				Help: "Watched file changes by what was done with them",
			},
			[]string{"result"},
		),
	}
}

func (p *PrometheusRecorder) RunStarted(action compile.Action) {
	p.runsInFlight.WithLabelValues(action.String()).Inc()
}

func (p *PrometheusRecorder) RunFinished(action compile.Action, outcome compile.Outcome, elapsed time.Duration) {
	p.runsInFlight.WithLabelValues(action.String()).Dec()
	p.runsTotal.WithLabelValues(action.String(), string(outcome)).Inc()
	if outcome != compile.OutcomeStale {
		p.runDuration.WithLabelValues(action.String()).Observe(elapsed.Seconds())
	}
}

// ObserveAutosave fits editor.SaveObserver.
func (p *PrometheusRecorder) ObserveAutosave(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	p.autosaveTotal.WithLabelValues(result).Inc()
}

// ObserveWatch counts a watcher event. result is one of "synced", "compiled", "throttled" or
// "error".
func (p *PrometheusRecorder) ObserveWatch(result string) {
	p.watchTotal.WithLabelValues(result).Inc()
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})
}
