package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes reported by ObserveRun.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder holds the API's Prometheus collectors. A nil *Recorder is valid
// and records nothing.
type Recorder struct {
	requests *prometheus.CounterVec
	runs     *prometheus.CounterVec
	steps    prometheus.Counter
	duration prometheus.Histogram
}

// New registers the collectors on reg. If reg is nil, the default registerer
// is used. Collectors that are already registered are reused.
func New(reg prometheus.Registerer) (*Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mgsim_http_requests_total",
		Help: "HTTP requests handled, by route and status",
	}, []string{"method", "route", "status"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "mgsim_simulation_runs_total",
		Help: "Simulation runs, by outcome",
	}, []string{"outcome"})
	steps := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "mgsim_simulation_steps_total",
		Help: "Timesteps simulated by successful runs",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "mgsim_simulation_duration_seconds",
		Help:    "Wall time of a single simulation run",
		Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
	})

	var err error
	if requests, err = register(reg, requests); err != nil {
		return nil, err
	}
	if runs, err = register(reg, runs); err != nil {
		return nil, err
	}
	if steps, err = register(reg, steps); err != nil {
		return nil, err
	}
	if duration, err = register(reg, duration); err != nil {
		return nil, err
	}
	return &Recorder{requests: requests, runs: runs, steps: steps, duration: duration}, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// ObserveRequest counts one HTTP request. route should be the matched route
// pattern, not the raw path.
func (r *Recorder) ObserveRequest(method, route string, status int) {
	if r == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
}

// ObserveRun records one simulation run. steps is ignored for failed runs.
func (r *Recorder) ObserveRun(elapsed time.Duration, steps int, err error) {
	if r == nil {
		return
	}
	if err != nil {
		r.runs.WithLabelValues(OutcomeFailed).Inc()
		return
	}
	r.runs.WithLabelValues(OutcomeOK).Inc()
	r.steps.Add(float64(steps))
	r.duration.Observe(elapsed.Seconds())
}
