// Package metrics records Prometheus metrics about a scoring run. A run is a
// batch job, so metrics are exported once to a node-exporter textfile rather
// than served over HTTP.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcomes.
const (
	OutcomeParsed  = "parsed"
	OutcomeCorrupt = "corrupt"
)

// Reasons a team is left out of a trial's scores.
const (
	ReasonNoRun  = "no_run"
	ReasonNoCost = "no_cost"
)

// Recorder owns a private registry. A nil *Recorder is valid and records
// nothing.
type Recorder struct {
	namespace string
	buckets   []float64
	registry  *prometheus.Registry

	attempts        *prometheus.CounterVec
	excluded        *prometheus.CounterVec
	trialScore      *prometheus.GaugeVec
	trialsScored    prometheus.Counter
	scoringDuration prometheus.Histogram
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithNamespace sets the metric namespace.
func WithNamespace(ns string) Option {
	return func(r *Recorder) {
		if ns != "" {
			r.namespace = ns
		}
	}
}

// WithHistogramBuckets overrides the scoring latency buckets, in seconds.
func WithHistogramBuckets(buckets []float64) Option {
	return func(r *Recorder) {
		if len(buckets) > 0 {
			r.buckets = buckets
		}
	}
}

func New(opts ...Option) *Recorder {
	r := &Recorder{
		namespace: "scorekeeper",
		buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		registry:  prometheus.NewRegistry(),
	}
	for _, opt := range opts {
		opt(r)
	}

	auto := promauto.With(r.registry)
	r.attempts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "attempts_total",
		Help:      "Attempt folders ranked, by whether their trial log parsed.",
	}, []string{"outcome"})
	r.excluded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "excluded_teams_total",
		Help:      "Teams left out of a trial's scores, by reason.",
	}, []string{"trial", "reason"})
	r.trialScore = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: r.namespace,
		Name:      "trial_score",
		Help:      "Normalized score of a team in a trial.",
	}, []string{"trial", "team"})
	r.trialsScored = auto.NewCounter(prometheus.CounterOpts{
		Namespace: r.namespace,
		Name:      "trials_scored_total",
		Help:      "Trials scored.",
	})
	r.scoringDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: r.namespace,
		Name:      "trial_scoring_duration_seconds",
		Help:      "Time spent scoring one trial.",
		Buckets:   r.buckets,
	})
	return r
}

func (r *Recorder) Attempt(outcome string) {
	if r == nil {
		return
	}
	r.attempts.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Excluded(trial, reason string) {
	if r == nil {
		return
	}
	r.excluded.WithLabelValues(trial, reason).Inc()
}

func (r *Recorder) TrialScore(trial, team string, score float64) {
	if r == nil {
		return
	}
	r.trialScore.WithLabelValues(trial, team).Set(score)
}

// TrialScored counts a finished trial and observes how long it took.
func (r *Recorder) TrialScored(d time.Duration) {
	if r == nil {
		return
	}
	r.trialsScored.Inc()
	r.scoringDuration.Observe(d.Seconds())
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteToTextfile writes every metric to path in the text exposition format.
func (r *Recorder) WriteToTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
