package observability

import (
	"context"

	"github.com/aretw0/prologue/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records sequencer activity as Prometheus collectors.
type Metrics struct {
	Steps        *prometheus.CounterVec
	StepDuration *prometheus.HistogramVec
	Outcomes     *prometheus.CounterVec
	Ticks        prometheus.Counter
	Failures     *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prologue_steps_total",
				Help: "Total number of completed sequencer steps",
			},
			[]string{"kind"},
		),
		StepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "prologue_step_duration_seconds",
				Help:    "Duration of sequencer steps",
				Buckets: []float64{.001, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"kind"},
		),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prologue_transition_outcomes_total",
				Help: "Fade races by winning source",
			},
			[]string{"outcome"},
		),
		Ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prologue_reveal_ticks_total",
			Help: "Total number of text snapshots written by reveals",
		}),
		Failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "prologue_step_failures_total",
				Help: "Steps that aborted a run",
			},
			[]string{"kind"},
		),
	}
	reg.MustRegister(m.Steps, m.StepDuration, m.Outcomes, m.Ticks, m.Failures)
	return m
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepEnd: func(_ context.Context, e *domain.StepEvent) {
			kind := string(e.Kind)
			if e.Err != nil {
				m.Failures.WithLabelValues(kind).Inc()
				return
			}
			m.Steps.WithLabelValues(kind).Inc()
			m.StepDuration.WithLabelValues(kind).Observe(e.Duration.Seconds())
		},
		OnTick: func(context.Context, *domain.TickEvent) {
			m.Ticks.Inc()
		},
		OnTransitionResolved: func(_ context.Context, e *domain.TransitionEvent) {
			m.Outcomes.WithLabelValues(e.Outcome.String()).Inc()
		},
	}
}
