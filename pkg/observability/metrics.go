package observability

import (
	"context"
	"strconv"

	"github.com/flxbl-dev/kickass-cms-sub000/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors of the content domain layer.
type Metrics struct {
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Transitions     *prometheus.CounterVec
	BlocksSaved     prometheus.Counter
	Revisions       prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg registers with the default Prometheus registry.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cms_remote_requests_total",
				Help: "Total number of requests sent to the remote store",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cms_remote_request_duration_seconds",
				Help:    "Latency of requests sent to the remote store",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cms_workflow_transitions_total",
				Help: "Total number of workflow state transitions",
			},
			[]string{"from", "to"},
		),
		BlocksSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cms_block_saves_total",
			Help: "Total number of block list saves",
		}),
		Revisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "cms_revisions_created_total",
			Help: "Total number of revisions created",
		}),
	}

	for _, c := range []prometheus.Collector{m.Requests, m.RequestDuration, m.Transitions, m.BlocksSaved, m.Revisions} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnRequest: func(_ context.Context, e *domain.RequestEvent) {
			status := strconv.Itoa(e.Status)
			if e.Status == 0 {
				status = "error"
			}
			m.Requests.WithLabelValues(e.Method, e.Route, status).Inc()
			m.RequestDuration.WithLabelValues(e.Method, e.Route).Observe(e.Duration.Seconds())
		},
		OnTransition: func(_ context.Context, e *domain.TransitionEvent) {
			from := e.From
			if from == "" {
				from = "none"
			}
			m.Transitions.WithLabelValues(from, e.To).Inc()
		},
		OnBlocksSaved: func(context.Context, *domain.ContentEvent) {
			m.BlocksSaved.Inc()
		},
		OnRevisionCreated: func(context.Context, *domain.ContentEvent) {
			m.Revisions.Inc()
		},
	}
}
