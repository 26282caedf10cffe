package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by the CLI, the evaluator and the HTTP API.
type Metrics struct {
	GraphsGenerated prometheus.Counter
	Renders         *prometheus.CounterVec
	EvalInstances   *prometheus.CounterVec
	AnswerBatch     prometheus.Histogram
}

// New registers the collectors on reg. A nil reg leaves them unregistered,
// which is what tests and one-shot commands want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		GraphsGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stargraph",
			Name:      "graphs_generated_total",
			Help:      "Star graphs generated.",
		}),
		Renders: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stargraph",
			Name:      "renders_total",
			Help:      "Graphs rendered to context text, by strategy.",
		}, []string{"strategy"}),
		EvalInstances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stargraph",
			Name:      "eval_instances_total",
			Help:      "Evaluated latest-relation questions, by outcome.",
		}, []string{"outcome"}),
		AnswerBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stargraph",
			Name:      "answer_batch_seconds",
			Help:      "Time spent waiting on the answering model per batch.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12),
		}),
	}
	if reg != nil {
		reg.MustRegister(m.GraphsGenerated, m.Renders, m.EvalInstances, m.AnswerBatch)
	}
	return m
}

const (
	OutcomeCorrect = "correct"
	OutcomeWrong   = "wrong"
	OutcomeEmpty   = "empty"
)
