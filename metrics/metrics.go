package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// AuditsTotal counts audit submissions by mode and outcome.
	AuditsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ectrl",
		Subsystem: "pipeline",
		Name:      "audits_total",
		Help:      "Total number of audit submissions, labeled by mode and result.",
	}, []string{"mode", "result"})

	// ScrapesTotal counts scrape attempts by strategy and error code.
	ScrapesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ectrl",
		Subsystem: "pipeline",
		Name:      "scrapes_total",
		Help:      "Total number of product scrape attempts, labeled by strategy and outcome code.",
	}, []string{"strategy", "code"})

	// AnalysisDurationSeconds is the wall time of one model call, including parsing.
	AnalysisDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ectrl",
		Subsystem: "pipeline",
		Name:      "analysis_duration_seconds",
		Help:      "Time to run one analysis request against the model, labeled by mode.",
		// Keep buckets fairly coarse to avoid high-cardinality time series.
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 60, 120},
	}, []string{"mode"})

	// EmailDispatchesTotal counts delivery attempts by kind and outcome.
	EmailDispatchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ectrl",
		Subsystem: "pipeline",
		Name:      "email_dispatches_total",
		Help:      "Total number of e-mail dispatch attempts, labeled by kind (welcome/report) and result.",
	}, []string{"kind", "result"})

	// SuggestionsTotal counts suggestion requests by type and outcome.
	SuggestionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ectrl",
		Subsystem: "pipeline",
		Name:      "suggestions_total",
		Help:      "Total number of content suggestion requests, labeled by type and result.",
	}, []string{"type", "result"})

	// BotRejectionsTotal counts requests refused by the bot heuristic gate.
	BotRejectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ectrl",
		Subsystem: "pipeline",
		Name:      "bot_rejections_total",
		Help:      "Total number of requests rejected by the bot heuristic before any external call.",
	})
)

// Register registers pipeline metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			AuditsTotal,
			ScrapesTotal,
			AnalysisDurationSeconds,
			EmailDispatchesTotal,
			SuggestionsTotal,
			BotRejectionsTotal,
		)
	})
}
