// Package metrics holds the Prometheus instruments of the dictation pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vox"

// Metrics is safe to use as a nil pointer; every recorder is then a no-op.
type Metrics struct {
	SessionsStarted    prometheus.Counter
	SessionsStopped    *prometheus.CounterVec
	WindowsSent        prometheus.Counter
	RecognitionResults *prometheus.CounterVec
	RecognitionErrors  prometheus.Counter
	RecognitionLatency prometheus.Histogram
	StaleResults       prometheus.Counter

	CacheLookups        *prometheus.CounterVec
	Translations        *prometheus.CounterVec
	TranslationFailures prometheus.Counter

	OutputsEmitted *prometheus.CounterVec
	OutputFailures *prometheus.CounterVec
}

// New creates the instruments and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_started_total",
			Help:      "Total number of listening sessions started",
		}),
		SessionsStopped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_stopped_total",
			Help:      "Total number of listening sessions stopped",
		}, []string{"reason"}),
		WindowsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_windows_sent_total",
			Help:      "Total number of audio windows sent to the recognizer",
		}),
		RecognitionResults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_results_total",
			Help:      "Recognition results by kind",
		}, []string{"kind"}),
		RecognitionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_errors_total",
			Help:      "Total number of failed recognition calls",
		}),
		RecognitionLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "recognition_latency_seconds",
			Help:      "Latency of recognition calls",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		}),
		StaleResults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recognition_stale_results_total",
			Help:      "Final results dropped because a newer window was already delivered",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_cache_lookups_total",
			Help:      "Translation cache lookups by outcome",
		}, []string{"outcome"}),
		Translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Computed translations by mode",
		}, []string{"mode"}),
		TranslationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_failures_total",
			Help:      "Remote translation calls that fell back to passthrough",
		}),
		OutputsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outputs_emitted_total",
			Help:      "Texts delivered to output sinks",
		}, []string{"sink"}),
		OutputFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "output_failures_total",
			Help:      "Failed output sink deliveries",
		}, []string{"sink"}),
	}
	if reg != nil {
		reg.MustRegister(
			m.SessionsStarted,
			m.SessionsStopped,
			m.WindowsSent,
			m.RecognitionResults,
			m.RecognitionErrors,
			m.RecognitionLatency,
			m.StaleResults,
			m.CacheLookups,
			m.Translations,
			m.TranslationFailures,
			m.OutputsEmitted,
			m.OutputFailures,
		)
	}
	return m
}

func (m *Metrics) RecordSessionStarted() {
	if m == nil {
		return
	}
	m.SessionsStarted.Inc()
}

func (m *Metrics) RecordSessionStopped(reason string) {
	if m == nil {
		return
	}
	m.SessionsStopped.WithLabelValues(reason).Inc()
}

func (m *Metrics) RecordWindowSent() {
	if m == nil {
		return
	}
	m.WindowsSent.Inc()
}

func (m *Metrics) RecordRecognition(kind string, err error, seconds float64) {
	if m == nil {
		return
	}
	m.RecognitionLatency.Observe(seconds)
	if err != nil {
		m.RecognitionErrors.Inc()
		return
	}
	m.RecognitionResults.WithLabelValues(kind).Inc()
}

func (m *Metrics) RecordStaleResult() {
	if m == nil {
		return
	}
	m.StaleResults.Inc()
}

func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordTranslation(mode string) {
	if m == nil {
		return
	}
	m.Translations.WithLabelValues(mode).Inc()
}

func (m *Metrics) RecordTranslationFailure() {
	if m == nil {
		return
	}
	m.TranslationFailures.Inc()
}

func (m *Metrics) RecordOutput(sink string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.OutputFailures.WithLabelValues(sink).Inc()
		return
	}
	m.OutputsEmitted.WithLabelValues(sink).Inc()
}
