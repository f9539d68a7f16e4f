package prometheus

import (
	"errors"
	"fmt"

	"github.com/abczzz13/edgetrust"
	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusMetrics is a Prometheus-backed implementation of edgetrust.Metrics.
type PrometheusMetrics struct {
	loadTotal       *prom.CounterVec
	rangesLoaded    *prom.GaugeVec
	decisionsTotal  *prom.CounterVec
	rewriteFailures prom.Counter
}

// WithMetrics returns an edgetrust option that installs Prometheus-backed
// metrics using prom.DefaultRegisterer.
func WithMetrics() edgetrust.Option {
	return withMetricsFactory(New)
}

// WithRegisterer returns an edgetrust option that installs Prometheus-backed
// metrics using the provided registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used.
func WithRegisterer(registerer prom.Registerer) edgetrust.Option {
	return withMetricsFactory(func() (*PrometheusMetrics, error) {
		return NewWithRegisterer(registerer)
	})
}

// withMetricsFactory adapts a PrometheusMetrics constructor into an
// edgetrust.Option. Registration is deferred until the rest of the
// configuration has been validated.
func withMetricsFactory(factory func() (*PrometheusMetrics, error)) edgetrust.Option {
	return edgetrust.WithMetricsFactory(func() (edgetrust.Metrics, error) {
		metrics, err := factory()
		if err != nil {
			return nil, err
		}
		return metrics, nil
	})
}

// New creates PrometheusMetrics and registers its collectors on
// prom.DefaultRegisterer.
func New() (*PrometheusMetrics, error) {
	return NewWithRegisterer(prom.DefaultRegisterer)
}

// NewWithRegisterer creates PrometheusMetrics and registers its collectors on
// the given registerer.
//
// If registerer is nil, prom.DefaultRegisterer is used. If the metrics are
// already registered, existing compatible collectors are reused.
func NewWithRegisterer(registerer prom.Registerer) (*PrometheusMetrics, error) {
	if registerer == nil {
		registerer = prom.DefaultRegisterer
	}

	loadTotal, err := register(registerer, prom.NewCounterVec(
		prom.CounterOpts{
			Name: "edgetrust_range_load_total",
			Help: "Trusted range load runs by result (success, fetch_error, parse_error, cancelled).",
		},
		[]string{"result"},
	), "edgetrust_range_load_total")
	if err != nil {
		return nil, err
	}

	rangesLoaded, err := register(registerer, prom.NewGaugeVec(
		prom.GaugeOpts{
			Name: "edgetrust_trusted_ranges",
			Help: "Number of published trusted ranges by address family.",
		},
		[]string{"family"},
	), "edgetrust_trusted_ranges")
	if err != nil {
		return nil, err
	}

	decisionsTotal, err := register(registerer, prom.NewCounterVec(
		prom.CounterOpts{
			Name: "edgetrust_decisions_total",
			Help: "Per-request trust decisions by reason.",
		},
		[]string{"reason"},
	), "edgetrust_decisions_total")
	if err != nil {
		return nil, err
	}

	rewriteFailures, err := register(registerer, prom.NewCounter(
		prom.CounterOpts{
			Name: "edgetrust_rewrite_failures_total",
			Help: "Forwarded header values from trusted peers that could not be applied.",
		},
	), "edgetrust_rewrite_failures_total")
	if err != nil {
		return nil, err
	}

	return &PrometheusMetrics{
		loadTotal:       loadTotal,
		rangesLoaded:    rangesLoaded,
		decisionsTotal:  decisionsTotal,
		rewriteFailures: rewriteFailures,
	}, nil
}

func register[C prom.Collector](registerer prom.Registerer, collector C, metricName string) (C, error) {
	if err := registerer.Register(collector); err != nil {
		var alreadyRegistered prom.AlreadyRegisteredError
		if errors.As(err, &alreadyRegistered) {
			existing, ok := alreadyRegistered.ExistingCollector.(C)
			if ok {
				return existing, nil
			}
			var zero C
			return zero, fmt.Errorf("metric %q already registered with incompatible collector type %T", metricName, alreadyRegistered.ExistingCollector)
		}

		var zero C
		return zero, fmt.Errorf("register metric %q: %w", metricName, err)
	}

	return collector, nil
}

// RecordLoad increments edgetrust_range_load_total for the provided result.
func (m *PrometheusMetrics) RecordLoad(result string) {
	m.loadTotal.WithLabelValues(result).Inc()
}

// RecordRangesLoaded sets edgetrust_trusted_ranges for the provided family.
func (m *PrometheusMetrics) RecordRangesLoaded(family string, count int) {
	m.rangesLoaded.WithLabelValues(family).Set(float64(count))
}

// RecordDecision increments edgetrust_decisions_total for the provided
// reason.
func (m *PrometheusMetrics) RecordDecision(reason string) {
	m.decisionsTotal.WithLabelValues(reason).Inc()
}

// RecordRewriteFailure increments edgetrust_rewrite_failures_total.
func (m *PrometheusMetrics) RecordRewriteFailure() {
	m.rewriteFailures.Inc()
}
