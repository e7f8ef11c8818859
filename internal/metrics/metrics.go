package metrics

import (
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

const namespace = "stfc"

// Recorder collects evaluation counts, durations and dropped terms per model.
// It satisfies stfc.Observer.
type Recorder struct {
	evaluations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	skipped     *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its collectors with reg
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of completed likelihood evaluations.",
		}, []string{"model"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "evaluation_duration_seconds",
			Help:      "Wall time of one likelihood evaluation.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 12),
		}, []string{"model"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guarded_terms_total",
			Help:      "Per-observation terms clamped (occurrence) or dropped as non-finite (joint).",
		}, []string{"model"}),
	}

	for _, c := range []prometheus.Collector{r.evaluations, r.duration, r.skipped} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return r, nil
}

// ObserveEvaluation records one finished evaluation
func (r *Recorder) ObserveEvaluation(model string, duration time.Duration, skipped int) {
	r.evaluations.WithLabelValues(model).Inc()
	r.duration.WithLabelValues(model).Observe(duration.Seconds())
	if skipped > 0 {
		r.skipped.WithLabelValues(model).Add(float64(skipped))
	}
}

// WriteText writes every non-empty metric family gathered from g in the
// Prometheus text format
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if !hasSamples(mf) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metric family %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func hasSamples(mf *dto.MetricFamily) bool {
	return mf != nil && len(mf.GetMetric()) > 0
}
