package metrics

import "github.com/prometheus/client_golang/prometheus"

// SweepMetrics records retention sweep outcomes per expiry bucket.
type SweepMetrics struct {
	processed      *prometheus.CounterVec
	destroyFailure prometheus.Counter
	rowFailure     prometheus.Counter
}

// NewSweepMetrics registers the sweep metrics on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sweep_rows_processed",
		Help: "Testimonials transitioned to deleted by the retention sweep.",
	}, []string{"bucket"})
	destroyFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_media_destroy_failures",
		Help: "Remote media destroy attempts that failed during sweeps.",
	})
	rowFailure := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sweep_row_failures",
		Help: "Candidate rows the sweep could not transition.",
	})
	reg.MustRegister(processed, destroyFailure, rowFailure)
	return &SweepMetrics{
		processed:      processed,
		destroyFailure: destroyFailure,
		rowFailure:     rowFailure,
	}
}

// IncProcessed increments the processed counter for the named bucket.
func (s *SweepMetrics) IncProcessed(bucket string) {
	if s == nil || s.processed == nil {
		return
	}
	s.processed.WithLabelValues(normalizeLabel(bucket)).Inc()
}

// IncDestroyFailure records a failed remote media destroy.
func (s *SweepMetrics) IncDestroyFailure() {
	if s == nil || s.destroyFailure == nil {
		return
	}
	s.destroyFailure.Inc()
}

// IncRowFailure records a candidate that could not be transitioned.
func (s *SweepMetrics) IncRowFailure() {
	if s == nil || s.rowFailure == nil {
		return
	}
	s.rowFailure.Inc()
}
