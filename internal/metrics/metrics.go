package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rental_gateway"

// Metrics holds the gateway collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	submissions   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

func New(registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		submissions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "submissions_total",
				Help:      "Rental submissions by outcome.",
			},
			[]string{"transport", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Duration of queue transport stages.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"transport", "stage"},
		),
	}

	for _, collector := range []prometheus.Collector{m.submissions, m.stageDuration} {
		if err := registerer.Register(collector); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// Submission counts one finished submission. outcome is "success" or the
// failure kind.
func (m *Metrics) Submission(transport, outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(transport, outcome).Inc()
}

func (m *Metrics) Stage(transport, stage string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(transport, stage).Observe(duration.Seconds())
}
