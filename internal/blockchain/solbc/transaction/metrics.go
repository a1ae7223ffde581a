// internal/blockchain/solbc/transaction/metrics.go
package transaction

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	sentCounter       prometheus.Counter
	confirmedCounter  prometheus.Counter
	failureCounter    *prometheus.CounterVec
	durationHistogram prometheus.Histogram
}

// NewMetrics создаёт метрики и регистрирует их в reg (если reg не nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		sentCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nft_mint_tx_sent_total",
			Help: "Total number of transactions submitted",
		}),
		confirmedCounter: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nft_mint_tx_confirmed_total",
			Help: "Total number of confirmed transactions",
		}),
		failureCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nft_mint_tx_failure_total",
			Help: "Total number of failed transactions by reason",
		}, []string{"reason"}),
		durationHistogram: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nft_mint_tx_duration_seconds",
			Help:    "Time from submission to confirmation in seconds",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.sentCounter, m.confirmedCounter, m.failureCounter, m.durationHistogram)
	}
	return m
}

func (m *Metrics) TrackTransaction(start time.Time) {
	m.durationHistogram.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncSent() { m.sentCounter.Inc() }

func (m *Metrics) IncConfirmed() { m.confirmedCounter.Inc() }

// IncFailure учитывает неудачу: validation, send, failed, timeout.
func (m *Metrics) IncFailure(reason string) {
	m.failureCounter.WithLabelValues(reason).Inc()
}
