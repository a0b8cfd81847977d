// Package metrics объявляет метрики Prometheus сервиса парковки.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Результаты расчёта для метки result.
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics набор метрик расчёта стоимости и сессий.
type Metrics struct {
	FeeCalculations *prometheus.CounterVec
	FeeAmount       *prometheus.HistogramVec
	SessionsOpened  *prometheus.CounterVec
	SessionsClosed  *prometheus.CounterVec
	OverstayNotices prometheus.Counter
}

// New создаёт метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FeeCalculations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parking_fee_calculations_total",
				Help: "Total fee calculations by result",
			},
			[]string{"result"},
		),
		FeeAmount: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "parking_fee_amount",
				Help:    "Charged parking fee in currency units",
				Buckets: prometheus.ExponentialBuckets(1000, 2, 10),
			},
			[]string{"vehicle_category"},
		),
		SessionsOpened: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parking_sessions_opened_total",
				Help: "Total parking sessions opened at the entry gate",
			},
			[]string{"vehicle_category"},
		),
		SessionsClosed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "parking_sessions_closed_total",
				Help: "Total parking sessions closed at the exit gate",
			},
			[]string{"vehicle_category"},
		),
		OverstayNotices: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "parking_overstay_notices_total",
			Help: "Total overstay notices published",
		}),
	}
	reg.MustRegister(
		m.FeeCalculations,
		m.FeeAmount,
		m.SessionsOpened,
		m.SessionsClosed,
		m.OverstayNotices,
	)
	return m
}

// FeeCalculated учитывает успешный расчёт, включая предварительные.
func (m *Metrics) FeeCalculated() {
	m.FeeCalculations.WithLabelValues(ResultOK).Inc()
}

// FeeCharged учитывает сумму, списанную на выезде.
func (m *Metrics) FeeCharged(category string, total int64) {
	m.FeeAmount.WithLabelValues(category).Observe(float64(total))
}

// FeeFailed учитывает расчёт, завершившийся ошибкой.
func (m *Metrics) FeeFailed() {
	m.FeeCalculations.WithLabelValues(ResultError).Inc()
}
