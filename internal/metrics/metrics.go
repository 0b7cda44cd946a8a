package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	GatewayInitTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment",
			Subsystem: "gateway",
			Name:      "init_total",
			Help:      "Payment link requests sent to the gateway, by result.",
		},
		[]string{"provider", "result"},
	)

	GatewayInitDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "payment",
			Subsystem: "gateway",
			Name:      "init_duration_seconds",
			Help:      "Latency of payment link requests.",
			Buckets:   []float64{0.05, 0.1, 0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5, 10, 30},
		},
		[]string{"provider"},
	)

	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "payment",
			Name:      "notifications_total",
			Help:      "Gateway notifications received, by outcome.",
		},
		[]string{"provider", "result"},
	)
)

const provider = "tinkoff"

func init() {
	prometheus.MustRegister(GatewayInitTotal, GatewayInitDuration, NotificationsTotal)
}

func ObserveInit(result string, took time.Duration) {
	GatewayInitTotal.WithLabelValues(provider, result).Inc()
	GatewayInitDuration.WithLabelValues(provider).Observe(took.Seconds())
}

func ObserveNotification(result string) {
	NotificationsTotal.WithLabelValues(provider, result).Inc()
}
