package flows

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// 发送工作流 Prometheus 指标
//
// 设计原则：
// - 仅暴露少量高价值指标，避免噪音；
// - 使用默认 Registry，方便通过 /metrics 统一抓取。

var (
	sendMetricsOnce sync.Once

	sendSearchesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ember",
		Subsystem: "send",
		Name:      "searches_total",
		Help:      "Total recipient fan-out searches dispatched by the send form.",
	})

	sendSearchesStaleDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ember",
		Subsystem: "send",
		Name:      "searches_stale_dropped_total",
		Help:      "Fan-out search results dropped because a newer search superseded them.",
	})

	sendsAttemptedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ember",
		Subsystem: "send",
		Name:      "submissions_attempted_total",
		Help:      "Transfer submissions started by the confirmation step.",
	})

	sendsSucceededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ember",
		Subsystem: "send",
		Name:      "submissions_succeeded_total",
		Help:      "Transfer submissions that produced a receipt.",
	})

	sendsFailedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "ember",
		Subsystem: "send",
		Name:      "submissions_failed_total",
		Help:      "Transfer submissions rejected by the node or the asset backend.",
	})

	sendsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "ember",
		Subsystem: "send",
		Name:      "submissions_in_flight",
		Help:      "Transfer submissions currently awaiting a receipt.",
	})
)

// RegisterMetrics 注册发送工作流指标（幂等）
func RegisterMetrics() {
	sendMetricsOnce.Do(func() {
		prometheus.MustRegister(
			sendSearchesTotal,
			sendSearchesStaleDropped,
			sendsAttemptedTotal,
			sendsSucceededTotal,
			sendsFailedTotal,
			sendsInFlight,
		)
	})
}
