package bridge

import (
	"time"

	"github.com/dekho-agent/device-bridge/internal/channel"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts channel invocations and times identifier reads.
type Metrics struct {
	invocations  *prometheus.CounterVec
	readDuration *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "device_bridge",
			Name:      "invocations_total",
			Help:      "Method channel invocations by channel, method and outcome.",
		}, []string{"channel", "method", "outcome"}),
		readDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "device_bridge",
			Name:      "read_duration_seconds",
			Help:      "Duration of secure identifier reads by source and result.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"source", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.invocations, m.readDuration)
	}
	return m
}

// ObserveInvocation records the outcome of one method call. Unregistered method names
// share one label value.
func (m *Metrics) ObserveInvocation(channelName, method string, status channel.Status) {
	if m == nil {
		return
	}
	if status == channel.StatusNotImplemented {
		method = "unregistered"
	}
	m.invocations.WithLabelValues(channelName, method, string(status)).Inc()
}

func (m *Metrics) observeRead(source string, d time.Duration, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "failed"
	}
	m.readDuration.WithLabelValues(source, result).Observe(d.Seconds())
}
