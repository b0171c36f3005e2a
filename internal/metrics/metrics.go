package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nerrad567/sensorbridge/internal/bridge"
)

const metricPrefix = "sensorbridge_"

// Metrics holds the bridge collectors and the registry they live on.
type Metrics struct {
	registry *prometheus.Registry

	messages         *prometheus.CounterVec
	samplesWritten   *prometheus.CounterVec
	appendErrors     *prometheus.CounterVec
	processing       prometheus.Histogram
	loopState        prometheus.Gauge
	connectionLosses prometheus.Counter
	reconnects       prometheus.Counter
}

// New creates and registers all collectors, including the Go runtime and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "messages_total",
				Help: "Inbound messages by handling result",
			},
			[]string{"result"},
		),
		samplesWritten: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "samples_written_total",
				Help: "Samples appended to the store by series key",
			},
			[]string{"series"},
		),
		appendErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "append_errors_total",
				Help: "Failed store appends by series key",
			},
			[]string{"series"},
		),
		processing: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    metricPrefix + "processing_seconds",
			Help:    "Time to decode and write one message",
			Buckets: prometheus.DefBuckets,
		}),
		loopState: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: metricPrefix + "loop_state",
			Help: "Subscription loop state (0 connecting, 1 subscribed, 2 receiving, 3 processing, 4 terminating)",
		}),
		connectionLosses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "connection_losses_total",
			Help: "Broker connection losses seen by the loop",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "reconnects_total",
			Help: "Successful broker reconnects",
		}),
	}

	m.registry.MustRegister(
		m.messages,
		m.samplesWritten,
		m.appendErrors,
		m.processing,
		m.loopState,
		m.connectionLosses,
		m.reconnects,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// SampleWritten implements series.Observer.
func (m *Metrics) SampleWritten(key string) {
	m.samplesWritten.WithLabelValues(key).Inc()
}

// AppendFailed implements series.Observer.
func (m *Metrics) AppendFailed(key string) {
	m.appendErrors.WithLabelValues(key).Inc()
}

// StateChanged implements bridge.Observer.
func (m *Metrics) StateChanged(state bridge.State) {
	m.loopState.Set(float64(state))
}

// MessageHandled implements bridge.Observer. Ignored messages are counted
// but not timed.
func (m *Metrics) MessageHandled(result bridge.Result, elapsed time.Duration) {
	m.messages.WithLabelValues(string(result)).Inc()
	if result != bridge.ResultIgnored {
		m.processing.Observe(elapsed.Seconds())
	}
}

// ConnectionLost implements bridge.Observer.
func (m *Metrics) ConnectionLost() {
	m.connectionLosses.Inc()
}

// Reconnected records a successful reconnect after a connection loss.
func (m *Metrics) Reconnected() {
	m.reconnects.Inc()
}
