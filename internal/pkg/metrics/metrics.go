/*
Package metrics exposes relay counters to Prometheus.

Collectors live on a dedicated registry so several servers (and tests) can
coexist in one process.
*/
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relaychat"

// Source supplies the live gauges. It is read on every scrape.
type Source interface {
	ActiveRooms() int
	BoundMembers() int
	OpenConnections() int
}

// Metrics holds the relay collectors.
type Metrics struct {
	registry *prometheus.Registry

	relayed    *prometheus.CounterVec
	throttled  *prometheus.CounterVec
	rejections *prometheus.CounterVec
	dropped    prometheus.Counter
}

// New registers the collectors. src may be nil, in which case the gauges are
// omitted.
func New(src Source) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		relayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_relayed_total",
			Help:      "Messages accepted and fanned out, by kind.",
		}, []string{"kind"}),
		throttled: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sends_throttled_total",
			Help:      "Sends refused by the per-room rate limiter, by kind.",
		}, []string{"kind"}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rejections_total",
			Help:      "Requests refused by the relay, by reason code.",
		}, []string{"code"}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_dropped_total",
			Help:      "Outbound frames dropped because a connection's send queue was full.",
		}),
	}
	reg.MustRegister(m.relayed, m.throttled, m.rejections, m.dropped)

	if src != nil {
		reg.MustRegister(
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "rooms_active",
				Help:      "Rooms with at least one member.",
			}, func() float64 { return float64(src.ActiveRooms()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "members_bound",
				Help:      "Connections that have joined a room.",
			}, func() float64 { return float64(src.BoundMembers()) }),
			prometheus.NewGaugeFunc(prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "connections_open",
				Help:      "Open websocket connections.",
			}, func() float64 { return float64(src.OpenConnections()) }),
		)
	}

	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Relayed counts one accepted message of kind.
func (m *Metrics) Relayed(kind string) {
	if m == nil {
		return
	}
	m.relayed.WithLabelValues(kind).Inc()
}

// Throttled counts one rate-limited send of kind.
func (m *Metrics) Throttled(kind string) {
	if m == nil {
		return
	}
	m.throttled.WithLabelValues(kind).Inc()
}

// Rejected counts one refusal with the given reason code.
func (m *Metrics) Rejected(code int) {
	if m == nil {
		return
	}
	m.rejections.WithLabelValues(strconv.Itoa(code)).Inc()
}

// Dropped counts one outbound frame lost to a full queue.
func (m *Metrics) Dropped() {
	if m == nil {
		return
	}
	m.dropped.Inc()
}
