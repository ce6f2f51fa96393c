package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Point 会合点服务端指标
type Point struct {
	Registrations   prometheus.Gauge
	Rejected        *prometheus.CounterVec
	SignalsRelayed  *prometheus.CounterVec
	SignalsDropped  *prometheus.CounterVec
	DiscoverQueries prometheus.Counter
}

// NewPoint 创建会合点指标
func NewPoint(reg prometheus.Registerer, namespace string) *Point {
	f := promauto.With(reg)
	return &Point{
		Registrations: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "point",
			Name:      "registrations",
			Help:      "Endpoints currently registered.",
		}),
		Rejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "point",
			Name:      "registrations_rejected_total",
			Help:      "Registration attempts rejected, by reason.",
		}, []string{"reason"}),
		SignalsRelayed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "point",
			Name:      "signals_relayed_total",
			Help:      "Signals relayed between endpoints, by type.",
		}, []string{"type"}),
		SignalsDropped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "point",
			Name:      "signals_dropped_total",
			Help:      "Signals dropped, by reason.",
		}, []string{"reason"}),
		DiscoverQueries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "point",
			Name:      "discover_queries_total",
			Help:      "Prefix discovery queries answered.",
		}),
	}
}

// Registered 端点注册成功
func (m *Point) Registered() {
	if m == nil {
		return
	}
	m.Registrations.Inc()
}

// Unregistered 端点注销
func (m *Point) Unregistered() {
	if m == nil {
		return
	}
	m.Registrations.Dec()
}

// Reject 记录一次拒绝注册
func (m *Point) Reject(reason string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(reason).Inc()
}

// Relayed 记录一次信令转发
func (m *Point) Relayed(typ string) {
	if m == nil {
		return
	}
	m.SignalsRelayed.WithLabelValues(typ).Inc()
}

// Dropped 记录一次信令丢弃
func (m *Point) Dropped(reason string) {
	if m == nil {
		return
	}
	m.SignalsDropped.WithLabelValues(reason).Inc()
}

// Discovered 记录一次发现查询
func (m *Point) Discovered() {
	if m == nil {
		return
	}
	m.DiscoverQueries.Inc()
}
