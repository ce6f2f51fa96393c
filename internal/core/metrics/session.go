package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Session 协作会话指标
type Session struct {
	MessagesSent      *prometheus.CounterVec
	MessagesReceived  *prometheus.CounterVec
	SendFailures      prometheus.Counter
	MalformedMessages prometheus.Counter
	DocumentsApplied  prometheus.Counter
	Connections       prometheus.Gauge
	LocksHeld         prometheus.Gauge
}

// NewSession 创建会话指标
func NewSession(reg prometheus.Registerer, namespace string) *Session {
	f := promauto.With(reg)
	return &Session{
		MessagesSent: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_sent_total",
			Help:      "Mesh messages successfully handed to a channel, by kind.",
		}, []string{"kind"}),
		MessagesReceived: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_received_total",
			Help:      "Well-formed mesh messages received, by kind.",
		}, []string{"kind"}),
		SendFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "send_failures_total",
			Help:      "Sends that failed on an individual connection.",
		}),
		MalformedMessages: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_messages_total",
			Help:      "Inbound messages dropped because they could not be decoded.",
		}),
		DocumentsApplied: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_applied_total",
			Help:      "Remote document snapshots applied locally.",
		}),
		Connections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "open_connections",
			Help:      "Open peer connections.",
		}),
		LocksHeld: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "locks",
			Help:      "Entries in the local lock table.",
		}),
	}
}

// Sent 记录 n 次成功发送
func (m *Session) Sent(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.MessagesSent.WithLabelValues(kind).Add(float64(n))
}

// Received 记录一条合法入站消息
func (m *Session) Received(kind string) {
	if m == nil {
		return
	}
	m.MessagesReceived.WithLabelValues(kind).Inc()
}

// SendFailed 记录一次发送失败
func (m *Session) SendFailed() {
	if m == nil {
		return
	}
	m.SendFailures.Inc()
}

// Malformed 记录一条格式错误的消息
func (m *Session) Malformed() {
	if m == nil {
		return
	}
	m.MalformedMessages.Inc()
}

// DocumentApplied 记录一次远端快照应用
func (m *Session) DocumentApplied() {
	if m == nil {
		return
	}
	m.DocumentsApplied.Inc()
}

// SetConnections 设置打开的连接数
func (m *Session) SetConnections(n int) {
	if m == nil {
		return
	}
	m.Connections.Set(float64(n))
}

// SetLocks 设置锁表条目数
func (m *Session) SetLocks(n int) {
	if m == nil {
		return
	}
	m.LocksHeld.Set(float64(n))
}
