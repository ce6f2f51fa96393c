package docsync

import (
	"bytes"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-collab/internal/core/metrics"
	"github.com/dep2p/go-collab/internal/protocol/messaging"
	"github.com/dep2p/go-collab/pkg/lib/log"
	"github.com/dep2p/go-collab/pkg/types"
)

var logger = log.Logger("realm/docsync")

// Broadcaster 广播出口，返回成功发送数
type Broadcaster interface {
	Broadcast(data []byte) int
}

// Update 一次远端快照
type Update struct {
	Snapshot json.RawMessage
	SenderID types.ParticipantID
	SentAt   time.Time
}

// Stats 同步统计
type Stats struct {
	Published        uint64
	Applied          uint64
	EchoesSuppressed uint64
}

// Option 引擎选项
type Option func(*Engine)

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(e *Engine) { e.clock = c }
}

// WithMetrics 设置指标
func WithMetrics(m *metrics.Session) Option {
	return func(e *Engine) { e.metrics = m }
}

// Engine 文档同步引擎
type Engine struct {
	self    types.ParticipantID
	out     Broadcaster
	clock   clock.Clock
	metrics *metrics.Session

	published atomic.Uint64
	applied   atomic.Uint64
	echoes    atomic.Uint64
}

// New 创建引擎
func New(self types.ParticipantID, out Broadcaster, opts ...Option) *Engine {
	e := &Engine{
		self:  self,
		out:   out,
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Publish 广播一份完整快照
//
// 没有任何打开的连接时也不算错误。JSON null 表示清空文档。
func (e *Engine) Publish(snapshot json.RawMessage) error {
	if len(bytes.TrimSpace(snapshot)) == 0 {
		return ErrEmptySnapshot
	}
	if !json.Valid(snapshot) {
		return ErrInvalidSnapshot
	}

	data, err := messaging.Encode(messaging.NewDocument(snapshot, e.self, e.clock.Now()))
	if err != nil {
		return err
	}
	n := e.out.Broadcast(data)
	e.published.Add(1)
	e.metrics.Sent(string(messaging.KindDocument), n)
	logger.Debug("文档已广播", "bytes", len(snapshot), "peers", n)
	return nil
}

// Handle 处理一条文档消息，返回应替换本地文档的快照
func (e *Engine) Handle(msg *messaging.Message) (Update, bool) {
	if msg == nil || msg.Kind != messaging.KindDocument {
		return Update{}, false
	}
	if msg.SenderID == e.self {
		e.echoes.Add(1)
		return Update{}, false
	}

	e.applied.Add(1)
	e.metrics.DocumentApplied()
	return Update{
		Snapshot: msg.Snapshot,
		SenderID: msg.SenderID,
		SentAt:   msg.SentTime(),
	}, true
}

// Stats 返回统计
func (e *Engine) Stats() Stats {
	return Stats{
		Published:        e.published.Load(),
		Applied:          e.applied.Load(),
		EchoesSuppressed: e.echoes.Load(),
	}
}
