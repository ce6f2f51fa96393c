package collab

import (
	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-collab/config"
	"github.com/dep2p/go-collab/internal/core/metrics"
	"github.com/dep2p/go-collab/internal/realm/lock"
)

// defaultDialConcurrency 自动发现后并发拨号的上限
const defaultDialConcurrency = 4

// Option 会话配置选项
type Option func(*options)

type options struct {
	clock           clock.Clock
	metrics         *metrics.Session
	arbiter         lock.Arbiter
	autoDiscover    bool
	dialConcurrency int
}

func defaultOptions() options {
	return options{
		clock:           clock.New(),
		autoDiscover:    config.DefaultMeshConfig().AutoDiscover,
		dialConcurrency: defaultDialConcurrency,
	}
}

// WithConfig 从统一配置读取会话相关项
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		if cfg != nil {
			o.autoDiscover = cfg.Mesh.AutoDiscover
		}
	}
}

// WithClock 设置时钟（快照 sentAt 与锁 acquiredAt）
func WithClock(c clock.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithMetrics 设置会话指标
func WithMetrics(m *metrics.Session) Option {
	return func(o *options) { o.metrics = m }
}

// WithArbiter 设置锁裁决策略，默认后到者胜
func WithArbiter(a lock.Arbiter) Option {
	return func(o *options) { o.arbiter = a }
}

// WithAutoDiscover 加入房间后是否自动发现并连接同房间的端点
func WithAutoDiscover(enable bool) Option {
	return func(o *options) { o.autoDiscover = enable }
}

// WithDialConcurrency 设置自动发现后的并发拨号数
func WithDialConcurrency(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.dialConcurrency = n
		}
	}
}
