package rendezvous

import (
	"time"

	"github.com/dep2p/go-collab/config"
)

// ============================================================================
//                              Client 配置
// ============================================================================

// ClientConfig 客户端配置
type ClientConfig struct {
	// URL 会合点 websocket 地址
	URL string

	// OpenTimeout 注册超时
	OpenTimeout time.Duration

	// DiscoverTimeout 发现请求超时
	DiscoverTimeout time.Duration

	// WriteTimeout 写超时
	WriteTimeout time.Duration

	// PingInterval 心跳间隔
	PingInterval time.Duration

	// PongTimeout 读超时
	PongTimeout time.Duration

	// MaxMessageSize 单条信令最大字节数
	MaxMessageSize int64

	// SignalBuffer 入站信令缓冲
	SignalBuffer int
}

// DefaultClientConfig 默认客户端配置
func DefaultClientConfig() ClientConfig {
	return ClientConfigFromUnified(config.DefaultRendezvousConfig())
}

// ClientConfigFromUnified 从统一配置创建客户端配置
func ClientConfigFromUnified(c config.RendezvousConfig) ClientConfig {
	return ClientConfig{
		URL:             c.URL,
		OpenTimeout:     c.OpenTimeout.Duration(),
		DiscoverTimeout: c.DiscoverTimeout.Duration(),
		WriteTimeout:    c.WriteTimeout.Duration(),
		PingInterval:    c.PingInterval.Duration(),
		PongTimeout:     c.PongTimeout.Duration(),
		MaxMessageSize:  c.MaxMessageSize,
		SignalBuffer:    64,
	}
}

// ============================================================================
//                              Point 配置
// ============================================================================

// PointConfig 服务端配置
type PointConfig struct {
	// MaxRegistrations 同时在线端点上限
	MaxRegistrations int

	// MaxMessageSize 单条信令最大字节数
	MaxMessageSize int64

	// SignalRate 每端点每秒信令数
	SignalRate float64

	// SignalBurst 信令突发上限
	SignalBurst int

	// SendQueueSize 每端点出站缓冲
	SendQueueSize int

	// PingInterval 心跳间隔
	PingInterval time.Duration

	// PongTimeout 读超时
	PongTimeout time.Duration

	// WriteTimeout 写超时
	WriteTimeout time.Duration

	// AllowedOrigins 允许的 Origin，为空不校验
	AllowedOrigins []string
}

// DefaultPointConfig 默认服务端配置
func DefaultPointConfig() PointConfig {
	return PointConfigFromUnified(config.DefaultPointConfig())
}

// PointConfigFromUnified 从统一配置创建服务端配置
func PointConfigFromUnified(c config.PointConfig) PointConfig {
	return PointConfig{
		MaxRegistrations: c.MaxRegistrations,
		MaxMessageSize:   c.MaxMessageSize,
		SignalRate:       c.SignalRate,
		SignalBurst:      c.SignalBurst,
		SendQueueSize:    c.SendQueueSize,
		PingInterval:     c.PingInterval.Duration(),
		PongTimeout:      c.PongTimeout.Duration(),
		WriteTimeout:     c.WriteTimeout.Duration(),
		AllowedOrigins:   append([]string(nil), c.AllowedOrigins...),
	}
}
